package auth

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gravadigital/konkatsu-api/internal/response"
)

// ClaimsKey is the gin context key holding *TokenClaims.
const ClaimsKey = "auth.claims"

// RequireRole rejects requests without a valid bearer token for one of roles.
func RequireRole(issuer *Issuer, roles ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			response.UnauthorizedError(c, "missing bearer token")
			c.Abort()
			return
		}

		claims, err := issuer.Parse(strings.TrimSpace(raw))
		if err != nil {
			response.UnauthorizedError(c, "invalid or expired token")
			c.Abort()
			return
		}

		if !slices.Contains(roles, claims.Role) {
			response.ForbiddenError(c, "insufficient role")
			c.Abort()
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Claims returns the claims stored by RequireRole.
func Claims(c *gin.Context) (*TokenClaims, bool) {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*TokenClaims)
	return claims, ok
}
