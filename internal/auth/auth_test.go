package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestParticipantTokenRoundTrip(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	partyID, participantID := uuid.New(), uuid.New()

	token, err := iss.IssueParticipantToken(partyID, participantID)
	require.NoError(t, err)

	claims, err := iss.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, RoleParticipant, claims.Role)
	assert.Equal(t, partyID, claims.PartyID)
	assert.Equal(t, participantID, claims.ParticipantID)
	assert.Equal(t, participantID.String(), claims.Subject)

	_, err = iss.IssueParticipantToken(uuid.Nil, participantID)
	assert.Error(t, err)
}

func TestParseRejects(t *testing.T) {
	iss := NewIssuer("secret", time.Hour)
	admin, err := iss.IssueAdminToken()
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewIssuer("other", time.Hour).Parse(admin)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		past := NewIssuer("secret", time.Minute)
		past.now = func() time.Time { return time.Now().Add(-time.Hour) }
		old, err := past.IssueAdminToken()
		require.NoError(t, err)

		_, err = iss.Parse(old)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := iss.Parse("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestVerifyAdminPassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	assert.NoError(t, VerifyAdminPassword(string(hash), "hunter2"))
	assert.ErrorIs(t, VerifyAdminPassword(string(hash), "wrong"), ErrInvalidCredentials)
	assert.ErrorIs(t, VerifyAdminPassword("", "hunter2"), ErrInvalidCredentials)
	assert.ErrorIs(t, VerifyAdminPassword(string(hash), ""), ErrInvalidCredentials)
}

func TestAccessURL(t *testing.T) {
	assert.Equal(t, "https://party.example/access?token=a.b%2Bc", AccessURL("https://party.example/", "a.b+c"))
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	iss := NewIssuer("secret", time.Hour)

	router := gin.New()
	router.GET("/admin", RequireRole(iss, RoleAdmin), func(c *gin.Context) {
		claims, ok := Claims(c)
		require.True(t, ok)
		c.String(http.StatusOK, string(claims.Role))
	})

	admin, err := iss.IssueAdminToken()
	require.NoError(t, err)
	guest, err := iss.IssueParticipantToken(uuid.New(), uuid.New())
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer abc", http.StatusUnauthorized},
		{"wrong role", "Bearer " + guest, http.StatusForbidden},
		{"admin", "Bearer " + admin, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
