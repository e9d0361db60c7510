package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/konkatsu-api/internal/auth"
	"github.com/gravadigital/konkatsu-api/internal/logger"
	"github.com/gravadigital/konkatsu-api/internal/response"
	"github.com/gravadigital/konkatsu-api/internal/services"
)

type AuthHandler struct {
	parties   *services.PartyService
	issuer    *auth.Issuer
	adminHash string
	log       *log.Logger
}

func NewAuthHandler(parties *services.PartyService, issuer *auth.Issuer, adminHash string) *AuthHandler {
	return &AuthHandler{
		parties:   parties,
		issuer:    issuer,
		adminHash: adminHash,
		log:       logger.Handler("auth"),
	}
}

type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := auth.VerifyAdminPassword(h.adminHash, req.Password); err != nil {
		h.log.Warn("Rejected admin login", "client_ip", c.ClientIP())
		response.UnauthorizedError(c, "invalid credentials")
		return
	}

	token, err := h.issuer.IssueAdminToken()
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "logged in", TokenResponse{Token: token, Role: string(auth.RoleAdmin)})
}

type AccessRequest struct {
	Party      string `json:"party" binding:"required"`
	AccessCode string `json:"access_code" binding:"required"`
}

// Access handles POST /api/access, exchanging a QR access code for a token
func (h *AuthHandler) Access(c *gin.Context) {
	var req AccessRequest
	if !bindJSON(c, &req) {
		return
	}

	p, person, err := h.parties.Authenticate(c.Request.Context(), req.Party, req.AccessCode)
	if errors.Is(err, services.ErrNotFound) {
		response.UnauthorizedError(c, "unknown party or access code")
		return
	}
	if err != nil {
		fail(c, h.log, err)
		return
	}

	token, err := h.issuer.IssueParticipantToken(p.ID, person.ID)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", gin.H{
		"token":       token,
		"role":        auth.RoleParticipant,
		"party":       p,
		"participant": person,
	})
}
