package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/konkatsu-api/internal/auth"
	"github.com/gravadigital/konkatsu-api/internal/logger"
	"github.com/gravadigital/konkatsu-api/internal/response"
	"github.com/gravadigital/konkatsu-api/internal/services"
)

// MeHandler serves the participant's own view; identity comes from the token.
type MeHandler struct {
	parties *services.PartyService
	voting  *services.VotingService
	log     *log.Logger
}

func NewMeHandler(parties *services.PartyService, voting *services.VotingService) *MeHandler {
	return &MeHandler{
		parties: parties,
		voting:  voting,
		log:     logger.Handler("me"),
	}
}

func claims(c *gin.Context) (*auth.TokenClaims, bool) {
	cl, ok := auth.Claims(c)
	if !ok || cl.Role != auth.RoleParticipant {
		response.ForbiddenError(c, "participant token required")
		return nil, false
	}
	return cl, true
}

// Profile handles GET /api/me
func (h *MeHandler) Profile(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}

	p, err := h.parties.GetParticipant(c.Request.Context(), cl.PartyID, cl.ParticipantID)
	if err != nil {
		fail(c, h.log, err)
		return
	}
	pt, err := h.parties.GetParty(c.Request.Context(), cl.PartyID)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", gin.H{"participant": p, "party": pt})
}

// Candidates handles GET /api/me/candidates
func (h *MeHandler) Candidates(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}

	list, err := h.voting.Candidates(c.Request.Context(), cl.PartyID, cl.ParticipantID)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", list)
}

// SubmitVotes handles POST /api/me/votes/:round
func (h *MeHandler) SubmitVotes(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	round, ok := roundParam(c)
	if !ok {
		return
	}

	var req services.SubmitBallotRequest
	if !bindJSON(c, &req) {
		return
	}

	votes, err := h.voting.SubmitBallot(c.Request.Context(), cl.PartyID, cl.ParticipantID, round, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "ballot saved", votes)
}

// GetVotes handles GET /api/me/votes/:round
func (h *MeHandler) GetVotes(c *gin.Context) {
	cl, ok := claims(c)
	if !ok {
		return
	}
	round, ok := roundParam(c)
	if !ok {
		return
	}

	votes, err := h.voting.Ballot(c.Request.Context(), cl.PartyID, cl.ParticipantID, round)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", votes)
}
