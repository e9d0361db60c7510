package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/konkatsu-api/internal/auth"
	"github.com/gravadigital/konkatsu-api/internal/domain/participant"
	"github.com/gravadigital/konkatsu-api/internal/logger"
	"github.com/gravadigital/konkatsu-api/internal/response"
	"github.com/gravadigital/konkatsu-api/internal/services"
)

type ParticipantHandler struct {
	parties *services.PartyService
	issuer  *auth.Issuer
	baseURL string
	log     *log.Logger
}

func NewParticipantHandler(parties *services.PartyService, issuer *auth.Issuer, baseURL string) *ParticipantHandler {
	return &ParticipantHandler{
		parties: parties,
		issuer:  issuer,
		baseURL: baseURL,
		log:     logger.Handler("participant"),
	}
}

// RegisterParticipant handles POST /api/parties/:party_id/participants
func (h *ParticipantHandler) RegisterParticipant(c *gin.Context) {
	partyID, ok := uuidParam(c, "party_id")
	if !ok {
		return
	}

	var req services.RegisterParticipantRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.parties.RegisterParticipant(c.Request.Context(), partyID, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "participant registered", p)
}

// ListParticipants handles GET /api/parties/:party_id/participants?gender=
func (h *ParticipantHandler) ListParticipants(c *gin.Context) {
	partyID, ok := uuidParam(c, "party_id")
	if !ok {
		return
	}

	list, err := h.parties.ListParticipants(c.Request.Context(), partyID, c.Query("gender"))
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", list)
}

// RemoveParticipant handles DELETE /api/parties/:party_id/participants/:participant_id
func (h *ParticipantHandler) RemoveParticipant(c *gin.Context) {
	partyID, ok := uuidParam(c, "party_id")
	if !ok {
		return
	}
	id, ok := uuidParam(c, "participant_id")
	if !ok {
		return
	}

	if err := h.parties.RemoveParticipant(c.Request.Context(), partyID, id); err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "participant removed", nil)
}

// AccessCard is what staff print on a participant's QR card
type AccessCard struct {
	ParticipantID uuid.UUID `json:"participant_id"`
	Number        int       `json:"number"`
	Name          string    `json:"name"`
	AccessCode    string    `json:"access_code"`
	Token         string    `json:"token"`
	URL           string    `json:"url"`
}

func (h *ParticipantHandler) card(p *participant.Participant) (*AccessCard, error) {
	token, err := h.issuer.IssueParticipantToken(p.PartyID, p.ID)
	if err != nil {
		return nil, err
	}
	return &AccessCard{
		ParticipantID: p.ID,
		Number:        p.Number,
		Name:          p.Name,
		AccessCode:    p.AccessCode,
		Token:         token,
		URL:           auth.AccessURL(h.baseURL, token),
	}, nil
}

// GetAccess handles GET /api/parties/:party_id/participants/:participant_id/access
func (h *ParticipantHandler) GetAccess(c *gin.Context) {
	partyID, ok := uuidParam(c, "party_id")
	if !ok {
		return
	}
	id, ok := uuidParam(c, "participant_id")
	if !ok {
		return
	}

	p, err := h.parties.GetParticipant(c.Request.Context(), partyID, id)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	card, err := h.card(p)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", card)
}
