package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
	"github.com/gravadigital/konkatsu-api/internal/export"
	"github.com/gravadigital/konkatsu-api/internal/logger"
	"github.com/gravadigital/konkatsu-api/internal/response"
	"github.com/gravadigital/konkatsu-api/internal/services"
)

// GenerationHandler exposes match and seating generation per party round
type GenerationHandler struct {
	generation *services.GenerationService
	log        *log.Logger
}

func NewGenerationHandler(generation *services.GenerationService) *GenerationHandler {
	return &GenerationHandler{
		generation: generation,
		log:        logger.Handler("generation"),
	}
}

func (h *GenerationHandler) target(c *gin.Context) (uuid.UUID, vote.RoundType, bool) {
	partyID, ok := uuidParam(c, "party_id")
	if !ok {
		return uuid.Nil, "", false
	}
	round, ok := roundParam(c)
	if !ok {
		return uuid.Nil, "", false
	}
	return partyID, round, true
}

// GenerateMatches handles POST /api/parties/:party_id/rounds/:round/matches
func (h *GenerationHandler) GenerateMatches(c *gin.Context) {
	partyID, round, ok := h.target(c)
	if !ok {
		return
	}

	out, err := h.generation.GenerateMatches(c.Request.Context(), partyID, round)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "matches generated", out)
}

// GetMatches handles GET /api/parties/:party_id/rounds/:round/matches
func (h *GenerationHandler) GetMatches(c *gin.Context) {
	partyID, round, ok := h.target(c)
	if !ok {
		return
	}

	out, err := h.generation.GetMatches(c.Request.Context(), partyID, round)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", out)
}

// GenerateSeating handles POST /api/parties/:party_id/rounds/:round/seating
func (h *GenerationHandler) GenerateSeating(c *gin.Context) {
	partyID, round, ok := h.target(c)
	if !ok {
		return
	}

	out, err := h.generation.GenerateSeating(c.Request.Context(), partyID, round)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "seating generated", out)
}

// GetSeating handles GET /api/parties/:party_id/rounds/:round/seating
func (h *GenerationHandler) GetSeating(c *gin.Context) {
	partyID, round, ok := h.target(c)
	if !ok {
		return
	}

	out, err := h.generation.GetSeating(c.Request.Context(), partyID, round)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", out)
}

// Export handles GET /api/parties/:party_id/rounds/:round/export
func (h *GenerationHandler) Export(c *gin.Context) {
	partyID, round, ok := h.target(c)
	if !ok {
		return
	}

	body, name, err := h.generation.Export(c.Request.Context(), partyID, round)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.Attachment(c, name, export.ContentType, body)
}
