package handlers

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/gravadigital/konkatsu-api/internal/domain/party"
	"github.com/gravadigital/konkatsu-api/internal/logger"
	"github.com/gravadigital/konkatsu-api/internal/response"
	"github.com/gravadigital/konkatsu-api/internal/services"
	"github.com/gravadigital/konkatsu-api/internal/storage/postgres"
)

type PartyHandler struct {
	parties *services.PartyService
	log     *log.Logger
}

func NewPartyHandler(parties *services.PartyService) *PartyHandler {
	return &PartyHandler{
		parties: parties,
		log:     logger.Handler("party"),
	}
}

// CreateParty handles POST /api/parties
func (h *PartyHandler) CreateParty(c *gin.Context) {
	var req services.CreatePartyRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.parties.CreateParty(c.Request.Context(), req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusCreated, "party created", p)
}

// ListParties handles GET /api/parties?page=&page_size=
func (h *PartyHandler) ListParties(c *gin.Context) {
	var params postgres.PaginationParams
	if err := c.ShouldBindQuery(&params); err != nil {
		response.BadRequestError(c, "invalid pagination parameters")
		return
	}
	params.Normalize()

	list, total, err := h.parties.ListParties(c.Request.Context(), params)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.PagedResponse(c, list, response.Meta{Page: params.Page, PageSize: params.PageSize, Total: total})
}

// GetParty handles GET /api/parties/:party_id
func (h *PartyHandler) GetParty(c *gin.Context) {
	id, ok := uuidParam(c, "party_id")
	if !ok {
		return
	}

	p, err := h.parties.GetParty(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", p)
}

type UpdateStageRequest struct {
	Stage string `json:"stage" binding:"required"`
}

// UpdateStage handles PATCH /api/parties/:party_id/stage
func (h *PartyHandler) UpdateStage(c *gin.Context) {
	id, ok := uuidParam(c, "party_id")
	if !ok {
		return
	}

	var req UpdateStageRequest
	if !bindJSON(c, &req) {
		return
	}

	stage, valid := party.StageFromString(req.Stage)
	if !valid {
		response.BadRequestError(c, "unknown stage: "+req.Stage)
		return
	}

	p, err := h.parties.TransitionStage(c.Request.Context(), id, stage)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "stage updated", p)
}

// GetSettings handles GET /api/parties/:party_id/settings
func (h *PartyHandler) GetSettings(c *gin.Context) {
	id, ok := uuidParam(c, "party_id")
	if !ok {
		return
	}

	s, err := h.parties.GetSettings(c.Request.Context(), id)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "", s)
}

// UpdateSettings handles PUT /api/parties/:party_id/settings
func (h *PartyHandler) UpdateSettings(c *gin.Context) {
	id, ok := uuidParam(c, "party_id")
	if !ok {
		return
	}

	var req services.UpdateSettingsRequest
	if !bindJSON(c, &req) {
		return
	}

	s, err := h.parties.UpdateSettings(c.Request.Context(), id, req)
	if err != nil {
		fail(c, h.log, err)
		return
	}

	response.SuccessResponse(c, http.StatusOK, "settings updated", s)
}
