package handlers

import (
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gravadigital/konkatsu-api/internal/domain/vote"
	"github.com/gravadigital/konkatsu-api/internal/response"
	"github.com/gravadigital/konkatsu-api/internal/services"
	"github.com/gravadigital/konkatsu-api/internal/validation"
)

// statusFor maps service errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrBusy),
		errors.Is(err, services.ErrInvalidStage),
		errors.Is(err, services.ErrNoVotes),
		errors.Is(err, services.ErrInsufficientSeats):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// fail writes the error envelope. Internal errors are logged and hidden.
func fail(c *gin.Context, logger *log.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.FullPath(), "error", err)
		response.InternalServerError(c, "internal server error")
		return
	}
	response.ErrorResponseWithMessage(c, status, err.Error())
}

func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := validation.ParseUUID(c.Param(name), name)
	if err != nil {
		response.BadRequestError(c, err.Error())
		return uuid.Nil, false
	}
	return id, true
}

func roundParam(c *gin.Context) (vote.RoundType, bool) {
	round, ok := vote.ParseRoundType(c.Param("round"))
	if !ok {
		response.BadRequestError(c, "round must be interim or final")
		return "", false
	}
	return round, true
}

func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequestError(c, "invalid request payload: "+err.Error())
		return false
	}
	return true
}
