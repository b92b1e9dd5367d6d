package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"hotel-frontdesk/backend"
	"hotel-frontdesk/logger"
	"hotel-frontdesk/roomstate"
	"hotel-frontdesk/services"
	"hotel-frontdesk/session"
	"hotel-frontdesk/utils"
)

// respondError maps domain errors onto HTTP statuses. Anything unknown is a
// 500 and gets logged.
func respondError(c *gin.Context, err error) {
	var apiErr *backend.APIError
	switch {
	case errors.Is(err, roomstate.ErrInvalidTransition):
		utils.JSONErrorCode(c, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, services.ErrActionInFlight):
		utils.JSONErrorCode(c, http.StatusConflict, "action_in_flight", err.Error())
	case errors.Is(err, services.ErrNoActiveStay):
		utils.JSONErrorCode(c, http.StatusConflict, "no_active_stay", err.Error())
	case errors.Is(err, backend.ErrNotFound), errors.Is(err, session.ErrNotFound):
		utils.JSONErrorCode(c, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, utils.ErrMissingRecipient):
		utils.JSONErrorCode(c, http.StatusBadRequest, "missing_recipient", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		utils.JSONErrorCode(c, http.StatusGatewayTimeout, "backend_timeout", err.Error())
	case errors.As(err, &apiErr):
		status := http.StatusBadGateway
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			status = apiErr.Status
		}
		utils.JSONErrorCode(c, status, "backend_error", err.Error())
	default:
		logger.ErrorContext(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
		utils.JSONErrorCode(c, http.StatusInternalServerError, "internal", "internal error")
	}
}

func badRequest(c *gin.Context, msg string) {
	utils.JSONError(c, http.StatusBadRequest, msg)
}

// paramID reads a positive numeric path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// bindOptionalJSON binds the body when there is one. An empty body leaves
// dst untouched.
func bindOptionalJSON(c *gin.Context, dst interface{}) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request payload: "+err.Error())
		return false
	}
	return true
}
