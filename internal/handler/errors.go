package handler

import (
	"errors"
	"net/http"

	"workhours/internal/service"
	"workhours/pkg/response"

	"github.com/gin-gonic/gin"
)

// statusOf maps service errors onto HTTP status codes
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrRefused):
		return http.StatusConflict
	case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrSessionExpired):
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// writeError renders err in the standard envelope. Internal errors are
// attached to the gin context for the request logger and never echoed.
func writeError(c *gin.Context, err error) {
	status := statusOf(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		msg = "Internal server error"
	}
	c.JSON(status, response.Error(status, msg))
}

func badPayload(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
}
