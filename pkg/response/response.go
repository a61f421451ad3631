// Package response centralizes HTTP response shapes and helpers.
// Handlers rely on it to keep controllers thin and uniform.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/maxviazov/hoops-tagging-service/internal/model"
	"github.com/maxviazov/hoops-tagging-service/internal/repository"
	"github.com/maxviazov/hoops-tagging-service/internal/service"
	"github.com/maxviazov/hoops-tagging-service/internal/session"
)

// ErrorPayload is the canonical error envelope returned by the API.
type ErrorPayload struct {
	Error       string               `json:"error"`
	Message     string               `json:"message,omitempty"`
	FieldErrors []service.FieldError `json:"field_errors,omitempty"`
}

// MapError converts a domain / infrastructure error into an HTTP status and payload.
// Extend here as new domain error categories emerge.
func MapError(err error) (int, ErrorPayload) {
	if err == nil {
		return http.StatusOK, ErrorPayload{Error: "ok"}
	}

	if errors.Is(err, service.ErrInvalidInput) {
		return http.StatusBadRequest, ErrorPayload{
			Error:       "invalid_input",
			Message:     "one or more fields are invalid",
			FieldErrors: service.FieldErrors(err),
		}
	}

	switch {
	case errors.Is(err, model.ErrMalformedSave):
		return http.StatusBadRequest, ErrorPayload{Error: "malformed_save", Message: err.Error()}
	case errors.Is(err, model.ErrInvalidEvent):
		return http.StatusBadRequest, ErrorPayload{Error: "invalid_event", Message: err.Error()}
	case errors.Is(err, service.ErrNoSession):
		return http.StatusNotFound, ErrorPayload{Error: "session_not_found"}
	case errors.Is(err, session.ErrPlayerNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "player_not_found"}
	case errors.Is(err, session.ErrEventNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "event_not_found"}
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, ErrorPayload{Error: "not_found"}
	case errors.Is(err, session.ErrNotReady):
		return http.StatusConflict, ErrorPayload{Error: "not_ready", Message: "player has not reported ready"}
	case errors.Is(err, session.ErrPlayerExists), errors.Is(err, repository.ErrAlreadyExists):
		return http.StatusConflict, ErrorPayload{Error: "already_exists"}
	case errors.Is(err, session.ErrAttached), errors.Is(err, repository.ErrConflict):
		return http.StatusConflict, ErrorPayload{Error: "conflict"}
	case errors.Is(err, repository.ErrUnavailable):
		// the session keeps its log; the client may retry the save
		return http.StatusBadGateway, ErrorPayload{Error: "storage_unavailable", Message: "save store unreachable, work is kept in memory"}
	default:
		return http.StatusInternalServerError, ErrorPayload{Error: "internal_error"}
	}
}

// WriteError writes an error response and aborts the context.
func WriteError(c *gin.Context, err error) {
	status, payload := MapError(err)
	c.AbortWithStatusJSON(status, payload)
}

// WriteData writes a successful JSON response.
func WriteData(c *gin.Context, status int, data any) {
	c.JSON(status, data)
}
