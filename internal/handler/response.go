package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"tripmatch/internal/repository"
	"tripmatch/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidPassengerID),
		errors.Is(err, service.ErrInvalidActorID),
		errors.Is(err, service.ErrInvalidConfirmationID),
		errors.Is(err, service.ErrInvalidTarget),
		errors.Is(err, service.ErrOwnRide),
		errors.Is(err, service.ErrRideDeparted):
		return http.StatusBadRequest

	// Actor is not allowed on this record or edge
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// Conflict errors - the record's state does not allow the request
	case errors.Is(err, service.ErrDuplicateRequest),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrConflict):
		return http.StatusConflict

	// The reversal window is over for good
	case errors.Is(err, service.ErrReversalWindowClosed):
		return http.StatusGone

	// Cooldown still running - retry later
	case errors.Is(err, service.ErrCooldownActive):
		return http.StatusTooManyRequests

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
