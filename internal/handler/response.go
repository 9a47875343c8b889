package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"carshare/internal/auth"
	"carshare/internal/catalog"
	"carshare/internal/fare"
	"carshare/internal/ledger"
	"carshare/internal/repository"
	"carshare/internal/session"
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

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps core errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrAuthFailed),
		errors.Is(err, auth.ErrInvalidSession):
		return http.StatusUnauthorized

	// Validation errors - Bad Request
	case errors.Is(err, catalog.ErrInvalidRideData),
		errors.Is(err, fare.ErrUnknownVehicleClass),
		errors.Is(err, session.ErrInvalidRiderID),
		errors.Is(err, session.ErrSelectionNotInMatches):
		return http.StatusBadRequest

	// Nothing to act on
	case errors.Is(err, session.ErrNoMatch),
		errors.Is(err, catalog.ErrRideNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Conflicts with current ride state
	case errors.Is(err, session.ErrAlreadyRiding),
		errors.Is(err, session.ErrAmbiguousSelection),
		errors.Is(err, ledger.ErrRiderAlreadyActive),
		errors.Is(err, ledger.ErrNoActiveRide):
		return http.StatusConflict

	// Internal invariant violations
	default:
		return http.StatusInternalServerError
	}
}
