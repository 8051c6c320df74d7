package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"campusride/internal/pagination"
	"campusride/internal/repository"
	"campusride/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status
// code. Internal failures are reported opaquely.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	if code == http.StatusInternalServerError {
		_ = c.Error(err)
		c.JSON(code, ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// createdStatus reports 201 for a first write and 200 for an idempotent
// replay of it.
func createdStatus(replayed bool) int {
	if replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidActor),
		errors.Is(err, service.ErrInvalidIdempotencyKey),
		errors.Is(err, service.ErrInvalidRoute),
		errors.Is(err, service.ErrInvalidWindow),
		errors.Is(err, service.ErrWindowTooWide),
		errors.Is(err, service.ErrWindowClosed),
		errors.Is(err, service.ErrPreferredOutsideWindow),
		errors.Is(err, service.ErrInvalidCategory),
		errors.Is(err, service.ErrInvalidSeats),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrSelfOffer),
		errors.Is(err, service.ErrOwnRideBooking),
		errors.Is(err, pagination.ErrInvalidCursor):
		return http.StatusBadRequest

	// Forbidden errors
	case errors.Is(err, service.ErrNotTripRequestOwner),
		errors.Is(err, service.ErrNotOfferParty),
		errors.Is(err, service.ErrNotBookingOwner),
		errors.Is(err, service.ErrNotBookingParty):
		return http.StatusForbidden

	// Conflict errors
	case errors.Is(err, service.ErrTripRequestNotActive),
		errors.Is(err, service.ErrDuplicateOffer),
		errors.Is(err, service.ErrOfferNotPending),
		errors.Is(err, service.ErrOfferAlreadyAccepted),
		errors.Is(err, service.ErrAcceptedOfferDriverCancel),
		errors.Is(err, service.ErrOfferStateChanged),
		errors.Is(err, service.ErrRideNotActive),
		errors.Is(err, service.ErrRideDeparted),
		errors.Is(err, service.ErrNotEnoughSeats),
		errors.Is(err, service.ErrDuplicateBooking),
		errors.Is(err, service.ErrMatchedBookingCancel):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
