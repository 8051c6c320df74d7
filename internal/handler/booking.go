package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusride/internal/domain"
	"campusride/internal/middleware"
	"campusride/internal/service"
)

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingService *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingService *service.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

// CreateBookingRequest is the HTTP request body for booking seats on a ride.
type CreateBookingRequest struct {
	Seats int `json:"seats"`
}

// BookingResponse is the HTTP representation of a booking.
type BookingResponse struct {
	ID            string `json:"id"`
	Kind          string `json:"kind"`
	RideID        string `json:"ride_id,omitempty"`
	TripRequestID string `json:"trip_request_id,omitempty"`
	DriverID      string `json:"driver_id"`
	RiderID       string `json:"rider_id"`
	Seats         int    `json:"seats"`
	PriceCents    int64  `json:"price_cents"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
	CancelledAt   string `json:"cancelled_at,omitempty"`
}

func newBookingResponse(b *domain.Booking) BookingResponse {
	resp := BookingResponse{
		ID:            b.ID,
		Kind:          string(b.Kind()),
		RideID:        b.RideID,
		TripRequestID: b.TripRequestID,
		DriverID:      b.DriverID,
		RiderID:       b.RiderID,
		Seats:         b.Seats,
		PriceCents:    b.PriceCents,
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt.Format(time.RFC3339),
	}
	if !b.CancelledAt.IsZero() {
		resp.CancelledAt = b.CancelledAt.Format(time.RFC3339)
	}
	return resp
}

// CreateBooking handles POST /v1/rides/:id/bookings
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	booking, replayed, err := h.bookingService.CreateBooking(c.Request.Context(), service.CreateBookingRequest{
		RiderID:    actor.ID,
		RiderEmail: actor.Email,
		Key:        c.GetHeader(idempotencyKeyHeader),
		RideID:     c.Param("id"),
		Seats:      req.Seats,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, createdStatus(replayed), newBookingResponse(booking))
}

// GetBooking handles GET /v1/bookings/:id
func (h *BookingHandler) GetBooking(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.GetBooking(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newBookingResponse(booking))
}

// CancelBooking handles POST /v1/bookings/:id/cancel
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	if err := h.bookingService.CancelBooking(c.Request.Context(), actor.ID, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"status": "cancelled"})
}
