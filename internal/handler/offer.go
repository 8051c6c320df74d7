package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusride/internal/domain"
	"campusride/internal/middleware"
	"campusride/internal/service"
)

// OfferHandler handles HTTP requests for offers.
type OfferHandler struct {
	offerService *service.OfferService
}

// NewOfferHandler creates a new OfferHandler.
func NewOfferHandler(offerService *service.OfferService) *OfferHandler {
	return &OfferHandler{offerService: offerService}
}

// CreateOfferRequest is the HTTP request body for bidding on a trip request.
type CreateOfferRequest struct {
	Seats      int    `json:"seats"`
	PriceCents int64  `json:"price_cents"`
	Message    string `json:"message,omitempty"`
}

// OfferResponse is the HTTP representation of an offer.
type OfferResponse struct {
	ID            string `json:"id"`
	TripRequestID string `json:"trip_request_id"`
	DriverID      string `json:"driver_id"`
	RiderID       string `json:"rider_id"`
	Seats         int    `json:"seats"`
	PriceCents    int64  `json:"price_cents"`
	Message       string `json:"message,omitempty"`
	Status        string `json:"status"`
	CreatedAt     string `json:"created_at"`
}

func newOfferResponse(o *domain.Offer) OfferResponse {
	return OfferResponse{
		ID:            o.ID,
		TripRequestID: o.TripRequestID,
		DriverID:      o.DriverID,
		RiderID:       o.RiderID,
		Seats:         o.Seats,
		PriceCents:    o.PriceCents,
		Message:       o.Message,
		Status:        string(o.Status),
		CreatedAt:     o.CreatedAt.Format(time.RFC3339),
	}
}

// CreateOffer handles POST /v1/trip-requests/:id/offers
func (h *OfferHandler) CreateOffer(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	offer, replayed, err := h.offerService.CreateOffer(c.Request.Context(), service.CreateOfferRequest{
		DriverID:      actor.ID,
		DriverEmail:   actor.Email,
		Key:           c.GetHeader(idempotencyKeyHeader),
		TripRequestID: c.Param("id"),
		Params: service.OfferParams{
			Seats:      req.Seats,
			PriceCents: req.PriceCents,
			Message:    req.Message,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, createdStatus(replayed), newOfferResponse(offer))
}

// ListOffers handles GET /v1/trip-requests/:id/offers
func (h *OfferHandler) ListOffers(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	offers, err := h.offerService.ListOffers(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]OfferResponse, 0, len(offers))
	for _, o := range offers {
		resp = append(resp, newOfferResponse(o))
	}

	respondJSON(c, http.StatusOK, resp)
}

// AcceptOfferResponse is the HTTP response for accepting an offer.
type AcceptOfferResponse struct {
	Offer   OfferResponse   `json:"offer"`
	Booking BookingResponse `json:"booking"`
}

// AcceptOffer handles POST /v1/offers/:id/accept
func (h *OfferHandler) AcceptOffer(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	offer, booking, err := h.offerService.AcceptOffer(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, AcceptOfferResponse{
		Offer:   newOfferResponse(offer),
		Booking: newBookingResponse(booking),
	})
}

// CancelOffer handles POST /v1/offers/:id/cancel
func (h *OfferHandler) CancelOffer(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	offer, err := h.offerService.CancelOffer(c.Request.Context(), actor.ID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newOfferResponse(offer))
}
