package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"campusride/internal/domain"
	"campusride/internal/middleware"
	"campusride/internal/repository"
	"campusride/internal/service"
)

// idempotencyKeyHeader carries the client-supplied key for replay-safe
// creates.
const idempotencyKeyHeader = "Idempotency-Key"

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideService *service.RideService
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideService *service.RideService) *RideHandler {
	return &RideHandler{rideService: rideService}
}

// CreateRideRequest is the HTTP request body for posting a ride.
type CreateRideRequest struct {
	Origin             string    `json:"origin"`
	Destination        string    `json:"destination"`
	EarliestDeparture  time.Time `json:"earliest_departure"`
	LatestDeparture    time.Time `json:"latest_departure"`
	PreferredDeparture time.Time `json:"preferred_departure,omitempty"`
	DistanceCategory   string    `json:"distance_category"`
	PriceCents         int64     `json:"price_cents"`
	SeatsTotal         int       `json:"seats_total"`
	PickupNotes        string    `json:"pickup_notes,omitempty"`
	DropoffNotes       string    `json:"dropoff_notes,omitempty"`
}

// RideResponse is the HTTP representation of a ride.
type RideResponse struct {
	ID                 string `json:"id"`
	DriverID           string `json:"driver_id"`
	Origin             string `json:"origin"`
	Destination        string `json:"destination"`
	EarliestDeparture  string `json:"earliest_departure"`
	LatestDeparture    string `json:"latest_departure"`
	PreferredDeparture string `json:"preferred_departure,omitempty"`
	DistanceCategory   string `json:"distance_category"`
	PriceCents         int64  `json:"price_cents"`
	SeatsTotal         int    `json:"seats_total"`
	SeatsAvailable     int    `json:"seats_available"`
	Status             string `json:"status"`
	PickupNotes        string `json:"pickup_notes,omitempty"`
	DropoffNotes       string `json:"dropoff_notes,omitempty"`
	CreatedAt          string `json:"created_at"`
}

func newRideResponse(r *domain.Ride) RideResponse {
	resp := RideResponse{
		ID:                r.ID,
		DriverID:          r.DriverID,
		Origin:            r.Origin,
		Destination:       r.Destination,
		EarliestDeparture: r.EarliestDeparture.Format(time.RFC3339),
		LatestDeparture:   r.LatestDeparture.Format(time.RFC3339),
		DistanceCategory:  string(r.DistanceCategory),
		PriceCents:        r.PriceCents,
		SeatsTotal:        r.SeatsTotal,
		SeatsAvailable:    r.SeatsAvailable,
		Status:            string(r.Status),
		PickupNotes:       r.PickupNotes,
		DropoffNotes:      r.DropoffNotes,
		CreatedAt:         r.CreatedAt.Format(time.RFC3339),
	}
	if !r.PreferredDeparture.IsZero() {
		resp.PreferredDeparture = r.PreferredDeparture.Format(time.RFC3339)
	}
	return resp
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	ride, replayed, err := h.rideService.CreateRide(c.Request.Context(), service.CreateRideRequest{
		DriverID:    actor.ID,
		DriverEmail: actor.Email,
		Key:         c.GetHeader(idempotencyKeyHeader),
		Params: service.RideParams{
			Origin:             req.Origin,
			Destination:        req.Destination,
			EarliestDeparture:  req.EarliestDeparture,
			LatestDeparture:    req.LatestDeparture,
			PreferredDeparture: req.PreferredDeparture,
			DistanceCategory:   domain.DistanceCategory(req.DistanceCategory),
			PriceCents:         req.PriceCents,
			SeatsTotal:         req.SeatsTotal,
			PickupNotes:        req.PickupNotes,
			DropoffNotes:       req.DropoffNotes,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, createdStatus(replayed), newRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideService.GetRide(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newRideResponse(ride))
}

// RideListResponse is the HTTP response for a ride listing page.
type RideListResponse struct {
	Rides      []RideResponse `json:"rides"`
	NextCursor string         `json:"next_cursor,omitempty"`
}

// ListRides handles GET /v1/rides
func (h *RideHandler) ListRides(c *gin.Context) {
	page, err := h.rideService.ListRides(c.Request.Context(),
		repository.RideFilter{
			Origin:      c.Query("origin"),
			Destination: c.Query("destination"),
			Category:    domain.DistanceCategory(c.Query("category")),
			MinSeats:    intQuery(c, "min_seats"),
		},
		c.Query("cursor"),
		intQuery(c, "limit"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := RideListResponse{Rides: make([]RideResponse, 0, len(page.Rides)), NextCursor: page.NextCursor}
	for _, r := range page.Rides {
		resp.Rides = append(resp.Rides, newRideResponse(r))
	}

	respondJSON(c, http.StatusOK, resp)
}
