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

// TripRequestHandler handles HTTP requests for trip requests.
type TripRequestHandler struct {
	tripRequestService *service.TripRequestService
}

// NewTripRequestHandler creates a new TripRequestHandler.
func NewTripRequestHandler(tripRequestService *service.TripRequestService) *TripRequestHandler {
	return &TripRequestHandler{tripRequestService: tripRequestService}
}

// CreateTripRequestRequest is the HTTP request body for posting a trip
// request.
type CreateTripRequestRequest struct {
	Origin             string    `json:"origin"`
	Destination        string    `json:"destination"`
	EarliestDeparture  time.Time `json:"earliest_departure"`
	LatestDeparture    time.Time `json:"latest_departure"`
	PreferredDeparture time.Time `json:"preferred_departure,omitempty"`
	DistanceCategory   string    `json:"distance_category"`
	SeatsNeeded        int       `json:"seats_needed"`
	PickupNotes        string    `json:"pickup_notes,omitempty"`
	DropoffNotes       string    `json:"dropoff_notes,omitempty"`
}

// TripRequestResponse is the HTTP representation of a trip request.
type TripRequestResponse struct {
	ID                 string `json:"id"`
	RiderID            string `json:"rider_id"`
	Origin             string `json:"origin"`
	Destination        string `json:"destination"`
	EarliestDeparture  string `json:"earliest_departure"`
	LatestDeparture    string `json:"latest_departure"`
	PreferredDeparture string `json:"preferred_departure,omitempty"`
	DistanceCategory   string `json:"distance_category"`
	SeatsNeeded        int    `json:"seats_needed"`
	Status             string `json:"status"`
	PickupNotes        string `json:"pickup_notes,omitempty"`
	DropoffNotes       string `json:"dropoff_notes,omitempty"`
	CreatedAt          string `json:"created_at"`
}

func newTripRequestResponse(tr *domain.TripRequest) TripRequestResponse {
	resp := TripRequestResponse{
		ID:                tr.ID,
		RiderID:           tr.RiderID,
		Origin:            tr.Origin,
		Destination:       tr.Destination,
		EarliestDeparture: tr.EarliestDeparture.Format(time.RFC3339),
		LatestDeparture:   tr.LatestDeparture.Format(time.RFC3339),
		DistanceCategory:  string(tr.DistanceCategory),
		SeatsNeeded:       tr.SeatsNeeded,
		Status:            string(tr.Status),
		PickupNotes:       tr.PickupNotes,
		DropoffNotes:      tr.DropoffNotes,
		CreatedAt:         tr.CreatedAt.Format(time.RFC3339),
	}
	if !tr.PreferredDeparture.IsZero() {
		resp.PreferredDeparture = tr.PreferredDeparture.Format(time.RFC3339)
	}
	return resp
}

// CreateTripRequest handles POST /v1/trip-requests
func (h *TripRequestHandler) CreateTripRequest(c *gin.Context) {
	actor, ok := middleware.RequireActor(c)
	if !ok {
		return
	}

	var req CreateTripRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	tr, replayed, err := h.tripRequestService.CreateTripRequest(c.Request.Context(), service.CreateTripRequestRequest{
		RiderID:    actor.ID,
		RiderEmail: actor.Email,
		Key:        c.GetHeader(idempotencyKeyHeader),
		Params: service.TripRequestParams{
			Origin:             req.Origin,
			Destination:        req.Destination,
			EarliestDeparture:  req.EarliestDeparture,
			LatestDeparture:    req.LatestDeparture,
			PreferredDeparture: req.PreferredDeparture,
			DistanceCategory:   domain.DistanceCategory(req.DistanceCategory),
			SeatsNeeded:        req.SeatsNeeded,
			PickupNotes:        req.PickupNotes,
			DropoffNotes:       req.DropoffNotes,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, createdStatus(replayed), newTripRequestResponse(tr))
}

// GetTripRequest handles GET /v1/trip-requests/:id
func (h *TripRequestHandler) GetTripRequest(c *gin.Context) {
	tr, err := h.tripRequestService.GetTripRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newTripRequestResponse(tr))
}

// TripRequestListResponse is the HTTP response for a trip request listing
// page.
type TripRequestListResponse struct {
	TripRequests []TripRequestResponse `json:"trip_requests"`
	NextCursor   string                `json:"next_cursor,omitempty"`
}

// ListTripRequests handles GET /v1/trip-requests
func (h *TripRequestHandler) ListTripRequests(c *gin.Context) {
	page, err := h.tripRequestService.ListTripRequests(c.Request.Context(),
		repository.TripRequestFilter{
			Origin:      c.Query("origin"),
			Destination: c.Query("destination"),
			Category:    domain.DistanceCategory(c.Query("category")),
			MaxSeats:    intQuery(c, "max_seats"),
		},
		c.Query("cursor"),
		intQuery(c, "limit"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := TripRequestListResponse{TripRequests: make([]TripRequestResponse, 0, len(page.TripRequests)), NextCursor: page.NextCursor}
	for _, tr := range page.TripRequests {
		resp.TripRequests = append(resp.TripRequests, newTripRequestResponse(tr))
	}

	respondJSON(c, http.StatusOK, resp)
}
