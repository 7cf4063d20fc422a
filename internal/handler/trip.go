package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripmatch/internal/domain"
	"tripmatch/internal/repository"
)

// TripHandler handles HTTP requests for airport trips.
type TripHandler struct {
	tripRepo repository.TripRepository
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripRepo repository.TripRepository) *TripHandler {
	return &TripHandler{tripRepo: tripRepo}
}

// CreateTripRequest is the HTTP request body for posting a trip.
type CreateTripRequest struct {
	OwnerID      string    `json:"owner_id"`
	Airport      string    `json:"airport"`
	FlightNumber string    `json:"flight_number,omitempty"`
	Direction    string    `json:"direction"` // ARRIVAL or DEPARTURE
	DepartureAt  time.Time `json:"departure_at"`
}

// TripResponse is the HTTP response for trip data.
type TripResponse struct {
	ID           string    `json:"id"`
	OwnerID      string    `json:"owner_id"`
	Airport      string    `json:"airport"`
	FlightNumber string    `json:"flight_number,omitempty"`
	Direction    string    `json:"direction"`
	DepartureAt  time.Time `json:"departure_at"`
}

func toTripResponse(trip *domain.Trip) TripResponse {
	return TripResponse{
		ID:           trip.ID,
		OwnerID:      trip.OwnerID,
		Airport:      trip.Airport,
		FlightNumber: trip.FlightNumber,
		Direction:    string(trip.Direction),
		DepartureAt:  trip.DepartureAt,
	}
}

// CreateTrip handles POST /v1/trips
func (h *TripHandler) CreateTrip(c *gin.Context) {
	var req CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.OwnerID == "" || req.Airport == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "owner_id and airport are required"})
		return
	}

	direction := domain.TripDirection(req.Direction)
	if direction != domain.TripArrival && direction != domain.TripDeparture {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "direction must be ARRIVAL or DEPARTURE"})
		return
	}

	if req.DepartureAt.IsZero() || !req.DepartureAt.After(time.Now()) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "departure_at must be in the future"})
		return
	}

	trip := &domain.Trip{
		ID:           uuid.New().String(),
		OwnerID:      req.OwnerID,
		Airport:      req.Airport,
		FlightNumber: req.FlightNumber,
		Direction:    direction,
		DepartureAt:  req.DepartureAt,
		CreatedAt:    time.Now(),
	}

	if err := h.tripRepo.Create(c.Request.Context(), trip); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toTripResponse(trip))
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toTripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		response = append(response, toTripResponse(trip))
	}

	c.JSON(http.StatusOK, response)
}
