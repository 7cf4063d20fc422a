package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tripmatch/internal/domain"
	"tripmatch/internal/repository"
)

// RideHandler handles HTTP requests for rides.
type RideHandler struct {
	rideRepo repository.RideRepository
}

// NewRideHandler creates a new RideHandler.
func NewRideHandler(rideRepo repository.RideRepository) *RideHandler {
	return &RideHandler{rideRepo: rideRepo}
}

// CreateRideRequest is the HTTP request body for posting a ride.
type CreateRideRequest struct {
	OwnerID     string    `json:"owner_id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartureAt time.Time `json:"departure_at"`
	Seats       int       `json:"seats"`
}

// RideResponse is the HTTP response for ride data.
type RideResponse struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Origin      string    `json:"origin"`
	Destination string    `json:"destination"`
	DepartureAt time.Time `json:"departure_at"`
	Seats       int       `json:"seats"`
}

func toRideResponse(ride *domain.Ride) RideResponse {
	return RideResponse{
		ID:          ride.ID,
		OwnerID:     ride.OwnerID,
		Origin:      ride.Origin,
		Destination: ride.Destination,
		DepartureAt: ride.DepartureAt,
		Seats:       ride.Seats,
	}
}

// CreateRide handles POST /v1/rides
func (h *RideHandler) CreateRide(c *gin.Context) {
	var req CreateRideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.OwnerID == "" || req.Origin == "" || req.Destination == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "owner_id, origin and destination are required"})
		return
	}

	if req.DepartureAt.IsZero() || !req.DepartureAt.After(time.Now()) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "departure_at must be in the future"})
		return
	}

	if req.Seats <= 0 {
		req.Seats = 1
	}

	ride := &domain.Ride{
		ID:          uuid.New().String(),
		OwnerID:     req.OwnerID,
		Origin:      req.Origin,
		Destination: req.Destination,
		DepartureAt: req.DepartureAt,
		Seats:       req.Seats,
		CreatedAt:   time.Now(),
	}

	if err := h.rideRepo.Create(c.Request.Context(), ride); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toRideResponse(ride))
}

// GetRide handles GET /v1/rides/:id
func (h *RideHandler) GetRide(c *gin.Context) {
	ride, err := h.rideRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toRideResponse(ride))
}

// GetAll handles GET /v1/rides
func (h *RideHandler) GetAll(c *gin.Context) {
	rides, err := h.rideRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]RideResponse, 0, len(rides))
	for _, ride := range rides {
		response = append(response, toRideResponse(ride))
	}

	c.JSON(http.StatusOK, response)
}
