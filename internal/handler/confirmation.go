package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tripmatch/internal/domain"
	"tripmatch/internal/service"
)

// ConfirmationHandler handles HTTP requests for confirmations.
type ConfirmationHandler struct {
	confirmationService *service.ConfirmationService
}

// NewConfirmationHandler creates a new ConfirmationHandler.
func NewConfirmationHandler(confirmationService *service.ConfirmationService) *ConfirmationHandler {
	return &ConfirmationHandler{confirmationService: confirmationService}
}

// CreateConfirmationRequest is the HTTP request body for creating a
// confirmation. Exactly one of ride_id/trip_id must be set.
type CreateConfirmationRequest struct {
	PassengerID string `json:"passenger_id"`
	RideID      string `json:"ride_id,omitempty"`
	TripID      string `json:"trip_id,omitempty"`
	Message     string `json:"message,omitempty"`
}

// ActorRequest is the HTTP request body for transition endpoints.
type ActorRequest struct {
	ActorID string `json:"actor_id"`
}

// RequestAgainRequest is the HTTP request body for re-requesting.
type RequestAgainRequest struct {
	PassengerID string `json:"passenger_id"`
	Message     string `json:"message,omitempty"`
}

// ConfirmationResponse is the HTTP response for confirmation data.
type ConfirmationResponse struct {
	ID          string     `json:"id"`
	RideID      string     `json:"ride_id,omitempty"`
	TripID      string     `json:"trip_id,omitempty"`
	OwnerID     string     `json:"owner_id"`
	PassengerID string     `json:"passenger_id"`
	Status      string     `json:"status"`
	Reason      string     `json:"reason,omitempty"`
	Message     string     `json:"message,omitempty"`
	DepartureAt time.Time  `json:"departure_at"`
	CreatedAt   time.Time  `json:"created_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func toConfirmationResponse(c *domain.Confirmation) ConfirmationResponse {
	resp := ConfirmationResponse{
		ID:          c.ID,
		OwnerID:     c.OwnerID,
		PassengerID: c.PassengerID,
		Status:      string(c.Status),
		Reason:      string(c.Reason),
		Message:     c.Message,
		DepartureAt: c.DepartureAt,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}

	switch c.Target.Kind {
	case domain.TargetRide:
		resp.RideID = c.Target.ID
	case domain.TargetTrip:
		resp.TripID = c.Target.ID
	}

	if !c.ConfirmedAt.IsZero() {
		confirmedAt := c.ConfirmedAt
		resp.ConfirmedAt = &confirmedAt
	}

	return resp
}

func targetFromIDs(rideID, tripID string) (domain.TargetRef, bool) {
	switch {
	case rideID != "" && tripID == "":
		return domain.RideTarget(rideID), true
	case tripID != "" && rideID == "":
		return domain.TripTarget(tripID), true
	default:
		return domain.TargetRef{}, false
	}
}

// Create handles POST /v1/confirmations
func (h *ConfirmationHandler) Create(c *gin.Context) {
	var req CreateConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	target, ok := targetFromIDs(req.RideID, req.TripID)
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "exactly one of ride_id or trip_id is required"})
		return
	}

	confirmation, err := h.confirmationService.Create(c.Request.Context(), service.CreateRequest{
		PassengerID: req.PassengerID,
		Target:      target,
		Message:     req.Message,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toConfirmationResponse(confirmation))
}

// Get handles GET /v1/confirmations/:id
func (h *ConfirmationHandler) Get(c *gin.Context) {
	confirmation, err := h.confirmationService.GetConfirmation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toConfirmationResponse(confirmation))
}

// List handles GET /v1/confirmations?passenger_id=|ride_id=|trip_id=
func (h *ConfirmationHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if passengerID := c.Query("passenger_id"); passengerID != "" {
		confirmations, err := h.confirmationService.ListByPassenger(ctx, passengerID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, toConfirmationResponses(confirmations))
		return
	}

	target, ok := targetFromIDs(c.Query("ride_id"), c.Query("trip_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "one of passenger_id, ride_id or trip_id is required"})
		return
	}

	confirmations, err := h.confirmationService.ListByTarget(ctx, target)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConfirmationResponses(confirmations))
}

func toConfirmationResponses(confirmations []*domain.Confirmation) []ConfirmationResponse {
	response := make([]ConfirmationResponse, 0, len(confirmations))
	for _, c := range confirmations {
		response = append(response, toConfirmationResponse(c))
	}
	return response
}

// Accept handles POST /v1/confirmations/:id/accept
func (h *ConfirmationHandler) Accept(c *gin.Context) {
	h.transition(c, h.confirmationService.Accept)
}

// Reject handles POST /v1/confirmations/:id/reject
func (h *ConfirmationHandler) Reject(c *gin.Context) {
	h.transition(c, h.confirmationService.Reject)
}

// CancelRequest handles POST /v1/confirmations/:id/cancel-request
func (h *ConfirmationHandler) CancelRequest(c *gin.Context) {
	h.transition(c, h.confirmationService.CancelByPassenger)
}

// Cancel handles POST /v1/confirmations/:id/cancel
func (h *ConfirmationHandler) Cancel(c *gin.Context) {
	h.transition(c, h.confirmationService.CancelAccepted)
}

// Reverse handles POST /v1/confirmations/:id/reverse
func (h *ConfirmationHandler) Reverse(c *gin.Context) {
	h.transition(c, h.confirmationService.Reverse)
}

func (h *ConfirmationHandler) transition(
	c *gin.Context,
	op func(ctx context.Context, confirmationID, actorID string) (*domain.Confirmation, error),
) {
	var req ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	confirmation, err := op(c.Request.Context(), c.Param("id"), req.ActorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, toConfirmationResponse(confirmation))
}

// RequestAgain handles POST /v1/confirmations/:id/request-again
func (h *ConfirmationHandler) RequestAgain(c *gin.Context) {
	var req RequestAgainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	confirmation, err := h.confirmationService.RequestAgain(c.Request.Context(), c.Param("id"), req.PassengerID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toConfirmationResponse(confirmation))
}

// ReversalInfoResponse is the HTTP response for reversal eligibility.
type ReversalInfoResponse struct {
	CanReverse        bool    `json:"can_reverse"`
	TimeRemainingSecs float64 `json:"time_remaining_seconds"`
	HoursLeft         int     `json:"hours_left"`
}

// ReversalInfo handles GET /v1/confirmations/:id/reversal?user_id=
func (h *ConfirmationHandler) ReversalInfo(c *gin.Context) {
	info, err := h.confirmationService.ReversalInfo(c.Request.Context(), c.Param("id"), c.Query("user_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReversalInfoResponse{
		CanReverse:        info.CanReverse,
		TimeRemainingSecs: info.TimeRemaining.Seconds(),
		HoursLeft:         info.HoursLeft,
	})
}

// ExpiryInfoResponse is the HTTP response for expiry classification.
type ExpiryInfoResponse struct {
	WillExpire          bool    `json:"will_expire"`
	IsExpired           bool    `json:"is_expired"`
	TimeUntilExpirySecs float64 `json:"time_until_expiry_seconds"`
}

// ExpiryInfo handles GET /v1/confirmations/:id/expiry
func (h *ConfirmationHandler) ExpiryInfo(c *gin.Context) {
	info, err := h.confirmationService.ExpiryInfo(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, ExpiryInfoResponse{
		WillExpire:          info.WillExpire,
		IsExpired:           info.IsExpired,
		TimeUntilExpirySecs: info.TimeUntilExpiry.Seconds(),
	})
}

// RequestAgainInfoResponse is the HTTP response for re-request eligibility.
type RequestAgainInfoResponse struct {
	CanRequest    bool       `json:"can_request"`
	CooldownUntil *time.Time `json:"cooldown_until,omitempty"`
}

// RequestAgainInfo handles GET /v1/confirmations/request-again-info?passenger_id=&ride_id=|trip_id=
func (h *ConfirmationHandler) RequestAgainInfo(c *gin.Context) {
	target, ok := targetFromIDs(c.Query("ride_id"), c.Query("trip_id"))
	if !ok {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "exactly one of ride_id or trip_id is required"})
		return
	}

	info, err := h.confirmationService.RequestAgainInfo(c.Request.Context(), c.Query("passenger_id"), target)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := RequestAgainInfoResponse{CanRequest: info.CanRequest}
	if !info.CooldownUntil.IsZero() {
		until := info.CooldownUntil
		resp.CooldownUntil = &until
	}

	c.JSON(http.StatusOK, resp)
}
