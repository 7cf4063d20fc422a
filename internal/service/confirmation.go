package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"tripmatch/internal/domain"
	"tripmatch/internal/redis"
	"tripmatch/internal/repository"
)

// Config holds the engine's time tunables.
type Config struct {
	ReversalWindow     time.Duration
	RequestCooldown    time.Duration
	ExpiringSoonWindow time.Duration
	OperationTimeout   time.Duration
}

func (c Config) withDefaults() Config {
	if c.ReversalWindow <= 0 {
		c.ReversalWindow = DefaultReversalWindow
	}
	if c.RequestCooldown <= 0 {
		c.RequestCooldown = DefaultRequestCooldown
	}
	if c.ExpiringSoonWindow <= 0 {
		c.ExpiringSoonWindow = DefaultExpiringSoonWindow
	}
	if c.OperationTimeout <= 0 {
		c.OperationTimeout = 30 * time.Second
	}
	return c
}

// ConfirmationService orchestrates confirmation transitions: it validates
// them through the state machine, persists via the repository's
// compare-and-swap, and fires notifications after the commit. Persistence
// always completes before the notification is dispatched, so a delivered
// notification never references an uncommitted state.
type ConfirmationService struct {
	confirmationRepo    repository.ConfirmationRepository
	rideRepo            repository.RideRepository
	tripRepo            repository.TripRepository
	targetCache         redis.TargetCacheInterface
	notificationService *NotificationService
	cfg                 Config
}

// NewConfirmationService creates a new ConfirmationService. targetCache
// may be nil; lookups then always go to the repositories.
func NewConfirmationService(
	confirmationRepo repository.ConfirmationRepository,
	rideRepo repository.RideRepository,
	tripRepo repository.TripRepository,
	targetCache redis.TargetCacheInterface,
	notificationService *NotificationService,
	cfg Config,
) *ConfirmationService {
	return &ConfirmationService{
		confirmationRepo:    confirmationRepo,
		rideRepo:            rideRepo,
		tripRepo:            tripRepo,
		targetCache:         targetCache,
		notificationService: notificationService,
		cfg:                 cfg.withDefaults(),
	}
}

// CreateRequest contains the parameters for creating a confirmation.
type CreateRequest struct {
	PassengerID string
	Target      domain.TargetRef
	Message     string
}

// Create registers a passenger's request to join a ride or trip.
func (s *ConfirmationService) Create(ctx context.Context, req CreateRequest) (*domain.Confirmation, error) {
	if req.PassengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	if req.Target.IsZero() {
		return nil, ErrInvalidTarget
	}

	ownerID, departureAt, err := s.resolveTarget(ctx, req.Target)
	if err != nil {
		return nil, err
	}

	if ownerID == req.PassengerID {
		return nil, ErrOwnRide
	}

	now := time.Now()
	if !departureAt.After(now) {
		return nil, ErrRideDeparted
	}

	// Pre-check for an active duplicate. The store constraint is the
	// real guarantee; this just gives a clean answer on the common path.
	opCtx, cancel := s.opContext(ctx)
	existing, err := s.confirmationRepo.GetActiveByPassengerAndTarget(opCtx, req.PassengerID, req.Target)
	cancel()
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateRequest
	}

	confirmation := &domain.Confirmation{
		ID:          uuid.New().String(),
		Target:      req.Target,
		OwnerID:     ownerID,
		PassengerID: req.PassengerID,
		Status:      domain.ConfirmationPending,
		Message:     req.Message,
		DepartureAt: departureAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	opCtx, cancel = s.opContext(ctx)
	err = s.confirmationRepo.Create(opCtx, confirmation)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateActive) {
			return nil, ErrDuplicateRequest
		}
		return nil, err
	}

	s.notify(ctx, func(nctx context.Context) error {
		return s.notificationService.NotifyRequestCreated(nctx, confirmation)
	})

	return confirmation, nil
}

// Accept lets the owner accept a pending request.
func (s *ConfirmationService) Accept(ctx context.Context, confirmationID, ownerID string) (*domain.Confirmation, error) {
	return s.transition(ctx, confirmationID, ownerID, EventAccept)
}

// Reject lets the owner decline a pending request.
func (s *ConfirmationService) Reject(ctx context.Context, confirmationID, ownerID string) (*domain.Confirmation, error) {
	return s.transition(ctx, confirmationID, ownerID, EventReject)
}

// CancelByPassenger lets the passenger withdraw a still-pending request.
func (s *ConfirmationService) CancelByPassenger(ctx context.Context, confirmationID, passengerID string) (*domain.Confirmation, error) {
	return s.transition(ctx, confirmationID, passengerID, EventCancelRequest)
}

// CancelAccepted lets either party cancel an accepted seat.
func (s *ConfirmationService) CancelAccepted(ctx context.Context, confirmationID, actorID string) (*domain.Confirmation, error) {
	return s.transition(ctx, confirmationID, actorID, EventCancel)
}

// Reverse undoes a rejection or cancellation within the reversal window,
// restoring the confirmation to ACCEPTED. It is a pure undo: acceptance
// logic is not re-run.
func (s *ConfirmationService) Reverse(ctx context.Context, confirmationID, actorID string) (*domain.Confirmation, error) {
	return s.transition(ctx, confirmationID, actorID, EventReverse)
}

// RequestAgain creates a fresh pending confirmation after a rejection,
// subject to the cooldown. The old record stays rejected permanently.
func (s *ConfirmationService) RequestAgain(ctx context.Context, confirmationID, passengerID, message string) (*domain.Confirmation, error) {
	if confirmationID == "" {
		return nil, ErrInvalidConfirmationID
	}
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}

	opCtx, cancel := s.opContext(ctx)
	old, err := s.confirmationRepo.GetByID(opCtx, confirmationID)
	cancel()
	if err != nil {
		return nil, err
	}

	if old.PassengerID != passengerID {
		return nil, ErrForbidden
	}
	if old.Status != domain.ConfirmationRejected {
		return nil, ErrInvalidTransition
	}

	// The cooldown is keyed to the most recent rejection for the pair,
	// which may be newer than the record the caller points at.
	opCtx, cancel = s.opContext(ctx)
	lastRejected, err := s.confirmationRepo.GetLatestRejected(opCtx, passengerID, old.Target)
	cancel()
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	info := EvaluateRequestAgain(lastRejected, time.Now(), s.cfg.RequestCooldown)
	if !info.CanRequest {
		return nil, ErrCooldownActive
	}

	return s.Create(ctx, CreateRequest{
		PassengerID: passengerID,
		Target:      old.Target,
		Message:     message,
	})
}

// GetConfirmation retrieves a confirmation by ID.
func (s *ConfirmationService) GetConfirmation(ctx context.Context, confirmationID string) (*domain.Confirmation, error) {
	if confirmationID == "" {
		return nil, ErrInvalidConfirmationID
	}
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	return s.confirmationRepo.GetByID(opCtx, confirmationID)
}

// ListByPassenger retrieves all confirmations requested by a passenger.
func (s *ConfirmationService) ListByPassenger(ctx context.Context, passengerID string) ([]*domain.Confirmation, error) {
	if passengerID == "" {
		return nil, ErrInvalidPassengerID
	}
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	return s.confirmationRepo.ListByPassenger(opCtx, passengerID)
}

// ListByTarget retrieves all confirmations attached to a ride or trip.
func (s *ConfirmationService) ListByTarget(ctx context.Context, target domain.TargetRef) ([]*domain.Confirmation, error) {
	if target.IsZero() {
		return nil, ErrInvalidTarget
	}
	opCtx, cancel := s.opContext(ctx)
	defer cancel()
	return s.confirmationRepo.ListByTarget(opCtx, target)
}

// ExpiryInfo returns the read-only expiry classification of a confirmation.
func (s *ConfirmationService) ExpiryInfo(ctx context.Context, confirmationID string) (ExpiryInfo, error) {
	c, err := s.GetConfirmation(ctx, confirmationID)
	if err != nil {
		return ExpiryInfo{}, err
	}
	return EvaluateExpiry(c, time.Now(), s.cfg.ExpiringSoonWindow), nil
}

// ReversalInfo returns reversal eligibility for a participant.
func (s *ConfirmationService) ReversalInfo(ctx context.Context, confirmationID, userID string) (ReversalInfo, error) {
	c, err := s.GetConfirmation(ctx, confirmationID)
	if err != nil {
		return ReversalInfo{}, err
	}
	if c.RoleOf(userID) == domain.RoleNone {
		return ReversalInfo{}, ErrForbidden
	}
	return EvaluateReversal(c, time.Now(), s.cfg.ReversalWindow), nil
}

// RequestAgainInfo returns re-request eligibility for a passenger/target pair.
func (s *ConfirmationService) RequestAgainInfo(ctx context.Context, passengerID string, target domain.TargetRef) (RequestAgainInfo, error) {
	if passengerID == "" {
		return RequestAgainInfo{}, ErrInvalidPassengerID
	}
	if target.IsZero() {
		return RequestAgainInfo{}, ErrInvalidTarget
	}

	opCtx, cancel := s.opContext(ctx)
	lastRejected, err := s.confirmationRepo.GetLatestRejected(opCtx, passengerID, target)
	cancel()
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return RequestAgainInfo{}, err
	}

	return EvaluateRequestAgain(lastRejected, time.Now(), s.cfg.RequestCooldown), nil
}

// transition runs one state-machine edge end to end: load, decide,
// compare-and-swap persist, notify.
func (s *ConfirmationService) transition(ctx context.Context, confirmationID, actorID string, event Event) (*domain.Confirmation, error) {
	if confirmationID == "" {
		return nil, ErrInvalidConfirmationID
	}
	if actorID == "" {
		return nil, ErrInvalidActorID
	}

	opCtx, cancel := s.opContext(ctx)
	current, err := s.confirmationRepo.GetByID(opCtx, confirmationID)
	cancel()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	next, err := Transition(current, event, actorID, now)
	if err != nil {
		return nil, err
	}

	if event == EventReverse {
		if info := EvaluateReversal(current, now, s.cfg.ReversalWindow); !info.CanReverse {
			return nil, ErrReversalWindowClosed
		}
	}

	opCtx, cancel = s.opContext(ctx)
	err = s.confirmationRepo.Update(opCtx, next, current.UpdatedAt)
	cancel()
	if err != nil {
		if errors.Is(err, repository.ErrVersionConflict) {
			return nil, ErrConflict
		}
		return nil, err
	}

	s.notify(ctx, func(nctx context.Context) error {
		switch event {
		case EventAccept:
			return s.notificationService.NotifyRequestAccepted(nctx, next)
		case EventReject:
			return s.notificationService.NotifyRequestRejected(nctx, next)
		case EventCancelRequest:
			return s.notificationService.NotifyRequestCancelled(nctx, next)
		case EventCancel:
			return s.notificationService.NotifySeatCancelled(nctx, next, actorID)
		case EventReverse:
			return s.notificationService.NotifyDecisionReversed(nctx, next, actorID)
		}
		return nil
	})

	return next, nil
}

// resolveTarget returns the owner and departure of the referenced ride or
// trip, consulting the cache first.
func (s *ConfirmationService) resolveTarget(ctx context.Context, target domain.TargetRef) (string, time.Time, error) {
	if s.targetCache != nil {
		cached, err := s.targetCache.GetTarget(ctx, target)
		if err == nil && cached != nil {
			return cached.OwnerID, cached.DepartureAt, nil
		}
		// Cache errors fall through to the repository.
	}

	opCtx, cancel := s.opContext(ctx)
	defer cancel()

	var ownerID string
	var departureAt time.Time

	switch target.Kind {
	case domain.TargetRide:
		ride, err := s.rideRepo.GetByID(opCtx, target.ID)
		if err != nil {
			return "", time.Time{}, err
		}
		ownerID, departureAt = ride.OwnerID, ride.DepartureAt
	case domain.TargetTrip:
		trip, err := s.tripRepo.GetByID(opCtx, target.ID)
		if err != nil {
			return "", time.Time{}, err
		}
		ownerID, departureAt = trip.OwnerID, trip.DepartureAt
	default:
		return "", time.Time{}, ErrInvalidTarget
	}

	if s.targetCache != nil {
		_ = s.targetCache.SetTarget(ctx, target, redis.CachedTarget{
			OwnerID:     ownerID,
			DepartureAt: departureAt,
		})
	}

	return ownerID, departureAt, nil
}

// notify dispatches a notification after a committed transition. Failures
// are logged and swallowed: the state change already happened and must
// not be reported to the caller as a failure.
func (s *ConfirmationService) notify(ctx context.Context, fn func(context.Context) error) {
	if s.notificationService == nil {
		return
	}
	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.OperationTimeout)
	defer cancel()
	if err := fn(nctx); err != nil {
		log.Printf("warning: notification delivery failed: %v", err)
	}
}

func (s *ConfirmationService) opContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.cfg.OperationTimeout)
}
