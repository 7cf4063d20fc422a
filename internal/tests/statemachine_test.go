package tests

import (
	"testing"
	"time"

	"tripmatch/internal/domain"
	"tripmatch/internal/service"
)

// ──────────────────────────────────────────────
// 1. STATE MACHINE TRANSITION TABLE
// ──────────────────────────────────────────────

func pendingConfirmation() *domain.Confirmation {
	created := time.Now().Add(-10 * time.Minute)
	return &domain.Confirmation{
		ID:          "conf-1",
		Target:      domain.RideTarget("ride-1"),
		OwnerID:     "owner-1",
		PassengerID: "passenger-1",
		Status:      domain.ConfirmationPending,
		DepartureAt: time.Now().Add(48 * time.Hour),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func acceptedConfirmation() *domain.Confirmation {
	c := pendingConfirmation()
	c.Status = domain.ConfirmationAccepted
	c.ConfirmedAt = time.Now().Add(-5 * time.Minute)
	c.UpdatedAt = c.ConfirmedAt
	return c
}

func rejectedConfirmation(reason domain.TerminalReason) *domain.Confirmation {
	c := pendingConfirmation()
	c.Status = domain.ConfirmationRejected
	c.Reason = reason
	c.ConfirmedAt = time.Now().Add(-5 * time.Minute)
	c.UpdatedAt = c.ConfirmedAt
	return c
}

func TestTransition_OwnerAcceptsPending(t *testing.T) {
	t.Parallel()

	c := pendingConfirmation()
	now := time.Now()

	next, err := service.Transition(c, service.EventAccept, "owner-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.Status != domain.ConfirmationAccepted {
		t.Errorf("expected status %s, got %s", domain.ConfirmationAccepted, next.Status)
	}
	if !next.ConfirmedAt.Equal(now) {
		t.Errorf("expected confirmedAt=%v, got %v", now, next.ConfirmedAt)
	}
	if next.Reason != "" {
		t.Errorf("expected no terminal reason, got %s", next.Reason)
	}

	// Input must not be mutated.
	if c.Status != domain.ConfirmationPending {
		t.Error("input confirmation was mutated")
	}
}

func TestTransition_OwnerRejectsPending(t *testing.T) {
	t.Parallel()

	next, err := service.Transition(pendingConfirmation(), service.EventReject, "owner-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.Status != domain.ConfirmationRejected {
		t.Errorf("expected status %s, got %s", domain.ConfirmationRejected, next.Status)
	}
	if next.Reason != domain.ReasonRejectedByOwner {
		t.Errorf("expected reason %s, got %s", domain.ReasonRejectedByOwner, next.Reason)
	}
}

func TestTransition_PassengerCannotAcceptOrReject(t *testing.T) {
	t.Parallel()

	for _, event := range []service.Event{service.EventAccept, service.EventReject} {
		if _, err := service.Transition(pendingConfirmation(), event, "passenger-1", time.Now()); err != service.ErrForbidden {
			t.Errorf("event %s by passenger: expected ErrForbidden, got %v", event, err)
		}
	}
}

func TestTransition_StrangerIsForbidden(t *testing.T) {
	t.Parallel()

	events := []service.Event{
		service.EventAccept,
		service.EventReject,
		service.EventCancelRequest,
		service.EventCancel,
		service.EventReverse,
	}
	for _, event := range events {
		if _, err := service.Transition(pendingConfirmation(), event, "someone-else", time.Now()); err != service.ErrForbidden {
			t.Errorf("event %s by stranger: expected ErrForbidden, got %v", event, err)
		}
	}
}

func TestTransition_AcceptRejectRequirePending(t *testing.T) {
	t.Parallel()

	states := []*domain.Confirmation{
		acceptedConfirmation(),
		rejectedConfirmation(domain.ReasonRejectedByOwner),
	}
	for _, c := range states {
		for _, event := range []service.Event{service.EventAccept, service.EventReject} {
			if _, err := service.Transition(c, event, "owner-1", time.Now()); err != service.ErrInvalidTransition {
				t.Errorf("event %s from %s: expected ErrInvalidTransition, got %v", event, c.Status, err)
			}
		}
	}
}

func TestTransition_PassengerCancelsPendingRequest(t *testing.T) {
	t.Parallel()

	next, err := service.Transition(pendingConfirmation(), service.EventCancelRequest, "passenger-1", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.Reason != domain.ReasonCancelledByPassenger {
		t.Errorf("expected reason %s, got %s", domain.ReasonCancelledByPassenger, next.Reason)
	}
}

func TestTransition_OwnerCannotCancelRequest(t *testing.T) {
	t.Parallel()

	if _, err := service.Transition(pendingConfirmation(), service.EventCancelRequest, "owner-1", time.Now()); err != service.ErrForbidden {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestTransition_EitherPartyCancelsAccepted(t *testing.T) {
	t.Parallel()

	cases := []struct {
		actor  string
		reason domain.TerminalReason
	}{
		{"owner-1", domain.ReasonCancelledByOwner},
		{"passenger-1", domain.ReasonCancelledByPassenger},
	}

	for _, tc := range cases {
		next, err := service.Transition(acceptedConfirmation(), service.EventCancel, tc.actor, time.Now())
		if err != nil {
			t.Fatalf("cancel by %s: unexpected error: %v", tc.actor, err)
		}
		if next.Reason != tc.reason {
			t.Errorf("cancel by %s: expected reason %s, got %s", tc.actor, tc.reason, next.Reason)
		}
	}
}

func TestTransition_CancelRequiresAccepted(t *testing.T) {
	t.Parallel()

	if _, err := service.Transition(pendingConfirmation(), service.EventCancel, "owner-1", time.Now()); err != service.ErrInvalidTransition {
		t.Errorf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestTransition_ReverseRestoresAccepted(t *testing.T) {
	t.Parallel()

	// Passenger cancelled, so the owner is the one who may reverse.
	c := rejectedConfirmation(domain.ReasonCancelledByPassenger)
	now := time.Now()

	next, err := service.Transition(c, service.EventReverse, "owner-1", now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if next.Status != domain.ConfirmationAccepted {
		t.Errorf("expected status %s, got %s", domain.ConfirmationAccepted, next.Status)
	}
	if next.Reason != "" {
		t.Errorf("expected reason cleared, got %s", next.Reason)
	}
}

func TestTransition_CauserCannotReverse(t *testing.T) {
	t.Parallel()

	cases := []struct {
		reason domain.TerminalReason
		causer string
	}{
		{domain.ReasonRejectedByOwner, "owner-1"},
		{domain.ReasonCancelledByOwner, "owner-1"},
		{domain.ReasonCancelledByPassenger, "passenger-1"},
	}

	for _, tc := range cases {
		if _, err := service.Transition(rejectedConfirmation(tc.reason), service.EventReverse, tc.causer, time.Now()); err != service.ErrForbidden {
			t.Errorf("reason %s reversed by causer: expected ErrForbidden, got %v", tc.reason, err)
		}
	}
}

func TestTransition_ExpiredCannotBeReversed(t *testing.T) {
	t.Parallel()

	c := rejectedConfirmation(domain.ReasonExpired)
	for _, actor := range []string{"owner-1", "passenger-1"} {
		if _, err := service.Transition(c, service.EventReverse, actor, time.Now()); err != service.ErrInvalidTransition {
			t.Errorf("reverse of expired by %s: expected ErrInvalidTransition, got %v", actor, err)
		}
	}
}

func TestTransition_ExpireOnlyFromPending(t *testing.T) {
	t.Parallel()

	next, err := service.Transition(pendingConfirmation(), service.EventExpire, "", time.Now())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.Reason != domain.ReasonExpired {
		t.Errorf("expected reason %s, got %s", domain.ReasonExpired, next.Reason)
	}

	if _, err := service.Transition(acceptedConfirmation(), service.EventExpire, "", time.Now()); err != service.ErrInvalidTransition {
		t.Errorf("expire of accepted: expected ErrInvalidTransition, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. CONFIRMED-AT INVARIANT
// ──────────────────────────────────────────────

// confirmedAt must be zero exactly while a confirmation is pending,
// through every successful transition.
func TestTransition_ConfirmedAtTracksStatus(t *testing.T) {
	t.Parallel()

	steps := []struct {
		name  string
		from  *domain.Confirmation
		event service.Event
		actor string
	}{
		{"accept", pendingConfirmation(), service.EventAccept, "owner-1"},
		{"reject", pendingConfirmation(), service.EventReject, "owner-1"},
		{"cancel-request", pendingConfirmation(), service.EventCancelRequest, "passenger-1"},
		{"cancel", acceptedConfirmation(), service.EventCancel, "owner-1"},
		{"reverse", rejectedConfirmation(domain.ReasonCancelledByPassenger), service.EventReverse, "owner-1"},
		{"expire", pendingConfirmation(), service.EventExpire, ""},
	}

	for _, step := range steps {
		next, err := service.Transition(step.from, step.event, step.actor, time.Now())
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", step.name, err)
		}

		pending := next.Status == domain.ConfirmationPending
		if pending != next.ConfirmedAt.IsZero() {
			t.Errorf("%s: status=%s but confirmedAt zero=%v", step.name, next.Status, next.ConfirmedAt.IsZero())
		}
	}
}
