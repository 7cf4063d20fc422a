package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"tripmatch/internal/domain"
	"tripmatch/internal/service"
)

// ──────────────────────────────────────────────
// 7. EXPIRY SWEEPER
// ──────────────────────────────────────────────

func stalePending(id string, departedAgo time.Duration) *domain.Confirmation {
	created := time.Now().Add(-departedAgo - time.Hour)
	return &domain.Confirmation{
		ID:          id,
		Target:      domain.RideTarget("ride-" + id),
		OwnerID:     "owner-1",
		PassengerID: "passenger-" + id,
		Status:      domain.ConfirmationPending,
		DepartureAt: time.Now().Add(-departedAgo),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func newSweeperFixture() (*service.ExpirySweeper, *MockConfirmationRepository, *MockSender, *MockSweepLock) {
	repo := NewMockConfirmationRepository()
	sender := NewMockSender()
	lock := NewMockSweepLock()
	sweeper := service.NewExpirySweeper(
		repo,
		service.NewNotificationService(sender),
		lock,
		time.Minute,
		5*time.Second,
	)
	return sweeper, repo, sender, lock
}

func TestSweeper_ExpiresPendingPastDeparture(t *testing.T) {
	t.Parallel()

	sweeper, repo, sender, _ := newSweeperFixture()
	repo.AddConfirmation(stalePending("a", time.Hour))
	repo.AddConfirmation(stalePending("b", 2*time.Hour))

	// Accepted and future records must be left alone.
	future := stalePending("c", time.Hour)
	future.DepartureAt = time.Now().Add(time.Hour)
	repo.AddConfirmation(future)
	accepted := stalePending("d", time.Hour)
	accepted.Status = domain.ConfirmationAccepted
	accepted.ConfirmedAt = accepted.CreatedAt
	repo.AddConfirmation(accepted)

	report, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Scanned != 2 || report.Expired != 2 || report.Errored != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}

	for _, id := range []string{"a", "b"} {
		c := repo.GetConfirmation(id)
		if c.Status != domain.ConfirmationRejected {
			t.Errorf("record %s: expected status %s, got %s", id, domain.ConfirmationRejected, c.Status)
		}
		if c.Reason != domain.ReasonExpired {
			t.Errorf("record %s: expected reason %s, got %s", id, domain.ReasonExpired, c.Reason)
		}
		if c.ConfirmedAt.IsZero() {
			t.Errorf("record %s: expected confirmedAt set at expiry", id)
		}
	}
	if repo.GetConfirmation("c").Status != domain.ConfirmationPending {
		t.Error("future record must stay pending")
	}
	if repo.GetConfirmation("d").Status != domain.ConfirmationAccepted {
		t.Error("accepted record must not be expired")
	}

	if got := sender.CountByType(service.NotificationRequestExpired); got != 2 {
		t.Errorf("expected 2 REQUEST_EXPIRED notifications, got %d", got)
	}
}

func TestSweeper_SecondPassIsNoop(t *testing.T) {
	t.Parallel()

	sweeper, repo, sender, _ := newSweeperFixture()
	repo.AddConfirmation(stalePending("a", time.Hour))

	if _, err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	report, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if report.Scanned != 0 || report.Expired != 0 {
		t.Fatalf("expected empty second pass, got %+v", report)
	}
	if got := sender.CountByType(service.NotificationRequestExpired); got != 1 {
		t.Errorf("expected exactly one REQUEST_EXPIRED notification, got %d", got)
	}
}

func TestSweeper_PartialFailureContinues(t *testing.T) {
	t.Parallel()

	sweeper, repo, _, _ := newSweeperFixture()
	repo.AddConfirmation(stalePending("a", time.Hour))
	repo.AddConfirmation(stalePending("b", time.Hour))
	repo.AddConfirmation(stalePending("c", time.Hour))
	repo.UpdateErrorIDs = map[string]error{"b": errors.New("connection reset")}

	report, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Scanned != 3 || report.Expired != 2 || report.Errored != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	if repo.GetConfirmation("b").Status != domain.ConfirmationPending {
		t.Error("failed record must stay pending for the next pass")
	}
}

func TestSweeper_SkipsWhenLockNotAcquired(t *testing.T) {
	t.Parallel()

	sweeper, repo, sender, lock := newSweeperFixture()
	repo.AddConfirmation(stalePending("a", time.Hour))
	lock.AcquireResult = false

	report, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if report.Scanned != 0 {
		t.Fatalf("expected no work without the lock, got %+v", report)
	}
	if repo.GetConfirmation("a").Status != domain.ConfirmationPending {
		t.Error("record must be untouched when another instance holds the lock")
	}
	if len(sender.Sent()) != 0 {
		t.Error("no notifications expected without the lock")
	}
}

func TestSweeper_LockErrorSurfaces(t *testing.T) {
	t.Parallel()

	sweeper, _, _, lock := newSweeperFixture()
	lock.AcquireError = errors.New("redis unavailable")

	if _, err := sweeper.Sweep(context.Background()); err == nil {
		t.Fatal("expected sweep to fail when the lock store is down")
	}
}

func TestSweeper_ExpiryStartsRequestCooldown(t *testing.T) {
	t.Parallel()

	sweeper, repo, _, _ := newSweeperFixture()
	repo.AddConfirmation(stalePending("a", time.Hour))

	if _, err := sweeper.Sweep(context.Background()); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	expired := repo.GetConfirmation("a")
	info := service.EvaluateRequestAgain(expired, time.Now(), time.Hour)
	if info.CanRequest {
		t.Error("expected request-again cooldown to run from the expiry moment")
	}
	if !info.CooldownUntil.Equal(expired.ConfirmedAt.Add(time.Hour)) {
		t.Errorf("expected cooldown until %v, got %v", expired.ConfirmedAt.Add(time.Hour), info.CooldownUntil)
	}
}
