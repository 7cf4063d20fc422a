package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"tripmatch/internal/domain"
	"tripmatch/internal/service"
)

// ──────────────────────────────────────────────
// 8. CONCURRENT WRITERS
// ──────────────────────────────────────────────

func TestConcurrency_AcceptAndRejectHaveOneWinner(t *testing.T) {
	t.Parallel()

	for i := 0; i < 50; i++ {
		f := newFlowFixture()
		c := f.mustCreate(t, "passenger-1", domain.RideTarget("ride-1"))

		var wg sync.WaitGroup
		var accepts, rejects, failures int32
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Accept(context.Background(), c.ID, "owner-1"); err == nil {
				atomic.AddInt32(&accepts, 1)
			} else {
				atomic.AddInt32(&failures, 1)
			}
		}()
		go func() {
			defer wg.Done()
			if _, err := f.svc.Reject(context.Background(), c.ID, "owner-1"); err == nil {
				atomic.AddInt32(&rejects, 1)
			} else {
				atomic.AddInt32(&failures, 1)
			}
		}()
		wg.Wait()

		if accepts+rejects != 1 || failures != 1 {
			t.Fatalf("expected exactly one winner, got accepts=%d rejects=%d failures=%d",
				accepts, rejects, failures)
		}

		stored := f.confirmationRepo.GetConfirmation(c.ID)
		switch {
		case accepts == 1 && stored.Status != domain.ConfirmationAccepted:
			t.Fatalf("accept won but stored status is %s", stored.Status)
		case rejects == 1 && stored.Status != domain.ConfirmationRejected:
			t.Fatalf("reject won but stored status is %s", stored.Status)
		}
	}
}

func TestConcurrency_LoserGetsConflictOrInvalidTransition(t *testing.T) {
	t.Parallel()

	f := newFlowFixture()
	c := f.mustCreate(t, "passenger-1", domain.RideTarget("ride-1"))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, errs[0] = f.svc.Accept(context.Background(), c.ID, "owner-1")
	}()
	go func() {
		defer wg.Done()
		_, errs[1] = f.svc.Reject(context.Background(), c.ID, "owner-1")
	}()
	wg.Wait()

	var loser error
	for _, err := range errs {
		if err != nil {
			loser = err
		}
	}
	if loser == nil {
		t.Fatal("expected one of the two writers to lose")
	}
	// The loser either lost the compare-and-swap or observed the
	// winner's terminal state on load.
	if !errors.Is(loser, service.ErrConflict) && !errors.Is(loser, service.ErrInvalidTransition) {
		t.Fatalf("unexpected loser error: %v", loser)
	}
}

func TestConcurrency_SweepAndAcceptRace(t *testing.T) {
	t.Parallel()

	repo := NewMockConfirmationRepository()
	sender := NewMockSender()
	sweeper := service.NewExpirySweeper(repo, service.NewNotificationService(sender), nil, time.Minute, 5*time.Second)

	rideRepo := NewMockRideRepository()
	rideRepo.AddRide(&domain.Ride{ID: "ride-1", OwnerID: "owner-1", DepartureAt: time.Now().Add(48 * time.Hour)})
	svc := service.NewConfirmationService(repo, rideRepo, NewMockTripRepository(), nil,
		service.NewNotificationService(sender), service.Config{})

	repo.AddConfirmation(stalePending("race", time.Minute))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, _ = sweeper.Sweep(context.Background())
	}()
	go func() {
		defer wg.Done()
		_, _ = svc.Accept(context.Background(), "race", "owner-1")
	}()
	wg.Wait()

	// Whichever writer won, the record is terminal-or-accepted and
	// internally consistent.
	stored := repo.GetConfirmation("race")
	switch stored.Status {
	case domain.ConfirmationAccepted:
		if stored.Reason != "" {
			t.Errorf("accepted record carries reason %s", stored.Reason)
		}
	case domain.ConfirmationRejected:
		if stored.Reason != domain.ReasonExpired {
			t.Errorf("expected reason %s, got %s", domain.ReasonExpired, stored.Reason)
		}
	default:
		t.Fatalf("record left in status %s", stored.Status)
	}
	if stored.ConfirmedAt.IsZero() {
		t.Error("resolved record must have confirmedAt set")
	}
}

func TestConcurrency_SweepPassesDoNotOverlap(t *testing.T) {
	t.Parallel()

	repo := NewMockConfirmationRepository()
	sender := NewMockSender()
	lock := NewMockSweepLock()
	sweeper := service.NewExpirySweeper(repo, service.NewNotificationService(sender), lock, time.Minute, 5*time.Second)

	repo.AddConfirmation(stalePending("a", time.Hour))
	gate := make(chan struct{})
	repo.ListGate = gate

	done := make(chan service.SweepReport, 1)
	go func() {
		report, _ := sweeper.Sweep(context.Background())
		done <- report
	}()

	// Wait until the first pass holds the lock and is blocked in the
	// listing query.
	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&lock.AcquireCallCount) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("first sweep never started")
		}
		time.Sleep(time.Millisecond)
	}

	second, err := sweeper.Sweep(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if second.Scanned != 0 {
		t.Fatalf("overlapping sweep did work: %+v", second)
	}
	if got := atomic.LoadInt32(&lock.AcquireCallCount); got != 1 {
		t.Errorf("overlapping sweep touched the lock: %d acquisitions", got)
	}

	close(gate)
	first := <-done
	if first.Expired != 1 {
		t.Fatalf("first sweep did not finish its work: %+v", first)
	}
}
