package service

import (
	"context"
	"errors"
	"log"
	"sync/atomic"
	"time"

	"tripmatch/internal/domain"
	"tripmatch/internal/redis"
	"tripmatch/internal/repository"
)

// DefaultSweepInterval is how often the expiry sweep runs.
const DefaultSweepInterval = 3 * time.Minute

// SweepReport summarizes one expiry-sweep pass.
type SweepReport struct {
	Scanned int
	Expired int
	Errored int
}

// ExpirySweeper periodically force-expires pending confirmations whose
// departure has passed. It is just another concurrent writer: every
// mutation goes through the same compare-and-swap as request-driven
// transitions, so a record that loses the race is simply skipped.
//
// Two guards keep passes from overlapping: an in-process atomic flag and,
// when configured, a cross-instance Redis lock.
type ExpirySweeper struct {
	confirmationRepo    repository.ConfirmationRepository
	notificationService *NotificationService
	sweepLock           redis.SweepLockInterface
	interval            time.Duration
	opTimeout           time.Duration

	running int32
}

// NewExpirySweeper creates a new ExpirySweeper. sweepLock may be nil for
// single-instance deployments.
func NewExpirySweeper(
	confirmationRepo repository.ConfirmationRepository,
	notificationService *NotificationService,
	sweepLock redis.SweepLockInterface,
	interval time.Duration,
	opTimeout time.Duration,
) *ExpirySweeper {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if opTimeout <= 0 {
		opTimeout = 30 * time.Second
	}
	return &ExpirySweeper{
		confirmationRepo:    confirmationRepo,
		notificationService: notificationService,
		sweepLock:           sweepLock,
		interval:            interval,
		opTimeout:           opTimeout,
	}
}

// Run sweeps on a ticker until the context is cancelled.
func (s *ExpirySweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := s.Sweep(ctx)
			if err != nil {
				log.Printf("expiry sweep failed: %v", err)
				continue
			}
			if report.Scanned > 0 {
				log.Printf("expiry sweep: scanned=%d expired=%d errored=%d",
					report.Scanned, report.Expired, report.Errored)
			}
		}
	}
}

// Sweep performs one pass. It is idempotent: a second pass over the same
// data finds nothing pending and changes nothing. Per-record failures do
// not abort the batch.
func (s *ExpirySweeper) Sweep(ctx context.Context) (SweepReport, error) {
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		// Previous pass still in flight.
		return SweepReport{}, nil
	}
	defer atomic.StoreInt32(&s.running, 0)

	if s.sweepLock != nil {
		// Lock TTL is the sweep interval: generous for a pass, short
		// enough that a crashed holder does not stall sweeping for long.
		acquired, err := s.sweepLock.AcquireSweepLock(ctx, s.interval)
		if err != nil {
			return SweepReport{}, err
		}
		if !acquired {
			return SweepReport{}, nil
		}
		defer func() {
			if err := s.sweepLock.ReleaseSweepLock(context.WithoutCancel(ctx)); err != nil {
				log.Printf("warning: failed to release sweep lock: %v", err)
			}
		}()
	}

	now := time.Now()

	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	stale, err := s.confirmationRepo.ListPendingPastDeparture(opCtx, now)
	cancel()
	if err != nil {
		return SweepReport{}, err
	}

	var report SweepReport
	for _, c := range stale {
		report.Scanned++
		expired, err := s.expireOne(ctx, c, now)
		if err != nil {
			report.Errored++
			log.Printf("expiry sweep: record %s: %v", c.ID, err)
			continue
		}
		if expired {
			report.Expired++
		}
	}

	return report, nil
}

func (s *ExpirySweeper) expireOne(ctx context.Context, c *domain.Confirmation, now time.Time) (bool, error) {
	next, err := Transition(c, EventExpire, "", now)
	if err != nil {
		// Already resolved between query and expiry; nothing to do.
		if errors.Is(err, ErrInvalidTransition) {
			return false, nil
		}
		return false, err
	}

	opCtx, cancel := context.WithTimeout(ctx, s.opTimeout)
	err = s.confirmationRepo.Update(opCtx, next, c.UpdatedAt)
	cancel()
	if err != nil {
		// Another writer won the race; their transition stands.
		if errors.Is(err, repository.ErrVersionConflict) {
			return false, nil
		}
		return false, err
	}

	if s.notificationService != nil {
		nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opTimeout)
		if err := s.notificationService.NotifyRequestExpired(nctx, next); err != nil {
			log.Printf("warning: notification delivery failed: %v", err)
		}
		cancel()
	}

	return true, nil
}
