package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// How long an expiry callback gets to run. The callback only does a
// re-read plus one conditional update, so this is generous.
const expireCallbackTimeout = 30 * time.Second

// ExpireFunc is invoked when a booking's payment window closes. It must
// be idempotent: the scheduler may fire it more than once for the same
// booking (a restart replays persisted deadlines).
type ExpireFunc func(ctx context.Context, bookingID uuid.UUID)

// ExpiryScheduler arms one-shot timers that close the payment window of
// pending bookings. Timers are in-process; durability comes from the
// persisted expires_at column, which bootstrap replays through Schedule
// on startup. Cancellation of an armed timer is advisory only: a stale
// firing re-checks booking state and no-ops.
type ExpiryScheduler struct {
	log    *logrus.Logger
	expire ExpireFunc

	// mu orders Schedule's stopped-check-plus-Add against Stop, so no
	// timer goroutine can register once Stop has begun waiting.
	mu       sync.RWMutex
	stopped  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewExpiryScheduler creates a scheduler. Bind must be called before the
// first Schedule.
func NewExpiryScheduler(log *logrus.Logger) *ExpiryScheduler {
	return &ExpiryScheduler{
		log:      log,
		stopChan: make(chan struct{}),
	}
}

// Bind sets the callback fired on expiry. Separate from the constructor
// because the reservation usecase both owns the callback and needs the
// scheduler injected at construction.
func (s *ExpiryScheduler) Bind(fn ExpireFunc) {
	s.expire = fn
}

// Schedule arms a one-shot timer for bookingID at fireAt. A deadline in
// the past fires immediately, which is how overdue pending bookings are
// swept up after a restart.
func (s *ExpiryScheduler) Schedule(bookingID uuid.UUID, fireAt time.Time) {
	s.mu.RLock()
	if s.stopped {
		s.mu.RUnlock()
		return
	}
	s.wg.Add(1)
	s.mu.RUnlock()

	go func() {
		defer s.wg.Done()

		delay := time.Until(fireAt)
		if delay > 0 {
			timer := time.NewTimer(delay)
			defer timer.Stop()

			select {
			case <-s.stopChan:
				return
			case <-timer.C:
			}
		}

		ctx, cancel := context.WithTimeout(context.Background(), expireCallbackTimeout)
		defer cancel()

		s.log.Debugf("Expiry timer fired for booking %s", bookingID)
		s.expire(ctx, bookingID)
	}()
}

// Stop drains armed timers without firing them. Safe to call multiple
// times. Pending bookings whose timers are dropped here are recovered
// from expires_at on the next startup.
func (s *ExpiryScheduler) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
	s.log.Info("ExpiryScheduler stopped")
}
