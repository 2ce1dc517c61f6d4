package service_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"hotel-booking-backend/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func newTestScheduler() *service.ExpiryScheduler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return service.NewExpiryScheduler(log)
}

func TestExpiryScheduler_OverdueDeadlineFiresImmediately(t *testing.T) {
	scheduler := newTestScheduler()
	defer scheduler.Stop()

	fired := make(chan uuid.UUID, 1)
	scheduler.Bind(func(_ context.Context, bookingID uuid.UUID) {
		fired <- bookingID
	})

	bookingID := uuid.New()
	scheduler.Schedule(bookingID, time.Now().Add(-time.Hour))

	select {
	case got := <-fired:
		assert.Equal(t, bookingID, got)
	case <-time.After(2 * time.Second):
		t.Fatal("expiry callback never fired for an overdue deadline")
	}
}

func TestExpiryScheduler_FutureDeadlineFires(t *testing.T) {
	scheduler := newTestScheduler()
	defer scheduler.Stop()

	fired := make(chan uuid.UUID, 1)
	scheduler.Bind(func(_ context.Context, bookingID uuid.UUID) {
		fired <- bookingID
	})

	bookingID := uuid.New()
	scheduler.Schedule(bookingID, time.Now().Add(20*time.Millisecond))

	select {
	case got := <-fired:
		assert.Equal(t, bookingID, got)
	case <-time.After(2 * time.Second):
		t.Fatal("expiry callback never fired")
	}
}

func TestExpiryScheduler_StopDrainsArmedTimers(t *testing.T) {
	scheduler := newTestScheduler()

	var mu sync.Mutex
	var fired []uuid.UUID
	scheduler.Bind(func(_ context.Context, bookingID uuid.UUID) {
		mu.Lock()
		defer mu.Unlock()
		fired = append(fired, bookingID)
	})

	scheduler.Schedule(uuid.New(), time.Now().Add(time.Hour))
	scheduler.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, fired)
}

func TestExpiryScheduler_ScheduleAfterStopIsIgnored(t *testing.T) {
	scheduler := newTestScheduler()

	fired := make(chan uuid.UUID, 1)
	scheduler.Bind(func(_ context.Context, bookingID uuid.UUID) {
		fired <- bookingID
	})

	scheduler.Stop()
	scheduler.Schedule(uuid.New(), time.Now().Add(-time.Minute))

	select {
	case <-fired:
		t.Fatal("callback fired after Stop")
	case <-time.After(100 * time.Millisecond):
	}
}

// Stop must not start waiting while a concurrent Schedule is between
// its stopped-check and registering the timer goroutine.
func TestExpiryScheduler_ConcurrentScheduleAndStop(t *testing.T) {
	scheduler := newTestScheduler()

	scheduler.Bind(func(context.Context, uuid.UUID) {})

	const producers = 16
	start := make(chan struct{})
	var done sync.WaitGroup
	done.Add(producers)
	for i := 0; i < producers; i++ {
		go func() {
			defer done.Done()
			<-start
			for j := 0; j < 50; j++ {
				scheduler.Schedule(uuid.New(), time.Now().Add(-time.Minute))
			}
		}()
	}

	close(start)
	scheduler.Stop()
	done.Wait()

	// Every timer admitted before Stop has finished by now; anything
	// after is dropped.
	scheduler.Schedule(uuid.New(), time.Now().Add(-time.Minute))
}

func TestExpiryScheduler_StopIsIdempotent(t *testing.T) {
	scheduler := newTestScheduler()
	scheduler.Bind(func(context.Context, uuid.UUID) {})

	scheduler.Stop()
	scheduler.Stop()
}
