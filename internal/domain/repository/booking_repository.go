package repository

import (
	"context"
	"time"

	"hotel-booking-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// BookingRepository persists bookings. Every state transition goes through
// a conditional update so that concurrent attempts race safely: exactly one
// caller observes a non-zero affected-row count.
type BookingRepository interface {
	Create(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error)
	FindByGuestID(ctx context.Context, guestID uuid.UUID) ([]entity.Booking, error)
	FindAll(ctx context.Context) ([]entity.Booking, error)

	// UpdateStatus performs a compare-and-swap on status: the row is only
	// written when its current status equals from. Returns affected rows
	// (1 = transition applied, 0 = lost the race or illegal state).
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (int64, error)

	// ConfirmIfNoConflict flips an awaiting_confirmation booking to
	// confirmed in a single conditional update that also re-verifies no
	// other confirmed booking overlaps the same room and stay window.
	// Returns affected rows (0 = lost the race or a conflicting booking
	// confirmed first).
	ConfirmIfNoConflict(ctx context.Context, booking *entity.Booking) (int64, error)

	// HasConfirmedConflict reports whether any confirmed booking for the
	// room overlaps [checkIn, checkOut). excludeID is skipped so a booking
	// never conflicts with itself.
	HasConfirmedConflict(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) (bool, error)

	// ConfirmedIntervals returns the confirmed, non-past stay windows for a
	// room, soonest first.
	ConfirmedIntervals(ctx context.Context, roomID uuid.UUID, from time.Time) ([]entity.StayInterval, error)

	// FindPendingExpiries returns ids and deadlines of all pending
	// bookings, for re-arming expiry timers after a restart.
	FindPendingExpiries(ctx context.Context) ([]entity.Booking, error)

	Stats(ctx context.Context) (*entity.BookingStats, error)
}
