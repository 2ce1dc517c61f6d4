package entity_test

import (
	"testing"
	"time"

	"hotel-booking-backend/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func day(n int) time.Time {
	return time.Date(2026, 6, n, 0, 0, 0, 0, time.UTC)
}

func TestNightsBetween(t *testing.T) {
	tests := []struct {
		name     string
		checkIn  time.Time
		checkOut time.Time
		want     int
	}{
		{"two full nights", day(1), day(3), 2},
		{"single night", day(1), day(2), 1},
		{"partial day rounds up", day(1), day(2).Add(6 * time.Hour), 2},
		{"under a day charges one night", day(1), day(1).Add(5 * time.Hour), 1},
		{"zero duration", day(1), day(1), 0},
		{"inverted window", day(3), day(1), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, entity.NightsBetween(tt.checkIn, tt.checkOut))
		})
	}
}

func TestBooking_Overlaps(t *testing.T) {
	booking := &entity.Booking{CheckIn: day(10), CheckOut: day(13)}

	assert.True(t, booking.Overlaps(day(12), day(15)), "partial overlap at tail")
	assert.True(t, booking.Overlaps(day(8), day(11)), "partial overlap at head")
	assert.True(t, booking.Overlaps(day(9), day(14)), "fully containing window")
	assert.True(t, booking.Overlaps(day(11), day(12)), "fully contained window")

	// Half-open interval: shared boundary days do not conflict.
	assert.False(t, booking.Overlaps(day(13), day(16)), "new stay starts on check-out day")
	assert.False(t, booking.Overlaps(day(7), day(10)), "new stay ends on check-in day")
}

func TestBooking_CanBeCancelled(t *testing.T) {
	for _, status := range []entity.BookingStatus{
		entity.BookingStatusPending,
		entity.BookingStatusAccepted,
		entity.BookingStatusAwaitingConfirmation,
	} {
		booking := &entity.Booking{Status: status}
		assert.True(t, booking.CanBeCancelled(), "status %s", status)
	}

	for _, status := range []entity.BookingStatus{
		entity.BookingStatusConfirmed,
		entity.BookingStatusCancelled,
	} {
		booking := &entity.Booking{Status: status}
		assert.False(t, booking.CanBeCancelled(), "status %s", status)
		assert.True(t, booking.IsTerminal(), "status %s", status)
	}
}
