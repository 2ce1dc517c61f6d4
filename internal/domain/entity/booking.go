package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BookingStatus represents the lifecycle state of a booking
type BookingStatus string

const (
	BookingStatusPending              BookingStatus = "pending"
	BookingStatusAccepted             BookingStatus = "accepted"
	BookingStatusAwaitingConfirmation BookingStatus = "awaiting_confirmation"
	BookingStatusConfirmed            BookingStatus = "confirmed"
	BookingStatusCancelled            BookingStatus = "cancelled"
)

// Booking represents a guest's reservation of a room over a stay window.
// CheckIn/CheckOut form a half-open interval [CheckIn, CheckOut): two stays
// may share a boundary day (back-to-back check-out and check-in).
//
// Stay window, guest count and total amount are frozen at creation; only
// Status (and UpdatedAt) change afterwards.
type Booking struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	GuestID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"guest_id"`
	RoomID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"room_id"`
	CheckIn     time.Time       `gorm:"not null" json:"check_in"`
	CheckOut    time.Time       `gorm:"not null" json:"check_out"`
	GuestCount  int             `gorm:"not null" json:"guest_count"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"total_amount"`
	Status      BookingStatus   `gorm:"type:varchar(32);not null;default:'pending';index" json:"status"`
	// ExpiresAt is the persisted payment deadline for a pending booking.
	// Keeping it in the row lets a restarted process re-arm or immediately
	// fire overdue expiry timers instead of stranding pending bookings.
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Guest User `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
	Room  Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

func (Booking) TableName() string {
	return "bookings"
}

// IsPending checks if booking is still awaiting acceptance
func (b *Booking) IsPending() bool {
	return b.Status == BookingStatusPending
}

// IsConfirmed checks if booking reached its confirmed terminal state
func (b *Booking) IsConfirmed() bool {
	return b.Status == BookingStatusConfirmed
}

// IsCancelled checks if booking is cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// IsTerminal reports whether no further transition is possible
func (b *Booking) IsTerminal() bool {
	return b.Status == BookingStatusConfirmed || b.Status == BookingStatusCancelled
}

// CanBeCancelled reports whether a cancel transition is legal from the
// current status. A confirmed, paid stay is never cancellable through
// this path.
func (b *Booking) CanBeCancelled() bool {
	return !b.IsTerminal()
}

// Overlaps reports whether the booking's stay window overlaps the
// half-open interval [checkIn, checkOut). Touching boundaries do not
// overlap, which is what allows back-to-back stays.
func (b *Booking) Overlaps(checkIn, checkOut time.Time) bool {
	return b.CheckIn.Before(checkOut) && b.CheckOut.After(checkIn)
}

// NightsBetween returns the number of nights charged for a stay window.
// Partial days round up and any stay charges at least one night.
func NightsBetween(checkIn, checkOut time.Time) int {
	d := checkOut.Sub(checkIn)
	if d <= 0 {
		return 0
	}
	nights := int((d + 24*time.Hour - time.Nanosecond) / (24 * time.Hour))
	if nights < 1 {
		nights = 1
	}
	return nights
}

// StayInterval is a confirmed, blocked date range for a room, used to
// render the guest-facing calendar.
type StayInterval struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

// BookingStats is the admin dashboard projection over bookings.
type BookingStats struct {
	TotalBookings int64           `json:"total_bookings"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}
