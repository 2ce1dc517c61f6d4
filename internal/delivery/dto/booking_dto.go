package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateBookingRequest struct {
	RoomID     string `json:"room_id" validate:"required,uuid4"`
	CheckIn    string `json:"check_in" validate:"required"`
	CheckOut   string `json:"check_out" validate:"required"`
	GuestCount int    `json:"guest_count" validate:"required,min=1"`
}

type CheckAvailabilityRequest struct {
	RoomID   string `json:"room_id" validate:"required,uuid4"`
	CheckIn  string `json:"check_in" validate:"required"`
	CheckOut string `json:"check_out" validate:"required"`
}

// Response DTOs

type BookingResponse struct {
	ID          uuid.UUID       `json:"id"`
	GuestID     uuid.UUID       `json:"guest_id"`
	RoomID      uuid.UUID       `json:"room_id"`
	CheckIn     time.Time       `json:"check_in"`
	CheckOut    time.Time       `json:"check_out"`
	Nights      int             `json:"nights"`
	GuestCount  int             `json:"guest_count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Status      string          `json:"status"`
	ExpiresAt   time.Time       `json:"expires_at"`
	Guest       *GuestResponse  `json:"guest,omitempty"`
	Room        *RoomResponse   `json:"room,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Total    int               `json:"total"`
}

type AvailabilityResponse struct {
	Available bool `json:"available"`
}

type BookedDateRange struct {
	CheckIn  time.Time `json:"check_in"`
	CheckOut time.Time `json:"check_out"`
}

type BookedDatesResponse struct {
	Dates []BookedDateRange `json:"dates"`
}

type BookingStatsResponse struct {
	TotalBookings  int64             `json:"total_bookings"`
	TotalRevenue   decimal.Decimal   `json:"total_revenue"`
	RecentBookings []BookingResponse `json:"recent_bookings"`
}
