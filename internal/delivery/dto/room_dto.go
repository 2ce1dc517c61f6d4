package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateRoomRequest struct {
	Name          string          `json:"name" validate:"required,min=2,max=100"`
	RoomNumber    string          `json:"room_number" validate:"required,min=1,max=16"`
	Description   string          `json:"description" validate:"required,max=500"`
	PricePerNight decimal.Decimal `json:"price_per_night" validate:"required"`
	Capacity      int             `json:"capacity" validate:"required,min=1"`
	RoomType      string          `json:"room_type" validate:"required,oneof=STANDARD PREMIUM SUITE"`
	Amenities     []string        `json:"amenities" validate:"omitempty"`
	Images        []string        `json:"images" validate:"omitempty"`
}

type UpdateRoomRequest struct {
	Name          string           `json:"name" validate:"omitempty,min=2,max=100"`
	Description   string           `json:"description" validate:"omitempty,max=500"`
	PricePerNight *decimal.Decimal `json:"price_per_night" validate:"omitempty"`
	Capacity      *int             `json:"capacity" validate:"omitempty,min=1"`
	RoomType      string           `json:"room_type" validate:"omitempty,oneof=STANDARD PREMIUM SUITE"`
	Amenities     []string         `json:"amenities" validate:"omitempty"`
	Images        []string         `json:"images" validate:"omitempty"`
	IsAvailable   *bool            `json:"is_available" validate:"omitempty"`
}

// Response DTOs

type RoomResponse struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	RoomNumber    string          `json:"room_number"`
	Description   string          `json:"description"`
	PricePerNight decimal.Decimal `json:"price_per_night"`
	Capacity      int             `json:"capacity"`
	RoomType      string          `json:"room_type"`
	Amenities     []string        `json:"amenities,omitempty"`
	Images        []string        `json:"images,omitempty"`
	IsAvailable   bool            `json:"is_available"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
	Total int            `json:"total"`
}

type RoomStatsResponse struct {
	TotalRooms     int64   `json:"total_rooms"`
	AvailableRooms int64   `json:"available_rooms"`
	OccupancyRate  float64 `json:"occupancy_rate"`
}
