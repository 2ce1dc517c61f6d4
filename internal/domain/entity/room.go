package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// RoomType classifies a room's tier
type RoomType string

const (
	RoomTypeStandard RoomType = "STANDARD"
	RoomTypePremium  RoomType = "PREMIUM"
	RoomTypeSuite    RoomType = "SUITE"
)

// Room represents a bookable hotel room. Bookings reference rooms but
// never own them; occupancy is always derived from confirmed bookings.
type Room struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name          string          `gorm:"type:varchar(100);not null" json:"name"`
	RoomNumber    string          `gorm:"type:varchar(16);uniqueIndex;not null" json:"room_number"`
	Description   string          `gorm:"type:text" json:"description"`
	PricePerNight decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price_per_night"`
	Capacity      int             `gorm:"not null" json:"capacity"`
	RoomType      RoomType        `gorm:"type:varchar(32);not null;default:'STANDARD'" json:"room_type"`
	Amenities     datatypes.JSON  `gorm:"type:jsonb" json:"amenities,omitempty"`
	Images        datatypes.JSON  `gorm:"type:jsonb" json:"images,omitempty"`
	IsAvailable   bool            `gorm:"not null;default:true" json:"is_available"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Room) TableName() string {
	return "rooms"
}

// RoomStats is the occupancy projection for the admin dashboard.
type RoomStats struct {
	TotalRooms     int64   `json:"total_rooms"`
	AvailableRooms int64   `json:"available_rooms"`
	OccupancyRate  float64 `json:"occupancy_rate"`
}
