package entity

import (
	"time"

	"github.com/google/uuid"
)

// Role names. Staff and admin are the elevated roles allowed to accept
// bookings and confirm payments.
const (
	RoleGuest = "guest"
	RoleStaff = "staff"
	RoleAdmin = "admin"
)

// IsElevated reports whether a role carries staff/admin capability.
func IsElevated(role string) bool {
	return role == RoleStaff || role == RoleAdmin
}

// User represents an authenticated identity
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"type:text;not null" json:"-"`
	FullName  string    `gorm:"type:varchar(255);not null" json:"full_name"`
	Role      string    `gorm:"type:varchar(32);not null;default:'guest';index" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
