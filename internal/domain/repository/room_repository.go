package repository

import (
	"context"
	"time"

	"hotel-booking-backend/internal/domain/entity"

	"github.com/google/uuid"
)

type RoomRepository interface {
	Create(ctx context.Context, room *entity.Room) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.Room, error)
	FindAll(ctx context.Context) ([]entity.Room, error)
	Update(ctx context.Context, room *entity.Room) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountAll(ctx context.Context) (int64, error)

	// CountOccupied counts distinct rooms with a confirmed booking whose
	// stay window covers at.
	CountOccupied(ctx context.Context, at time.Time) (int64, error)
}
