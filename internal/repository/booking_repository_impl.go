package repository

import (
	"context"
	"errors"
	"time"

	"hotel-booking-backend/internal/domain/entity"
	domainRepo "hotel-booking-backend/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) domainRepo.BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, booking *entity.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.db.WithContext(ctx).Preload("Guest").Preload("Room").Where("id = ?", id).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByGuestID(ctx context.Context, guestID uuid.UUID) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.WithContext(ctx).Preload("Room").
		Where("guest_id = ?", guestID).
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) FindAll(ctx context.Context) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.WithContext(ctx).Preload("Guest").Preload("Room").
		Order("created_at DESC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// UpdateStatus is the compare-and-swap every transition rides on. Two
// concurrent attempts to move the same booking both run the UPDATE, but
// only the one whose expected status still matches writes a row.
func (r *bookingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to entity.BookingStatus) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected, result.Error
}

// ConfirmIfNoConflict makes the confirmed-overlap re-check and the status
// write one atomic statement. Whichever of two racing confirmations lands
// first wins; the loser's NOT EXISTS fails and zero rows are affected.
func (r *bookingRepository) ConfirmIfNoConflict(ctx context.Context, booking *entity.Booking) (int64, error) {
	result := r.db.WithContext(ctx).Exec(`
		UPDATE bookings
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?
		AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.room_id = ?
			  AND b.id <> ?
			  AND b.status = ?
			  AND b.check_in < ?
			  AND b.check_out > ?
		)`,
		entity.BookingStatusConfirmed, time.Now(),
		booking.ID, entity.BookingStatusAwaitingConfirmation,
		booking.RoomID, booking.ID, entity.BookingStatusConfirmed,
		booking.CheckOut, booking.CheckIn,
	)
	return result.RowsAffected, result.Error
}

func (r *bookingRepository) HasConfirmedConflict(ctx context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Booking{}).
		Where("room_id = ? AND id <> ? AND status = ? AND check_in < ? AND check_out > ?",
			roomID, excludeID, entity.BookingStatusConfirmed, checkOut, checkIn).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *bookingRepository) ConfirmedIntervals(ctx context.Context, roomID uuid.UUID, from time.Time) ([]entity.StayInterval, error) {
	var intervals []entity.StayInterval
	err := r.db.WithContext(ctx).Model(&entity.Booking{}).
		Select("check_in, check_out").
		Where("room_id = ? AND status = ? AND check_out > ?", roomID, entity.BookingStatusConfirmed, from).
		Order("check_in ASC").
		Scan(&intervals).Error
	if err != nil {
		return nil, err
	}
	return intervals, nil
}

func (r *bookingRepository) FindPendingExpiries(ctx context.Context) ([]entity.Booking, error) {
	var bookings []entity.Booking
	err := r.db.WithContext(ctx).
		Where("status = ?", entity.BookingStatusPending).
		Order("expires_at ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// Stats counts every booking but only confirmed ones contribute revenue.
func (r *bookingRepository) Stats(ctx context.Context) (*entity.BookingStats, error) {
	var stats entity.BookingStats
	err := r.db.WithContext(ctx).Model(&entity.Booking{}).
		Select("COUNT(*) as total_bookings, COALESCE(SUM(CASE WHEN status = ? THEN total_amount ELSE 0 END), 0) as total_revenue",
			entity.BookingStatusConfirmed).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}
