package usecase

import (
	"context"
	"errors"
	"time"

	"hotel-booking-backend/internal/converter"
	"hotel-booking-backend/internal/delivery/dto"
	"hotel-booking-backend/internal/delivery/http/middleware"
	"hotel-booking-backend/internal/domain/entity"
	"hotel-booking-backend/internal/domain/repository"
	"hotel-booking-backend/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

var (
	ErrBookingNotFound         = errors.New("booking not found")
	ErrRoomNotFound            = errors.New("room not found")
	ErrInvalidStayDates        = errors.New("check-out date must be after check-in date")
	ErrInvalidDateFormat       = errors.New("invalid date format, use RFC3339 or YYYY-MM-DD")
	ErrGuestCountExceeded      = errors.New("guest count exceeds room capacity")
	ErrRoomUnavailable         = errors.New("room is not available for the selected dates")
	ErrInvalidTransition       = errors.New("booking state does not allow this action")
	ErrBookingAlreadyCancelled = errors.New("booking is already cancelled")
	ErrBookingNotOwned         = errors.New("booking does not belong to you")
	ErrNotAuthenticated        = errors.New("user not found in context")
)

// ExpiryScheduler arms the one-shot payment-window timer for a booking.
type ExpiryScheduler interface {
	Schedule(bookingID uuid.UUID, fireAt time.Time)
}

// ReservationUsecase is the single entry point for the booking lifecycle:
// it validates input, consults confirmed availability, drives the state
// machine through conditional updates, and broadcasts every transition.
type ReservationUsecase interface {
	CheckAvailability(ctx context.Context, req *dto.CheckAvailabilityRequest) (*dto.AvailabilityResponse, error)
	RoomBookedDates(ctx context.Context, roomID uuid.UUID) (*dto.BookedDatesResponse, error)
	CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error)
	AcceptBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error)
	RecordPayment(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error)
	ConfirmPayment(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error)
	CancelBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error)
	GetMyBookings(ctx context.Context) (*dto.BookingListResponse, error)
	GetAllBookings(ctx context.Context) (*dto.BookingListResponse, error)
	GetBookingStats(ctx context.Context) (*dto.BookingStatsResponse, error)
	ExpireBooking(ctx context.Context, bookingID uuid.UUID)
	RecoverPendingExpiries(ctx context.Context) error
}

type reservationUsecase struct {
	log           *logrus.Logger
	bookingRepo   repository.BookingRepository
	roomRepo      repository.RoomRepository
	auditRepo     repository.AuditLogRepository
	publisher     service.EventPublisher
	scheduler     ExpiryScheduler
	pendingExpiry time.Duration
}

func NewReservationUsecase(
	log *logrus.Logger,
	bookingRepo repository.BookingRepository,
	roomRepo repository.RoomRepository,
	auditRepo repository.AuditLogRepository,
	publisher service.EventPublisher,
	scheduler ExpiryScheduler,
	pendingExpiry time.Duration,
) ReservationUsecase {
	return &reservationUsecase{
		log:           log,
		bookingRepo:   bookingRepo,
		roomRepo:      roomRepo,
		auditRepo:     auditRepo,
		publisher:     publisher,
		scheduler:     scheduler,
		pendingExpiry: pendingExpiry,
	}
}

// CheckAvailability answers whether any confirmed booking blocks the
// stay window. Provisional holds (pending, accepted, awaiting
// confirmation) intentionally do not block: concurrent holds are allowed
// and the race is resolved at confirmation time.
func (u *reservationUsecase) CheckAvailability(ctx context.Context, req *dto.CheckAvailabilityRequest) (*dto.AvailabilityResponse, error) {
	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}

	checkIn, checkOut, err := parseStayWindow(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	conflict, err := u.bookingRepo.HasConfirmedConflict(ctx, roomID, checkIn, checkOut, uuid.Nil)
	if err != nil {
		u.log.Warnf("Failed to check availability for room %s: %+v", roomID, err)
		return nil, err
	}

	return &dto.AvailabilityResponse{Available: !conflict}, nil
}

// RoomBookedDates returns the confirmed, non-past stay windows of a room
// for the guest-facing blocked-dates calendar.
func (u *reservationUsecase) RoomBookedDates(ctx context.Context, roomID uuid.UUID) (*dto.BookedDatesResponse, error) {
	intervals, err := u.bookingRepo.ConfirmedIntervals(ctx, roomID, time.Now())
	if err != nil {
		u.log.Warnf("Failed to load booked dates for room %s: %+v", roomID, err)
		return nil, err
	}

	dates := make([]dto.BookedDateRange, len(intervals))
	for i, interval := range intervals {
		dates[i] = dto.BookedDateRange{CheckIn: interval.CheckIn, CheckOut: interval.CheckOut}
	}

	return &dto.BookedDatesResponse{Dates: dates}, nil
}

// CreateBooking validates the request, re-checks confirmed availability
// and persists a pending booking. The total amount is computed here, once,
// and frozen: later room price changes never touch existing bookings.
func (u *reservationUsecase) CreateBooking(ctx context.Context, req *dto.CreateBookingRequest) (*dto.BookingResponse, error) {
	guestID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, ErrRoomNotFound
	}

	checkIn, checkOut, err := parseStayWindow(req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, err
	}

	room, err := u.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		u.log.Warnf("Failed to find room %s: %+v", roomID, err)
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if req.GuestCount > room.Capacity {
		return nil, ErrGuestCountExceeded
	}

	conflict, err := u.bookingRepo.HasConfirmedConflict(ctx, roomID, checkIn, checkOut, uuid.Nil)
	if err != nil {
		u.log.Warnf("Failed availability check for room %s: %+v", roomID, err)
		return nil, err
	}
	if conflict {
		return nil, ErrRoomUnavailable
	}

	nights := entity.NightsBetween(checkIn, checkOut)
	totalAmount := room.PricePerNight.Mul(decimal.NewFromInt(int64(nights)))

	booking := &entity.Booking{
		ID:          uuid.New(),
		GuestID:     guestID,
		RoomID:      roomID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		GuestCount:  req.GuestCount,
		TotalAmount: totalAmount,
		Status:      entity.BookingStatusPending,
		ExpiresAt:   time.Now().Add(u.pendingExpiry),
	}

	if err := u.bookingRepo.Create(ctx, booking); err != nil {
		u.log.Warnf("Failed to create booking for room %s: %+v", roomID, err)
		return nil, err
	}

	u.audit(ctx, &guestID, entity.AuditActionBookingCreate, booking)

	response := u.reload(ctx, booking)
	u.publisher.Publish(ctx, service.EventBookingCreated, response)
	u.scheduler.Schedule(booking.ID, booking.ExpiresAt)

	u.log.Infof("Booking created: id=%s, room=%s, nights=%d, amount=%s", booking.ID, roomID, nights, totalAmount)
	return response, nil
}

// AcceptBooking moves a pending booking to accepted. Elevated only
// (enforced at the route); the compare-and-swap makes concurrent accepts
// race safely.
func (u *reservationUsecase) AcceptBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	actorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	booking, err := u.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	rows, err := u.bookingRepo.UpdateStatus(ctx, bookingID, entity.BookingStatusPending, entity.BookingStatusAccepted)
	if err != nil {
		u.log.Warnf("Failed to accept booking %s: %+v", bookingID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInvalidTransition
	}
	booking.Status = entity.BookingStatusAccepted

	u.audit(ctx, &actorID, entity.AuditActionBookingAccept, booking)

	response := u.reload(ctx, booking)
	u.publisher.Publish(ctx, service.EventBookingUpdated, response)
	u.publishStats(ctx)

	return response, nil
}

// RecordPayment marks an accepted booking as paid by its guest. The real
// system has no payment processor; paying is a status transition the
// guest triggers.
func (u *reservationUsecase) RecordPayment(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	actorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	booking, err := u.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.GuestID != actorID {
		return nil, ErrBookingNotOwned
	}

	rows, err := u.bookingRepo.UpdateStatus(ctx, bookingID, entity.BookingStatusAccepted, entity.BookingStatusAwaitingConfirmation)
	if err != nil {
		u.log.Warnf("Failed to record payment for booking %s: %+v", bookingID, err)
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInvalidTransition
	}
	booking.Status = entity.BookingStatusAwaitingConfirmation

	u.audit(ctx, &actorID, entity.AuditActionBookingPay, booking)

	response := u.reload(ctx, booking)
	u.publisher.Publish(ctx, service.EventBookingUpdated, response)
	u.publishStats(ctx)

	return response, nil
}

// ConfirmPayment is the critical write of the whole subsystem: two
// awaiting bookings for overlapping dates may both be confirmed
// concurrently by staff, and exactly one may win. The overlap re-check
// and the status flip are one conditional update; the loser's booking
// stays awaiting_confirmation for manual resolution because the guest
// has already paid.
func (u *reservationUsecase) ConfirmPayment(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	actorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	booking, err := u.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != entity.BookingStatusAwaitingConfirmation {
		return nil, ErrInvalidTransition
	}

	rows, err := u.bookingRepo.ConfirmIfNoConflict(ctx, booking)
	if err != nil {
		u.log.Warnf("Failed to confirm booking %s: %+v", bookingID, err)
		return nil, err
	}
	if rows == 0 {
		// Zero rows means either a conflicting booking confirmed first or
		// the status moved under us. Re-read to tell the two apart.
		current, err := u.bookingRepo.FindByID(ctx, bookingID)
		if err != nil {
			u.log.Warnf("Failed to re-read booking %s after lost confirm: %+v", bookingID, err)
			return nil, err
		}
		if current != nil && current.Status == entity.BookingStatusAwaitingConfirmation {
			return nil, ErrRoomUnavailable
		}
		return nil, ErrInvalidTransition
	}
	booking.Status = entity.BookingStatusConfirmed

	u.audit(ctx, &actorID, entity.AuditActionBookingConfirm, booking)

	response := u.reload(ctx, booking)
	u.publisher.Publish(ctx, service.EventBookingUpdated, response)
	u.publishStats(ctx)

	u.log.Infof("Booking confirmed: id=%s, room=%s", booking.ID, booking.RoomID)
	return response, nil
}

// CancelBooking cancels from any non-terminal state; owners may cancel
// their own bookings, elevated actors any booking. A confirmed, paid stay
// is not cancellable through this path.
func (u *reservationUsecase) CancelBooking(ctx context.Context, bookingID uuid.UUID) (*dto.BookingResponse, error) {
	actorID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}
	role, _ := middleware.GetRoleFromContext(ctx)

	booking, err := u.findBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.GuestID != actorID && !entity.IsElevated(role) {
		return nil, ErrBookingNotOwned
	}

	if booking.IsCancelled() {
		return nil, ErrBookingAlreadyCancelled
	}
	if !booking.CanBeCancelled() {
		return nil, ErrInvalidTransition
	}

	rows, err := u.bookingRepo.UpdateStatus(ctx, bookingID, booking.Status, entity.BookingStatusCancelled)
	if err != nil {
		u.log.Warnf("Failed to cancel booking %s: %+v", bookingID, err)
		return nil, err
	}
	if rows == 0 {
		// Lost a race against another transition; the caller should
		// re-fetch and decide what to do from the new state.
		return nil, ErrInvalidTransition
	}
	booking.Status = entity.BookingStatusCancelled

	u.audit(ctx, &actorID, entity.AuditActionBookingCancel, booking)

	response := u.reload(ctx, booking)
	u.publisher.Publish(ctx, service.EventBookingUpdated, response)

	u.log.Infof("Booking cancelled: id=%s", bookingID)
	return response, nil
}

// GetMyBookings returns all bookings for the logged-in guest, newest first
func (u *reservationUsecase) GetMyBookings(ctx context.Context) (*dto.BookingListResponse, error) {
	guestID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrNotAuthenticated
	}

	bookings, err := u.bookingRepo.FindByGuestID(ctx, guestID)
	if err != nil {
		u.log.Warnf("Failed to find bookings for guest %s: %+v", guestID, err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

// GetAllBookings returns every booking, newest first. Elevated only.
func (u *reservationUsecase) GetAllBookings(ctx context.Context) (*dto.BookingListResponse, error) {
	bookings, err := u.bookingRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to list bookings: %+v", err)
		return nil, err
	}

	return &dto.BookingListResponse{
		Bookings: converter.BookingsToResponses(bookings),
		Total:    len(bookings),
	}, nil
}

// GetBookingStats returns the confirmed-revenue dashboard projection.
func (u *reservationUsecase) GetBookingStats(ctx context.Context) (*dto.BookingStatsResponse, error) {
	stats, err := u.bookingRepo.Stats(ctx)
	if err != nil {
		u.log.Warnf("Failed to compute booking stats: %+v", err)
		return nil, err
	}

	recent, err := u.bookingRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to load recent bookings: %+v", err)
		return nil, err
	}
	if len(recent) > 5 {
		recent = recent[:5]
	}

	return &dto.BookingStatsResponse{
		TotalBookings:  stats.TotalBookings,
		TotalRevenue:   stats.TotalRevenue,
		RecentBookings: converter.BookingsToResponses(recent),
	}, nil
}

// ExpireBooking closes the payment window of a pending booking. It is the
// expiry timer callback: it re-checks state through the compare-and-swap,
// so redundant firings and firings that lost to a real transition are
// no-ops. Errors are logged and swallowed; there is no caller to report to.
func (u *reservationUsecase) ExpireBooking(ctx context.Context, bookingID uuid.UUID) {
	rows, err := u.bookingRepo.UpdateStatus(ctx, bookingID, entity.BookingStatusPending, entity.BookingStatusCancelled)
	if err != nil {
		u.log.Warnf("Failed to expire booking %s: %+v", bookingID, err)
		return
	}
	if rows == 0 {
		// The booking progressed (or was already cancelled); never
		// downgrade a booking that moved on.
		u.log.Debugf("Expiry no-op for booking %s", bookingID)
		return
	}

	// The cancel already happened; a failed re-read must not swallow the
	// audit entry or the broadcast, so fall back to the state we know.
	booking, err := u.bookingRepo.FindByID(ctx, bookingID)
	if err != nil || booking == nil {
		u.log.Warnf("Failed to reload expired booking %s: %+v", bookingID, err)
		booking = &entity.Booking{ID: bookingID, Status: entity.BookingStatusCancelled}
	}

	u.audit(ctx, nil, entity.AuditActionBookingExpire, booking)
	u.publisher.Publish(ctx, service.EventBookingUpdated, converter.BookingToResponse(booking))

	u.log.Infof("Booking expired: id=%s (payment window closed)", bookingID)
}

// RecoverPendingExpiries re-arms expiry timers from the persisted
// deadlines of all pending bookings. Called at startup before traffic;
// overdue deadlines fire immediately so a crash during the payment window
// cannot strand a pending booking.
func (u *reservationUsecase) RecoverPendingExpiries(ctx context.Context) error {
	bookings, err := u.bookingRepo.FindPendingExpiries(ctx)
	if err != nil {
		u.log.Warnf("Failed to load pending expiries: %+v", err)
		return err
	}

	for _, booking := range bookings {
		u.scheduler.Schedule(booking.ID, booking.ExpiresAt)
	}

	if len(bookings) > 0 {
		u.log.Infof("Recovered %d pending expiry timers", len(bookings))
	}
	return nil
}

// findBooking loads a booking or maps its absence to ErrBookingNotFound.
func (u *reservationUsecase) findBooking(ctx context.Context, bookingID uuid.UUID) (*entity.Booking, error) {
	booking, err := u.bookingRepo.FindByID(ctx, bookingID)
	if err != nil {
		u.log.Warnf("Failed to find booking %s: %+v", bookingID, err)
		return nil, err
	}
	if booking == nil {
		return nil, ErrBookingNotFound
	}
	return booking, nil
}

// reload re-reads the booking with guest and room associations for the
// response and event payload, falling back to what we already hold.
func (u *reservationUsecase) reload(ctx context.Context, booking *entity.Booking) *dto.BookingResponse {
	full, err := u.bookingRepo.FindByID(ctx, booking.ID)
	if err != nil || full == nil {
		u.log.Warnf("Failed to reload booking %s: %+v", booking.ID, err)
		return converter.BookingToResponse(booking)
	}
	return converter.BookingToResponse(full)
}

func (u *reservationUsecase) audit(ctx context.Context, actorID *uuid.UUID, action string, booking *entity.Booking) {
	entry := &entity.AuditLog{
		UserID: actorID,
		Action: action,
		Metadata: entity.JSON{
			"booking_id": booking.ID.String(),
			"room_id":    booking.RoomID.String(),
			"status":     string(booking.Status),
		},
	}
	if err := u.auditRepo.Create(ctx, entry); err != nil {
		u.log.Warnf("Failed to write audit log for booking %s: %+v", booking.ID, err)
	}
}

// publishStats broadcasts the refreshed dashboard projection after a
// transition. Failures only log; stats are advisory.
func (u *reservationUsecase) publishStats(ctx context.Context) {
	stats, err := u.GetBookingStats(ctx)
	if err != nil {
		return
	}
	u.publisher.Publish(ctx, service.EventStatsUpdated, stats)
}

// parseStayWindow parses and orders the stay dates. Dates come either as
// RFC3339 instants or bare YYYY-MM-DD calendar days.
func parseStayWindow(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := parseStayDate(checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateFormat
	}
	out, err := parseStayDate(checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidDateFormat
	}
	if !in.Before(out) {
		return time.Time{}, time.Time{}, ErrInvalidStayDates
	}
	return in, out, nil
}

func parseStayDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
