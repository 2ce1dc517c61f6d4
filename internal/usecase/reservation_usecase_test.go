package usecase_test

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"hotel-booking-backend/internal/delivery/dto"
	"hotel-booking-backend/internal/delivery/http/middleware"
	"hotel-booking-backend/internal/domain/entity"
	"hotel-booking-backend/internal/service"
	"hotel-booking-backend/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBookingRepo is an in-memory BookingRepository with the same
// compare-and-swap semantics as the SQL implementation: transitions only
// apply when the current status matches, and confirmation re-checks
// overlap against confirmed bookings under one lock.
type fakeBookingRepo struct {
	mu       sync.Mutex
	bookings map[uuid.UUID]*entity.Booking
	findErr  error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: make(map[uuid.UUID]*entity.Booking)}
}

func (r *fakeBookingRepo) Create(_ context.Context, booking *entity.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *booking
	r.bookings[booking.ID] = &clone
	return nil
}

func (r *fakeBookingRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	booking, ok := r.bookings[id]
	if !ok {
		return nil, nil
	}
	clone := *booking
	return &clone, nil
}

func (r *fakeBookingRepo) FindByGuestID(_ context.Context, guestID uuid.UUID) ([]entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Booking
	for _, b := range r.bookings {
		if b.GuestID == guestID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindAll(_ context.Context) ([]entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Booking
	for _, b := range r.bookings {
		out = append(out, *b)
	}
	return out, nil
}

func (r *fakeBookingRepo) UpdateStatus(_ context.Context, id uuid.UUID, from, to entity.BookingStatus) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking, ok := r.bookings[id]
	if !ok || booking.Status != from {
		return 0, nil
	}
	booking.Status = to
	booking.UpdatedAt = time.Now()
	return 1, nil
}

func (r *fakeBookingRepo) ConfirmIfNoConflict(_ context.Context, booking *entity.Booking) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.bookings[booking.ID]
	if !ok || current.Status != entity.BookingStatusAwaitingConfirmation {
		return 0, nil
	}
	for _, other := range r.bookings {
		if other.ID == booking.ID || other.RoomID != booking.RoomID {
			continue
		}
		if other.Status == entity.BookingStatusConfirmed && other.Overlaps(booking.CheckIn, booking.CheckOut) {
			return 0, nil
		}
	}
	current.Status = entity.BookingStatusConfirmed
	current.UpdatedAt = time.Now()
	return 1, nil
}

func (r *fakeBookingRepo) HasConfirmedConflict(_ context.Context, roomID uuid.UUID, checkIn, checkOut time.Time, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, b := range r.bookings {
		if b.ID == excludeID || b.RoomID != roomID {
			continue
		}
		if b.Status == entity.BookingStatusConfirmed && b.Overlaps(checkIn, checkOut) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeBookingRepo) ConfirmedIntervals(_ context.Context, roomID uuid.UUID, from time.Time) ([]entity.StayInterval, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.StayInterval
	for _, b := range r.bookings {
		if b.RoomID == roomID && b.Status == entity.BookingStatusConfirmed && b.CheckOut.After(from) {
			out = append(out, entity.StayInterval{CheckIn: b.CheckIn, CheckOut: b.CheckOut})
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) FindPendingExpiries(_ context.Context) ([]entity.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Booking
	for _, b := range r.bookings {
		if b.Status == entity.BookingStatusPending {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (r *fakeBookingRepo) Stats(_ context.Context) (*entity.BookingStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &entity.BookingStats{TotalRevenue: decimal.Zero}
	for _, b := range r.bookings {
		stats.TotalBookings++
		if b.Status == entity.BookingStatusConfirmed {
			stats.TotalRevenue = stats.TotalRevenue.Add(b.TotalAmount)
		}
	}
	return stats, nil
}

func (r *fakeBookingRepo) get(id uuid.UUID) *entity.Booking {
	r.mu.Lock()
	defer r.mu.Unlock()
	booking := r.bookings[id]
	clone := *booking
	return &clone
}

type fakeRoomRepo struct {
	mu    sync.Mutex
	rooms map[uuid.UUID]*entity.Room
}

func newFakeRoomRepo() *fakeRoomRepo {
	return &fakeRoomRepo{rooms: make(map[uuid.UUID]*entity.Room)}
}

func (r *fakeRoomRepo) Create(_ context.Context, room *entity.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *room
	r.rooms[room.ID] = &clone
	return nil
}

func (r *fakeRoomRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.rooms[id]
	if !ok {
		return nil, nil
	}
	clone := *room
	return &clone, nil
}

func (r *fakeRoomRepo) FindAll(_ context.Context) ([]entity.Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.Room
	for _, room := range r.rooms {
		out = append(out, *room)
	}
	return out, nil
}

func (r *fakeRoomRepo) Update(_ context.Context, room *entity.Room) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *room
	r.rooms[room.ID] = &clone
	return nil
}

func (r *fakeRoomRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, id)
	return nil
}

func (r *fakeRoomRepo) CountAll(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.rooms)), nil
}

func (r *fakeRoomRepo) CountOccupied(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []entity.AuditLog
}

func (r *fakeAuditRepo) Create(_ context.Context, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *log)
	return nil
}

func (r *fakeAuditRepo) FindAll(_ context.Context) ([]entity.AuditLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]entity.AuditLog(nil), r.entries...), nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.entries {
		out = append(out, e.Action)
	}
	return out
}

type publishedEvent struct {
	Event   string
	Payload interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) Publish(_ context.Context, event string, payload interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Event: event, Payload: payload})
}

func (p *fakePublisher) published() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, e := range p.events {
		out = append(out, e.Event)
	}
	return out
}

// bookingUpdates returns the booking payloads of all bookingUpdated
// events, in publish order.
func (p *fakePublisher) bookingUpdates() []*dto.BookingResponse {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []*dto.BookingResponse
	for _, e := range p.events {
		if e.Event == service.EventBookingUpdated {
			if resp, ok := e.Payload.(*dto.BookingResponse); ok {
				out = append(out, resp)
			}
		}
	}
	return out
}

type scheduledExpiry struct {
	BookingID uuid.UUID
	FireAt    time.Time
}

type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledExpiry
}

func (s *fakeScheduler) Schedule(bookingID uuid.UUID, fireAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled = append(s.scheduled, scheduledExpiry{BookingID: bookingID, FireAt: fireAt})
}

func (s *fakeScheduler) calls() []scheduledExpiry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]scheduledExpiry(nil), s.scheduled...)
}

type reservationFixture struct {
	usecase     usecase.ReservationUsecase
	bookingRepo *fakeBookingRepo
	roomRepo    *fakeRoomRepo
	auditRepo   *fakeAuditRepo
	publisher   *fakePublisher
	scheduler   *fakeScheduler
}

func newReservationFixture() *reservationFixture {
	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &reservationFixture{
		bookingRepo: newFakeBookingRepo(),
		roomRepo:    newFakeRoomRepo(),
		auditRepo:   &fakeAuditRepo{},
		publisher:   &fakePublisher{},
		scheduler:   &fakeScheduler{},
	}
	f.usecase = usecase.NewReservationUsecase(log, f.bookingRepo, f.roomRepo, f.auditRepo, f.publisher, f.scheduler, 30*time.Minute)
	return f
}

func (f *reservationFixture) addRoom(capacity int, price string) *entity.Room {
	room := &entity.Room{
		ID:            uuid.New(),
		Name:          "Deluxe Sea View",
		RoomNumber:    "101",
		PricePerNight: decimal.RequireFromString(price),
		Capacity:      capacity,
		RoomType:      entity.RoomTypeStandard,
		IsAvailable:   true,
	}
	f.roomRepo.Create(context.Background(), room)
	return room
}

func (f *reservationFixture) addBooking(guestID uuid.UUID, roomID uuid.UUID, status entity.BookingStatus, checkIn, checkOut time.Time) *entity.Booking {
	booking := &entity.Booking{
		ID:          uuid.New(),
		GuestID:     guestID,
		RoomID:      roomID,
		CheckIn:     checkIn,
		CheckOut:    checkOut,
		GuestCount:  1,
		TotalAmount: decimal.RequireFromString("100.00"),
		Status:      status,
		ExpiresAt:   time.Now().Add(30 * time.Minute),
	}
	f.bookingRepo.Create(context.Background(), booking)
	return booking
}

func authedCtx(userID uuid.UUID, role string) context.Context {
	ctx := context.WithValue(context.Background(), middleware.UserIDKey, userID)
	return context.WithValue(ctx, middleware.RoleKey, role)
}

func stay(daysFromNow, nights int) (time.Time, time.Time) {
	checkIn := time.Now().AddDate(0, 0, daysFromNow).Truncate(24 * time.Hour)
	return checkIn, checkIn.AddDate(0, 0, nights)
}

func TestCreateBooking_Success(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	guestID := uuid.New()
	checkIn, checkOut := stay(10, 3)

	resp, err := f.usecase.CreateBooking(authedCtx(guestID, entity.RoleGuest), &dto.CreateBookingRequest{
		RoomID:     room.ID.String(),
		CheckIn:    checkIn.Format(time.RFC3339),
		CheckOut:   checkOut.Format(time.RFC3339),
		GuestCount: 2,
	})

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, string(entity.BookingStatusPending), resp.Status)
	assert.Equal(t, 3, resp.Nights)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("450.00")), "got %s", resp.TotalAmount)

	assert.Equal(t, []string{service.EventBookingCreated}, f.publisher.published())
	assert.Equal(t, []string{entity.AuditActionBookingCreate}, f.auditRepo.actions())

	calls := f.scheduler.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, resp.ID, calls[0].BookingID)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), calls[0].FireAt, 5*time.Second)
}

func TestCreateBooking_CheckOutNotAfterCheckIn(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, _ := stay(10, 3)

	_, err := f.usecase.CreateBooking(authedCtx(uuid.New(), entity.RoleGuest), &dto.CreateBookingRequest{
		RoomID:     room.ID.String(),
		CheckIn:    checkIn.Format(time.RFC3339),
		CheckOut:   checkIn.Format(time.RFC3339),
		GuestCount: 1,
	})

	assert.ErrorIs(t, err, usecase.ErrInvalidStayDates)
	assert.Empty(t, f.publisher.published())
	assert.Empty(t, f.scheduler.calls())
}

func TestCreateBooking_BadDateFormat(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")

	_, err := f.usecase.CreateBooking(authedCtx(uuid.New(), entity.RoleGuest), &dto.CreateBookingRequest{
		RoomID:     room.ID.String(),
		CheckIn:    "12/25/2026",
		CheckOut:   "12/28/2026",
		GuestCount: 1,
	})

	assert.ErrorIs(t, err, usecase.ErrInvalidDateFormat)
}

func TestCreateBooking_CalendarDayDates(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "80.00")

	resp, err := f.usecase.CreateBooking(authedCtx(uuid.New(), entity.RoleGuest), &dto.CreateBookingRequest{
		RoomID:     room.ID.String(),
		CheckIn:    "2026-12-20",
		CheckOut:   "2026-12-22",
		GuestCount: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, resp.Nights)
	assert.True(t, resp.TotalAmount.Equal(decimal.RequireFromString("160.00")))
}

func TestCreateBooking_GuestCountExceedsCapacity(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)

	_, err := f.usecase.CreateBooking(authedCtx(uuid.New(), entity.RoleGuest), &dto.CreateBookingRequest{
		RoomID:     room.ID.String(),
		CheckIn:    checkIn.Format(time.RFC3339),
		CheckOut:   checkOut.Format(time.RFC3339),
		GuestCount: 3,
	})

	assert.ErrorIs(t, err, usecase.ErrGuestCountExceeded)
}

func TestCreateBooking_ConfirmedOverlapBlocks(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 3)
	f.addBooking(uuid.New(), room.ID, entity.BookingStatusConfirmed, checkIn, checkOut)

	_, err := f.usecase.CreateBooking(authedCtx(uuid.New(), entity.RoleGuest), &dto.CreateBookingRequest{
		RoomID:     room.ID.String(),
		CheckIn:    checkIn.AddDate(0, 0, 1).Format(time.RFC3339),
		CheckOut:   checkOut.AddDate(0, 0, 1).Format(time.RFC3339),
		GuestCount: 1,
	})

	assert.ErrorIs(t, err, usecase.ErrRoomUnavailable)
}

func TestCreateBooking_BackToBackStayAllowed(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	f.addBooking(uuid.New(), room.ID, entity.BookingStatusConfirmed, checkIn, checkOut)

	// New stay starts exactly on the existing check-out day.
	resp, err := f.usecase.CreateBooking(authedCtx(uuid.New(), entity.RoleGuest), &dto.CreateBookingRequest{
		RoomID:     room.ID.String(),
		CheckIn:    checkOut.Format(time.RFC3339),
		CheckOut:   checkOut.AddDate(0, 0, 2).Format(time.RFC3339),
		GuestCount: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusPending), resp.Status)
}

func TestCreateBooking_PendingHoldDoesNotBlock(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(4, "150.00")
	checkIn, checkOut := stay(10, 3)
	f.addBooking(uuid.New(), room.ID, entity.BookingStatusPending, checkIn, checkOut)

	resp, err := f.usecase.CreateBooking(authedCtx(uuid.New(), entity.RoleGuest), &dto.CreateBookingRequest{
		RoomID:     room.ID.String(),
		CheckIn:    checkIn.Format(time.RFC3339),
		CheckOut:   checkOut.Format(time.RFC3339),
		GuestCount: 1,
	})

	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusPending), resp.Status)
}

func TestAcceptBooking_Success(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(uuid.New(), room.ID, entity.BookingStatusPending, checkIn, checkOut)

	resp, err := f.usecase.AcceptBooking(authedCtx(uuid.New(), entity.RoleStaff), booking.ID)

	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusAccepted), resp.Status)
	assert.Equal(t, []string{service.EventBookingUpdated, service.EventStatsUpdated}, f.publisher.published())
}

func TestAcceptBooking_WrongState(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(uuid.New(), room.ID, entity.BookingStatusCancelled, checkIn, checkOut)

	_, err := f.usecase.AcceptBooking(authedCtx(uuid.New(), entity.RoleStaff), booking.ID)

	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)
}

func TestRecordPayment_Success(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	guestID := uuid.New()
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(guestID, room.ID, entity.BookingStatusAccepted, checkIn, checkOut)

	resp, err := f.usecase.RecordPayment(authedCtx(guestID, entity.RoleGuest), booking.ID)

	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusAwaitingConfirmation), resp.Status)
}

func TestRecordPayment_NotOwner(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(uuid.New(), room.ID, entity.BookingStatusAccepted, checkIn, checkOut)

	_, err := f.usecase.RecordPayment(authedCtx(uuid.New(), entity.RoleGuest), booking.ID)

	assert.ErrorIs(t, err, usecase.ErrBookingNotOwned)
}

func TestConfirmPayment_Success(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(uuid.New(), room.ID, entity.BookingStatusAwaitingConfirmation, checkIn, checkOut)

	resp, err := f.usecase.ConfirmPayment(authedCtx(uuid.New(), entity.RoleStaff), booking.ID)

	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusConfirmed), resp.Status)
	assert.Equal(t, []string{service.EventBookingUpdated, service.EventStatsUpdated}, f.publisher.published())
}

func TestConfirmPayment_WrongState(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(uuid.New(), room.ID, entity.BookingStatusPending, checkIn, checkOut)

	_, err := f.usecase.ConfirmPayment(authedCtx(uuid.New(), entity.RoleStaff), booking.ID)

	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)
}

// Two guests paid for overlapping stays in the same room; staff confirm
// both concurrently. Exactly one wins, and the loser is left awaiting
// confirmation for manual resolution instead of being silently cancelled.
func TestConfirmPayment_ConcurrentOverlap_OnlyOneWins(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 3)
	first := f.addBooking(uuid.New(), room.ID, entity.BookingStatusAwaitingConfirmation, checkIn, checkOut)
	second := f.addBooking(uuid.New(), room.ID, entity.BookingStatusAwaitingConfirmation, checkIn.AddDate(0, 0, 1), checkOut.AddDate(0, 0, 1))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, id := range []uuid.UUID{first.ID, second.ID} {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.usecase.ConfirmPayment(authedCtx(uuid.New(), entity.RoleStaff), id)
		}(i, id)
	}
	wg.Wait()

	var confirmed, unavailable int
	for _, err := range errs {
		switch {
		case err == nil:
			confirmed++
		case err == usecase.ErrRoomUnavailable:
			unavailable++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, confirmed)
	assert.Equal(t, 1, unavailable)

	statuses := map[entity.BookingStatus]int{
		f.bookingRepo.get(first.ID).Status:  0,
		f.bookingRepo.get(second.ID).Status: 0,
	}
	assert.Contains(t, statuses, entity.BookingStatusConfirmed)
	assert.Contains(t, statuses, entity.BookingStatusAwaitingConfirmation)
}

func TestConfirmPayment_LoserStaysAwaiting(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 3)
	winner := f.addBooking(uuid.New(), room.ID, entity.BookingStatusAwaitingConfirmation, checkIn, checkOut)
	loser := f.addBooking(uuid.New(), room.ID, entity.BookingStatusAwaitingConfirmation, checkIn, checkOut)

	_, err := f.usecase.ConfirmPayment(authedCtx(uuid.New(), entity.RoleStaff), winner.ID)
	require.NoError(t, err)

	_, err = f.usecase.ConfirmPayment(authedCtx(uuid.New(), entity.RoleStaff), loser.ID)
	assert.ErrorIs(t, err, usecase.ErrRoomUnavailable)
	assert.Equal(t, entity.BookingStatusAwaitingConfirmation, f.bookingRepo.get(loser.ID).Status)
}

func TestCancelBooking_OwnerCancelsPending(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	guestID := uuid.New()
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(guestID, room.ID, entity.BookingStatusPending, checkIn, checkOut)

	resp, err := f.usecase.CancelBooking(authedCtx(guestID, entity.RoleGuest), booking.ID)

	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusCancelled), resp.Status)
}

func TestCancelBooking_StaffCancelsForeignBooking(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(uuid.New(), room.ID, entity.BookingStatusAwaitingConfirmation, checkIn, checkOut)

	resp, err := f.usecase.CancelBooking(authedCtx(uuid.New(), entity.RoleStaff), booking.ID)

	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusCancelled), resp.Status)
}

func TestCancelBooking_NotOwner(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(uuid.New(), room.ID, entity.BookingStatusPending, checkIn, checkOut)

	_, err := f.usecase.CancelBooking(authedCtx(uuid.New(), entity.RoleGuest), booking.ID)

	assert.ErrorIs(t, err, usecase.ErrBookingNotOwned)
}

func TestCancelBooking_ConfirmedNotCancellable(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	guestID := uuid.New()
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(guestID, room.ID, entity.BookingStatusConfirmed, checkIn, checkOut)

	_, err := f.usecase.CancelBooking(authedCtx(guestID, entity.RoleGuest), booking.ID)

	assert.ErrorIs(t, err, usecase.ErrInvalidTransition)
	assert.Equal(t, entity.BookingStatusConfirmed, f.bookingRepo.get(booking.ID).Status)
}

func TestCancelBooking_AlreadyCancelled(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	guestID := uuid.New()
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(guestID, room.ID, entity.BookingStatusCancelled, checkIn, checkOut)

	_, err := f.usecase.CancelBooking(authedCtx(guestID, entity.RoleGuest), booking.ID)

	assert.ErrorIs(t, err, usecase.ErrBookingAlreadyCancelled)
}

func TestExpireBooking_CancelsPending(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(uuid.New(), room.ID, entity.BookingStatusPending, checkIn, checkOut)

	f.usecase.ExpireBooking(context.Background(), booking.ID)

	assert.Equal(t, entity.BookingStatusCancelled, f.bookingRepo.get(booking.ID).Status)
	assert.Equal(t, []string{service.EventBookingUpdated}, f.publisher.published())
	assert.Equal(t, []string{entity.AuditActionBookingExpire}, f.auditRepo.actions())
}

// A timer that fires after the booking progressed must never downgrade it.
func TestExpireBooking_ProgressedBookingUntouched(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(uuid.New(), room.ID, entity.BookingStatusAccepted, checkIn, checkOut)

	f.usecase.ExpireBooking(context.Background(), booking.ID)

	assert.Equal(t, entity.BookingStatusAccepted, f.bookingRepo.get(booking.ID).Status)
	assert.Empty(t, f.publisher.published())
}

func TestExpireBooking_Idempotent(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(uuid.New(), room.ID, entity.BookingStatusPending, checkIn, checkOut)

	f.usecase.ExpireBooking(context.Background(), booking.ID)
	f.usecase.ExpireBooking(context.Background(), booking.ID)

	assert.Equal(t, entity.BookingStatusCancelled, f.bookingRepo.get(booking.ID).Status)
	// Second firing is a no-op: one audit entry, one event.
	assert.Len(t, f.auditRepo.actions(), 1)
	assert.Len(t, f.publisher.published(), 1)
}

func TestRecoverPendingExpiries_ReArmsOnlyPending(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	pending := f.addBooking(uuid.New(), room.ID, entity.BookingStatusPending, checkIn, checkOut)
	f.addBooking(uuid.New(), room.ID, entity.BookingStatusConfirmed, checkIn, checkOut)

	err := f.usecase.RecoverPendingExpiries(context.Background())

	require.NoError(t, err)
	calls := f.scheduler.calls()
	require.Len(t, calls, 1)
	assert.Equal(t, pending.ID, calls[0].BookingID)
	assert.Equal(t, pending.ExpiresAt.Unix(), calls[0].FireAt.Unix())
}

func TestCheckAvailability_ConflictAndBoundary(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 3)
	f.addBooking(uuid.New(), room.ID, entity.BookingStatusConfirmed, checkIn, checkOut)

	resp, err := f.usecase.CheckAvailability(context.Background(), &dto.CheckAvailabilityRequest{
		RoomID:   room.ID.String(),
		CheckIn:  checkIn.AddDate(0, 0, 2).Format(time.RFC3339),
		CheckOut: checkOut.AddDate(0, 0, 2).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.False(t, resp.Available)

	resp, err = f.usecase.CheckAvailability(context.Background(), &dto.CheckAvailabilityRequest{
		RoomID:   room.ID.String(),
		CheckIn:  checkOut.Format(time.RFC3339),
		CheckOut: checkOut.AddDate(0, 0, 2).Format(time.RFC3339),
	})
	require.NoError(t, err)
	assert.True(t, resp.Available)
}

// One booking walks the whole lifecycle: create, accept, pay, confirm.
// Every step must broadcast, in order, and every bookingUpdated payload
// must carry this booking's id and the new status.
func TestBookingLifecycle_HappyPathEventOrder(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "100.00")
	guestID := uuid.New()
	staffCtx := authedCtx(uuid.New(), entity.RoleStaff)
	checkIn, checkOut := stay(10, 2)

	created, err := f.usecase.CreateBooking(authedCtx(guestID, entity.RoleGuest), &dto.CreateBookingRequest{
		RoomID:     room.ID.String(),
		CheckIn:    checkIn.Format(time.RFC3339),
		CheckOut:   checkOut.Format(time.RFC3339),
		GuestCount: 2,
	})
	require.NoError(t, err)

	_, err = f.usecase.AcceptBooking(staffCtx, created.ID)
	require.NoError(t, err)
	_, err = f.usecase.RecordPayment(authedCtx(guestID, entity.RoleGuest), created.ID)
	require.NoError(t, err)
	confirmed, err := f.usecase.ConfirmPayment(staffCtx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.BookingStatusConfirmed), confirmed.Status)

	assert.Equal(t, []string{
		service.EventBookingCreated,
		service.EventBookingUpdated, service.EventStatsUpdated,
		service.EventBookingUpdated, service.EventStatsUpdated,
		service.EventBookingUpdated, service.EventStatsUpdated,
	}, f.publisher.published())

	updates := f.publisher.bookingUpdates()
	require.Len(t, updates, 3)
	wantStatuses := []entity.BookingStatus{
		entity.BookingStatusAccepted,
		entity.BookingStatusAwaitingConfirmation,
		entity.BookingStatusConfirmed,
	}
	for i, update := range updates {
		assert.Equal(t, created.ID, update.ID)
		assert.Equal(t, string(wantStatuses[i]), update.Status)
	}

	assert.Equal(t, []string{
		entity.AuditActionBookingCreate,
		entity.AuditActionBookingAccept,
		entity.AuditActionBookingPay,
		entity.AuditActionBookingConfirm,
	}, f.auditRepo.actions())
}

// The total is computed once at creation; a later price change on the
// room must not leak into the booking, not even across its remaining
// transitions.
func TestBookingAmount_FrozenAgainstPriceChange(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "100.00")
	guestID := uuid.New()
	staffCtx := authedCtx(uuid.New(), entity.RoleStaff)
	checkIn, checkOut := stay(10, 2)

	created, err := f.usecase.CreateBooking(authedCtx(guestID, entity.RoleGuest), &dto.CreateBookingRequest{
		RoomID:     room.ID.String(),
		CheckIn:    checkIn.Format(time.RFC3339),
		CheckOut:   checkOut.Format(time.RFC3339),
		GuestCount: 1,
	})
	require.NoError(t, err)
	require.True(t, created.TotalAmount.Equal(decimal.RequireFromString("200.00")))

	room.PricePerNight = decimal.RequireFromString("999.00")
	require.NoError(t, f.roomRepo.Update(context.Background(), room))

	_, err = f.usecase.AcceptBooking(staffCtx, created.ID)
	require.NoError(t, err)
	_, err = f.usecase.RecordPayment(authedCtx(guestID, entity.RoleGuest), created.ID)
	require.NoError(t, err)
	confirmed, err := f.usecase.ConfirmPayment(staffCtx, created.ID)
	require.NoError(t, err)

	assert.True(t, confirmed.TotalAmount.Equal(decimal.RequireFromString("200.00")), "got %s", confirmed.TotalAmount)
	assert.True(t, f.bookingRepo.get(created.ID).TotalAmount.Equal(decimal.RequireFromString("200.00")))
}

// A failed re-read after the cancel landed must not swallow the audit
// entry or the broadcast; both fall back to the state we already know.
func TestExpireBooking_ReloadFailureStillBroadcasts(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	booking := f.addBooking(uuid.New(), room.ID, entity.BookingStatusPending, checkIn, checkOut)

	f.bookingRepo.findErr = assert.AnError
	f.usecase.ExpireBooking(context.Background(), booking.ID)
	f.bookingRepo.findErr = nil

	assert.Equal(t, entity.BookingStatusCancelled, f.bookingRepo.get(booking.ID).Status)
	assert.Equal(t, []string{entity.AuditActionBookingExpire}, f.auditRepo.actions())

	updates := f.publisher.bookingUpdates()
	require.Len(t, updates, 1)
	assert.Equal(t, booking.ID, updates[0].ID)
	assert.Equal(t, string(entity.BookingStatusCancelled), updates[0].Status)
}

func TestGetBookingStats_CountsAllRevenueOnlyConfirmed(t *testing.T) {
	f := newReservationFixture()
	room := f.addRoom(2, "150.00")
	checkIn, checkOut := stay(10, 2)
	f.addBooking(uuid.New(), room.ID, entity.BookingStatusConfirmed, checkIn, checkOut)
	f.addBooking(uuid.New(), room.ID, entity.BookingStatusPending, checkIn, checkOut)
	f.addBooking(uuid.New(), room.ID, entity.BookingStatusCancelled, checkIn, checkOut)

	stats, err := f.usecase.GetBookingStats(authedCtx(uuid.New(), entity.RoleAdmin))

	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalBookings)
	assert.True(t, stats.TotalRevenue.Equal(decimal.RequireFromString("100.00")), "got %s", stats.TotalRevenue)
}
