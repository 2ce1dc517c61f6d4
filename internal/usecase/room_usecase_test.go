package usecase_test

import (
	"io"
	"testing"

	"hotel-booking-backend/internal/delivery/dto"
	"hotel-booking-backend/internal/domain/entity"
	"hotel-booking-backend/internal/service"
	"hotel-booking-backend/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roomFixture struct {
	usecase   usecase.RoomUsecase
	roomRepo  *fakeRoomRepo
	auditRepo *fakeAuditRepo
	publisher *fakePublisher
}

func newRoomFixture() *roomFixture {
	log := logrus.New()
	log.SetOutput(io.Discard)

	f := &roomFixture{
		roomRepo:  newFakeRoomRepo(),
		auditRepo: &fakeAuditRepo{},
		publisher: &fakePublisher{},
	}
	f.usecase = usecase.NewRoomUsecase(log, f.roomRepo, f.auditRepo, f.publisher)
	return f
}

func TestCreateRoom_Success(t *testing.T) {
	f := newRoomFixture()

	resp, err := f.usecase.CreateRoom(authedCtx(uuid.New(), entity.RoleAdmin), &dto.CreateRoomRequest{
		Name:          "Garden Suite",
		RoomNumber:    "204",
		PricePerNight: decimal.RequireFromString("220.00"),
		Capacity:      3,
		RoomType:      string(entity.RoomTypeSuite),
		Amenities:     []string{"wifi", "minibar"},
	})

	require.NoError(t, err)
	assert.Equal(t, "204", resp.RoomNumber)
	assert.True(t, resp.IsAvailable)
	assert.Equal(t, []string{service.EventRoomCreated}, f.publisher.published())
	assert.Equal(t, []string{entity.AuditActionRoomCreate}, f.auditRepo.actions())
}

func TestCreateRoom_NonPositivePrice(t *testing.T) {
	f := newRoomFixture()

	_, err := f.usecase.CreateRoom(authedCtx(uuid.New(), entity.RoleAdmin), &dto.CreateRoomRequest{
		Name:          "Budget Twin",
		RoomNumber:    "004",
		PricePerNight: decimal.Zero,
		Capacity:      2,
	})

	assert.ErrorIs(t, err, usecase.ErrInvalidPrice)
	assert.Empty(t, f.publisher.published())
}

func TestUpdateRoom_PartialUpdateKeepsOtherFields(t *testing.T) {
	f := newRoomFixture()
	created, err := f.usecase.CreateRoom(authedCtx(uuid.New(), entity.RoleAdmin), &dto.CreateRoomRequest{
		Name:          "Garden Suite",
		RoomNumber:    "204",
		PricePerNight: decimal.RequireFromString("220.00"),
		Capacity:      3,
		RoomType:      string(entity.RoomTypeSuite),
	})
	require.NoError(t, err)

	newPrice := decimal.RequireFromString("250.00")
	updated, err := f.usecase.UpdateRoom(authedCtx(uuid.New(), entity.RoleAdmin), created.ID, &dto.UpdateRoomRequest{
		PricePerNight: &newPrice,
	})

	require.NoError(t, err)
	assert.True(t, updated.PricePerNight.Equal(newPrice))
	assert.Equal(t, "Garden Suite", updated.Name)
	assert.Equal(t, "204", updated.RoomNumber)
	assert.Equal(t, 3, updated.Capacity)
}

func TestUpdateRoom_NotFound(t *testing.T) {
	f := newRoomFixture()

	_, err := f.usecase.UpdateRoom(authedCtx(uuid.New(), entity.RoleAdmin), uuid.New(), &dto.UpdateRoomRequest{Name: "x"})

	assert.ErrorIs(t, err, usecase.ErrRoomNotFound)
}

func TestDeleteRoom_PublishesDeletion(t *testing.T) {
	f := newRoomFixture()
	created, err := f.usecase.CreateRoom(authedCtx(uuid.New(), entity.RoleAdmin), &dto.CreateRoomRequest{
		Name:          "Garden Suite",
		RoomNumber:    "204",
		PricePerNight: decimal.RequireFromString("220.00"),
		Capacity:      3,
	})
	require.NoError(t, err)

	err = f.usecase.DeleteRoom(authedCtx(uuid.New(), entity.RoleAdmin), created.ID)

	require.NoError(t, err)
	assert.Equal(t, []string{service.EventRoomCreated, service.EventRoomDeleted}, f.publisher.published())

	_, err = f.usecase.GetRoom(authedCtx(uuid.New(), entity.RoleAdmin), created.ID)
	assert.ErrorIs(t, err, usecase.ErrRoomNotFound)
}

func TestGetRoomStats_EmptyInventory(t *testing.T) {
	f := newRoomFixture()

	stats, err := f.usecase.GetRoomStats(authedCtx(uuid.New(), entity.RoleAdmin))

	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalRooms)
	assert.Equal(t, float64(0), stats.OccupancyRate)
}
