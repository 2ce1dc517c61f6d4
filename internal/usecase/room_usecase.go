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
	"github.com/sirupsen/logrus"
)

var (
	ErrRoomNumberTaken = errors.New("a room with this room number already exists")
	ErrInvalidPrice    = errors.New("price per night must be greater than zero")
)

type RoomUsecase interface {
	CreateRoom(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error)
	GetRoom(ctx context.Context, roomID uuid.UUID) (*dto.RoomResponse, error)
	GetAllRooms(ctx context.Context) (*dto.RoomListResponse, error)
	UpdateRoom(ctx context.Context, roomID uuid.UUID, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error)
	DeleteRoom(ctx context.Context, roomID uuid.UUID) error
	GetRoomStats(ctx context.Context) (*dto.RoomStatsResponse, error)
}

type roomUsecase struct {
	log       *logrus.Logger
	roomRepo  repository.RoomRepository
	auditRepo repository.AuditLogRepository
	publisher service.EventPublisher
}

func NewRoomUsecase(
	log *logrus.Logger,
	roomRepo repository.RoomRepository,
	auditRepo repository.AuditLogRepository,
	publisher service.EventPublisher,
) RoomUsecase {
	return &roomUsecase{
		log:       log,
		roomRepo:  roomRepo,
		auditRepo: auditRepo,
		publisher: publisher,
	}
}

func (u *roomUsecase) CreateRoom(ctx context.Context, req *dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	if !req.PricePerNight.IsPositive() {
		return nil, ErrInvalidPrice
	}

	room := &entity.Room{
		ID:            uuid.New(),
		Name:          req.Name,
		RoomNumber:    req.RoomNumber,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		Capacity:      req.Capacity,
		RoomType:      entity.RoomType(req.RoomType),
		Amenities:     converter.StringsToJSON(req.Amenities),
		Images:        converter.StringsToJSON(req.Images),
		IsAvailable:   true,
	}

	if err := u.roomRepo.Create(ctx, room); err != nil {
		if isDuplicateKeyError(err, "room_number") {
			return nil, ErrRoomNumberTaken
		}
		u.log.Warnf("Failed to create room: %+v", err)
		return nil, err
	}

	u.auditRoom(ctx, entity.AuditActionRoomCreate, room.ID)

	response := converter.RoomToResponse(room)
	u.publisher.Publish(ctx, service.EventRoomCreated, response)

	u.log.Infof("Room created: id=%s, number=%s", room.ID, room.RoomNumber)
	return response, nil
}

func (u *roomUsecase) GetRoom(ctx context.Context, roomID uuid.UUID) (*dto.RoomResponse, error) {
	room, err := u.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		u.log.Warnf("Failed to find room %s: %+v", roomID, err)
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}
	return converter.RoomToResponse(room), nil
}

func (u *roomUsecase) GetAllRooms(ctx context.Context) (*dto.RoomListResponse, error) {
	rooms, err := u.roomRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to list rooms: %+v", err)
		return nil, err
	}

	return &dto.RoomListResponse{
		Rooms: converter.RoomsToResponses(rooms),
		Total: len(rooms),
	}, nil
}

// UpdateRoom applies a partial update. Existing bookings keep their frozen
// totals even when the price changes; the broadcast carries the refreshed
// occupancy so admin dashboards stay live.
func (u *roomUsecase) UpdateRoom(ctx context.Context, roomID uuid.UUID, req *dto.UpdateRoomRequest) (*dto.RoomResponse, error) {
	room, err := u.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		u.log.Warnf("Failed to find room %s: %+v", roomID, err)
		return nil, err
	}
	if room == nil {
		return nil, ErrRoomNotFound
	}

	if req.Name != "" {
		room.Name = req.Name
	}
	if req.Description != "" {
		room.Description = req.Description
	}
	if req.PricePerNight != nil {
		if !req.PricePerNight.IsPositive() {
			return nil, ErrInvalidPrice
		}
		room.PricePerNight = *req.PricePerNight
	}
	if req.Capacity != nil {
		room.Capacity = *req.Capacity
	}
	if req.RoomType != "" {
		room.RoomType = entity.RoomType(req.RoomType)
	}
	if req.Amenities != nil {
		room.Amenities = converter.StringsToJSON(req.Amenities)
	}
	if req.Images != nil {
		room.Images = converter.StringsToJSON(req.Images)
	}
	if req.IsAvailable != nil {
		room.IsAvailable = *req.IsAvailable
	}

	if err := u.roomRepo.Update(ctx, room); err != nil {
		u.log.Warnf("Failed to update room %s: %+v", roomID, err)
		return nil, err
	}

	u.auditRoom(ctx, entity.AuditActionRoomUpdate, room.ID)

	response := converter.RoomToResponse(room)

	stats, err := u.GetRoomStats(ctx)
	if err == nil {
		u.publisher.Publish(ctx, service.EventRoomUpdated, map[string]interface{}{
			"room":            response,
			"total_rooms":     stats.TotalRooms,
			"available_rooms": stats.AvailableRooms,
			"occupancy_rate":  stats.OccupancyRate,
		})
	} else {
		u.publisher.Publish(ctx, service.EventRoomUpdated, response)
	}

	return response, nil
}

func (u *roomUsecase) DeleteRoom(ctx context.Context, roomID uuid.UUID) error {
	room, err := u.roomRepo.FindByID(ctx, roomID)
	if err != nil {
		u.log.Warnf("Failed to find room %s: %+v", roomID, err)
		return err
	}
	if room == nil {
		return ErrRoomNotFound
	}

	if err := u.roomRepo.Delete(ctx, roomID); err != nil {
		u.log.Warnf("Failed to delete room %s: %+v", roomID, err)
		return err
	}

	u.auditRoom(ctx, entity.AuditActionRoomDelete, roomID)
	u.publisher.Publish(ctx, service.EventRoomDeleted, roomID.String())

	u.log.Infof("Room deleted: id=%s", roomID)
	return nil
}

// GetRoomStats derives occupancy from confirmed bookings covering now.
func (u *roomUsecase) GetRoomStats(ctx context.Context) (*dto.RoomStatsResponse, error) {
	total, err := u.roomRepo.CountAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to count rooms: %+v", err)
		return nil, err
	}

	occupied, err := u.roomRepo.CountOccupied(ctx, time.Now())
	if err != nil {
		u.log.Warnf("Failed to count occupied rooms: %+v", err)
		return nil, err
	}

	var rate float64
	if total > 0 {
		rate = float64(occupied) / float64(total) * 100
	}

	return &dto.RoomStatsResponse{
		TotalRooms:     total,
		AvailableRooms: total - occupied,
		OccupancyRate:  rate,
	}, nil
}

func (u *roomUsecase) auditRoom(ctx context.Context, action string, roomID uuid.UUID) {
	var actorID *uuid.UUID
	if id, ok := middleware.GetUserIDFromContext(ctx); ok {
		actorID = &id
	}
	entry := &entity.AuditLog{
		UserID:   actorID,
		Action:   action,
		Metadata: entity.JSON{"room_id": roomID.String()},
	}
	if err := u.auditRepo.Create(ctx, entry); err != nil {
		u.log.Warnf("Failed to write audit log for room %s: %+v", roomID, err)
	}
}
