package handler

import (
	"encoding/json"
	"net/http"

	"hotel-booking-backend/internal/delivery/dto"
	"hotel-booking-backend/internal/usecase"
	"hotel-booking-backend/pkg/response"
	"hotel-booking-backend/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type RoomHandler struct {
	roomUsecase usecase.RoomUsecase
	validator   *validator.CustomValidator
}

func NewRoomHandler(roomUsecase usecase.RoomUsecase, validator *validator.CustomValidator) *RoomHandler {
	return &RoomHandler{
		roomUsecase: roomUsecase,
		validator:   validator,
	}
}

func (h *RoomHandler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	room, err := h.roomUsecase.CreateRoom(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrRoomNumberTaken:
			response.Error(w, http.StatusConflict, "A room with this room number already exists", nil)
		case usecase.ErrInvalidPrice:
			response.Error(w, http.StatusBadRequest, "Price per night must be greater than zero", nil)
		default:
			response.InternalServerError(w, "Failed to create room")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Room created successfully", room)
}

func (h *RoomHandler) GetRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := h.parseRoomID(w, r)
	if !ok {
		return
	}

	room, err := h.roomUsecase.GetRoom(r.Context(), roomID)
	if err != nil {
		switch err {
		case usecase.ErrRoomNotFound:
			response.NotFound(w, "Room not found")
		default:
			response.InternalServerError(w, "Failed to get room")
		}
		return
	}

	response.Success(w, http.StatusOK, "Room retrieved successfully", room)
}

func (h *RoomHandler) GetAllRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.roomUsecase.GetAllRooms(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get rooms")
		return
	}

	response.Success(w, http.StatusOK, "Rooms retrieved successfully", rooms)
}

func (h *RoomHandler) UpdateRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := h.parseRoomID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	room, err := h.roomUsecase.UpdateRoom(r.Context(), roomID, &req)
	if err != nil {
		switch err {
		case usecase.ErrRoomNotFound:
			response.NotFound(w, "Room not found")
		case usecase.ErrRoomNumberTaken:
			response.Error(w, http.StatusConflict, "A room with this room number already exists", nil)
		case usecase.ErrInvalidPrice:
			response.Error(w, http.StatusBadRequest, "Price per night must be greater than zero", nil)
		default:
			response.InternalServerError(w, "Failed to update room")
		}
		return
	}

	response.Success(w, http.StatusOK, "Room updated successfully", room)
}

func (h *RoomHandler) DeleteRoom(w http.ResponseWriter, r *http.Request) {
	roomID, ok := h.parseRoomID(w, r)
	if !ok {
		return
	}

	if err := h.roomUsecase.DeleteRoom(r.Context(), roomID); err != nil {
		switch err {
		case usecase.ErrRoomNotFound:
			response.NotFound(w, "Room not found")
		default:
			response.InternalServerError(w, "Failed to delete room")
		}
		return
	}

	response.Success(w, http.StatusOK, "Room deleted successfully", nil)
}

func (h *RoomHandler) GetRoomStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.roomUsecase.GetRoomStats(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get room stats")
		return
	}

	response.Success(w, http.StatusOK, "Room stats retrieved successfully", stats)
}

func (h *RoomHandler) parseRoomID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	vars := mux.Vars(r)
	roomID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid room ID", nil)
		return uuid.Nil, false
	}
	return roomID, true
}
