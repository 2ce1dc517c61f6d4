package converter

import (
	"encoding/json"

	"hotel-booking-backend/internal/delivery/dto"
	"hotel-booking-backend/internal/domain/entity"

	"gorm.io/datatypes"
)

// RoomToResponse converts a Room entity to RoomResponse DTO
func RoomToResponse(room *entity.Room) *dto.RoomResponse {
	if room == nil {
		return nil
	}

	return &dto.RoomResponse{
		ID:            room.ID,
		Name:          room.Name,
		RoomNumber:    room.RoomNumber,
		Description:   room.Description,
		PricePerNight: room.PricePerNight,
		Capacity:      room.Capacity,
		RoomType:      string(room.RoomType),
		Amenities:     jsonToStrings(room.Amenities),
		Images:        jsonToStrings(room.Images),
		IsAvailable:   room.IsAvailable,
		CreatedAt:     room.CreatedAt,
		UpdatedAt:     room.UpdatedAt,
	}
}

// RoomsToResponses converts a slice of Room entities to slice of RoomResponse DTOs
func RoomsToResponses(rooms []entity.Room) []dto.RoomResponse {
	responses := make([]dto.RoomResponse, len(rooms))
	for i, room := range rooms {
		resp := RoomToResponse(&room)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}

// StringsToJSON marshals a string slice into a JSONB column value.
func StringsToJSON(values []string) datatypes.JSON {
	if len(values) == 0 {
		return nil
	}
	body, err := json.Marshal(values)
	if err != nil {
		return nil
	}
	return datatypes.JSON(body)
}

func jsonToStrings(body datatypes.JSON) []string {
	if len(body) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(body, &values); err != nil {
		return nil
	}
	return values
}
