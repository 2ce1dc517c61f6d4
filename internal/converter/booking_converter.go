package converter

import (
	"hotel-booking-backend/internal/delivery/dto"
	"hotel-booking-backend/internal/domain/entity"

	"github.com/google/uuid"
)

// BookingToResponse converts a Booking entity to BookingResponse DTO
func BookingToResponse(booking *entity.Booking) *dto.BookingResponse {
	if booking == nil {
		return nil
	}

	response := &dto.BookingResponse{
		ID:          booking.ID,
		GuestID:     booking.GuestID,
		RoomID:      booking.RoomID,
		CheckIn:     booking.CheckIn,
		CheckOut:    booking.CheckOut,
		Nights:      entity.NightsBetween(booking.CheckIn, booking.CheckOut),
		GuestCount:  booking.GuestCount,
		TotalAmount: booking.TotalAmount,
		Status:      string(booking.Status),
		ExpiresAt:   booking.ExpiresAt,
		CreatedAt:   booking.CreatedAt,
		UpdatedAt:   booking.UpdatedAt,
	}

	if booking.Guest.ID != uuid.Nil {
		response.Guest = &dto.GuestResponse{
			ID:       booking.Guest.ID,
			Email:    booking.Guest.Email,
			FullName: booking.Guest.FullName,
		}
	}

	if booking.Room.ID != uuid.Nil {
		response.Room = RoomToResponse(&booking.Room)
	}

	return response
}

// BookingsToResponses converts a slice of Booking entities to slice of BookingResponse DTOs
func BookingsToResponses(bookings []entity.Booking) []dto.BookingResponse {
	responses := make([]dto.BookingResponse, len(bookings))
	for i, booking := range bookings {
		resp := BookingToResponse(&booking)
		if resp != nil {
			responses[i] = *resp
		}
	}
	return responses
}
