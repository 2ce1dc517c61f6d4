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

type BookingHandler struct {
	reservationUsecase usecase.ReservationUsecase
	validator          *validator.CustomValidator
}

func NewBookingHandler(reservationUsecase usecase.ReservationUsecase, validator *validator.CustomValidator) *BookingHandler {
	return &BookingHandler{
		reservationUsecase: reservationUsecase,
		validator:          validator,
	}
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	booking, err := h.reservationUsecase.CreateBooking(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrRoomNotFound:
			response.NotFound(w, "Room not found")
		case usecase.ErrInvalidDateFormat:
			response.Error(w, http.StatusBadRequest, "Invalid date format, use RFC3339 or YYYY-MM-DD", nil)
		case usecase.ErrInvalidStayDates:
			response.Error(w, http.StatusBadRequest, "Check-out date must be after check-in date", nil)
		case usecase.ErrGuestCountExceeded:
			response.Error(w, http.StatusBadRequest, "Guest count exceeds room capacity", nil)
		case usecase.ErrRoomUnavailable:
			response.Error(w, http.StatusConflict, "Room is not available for the selected dates", nil)
		default:
			response.InternalServerError(w, "Failed to create booking")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Booking created successfully", booking)
}

func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req dto.CheckAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body", nil)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	availability, err := h.reservationUsecase.CheckAvailability(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrRoomNotFound:
			response.NotFound(w, "Room not found")
		case usecase.ErrInvalidDateFormat:
			response.Error(w, http.StatusBadRequest, "Invalid date format, use RFC3339 or YYYY-MM-DD", nil)
		case usecase.ErrInvalidStayDates:
			response.Error(w, http.StatusBadRequest, "Check-out date must be after check-in date", nil)
		default:
			response.InternalServerError(w, "Failed to check availability")
		}
		return
	}

	response.Success(w, http.StatusOK, "Availability checked successfully", availability)
}

func (h *BookingHandler) GetRoomBookedDates(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomID, err := uuid.Parse(vars["roomId"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid room ID", nil)
		return
	}

	dates, err := h.reservationUsecase.RoomBookedDates(r.Context(), roomID)
	if err != nil {
		switch err {
		case usecase.ErrRoomNotFound:
			response.NotFound(w, "Room not found")
		default:
			response.InternalServerError(w, "Failed to get booked dates")
		}
		return
	}

	response.Success(w, http.StatusOK, "Booked dates retrieved successfully", dates)
}

func (h *BookingHandler) AcceptBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.parseBookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.reservationUsecase.AcceptBooking(r.Context(), bookingID)
	if err != nil {
		h.writeTransitionError(w, err, "Failed to accept booking")
		return
	}

	response.Success(w, http.StatusOK, "Booking accepted successfully", booking)
}

func (h *BookingHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.parseBookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.reservationUsecase.RecordPayment(r.Context(), bookingID)
	if err != nil {
		h.writeTransitionError(w, err, "Failed to record payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment recorded successfully", booking)
}

func (h *BookingHandler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.parseBookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.reservationUsecase.ConfirmPayment(r.Context(), bookingID)
	if err != nil {
		h.writeTransitionError(w, err, "Failed to confirm payment")
		return
	}

	response.Success(w, http.StatusOK, "Payment confirmed successfully", booking)
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	bookingID, ok := h.parseBookingID(w, r)
	if !ok {
		return
	}

	booking, err := h.reservationUsecase.CancelBooking(r.Context(), bookingID)
	if err != nil {
		switch err {
		case usecase.ErrBookingNotFound:
			response.NotFound(w, "Booking not found")
		case usecase.ErrBookingNotOwned:
			response.Forbidden(w, "Booking does not belong to you")
		case usecase.ErrBookingAlreadyCancelled:
			response.Error(w, http.StatusConflict, "Booking is already cancelled", nil)
		case usecase.ErrInvalidTransition:
			response.Error(w, http.StatusBadRequest, "Confirmed bookings cannot be cancelled", nil)
		default:
			response.InternalServerError(w, "Failed to cancel booking")
		}
		return
	}

	response.Success(w, http.StatusOK, "Booking cancelled successfully", booking)
}

func (h *BookingHandler) GetMyBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.reservationUsecase.GetMyBookings(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) GetAllBookings(w http.ResponseWriter, r *http.Request) {
	bookings, err := h.reservationUsecase.GetAllBookings(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get bookings")
		return
	}

	response.Success(w, http.StatusOK, "Bookings retrieved successfully", bookings)
}

func (h *BookingHandler) GetBookingStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.reservationUsecase.GetBookingStats(r.Context())
	if err != nil {
		response.InternalServerError(w, "Failed to get booking stats")
		return
	}

	response.Success(w, http.StatusOK, "Booking stats retrieved successfully", stats)
}

func (h *BookingHandler) parseBookingID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	vars := mux.Vars(r)
	bookingID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid booking ID", nil)
		return uuid.Nil, false
	}
	return bookingID, true
}

func (h *BookingHandler) writeTransitionError(w http.ResponseWriter, err error, fallback string) {
	switch err {
	case usecase.ErrBookingNotFound:
		response.NotFound(w, "Booking not found")
	case usecase.ErrBookingNotOwned:
		response.Forbidden(w, "Booking does not belong to you")
	case usecase.ErrInvalidTransition:
		response.Error(w, http.StatusBadRequest, "Booking state does not allow this action", nil)
	case usecase.ErrRoomUnavailable:
		response.Error(w, http.StatusConflict, "Room was booked by another guest for these dates", nil)
	default:
		response.InternalServerError(w, fallback)
	}
}
