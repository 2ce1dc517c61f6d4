package http

import (
	"net/http"

	"hotel-booking-backend/internal/delivery/http/handler"
	"hotel-booking-backend/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router          *mux.Router
	authHandler     *handler.AuthHandler
	roomHandler     *handler.RoomHandler
	bookingHandler  *handler.BookingHandler
	auditLogHandler *handler.AuditLogHandler
	authMiddleware  *middleware.AuthMiddleware
	corsMiddleware  *middleware.CORSMiddleware
}

func NewRouter(
	authHandler *handler.AuthHandler,
	roomHandler *handler.RoomHandler,
	bookingHandler *handler.BookingHandler,
	auditLogHandler *handler.AuditLogHandler,
	authMiddleware *middleware.AuthMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
) *Router {
	return &Router{
		router:          mux.NewRouter(),
		authHandler:     authHandler,
		roomHandler:     roomHandler,
		bookingHandler:  bookingHandler,
		auditLogHandler: auditLogHandler,
		authMiddleware:  authMiddleware,
		corsMiddleware:  corsMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", r.authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)

	// Room routes (public reads)
	api.HandleFunc("/rooms", r.roomHandler.GetAllRooms).Methods(http.MethodGet)

	// Room routes (protected - staff/admin mutations, stats before {id})
	roomsElevated := api.PathPrefix("/rooms").Subrouter()
	roomsElevated.Use(r.authMiddleware.Authenticate)
	roomsElevated.Use(middleware.RequireElevated)
	roomsElevated.HandleFunc("", r.roomHandler.CreateRoom).Methods(http.MethodPost)
	roomsElevated.HandleFunc("/stats", r.roomHandler.GetRoomStats).Methods(http.MethodGet)
	roomsElevated.HandleFunc("/{id}", r.roomHandler.UpdateRoom).Methods(http.MethodPut)
	roomsElevated.HandleFunc("/{id}", r.roomHandler.DeleteRoom).Methods(http.MethodDelete)

	api.HandleFunc("/rooms/{id}", r.roomHandler.GetRoom).Methods(http.MethodGet)

	// Booking routes (public availability lookups)
	api.HandleFunc("/bookings/check-availability", r.bookingHandler.CheckAvailability).Methods(http.MethodPost)
	api.HandleFunc("/bookings/room/{roomId}/dates", r.bookingHandler.GetRoomBookedDates).Methods(http.MethodGet)

	// Booking routes (protected - any authenticated guest)
	bookings := api.PathPrefix("/bookings").Subrouter()
	bookings.Use(r.authMiddleware.Authenticate)
	bookings.HandleFunc("", r.bookingHandler.CreateBooking).Methods(http.MethodPost)
	bookings.HandleFunc("/my-bookings", r.bookingHandler.GetMyBookings).Methods(http.MethodGet)
	bookings.HandleFunc("/{id}/pay", r.bookingHandler.RecordPayment).Methods(http.MethodPatch)
	bookings.HandleFunc("/{id}/cancel", r.bookingHandler.CancelBooking).Methods(http.MethodPatch)

	// Booking routes (protected - staff/admin)
	bookingsElevated := api.PathPrefix("/bookings").Subrouter()
	bookingsElevated.Use(r.authMiddleware.Authenticate)
	bookingsElevated.Use(middleware.RequireElevated)
	bookingsElevated.HandleFunc("/all", r.bookingHandler.GetAllBookings).Methods(http.MethodGet)
	bookingsElevated.HandleFunc("/stats", r.bookingHandler.GetBookingStats).Methods(http.MethodGet)
	bookingsElevated.HandleFunc("/{id}/confirm", r.bookingHandler.AcceptBooking).Methods(http.MethodPatch)
	bookingsElevated.HandleFunc("/{id}/confirm-payment", r.bookingHandler.ConfirmPayment).Methods(http.MethodPatch)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)

	// Add CORS middleware
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
