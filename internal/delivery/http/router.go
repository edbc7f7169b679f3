package http

import (
	"net/http"

	"medbook/internal/delivery/http/handler"
	"medbook/internal/delivery/http/middleware"

	"github.com/gorilla/mux"
)

type Router struct {
	router                *mux.Router
	availabilityHandler   *handler.AvailabilityHandler
	weeklyScheduleHandler *handler.WeeklyScheduleHandler
	appointmentHandler    *handler.AppointmentHandler
	medicalServiceHandler *handler.MedicalServiceHandler
	whatsAppHandler       *handler.WhatsAppHandler
	authMiddleware        *middleware.AuthMiddleware
	orgRoleMiddleware     *middleware.OrgRoleMiddleware
	corsMiddleware        *middleware.CORSMiddleware
	loggingMiddleware     *middleware.LoggingMiddleware
}

func NewRouter(
	availabilityHandler *handler.AvailabilityHandler,
	weeklyScheduleHandler *handler.WeeklyScheduleHandler,
	appointmentHandler *handler.AppointmentHandler,
	medicalServiceHandler *handler.MedicalServiceHandler,
	whatsAppHandler *handler.WhatsAppHandler,
	authMiddleware *middleware.AuthMiddleware,
	orgRoleMiddleware *middleware.OrgRoleMiddleware,
	corsMiddleware *middleware.CORSMiddleware,
	loggingMiddleware *middleware.LoggingMiddleware,
) *Router {
	return &Router{
		router:                mux.NewRouter(),
		availabilityHandler:   availabilityHandler,
		weeklyScheduleHandler: weeklyScheduleHandler,
		appointmentHandler:    appointmentHandler,
		medicalServiceHandler: medicalServiceHandler,
		whatsAppHandler:       whatsAppHandler,
		authMiddleware:        authMiddleware,
		orgRoleMiddleware:     orgRoleMiddleware,
		corsMiddleware:        corsMiddleware,
		loggingMiddleware:     loggingMiddleware,
	}
}

func (r *Router) Setup() *mux.Router {
	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Public reads; anonymous callers get patient rules
	optional := r.authMiddleware.OptionalAuthenticate
	api.Handle("/availability", optional(http.HandlerFunc(r.availabilityHandler.GetAvailability))).Methods(http.MethodGet)
	api.Handle("/organizations/{organizationId}/services", optional(http.HandlerFunc(r.medicalServiceHandler.ListServices))).Methods(http.MethodGet)

	// Appointments (any authenticated user; ownership checked in the usecase)
	appointments := api.PathPrefix("/organizations/{organizationId}/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.HandleFunc("", r.appointmentHandler.BookAppointment).Methods(http.MethodPost)
	appointments.HandleFunc("/{id}/reschedule", r.appointmentHandler.RescheduleAppointment).Methods(http.MethodPut)
	appointments.HandleFunc("/{id}/cancel", r.appointmentHandler.CancelAppointment).Methods(http.MethodPost)

	// Schedule management (staff, admin, superadmin)
	schedules := api.PathPrefix("/organizations/{organizationId}/schedules").Subrouter()
	schedules.Use(r.authMiddleware.Authenticate)
	schedules.Use(r.orgRoleMiddleware.RequireScheduleManager)
	schedules.HandleFunc("", r.weeklyScheduleHandler.ListSchedules).Methods(http.MethodGet)
	schedules.HandleFunc("", r.weeklyScheduleHandler.CreateSchedule).Methods(http.MethodPost)
	schedules.HandleFunc("/{id}", r.weeklyScheduleHandler.GetSchedule).Methods(http.MethodGet)
	schedules.HandleFunc("/{id}", r.weeklyScheduleHandler.UpdateSchedule).Methods(http.MethodPut)
	schedules.HandleFunc("/{id}", r.weeklyScheduleHandler.DeleteSchedule).Methods(http.MethodDelete)

	// WhatsApp gateway status (privileged members)
	whatsapp := api.PathPrefix("/organizations/{organizationId}/whatsapp").Subrouter()
	whatsapp.Use(r.authMiddleware.Authenticate)
	whatsapp.Use(r.orgRoleMiddleware.RequireStaff)
	whatsapp.HandleFunc("/state", r.whatsAppHandler.GetConnectionState).Methods(http.MethodGet)
	whatsapp.HandleFunc("/qrcode", r.whatsAppHandler.GetQRCode).Methods(http.MethodGet)

	r.router.Use(r.loggingMiddleware.Handle)
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
