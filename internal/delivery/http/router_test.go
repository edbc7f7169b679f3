package http

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"medbook/config"
	"medbook/internal/delivery/http/handler"
	"medbook/internal/delivery/http/middleware"
	"medbook/pkg/jwt"
	"medbook/pkg/validator"

	"github.com/sirupsen/logrus"
)

// newTestRouter wires nil usecases; every request below is answered before a usecase runs
func newTestRouter() http.Handler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	v := validator.NewValidator()

	router := NewRouter(
		handler.NewAvailabilityHandler(nil, v),
		handler.NewWeeklyScheduleHandler(nil, v),
		handler.NewAppointmentHandler(nil, v),
		handler.NewMedicalServiceHandler(nil),
		handler.NewWhatsAppHandler(nil),
		middleware.NewAuthMiddleware(jwt.NewJWTService(config.JWTConfig{Secret: "router-secret"}), log),
		middleware.NewOrgRoleMiddleware(nil, log, nil),
		middleware.NewCORSMiddleware(),
		middleware.NewLoggingMiddleware(log),
	)
	return router.Setup()
}

func TestRoutes(t *testing.T) {
	org := "/api/v1/organizations/0b5c9a3e-4a57-4c59-9b1e-3d1f2a6c7e80"

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
	}{
		{"health", http.MethodGet, "/api/v1/health", http.StatusOK},
		{"availability is public", http.MethodGet, "/api/v1/availability", http.StatusBadRequest},
		{"booking needs a token", http.MethodPost, org + "/appointments", http.StatusUnauthorized},
		{"cancel needs a token", http.MethodPost, org + "/appointments/1/cancel", http.StatusUnauthorized},
		{"schedules need a token", http.MethodGet, org + "/schedules", http.StatusUnauthorized},
		{"whatsapp needs a token", http.MethodGet, org + "/whatsapp/state", http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/api/v1/doctors", http.StatusNotFound},
		{"wrong method", http.MethodDelete, "/api/v1/availability", http.StatusMethodNotAllowed},
	}

	h := newTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestRoutesSetCORSHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("expected CORS headers, got %v", rec.Header())
	}
}
