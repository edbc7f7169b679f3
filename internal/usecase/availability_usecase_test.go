package usecase

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"medbook/internal/availability"
	"medbook/internal/delivery/dto"
	"medbook/internal/delivery/http/middleware"
	"medbook/internal/domain/entity"

	"github.com/google/uuid"
)

func availabilityRequest(f *fixture, start, end string) *dto.AvailabilityRequest {
	return &dto.AvailabilityRequest{
		OrganizationID: f.orgID.String(),
		StartDate:      start,
		EndDate:        end,
	}
}

func TestGetAvailabilityAppliesCallerRules(t *testing.T) {
	f := newFixture()
	outsider := uuid.New()

	tests := []struct {
		name          string
		user          *uuid.UUID
		userRole      string
		standardRules bool
		wantAvailable int
	}{
		{name: "anonymous caller is a patient", wantAvailable: 4},
		{name: "non-member is a patient", user: &outsider, wantAvailable: 4},
		{name: "patient cannot escalate", user: &outsider, userRole: "admin", wantAvailable: 4},
		{name: "staff books inside the notice window", user: &f.staffID, wantAvailable: 6},
		{name: "staff previews the patient view", user: &f.staffID, userRole: "patient", wantAvailable: 4},
		{name: "standard rules substitution", user: &f.staffID, standardRules: true, wantAvailable: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.user != nil {
				ctx = middleware.ContextWithUserID(ctx, *tt.user)
			}
			req := availabilityRequest(f, "2025-06-03", "2025-06-03")
			req.UserRole = tt.userRole
			req.UseStandardRules = tt.standardRules

			got, err := f.availability.GetAvailability(ctx, req)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			day, ok := got["2025-06-03"]
			if !ok {
				t.Fatalf("expected 2025-06-03 in %v", got)
			}
			if day.TotalSlots != 6 || day.AvailableSlots != tt.wantAvailable {
				t.Fatalf("expected 6 total / %d available, got %d / %d", tt.wantAvailable, day.TotalSlots, day.AvailableSlots)
			}
		})
	}
}

func TestGetAvailabilityMarksConflicts(t *testing.T) {
	f := newFixture()
	f.appointments.appointments = []entity.Appointment{{
		ID:              uuid.New(),
		OrganizationID:  f.orgID,
		DoctorID:        f.doctorID,
		AppointmentDate: time.Date(2025, 6, 3, 0, 0, 0, 0, time.UTC),
		StartTime:       "10:00:00",
		DurationMinutes: 30,
		Status:          entity.AppointmentStatusConfirmed,
	}}

	ctx := middleware.ContextWithUserID(context.Background(), f.staffID)
	got, err := f.availability.GetAvailability(ctx, availabilityRequest(f, "2025-06-03", "2025-06-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	day := got["2025-06-03"]
	if day.AvailableSlots != 5 {
		t.Fatalf("expected 5 available, got %d", day.AvailableSlots)
	}
	for _, slot := range day.Slots {
		if slot.Time == "10:00" && slot.UnavailableReason != entity.ReasonSlotConflict {
			t.Fatalf("expected 10:00 to conflict, got %+v", slot)
		}
	}
}

func TestGetAvailabilityRejectsBadRanges(t *testing.T) {
	f := newFixture()

	tests := []struct {
		name       string
		start, end string
		want       error
	}{
		{"inverted", "2025-06-10", "2025-06-03", availability.ErrInvalidDateRange},
		{"unparsable", "2025/06/03", "2025-06-10", availability.ErrInvalidDateRange},
		{"too long", "2025-06-01", "2025-08-01", ErrRangeTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.availability.GetAvailability(context.Background(), availabilityRequest(f, tt.start, tt.end))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestGetAvailabilityWrapsStoreFailures(t *testing.T) {
	t.Run("schedules", func(t *testing.T) {
		f := newFixture()
		f.schedules.err = errors.New("connection reset")
		_, err := f.availability.GetAvailability(context.Background(), availabilityRequest(f, "2025-06-03", "2025-06-03"))
		if !errors.Is(err, ErrUpstreamData) {
			t.Fatalf("expected ErrUpstreamData, got %v", err)
		}
	})

	t.Run("appointments", func(t *testing.T) {
		f := newFixture()
		f.appointments.err = errors.New("connection reset")
		_, err := f.availability.GetAvailability(context.Background(), availabilityRequest(f, "2025-06-03", "2025-06-03"))
		if !errors.Is(err, ErrUpstreamData) {
			t.Fatalf("expected ErrUpstreamData, got %v", err)
		}
	})

	t.Run("membership", func(t *testing.T) {
		f := newFixture()
		f.members.err = errors.New("connection reset")
		ctx := middleware.ContextWithUserID(context.Background(), f.staffID)
		_, err := f.availability.GetAvailability(ctx, availabilityRequest(f, "2025-06-03", "2025-06-03"))
		if !errors.Is(err, ErrUpstreamData) {
			t.Fatalf("expected ErrUpstreamData, got %v", err)
		}
	})
}

func TestGetAvailabilityEmptyScheduleIsNotAnError(t *testing.T) {
	f := newFixture()
	f.schedules.schedules = nil

	got, err := f.availability.GetAvailability(context.Background(), availabilityRequest(f, "2025-06-03", "2025-06-05"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 empty days, got %d", len(got))
	}
	for date, day := range got {
		if day.TotalSlots != 0 || day.Slots == nil {
			t.Fatalf("%s: expected empty non-nil slots, got %+v", date, day)
		}
	}
}

func TestGetAvailabilityUsesServiceDuration(t *testing.T) {
	f := newFixture()
	serviceID := uuid.New()
	f.services.services[serviceID] = &entity.MedicalService{ID: serviceID, OrganizationID: f.orgID, DurationMinutes: 60, IsActive: true}

	ctx := middleware.ContextWithUserID(context.Background(), f.staffID)
	req := availabilityRequest(f, "2025-06-03", "2025-06-03")
	req.ServiceID = serviceID.String()

	got, err := f.availability.GetAvailability(ctx, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	day := got["2025-06-03"]
	if day.TotalSlots != 3 || day.Slots[0].DurationMinutes != 60 {
		t.Fatalf("expected three 60 minute slots, got %+v", day)
	}
	if f.schedules.lastQuery.ServiceID == nil || *f.schedules.lastQuery.ServiceID != serviceID {
		t.Fatalf("expected schedules filtered by service, got %+v", f.schedules.lastQuery)
	}
}

func TestGetAvailabilityUsesOrganizationTimezone(t *testing.T) {
	f := newFixture()
	f.orgs.orgs[f.orgID].Timezone = "America/Sao_Paulo"
	// 01:00 UTC on Tuesday is still Monday evening in Sao Paulo
	f.availability.now = fixedNow(time.Date(2025, 6, 3, 1, 0, 0, 0, time.UTC))

	got, err := f.availability.GetAvailability(context.Background(), availabilityRequest(f, "2025-06-02", "2025-06-03"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	monday, ok := got["2025-06-02"]
	if !ok {
		t.Fatalf("expected Monday to still be listed, got %v", got)
	}
	if !monday.IsToday || !got["2025-06-03"].IsTomorrow {
		t.Fatalf("expected Monday today and Tuesday tomorrow, got %+v / %+v", monday, got["2025-06-03"])
	}
}

func TestEffectiveRole(t *testing.T) {
	tests := []struct {
		resolved  entity.Role
		requested string
		want      entity.Role
	}{
		{entity.RolePatient, "", entity.RolePatient},
		{entity.RolePatient, "superadmin", entity.RolePatient},
		{entity.RoleStaff, "", entity.RoleStaff},
		{entity.RoleStaff, "Patient", entity.RolePatient},
		{entity.RoleAdmin, "doctor", entity.RoleDoctor},
		{entity.RoleAdmin, "guest", entity.Role("guest")},
	}
	for _, tt := range tests {
		if got := effectiveRole(tt.resolved, tt.requested); got != tt.want {
			t.Errorf("effectiveRole(%s, %q) = %s, want %s", tt.resolved, tt.requested, got, tt.want)
		}
	}
}
