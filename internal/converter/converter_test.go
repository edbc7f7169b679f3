package converter

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"medbook/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestAvailabilityToResponseKeysByDate(t *testing.T) {
	doctor := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	days := []entity.DayAvailability{
		{
			Date:    "2025-06-02",
			DayName: "Monday",
			Slots: []entity.TimeSlot{
				{Time: "09:00", DoctorID: doctor, DurationMinutes: 30, Available: false, UnavailableReason: entity.ReasonSlotConflict},
				{Time: "09:30", DoctorID: doctor, DurationMinutes: 30, Available: true},
			},
			TotalSlots:        2,
			AvailableSlots:    1,
			AvailabilityLevel: entity.AvailabilityLow,
		},
		{Date: "2025-06-03", DayName: "Tuesday", Slots: []entity.TimeSlot{}, AvailabilityLevel: entity.AvailabilityNone},
	}

	got := AvailabilityToResponse(days)
	if len(got) != 2 {
		t.Fatalf("expected 2 dates, got %d", len(got))
	}

	monday := got["2025-06-02"]
	if monday.TotalSlots != 2 || monday.AvailableSlots != 1 || monday.AvailabilityLevel != "low" {
		t.Fatalf("unexpected summary %+v", monday)
	}
	if monday.Slots[0].DoctorID != doctor.String() || monday.Slots[0].UnavailableReason != "slot_conflict" {
		t.Fatalf("unexpected slot %+v", monday.Slots[0])
	}

	raw, err := json.Marshal(got["2025-06-03"])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), `"slots":[]`) {
		t.Fatalf("empty day must serialise slots as [], got %s", raw)
	}
}

func TestAppointmentToResponseFormatsDate(t *testing.T) {
	appointment := &entity.Appointment{
		ID:              uuid.New(),
		AppointmentDate: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		StartTime:       "09:30",
		DurationMinutes: 30,
		Status:          entity.AppointmentStatusScheduled,
	}

	got := AppointmentToResponse(appointment)
	if got.Date != "2025-06-02" || got.Status != "scheduled" {
		t.Fatalf("unexpected response %+v", got)
	}
	if AppointmentToResponse(nil) != nil {
		t.Fatal("expected nil for nil appointment")
	}
}

func TestMedicalServicesToResponseKeepsPrice(t *testing.T) {
	services := []entity.MedicalService{{ID: uuid.New(), Name: "Consulta", DurationMinutes: 45, Price: decimal.RequireFromString("150.50")}}

	got := MedicalServicesToResponse(services)
	if got.Total != 1 || !got.Services[0].Price.Equal(decimal.RequireFromString("150.5")) {
		t.Fatalf("unexpected response %+v", got)
	}
}
