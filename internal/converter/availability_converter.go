package converter

import (
	"medbook/internal/delivery/dto"
	"medbook/internal/domain/entity"
)

// AvailabilityToResponse keys computed days by date
func AvailabilityToResponse(days []entity.DayAvailability) dto.AvailabilityResponse {
	response := make(dto.AvailabilityResponse, len(days))
	for _, day := range days {
		slots := make([]dto.TimeSlotResponse, len(day.Slots))
		for i, slot := range day.Slots {
			slots[i] = dto.TimeSlotResponse{
				Time:                 slot.Time,
				DoctorID:             slot.DoctorID.String(),
				DurationMinutes:      slot.DurationMinutes,
				Available:            slot.Available,
				UnavailableReason:    slot.UnavailableReason,
				RequiredAdvanceHours: slot.RequiredAdvanceHours,
			}
		}

		response[day.Date] = dto.DayAvailabilityResponse{
			DayName:           day.DayName,
			Slots:             slots,
			TotalSlots:        day.TotalSlots,
			AvailableSlots:    day.AvailableSlots,
			AvailabilityLevel: string(day.AvailabilityLevel),
			IsToday:           day.IsToday,
			IsTomorrow:        day.IsTomorrow,
			IsWeekend:         day.IsWeekend,
		}
	}
	return response
}
