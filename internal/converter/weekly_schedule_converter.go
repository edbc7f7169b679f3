package converter

import (
	"medbook/internal/delivery/dto"
	"medbook/internal/domain/entity"
)

// WeeklyScheduleToResponse converts a WeeklySchedule entity to WeeklyScheduleResponse DTO
func WeeklyScheduleToResponse(schedule *entity.WeeklySchedule) *dto.WeeklyScheduleResponse {
	if schedule == nil {
		return nil
	}

	return &dto.WeeklyScheduleResponse{
		ID:         schedule.ID,
		DoctorID:   schedule.DoctorID,
		LocationID: schedule.LocationID,
		DayOfWeek:  schedule.DayOfWeek,
		StartTime:  schedule.StartTime,
		EndTime:    schedule.EndTime,
		IsActive:   schedule.IsActive,
		CreatedAt:  schedule.CreatedAt,
		UpdatedAt:  schedule.UpdatedAt,
	}
}

func WeeklySchedulesToResponses(schedules []entity.WeeklySchedule) []dto.WeeklyScheduleResponse {
	responses := make([]dto.WeeklyScheduleResponse, len(schedules))
	for i := range schedules {
		responses[i] = *WeeklyScheduleToResponse(&schedules[i])
	}
	return responses
}
