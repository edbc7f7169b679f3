package converter

import (
	"medbook/internal/delivery/dto"
	"medbook/internal/domain/entity"
)

const dateLayout = "2006-01-02"

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	return &dto.AppointmentResponse{
		ID:              appointment.ID,
		OrganizationID:  appointment.OrganizationID,
		DoctorID:        appointment.DoctorID,
		PatientID:       appointment.PatientID,
		LocationID:      appointment.LocationID,
		ServiceID:       appointment.ServiceID,
		Date:            appointment.AppointmentDate.Format(dateLayout),
		StartTime:       appointment.StartTime,
		DurationMinutes: appointment.DurationMinutes,
		Status:          string(appointment.Status),
		Notes:           appointment.Notes,
		CreatedAt:       appointment.CreatedAt,
		UpdatedAt:       appointment.UpdatedAt,
	}
}
