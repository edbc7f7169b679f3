package repository

import (
	"context"
	"errors"

	"medbook/internal/domain/entity"
	domainRepo "medbook/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	return db.WithContext(ctx).Create(appointment).Error
}

func (r *appointmentRepository) FindByID(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.WithContext(ctx).Where("id = ? AND organization_id = ?", id, organizationID).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) FindBlocking(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	query := db.WithContext(ctx).
		Where("organization_id = ?", filter.OrganizationID).
		Where("appointment_date BETWEEN ? AND ?", filter.StartDate, filter.EndDate).
		Where("status IN ?", entity.BlockingStatuses)

	if filter.DoctorID != nil {
		query = query.Where("doctor_id = ?", *filter.DoctorID)
	}
	if filter.ExcludeID != nil {
		query = query.Where("id <> ?", *filter.ExcludeID)
	}

	err := query.Order("appointment_date ASC, start_time ASC").Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// Reschedule moves an appointment that is still blocking its slot
func (r *appointmentRepository) Reschedule(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND organization_id = ? AND status IN ?", appointment.ID, appointment.OrganizationID, entity.BlockingStatuses).
		Updates(map[string]interface{}{
			"appointment_date": appointment.AppointmentDate,
			"start_time":       appointment.StartTime,
			"duration_minutes": appointment.DurationMinutes,
			"status":           appointment.Status,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Cancel atomically cancels an appointment ONLY while its status still blocks the slot.
// Returns affected rows: 1 = success, 0 = already cancelled, completed or no-show.
func (r *appointmentRepository) Cancel(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Model(&entity.Appointment{}).
		Where("id = ? AND organization_id = ? AND status IN ?", id, organizationID, entity.BlockingStatuses).
		Update("status", entity.AppointmentStatusCancelled)
	return result.RowsAffected, result.Error
}
