package repository

import (
	"context"
	"errors"

	"medbook/internal/domain/entity"
	domainRepo "medbook/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type weeklyScheduleRepository struct{}

func NewWeeklyScheduleRepository() domainRepo.WeeklyScheduleRepository {
	return &weeklyScheduleRepository{}
}

func (r *weeklyScheduleRepository) Create(ctx context.Context, db *gorm.DB, schedule *entity.WeeklySchedule) error {
	return db.WithContext(ctx).Create(schedule).Error
}

func (r *weeklyScheduleRepository) FindByID(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (*entity.WeeklySchedule, error) {
	var schedule entity.WeeklySchedule
	err := db.WithContext(ctx).Where("id = ? AND organization_id = ?", id, organizationID).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &schedule, nil
}

// FindAll returns the weekly templates of an organization.
// Entries without a location apply to every location.
func (r *weeklyScheduleRepository) FindAll(ctx context.Context, db *gorm.DB, filter *entity.ScheduleFilter) ([]entity.WeeklySchedule, error) {
	var schedules []entity.WeeklySchedule
	query := db.WithContext(ctx).Where("weekly_schedules.organization_id = ?", filter.OrganizationID)

	if filter.DoctorID != nil {
		query = query.Where("weekly_schedules.doctor_id = ?", *filter.DoctorID)
	}
	if filter.LocationID != nil {
		query = query.Where("(weekly_schedules.location_id = ? OR weekly_schedules.location_id IS NULL)", *filter.LocationID)
	}
	if filter.ServiceID != nil {
		offering := db.Table("doctor_services").Select("doctor_id").Where("service_id = ?", *filter.ServiceID)
		query = query.Where("weekly_schedules.doctor_id IN (?)", offering)
	}
	if filter.ActiveOnly {
		query = query.Where("weekly_schedules.is_active = ?", true)
	}

	err := query.Order("day_of_week ASC, start_time ASC").Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

func (r *weeklyScheduleRepository) Update(ctx context.Context, db *gorm.DB, schedule *entity.WeeklySchedule) error {
	return db.WithContext(ctx).Save(schedule).Error
}

func (r *weeklyScheduleRepository) Delete(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (int64, error) {
	result := db.WithContext(ctx).Where("id = ? AND organization_id = ?", id, organizationID).Delete(&entity.WeeklySchedule{})
	return result.RowsAffected, result.Error
}
