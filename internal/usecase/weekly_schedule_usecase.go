package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medbook/internal/availability"
	"medbook/internal/converter"
	"medbook/internal/delivery/dto"
	"medbook/internal/delivery/http/middleware"
	"medbook/internal/domain/entity"
	"medbook/internal/domain/repository"
	"medbook/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrScheduleNotFound  = errors.New("schedule not found")
	ErrInvalidTimeFormat = errors.New("invalid time format, use HH:MM")
	ErrInvalidTimeRange  = errors.New("start time must be before end time")
	ErrInvalidDayOfWeek  = errors.New("day of week must be between 0 (Sunday) and 6")
)

type WeeklyScheduleUsecase interface {
	ListSchedules(ctx context.Context, organizationID uuid.UUID, doctorID *uuid.UUID) (*dto.WeeklyScheduleListResponse, error)
	GetSchedule(ctx context.Context, organizationID, scheduleID uuid.UUID) (*dto.WeeklyScheduleResponse, error)
	CreateSchedule(ctx context.Context, organizationID uuid.UUID, req *dto.WeeklyScheduleRequest) (*dto.WeeklyScheduleResponse, error)
	UpdateSchedule(ctx context.Context, organizationID, scheduleID uuid.UUID, req *dto.WeeklyScheduleRequest) (*dto.WeeklyScheduleResponse, error)
	DeleteSchedule(ctx context.Context, organizationID, scheduleID uuid.UUID) error
}

type weeklyScheduleUsecase struct {
	db            *gorm.DB
	log           *logrus.Logger
	withTx        txFunc
	scheduleRepo  repository.WeeklyScheduleRepository
	auditService  service.AuditService
	scheduleCache *service.ScheduleCacheService
}

func NewWeeklyScheduleUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	scheduleRepo repository.WeeklyScheduleRepository,
	auditService service.AuditService,
	scheduleCache *service.ScheduleCacheService,
) WeeklyScheduleUsecase {
	return &weeklyScheduleUsecase{
		db:            db,
		log:           log,
		withTx:        gormTx(db),
		scheduleRepo:  scheduleRepo,
		auditService:  auditService,
		scheduleCache: scheduleCache,
	}
}

func (u *weeklyScheduleUsecase) ListSchedules(ctx context.Context, organizationID uuid.UUID, doctorID *uuid.UUID) (*dto.WeeklyScheduleListResponse, error) {
	schedules, err := u.scheduleRepo.FindAll(ctx, u.db, &entity.ScheduleFilter{
		OrganizationID: organizationID,
		DoctorID:       doctorID,
	})
	if err != nil {
		u.log.Warnf("Failed to list schedules for org %s: %+v", organizationID, err)
		return nil, err
	}

	return &dto.WeeklyScheduleListResponse{
		Schedules: converter.WeeklySchedulesToResponses(schedules),
		Total:     len(schedules),
	}, nil
}

func (u *weeklyScheduleUsecase) GetSchedule(ctx context.Context, organizationID, scheduleID uuid.UUID) (*dto.WeeklyScheduleResponse, error) {
	schedule, err := u.scheduleRepo.FindByID(ctx, u.db, organizationID, scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule %s: %+v", scheduleID, err)
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}
	return converter.WeeklyScheduleToResponse(schedule), nil
}

func (u *weeklyScheduleUsecase) CreateSchedule(ctx context.Context, organizationID uuid.UUID, req *dto.WeeklyScheduleRequest) (*dto.WeeklyScheduleResponse, error) {
	schedule := &entity.WeeklySchedule{OrganizationID: organizationID, IsActive: true}
	if err := applyScheduleRequest(schedule, req); err != nil {
		return nil, err
	}

	actor := actorID(ctx)
	err := u.withTx(ctx, func(tx *gorm.DB) error {
		if err := u.scheduleRepo.Create(ctx, tx, schedule); err != nil {
			return err
		}
		return u.auditService.LogCreate(ctx, tx, organizationID, actor, entity.AuditActionScheduleCreate, "weekly_schedule", schedule.ID.String(), converter.WeeklyScheduleToResponse(schedule))
	})
	if err != nil {
		u.log.Warnf("Failed to create schedule for doctor %s: %+v", schedule.DoctorID, err)
		return nil, err
	}

	u.scheduleCache.Invalidate(ctx, organizationID)
	u.log.Infof("Weekly schedule created: id=%s, doctor=%s, day=%d", schedule.ID, schedule.DoctorID, schedule.DayOfWeek)
	return converter.WeeklyScheduleToResponse(schedule), nil
}

func (u *weeklyScheduleUsecase) UpdateSchedule(ctx context.Context, organizationID, scheduleID uuid.UUID, req *dto.WeeklyScheduleRequest) (*dto.WeeklyScheduleResponse, error) {
	schedule, err := u.scheduleRepo.FindByID(ctx, u.db, organizationID, scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule %s: %+v", scheduleID, err)
		return nil, err
	}
	if schedule == nil {
		return nil, ErrScheduleNotFound
	}

	oldValue := converter.WeeklyScheduleToResponse(schedule)
	if err := applyScheduleRequest(schedule, req); err != nil {
		return nil, err
	}

	actor := actorID(ctx)
	err = u.withTx(ctx, func(tx *gorm.DB) error {
		if err := u.scheduleRepo.Update(ctx, tx, schedule); err != nil {
			return err
		}
		return u.auditService.LogUpdate(ctx, tx, organizationID, actor, entity.AuditActionScheduleUpdate, "weekly_schedule", schedule.ID.String(), oldValue, converter.WeeklyScheduleToResponse(schedule))
	})
	if err != nil {
		u.log.Warnf("Failed to update schedule %s: %+v", scheduleID, err)
		return nil, err
	}

	u.scheduleCache.Invalidate(ctx, organizationID)
	return converter.WeeklyScheduleToResponse(schedule), nil
}

func (u *weeklyScheduleUsecase) DeleteSchedule(ctx context.Context, organizationID, scheduleID uuid.UUID) error {
	schedule, err := u.scheduleRepo.FindByID(ctx, u.db, organizationID, scheduleID)
	if err != nil {
		u.log.Warnf("Failed to find schedule %s: %+v", scheduleID, err)
		return err
	}
	if schedule == nil {
		return ErrScheduleNotFound
	}

	actor := actorID(ctx)
	err = u.withTx(ctx, func(tx *gorm.DB) error {
		affected, err := u.scheduleRepo.Delete(ctx, tx, organizationID, scheduleID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrScheduleNotFound
		}
		return u.auditService.LogDelete(ctx, tx, organizationID, actor, entity.AuditActionScheduleDelete, "weekly_schedule", scheduleID.String(), converter.WeeklyScheduleToResponse(schedule))
	})
	if err != nil {
		if !errors.Is(err, ErrScheduleNotFound) {
			u.log.Warnf("Failed to delete schedule %s: %+v", scheduleID, err)
		}
		return err
	}

	u.scheduleCache.Invalidate(ctx, organizationID)
	return nil
}

// applyScheduleRequest validates times and copies the request onto schedule
func applyScheduleRequest(schedule *entity.WeeklySchedule, req *dto.WeeklyScheduleRequest) error {
	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return fmt.Errorf("%w: doctor_id", ErrInvalidIdentifier)
	}
	locationID, err := parseOptionalUUID(deref(req.LocationID))
	if err != nil {
		return fmt.Errorf("%w: location_id", ErrInvalidIdentifier)
	}

	start, err := availability.ParseClock(req.StartTime)
	if err != nil {
		return ErrInvalidTimeFormat
	}
	end, err := availability.ParseClock(req.EndTime)
	if err != nil {
		return ErrInvalidTimeFormat
	}
	if start%time.Minute != 0 || end%time.Minute != 0 {
		return ErrInvalidTimeFormat
	}
	if start >= end {
		return ErrInvalidTimeRange
	}
	if req.DayOfWeek == nil || *req.DayOfWeek < 0 || *req.DayOfWeek > 6 {
		return ErrInvalidDayOfWeek
	}

	schedule.DoctorID = doctorID
	schedule.LocationID = locationID
	schedule.DayOfWeek = *req.DayOfWeek
	schedule.StartTime = availability.FormatClock(start)
	schedule.EndTime = availability.FormatClock(end)
	if req.IsActive != nil {
		schedule.IsActive = *req.IsActive
	}
	return nil
}

func actorID(ctx context.Context) *uuid.UUID {
	if userID, ok := middleware.GetUserIDFromContext(ctx); ok {
		return &userID
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
