package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medbook/config"
	"medbook/internal/availability"
	"medbook/internal/converter"
	"medbook/internal/delivery/dto"
	"medbook/internal/domain/entity"
	"medbook/internal/domain/repository"
	"medbook/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

var (
	// ErrUpstreamData wraps failures of the stores feeding the calculator
	ErrUpstreamData  = errors.New("failed to load availability data")
	ErrRangeTooLarge = errors.New("date range too large")
)

type AvailabilityUsecase interface {
	GetAvailability(ctx context.Context, req *dto.AvailabilityRequest) (dto.AvailabilityResponse, error)
	// Compute runs the calculator for query, ignoring excludeID among the booked appointments
	Compute(ctx context.Context, query entity.AvailabilityQuery, excludeID *uuid.UUID) ([]entity.DayAvailability, error)
	ResolveRole(ctx context.Context, organizationID uuid.UUID) (entity.Role, error)
}

type availabilityUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	cfg             config.AvailabilityConfig
	defaultLocation *time.Location
	dayNames        [7]string
	now             func() time.Time
	orgRepo         repository.OrganizationRepository
	memberRepo      repository.MemberRepository
	scheduleRepo    repository.WeeklyScheduleRepository
	appointmentRepo repository.AppointmentRepository
	serviceRepo     repository.MedicalServiceRepository
	scheduleCache   *service.ScheduleCacheService
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	cfg config.AvailabilityConfig,
	defaultLocation *time.Location,
	locale string,
	orgRepo repository.OrganizationRepository,
	memberRepo repository.MemberRepository,
	scheduleRepo repository.WeeklyScheduleRepository,
	appointmentRepo repository.AppointmentRepository,
	serviceRepo repository.MedicalServiceRepository,
	scheduleCache *service.ScheduleCacheService,
) AvailabilityUsecase {
	if defaultLocation == nil {
		defaultLocation = time.UTC
	}
	return &availabilityUsecase{
		db:              db,
		log:             log,
		cfg:             cfg,
		defaultLocation: defaultLocation,
		dayNames:        availability.DayNames(locale),
		now:             time.Now,
		orgRepo:         orgRepo,
		memberRepo:      memberRepo,
		scheduleRepo:    scheduleRepo,
		appointmentRepo: appointmentRepo,
		serviceRepo:     serviceRepo,
		scheduleCache:   scheduleCache,
	}
}

// GetAvailability answers GET /availability for the calling user
func (u *availabilityUsecase) GetAvailability(ctx context.Context, req *dto.AvailabilityRequest) (dto.AvailabilityResponse, error) {
	organizationID, err := uuid.Parse(req.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("%w: organizationId", ErrInvalidIdentifier)
	}

	query := entity.AvailabilityQuery{
		OrganizationID:   organizationID,
		StartDate:        req.StartDate,
		EndDate:          req.EndDate,
		UseStandardRules: req.UseStandardRules,
	}
	if query.ServiceID, err = parseOptionalUUID(req.ServiceID); err != nil {
		return nil, fmt.Errorf("%w: serviceId", ErrInvalidIdentifier)
	}
	if query.DoctorID, err = parseOptionalUUID(req.DoctorID); err != nil {
		return nil, fmt.Errorf("%w: doctorId", ErrInvalidIdentifier)
	}
	if query.LocationID, err = parseOptionalUUID(req.LocationID); err != nil {
		return nil, fmt.Errorf("%w: locationId", ErrInvalidIdentifier)
	}

	// Range checks need no store access, fail fast before any query
	start, end, err := availability.ParseDateRange(req.StartDate, req.EndDate, time.UTC)
	if err != nil {
		return nil, err
	}
	if u.cfg.MaxRangeDays > 0 {
		if days := int(end.Sub(start).Hours()/24) + 1; days > u.cfg.MaxRangeDays {
			return nil, fmt.Errorf("%w: %d days requested, at most %d allowed", ErrRangeTooLarge, days, u.cfg.MaxRangeDays)
		}
	}

	role, err := u.ResolveRole(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	query.UserRole = effectiveRole(role, req.UserRole)

	days, err := u.Compute(ctx, query, nil)
	if err != nil {
		return nil, err
	}

	u.log.Debugf("Computed availability org=%s range=%s..%s role=%s days=%d", organizationID, req.StartDate, req.EndDate, query.UserRole, len(days))
	return converter.AvailabilityToResponse(days), nil
}

func (u *availabilityUsecase) ResolveRole(ctx context.Context, organizationID uuid.UUID) (entity.Role, error) {
	role, err := resolveActorRole(ctx, u.db, u.memberRepo, organizationID)
	if err != nil {
		u.log.Warnf("Failed to resolve actor role in org %s: %+v", organizationID, err)
		return "", fmt.Errorf("%w: %v", ErrUpstreamData, err)
	}
	return role, nil
}

// Compute loads the organization, service, templates and booked appointments
// concurrently and runs the calculator over them.
func (u *availabilityUsecase) Compute(ctx context.Context, query entity.AvailabilityQuery, excludeID *uuid.UUID) ([]entity.DayAvailability, error) {
	var (
		organization *entity.Organization
		medService   *entity.MedicalService
		schedules    []entity.WeeklySchedule
		appointments []entity.Appointment
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		organization, err = u.orgRepo.FindByID(gctx, u.db, query.OrganizationID)
		if err != nil {
			return fmt.Errorf("load organization: %w", err)
		}
		return nil
	})

	if query.ServiceID != nil {
		g.Go(func() error {
			var err error
			medService, err = u.serviceRepo.FindByID(gctx, u.db, query.OrganizationID, *query.ServiceID)
			if err != nil {
				return fmt.Errorf("load service: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		var err error
		schedules, err = u.loadSchedules(gctx, query)
		return err
	})

	g.Go(func() error {
		var err error
		appointments, err = u.appointmentRepo.FindBlocking(gctx, u.db, &entity.AppointmentFilter{
			OrganizationID: query.OrganizationID,
			DoctorID:       query.DoctorID,
			StartDate:      query.StartDate,
			EndDate:        query.EndDate,
			ExcludeID:      excludeID,
		})
		if err != nil {
			return fmt.Errorf("load appointments: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to load availability data for org %s: %+v", query.OrganizationID, err)
		return nil, fmt.Errorf("%w: %v", ErrUpstreamData, err)
	}

	opts := u.options(organization, medService)
	return availability.Compute(query, schedules, appointments, u.now(), opts)
}

func (u *availabilityUsecase) loadSchedules(ctx context.Context, query entity.AvailabilityQuery) ([]entity.WeeklySchedule, error) {
	filter := &entity.ScheduleFilter{
		OrganizationID: query.OrganizationID,
		DoctorID:       query.DoctorID,
		LocationID:     query.LocationID,
		ServiceID:      query.ServiceID,
		ActiveOnly:     true,
	}

	cached, cacheKey, ok := u.scheduleCache.Get(ctx, filter)
	if ok {
		return cached, nil
	}

	schedules, err := u.scheduleRepo.FindAll(ctx, u.db, filter)
	if err != nil {
		return nil, fmt.Errorf("load weekly schedules: %w", err)
	}

	u.scheduleCache.Set(ctx, cacheKey, schedules)
	return schedules, nil
}

// options applies organization timezone and service duration over the configured defaults
func (u *availabilityUsecase) options(organization *entity.Organization, medService *entity.MedicalService) availability.Options {
	opts := availability.Options{
		SlotDuration:  u.cfg.SlotDuration,
		AdvanceNotice: u.cfg.AdvanceNotice,
		Location:      u.defaultLocation,
		DayNames:      u.dayNames,
	}

	if organization != nil && organization.Timezone != "" {
		if loc, err := time.LoadLocation(organization.Timezone); err == nil {
			opts.Location = loc
		} else {
			u.log.Warnf("Organization %s has invalid timezone %q, using %s", organization.ID, organization.Timezone, u.defaultLocation)
		}
	}

	if medService != nil && medService.IsActive && medService.DurationMinutes > 0 {
		opts.SlotDuration = time.Duration(medService.DurationMinutes) * time.Minute
	}

	return opts
}
