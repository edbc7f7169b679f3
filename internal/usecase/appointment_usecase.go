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
	ErrAppointmentNotFound         = errors.New("appointment not found")
	ErrAppointmentAlreadyCancelled = errors.New("appointment is already cancelled")
	ErrAppointmentNotActive        = errors.New("appointment can no longer be changed")
	ErrAppointmentNotOwned         = errors.New("appointment does not belong to you")
	ErrSlotNotOffered              = errors.New("the doctor has no slot at that time")
	ErrSlotUnavailable             = errors.New("slot is not available")
	ErrSlotTaken                   = errors.New("slot was just booked by someone else")
)

// SlotUnavailableError carries the calculator's reason for refusing a slot
type SlotUnavailableError struct {
	Reason               string
	RequiredAdvanceHours int
}

func (e *SlotUnavailableError) Error() string {
	return fmt.Sprintf("%v: %s", ErrSlotUnavailable, e.Reason)
}

func (e *SlotUnavailableError) Is(target error) bool {
	return target == ErrSlotUnavailable
}

type AppointmentUsecase interface {
	BookAppointment(ctx context.Context, organizationID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error)
	RescheduleAppointment(ctx context.Context, organizationID, appointmentID uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error)
	CancelAppointment(ctx context.Context, organizationID, appointmentID uuid.UUID) error
}

type appointmentUsecase struct {
	db                  *gorm.DB
	log                 *logrus.Logger
	withTx              txFunc
	orgRepo             repository.OrganizationRepository
	appointmentRepo     repository.AppointmentRepository
	availabilityUsecase AvailabilityUsecase
	slotLocks           *service.SlotLockService
	auditService        service.AuditService
	eventService        service.EventService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	orgRepo repository.OrganizationRepository,
	appointmentRepo repository.AppointmentRepository,
	availabilityUsecase AvailabilityUsecase,
	slotLocks *service.SlotLockService,
	auditService service.AuditService,
	eventService service.EventService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:                  db,
		log:                 log,
		withTx:              gormTx(db),
		orgRepo:             orgRepo,
		appointmentRepo:     appointmentRepo,
		availabilityUsecase: availabilityUsecase,
		slotLocks:           slotLocks,
		auditService:        auditService,
		eventService:        eventService,
	}
}

// BookAppointment books one slot.
//
// Flow:
// 1. Resolve the caller's role; patients book for themselves only
// 2. Hold the slot in Redis so concurrent attempts fail fast
// 3. Recompute availability of the target date and require the slot to be free
// 4. Insert appointment, audit log and outbox event in one transaction;
//    the exclusion constraint rejects anything the hold missed
func (u *appointmentUsecase) BookAppointment(ctx context.Context, organizationID uuid.UUID, req *dto.CreateAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	organization, err := u.orgRepo.FindByID(ctx, u.db, organizationID)
	if err != nil {
		u.log.Warnf("Failed to find organization %s: %+v", organizationID, err)
		return nil, err
	}
	if organization == nil {
		return nil, ErrOrganizationNotFound
	}

	doctorID, err := uuid.Parse(req.DoctorID)
	if err != nil {
		return nil, fmt.Errorf("%w: doctor_id", ErrInvalidIdentifier)
	}
	locationID, err := parseOptionalUUID(req.LocationID)
	if err != nil {
		return nil, fmt.Errorf("%w: location_id", ErrInvalidIdentifier)
	}
	serviceID, err := parseOptionalUUID(req.ServiceID)
	if err != nil {
		return nil, fmt.Errorf("%w: service_id", ErrInvalidIdentifier)
	}
	clock, err := canonicalClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(availability.DateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q, use YYYY-MM-DD", availability.ErrInvalidDateRange, req.Date)
	}

	role, err := u.availabilityUsecase.ResolveRole(ctx, organizationID)
	if err != nil {
		return nil, err
	}

	patientID := userID
	if req.PatientID != "" {
		requested, err := uuid.Parse(req.PatientID)
		if err != nil {
			return nil, fmt.Errorf("%w: patient_id", ErrInvalidIdentifier)
		}
		if requested != userID && !role.IsPrivileged() {
			return nil, ErrAppointmentNotOwned
		}
		patientID = requested
	}

	release, err := u.hold(ctx, organizationID, doctorID, req.Date, clock)
	if err != nil {
		return nil, err
	}
	defer release()

	slot, err := u.checkSlot(ctx, entity.AvailabilityQuery{
		OrganizationID: organizationID,
		StartDate:      req.Date,
		EndDate:        req.Date,
		ServiceID:      serviceID,
		DoctorID:       &doctorID,
		LocationID:     locationID,
		UserRole:       role,
	}, clock, nil)
	if err != nil {
		return nil, err
	}

	appointment := &entity.Appointment{
		OrganizationID:  organizationID,
		DoctorID:        doctorID,
		PatientID:       patientID,
		LocationID:      locationID,
		ServiceID:       serviceID,
		AppointmentDate: date,
		StartTime:       clock,
		DurationMinutes: slot.DurationMinutes,
		Status:          entity.AppointmentStatusScheduled,
		Notes:           req.Notes,
		CreatedBy:       userID,
	}

	err = u.withTx(ctx, func(tx *gorm.DB) error {
		if err := u.appointmentRepo.Create(ctx, tx, appointment); err != nil {
			return err
		}
		if err := u.auditService.LogCreate(ctx, tx, organizationID, &userID, entity.AuditActionAppointmentCreate, "appointment", appointment.ID.String(), converter.AppointmentToResponse(appointment)); err != nil {
			return err
		}
		return u.eventService.RecordAppointmentEvent(ctx, tx, entity.EventAppointmentBooked, appointmentEvent(appointment, userID))
	})
	if err != nil {
		return nil, u.translateWriteError("insert appointment", err)
	}

	u.log.Infof("Appointment booked: id=%s, doctor=%s, date=%s, time=%s, role=%s", appointment.ID, doctorID, req.Date, clock, role)
	return converter.AppointmentToResponse(appointment), nil
}

// RescheduleAppointment moves an active appointment to another slot of the same doctor.
// The appointment's own interval does not block its new slot.
func (u *appointmentUsecase) RescheduleAppointment(ctx context.Context, organizationID, appointmentID uuid.UUID, req *dto.RescheduleAppointmentRequest) (*dto.AppointmentResponse, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return nil, ErrUserNotInContext
	}

	appointment, role, err := u.loadOwned(ctx, organizationID, appointmentID, userID)
	if err != nil {
		return nil, err
	}
	if !appointment.Status.IsBlocking() {
		return nil, ErrAppointmentNotActive
	}

	clock, err := canonicalClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	date, err := time.Parse(availability.DateLayout, req.Date)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q, use YYYY-MM-DD", availability.ErrInvalidDateRange, req.Date)
	}

	release, err := u.hold(ctx, organizationID, appointment.DoctorID, req.Date, clock)
	if err != nil {
		return nil, err
	}
	defer release()

	slot, err := u.checkSlot(ctx, entity.AvailabilityQuery{
		OrganizationID: organizationID,
		StartDate:      req.Date,
		EndDate:        req.Date,
		ServiceID:      appointment.ServiceID,
		DoctorID:       &appointment.DoctorID,
		LocationID:     appointment.LocationID,
		UserRole:       role,
	}, clock, &appointment.ID)
	if err != nil {
		return nil, err
	}

	oldValue := converter.AppointmentToResponse(appointment)
	appointment.AppointmentDate = date
	appointment.StartTime = clock
	appointment.DurationMinutes = slot.DurationMinutes

	err = u.withTx(ctx, func(tx *gorm.DB) error {
		if err := u.appointmentRepo.Reschedule(ctx, tx, appointment); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrAppointmentNotActive
			}
			return err
		}
		if err := u.auditService.LogUpdate(ctx, tx, organizationID, &userID, entity.AuditActionAppointmentReschedule, "appointment", appointment.ID.String(), oldValue, converter.AppointmentToResponse(appointment)); err != nil {
			return err
		}
		return u.eventService.RecordAppointmentEvent(ctx, tx, entity.EventAppointmentRescheduled, appointmentEvent(appointment, userID))
	})
	if err != nil {
		if errors.Is(err, ErrAppointmentNotActive) {
			return nil, err
		}
		return nil, u.translateWriteError("reschedule appointment", err)
	}

	u.log.Infof("Appointment rescheduled: id=%s, date=%s, time=%s", appointment.ID, req.Date, clock)
	return converter.AppointmentToResponse(appointment), nil
}

// CancelAppointment frees the slot of an appointment
func (u *appointmentUsecase) CancelAppointment(ctx context.Context, organizationID, appointmentID uuid.UUID) error {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return ErrUserNotInContext
	}

	appointment, _, err := u.loadOwned(ctx, organizationID, appointmentID, userID)
	if err != nil {
		return err
	}
	if appointment.IsCancelled() {
		return ErrAppointmentAlreadyCancelled
	}
	if !appointment.Status.IsBlocking() {
		return ErrAppointmentNotActive
	}

	err = u.withTx(ctx, func(tx *gorm.DB) error {
		// Atomic update: only cancels while the status still blocks the slot
		affected, err := u.appointmentRepo.Cancel(ctx, tx, organizationID, appointmentID)
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrAppointmentNotActive
		}
		err = u.auditService.LogUpdate(ctx, tx, organizationID, &userID, entity.AuditActionAppointmentCancel, "appointment", appointmentID.String(),
			map[string]string{"status": string(appointment.Status)},
			map[string]string{"status": string(entity.AppointmentStatusCancelled)})
		if err != nil {
			return err
		}
		appointment.Status = entity.AppointmentStatusCancelled
		return u.eventService.RecordAppointmentEvent(ctx, tx, entity.EventAppointmentCancelled, appointmentEvent(appointment, userID))
	})
	if err != nil {
		if !errors.Is(err, ErrAppointmentNotActive) {
			u.log.Warnf("Failed to cancel appointment %s: %+v", appointmentID, err)
		}
		return err
	}

	u.log.Infof("Appointment cancelled: id=%s", appointmentID)
	return nil
}

func appointmentEvent(appointment *entity.Appointment, actorID uuid.UUID) entity.AppointmentEvent {
	return entity.AppointmentEvent{
		AppointmentID:   appointment.ID,
		OrganizationID:  appointment.OrganizationID,
		DoctorID:        appointment.DoctorID,
		PatientID:       appointment.PatientID,
		Date:            appointment.AppointmentDate.Format(availability.DateLayout),
		StartTime:       appointment.StartTime,
		DurationMinutes: appointment.DurationMinutes,
		Status:          appointment.Status,
		ActorID:         actorID,
	}
}

// loadOwned returns the appointment and the caller's role; patients only see their own
func (u *appointmentUsecase) loadOwned(ctx context.Context, organizationID, appointmentID, userID uuid.UUID) (*entity.Appointment, entity.Role, error) {
	appointment, err := u.appointmentRepo.FindByID(ctx, u.db, organizationID, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, "", err
	}
	if appointment == nil {
		return nil, "", ErrAppointmentNotFound
	}

	role, err := u.availabilityUsecase.ResolveRole(ctx, organizationID)
	if err != nil {
		return nil, "", err
	}
	if !role.IsPrivileged() && appointment.PatientID != userID {
		return nil, "", ErrAppointmentNotOwned
	}
	return appointment, role, nil
}

func (u *appointmentUsecase) hold(ctx context.Context, organizationID, doctorID uuid.UUID, date, clock string) (func(), error) {
	release, err := u.slotLocks.Acquire(ctx, organizationID, doctorID, date, clock)
	if err != nil {
		if errors.Is(err, service.ErrSlotHeld) {
			return nil, ErrSlotTaken
		}
		return nil, err
	}
	return release, nil
}

// checkSlot runs the calculator for the target date and requires the slot to be bookable
func (u *appointmentUsecase) checkSlot(ctx context.Context, query entity.AvailabilityQuery, clock string, excludeID *uuid.UUID) (entity.TimeSlot, error) {
	days, err := u.availabilityUsecase.Compute(ctx, query, excludeID)
	if err != nil {
		return entity.TimeSlot{}, err
	}

	slot, ok := availability.FindSlot(days, query.StartDate, clock, *query.DoctorID)
	if !ok {
		return entity.TimeSlot{}, ErrSlotNotOffered
	}
	if !slot.Available {
		return entity.TimeSlot{}, &SlotUnavailableError{
			Reason:               slot.UnavailableReason,
			RequiredAdvanceHours: slot.RequiredAdvanceHours,
		}
	}
	return slot, nil
}

func (u *appointmentUsecase) translateWriteError(action string, err error) error {
	switch pgErrorCode(err) {
	case pgExclusionViolation, pgUniqueViolation:
		return ErrSlotTaken
	case pgForeignKeyViolation:
		return fmt.Errorf("%w: referenced record does not exist", ErrInvalidIdentifier)
	}
	u.log.Warnf("Failed to %s: %+v", action, err)
	return err
}

func canonicalClock(value string) (string, error) {
	offset, err := availability.ParseClock(value)
	if err != nil {
		return "", ErrInvalidTimeFormat
	}
	return availability.FormatClock(offset), nil
}
