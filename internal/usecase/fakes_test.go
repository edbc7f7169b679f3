package usecase

import (
	"context"
	"io"
	"sync"
	"time"

	"medbook/config"
	"medbook/internal/domain/entity"
	"medbook/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func noTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func fixedNow(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

type fakeOrgRepo struct {
	orgs map[uuid.UUID]*entity.Organization
	err  error
}

func (r *fakeOrgRepo) FindByID(ctx context.Context, db *gorm.DB, id uuid.UUID) (*entity.Organization, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.orgs[id], nil
}

type fakeMemberRepo struct {
	roles map[uuid.UUID]entity.Role
	err   error
}

func (r *fakeMemberRepo) FindMembership(ctx context.Context, db *gorm.DB, organizationID, userID uuid.UUID) (*entity.OrganizationMember, error) {
	if r.err != nil {
		return nil, r.err
	}
	role, ok := r.roles[userID]
	if !ok {
		return nil, nil
	}
	return &entity.OrganizationMember{OrganizationID: organizationID, UserID: userID, Role: role, IsActive: true}, nil
}

type fakeScheduleRepo struct {
	mu        sync.Mutex
	schedules []entity.WeeklySchedule
	err       error
	lastQuery *entity.ScheduleFilter
}

func (r *fakeScheduleRepo) Create(ctx context.Context, db *gorm.DB, schedule *entity.WeeklySchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	schedule.ID = uuid.New()
	r.schedules = append(r.schedules, *schedule)
	return nil
}

func (r *fakeScheduleRepo) FindByID(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (*entity.WeeklySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.schedules {
		if s.ID == id && s.OrganizationID == organizationID {
			found := s
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeScheduleRepo) FindAll(ctx context.Context, db *gorm.DB, filter *entity.ScheduleFilter) ([]entity.WeeklySchedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastQuery = filter
	if r.err != nil {
		return nil, r.err
	}
	var out []entity.WeeklySchedule
	for _, s := range r.schedules {
		if s.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.DoctorID != nil && s.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.ActiveOnly && !s.IsActive {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (r *fakeScheduleRepo) Update(ctx context.Context, db *gorm.DB, schedule *entity.WeeklySchedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.schedules {
		if r.schedules[i].ID == schedule.ID {
			r.schedules[i] = *schedule
		}
	}
	return nil
}

func (r *fakeScheduleRepo) Delete(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.schedules {
		if s.ID == id && s.OrganizationID == organizationID {
			r.schedules = append(r.schedules[:i], r.schedules[i+1:]...)
			return 1, nil
		}
	}
	return 0, nil
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments []entity.Appointment
	err          error
	createErr    error
}

func (r *fakeAppointmentRepo) Create(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	appointment.ID = uuid.New()
	r.appointments = append(r.appointments, *appointment)
	return nil
}

func (r *fakeAppointmentRepo) FindByID(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (*entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appointments {
		if a.ID == id && a.OrganizationID == organizationID {
			found := a
			return &found, nil
		}
	}
	return nil, nil
}

func (r *fakeAppointmentRepo) FindBlocking(ctx context.Context, db *gorm.DB, filter *entity.AppointmentFilter) ([]entity.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	var out []entity.Appointment
	for _, a := range r.appointments {
		date := a.AppointmentDate.Format("2006-01-02")
		switch {
		case a.OrganizationID != filter.OrganizationID,
			!a.Status.IsBlocking(),
			date < filter.StartDate || date > filter.EndDate,
			filter.DoctorID != nil && a.DoctorID != *filter.DoctorID,
			filter.ExcludeID != nil && a.ID == *filter.ExcludeID:
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *fakeAppointmentRepo) Reschedule(ctx context.Context, db *gorm.DB, appointment *entity.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appointments {
		if r.appointments[i].ID == appointment.ID && r.appointments[i].Status.IsBlocking() {
			r.appointments[i].AppointmentDate = appointment.AppointmentDate
			r.appointments[i].StartTime = appointment.StartTime
			r.appointments[i].DurationMinutes = appointment.DurationMinutes
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeAppointmentRepo) Cancel(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.appointments {
		a := &r.appointments[i]
		if a.ID == id && a.OrganizationID == organizationID && a.Status.IsBlocking() {
			a.Status = entity.AppointmentStatusCancelled
			return 1, nil
		}
	}
	return 0, nil
}

type fakeServiceRepo struct {
	services map[uuid.UUID]*entity.MedicalService
}

func (r *fakeServiceRepo) FindByID(ctx context.Context, db *gorm.DB, organizationID, id uuid.UUID) (*entity.MedicalService, error) {
	return r.services[id], nil
}

func (r *fakeServiceRepo) FindActive(ctx context.Context, db *gorm.DB, organizationID uuid.UUID) ([]entity.MedicalService, error) {
	var out []entity.MedicalService
	for _, s := range r.services {
		if s.OrganizationID == organizationID && s.IsActive {
			out = append(out, *s)
		}
	}
	return out, nil
}

type fakeAuditRepo struct {
	mu   sync.Mutex
	logs []entity.AuditLog
}

func (r *fakeAuditRepo) Create(ctx context.Context, db *gorm.DB, log *entity.AuditLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logs = append(r.logs, *log)
	return nil
}

func (r *fakeAuditRepo) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.logs))
	for i, l := range r.logs {
		out[i] = l.Action
	}
	return out
}

type fakeOutboxRepo struct {
	mu     sync.Mutex
	events []entity.OutboxEvent
}

func (r *fakeOutboxRepo) Create(ctx context.Context, db *gorm.DB, event *entity.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	event.ID = int64(len(r.events) + 1)
	r.events = append(r.events, *event)
	return nil
}

func (r *fakeOutboxRepo) FetchUnpublished(ctx context.Context, db *gorm.DB, limit int) ([]entity.OutboxEvent, error) {
	return nil, nil
}

func (r *fakeOutboxRepo) MarkPublished(ctx context.Context, db *gorm.DB, ids []int64, publishedAt time.Time) error {
	return nil
}

func (r *fakeOutboxRepo) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType
	}
	return out
}

// fixture wires the usecases over in-memory stores.
// now is Monday 2025-06-02 10:00 UTC; doctor works Tuesdays 09:00-12:00.
type fixture struct {
	orgID        uuid.UUID
	doctorID     uuid.UUID
	staffID      uuid.UUID
	patientID    uuid.UUID
	orgs         *fakeOrgRepo
	members      *fakeMemberRepo
	schedules    *fakeScheduleRepo
	appointments *fakeAppointmentRepo
	services     *fakeServiceRepo
	audit        *fakeAuditRepo
	outbox       *fakeOutboxRepo
	availability *availabilityUsecase
	booking      *appointmentUsecase
}

func newFixture() *fixture {
	f := &fixture{
		orgID:     uuid.New(),
		doctorID:  uuid.New(),
		staffID:   uuid.New(),
		patientID: uuid.New(),
	}
	f.orgs = &fakeOrgRepo{orgs: map[uuid.UUID]*entity.Organization{
		f.orgID: {ID: f.orgID, Name: "Clinica Centro", Timezone: "UTC"},
	}}
	f.members = &fakeMemberRepo{roles: map[uuid.UUID]entity.Role{f.staffID: entity.RoleStaff}}
	f.schedules = &fakeScheduleRepo{schedules: []entity.WeeklySchedule{{
		ID:             uuid.New(),
		OrganizationID: f.orgID,
		DoctorID:       f.doctorID,
		DayOfWeek:      int(time.Tuesday),
		StartTime:      "09:00:00",
		EndTime:        "12:00:00",
		IsActive:       true,
	}}}
	f.appointments = &fakeAppointmentRepo{}
	f.services = &fakeServiceRepo{services: map[uuid.UUID]*entity.MedicalService{}}
	f.audit = &fakeAuditRepo{}
	f.outbox = &fakeOutboxRepo{}

	log := quietLogger()
	cfg := config.AvailabilityConfig{
		SlotDuration:  30 * time.Minute,
		AdvanceNotice: 24 * time.Hour,
		MaxRangeDays:  31,
	}
	cache := service.NewScheduleCacheService(nil, log, 0)

	f.availability = NewAvailabilityUsecase(nil, log, cfg, time.UTC, "en",
		f.orgs, f.members, f.schedules, f.appointments, f.services, cache).(*availabilityUsecase)
	f.availability.now = fixedNow(time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC))

	f.booking = NewAppointmentUsecase(nil, log, f.orgs, f.appointments, f.availability,
		service.NewSlotLockService(nil, log, 0), service.NewAuditService(log, f.audit), service.NewEventService(log, f.outbox)).(*appointmentUsecase)
	f.booking.withTx = noTx

	return f
}
