// Package availability expands weekly doctor schedules into bookable slots.
//
// Compute is a pure function: it reads only its arguments, never the clock,
// and may be called concurrently. Tenant filtering is the caller's job; the
// schedules and appointments passed in are assumed to belong to the queried
// organization already.
package availability

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"medbook/internal/domain/entity"

	"github.com/google/uuid"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

// ErrInvalidDateRange is returned for unparsable dates or an inverted range.
var ErrInvalidDateRange = errors.New("invalid date range")

type interval struct {
	start time.Duration
	end   time.Duration
}

type busyKey struct {
	doctorID uuid.UUID
	date     string
}

type candidate struct {
	offset time.Duration
	slot   entity.TimeSlot
}

// ParseDateRange parses an inclusive YYYY-MM-DD range as midnights in loc.
func ParseDateRange(startDate, endDate string, loc *time.Location) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation(DateLayout, startDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date %q, use YYYY-MM-DD", ErrInvalidDateRange, startDate)
	}
	end, err := time.ParseInLocation(DateLayout, endDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end date %q, use YYYY-MM-DD", ErrInvalidDateRange, endDate)
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidDateRange, startDate, endDate)
	}
	return start, end, nil
}

// Compute returns one DayAvailability per calendar date in
// [max(query.StartDate, today), query.EndDate], where today is now's date in
// opts.Location.
//
// For every active schedule entry matching a date's weekday, candidate slots
// of opts.SlotDuration are generated from the entry's start time; the last
// candidate ends exactly at the entry's end time. A candidate is unavailable
// when it overlaps a blocking appointment of the same doctor on the same date
// (half-open intervals), or when it falls outside the booking window of the
// rule family selected by query.UserRole and query.UseStandardRules. The
// conflict reason wins when both apply.
//
// Entries with unparsable or inverted times produce no candidates. Two entries
// of the same doctor that overlap produce each start time once.
func Compute(query entity.AvailabilityQuery, schedules []entity.WeeklySchedule, appointments []entity.Appointment, now time.Time, opts Options) ([]entity.DayAvailability, error) {
	opts = opts.withDefaults()

	start, end, err := ParseDateRange(query.StartDate, query.EndDate, opts.Location)
	if err != nil {
		return nil, err
	}

	now = now.In(opts.Location)
	today := midnight(now)
	tomorrow := today.AddDate(0, 0, 1)
	if start.Before(today) {
		start = today
	}

	rule := RuleFor(query.UserRole, query.UseStandardRules)
	busy := indexBusy(appointments, opts.SlotDuration)

	days := make([]entity.DayAvailability, 0)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		slots := expandDay(day, schedules, busy, rule, now, opts)

		available := 0
		for _, slot := range slots {
			if slot.Available {
				available++
			}
		}

		weekday := day.Weekday()
		days = append(days, entity.DayAvailability{
			Date:              day.Format(DateLayout),
			DayName:           opts.DayNames[weekday],
			Slots:             slots,
			TotalSlots:        len(slots),
			AvailableSlots:    available,
			AvailabilityLevel: LevelFor(available),
			IsToday:           day.Equal(today),
			IsTomorrow:        day.Equal(tomorrow),
			IsWeekend:         weekday == time.Saturday || weekday == time.Sunday,
		})
	}

	return days, nil
}

func expandDay(day time.Time, schedules []entity.WeeklySchedule, busy map[busyKey][]interval, rule RuleSet, now time.Time, opts Options) []entity.TimeSlot {
	date := day.Format(DateLayout)
	weekday := int(day.Weekday())
	step := opts.SlotDuration
	minutes := int(step / time.Minute)

	var candidates []candidate
	seen := make(map[busyKey]map[time.Duration]struct{})

	for _, schedule := range schedules {
		if !schedule.IsActive || schedule.DayOfWeek != weekday {
			continue
		}
		from, err := ParseClock(schedule.StartTime)
		if err != nil {
			continue
		}
		to, err := ParseClock(schedule.EndTime)
		if err != nil || from >= to {
			continue
		}

		key := busyKey{doctorID: schedule.DoctorID, date: date}
		if seen[key] == nil {
			seen[key] = make(map[time.Duration]struct{})
		}

		for offset := from; offset+step <= to; offset += step {
			if _, dup := seen[key][offset]; dup {
				continue
			}
			seen[key][offset] = struct{}{}

			slot := entity.TimeSlot{
				Time:            FormatClock(offset),
				DoctorID:        schedule.DoctorID,
				DurationMinutes: minutes,
				Available:       true,
			}

			if overlapsAny(offset, offset+step, busy[key]) {
				slot.Available = false
				slot.UnavailableReason = entity.ReasonSlotConflict
			} else if reason, hours := rule.check(at(day, offset), now, opts.AdvanceNotice); reason != "" {
				slot.Available = false
				slot.UnavailableReason = reason
				slot.RequiredAdvanceHours = hours
			}

			candidates = append(candidates, candidate{offset: offset, slot: slot})
		}
	}

	slices.SortStableFunc(candidates, func(a, b candidate) int {
		if c := cmp.Compare(a.offset, b.offset); c != 0 {
			return c
		}
		return cmp.Compare(a.slot.DoctorID.String(), b.slot.DoctorID.String())
	})

	slots := make([]entity.TimeSlot, len(candidates))
	for i, c := range candidates {
		slots[i] = c.slot
	}
	return slots
}

// indexBusy groups blocking appointments by doctor and date. Appointments
// without a positive duration occupy one slot.
func indexBusy(appointments []entity.Appointment, fallback time.Duration) map[busyKey][]interval {
	busy := make(map[busyKey][]interval)
	for _, appt := range appointments {
		if !appt.Status.IsBlocking() {
			continue
		}
		start, err := ParseClock(appt.StartTime)
		if err != nil {
			continue
		}
		length := time.Duration(appt.DurationMinutes) * time.Minute
		if length <= 0 {
			length = fallback
		}
		key := busyKey{doctorID: appt.DoctorID, date: appt.AppointmentDate.Format(DateLayout)}
		busy[key] = append(busy[key], interval{start: start, end: start + length})
	}
	return busy
}

func overlapsAny(start, end time.Duration, busy []interval) bool {
	for _, b := range busy {
		// Half-open intervals: [start,end) overlaps [b.start,b.end) iff start < b.end && b.start < end.
		if start < b.end && b.start < end {
			return true
		}
	}
	return false
}

// FindSlot locates the slot of doctorID at clock on date in a computed result.
func FindSlot(days []entity.DayAvailability, date, clock string, doctorID uuid.UUID) (entity.TimeSlot, bool) {
	offset, err := ParseClock(clock)
	if err != nil {
		return entity.TimeSlot{}, false
	}
	want := FormatClock(offset)
	for _, day := range days {
		if day.Date != date {
			continue
		}
		for _, slot := range day.Slots {
			if slot.Time == want && slot.DoctorID == doctorID {
				return slot, true
			}
		}
	}
	return entity.TimeSlot{}, false
}
