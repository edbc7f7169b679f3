package availability

import (
	"strings"
	"time"
)

const (
	DefaultSlotDuration  = 30 * time.Minute
	DefaultAdvanceNotice = 24 * time.Hour
)

var dayNamesByLocale = map[string][7]string{
	"en":    {"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"},
	"pt-br": {"Domingo", "Segunda-feira", "Terça-feira", "Quarta-feira", "Quinta-feira", "Sexta-feira", "Sábado"},
	"es":    {"Domingo", "Lunes", "Martes", "Miércoles", "Jueves", "Viernes", "Sábado"},
}

// Options carries the caller-owned constants of a computation.
type Options struct {
	SlotDuration  time.Duration
	AdvanceNotice time.Duration
	Location      *time.Location
	DayNames      [7]string
}

// DefaultOptions returns 30 minute slots, 24 hour notice, UTC and English day names.
func DefaultOptions() Options {
	return Options{
		SlotDuration:  DefaultSlotDuration,
		AdvanceNotice: DefaultAdvanceNotice,
		Location:      time.UTC,
		DayNames:      DayNames("en"),
	}
}

// DayNames returns weekday labels for a locale, falling back to English.
func DayNames(locale string) [7]string {
	if names, ok := dayNamesByLocale[strings.ToLower(locale)]; ok {
		return names
	}
	return dayNamesByLocale["en"]
}

// withDefaults fills unset fields. Slot labels are HH:MM, so a slot duration
// that is not a whole number of minutes falls back to the default.
func (o Options) withDefaults() Options {
	if o.SlotDuration < time.Minute || o.SlotDuration%time.Minute != 0 {
		o.SlotDuration = DefaultSlotDuration
	}
	if o.AdvanceNotice <= 0 {
		o.AdvanceNotice = DefaultAdvanceNotice
	}
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.DayNames[0] == "" {
		o.DayNames = DayNames("en")
	}
	return o
}
