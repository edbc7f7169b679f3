package availability

import (
	"fmt"
	"time"
)

var clockLayouts = []string{"15:04", "15:04:05"}

// ParseClock parses a wall-clock time (HH:MM or HH:MM:SS) into an offset from midnight.
func ParseClock(value string) (time.Duration, error) {
	for _, layout := range clockLayouts {
		t, err := time.Parse(layout, value)
		if err != nil {
			continue
		}
		return time.Duration(t.Hour())*time.Hour +
			time.Duration(t.Minute())*time.Minute +
			time.Duration(t.Second())*time.Second, nil
	}
	return 0, fmt.Errorf("invalid time %q, use HH:MM", value)
}

// FormatClock renders an offset from midnight as HH:MM.
func FormatClock(offset time.Duration) string {
	minutes := int(offset / time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// at returns the instant of a wall-clock offset on a calendar day, in the day's location.
// Built from components so a DST transition earlier that day does not shift the result.
func at(day time.Time, offset time.Duration) time.Time {
	seconds := int(offset / time.Second)
	return time.Date(day.Year(), day.Month(), day.Day(), seconds/3600, (seconds%3600)/60, seconds%60, 0, day.Location())
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
