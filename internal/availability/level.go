package availability

import "medbook/internal/domain/entity"

// LevelFor buckets a free-slot count: 0 none, 1-2 low, 3-5 medium, 6+ high.
func LevelFor(available int) entity.AvailabilityLevel {
	switch {
	case available <= 0:
		return entity.AvailabilityNone
	case available <= 2:
		return entity.AvailabilityLow
	case available <= 5:
		return entity.AvailabilityMedium
	default:
		return entity.AvailabilityHigh
	}
}
