package availability

import (
	"testing"

	"medbook/internal/domain/entity"
)

func TestLevelFor(t *testing.T) {
	tests := []struct {
		available int
		want      entity.AvailabilityLevel
	}{
		{0, entity.AvailabilityNone},
		{1, entity.AvailabilityLow},
		{2, entity.AvailabilityLow},
		{3, entity.AvailabilityMedium},
		{5, entity.AvailabilityMedium},
		{6, entity.AvailabilityHigh},
		{40, entity.AvailabilityHigh},
	}

	for _, tt := range tests {
		if got := LevelFor(tt.available); got != tt.want {
			t.Errorf("LevelFor(%d) = %s, want %s", tt.available, got, tt.want)
		}
	}
}
