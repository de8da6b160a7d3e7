package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAvailabilitySlot(t *testing.T) {
	t.Parallel()

	provider := uuid.New()
	start := time.Date(2026, 5, 4, 14, 0, 0, 0, time.UTC)

	testCases := []struct {
		name    string
		start   time.Time
		end     time.Time
		tz      string
		wantErr bool
	}{
		{"valid", start, start.Add(time.Hour), "America/Bogota", false},
		{"defaults timezone", start, start.Add(time.Hour), "", false},
		{"end equals start", start, start, "UTC", true},
		{"end before start", start, start.Add(-time.Minute), "UTC", true},
		{"unknown timezone", start, start.Add(time.Hour), "Nowhere/City", true},
		{"zero times", time.Time{}, time.Time{}, "UTC", true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			slot, err := NewAvailabilitySlot(provider, tc.start, tc.end, tc.tz)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, provider, slot.ProviderID)
			assert.NotEmpty(t, slot.Timezone)
		})
	}
}

func TestAvailabilitySlot_Overlaps(t *testing.T) {
	t.Parallel()

	base := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	slot := func(fromHour, toHour int) *AvailabilitySlot {
		return &AvailabilitySlot{
			Start: base.Add(time.Duration(fromHour) * time.Hour),
			End:   base.Add(time.Duration(toHour) * time.Hour),
		}
	}

	assert.True(t, slot(0, 2).Overlaps(slot(1, 3)))
	assert.True(t, slot(0, 4).Overlaps(slot(1, 2)), "containment")
	assert.False(t, slot(0, 1).Overlaps(slot(1, 2)), "adjacent slots do not overlap")
	assert.False(t, slot(3, 4).Overlaps(slot(0, 1)))
}

func TestDayBounds(t *testing.T) {
	t.Parallel()

	loc, err := time.LoadLocation("America/Mexico_City")
	require.NoError(t, err)

	from, to := DayBounds(time.Date(2026, 5, 4, 23, 30, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), to)

	// 20:00 in Mexico City on the 4th is already the 5th in UTC.
	from, _ = DayBounds(time.Date(2026, 5, 4, 20, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2026, 5, 5, 0, 0, 0, 0, time.UTC), from)
}
