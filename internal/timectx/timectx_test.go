package timectx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunstone-app/sunstone/internal/types"
)

func fixedClock(hour, minute int) func() time.Time {
	return func() time.Time {
		return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
	}
}

func TestCompute_Afternoon(t *testing.T) {
	p := &Policy{Now: fixedClock(18, 0)}
	tc := p.Compute("21:30")

	assert.Equal(t, 210, tc.MinutesToCutoff)
	assert.Equal(t, 195, tc.EffectiveMinutesToCutoff)
	assert.Equal(t, 360, tc.MinutesToMidnight)
	assert.Equal(t, 345, tc.EffectiveMinutesToMidnight)
	assert.False(t, tc.WindDownActive())
	assert.Equal(t, 195, tc.BindingHorizonMinutes())
}

func TestCompute_InsideBuffer(t *testing.T) {
	// 10 raw minutes to cutoff is inside the 15-minute buffer.
	p := &Policy{Now: fixedClock(21, 20)}
	tc := p.Compute("21:30")

	assert.Equal(t, 10, tc.MinutesToCutoff)
	assert.Equal(t, 0, tc.EffectiveMinutesToCutoff)
	assert.True(t, tc.WindDownActive())

	// Once wind-down is active the midnight window binds.
	assert.Equal(t, tc.EffectiveMinutesToMidnight, tc.BindingHorizonMinutes())
	assert.Equal(t, 145, tc.EffectiveMinutesToMidnight)
}

func TestCompute_PastCutoff(t *testing.T) {
	p := &Policy{Now: fixedClock(23, 0)}
	tc := p.Compute("21:30")

	assert.Equal(t, 0, tc.MinutesToCutoff)
	assert.Equal(t, 0, tc.EffectiveMinutesToCutoff)
	assert.True(t, tc.WindDownActive())
}

func TestCompute_MalformedCutoffFallsBack(t *testing.T) {
	p := &Policy{Now: fixedClock(12, 0)}

	for _, cutoff := range []string{"", "25:00", "9pm", "21:75", "banana"} {
		tc := p.Compute(cutoff)
		// DefaultDayEnd 21:30 gives 570 raw minutes from noon.
		assert.Equal(t, 570, tc.MinutesToCutoff, "cutoff %q", cutoff)
	}
}

func TestCompute_CustomBuffer(t *testing.T) {
	p := &Policy{Buffer: 30, Now: fixedClock(21, 0)}
	tc := p.Compute("21:30")

	require.Equal(t, 30, tc.MinutesToCutoff)
	assert.Equal(t, 0, tc.EffectiveMinutesToCutoff)
	assert.True(t, tc.WindDownActive())
}

func TestComputeForProfile_NilProfile(t *testing.T) {
	p := &Policy{Now: fixedClock(12, 0)}
	tc := p.ComputeForProfile(nil)
	assert.Equal(t, 570, tc.MinutesToCutoff)
}

func TestComputeForProfile_PolicyFallbackCutoff(t *testing.T) {
	p := &Policy{DayEnd: "20:00", Now: fixedClock(12, 0)}

	// Profiles without a cutoff use the policy fallback.
	tc := p.ComputeForProfile(nil)
	assert.Equal(t, 480, tc.MinutesToCutoff)

	// A profile cutoff still wins over the fallback.
	tc = p.ComputeForProfile(&types.Profile{DayEndLocal: "21:30"})
	assert.Equal(t, 570, tc.MinutesToCutoff)
}

func TestSwapCeiling(t *testing.T) {
	tests := []struct {
		name    string
		hour    int
		minute  int
		ceiling int
	}{
		{"hours remaining", 15, 0, 3},
		{"under 30 effective", 20, 46, 2},  // raw 44, effective 29
		{"under 15 effective", 21, 1, 1},   // raw 29, effective 14
		{"wind-down binds midnight", 21, 30, 3}, // midnight horizon is large again
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Policy{Now: fixedClock(tt.hour, tt.minute)}
			tc := p.Compute("21:30")
			assert.Equal(t, tt.ceiling, tc.SwapCeiling())
		})
	}
}
