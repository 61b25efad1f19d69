// Package timectx computes the time-budget policy snapshot used by plan
// validation and the swap ceiling: minutes remaining to the user's day-end
// cutoff and to midnight, with a fixed safety buffer.
package timectx

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sunstone-app/sunstone/internal/types"
)

const (
	// SafetyBufferMinutes is subtracted from every raw window so downstream
	// consumers share one consistent margin instead of each inventing their own.
	SafetyBufferMinutes = 15

	// DefaultDayEnd is the cutoff used when the profile has none configured.
	DefaultDayEnd = "21:30"
)

// Policy computes time context snapshots. The clock is injectable for tests.
type Policy struct {
	Buffer int    // minutes; zero value means SafetyBufferMinutes
	DayEnd string // fallback cutoff "HH:MM"; zero value means DefaultDayEnd
	Now    func() time.Time
}

// New returns a policy with the default buffer and the wall clock.
func New() *Policy {
	return &Policy{Buffer: SafetyBufferMinutes, Now: time.Now}
}

// Compute builds the snapshot for a user's configured cutoff ("HH:MM"
// local). A missing or malformed cutoff falls back to DefaultDayEnd; the
// computation itself cannot fail.
func (p *Policy) Compute(cutoffLocal string) *types.TimeContext {
	now := time.Now()
	if p.Now != nil {
		now = p.Now()
	}
	buffer := p.Buffer
	if buffer == 0 {
		buffer = SafetyBufferMinutes
	}

	hour, minute, err := parseClock(cutoffLocal)
	if err != nil && p.DayEnd != "" {
		hour, minute, err = parseClock(p.DayEnd)
	}
	if err != nil {
		hour, minute, _ = parseClock(DefaultDayEnd)
	}

	cutoff := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)

	minsToCutoff := flooredMinutes(now, cutoff)
	minsToMidnight := flooredMinutes(now, midnight)

	return &types.TimeContext{
		Now:                        now,
		Cutoff:                     cutoff,
		Midnight:                   midnight,
		MinutesToCutoff:            minsToCutoff,
		MinutesToMidnight:          minsToMidnight,
		EffectiveMinutesToCutoff:   floorZero(minsToCutoff - buffer),
		EffectiveMinutesToMidnight: floorZero(minsToMidnight - buffer),
	}
}

// ComputeForProfile is a convenience wrapper that tolerates a nil profile.
// Profiles without a configured cutoff use the policy fallback.
func (p *Policy) ComputeForProfile(profile *types.Profile) *types.TimeContext {
	cutoff := p.DayEnd
	if profile != nil && profile.DayEndLocal != "" {
		cutoff = profile.DayEndLocal
	}
	return p.Compute(cutoff)
}

// parseClock parses "HH:MM" into hour and minute components.
func parseClock(s string) (int, int, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid clock value %q (expected HH:MM)", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// flooredMinutes returns whole minutes from now until t, never negative.
func flooredMinutes(now, t time.Time) int {
	if !t.After(now) {
		return 0
	}
	return int(t.Sub(now) / time.Minute)
}

func floorZero(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
