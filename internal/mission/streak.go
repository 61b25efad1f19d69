package mission

import (
	"context"
	"time"

	"github.com/sunstone-app/sunstone/internal/types"
)

// RecoveryTitle is the fixed title of every injected recovery mission.
const RecoveryTitle = "Recover Your Streak"

// StreakCheck reports what CheckStreak observed and did.
type StreakCheck struct {
	CompletedToday   int
	ShieldsRemaining int
	ShieldsReset     bool

	// Recovery is the injected (or already-present) recovery assignment,
	// nil when no recovery was warranted.
	Recovery *types.Assignment
}

// CheckStreak runs the once-per-check streak inspection for a date: resets
// shields if a new ISO week has started, then, if the user completed
// nothing on the date and still has a shield, injects a single recovery
// mission. Re-running the check while an uncompleted recovery is pending
// returns the existing assignment instead of stacking another.
func (e *Engine) CheckStreak(ctx context.Context, userID, date string) (*StreakCheck, error) {
	reset, err := e.ResetShieldsIfNewWeek(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := e.store.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	completed, err := e.store.CountCompleted(ctx, userID, date)
	if err != nil {
		return nil, err
	}

	check := &StreakCheck{
		CompletedToday:   completed,
		ShieldsRemaining: profile.ShieldsRemaining,
		ShieldsReset:     reset,
	}
	if completed > 0 || profile.ShieldsRemaining <= 0 {
		return check, nil
	}

	assignment, err := e.store.CreateRecovery(ctx, userID, &types.Mission{
		Title:           RecoveryTitle,
		Category:        types.CategoryRecovery,
		Difficulty:      types.DifficultyEasy,
		DurationMinutes: RecoveryDurationMinutes,
		Reward:          RecoveryReward,
		Date:            date,
	})
	if err != nil {
		return nil, err
	}
	check.Recovery = assignment
	return check, nil
}

// ResetShieldsIfNewWeek restores the weekly shield allowance the first time
// any check runs in a new ISO calendar week. Returns whether a reset
// happened.
func (e *Engine) ResetShieldsIfNewWeek(ctx context.Context, userID string) (bool, error) {
	profile, err := e.store.EnsureProfile(ctx, userID)
	if err != nil {
		return false, err
	}

	now := time.Now()
	if e.policy != nil && e.policy.Now != nil {
		now = e.policy.Now()
	}

	if profile.LastShieldReset != nil {
		lastYear, lastWeek := profile.LastShieldReset.ISOWeek()
		year, week := now.ISOWeek()
		if lastYear == year && lastWeek == week {
			return false, nil
		}
	}

	if err := e.store.ResetShields(ctx, userID, ShieldsPerWeek, now); err != nil {
		return false, err
	}
	return true, nil
}
