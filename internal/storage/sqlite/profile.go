package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/sunstone-app/sunstone/internal/events"
	"github.com/sunstone-app/sunstone/internal/types"
)

// ensureProfileTx creates the default profile row for a user if it does not
// exist yet.
func ensureProfileTx(ctx context.Context, tx *sql.Tx, userID string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT OR IGNORE INTO profiles (user_id) VALUES (?)`, userID)
	if err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

// EnsureProfile returns the user's profile, creating a default row on first
// touch.
func (s *Store) EnsureProfile(ctx context.Context, userID string) (*types.Profile, error) {
	var profile *types.Profile
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureProfileTx(ctx, tx, userID); err != nil {
			return err
		}
		p, err := loadProfileTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		profile = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpdateProfile writes back the mutable profile fields.
func (s *Store) UpdateProfile(ctx context.Context, p *types.Profile) error {
	settings, err := marshalJSON(p.Settings)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		UPDATE profiles
		SET day_end_local = ?, streak_count = ?, shields_remaining = ?,
		    last_shield_reset = ?, settings = ?
		WHERE user_id = ?`,
		p.DayEndLocal, p.StreakCount, p.ShieldsRemaining,
		p.LastShieldReset, settings, p.UserID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check profile update: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("profile %s: %w", p.UserID, ErrNotFound)
	}
	return nil
}

// ResetShields restores a user's shield count and stamps the reset time,
// recording the reset in the audit trail.
func (s *Store) ResetShields(ctx context.Context, userID string, shields int, at time.Time) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := ensureProfileTx(ctx, tx, userID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE profiles SET shields_remaining = ?, last_shield_reset = ?
			WHERE user_id = ?`, shields, at, userID); err != nil {
			return fmt.Errorf("failed to reset shields: %w", err)
		}

		event, err := events.NewShieldsReset(userID, shields)
		if err != nil {
			return err
		}
		return insertAuditTx(ctx, tx, event)
	})
}

func loadProfileTx(ctx context.Context, tx *sql.Tx, userID string) (*types.Profile, error) {
	var p types.Profile
	var lastReset sql.NullTime
	var settings string
	err := tx.QueryRowContext(ctx, `
		SELECT user_id, day_end_local, streak_count, shields_remaining, last_shield_reset, settings
		FROM profiles WHERE user_id = ?`, userID).Scan(
		&p.UserID, &p.DayEndLocal, &p.StreakCount, &p.ShieldsRemaining, &lastReset, &settings)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("profile %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if lastReset.Valid {
		t := lastReset.Time
		p.LastShieldReset = &t
	}
	if err := unmarshalJSON(settings, &p.Settings); err != nil {
		return nil, err
	}
	return &p, nil
}
