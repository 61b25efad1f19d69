package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sunstone-app/sunstone/internal/events"
	"github.com/sunstone-app/sunstone/internal/types"
)

// CreateRecovery injects a recovery mission for today and returns its
// pending assignment. At most one uncompleted recovery exists per user per
// date: a second call returns the existing assignment unchanged.
func (s *Store) CreateRecovery(ctx context.Context, userID string, mission *types.Mission) (*types.Assignment, error) {
	if mission == nil {
		return nil, fmt.Errorf("recovery mission is required")
	}
	if mission.Category != types.CategoryRecovery {
		return nil, fmt.Errorf("mission %q is not a recovery mission", mission.Title)
	}

	now := time.Now()
	var assignment *types.Assignment

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var existingID string
		err := tx.QueryRowContext(ctx, `
			SELECT a.id FROM assignments a
			JOIN missions m ON m.id = a.mission_id
			WHERE a.user_id = ? AND a.date = ? AND a.status = ? AND m.category = ?
			LIMIT 1`,
			userID, mission.Date, string(types.AssignmentPending), string(types.CategoryRecovery)).Scan(&existingID)
		if err != nil && err != sql.ErrNoRows {
			return fmt.Errorf("failed to look up existing recovery: %w", err)
		}
		if err == nil {
			rec, err := loadAssignmentTx(ctx, tx, userID, existingID)
			if err != nil {
				return err
			}
			assignment = &rec.Assignment
			return nil
		}

		if mission.ID == "" {
			mission.ID = uuid.New().String()
		}
		mission.SystemGenerated = true
		mission.CreatedAt = now
		if err := insertMissionTx(ctx, tx, mission); err != nil {
			return err
		}

		assignment = &types.Assignment{
			ID:        uuid.New().String(),
			UserID:    userID,
			MissionID: mission.ID,
			Date:      mission.Date,
			Status:    types.AssignmentPending,
			CreatedAt: now,
		}
		if err := insertAssignmentTx(ctx, tx, assignment); err != nil {
			return err
		}

		event := events.NewRecoveryCreated(userID, mission.Date, assignment.ID,
			fmt.Sprintf("recovery mission %q created", mission.Title))
		return insertAuditTx(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return assignment, nil
}
