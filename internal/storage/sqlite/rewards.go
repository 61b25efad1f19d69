package sqlite

import (
	"context"
	"fmt"

	"github.com/sunstone-app/sunstone/internal/types"
)

// RewardSummary totals the reward ledger per category for a user.
func (s *Store) RewardSummary(ctx context.Context, userID string) (map[types.Category]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, SUM(amount) FROM rewards
		WHERE user_id = ?
		GROUP BY category`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize rewards: %w", err)
	}
	defer rows.Close()

	summary := make(map[types.Category]int)
	for rows.Next() {
		var category string
		var total int
		if err := rows.Scan(&category, &total); err != nil {
			return nil, fmt.Errorf("failed to scan reward summary: %w", err)
		}
		summary[types.Category(category)] = total
	}
	return summary, rows.Err()
}
