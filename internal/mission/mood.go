package mission

import (
	"context"

	"github.com/sunstone-app/sunstone/internal/types"
)

// MoodSuggestion is one gentle micro action offered from the mood pool.
type MoodSuggestion struct {
	Title    string         `json:"title"`
	Category types.Category `json:"category"`
	Minutes  int            `json:"minutes"`
	Emoji    string         `json:"emoji"`
	Reason   string         `json:"reason"`
}

// MaxMoodSuggestions bounds one suggestion batch.
const MaxMoodSuggestions = 4

// moodPool is the fixed pool of safe micro actions, each 5 minutes or less.
var moodPool = []MoodSuggestion{
	{Title: "Two-minute breathe/reset", Category: types.CategoryReflection, Minutes: 2, Emoji: "🫧", Reason: "Small reset to settle the mind."},
	{Title: "Micro journal line", Category: types.CategoryReflection, Minutes: 3, Emoji: "📝", Reason: "Capture one thought to declutter."},
	{Title: "Prepare sleep spot", Category: types.CategorySleep, Minutes: 5, Emoji: "🛏️", Reason: "Set up a calming wind-down."},
	{Title: "Refill water", Category: types.CategoryNutrition, Minutes: 2, Emoji: "💧", Reason: "Hydration helps focus and energy."},
	{Title: "Quick stretch", Category: types.CategoryFitness, Minutes: 3, Emoji: "🤸", Reason: "Ease tension; better posture."},
	{Title: "Text a friend hello", Category: types.CategorySocial, Minutes: 3, Emoji: "👋", Reason: "Light social check-in; uplifting."},
	{Title: "Desk tidy micro", Category: types.CategoryChores, Minutes: 3, Emoji: "🧹", Reason: "Tiny declutter boosts focus."},
}

// SuggestMoodActions filters the micro pool against the current time
// policy and the caller's mood signals, returning 1 to MaxMoodSuggestions
// gentle actions. Deterministic; never calls the collaborator.
func (e *Engine) SuggestMoodActions(ctx context.Context, userID string, signals map[string]any) ([]MoodSuggestion, error) {
	profile, err := e.store.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	tc := e.policy.ComputeForProfile(profile)

	mood := signalString(signals, "mood", "neutral")
	energy := signalInt(signals, "energy", 3)
	focus := signalInt(signals, "focus", 3)
	stress := signalInt(signals, "stress", 2)

	var out []MoodSuggestion
	for _, s := range moodPool {
		if tc.WindDownActive() && !s.Category.IsWindDownSafe() {
			continue
		}
		// High stress narrows to calming categories.
		if stress >= 4 && s.Category != types.CategoryReflection && s.Category != types.CategorySleep {
			continue
		}
		// Low energy skips longer fitness actions.
		if energy <= 2 && s.Category == types.CategoryFitness && s.Minutes > 3 {
			continue
		}
		// Low focus favors water, reflection, and tidying.
		if focus <= 2 && s.Category != types.CategoryNutrition &&
			s.Category != types.CategoryReflection && s.Category != types.CategoryChores {
			continue
		}
		// Low mood keeps to the gentle categories.
		if (mood == "sad" || mood == "low") && s.Category != types.CategoryReflection &&
			s.Category != types.CategorySleep && s.Category != types.CategoryNutrition {
			continue
		}

		out = append(out, s)
		if len(out) >= MaxMoodSuggestions {
			break
		}
	}

	// Everything filtered out still yields one safe fallback.
	if len(out) == 0 {
		out = append(out, moodPool[0])
	}
	return out, nil
}
