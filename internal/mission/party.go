package mission

import (
	"context"
	"fmt"
	"strings"

	"github.com/sunstone-app/sunstone/internal/planning"
	"github.com/sunstone-app/sunstone/internal/storage/sqlite"
	"github.com/sunstone-app/sunstone/internal/types"
)

// DefaultPartyRoster is created on first use for profiles without one.
var DefaultPartyRoster = []types.PartyMember{
	{Name: "Kai", Role: "Scout", Emoji: "🧭"},
	{Name: "Mira", Role: "Healer", Emoji: "🪷"},
	{Name: "Arun", Role: "Mentor", Emoji: "🧠"},
}

// MaxPartySuggestions bounds a party proposal.
const MaxPartySuggestions = 2

// PartyRoster returns the user's party roster, seeding the default one on
// profiles that have none.
func (e *Engine) PartyRoster(ctx context.Context, userID string) ([]types.PartyMember, error) {
	profile, err := e.store.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(profile.Settings.PartyRoster) > 0 {
		return profile.Settings.PartyRoster, nil
	}

	profile.Settings.PartyRoster = append([]types.PartyMember(nil), DefaultPartyRoster...)
	if err := e.store.UpdateProfile(ctx, profile); err != nil {
		return nil, err
	}
	return profile.Settings.PartyRoster, nil
}

// ProposeParty deterministically drafts up to MaxPartySuggestions roster
// missions from role heuristics and the caller's signals. No collaborator
// call is involved; party suggestions stay cheap and predictable. Wind-down
// rules are honored at draft time.
func (e *Engine) ProposeParty(ctx context.Context, userID, date string, signals map[string]any) (*types.PartyDocument, error) {
	profile, err := e.store.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	tc := e.policy.ComputeForProfile(profile)

	roster, err := e.PartyRoster(ctx, userID)
	if err != nil {
		return nil, err
	}

	mood := signalString(signals, "mood", "neutral")
	energy := signalInt(signals, "energy", 3)
	focus := signalInt(signals, "focus", 3)
	stress := signalInt(signals, "stress", 2)

	doc := &types.PartyDocument{Date: date}
	for _, member := range roster {
		if len(doc.Suggestions) >= MaxPartySuggestions {
			break
		}

		var sug types.PartySuggestion
		role := strings.ToLower(member.Role)

		switch {
		case tc.WindDownActive() && (role == "healer" || role == "mentor"):
			sug = partySuggestion(member, "Evening reflection micro", types.CategoryReflection,
				types.DifficultyEasy, 5, 10,
				"Gentle reflection to wind down.", "Calm reflection fits wind-down.")
		case tc.WindDownActive():
			sug = partySuggestion(member, "Prepare sleep corner", types.CategorySleep,
				types.DifficultyEasy, 10, 12,
				"Set a soothing sleep routine.", "Sleep setup helps end the day smoothly.")
		case role == "mentor" || focus <= 3:
			sug = partySuggestion(member, "Focused study sprint", types.CategoryStudy,
				types.DifficultyMedium, 25, 25,
				"A short sprint aligned to your intent.", "Mentor supports focused time.")
		case role == "scout" || energy >= 4:
			sug = partySuggestion(member, "Air & steps micro", types.CategoryFitness,
				types.DifficultyEasy, 10, 12,
				"Move a little to refresh energy.", "Scout favors a quick refresh outside.")
		case role == "healer" || stress >= 3 || mood == "sad" || mood == "low":
			sug = partySuggestion(member, "Hydration + breathe", types.CategoryNutrition,
				types.DifficultyEasy, 8, 10,
				"Water and a breath to ease stress.", "Healer suggests small care actions.")
		default:
			sug = partySuggestion(member, "Desk tidy micro", types.CategoryChores,
				types.DifficultyEasy, 10, 10,
				"Tiny tidy boosts focus.", "A small tidy helps focus.")
		}
		doc.Suggestions = append(doc.Suggestions, sug)
	}

	doc.Count = len(doc.Suggestions)
	if doc.Count == 0 {
		doc.Notes = "No party suggestions at this time."
	}
	return doc, nil
}

// ApplyParty validates a party document's drafts against the structural
// rules and materializes them as an assigned party run. Party missions are
// additive; they never supersede the full-day plan.
func (e *Engine) ApplyParty(ctx context.Context, userID, date, source string, doc *types.PartyDocument) (*sqlite.PartyOutcome, []string, error) {
	if doc == nil || len(doc.Suggestions) == 0 {
		return nil, []string{"party document contains no suggestions"}, nil
	}

	profile, err := e.store.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	tc := e.policy.ComputeForProfile(profile)

	var errs []string
	for i, sug := range doc.Suggestions {
		label := fmt.Sprintf("party suggestion %d", i+1)
		errs = append(errs, e.rules.CheckDraft(label, sug.Mission, tc)...)
	}
	if len(errs) > 0 {
		return nil, errs, nil
	}

	if source == "" {
		source = "engine"
	}
	outcome, err := e.store.ApplyParty(ctx, userID, date, source, doc)
	if err != nil {
		return nil, nil, err
	}
	return outcome, nil, nil
}

func partySuggestion(member types.PartyMember, title string, category types.Category, difficulty types.Difficulty, minutes, reward int, why, reason string) types.PartySuggestion {
	if minutes < planning.MinMissionMinutes {
		minutes = planning.MinMissionMinutes
	}
	return types.PartySuggestion{
		Member: member,
		Mission: types.MissionDraft{
			Title:           title,
			Category:        category,
			Difficulty:      difficulty,
			DurationMinutes: minutes,
			Reward:          reward,
			Why:             why,
		},
		Reason: reason,
	}
}

func signalString(signals map[string]any, key, fallback string) string {
	if v, ok := signals[key].(string); ok && v != "" {
		return strings.ToLower(v)
	}
	return fallback
}

func signalInt(signals map[string]any, key string, fallback int) int {
	switch v := signals[key].(type) {
	case int:
		if v >= 0 {
			return v
		}
	case float64:
		if v >= 0 {
			return int(v)
		}
	}
	return fallback
}
