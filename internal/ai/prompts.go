package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sunstone-app/sunstone/internal/planning"
	"github.com/sunstone-app/sunstone/internal/types"
)

// buildPlanPrompt renders the full-day plan request. The constraints here
// mirror the deterministic validator; the model seeing them up front cuts
// the rejection rate, but nothing downstream trusts it to comply.
func buildPlanPrompt(pc *types.PlannerContext) string {
	var sb strings.Builder

	sb.WriteString("You are a daily mission planner for a habit-tracking game. Design today's mission plan.\n\n")

	fmt.Fprintf(&sb, "Date: %s\n", pc.Date)
	fmt.Fprintf(&sb, "Daily minutes cap: %d\n", pc.MinutesCap)
	fmt.Fprintf(&sb, "Current streak: %d days\n", pc.StreakCount)
	if pc.TimeContext != nil {
		fmt.Fprintf(&sb, "Minutes until day-end cutoff (after safety buffer): %d\n", pc.TimeContext.EffectiveMinutesToCutoff)
		if pc.TimeContext.WindDownActive() {
			sb.WriteString("WIND-DOWN IS ACTIVE: the day-end cutoff has effectively passed.\n")
		}
	}
	if pc.Intent != "" {
		fmt.Fprintf(&sb, "User intent: %s\n", pc.Intent)
	}
	if len(pc.Signals) > 0 {
		if raw, err := json.Marshal(pc.Signals); err == nil {
			fmt.Fprintf(&sb, "Signals: %s\n", raw)
		}
	}

	fmt.Fprintf(&sb, `
Rules:
- Produce %d to %d missions.
- Categories: study, fitness, sleep, nutrition, reflection, social, chores.
- Difficulty: easy, medium, or hard.
- duration_minutes must be between %d and %d; reward between %d and %d.
- Total duration of all missions must not exceed the daily minutes cap.
- At least one mission must offer a micro option: either be at most 5 minutes
  itself, or carry a "micro" companion of at most 5 minutes.
- Mission titles must be unique.
`,
		planning.MinPlanMissions, planning.MaxPlanMissions,
		planning.MinMissionMinutes, planning.MaxMissionMinutes,
		planning.MinReward, planning.MaxReward)

	if pc.TimeContext != nil && pc.TimeContext.WindDownActive() {
		fmt.Fprintf(&sb, `
Wind-down rules (in effect now):
- Only reflection and sleep categories are allowed.
- Every mission must be easy and at most %d minutes.
`, planning.WindDownMaxMinutes)
	}

	sb.WriteString(`
Respond with ONLY raw JSON (no markdown fences, no commentary) in this shape:
{
  "missions": [
    {
      "title": "...",
      "category": "study",
      "difficulty": "easy",
      "duration_minutes": 20,
      "reward": 15,
      "why_this": "one short sentence",
      "micro": {"title": "...", "duration_minutes": 3, "reward": 5}
    }
  ]
}
The "micro" field is optional per mission.`)

	return sb.String()
}

// buildSwapPrompt renders the swap request against the pending snapshot.
func buildSwapPrompt(sc *types.SwapContext) string {
	var sb strings.Builder

	sb.WriteString("You are adjusting today's remaining mission plan for a habit-tracking game.\n\n")

	fmt.Fprintf(&sb, "Date: %s\n", sc.Date)
	if sc.TimeContext != nil {
		fmt.Fprintf(&sb, "Minutes until day-end cutoff (after safety buffer): %d\n", sc.TimeContext.EffectiveMinutesToCutoff)
		fmt.Fprintf(&sb, "Replacement time budget (total): %d minutes\n", sc.TimeContext.BindingHorizonMinutes())
		if sc.TimeContext.WindDownActive() {
			sb.WriteString("WIND-DOWN IS ACTIVE: only easy reflection or sleep missions of at most 15 minutes are allowed as replacements.\n")
		}
	}
	fmt.Fprintf(&sb, "Maximum swaps allowed: %d\n", sc.MaxSwaps)
	if sc.Intent != "" {
		fmt.Fprintf(&sb, "User intent: %s\n", sc.Intent)
	}
	if len(sc.Signals) > 0 {
		if raw, err := json.Marshal(sc.Signals); err == nil {
			fmt.Fprintf(&sb, "Signals: %s\n", raw)
		}
	}

	sb.WriteString("\nPending missions (the only valid swap targets):\n")
	for _, p := range sc.Pending {
		fmt.Fprintf(&sb, "- %q (%s, %d min, reward %d)\n", p.Title, p.Category, p.DurationMinutes, p.Reward)
	}

	fmt.Fprintf(&sb, `
Rules:
- Propose at most %d swaps; zero is a valid answer when the plan still fits.
- Each replacement targets one pending mission by its exact title.
- Replacements follow normal mission rules (categories study/fitness/sleep/
  nutrition/reflection/social/chores, duration %d-%d, reward %d-%d).
- Every replacement MUST include a "micro" companion of at most 5 minutes.
- The total duration of all replacements must fit the replacement time budget.
- If you propose zero swaps, explain why in "no_swap_reason".

Respond with ONLY raw JSON (no markdown fences, no commentary) in this shape:
{
  "swap_count": 1,
  "replacements": [
    {
      "replace_title": "exact pending title",
      "reason": "one short sentence",
      "new_mission": {
        "title": "...",
        "category": "reflection",
        "difficulty": "easy",
        "duration_minutes": 10,
        "reward": 10,
        "why_this": "one short sentence",
        "micro": {"title": "...", "duration_minutes": 2, "reward": 5}
      }
    }
  ],
  "no_swap_reason": ""
}`,
		sc.MaxSwaps,
		planning.MinMissionMinutes, planning.MaxMissionMinutes,
		planning.MinReward, planning.MaxReward)

	return sb.String()
}
