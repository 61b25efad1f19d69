// Package planning validates candidate plan and swap documents against the
// structural policy and the time-budget policy. Validation never fails with
// an error: it reports an ordered list of human-readable violations, one per
// rule instance, so callers can surface precise feedback.
package planning

import (
	"fmt"
	"strings"

	"github.com/sunstone-app/sunstone/internal/types"
)

const (
	// MinPlanMissions and MaxPlanMissions bound the size of a full-day plan.
	MinPlanMissions = 5
	MaxPlanMissions = 7

	// MinMissionMinutes and MaxMissionMinutes bound a single mission.
	MinMissionMinutes = 5
	MaxMissionMinutes = 60

	// MinReward and MaxReward bound a single mission's reward units.
	MinReward = 5
	MaxReward = 60

	// WindDownMaxMinutes caps mission duration once wind-down is active.
	WindDownMaxMinutes = 15

	// MaxSwaps is the absolute ceiling on swaps regardless of time policy.
	MaxSwaps = 3
)

// DefaultDenylist holds tokens that must not appear in mission titles,
// matched case-insensitively as substrings.
var DefaultDenylist = []string{
	"hurt myself",
	"kill myself",
	"suicide",
	"self-harm",
}

// Rules carries the tunable validation thresholds. The zero value is not
// usable; construct with DefaultRules and override as needed.
type Rules struct {
	MinMissions int
	MaxMissions int
	MinMinutes  int
	MaxMinutes  int
	MinReward   int
	MaxReward   int
	Denylist    []string
}

// DefaultRules returns the policy thresholds from the spec defaults.
func DefaultRules() Rules {
	return Rules{
		MinMissions: MinPlanMissions,
		MaxMissions: MaxPlanMissions,
		MinMinutes:  MinMissionMinutes,
		MaxMinutes:  MaxMissionMinutes,
		MinReward:   MinReward,
		MaxReward:   MaxReward,
		Denylist:    DefaultDenylist,
	}
}

// ValidatePlan checks a candidate full-day plan against the structural rules
// and, when wind-down is active, the wind-down subset rules. All rules run
// even after earlier ones fail so the error list is complete.
func (r Rules) ValidatePlan(doc *types.PlanDocument, minutesCap int, tc *types.TimeContext) (bool, []string) {
	var errs []string

	if doc == nil || len(doc.Missions) == 0 {
		return false, []string{"plan contains no missions"}
	}

	if n := len(doc.Missions); n < r.MinMissions || n > r.MaxMissions {
		errs = append(errs, fmt.Sprintf("plan has %d missions, expected between %d and %d", n, r.MinMissions, r.MaxMissions))
	}

	seenTitles := make(map[string]bool)
	hasMicroOption := false

	for i, m := range doc.Missions {
		label := fmt.Sprintf("mission %d", i+1)
		errs = append(errs, r.checkDraft(label, m, tc)...)

		if seenTitles[m.Title] {
			errs = append(errs, fmt.Sprintf("%s: duplicate title %q", label, m.Title))
		}
		seenTitles[m.Title] = true

		if m.DurationMinutes > 0 && m.DurationMinutes <= types.MicroMaxMinutes {
			hasMicroOption = true
		}
		if m.Micro != nil && m.Micro.DurationMinutes > 0 && m.Micro.DurationMinutes <= types.MicroMaxMinutes {
			hasMicroOption = true
		}
	}

	if total := doc.TotalMinutes(); total > minutesCap {
		errs = append(errs, fmt.Sprintf("total duration %d minutes exceeds cap of %d", total, minutesCap))
	}

	if !hasMicroOption {
		errs = append(errs, fmt.Sprintf("plan offers no micro option (at least one mission or companion must be <=%d minutes)", types.MicroMaxMinutes))
	}

	return len(errs) == 0, errs
}

// ValidateSwapPlan checks a candidate swap document. The swap ceiling is
// re-derived from the time context; any ceiling implied by the document
// itself is ignored.
func (r Rules) ValidateSwapPlan(doc *types.SwapDocument, pending []types.PendingMission, tc *types.TimeContext) (bool, []string) {
	var errs []string

	if doc == nil {
		return false, []string{"no swap document"}
	}

	ceiling := tc.SwapCeiling()
	if doc.SwapCount < 0 || doc.SwapCount > MaxSwaps {
		errs = append(errs, fmt.Sprintf("swap_count %d outside [0,%d]", doc.SwapCount, MaxSwaps))
	}
	if doc.SwapCount > ceiling {
		errs = append(errs, fmt.Sprintf("swap_count %d exceeds the time-policy ceiling of %d", doc.SwapCount, ceiling))
	}

	if doc.SwapCount == 0 {
		if len(doc.Replacements) != 0 {
			errs = append(errs, "zero-swap document must carry no replacements")
		}
		if strings.TrimSpace(doc.NoSwapReason) == "" {
			errs = append(errs, "zero-swap document must state a reason")
		}
		return len(errs) == 0, errs
	}

	if len(doc.Replacements) != doc.SwapCount {
		errs = append(errs, fmt.Sprintf("swap_count %d does not match %d replacements", doc.SwapCount, len(doc.Replacements)))
	}

	pendingTitles := make(map[string]bool, len(pending))
	for _, p := range pending {
		pendingTitles[p.Title] = true
	}

	seenTargets := make(map[string]bool)
	totalMinutes := 0

	for i, repl := range doc.Replacements {
		label := fmt.Sprintf("replacement %d", i+1)

		if !pendingTitles[repl.ReplaceTitle] {
			errs = append(errs, fmt.Sprintf("%s: target %q is not a pending mission", label, repl.ReplaceTitle))
		}
		if seenTargets[repl.ReplaceTitle] {
			errs = append(errs, fmt.Sprintf("%s: target %q referenced more than once", label, repl.ReplaceTitle))
		}
		seenTargets[repl.ReplaceTitle] = true

		errs = append(errs, r.checkDraft(label, repl.NewMission, tc)...)

		// Unlike full plans, every replacement must carry a micro companion.
		if repl.NewMission.Micro == nil {
			errs = append(errs, fmt.Sprintf("%s: micro companion is required on swap replacements", label))
		}

		totalMinutes += repl.NewMission.DurationMinutes
	}

	if horizon := tc.BindingHorizonMinutes(); totalMinutes > horizon {
		errs = append(errs, fmt.Sprintf("total replacement duration %d minutes exceeds the %d minutes remaining", totalMinutes, horizon))
	}

	return len(errs) == 0, errs
}

// CheckDraft runs the per-mission structural rules for a single draft
// outside a full document, labeling violations with label.
func (r Rules) CheckDraft(label string, m types.MissionDraft, tc *types.TimeContext) []string {
	return r.checkDraft(label, m, tc)
}

// checkDraft runs the per-mission structural rules, plus the wind-down
// subset rules when the cutoff window has closed.
func (r Rules) checkDraft(label string, m types.MissionDraft, tc *types.TimeContext) []string {
	var errs []string

	if strings.TrimSpace(m.Title) == "" {
		errs = append(errs, fmt.Sprintf("%s: title is empty", label))
	}
	if !m.Category.IsPlannable() {
		errs = append(errs, fmt.Sprintf("%s: unknown category %q", label, m.Category))
	}
	if !m.Difficulty.IsValid() {
		errs = append(errs, fmt.Sprintf("%s: unknown difficulty %q", label, m.Difficulty))
	}
	// Missions short enough to count as the plan's micro option are exempt
	// from the normal duration floor; duration still has to be positive.
	minMinutes := r.MinMinutes
	if m.DurationMinutes <= types.MicroMaxMinutes {
		minMinutes = 1
	}
	if m.DurationMinutes < minMinutes || m.DurationMinutes > r.MaxMinutes {
		errs = append(errs, fmt.Sprintf("%s: duration %d minutes outside [%d,%d]", label, m.DurationMinutes, minMinutes, r.MaxMinutes))
	}
	if m.Reward < r.MinReward || m.Reward > r.MaxReward {
		errs = append(errs, fmt.Sprintf("%s: reward %d outside [%d,%d]", label, m.Reward, r.MinReward, r.MaxReward))
	}

	if token := r.unsafeToken(m.Title); token != "" {
		errs = append(errs, fmt.Sprintf("%s: title contains blocked token %q", label, token))
	}

	if m.Micro != nil {
		if strings.TrimSpace(m.Micro.Title) == "" {
			errs = append(errs, fmt.Sprintf("%s: micro companion title is empty", label))
		}
		if m.Micro.DurationMinutes <= 0 || m.Micro.DurationMinutes > types.MicroMaxMinutes {
			errs = append(errs, fmt.Sprintf("%s: micro companion duration %d outside (0,%d]", label, m.Micro.DurationMinutes, types.MicroMaxMinutes))
		}
		if token := r.unsafeToken(m.Micro.Title); token != "" {
			errs = append(errs, fmt.Sprintf("%s: micro companion title contains blocked token %q", label, token))
		}
	}

	if tc != nil && tc.WindDownActive() {
		if !m.Category.IsWindDownSafe() {
			errs = append(errs, fmt.Sprintf("%s: category %q not allowed during wind-down (allowed: reflection, sleep)", label, m.Category))
		}
		if m.Difficulty != types.DifficultyEasy {
			errs = append(errs, fmt.Sprintf("%s: difficulty must be easy during wind-down, got %q", label, m.Difficulty))
		}
		if m.DurationMinutes > WindDownMaxMinutes {
			errs = append(errs, fmt.Sprintf("%s: duration %d exceeds wind-down limit of %d minutes", label, m.DurationMinutes, WindDownMaxMinutes))
		}
	}

	return errs
}

// unsafeToken returns the first denylist token found in the title, or "".
func (r Rules) unsafeToken(title string) string {
	lower := strings.ToLower(title)
	for _, token := range r.Denylist {
		if strings.Contains(lower, strings.ToLower(token)) {
			return token
		}
	}
	return ""
}

// ValidatePlan runs the default rules. See Rules.ValidatePlan.
func ValidatePlan(doc *types.PlanDocument, minutesCap int, tc *types.TimeContext) (bool, []string) {
	return DefaultRules().ValidatePlan(doc, minutesCap, tc)
}

// ValidateSwapPlan runs the default rules. See Rules.ValidateSwapPlan.
func ValidateSwapPlan(doc *types.SwapDocument, pending []types.PendingMission, tc *types.TimeContext) (bool, []string) {
	return DefaultRules().ValidateSwapPlan(doc, pending, tc)
}
