package planning

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunstone-app/sunstone/internal/types"
)

func daytimeContext() *types.TimeContext {
	return &types.TimeContext{
		EffectiveMinutesToCutoff:   120,
		EffectiveMinutesToMidnight: 300,
	}
}

func windDownContext() *types.TimeContext {
	return &types.TimeContext{
		EffectiveMinutesToCutoff:   0,
		EffectiveMinutesToMidnight: 90,
	}
}

func draft(title string, category types.Category, minutes int) types.MissionDraft {
	return types.MissionDraft{
		Title:           title,
		Category:        category,
		Difficulty:      types.DifficultyEasy,
		DurationMinutes: minutes,
		Reward:          10,
	}
}

// sixMissionPlan sums to 55 minutes and includes a 4-minute reflection
// mission as the micro option.
func sixMissionPlan() *types.PlanDocument {
	return &types.PlanDocument{Missions: []types.MissionDraft{
		draft("Read one chapter", types.CategoryStudy, 15),
		draft("Short walk", types.CategoryFitness, 10),
		draft("Prep tomorrow's lunch", types.CategoryNutrition, 10),
		draft("Tidy desk", types.CategoryChores, 5),
		draft("Call a friend", types.CategorySocial, 11),
		draft("Evening reflection", types.CategoryReflection, 4),
	}}
}

func TestValidatePlan_ValidAfternoonPlan(t *testing.T) {
	ok, errs := ValidatePlan(sixMissionPlan(), 60, daytimeContext())
	assert.True(t, ok)
	assert.Empty(t, errs)
}

func TestValidatePlan_EmptyPlan(t *testing.T) {
	ok, errs := ValidatePlan(&types.PlanDocument{}, 60, daytimeContext())
	assert.False(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "plan contains no missions", errs[0])

	ok, errs = ValidatePlan(nil, 60, daytimeContext())
	assert.False(t, ok)
	require.Len(t, errs, 1)
}

func TestValidatePlan_MissionCountBounds(t *testing.T) {
	few := &types.PlanDocument{Missions: sixMissionPlan().Missions[:4]}
	ok, errs := ValidatePlan(few, 60, daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "4 missions")

	many := sixMissionPlan()
	many.Missions = append(many.Missions,
		draft("Extra one", types.CategoryStudy, 5),
		draft("Extra two", types.CategoryChores, 5))
	ok, errs = ValidatePlan(many, 120, daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "8 missions")
}

func TestValidatePlan_TotalExceedsCap(t *testing.T) {
	ok, errs := ValidatePlan(sixMissionPlan(), 50, daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "total duration 55 minutes exceeds cap of 50")
}

func TestValidatePlan_MicroLengthMissionBelowFloor(t *testing.T) {
	// A mission short enough to count as the micro option may sit below the
	// normal 5-minute floor.
	doc := sixMissionPlan()
	require.Equal(t, 4, doc.Missions[5].DurationMinutes)
	ok, errs := ValidatePlan(doc, 60, daytimeContext())
	assert.True(t, ok, "errors: %v", errs)

	// The exemption does not extend to zero duration.
	doc.Missions[5].DurationMinutes = 0
	ok, errs = ValidatePlan(doc, 60, daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "duration 0")
}

func TestValidatePlan_MissingMicroOption(t *testing.T) {
	doc := &types.PlanDocument{Missions: []types.MissionDraft{
		draft("Read one chapter", types.CategoryStudy, 15),
		draft("Short walk", types.CategoryFitness, 10),
		draft("Prep lunch", types.CategoryNutrition, 10),
		draft("Tidy desk", types.CategoryChores, 10),
		draft("Call a friend", types.CategorySocial, 10),
	}}
	ok, errs := ValidatePlan(doc, 60, daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "micro option")

	// A nested micro companion satisfies the requirement.
	doc.Missions[0].Micro = &types.MicroDraft{Title: "Open the book", DurationMinutes: 2}
	ok, errs = ValidatePlan(doc, 60, daytimeContext())
	assert.True(t, ok, "errors: %v", errs)
}

func TestValidatePlan_DuplicateTitles(t *testing.T) {
	doc := sixMissionPlan()
	doc.Missions[1].Title = doc.Missions[0].Title
	ok, errs := ValidatePlan(doc, 60, daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "duplicate title")
}

func TestValidatePlan_Denylist(t *testing.T) {
	doc := sixMissionPlan()
	doc.Missions[2].Title = "Don't hurt myself today"
	ok, errs := ValidatePlan(doc, 60, daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "blocked token")
}

func TestValidatePlan_RangeViolations(t *testing.T) {
	doc := sixMissionPlan()
	doc.Missions[0].DurationMinutes = 90
	doc.Missions[1].Reward = 200
	doc.Missions[2].Difficulty = "brutal"
	doc.Missions[3].Category = "gardening"

	ok, errs := ValidatePlan(doc, 200, daytimeContext())
	assert.False(t, ok)
	joined := strings.Join(errs, "\n")
	assert.Contains(t, joined, "duration 90")
	assert.Contains(t, joined, "reward 200")
	assert.Contains(t, joined, `unknown difficulty "brutal"`)
	assert.Contains(t, joined, `unknown category "gardening"`)
}

func TestValidatePlan_WindDownRejectsFitness(t *testing.T) {
	doc := sixMissionPlan()
	ok, errs := ValidatePlan(doc, 60, windDownContext())
	assert.False(t, ok)

	joined := strings.Join(errs, "\n")
	assert.Contains(t, joined, "fitness")
	assert.Contains(t, joined, "mission 2")
}

func TestValidatePlan_WindDownAcceptsCalmPlan(t *testing.T) {
	doc := &types.PlanDocument{Missions: []types.MissionDraft{
		draft("Evening journal", types.CategoryReflection, 10),
		draft("Gratitude note", types.CategoryReflection, 5),
		draft("Prepare sleep spot", types.CategorySleep, 10),
		draft("Dim the lights", types.CategorySleep, 5),
		draft("Breathing exercise", types.CategoryReflection, 5),
	}}
	ok, errs := ValidatePlan(doc, 60, windDownContext())
	assert.True(t, ok, "errors: %v", errs)
}

func TestValidatePlan_WindDownDurationAndDifficulty(t *testing.T) {
	doc := &types.PlanDocument{Missions: []types.MissionDraft{
		draft("Evening journal", types.CategoryReflection, 20),
		draft("Gratitude note", types.CategoryReflection, 5),
		draft("Prepare sleep spot", types.CategorySleep, 10),
		draft("Dim the lights", types.CategorySleep, 5),
		draft("Breathing exercise", types.CategoryReflection, 5),
	}}
	doc.Missions[1].Difficulty = types.DifficultyHard

	ok, errs := ValidatePlan(doc, 60, windDownContext())
	assert.False(t, ok)
	joined := strings.Join(errs, "\n")
	assert.Contains(t, joined, "wind-down limit")
	assert.Contains(t, joined, "difficulty must be easy")
}

func swapPending() []types.PendingMission {
	return []types.PendingMission{
		{Title: "Read one chapter", Category: types.CategoryStudy, DurationMinutes: 15},
		{Title: "Short walk", Category: types.CategoryFitness, DurationMinutes: 10},
		{Title: "Tidy desk", Category: types.CategoryChores, DurationMinutes: 5},
	}
}

func replacement(target, title string, minutes int) types.SwapReplacement {
	return types.SwapReplacement{
		ReplaceTitle: target,
		NewMission: types.MissionDraft{
			Title:           title,
			Category:        types.CategoryReflection,
			Difficulty:      types.DifficultyEasy,
			DurationMinutes: minutes,
			Reward:          10,
			Micro:           &types.MicroDraft{Title: "Tiny start", DurationMinutes: 2},
		},
	}
}

func TestValidateSwapPlan_Valid(t *testing.T) {
	doc := &types.SwapDocument{
		SwapCount:    1,
		Replacements: []types.SwapReplacement{replacement("Short walk", "Stretch instead", 10)},
	}
	ok, errs := ValidateSwapPlan(doc, swapPending(), daytimeContext())
	assert.True(t, ok, "errors: %v", errs)
}

func TestValidateSwapPlan_ZeroSwap(t *testing.T) {
	ok, errs := ValidateSwapPlan(&types.SwapDocument{NoSwapReason: "plan still fits"}, swapPending(), daytimeContext())
	assert.True(t, ok, "errors: %v", errs)

	// Zero swaps with no reason, or with replacements, is malformed.
	ok, errs = ValidateSwapPlan(&types.SwapDocument{}, swapPending(), daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "must state a reason")

	ok, errs = ValidateSwapPlan(&types.SwapDocument{
		NoSwapReason: "fits",
		Replacements: []types.SwapReplacement{replacement("Short walk", "x", 10)},
	}, swapPending(), daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "no replacements")
}

func TestValidateSwapPlan_CeilingFromTimePolicy(t *testing.T) {
	// 10 effective minutes to cutoff: the ceiling is 1 regardless of the
	// count the document claims.
	tight := &types.TimeContext{EffectiveMinutesToCutoff: 10, EffectiveMinutesToMidnight: 10}

	doc := &types.SwapDocument{
		SwapCount: 2,
		Replacements: []types.SwapReplacement{
			replacement("Short walk", "Stretch instead", 5),
			replacement("Tidy desk", "One-drawer tidy", 5),
		},
	}
	ok, errs := ValidateSwapPlan(doc, swapPending(), tight)
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "ceiling of 1")
}

func TestValidateSwapPlan_CountAboveAbsoluteMax(t *testing.T) {
	doc := &types.SwapDocument{SwapCount: 4}
	ok, errs := ValidateSwapPlan(doc, swapPending(), daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "outside [0,3]")
}

func TestValidateSwapPlan_TargetChecks(t *testing.T) {
	doc := &types.SwapDocument{
		SwapCount: 2,
		Replacements: []types.SwapReplacement{
			replacement("Not a mission", "Stretch instead", 5),
			replacement("Short walk", "Another stretch", 5),
		},
	}
	ok, errs := ValidateSwapPlan(doc, swapPending(), daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), `target "Not a mission" is not a pending mission`)

	dup := &types.SwapDocument{
		SwapCount: 2,
		Replacements: []types.SwapReplacement{
			replacement("Short walk", "Stretch instead", 5),
			replacement("Short walk", "Another stretch", 5),
		},
	}
	ok, errs = ValidateSwapPlan(dup, swapPending(), daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "referenced more than once")
}

func TestValidateSwapPlan_MicroCompanionMandatory(t *testing.T) {
	repl := replacement("Short walk", "Stretch instead", 10)
	repl.NewMission.Micro = nil
	doc := &types.SwapDocument{SwapCount: 1, Replacements: []types.SwapReplacement{repl}}

	ok, errs := ValidateSwapPlan(doc, swapPending(), daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "micro companion is required")
}

func TestValidateSwapPlan_ReplacementBudget(t *testing.T) {
	// 20 effective minutes to cutoff binds the replacement budget.
	tc := &types.TimeContext{EffectiveMinutesToCutoff: 20, EffectiveMinutesToMidnight: 200}

	doc := &types.SwapDocument{
		SwapCount: 2,
		Replacements: []types.SwapReplacement{
			replacement("Short walk", "Stretch instead", 15),
			replacement("Tidy desk", "One-drawer tidy", 10),
		},
	}
	ok, errs := ValidateSwapPlan(doc, swapPending(), tc)
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "25 minutes exceeds the 20 minutes remaining")
}

func TestValidateSwapPlan_CountMismatch(t *testing.T) {
	doc := &types.SwapDocument{
		SwapCount:    2,
		Replacements: []types.SwapReplacement{replacement("Short walk", "Stretch instead", 10)},
	}
	ok, errs := ValidateSwapPlan(doc, swapPending(), daytimeContext())
	assert.False(t, ok)
	assert.Contains(t, strings.Join(errs, "\n"), "does not match")
}
