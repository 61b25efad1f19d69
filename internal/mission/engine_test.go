package mission

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunstone-app/sunstone/internal/storage"
	"github.com/sunstone-app/sunstone/internal/timectx"
	"github.com/sunstone-app/sunstone/internal/types"
)

const (
	testUser = "test-user"
	testDate = "2026-03-10"
)

// fakeProposer returns canned proposals and records what it was asked.
type fakeProposer struct {
	plan  types.PlanProposal
	swaps types.SwapProposal

	planCalls int
	swapCalls int

	lastPlanCtx *types.PlannerContext
	lastSwapCtx *types.SwapContext
}

func (f *fakeProposer) ProposePlan(ctx context.Context, pc *types.PlannerContext) types.PlanProposal {
	f.planCalls++
	f.lastPlanCtx = pc
	return f.plan
}

func (f *fakeProposer) ProposeSwaps(ctx context.Context, sc *types.SwapContext) types.SwapProposal {
	f.swapCalls++
	f.lastSwapCtx = sc
	return f.swaps
}

func newTestStore(t *testing.T) storage.Storage {
	t.Helper()
	store, err := storage.NewStorage(context.Background(), &storage.Config{
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

// newTestEngine builds an engine over store with the clock pinned to the
// given local time on the test date.
func newTestEngine(t *testing.T, store storage.Storage, proposer types.Proposer, hour, minute int) *Engine {
	t.Helper()
	engine, err := New(&Config{
		Store:    store,
		Proposer: proposer,
		Policy: &timectx.Policy{Now: func() time.Time {
			return time.Date(2026, 3, 10, hour, minute, 0, 0, time.UTC)
		}},
	})
	require.NoError(t, err)
	return engine
}

func draft(title string, category types.Category, minutes, reward int) types.MissionDraft {
	return types.MissionDraft{
		Title:           title,
		Category:        category,
		Difficulty:      types.DifficultyEasy,
		DurationMinutes: minutes,
		Reward:          reward,
	}
}

// validPlanDoc is a five-mission plan totaling 45 minutes. The parent of the
// micro companion is a study mission so wind-down gate tests can target it.
func validPlanDoc() *types.PlanDocument {
	reading := draft("Read one chapter", types.CategoryStudy, 15, 15)
	reading.Micro = &types.MicroDraft{Title: "Open the book", DurationMinutes: 2, Reward: 5}
	return &types.PlanDocument{Missions: []types.MissionDraft{
		reading,
		draft("Short walk", types.CategoryFitness, 10, 10),
		draft("Prep lunch", types.CategoryNutrition, 10, 10),
		draft("Tidy desk", types.CategoryChores, 5, 5),
		draft("Call a friend", types.CategorySocial, 5, 5),
	}}
}

// assignPlan drives generate + assign through the engine and returns the
// day's assignment records.
func assignPlan(t *testing.T, engine *Engine, doc *types.PlanDocument) map[string]string {
	t.Helper()
	ctx := context.Background()

	engine.proposer = &fakeProposer{plan: types.PlanProposal{Doc: doc}}
	plan, assign, err := engine.PlanAndAssign(ctx, PlanRequest{UserID: testUser, Date: testDate})
	require.NoError(t, err)
	require.True(t, plan.Valid(), "plan rejected: %v / %s", plan.Errors, plan.Reason)
	require.NotNil(t, assign)

	records, err := engine.Assignments(ctx, testUser, testDate)
	require.NoError(t, err)
	ids := make(map[string]string, len(records))
	for _, rec := range records {
		ids[rec.Mission.Title] = rec.Assignment.ID
	}
	return ids
}

func TestGeneratePlan_ValidCandidate(t *testing.T) {
	store := newTestStore(t)
	proposer := &fakeProposer{plan: types.PlanProposal{Doc: validPlanDoc()}}
	engine := newTestEngine(t, store, proposer, 15, 0)

	result, err := engine.GeneratePlan(context.Background(), PlanRequest{
		UserID: testUser, Date: testDate, Intent: "steady day",
	})
	require.NoError(t, err)
	require.True(t, result.Valid())

	assert.Equal(t, types.PlanRunPreviewed, result.Run.Status)
	assert.Equal(t, 1, result.Run.Version)
	assert.Equal(t, DefaultMinutesCap, result.Run.Meta.MinutesCap)
	require.NotNil(t, result.Run.Meta.TimeContext)

	// The collaborator saw the engine's time context and intent.
	require.NotNil(t, proposer.lastPlanCtx)
	assert.Equal(t, "steady day", proposer.lastPlanCtx.Intent)
	assert.Equal(t, DefaultMinutesCap, proposer.lastPlanCtx.MinutesCap)

	// Previewed runs create no assignments yet.
	records, err := engine.Assignments(context.Background(), testUser, testDate)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestGeneratePlan_InvalidCandidate(t *testing.T) {
	store := newTestStore(t)
	tooSmall := &types.PlanDocument{Missions: validPlanDoc().Missions[:2]}
	engine := newTestEngine(t, store, &fakeProposer{plan: types.PlanProposal{Doc: tooSmall}}, 15, 0)

	result, err := engine.GeneratePlan(context.Background(), PlanRequest{UserID: testUser, Date: testDate})
	require.NoError(t, err)
	assert.False(t, result.Valid())
	assert.NotEmpty(t, result.Errors)

	// Rejected candidates are never persisted.
	runs, err := store.ListPlanRuns(context.Background(), testUser, testDate)
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestGeneratePlan_CollaboratorUnavailable(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, &fakeProposer{plan: types.Unavailable("collaborator down")}, 15, 0)

	result, err := engine.GeneratePlan(context.Background(), PlanRequest{UserID: testUser, Date: testDate})
	require.NoError(t, err)
	assert.False(t, result.Valid())
	assert.Equal(t, "collaborator down", result.Reason)
}

func TestGeneratePlan_NilProposer(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)

	result, err := engine.GeneratePlan(context.Background(), PlanRequest{UserID: testUser, Date: testDate})
	require.NoError(t, err)
	assert.False(t, result.Valid())
	assert.NotEmpty(t, result.Reason)
}

func TestPlanAndAssign(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, &fakeProposer{plan: types.PlanProposal{Doc: validPlanDoc()}}, 15, 0)

	plan, assign, err := engine.PlanAndAssign(context.Background(), PlanRequest{UserID: testUser, Date: testDate})
	require.NoError(t, err)
	require.True(t, plan.Valid())
	require.NotNil(t, assign)
	assert.Equal(t, 5, assign.CreatedMissions)
	assert.Equal(t, 1, assign.CreatedMicros)
	assert.Equal(t, types.PlanRunAssigned, assign.Run.Status)
}

func TestAssignPlan_WrongOwner(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, &fakeProposer{plan: types.PlanProposal{Doc: validPlanDoc()}}, 15, 0)

	result, err := engine.GeneratePlan(context.Background(), PlanRequest{UserID: testUser, Date: testDate})
	require.NoError(t, err)
	require.True(t, result.Valid())

	_, err = engine.AssignPlan(context.Background(), "someone-else", result.Run.ID)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func swapReplacement(target, title string) types.SwapReplacement {
	return types.SwapReplacement{
		ReplaceTitle: target,
		NewMission: types.MissionDraft{
			Title:           title,
			Category:        types.CategoryReflection,
			Difficulty:      types.DifficultyEasy,
			DurationMinutes: 5,
			Reward:          5,
			Micro:           &types.MicroDraft{Title: "Tiny start", DurationMinutes: 2},
		},
	}
}

func TestProposeSwaps_ZeroPendingShortCircuits(t *testing.T) {
	store := newTestStore(t)
	proposer := &fakeProposer{}
	engine := newTestEngine(t, store, proposer, 15, 0)

	result, err := engine.ProposeSwaps(context.Background(), SwapRequest{UserID: testUser, Date: testDate})
	require.NoError(t, err)
	require.True(t, result.Valid())
	assert.Equal(t, 0, result.Doc.SwapCount)
	assert.Equal(t, NoPendingReason, result.Doc.NoSwapReason)

	// Nothing to swap means the collaborator is never consulted.
	assert.Equal(t, 0, proposer.swapCalls)
}

func TestProposeSwaps_ClampsCountToCeiling(t *testing.T) {
	store := newTestStore(t)
	daytime := newTestEngine(t, store, nil, 15, 0)
	assignPlan(t, daytime, validPlanDoc())

	// 29 raw minutes to cutoff leaves 14 effective: the ceiling is 1, but
	// the collaborator claims three swaps anyway.
	proposer := &fakeProposer{swaps: types.SwapProposal{Doc: &types.SwapDocument{
		SwapCount: 3,
		Replacements: []types.SwapReplacement{
			swapReplacement("Short walk", "Gentle stretch"),
			swapReplacement("Tidy desk", "One-drawer tidy"),
			swapReplacement("Prep lunch", "Water refill"),
		},
	}}}
	late := newTestEngine(t, store, proposer, 21, 1)

	result, err := late.ProposeSwaps(context.Background(), SwapRequest{UserID: testUser, Date: testDate})
	require.NoError(t, err)
	require.True(t, result.Valid(), "errors: %v / %s", result.Errors, result.Reason)

	assert.Equal(t, 1, result.Ceiling)
	assert.Equal(t, 1, result.Doc.SwapCount)
	assert.Len(t, result.Doc.Replacements, 1)
	assert.Equal(t, testDate, result.Doc.Date)

	require.NotNil(t, proposer.lastSwapCtx)
	assert.Equal(t, 1, proposer.lastSwapCtx.MaxSwaps)
	assert.Len(t, proposer.lastSwapCtx.Pending, 5)
}

func TestProposeSwaps_InvalidCandidate(t *testing.T) {
	store := newTestStore(t)
	daytime := newTestEngine(t, store, nil, 15, 0)
	assignPlan(t, daytime, validPlanDoc())

	proposer := &fakeProposer{swaps: types.SwapProposal{Doc: &types.SwapDocument{
		SwapCount:    1,
		Replacements: []types.SwapReplacement{swapReplacement("Not a mission", "Gentle stretch")},
	}}}
	engine := newTestEngine(t, store, proposer, 15, 0)

	result, err := engine.ProposeSwaps(context.Background(), SwapRequest{UserID: testUser, Date: testDate})
	require.NoError(t, err)
	assert.False(t, result.Valid())
	assert.NotEmpty(t, result.Errors)
}

func TestApplySwaps(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	assignPlan(t, engine, validPlanDoc())

	doc := &types.SwapDocument{
		Date:         testDate,
		SwapCount:    1,
		Replacements: []types.SwapReplacement{swapReplacement("Short walk", "Gentle stretch")},
	}
	applied, err := engine.ApplySwaps(context.Background(), SwapRequest{UserID: testUser, Date: testDate}, doc)
	require.NoError(t, err)
	require.True(t, applied.Applied(), "errors: %v", applied.Errors)
	assert.Equal(t, []string{"Short walk"}, applied.ReplacedTitles)
	assert.Equal(t, 1, applied.CreatedMicros)

	pending, err := store.ListPendingMissions(context.Background(), testUser, testDate)
	require.NoError(t, err)
	titles := make([]string, 0, len(pending))
	for _, p := range pending {
		titles = append(titles, p.Title)
	}
	assert.Contains(t, titles, "Gentle stretch")
	assert.NotContains(t, titles, "Short walk")
}

func TestApplySwaps_ZeroSwapIsNoOp(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	assignPlan(t, engine, validPlanDoc())

	applied, err := engine.ApplySwaps(context.Background(),
		SwapRequest{UserID: testUser, Date: testDate},
		&types.SwapDocument{Date: testDate, NoSwapReason: "plan still fits"})
	require.NoError(t, err)
	assert.True(t, applied.Applied())
	assert.Nil(t, applied.Run)

	pending, err := store.ListPendingMissions(context.Background(), testUser, testDate)
	require.NoError(t, err)
	assert.Len(t, pending, 5)
}

func TestApplySwaps_RevalidatesUntrustedDocument(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	assignPlan(t, engine, validPlanDoc())

	doc := &types.SwapDocument{
		Date:         testDate,
		SwapCount:    1,
		Replacements: []types.SwapReplacement{swapReplacement("Not a mission", "Gentle stretch")},
	}
	applied, err := engine.ApplySwaps(context.Background(), SwapRequest{UserID: testUser, Date: testDate}, doc)
	require.NoError(t, err)
	assert.False(t, applied.Applied())
	assert.NotEmpty(t, applied.Errors)

	pending, err := store.ListPendingMissions(context.Background(), testUser, testDate)
	require.NoError(t, err)
	assert.Len(t, pending, 5, "nothing mutated on rejection")
}

func TestComplete_MicroBonus(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	ids := assignPlan(t, engine, validPlanDoc())

	// A 5-minute top-level mission qualifies for the micro bonus.
	outcome, err := engine.Complete(context.Background(), testUser, ids["Tidy desk"], "cli")
	require.NoError(t, err)
	assert.Equal(t, 5+MicroBonusReward, outcome.Awarded)

	// A longer mission earns its base reward only.
	outcome, err = engine.Complete(context.Background(), testUser, ids["Short walk"], "cli")
	require.NoError(t, err)
	assert.Equal(t, 10, outcome.Awarded)
}

func TestCompleteMicro_HappyPath(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	ids := assignPlan(t, engine, validPlanDoc())

	result, err := engine.CompleteMicro(context.Background(), testUser, ids["Open the book"])
	require.NoError(t, err)
	assert.True(t, result.OK, "errors: %v", result.Errors)
	assert.Equal(t, 5, result.Awarded)
}

func TestCompleteMicro_WindDownGate(t *testing.T) {
	store := newTestStore(t)
	daytime := newTestEngine(t, store, nil, 15, 0)
	ids := assignPlan(t, daytime, validPlanDoc())

	// 21:30 is past the effective cutoff: wind-down is active, and the
	// micro's parent is a study mission.
	late := newTestEngine(t, store, nil, 21, 30)
	result, err := late.CompleteMicro(context.Background(), testUser, ids["Open the book"])
	require.NoError(t, err)
	assert.False(t, result.OK)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "wind-down")

	// The refusal leaves the assignment untouched; it completes fine once
	// the clock allows it again.
	result, err = daytime.CompleteMicro(context.Background(), testUser, ids["Open the book"])
	require.NoError(t, err)
	assert.True(t, result.OK, "errors: %v", result.Errors)
}

func TestCompleteMicro_RefusesNonMicro(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	ids := assignPlan(t, engine, validPlanDoc())

	result, err := engine.CompleteMicro(context.Background(), testUser, ids["Short walk"])
	require.NoError(t, err)
	assert.False(t, result.OK)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "not a micro mission")
}

func TestCheckStreak_InjectsRecovery(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)

	check, err := engine.CheckStreak(context.Background(), testUser, testDate)
	require.NoError(t, err)
	assert.Equal(t, 0, check.CompletedToday)
	require.NotNil(t, check.Recovery)
	assert.Equal(t, types.AssignmentPending, check.Recovery.Status)

	rec, err := store.GetAssignment(context.Background(), testUser, check.Recovery.ID)
	require.NoError(t, err)
	assert.Equal(t, RecoveryTitle, rec.Mission.Title)
	assert.Equal(t, types.CategoryRecovery, rec.Mission.Category)
	assert.Equal(t, RecoveryReward, rec.Mission.Reward)
	assert.Equal(t, RecoveryDurationMinutes, rec.Mission.DurationMinutes)

	// Re-running the check returns the same pending recovery.
	again, err := engine.CheckStreak(context.Background(), testUser, testDate)
	require.NoError(t, err)
	require.NotNil(t, again.Recovery)
	assert.Equal(t, check.Recovery.ID, again.Recovery.ID)

	// Completing it consumes a shield and restores the streak.
	outcome, err := engine.CompleteRecovery(context.Background(), testUser, check.Recovery.ID)
	require.NoError(t, err)
	assert.Equal(t, RecoveryReward, outcome.Awarded)
	assert.Equal(t, 1, outcome.StreakCount)
}

func TestCheckStreak_SkipsWhenWorkDone(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	ids := assignPlan(t, engine, validPlanDoc())

	_, err := engine.Complete(context.Background(), testUser, ids["Tidy desk"], "cli")
	require.NoError(t, err)

	check, err := engine.CheckStreak(context.Background(), testUser, testDate)
	require.NoError(t, err)
	assert.Equal(t, 1, check.CompletedToday)
	assert.Nil(t, check.Recovery)
}

func TestCheckStreak_NoShieldsLeft(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	ctx := context.Background()

	// Burn down the shields after the weekly reset has already run, so the
	// check below does not restore them.
	_, err := engine.ResetShieldsIfNewWeek(ctx, testUser)
	require.NoError(t, err)
	profile, err := store.EnsureProfile(ctx, testUser)
	require.NoError(t, err)
	profile.ShieldsRemaining = 0
	require.NoError(t, store.UpdateProfile(ctx, profile))

	check, err := engine.CheckStreak(ctx, testUser, testDate)
	require.NoError(t, err)
	assert.Equal(t, 0, check.ShieldsRemaining)
	assert.Nil(t, check.Recovery)
}

func TestResetShieldsIfNewWeek(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	ctx := context.Background()

	// First check ever: no reset stamp, so the allowance is granted.
	reset, err := engine.ResetShieldsIfNewWeek(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, reset)

	// Same ISO week: no-op.
	reset, err = engine.ResetShieldsIfNewWeek(ctx, testUser)
	require.NoError(t, err)
	assert.False(t, reset)

	// Stamp the reset into the previous ISO week and burn a shield; the
	// next check restores the weekly allowance.
	profile, err := store.EnsureProfile(ctx, testUser)
	require.NoError(t, err)
	lastWeek := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	profile.LastShieldReset = &lastWeek
	profile.ShieldsRemaining = 0
	require.NoError(t, store.UpdateProfile(ctx, profile))

	reset, err = engine.ResetShieldsIfNewWeek(ctx, testUser)
	require.NoError(t, err)
	assert.True(t, reset)

	profile, err = store.EnsureProfile(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, ShieldsPerWeek, profile.ShieldsRemaining)
}

func TestPartyRoster_SeedsDefault(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)

	roster, err := engine.PartyRoster(context.Background(), testUser)
	require.NoError(t, err)
	require.Len(t, roster, 3)
	assert.Equal(t, "Kai", roster[0].Name)
	assert.Equal(t, "Scout", roster[0].Role)

	// The seeded roster persists on the profile.
	profile, err := store.EnsureProfile(context.Background(), testUser)
	require.NoError(t, err)
	assert.Len(t, profile.Settings.PartyRoster, 3)
}

func TestProposeParty_Daytime(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)

	doc, err := engine.ProposeParty(context.Background(), testUser, testDate, map[string]any{"energy": 5})
	require.NoError(t, err)
	assert.Equal(t, MaxPartySuggestions, doc.Count)
	for _, sug := range doc.Suggestions {
		assert.NotEmpty(t, sug.Member.Name)
		assert.NotEmpty(t, sug.Mission.Title)
	}
}

func TestProposeParty_WindDownStaysCalm(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 22, 0)

	doc, err := engine.ProposeParty(context.Background(), testUser, testDate, nil)
	require.NoError(t, err)
	require.NotZero(t, doc.Count)
	for _, sug := range doc.Suggestions {
		assert.True(t, sug.Mission.Category.IsWindDownSafe(),
			"%s is not wind-down safe", sug.Mission.Category)
	}
}

func TestApplyParty(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	ctx := context.Background()

	doc, err := engine.ProposeParty(ctx, testUser, testDate, nil)
	require.NoError(t, err)
	require.NotZero(t, doc.Count)

	outcome, errs, err := engine.ApplyParty(ctx, testUser, testDate, "test", doc)
	require.NoError(t, err)
	require.Empty(t, errs)
	assert.Equal(t, doc.Count, outcome.CreatedMissions)
	assert.Equal(t, types.KindParty, outcome.Run.Kind)

	records, err := engine.Assignments(ctx, testUser, testDate)
	require.NoError(t, err)
	assert.Len(t, records, doc.Count)

	// Each created mission keeps its roster member in the metadata.
	memberByTitle := make(map[string]types.PartyMember)
	for _, sug := range doc.Suggestions {
		memberByTitle[sug.Mission.Title] = sug.Member
	}
	for _, rec := range records {
		require.NotNil(t, rec.Mission.Meta.PartyMember, "mission %q lost its party member", rec.Mission.Title)
		assert.Equal(t, memberByTitle[rec.Mission.Title].Name, rec.Mission.Meta.PartyMember.Name)
		assert.Equal(t, memberByTitle[rec.Mission.Title].Role, rec.Mission.Meta.PartyMember.Role)
	}
}

func TestApplyParty_RejectsEmptyAndInvalid(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	ctx := context.Background()

	_, errs, err := engine.ApplyParty(ctx, testUser, testDate, "test", &types.PartyDocument{})
	require.NoError(t, err)
	assert.NotEmpty(t, errs)

	bad := &types.PartyDocument{
		Date:  testDate,
		Count: 1,
		Suggestions: []types.PartySuggestion{{
			Member:  types.PartyMember{Name: "Kai", Role: "Scout"},
			Mission: types.MissionDraft{Title: "Sprint", Category: "gardening", Difficulty: types.DifficultyEasy, DurationMinutes: 10, Reward: 10},
		}},
	}
	_, errs, err = engine.ApplyParty(ctx, testUser, testDate, "test", bad)
	require.NoError(t, err)
	assert.NotEmpty(t, errs)
}

func TestSuggestMoodActions(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 15, 0)
	ctx := context.Background()

	out, err := engine.SuggestMoodActions(ctx, testUser, nil)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.LessOrEqual(t, len(out), MaxMoodSuggestions)
	for _, s := range out {
		assert.LessOrEqual(t, s.Minutes, types.MicroMaxMinutes)
	}

	// High stress narrows to the calming categories.
	out, err = engine.SuggestMoodActions(ctx, testUser, map[string]any{"stress": 5})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	for _, s := range out {
		assert.Contains(t, []types.Category{types.CategoryReflection, types.CategorySleep}, s.Category)
	}
}

func TestSuggestMoodActions_WindDown(t *testing.T) {
	store := newTestStore(t)
	engine := newTestEngine(t, store, nil, 22, 0)

	out, err := engine.SuggestMoodActions(context.Background(), testUser, nil)
	require.NoError(t, err)
	require.NotEmpty(t, out)
	for _, s := range out {
		assert.True(t, s.Category.IsWindDownSafe(), "%s offered during wind-down", s.Category)
	}
}
