// Package storage defines the persistence interface for the planning
// engine. All multi-record operations (assign, swap, complete) are exposed
// as single atomic methods: the backend owns the transaction so readers can
// never observe a plan run marked assigned before its records exist.
package storage

import (
	"context"
	"time"

	"github.com/sunstone-app/sunstone/internal/events"
	"github.com/sunstone-app/sunstone/internal/storage/sqlite"
	"github.com/sunstone-app/sunstone/internal/types"
)

// ErrNotFound is returned when a referenced record does not exist or is not
// owned by the requesting user.
var ErrNotFound = sqlite.ErrNotFound

// Storage is the persistence contract for missions, assignments, plan runs,
// profiles, the reward ledger, and the audit log.
type Storage interface {
	// Profiles
	EnsureProfile(ctx context.Context, userID string) (*types.Profile, error)
	UpdateProfile(ctx context.Context, profile *types.Profile) error
	ResetShields(ctx context.Context, userID string, shields int, at time.Time) error

	// Plan runs. CreatePlanRun computes the next version number scoped to
	// (user, date, kind) inside its transaction. Get methods return
	// (nil, nil) when no matching record exists.
	CreatePlanRun(ctx context.Context, run *types.PlanRun) error
	GetPlanRun(ctx context.Context, id string) (*types.PlanRun, error)
	GetAssignedRun(ctx context.Context, userID, date string, kind types.PlanRunKind) (*types.PlanRun, error)
	ListPlanRuns(ctx context.Context, userID, date string) ([]*types.PlanRun, error)

	// AssignPlan materializes a previewed run: supersedes any other
	// assigned full-day run for the same (user, date), archives its
	// still-pending assignments, creates one mission and assignment per
	// candidate entry (plus micro companions), and marks the run assigned.
	// One transaction; the run status is re-read inside it so a racing
	// assign resolves to AlreadyAssigned rather than a double commit.
	AssignPlan(ctx context.Context, planRunID string) (*sqlite.AssignOutcome, error)

	// ApplySwaps creates an assigned swap run, archives each targeted
	// pending assignment with swap provenance stamped into its proof, and
	// creates the replacement missions and their mandatory micro
	// companions. One transaction.
	ApplySwaps(ctx context.Context, userID, date, source string, doc *types.SwapDocument) (*sqlite.SwapOutcome, error)

	// ApplyParty creates an assigned party run and its additive missions.
	ApplyParty(ctx context.Context, userID, date, source string, doc *types.PartyDocument) (*sqlite.PartyOutcome, error)

	// Assignments
	GetAssignment(ctx context.Context, userID, assignmentID string) (*sqlite.AssignmentRecord, error)
	ListAssignments(ctx context.Context, userID, date string) ([]*sqlite.AssignmentRecord, error)
	ListPendingMissions(ctx context.Context, userID, date string) ([]types.PendingMission, error)
	CountCompleted(ctx context.Context, userID, date string) (int, error)

	// CompleteAssignment transitions pending -> completed, stamps the proof
	// breakdown, grants the reward ledger entry at most once, and appends
	// the audit record. Idempotent: an already-completed assignment is
	// returned unchanged. One transaction.
	CompleteAssignment(ctx context.Context, userID, assignmentID string, opts sqlite.CompleteOptions) (*sqlite.CompleteOutcome, error)

	// CompleteMicro is the stricter micro path: enforces the per-parent
	// duplicate limit and clamps the award to the per-day micro headroom
	// inside the same transaction that records the completion.
	CompleteMicro(ctx context.Context, userID, assignmentID string, opts sqlite.MicroOptions) (*sqlite.MicroOutcome, error)

	// CompleteRecovery completes a recovery assignment: restores the
	// streak, consumes a shield (floored at zero), and flags the
	// assignment as shield-consuming. One transaction.
	CompleteRecovery(ctx context.Context, userID, assignmentID string) (*sqlite.RecoveryOutcome, error)

	// CreateRecovery injects a recovery mission and its pending assignment.
	CreateRecovery(ctx context.Context, userID string, mission *types.Mission) (*types.Assignment, error)

	// Reward ledger
	RewardSummary(ctx context.Context, userID string) (map[types.Category]int, error)

	// Audit log
	StoreAuditEvent(ctx context.Context, event *events.AuditEvent) error
	GetAuditEvents(ctx context.Context, userID string, limit int) ([]*events.AuditEvent, error)

	// Lifecycle
	Close() error
}

// Config holds database configuration.
type Config struct {
	// Path is the SQLite database file path.
	Path string
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{Path: ".sunstone/sunstone.db"}
}

// NewStorage creates a new SQLite storage backend.
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = DefaultConfig().Path
	}
	return sqlite.New(cfg.Path)
}
