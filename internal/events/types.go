// Package events defines the typed audit records emitted by the planning
// engine. Every state-changing operation appends one event in the same
// transaction as the change it describes.
package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType identifies what happened.
type EventType string

const (
	// EventPlanPreviewed indicates a plan run was persisted for preview.
	EventPlanPreviewed EventType = "plan_previewed"
	// EventPlanAssigned indicates a plan run was assigned and materialized.
	EventPlanAssigned EventType = "plan_assigned"
	// EventPlanSuperseded indicates a previously assigned run was replaced.
	EventPlanSuperseded EventType = "plan_superseded"
	// EventSwapsApplied indicates a swap batch retired and replaced missions.
	EventSwapsApplied EventType = "swaps_applied"
	// EventMissionCompleted indicates an assignment was completed with reward.
	EventMissionCompleted EventType = "mission_completed"
	// EventMicroCompleted indicates a micro assignment was completed.
	EventMicroCompleted EventType = "micro_completed"
	// EventRecoveryCreated indicates a recovery mission was injected.
	EventRecoveryCreated EventType = "recovery_created"
	// EventRecoveryCompleted indicates a recovery mission restored the streak.
	EventRecoveryCompleted EventType = "recovery_completed"
	// EventPartyAssigned indicates a party run created companion missions.
	EventPartyAssigned EventType = "party_assigned"
	// EventShieldsReset indicates the weekly shield counter was replenished.
	EventShieldsReset EventType = "shields_reset"
)

// IsValid reports whether the event type is known.
func (t EventType) IsValid() bool {
	switch t {
	case EventPlanPreviewed, EventPlanAssigned, EventPlanSuperseded,
		EventSwapsApplied, EventMissionCompleted, EventMicroCompleted,
		EventRecoveryCreated, EventRecoveryCompleted, EventPartyAssigned,
		EventShieldsReset:
		return true
	}
	return false
}

// AuditEvent is one immutable audit record.
type AuditEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	UserID    string    `json:"user_id"`

	// Date is the plan date (YYYY-MM-DD) the event concerns, when applicable.
	Date string `json:"date,omitempty"`

	// PlanRunID and AssignmentID reference the records the event concerns.
	PlanRunID    string `json:"plan_run_id,omitempty"`
	AssignmentID string `json:"assignment_id,omitempty"`

	Message string `json:"message,omitempty"`

	// Data holds the type-specific payload, serialized as JSON.
	Data json.RawMessage `json:"data,omitempty"`
}

// SetData serializes a type-specific payload into the event.
func (e *AuditEvent) SetData(v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}
	e.Data = raw
	return nil
}

// PlanAssignedData is the payload for EventPlanAssigned.
type PlanAssignedData struct {
	Version         int    `json:"version"`
	CreatedMissions int    `json:"created_missions"`
	CreatedMicros   int    `json:"created_micros"`
	SupersededRunID string `json:"superseded_run_id,omitempty"`
	ArchivedPending int    `json:"archived_pending"`
}

// SwapsAppliedData is the payload for EventSwapsApplied.
type SwapsAppliedData struct {
	SwapCount      int      `json:"swap_count"`
	ReplacedTitles []string `json:"replaced_titles"`
}

// CompletionData is the payload for mission/micro/recovery completions.
type CompletionData struct {
	MissionID   string `json:"mission_id"`
	BaseReward  int    `json:"base_reward"`
	BonusReward int    `json:"bonus_reward"`
	TotalReward int    `json:"total_reward"`
	Micro       bool   `json:"micro"`
	Method      string `json:"method"`
}

// ShieldsResetData is the payload for EventShieldsReset.
type ShieldsResetData struct {
	Shields int `json:"shields"`
}
