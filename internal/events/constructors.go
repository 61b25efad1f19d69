package events

import (
	"time"

	"github.com/google/uuid"
)

// newEvent builds the common envelope shared by all constructors.
func newEvent(t EventType, userID, date, message string) *AuditEvent {
	return &AuditEvent{
		ID:        uuid.New().String(),
		Type:      t,
		Timestamp: time.Now(),
		UserID:    userID,
		Date:      date,
		Message:   message,
	}
}

// NewPlanAssigned creates an audit event for a materialized plan run.
func NewPlanAssigned(userID, date, planRunID, message string, data PlanAssignedData) (*AuditEvent, error) {
	e := newEvent(EventPlanAssigned, userID, date, message)
	e.PlanRunID = planRunID
	if err := e.SetData(data); err != nil {
		return nil, err
	}
	return e, nil
}

// NewPlanPreviewed creates an audit event for a persisted preview.
func NewPlanPreviewed(userID, date, planRunID, message string) *AuditEvent {
	e := newEvent(EventPlanPreviewed, userID, date, message)
	e.PlanRunID = planRunID
	return e
}

// NewSwapsApplied creates an audit event summarizing a swap batch.
func NewSwapsApplied(userID, date, planRunID, message string, data SwapsAppliedData) (*AuditEvent, error) {
	e := newEvent(EventSwapsApplied, userID, date, message)
	e.PlanRunID = planRunID
	if err := e.SetData(data); err != nil {
		return nil, err
	}
	return e, nil
}

// NewCompletion creates an audit event for a completed assignment. The
// event type distinguishes ordinary, micro, and recovery completions.
func NewCompletion(t EventType, userID, date, assignmentID, message string, data CompletionData) (*AuditEvent, error) {
	e := newEvent(t, userID, date, message)
	e.AssignmentID = assignmentID
	if err := e.SetData(data); err != nil {
		return nil, err
	}
	return e, nil
}

// NewRecoveryCreated creates an audit event for an injected recovery mission.
func NewRecoveryCreated(userID, date, assignmentID, message string) *AuditEvent {
	e := newEvent(EventRecoveryCreated, userID, date, message)
	e.AssignmentID = assignmentID
	return e
}

// NewPartyAssigned creates an audit event for an applied party run.
func NewPartyAssigned(userID, date, planRunID, message string) *AuditEvent {
	e := newEvent(EventPartyAssigned, userID, date, message)
	e.PlanRunID = planRunID
	return e
}

// NewShieldsReset creates an audit event for the weekly shield replenish.
func NewShieldsReset(userID string, shields int) (*AuditEvent, error) {
	e := newEvent(EventShieldsReset, userID, "", "weekly shield reset")
	if err := e.SetData(ShieldsResetData{Shields: shields}); err != nil {
		return nil, err
	}
	return e, nil
}
