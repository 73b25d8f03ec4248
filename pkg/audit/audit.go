// Package audit captures the security-relevant actions of the gate
// operation: registrations, denials, badge movements, logins. Events are
// append-only and flow through a Store so tests can swap sinks.
package audit

import (
	"context"
	"time"
)

// Action names one auditable operation.
type Action string

const (
	ActionEntryRegistered    Action = "entry_registered"
	ActionExitRegistered     Action = "exit_registered"
	ActionEntryDenied        Action = "entry_denied"
	ActionBadgeAssigned      Action = "badge_assigned"
	ActionBadgeReturned      Action = "badge_returned"
	ActionBadgeOverdue       Action = "badge_overdue"
	ActionBlacklistAdded     Action = "blacklist_added"
	ActionBlacklistWithdrawn Action = "blacklist_withdrawn"
	ActionUserLogin          Action = "user_login"
	ActionLoginFailed        Action = "login_failed"
)

// Event is one audit record. ID fields are pointers because not every
// action involves every entity.
type Event struct {
	Action       Action    `json:"action"`
	Timestamp    time.Time `json:"timestamp"`
	UserID       *int64    `json:"userId,omitempty"`
	ContractorID *int64    `json:"contractorId,omitempty"`
	EntryID      *int64    `json:"entryId,omitempty"`
	BadgeID      *int64    `json:"badgeId,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	RequestID    string    `json:"requestId,omitempty"`
}

// Store is an append-only event sink.
type Store interface {
	Append(ctx context.Context, event Event) error
}

// Publisher stamps and forwards events. Emit never fails the calling
// operation; sink errors are the sink's problem to report.
type Publisher struct {
	store Store
}

// NewPublisher wraps a store.
func NewPublisher(store Store) *Publisher {
	return &Publisher{store: store}
}

// Emit appends the event, defaulting Timestamp to now.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	return p.store.Append(ctx, event)
}

// ID is a convenience for building pointer fields from literals.
func ID(v int64) *int64 { return &v }
