// Package store defines the persistence boundary for the entry/exit
// workflow. The orchestrator opens one unit of work per operation and
// every read and write inside it goes through the tx-scoped Stores value,
// so the transaction boundary is an explicit parameter rather than
// ambient state.
package store

import (
	"context"

	"garita/internal/domain"
)

// Stores bundles the stores scoped to one unit of work.
type Stores struct {
	Entries     EntryStore
	Assignments AssignmentStore
	Contractors ContractorStore
	Badges      BadgeStore
	Users       UserStore
}

// Tx runs fn inside a single transaction. fn returning an error rolls the
// whole unit of work back; the error propagates unchanged.
type Tx interface {
	RunInTx(ctx context.Context, fn func(s Stores) error) error
}

// EntryStore persists entry records. Lookups return (nil, nil) when no
// row matches; soft-deleted rows never match.
type EntryStore interface {
	Create(ctx context.Context, e *domain.Entry) error
	Update(ctx context.Context, e *domain.Entry) error
	FindByID(ctx context.Context, id int64) (*domain.Entry, error)
	FindActiveByContractor(ctx context.Context, contractorID int64) (*domain.Entry, error)
}

// AssignmentStore is the badge loan ledger: append rows, close them, and
// find the open row for a badge or an entry.
type AssignmentStore interface {
	Create(ctx context.Context, a *domain.BadgeAssignment) error
	Update(ctx context.Context, a *domain.BadgeAssignment) error
	FindOpenByBadge(ctx context.Context, badgeID int64) (*domain.BadgeAssignment, error)
	FindOpenByEntry(ctx context.Context, entryID int64) (*domain.BadgeAssignment, error)
}

// ContractorStore resolves contractors for validation.
type ContractorStore interface {
	// FindActiveWithBlacklist returns the active, non-deleted contractor
	// with its blacklist entries loaded, or (nil, nil).
	FindActiveWithBlacklist(ctx context.Context, id int64) (*domain.Contractor, error)
}

// BadgeStore resolves badges for validation.
type BadgeStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Badge, error)
}

// UserStore resolves registering users for validation.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*domain.User, error)
}

// EntryReader is the read model: it re-fetches committed entries with
// their relations resolved for API responses.
type EntryReader interface {
	// GetProjection returns (nil, nil) when the entry does not exist or is
	// soft-deleted.
	GetProjection(ctx context.Context, id int64) (*domain.EntryProjection, error)
	// ListProjections returns one page newest-first by id plus the total
	// row count.
	ListProjections(ctx context.Context, limit, offset int) ([]domain.EntryProjection, int, error)
}
