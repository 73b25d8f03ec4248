// Package notifications sweeps for badge loans that stayed open past the
// configured maximum and flags them for the security team.
package notifications

import (
	"context"
	"log/slog"
	"time"

	"garita/internal/domain"
	"garita/pkg/audit"
)

// OverdueStore lists badge loans still open at the cutoff instant.
type OverdueStore interface {
	FindOverdueLoans(ctx context.Context, before time.Time) ([]domain.BadgeAssignment, error)
}

// Notifier periodically reports overdue badge loans. It only observes;
// closing a loan remains an operator action at the gate.
type Notifier struct {
	store    OverdueStore
	audit    *audit.Publisher
	logger   *slog.Logger
	interval time.Duration
	maxAge   time.Duration
	clock    func() time.Time

	// flagged avoids re-emitting an audit event for a loan already
	// reported in a previous sweep. Reset when the loan closes.
	flagged map[int64]bool
}

// New constructs a notifier. interval drives the sweep cadence, maxAge is
// how long a loan may stay open before it counts as overdue.
func New(store OverdueStore, publisher *audit.Publisher, logger *slog.Logger, interval, maxAge time.Duration) *Notifier {
	return &Notifier{
		store:    store,
		audit:    publisher,
		logger:   logger,
		interval: interval,
		maxAge:   maxAge,
		clock:    time.Now,
		flagged:  map[int64]bool{},
	}
}

// WithClock overrides the time source for tests.
func (n *Notifier) WithClock(clock func() time.Time) *Notifier {
	n.clock = clock
	return n
}

// Run sweeps until the context is cancelled.
func (n *Notifier) Run(ctx context.Context) error {
	ticker := time.NewTicker(n.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n.Sweep(ctx)
		}
	}
}

// Sweep runs one pass. Exported so tests and admin tooling can trigger it
// without the ticker.
func (n *Notifier) Sweep(ctx context.Context) {
	cutoff := n.clock().Add(-n.maxAge)
	loans, err := n.store.FindOverdueLoans(ctx, cutoff)
	if err != nil {
		n.logger.Error("overdue badge sweep failed", "error", err)
		return
	}

	open := make(map[int64]bool, len(loans))
	for _, loan := range loans {
		open[loan.ID] = true
		if n.flagged[loan.ID] {
			continue
		}
		n.flagged[loan.ID] = true

		age := n.clock().Sub(loan.AssignedAt).Round(time.Minute)
		n.logger.Warn("badge loan overdue",
			"assignment_id", loan.ID,
			"badge_id", loan.BadgeID,
			"contractor_id", loan.ContractorID,
			"open_for", age.String(),
		)
		if err := n.audit.Emit(ctx, audit.Event{
			Action:       audit.ActionBadgeOverdue,
			BadgeID:      audit.ID(loan.BadgeID),
			ContractorID: loan.ContractorID,
			EntryID:      loan.EntryID,
			Reason:       "loan open for " + age.String(),
		}); err != nil {
			n.logger.Warn("audit emit failed", "action", audit.ActionBadgeOverdue, "error", err)
		}
	}

	// Closed loans can be flagged again if they somehow reopen.
	for id := range n.flagged {
		if !open[id] {
			delete(n.flagged, id)
		}
	}
}
