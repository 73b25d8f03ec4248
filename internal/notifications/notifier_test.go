package notifications

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garita/internal/domain"
	"garita/pkg/audit"
)

type fakeLoans struct {
	loans      []domain.BadgeAssignment
	lastCutoff time.Time
}

func (f *fakeLoans) FindOverdueLoans(_ context.Context, before time.Time) ([]domain.BadgeAssignment, error) {
	f.lastCutoff = before
	var out []domain.BadgeAssignment
	for _, loan := range f.loans {
		if loan.ReturnedAt == nil && loan.AssignedAt.Before(before) {
			out = append(out, loan)
		}
	}
	return out, nil
}

var sweepNow = time.Date(2026, 8, 29, 18, 0, 0, 0, time.UTC)

func newNotifier(store *fakeLoans) (*Notifier, *audit.InMemoryStore) {
	sink := audit.NewInMemoryStore()
	n := New(store, audit.NewPublisher(sink), slog.Default(), time.Hour, 12*time.Hour).
		WithClock(func() time.Time { return sweepNow })
	return n, sink
}

func TestSweepFlagsOverdueLoans(t *testing.T) {
	contractorID := int64(4)
	store := &fakeLoans{loans: []domain.BadgeAssignment{
		{ID: 1, BadgeID: 10, ContractorID: &contractorID, AssignedAt: sweepNow.Add(-20 * time.Hour)},
		{ID: 2, BadgeID: 11, AssignedAt: sweepNow.Add(-2 * time.Hour)},
	}}
	n, sink := newNotifier(store)

	n.Sweep(context.Background())

	assert.Equal(t, sweepNow.Add(-12*time.Hour), store.lastCutoff)
	events := sink.Events()
	require.Len(t, events, 1, "only the 20h loan is past the 12h limit")
	assert.Equal(t, audit.ActionBadgeOverdue, events[0].Action)
	require.NotNil(t, events[0].BadgeID)
	assert.Equal(t, int64(10), *events[0].BadgeID)
	assert.Equal(t, int64(4), *events[0].ContractorID)
	assert.Contains(t, events[0].Reason, "20h")
}

func TestSweepReportsEachLoanOnce(t *testing.T) {
	store := &fakeLoans{loans: []domain.BadgeAssignment{
		{ID: 1, BadgeID: 10, AssignedAt: sweepNow.Add(-20 * time.Hour)},
	}}
	n, sink := newNotifier(store)

	n.Sweep(context.Background())
	n.Sweep(context.Background())
	n.Sweep(context.Background())

	assert.Len(t, sink.Events(), 1)
}

func TestSweepResetsAfterReturn(t *testing.T) {
	store := &fakeLoans{loans: []domain.BadgeAssignment{
		{ID: 1, BadgeID: 10, AssignedAt: sweepNow.Add(-20 * time.Hour)},
	}}
	n, sink := newNotifier(store)

	n.Sweep(context.Background())

	returned := sweepNow
	store.loans[0].ReturnedAt = &returned
	n.Sweep(context.Background())

	// Reopened loan gets flagged again.
	store.loans[0].ReturnedAt = nil
	n.Sweep(context.Background())

	assert.Len(t, sink.Events(), 2)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	n, _ := newNotifier(&fakeLoans{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := n.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
