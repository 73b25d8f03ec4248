package blacklist

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garita/internal/domain"
	"garita/pkg/audit"
	dErrors "garita/pkg/domainerrors"
)

type fakeStore struct {
	entries     map[int64]*domain.BlacklistEntry
	contractors map[int64]bool
	nextID      int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		entries:     map[int64]*domain.BlacklistEntry{},
		contractors: map[int64]bool{},
	}
}

func (f *fakeStore) Create(_ context.Context, b *domain.BlacklistEntry) error {
	f.nextID++
	b.ID = f.nextID
	clone := *b
	f.entries[b.ID] = &clone
	return nil
}

func (f *fakeStore) Update(_ context.Context, b *domain.BlacklistEntry) error {
	clone := *b
	f.entries[b.ID] = &clone
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id int64) (*domain.BlacklistEntry, error) {
	b, ok := f.entries[id]
	if !ok {
		return nil, nil
	}
	clone := *b
	return &clone, nil
}

func (f *fakeStore) FindActiveByContractor(_ context.Context, contractorID int64) (*domain.BlacklistEntry, error) {
	for _, b := range f.entries {
		if b.ContractorID == contractorID && b.Active {
			clone := *b
			return &clone, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) List(_ context.Context) ([]domain.BlacklistEntry, error) {
	var out []domain.BlacklistEntry
	for _, b := range f.entries {
		out = append(out, *b)
	}
	return out, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.entries, id)
	return nil
}

func (f *fakeStore) ContractorExists(_ context.Context, contractorID int64) (bool, error) {
	return f.contractors[contractorID], nil
}

func newService(store *fakeStore, events *audit.InMemoryStore) *Service {
	return NewService(store, audit.NewPublisher(events), slog.Default())
}

func TestCreateBlacklistEntry(t *testing.T) {
	store := newFakeStore()
	store.contractors[7] = true
	events := audit.NewInMemoryStore()
	svc := newService(store, events)

	entry, err := svc.Create(context.Background(), CreateRequest{
		ContractorID: 7, RiskGroup: "SEGURIDAD", Cause: "ROBO", RiskLevel: "ALTO",
	})
	require.NoError(t, err)
	assert.True(t, entry.Active)
	assert.False(t, entry.IncludedAt.IsZero())

	recorded := events.Events()
	require.Len(t, recorded, 1)
	assert.Equal(t, audit.ActionBlacklistAdded, recorded[0].Action)
	assert.Equal(t, "ROBO", recorded[0].Reason)
}

func TestCreateUnknownContractor(t *testing.T) {
	svc := newService(newFakeStore(), audit.NewInMemoryStore())

	_, err := svc.Create(context.Background(), CreateRequest{ContractorID: 99})
	assert.Equal(t, dErrors.CodeContractorNotFound, dErrors.CodeOf(err))
}

func TestCreateDuplicateActiveIsConflict(t *testing.T) {
	store := newFakeStore()
	store.contractors[7] = true
	svc := newService(store, audit.NewInMemoryStore())

	_, err := svc.Create(context.Background(), CreateRequest{
		ContractorID: 7, RiskGroup: "SEGURIDAD", Cause: "ROBO", RiskLevel: "ALTO",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateRequest{
		ContractorID: 7, RiskGroup: "SEGURIDAD", Cause: "AGRESION", RiskLevel: "ALTO",
	})
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
}

func TestWithdrawStampsAndDeactivates(t *testing.T) {
	store := newFakeStore()
	store.contractors[7] = true
	events := audit.NewInMemoryStore()
	svc := newService(store, events)

	entry, err := svc.Create(context.Background(), CreateRequest{
		ContractorID: 7, RiskGroup: "SEGURIDAD", Cause: "ROBO", RiskLevel: "ALTO",
	})
	require.NoError(t, err)

	withdrawn, err := svc.Withdraw(context.Background(), entry.ID)
	require.NoError(t, err)
	assert.False(t, withdrawn.Active)
	require.NotNil(t, withdrawn.WithdrawnAt)
	assert.WithinDuration(t, time.Now(), *withdrawn.WithdrawnAt, time.Minute)

	actions := events.Events()
	assert.Equal(t, audit.ActionBlacklistWithdrawn, actions[len(actions)-1].Action)

	// A withdrawn bar no longer blocks a new inclusion.
	_, err = svc.Create(context.Background(), CreateRequest{
		ContractorID: 7, RiskGroup: "SEGURIDAD", Cause: "REINCIDENCIA", RiskLevel: "ALTO",
	})
	assert.NoError(t, err)
}

func TestWithdrawTwiceIsConflict(t *testing.T) {
	store := newFakeStore()
	store.contractors[7] = true
	svc := newService(store, audit.NewInMemoryStore())

	entry, err := svc.Create(context.Background(), CreateRequest{
		ContractorID: 7, RiskGroup: "SEGURIDAD", Cause: "ROBO", RiskLevel: "ALTO",
	})
	require.NoError(t, err)

	_, err = svc.Withdraw(context.Background(), entry.ID)
	require.NoError(t, err)

	_, err = svc.Withdraw(context.Background(), entry.ID)
	assert.Equal(t, dErrors.CodeConflict, dErrors.CodeOf(err))
}

func TestWithdrawMissingEntry(t *testing.T) {
	svc := newService(newFakeStore(), audit.NewInMemoryStore())

	_, err := svc.Withdraw(context.Background(), 99)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}
