package validation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"garita/internal/access/store/memory"
	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
)

var testNow = time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)

func newValidator() *Validator {
	return New(WithClock(func() time.Time { return testNow }))
}

func TestIsBlacklisted(t *testing.T) {
	assert.False(t, IsBlacklisted(&domain.Contractor{}))
	assert.False(t, IsBlacklisted(&domain.Contractor{
		Blacklist: []domain.BlacklistEntry{{Active: false}},
	}))
	assert.True(t, IsBlacklisted(&domain.Contractor{
		Blacklist: []domain.BlacklistEntry{{Active: false}, {Active: true}},
	}))
}

func TestHasExpiredPermit(t *testing.T) {
	day := func(offset int) *time.Time {
		d := testNow.AddDate(0, 0, offset)
		return &d
	}

	assert.True(t, HasExpiredPermit(&domain.Contractor{}, testNow), "missing expiry counts as expired")
	assert.True(t, HasExpiredPermit(&domain.Contractor{PermitExpiry: day(-1)}, testNow))
	assert.False(t, HasExpiredPermit(&domain.Contractor{PermitExpiry: day(1)}, testNow))

	// Date-only comparison: expiring today at midnight is still valid all day.
	midnight := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	assert.False(t, HasExpiredPermit(&domain.Contractor{PermitExpiry: &midnight}, testNow))
}

func TestResolveActiveContractor(t *testing.T) {
	mem := memory.New()
	v := newValidator()
	ctx := context.Background()

	active := mem.SeedContractor(domain.Contractor{FirstName: "Juan", Active: true})
	inactive := mem.SeedContractor(domain.Contractor{FirstName: "Ana", Active: false})

	got, err := v.ResolveActiveContractor(ctx, mem.Stores(), active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)

	_, err = v.ResolveActiveContractor(ctx, mem.Stores(), inactive.ID)
	assert.Equal(t, dErrors.CodeContractorNotFound, dErrors.CodeOf(err))

	_, err = v.ResolveActiveContractor(ctx, mem.Stores(), 999)
	assert.Equal(t, dErrors.CodeContractorNotFound, dErrors.CodeOf(err))
}

func TestCheckEntryEligibilityOrdering(t *testing.T) {
	mem := memory.New()
	v := newValidator()
	ctx := context.Background()
	yesterday := testNow.AddDate(0, 0, -1)

	// Blacklisted and permit-expired at once: blacklist wins.
	contractor := &domain.Contractor{
		ID:           1,
		PermitExpiry: &yesterday,
		Blacklist:    []domain.BlacklistEntry{{Active: true}},
	}
	err := v.CheckEntryEligibility(ctx, mem.Stores(), contractor)
	assert.Equal(t, dErrors.CodeContractorBlacklisted, dErrors.CodeOf(err))

	// Permit-expired with an active entry: permit wins.
	seeded := mem.SeedContractor(domain.Contractor{Active: true, PermitExpiry: &yesterday})
	entryAt := testNow
	require.NoError(t, mem.Stores().Entries.Create(ctx, &domain.Entry{
		ContractorID: &seeded.ID, EntryAt: &entryAt, Inside: true,
	}))
	err = v.CheckEntryEligibility(ctx, mem.Stores(), &seeded)
	assert.Equal(t, dErrors.CodePermitExpired, dErrors.CodeOf(err))
}

func TestCheckEntryEligibilityActiveEntry(t *testing.T) {
	mem := memory.New()
	v := newValidator()
	ctx := context.Background()
	tomorrow := testNow.AddDate(0, 0, 1)

	contractor := mem.SeedContractor(domain.Contractor{Active: true, PermitExpiry: &tomorrow})
	entryAt := testNow
	require.NoError(t, mem.Stores().Entries.Create(ctx, &domain.Entry{
		ContractorID: &contractor.ID, EntryAt: &entryAt, Inside: true,
	}))

	err := v.CheckEntryEligibility(ctx, mem.Stores(), &contractor)
	assert.Equal(t, dErrors.CodeActiveEntryExists, dErrors.CodeOf(err))
}

func TestResolveBadge(t *testing.T) {
	mem := memory.New()
	v := newValidator()
	ctx := context.Background()

	badge, err := v.ResolveBadge(ctx, mem.Stores(), nil)
	require.NoError(t, err)
	assert.Nil(t, badge, "no badge requested resolves to none")

	missing := int64(999)
	_, err = v.ResolveBadge(ctx, mem.Stores(), &missing)
	assert.Equal(t, dErrors.CodeBadgeNotFound, dErrors.CodeOf(err))

	lost := mem.SeedBadge(domain.Badge{Code: "G-001", Status: domain.BadgeLost})
	_, err = v.ResolveBadge(ctx, mem.Stores(), &lost.ID)
	assert.Equal(t, dErrors.CodeBadgeUnavailable, dErrors.CodeOf(err))

	active := mem.SeedBadge(domain.Badge{Code: "G-002", Status: domain.BadgeActive})
	got, err := v.ResolveBadge(ctx, mem.Stores(), &active.ID)
	require.NoError(t, err)
	assert.Equal(t, active.ID, got.ID)
}

func TestResolveBadgeInUse(t *testing.T) {
	mem := memory.New()
	v := newValidator()
	ctx := context.Background()

	badge := mem.SeedBadge(domain.Badge{Code: "G-003", Status: domain.BadgeActive})
	entryID := int64(42)
	require.NoError(t, mem.Stores().Assignments.Create(ctx, &domain.BadgeAssignment{
		BadgeID: badge.ID, EntryID: &entryID, AssignedAt: testNow,
	}))

	_, err := v.ResolveBadge(ctx, mem.Stores(), &badge.ID)
	assert.Equal(t, dErrors.CodeBadgeInUse, dErrors.CodeOf(err))
}

func TestResolveBadgeIgnoresDenormalizedContractorPointer(t *testing.T) {
	mem := memory.New()
	v := newValidator()
	ctx := context.Background()

	// Stale contractor pointer on the badge row; the ledger has no open
	// loan, so the badge is available.
	stale := int64(7)
	badge := mem.SeedBadge(domain.Badge{
		Code: "G-004", Status: domain.BadgeActive, ContractorID: &stale,
	})

	got, err := v.ResolveBadge(ctx, mem.Stores(), &badge.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestResolveUser(t *testing.T) {
	mem := memory.New()
	v := newValidator()
	ctx := context.Background()

	user := mem.SeedUser(domain.User{FirstName: "Laura", Active: true})
	got, err := v.ResolveUser(ctx, mem.Stores(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = v.ResolveUser(ctx, mem.Stores(), 999)
	assert.Equal(t, dErrors.CodeUserNotFound, dErrors.CodeOf(err))
}

func TestResolveActiveEntry(t *testing.T) {
	mem := memory.New()
	v := newValidator()
	ctx := context.Background()

	contractorID := int64(7)
	_, err := v.ResolveActiveEntry(ctx, mem.Stores(), contractorID)
	assert.Equal(t, dErrors.CodeActiveEntryNotFound, dErrors.CodeOf(err))

	entryAt := testNow
	require.NoError(t, mem.Stores().Entries.Create(ctx, &domain.Entry{
		ContractorID: &contractorID, EntryAt: &entryAt, Inside: true,
	}))

	entry, err := v.ResolveActiveEntry(ctx, mem.Stores(), contractorID)
	require.NoError(t, err)
	assert.True(t, entry.Inside)
}
