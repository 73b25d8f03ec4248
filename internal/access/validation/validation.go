// Package validation holds the eligibility rules for contractor entry and
// exit. Predicates are free functions over plain domain data; the
// Validator resolves entities through whatever store bundle the caller is
// operating in, so checks run against the same transaction as the writes
// they guard. Nothing here mutates state.
package validation

import (
	"context"
	"time"

	"garita/internal/access/store"
	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
)

// IsBlacklisted reports whether at least one blacklist entry is active.
func IsBlacklisted(c *domain.Contractor) bool {
	for _, entry := range c.Blacklist {
		if entry.Active {
			return true
		}
	}
	return false
}

// HasExpiredPermit reports whether the contractor's PRAIND permit is
// expired as of now. The comparison is date-only; a contractor without an
// expiry date on file counts as expired.
func HasExpiredPermit(c *domain.Contractor, now time.Time) bool {
	if c.PermitExpiry == nil {
		return true
	}
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	ey, em, ed := c.PermitExpiry.Date()
	expiry := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return today.After(expiry)
}

// Validator resolves and validates the entities involved in an entry or
// exit, raising one specific domain error per failure mode.
type Validator struct {
	clock func() time.Time
}

// Option configures a Validator.
type Option func(*Validator)

// WithClock overrides the time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(v *Validator) {
		if clock != nil {
			v.clock = clock
		}
	}
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{clock: time.Now}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// ResolveActiveContractor loads the active contractor with its blacklist
// entries, failing with CONTRATISTA_NO_ENCONTRADO otherwise.
func (v *Validator) ResolveActiveContractor(ctx context.Context, st store.Stores, contractorID int64) (*domain.Contractor, error) {
	contractor, err := st.Contractors.FindActiveWithBlacklist(ctx, contractorID)
	if err != nil {
		return nil, err
	}
	if contractor == nil {
		return nil, dErrors.Newf(dErrors.CodeContractorNotFound,
			"contratista con ID %d no encontrado o inactivo", contractorID)
	}
	return contractor, nil
}

// CheckEntryEligibility runs the entry business rules in a fixed order:
// blacklist, then permit expiry, then duplicate active entry. The order is
// part of the contract; a contractor failing several checks always gets
// the same error code.
func (v *Validator) CheckEntryEligibility(ctx context.Context, st store.Stores, contractor *domain.Contractor) error {
	if IsBlacklisted(contractor) {
		return dErrors.Newf(dErrors.CodeContractorBlacklisted,
			"el contratista %d está en lista negra y no puede ingresar", contractor.ID)
	}

	now := v.clock()
	if HasExpiredPermit(contractor, now) {
		expiry := now
		if contractor.PermitExpiry != nil {
			expiry = *contractor.PermitExpiry
		}
		return dErrors.Newf(dErrors.CodePermitExpired,
			"el PRAIND del contratista %d está vencido desde %s",
			contractor.ID, expiry.Format("2006-01-02"))
	}

	active, err := st.Entries.FindActiveByContractor(ctx, contractor.ID)
	if err != nil {
		return err
	}
	if active != nil {
		return dErrors.Newf(dErrors.CodeActiveEntryExists,
			"el contratista %d ya tiene un ingreso activo (ID: %d)", contractor.ID, active.ID)
	}
	return nil
}

// ResolveBadge validates a badge when one was requested. A nil badgeID
// means the entry carries no badge and resolves to (nil, nil). The open
// assignment ledger, not the badge's denormalized contractor pointer,
// decides whether the badge is in use.
func (v *Validator) ResolveBadge(ctx context.Context, st store.Stores, badgeID *int64) (*domain.Badge, error) {
	if badgeID == nil {
		return nil, nil
	}

	badge, err := st.Badges.FindByID(ctx, *badgeID)
	if err != nil {
		return nil, err
	}
	if badge == nil {
		return nil, dErrors.Newf(dErrors.CodeBadgeNotFound, "gafete con ID %d no encontrado", *badgeID)
	}
	if badge.Status != domain.BadgeActive {
		return nil, dErrors.Newf(dErrors.CodeBadgeUnavailable,
			"el gafete %d no está disponible; estado actual: %s", badge.ID, badge.Status)
	}

	open, err := st.Assignments.FindOpenByBadge(ctx, badge.ID)
	if err != nil {
		return nil, err
	}
	if open != nil {
		entryID := int64(0)
		if open.EntryID != nil {
			entryID = *open.EntryID
		}
		return nil, dErrors.Newf(dErrors.CodeBadgeInUse,
			"el gafete %d está actualmente en uso en el ingreso %d", badge.ID, entryID)
	}
	return badge, nil
}

// ResolveUser loads the registering user, failing with
// USUARIO_NO_ENCONTRADO when absent.
func (v *Validator) ResolveUser(ctx context.Context, st store.Stores, userID int64) (*domain.User, error) {
	user, err := st.Users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, dErrors.Newf(dErrors.CodeUserNotFound, "usuario con ID %d no encontrado", userID)
	}
	return user, nil
}

// ResolveActiveEntry loads the contractor's open entry for the exit path,
// failing with INGRESO_ACTIVO_NO_ENCONTRADO when there is none.
func (v *Validator) ResolveActiveEntry(ctx context.Context, st store.Stores, contractorID int64) (*domain.Entry, error) {
	entry, err := st.Entries.FindActiveByContractor(ctx, contractorID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, dErrors.Newf(dErrors.CodeActiveEntryNotFound,
			"no se encontró un ingreso activo para el contratista %d", contractorID)
	}
	return entry, nil
}
