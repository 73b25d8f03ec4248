package blacklist

import (
	"context"
	"log/slog"
	"time"

	"garita/internal/domain"
	"garita/pkg/audit"
	dErrors "garita/pkg/domainerrors"
)

// EntryStore is the persistence surface the service depends on.
type EntryStore interface {
	Create(ctx context.Context, b *domain.BlacklistEntry) error
	Update(ctx context.Context, b *domain.BlacklistEntry) error
	FindByID(ctx context.Context, id int64) (*domain.BlacklistEntry, error)
	FindActiveByContractor(ctx context.Context, contractorID int64) (*domain.BlacklistEntry, error)
	List(ctx context.Context) ([]domain.BlacklistEntry, error)
	Delete(ctx context.Context, id int64) error
	ContractorExists(ctx context.Context, contractorID int64) (bool, error)
}

// Service enforces the one-active-bar-per-contractor rule and audits
// inclusion and withdrawal.
type Service struct {
	store  EntryStore
	audit  *audit.Publisher
	logger *slog.Logger
	clock  func() time.Time
}

// NewService constructs the blacklist service.
func NewService(store EntryStore, publisher *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, audit: publisher, logger: logger, clock: time.Now}
}

// CreateRequest carries the fields of a new bar.
type CreateRequest struct {
	ContractorID int64
	RiskGroup    string
	Cause        string
	RiskLevel    string
	Notes        string
}

// Create adds an active bar for the contractor. The contractor must
// exist, and a second active bar is a conflict rather than a duplicate.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*domain.BlacklistEntry, error) {
	exists, err := s.store.ContractorExists(ctx, req.ContractorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, dErrors.Newf(dErrors.CodeContractorNotFound,
			"contratista con ID %d no encontrado", req.ContractorID)
	}

	active, err := s.store.FindActiveByContractor(ctx, req.ContractorID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, dErrors.Newf(dErrors.CodeConflict,
			"el contratista %d ya tiene una entrada activa en lista negra (ID: %d)",
			req.ContractorID, active.ID)
	}

	entry := &domain.BlacklistEntry{
		ContractorID: req.ContractorID,
		RiskGroup:    req.RiskGroup,
		Cause:        req.Cause,
		RiskLevel:    req.RiskLevel,
		Notes:        req.Notes,
		Active:       true,
		IncludedAt:   s.clock(),
	}
	if err := s.store.Create(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("contractor blacklisted",
		"contractor_id", req.ContractorID, "blacklist_id", entry.ID, "cause", req.Cause)
	s.emit(ctx, audit.Event{
		Action:       audit.ActionBlacklistAdded,
		ContractorID: &req.ContractorID,
		Reason:       req.Cause,
	})
	return entry, nil
}

// Withdraw deactivates the bar and stamps the withdrawal time. The row
// is kept; hard deletion is a separate administrative operation.
func (s *Service) Withdraw(ctx context.Context, id int64) (*domain.BlacklistEntry, error) {
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound,
			"entrada de lista negra con ID %d no encontrada", id)
	}
	if !entry.Active {
		return nil, dErrors.Newf(dErrors.CodeConflict,
			"la entrada de lista negra %d ya fue retirada", id)
	}

	now := s.clock()
	entry.Active = false
	entry.WithdrawnAt = &now
	if err := s.store.Update(ctx, entry); err != nil {
		return nil, err
	}

	s.logger.Info("blacklist entry withdrawn",
		"contractor_id", entry.ContractorID, "blacklist_id", entry.ID)
	s.emit(ctx, audit.Event{
		Action:       audit.ActionBlacklistWithdrawn,
		ContractorID: &entry.ContractorID,
	})
	return entry, nil
}

// UpdateRequest carries the mutable classification fields.
type UpdateRequest struct {
	RiskGroup *string
	Cause     *string
	RiskLevel *string
	Notes     *string
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*domain.BlacklistEntry, error) {
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound,
			"entrada de lista negra con ID %d no encontrada", id)
	}

	if req.RiskGroup != nil {
		entry.RiskGroup = *req.RiskGroup
	}
	if req.Cause != nil {
		entry.Cause = *req.Cause
	}
	if req.RiskLevel != nil {
		entry.RiskLevel = *req.RiskLevel
	}
	if req.Notes != nil {
		entry.Notes = *req.Notes
	}
	if err := s.store.Update(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.BlacklistEntry, error) {
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, dErrors.Newf(dErrors.CodeNotFound,
			"entrada de lista negra con ID %d no encontrada", id)
	}
	return entry, nil
}

func (s *Service) List(ctx context.Context) ([]domain.BlacklistEntry, error) {
	return s.store.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	entry, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if entry == nil {
		return dErrors.Newf(dErrors.CodeNotFound,
			"entrada de lista negra con ID %d no encontrada", id)
	}
	return s.store.Delete(ctx, id)
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "action", string(event.Action), "error", err)
	}
}
