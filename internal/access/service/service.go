// Package service implements the entry/exit workflow: validation,
// atomic persistence of the entry together with its badge loan, and the
// read side serving the API projections. This is the only place allowed
// to open a transaction.
package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"garita/internal/access/cache"
	"garita/internal/access/store"
	"garita/internal/access/validation"
	"garita/internal/domain"
	"garita/internal/platform/metrics"
	"garita/internal/platform/middleware"
	"garita/pkg/audit"
	dErrors "garita/pkg/domainerrors"
)

const maxPageSize = 100

// EntryRequest carries the caller-supplied fields of a new entry.
type EntryRequest struct {
	ContractorID  int64
	BadgeID       *int64
	VehicleID     *int64
	EntryPointID  *int64
	Authorization domain.AuthorizationType
	Notes         string
}

// UpdateRequest carries the mutable fields of an existing entry. Nil
// means leave unchanged.
type UpdateRequest struct {
	Authorization *domain.AuthorizationType
	Notes         *string
}

// Service orchestrates entries and exits.
type Service struct {
	tx        store.Tx
	reader    store.EntryReader
	validator *validation.Validator
	cache     *cache.EntryCache
	audit     *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	clock     func() time.Time
	tracer    trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// New constructs the orchestrator. cache may be nil.
func New(tx store.Tx, reader store.EntryReader, entryCache *cache.EntryCache,
	publisher *audit.Publisher, m *metrics.Metrics, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		tx:      tx,
		reader:  reader,
		cache:   entryCache,
		audit:   publisher,
		metrics: m,
		logger:  logger,
		clock:   time.Now,
		tracer:  otel.Tracer("garita/access"),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = validation.New(validation.WithClock(s.clock))
	return s
}

// RegisterEntry validates the contractor and creates the entry plus, when
// a badge travels with it, the open loan row, in one transaction.
func (s *Service) RegisterEntry(ctx context.Context, req EntryRequest, userID int64) (*domain.EntryProjection, error) {
	ctx, span := s.tracer.Start(ctx, "access.RegisterEntry",
		trace.WithAttributes(attribute.Int64("contractor_id", req.ContractorID)))
	defer span.End()

	authorization := req.Authorization
	if authorization == "" {
		authorization = domain.AuthorizationAutomatic
	}
	if !domain.ValidAuthorizationType(authorization) {
		return nil, dErrors.Newf(dErrors.CodeBadRequest,
			"tipo de autorización inválido: %s", authorization)
	}

	var entry *domain.Entry
	err := s.tx.RunInTx(ctx, func(st store.Stores) error {
		contractor, err := s.validator.ResolveActiveContractor(ctx, st, req.ContractorID)
		if err != nil {
			return err
		}
		if err := s.validator.CheckEntryEligibility(ctx, st, contractor); err != nil {
			return err
		}
		badge, err := s.validator.ResolveBadge(ctx, st, req.BadgeID)
		if err != nil {
			return err
		}
		user, err := s.validator.ResolveUser(ctx, st, userID)
		if err != nil {
			return err
		}

		now := s.clock()
		entry = &domain.Entry{
			ContractorID:   &contractor.ID,
			VehicleID:      req.VehicleID,
			EntryPointID:   req.EntryPointID,
			Authorization:  authorization,
			EntryAt:        &now,
			RegisteredByID: &user.ID,
			Inside:         true,
			Notes:          req.Notes,
		}
		if badge != nil {
			entry.BadgeID = &badge.ID
		}
		if err := st.Entries.Create(ctx, entry); err != nil {
			return err
		}

		if badge != nil {
			assignment := &domain.BadgeAssignment{
				BadgeID:         badge.ID,
				ContractorID:    &contractor.ID,
				EntryID:         &entry.ID,
				AssignedAt:      now,
				ReturnCondition: domain.ReturnGood,
			}
			if err := st.Assignments.Create(ctx, assignment); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		s.recordDenial(ctx, req.ContractorID, userID, err)
		return nil, err
	}

	s.metrics.EntriesRegistered.Inc()
	if entry.BadgeID != nil {
		s.metrics.BadgesAssigned.Inc()
	}
	s.logger.Info("entry registered",
		"entry_id", entry.ID,
		"contractor_id", req.ContractorID,
		"badge_id", entry.BadgeID,
		"user_id", userID,
	)
	s.emit(ctx, audit.Event{
		Action:       audit.ActionEntryRegistered,
		UserID:       &userID,
		ContractorID: &req.ContractorID,
		EntryID:      &entry.ID,
		BadgeID:      entry.BadgeID,
	})
	if entry.BadgeID != nil {
		s.emit(ctx, audit.Event{
			Action:       audit.ActionBadgeAssigned,
			UserID:       &userID,
			ContractorID: &req.ContractorID,
			EntryID:      &entry.ID,
			BadgeID:      entry.BadgeID,
		})
	}

	return s.projection(ctx, entry.ID)
}

// RegisterExit closes the contractor's open entry and the badge loan
// that rode along with it, in one transaction.
func (s *Service) RegisterExit(ctx context.Context, contractorID, userID int64, condition *domain.ReturnCondition) (*domain.EntryProjection, error) {
	ctx, span := s.tracer.Start(ctx, "access.RegisterExit",
		trace.WithAttributes(attribute.Int64("contractor_id", contractorID)))
	defer span.End()

	returnCondition := domain.ReturnGood
	if condition != nil {
		if !domain.ValidReturnCondition(*condition) {
			return nil, dErrors.Newf(dErrors.CodeBadRequest,
				"estado de devolución inválido: %s", *condition)
		}
		returnCondition = *condition
	}

	var (
		entry         *domain.Entry
		badgeReturned bool
	)
	err := s.tx.RunInTx(ctx, func(st store.Stores) error {
		var err error
		entry, err = s.validator.ResolveActiveEntry(ctx, st, contractorID)
		if err != nil {
			return err
		}
		user, err := s.validator.ResolveUser(ctx, st, userID)
		if err != nil {
			return err
		}

		now := s.clock()
		entry.ExitAt = &now
		entry.Inside = false
		entry.ExitRegisteredByID = &user.ID
		if err := st.Entries.Update(ctx, entry); err != nil {
			return err
		}

		if entry.BadgeID == nil {
			return nil
		}
		assignment, err := st.Assignments.FindOpenByEntry(ctx, entry.ID)
		if err != nil {
			return err
		}
		if assignment == nil {
			// The ledger should always carry an open row for an entry
			// with a badge; tolerate the inconsistency on the way out.
			s.logger.Warn("exit with badge but no open loan",
				"entry_id", entry.ID, "badge_id", *entry.BadgeID)
			return nil
		}
		assignment.ReturnedAt = &now
		assignment.ReturnCondition = returnCondition
		if err := st.Assignments.Update(ctx, assignment); err != nil {
			return err
		}
		badgeReturned = true
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.ExitsRegistered.Inc()
	if badgeReturned {
		s.metrics.BadgesReturned.WithLabelValues(string(returnCondition)).Inc()
	}
	s.logger.Info("exit registered",
		"entry_id", entry.ID,
		"contractor_id", contractorID,
		"badge_id", entry.BadgeID,
		"user_id", userID,
	)
	s.emit(ctx, audit.Event{
		Action:       audit.ActionExitRegistered,
		UserID:       &userID,
		ContractorID: &contractorID,
		EntryID:      &entry.ID,
		BadgeID:      entry.BadgeID,
	})
	if badgeReturned {
		s.emit(ctx, audit.Event{
			Action:       audit.ActionBadgeReturned,
			UserID:       &userID,
			ContractorID: &contractorID,
			EntryID:      &entry.ID,
			BadgeID:      entry.BadgeID,
			Reason:       string(returnCondition),
		})
	}

	s.cache.Invalidate(ctx, entry.ID)
	return s.projection(ctx, entry.ID)
}

// Update changes the mutable fields of an entry after the fact.
func (s *Service) Update(ctx context.Context, entryID int64, req UpdateRequest) (*domain.EntryProjection, error) {
	ctx, span := s.tracer.Start(ctx, "access.UpdateEntry",
		trace.WithAttributes(attribute.Int64("entry_id", entryID)))
	defer span.End()

	if req.Authorization != nil && !domain.ValidAuthorizationType(*req.Authorization) {
		return nil, dErrors.Newf(dErrors.CodeBadRequest,
			"tipo de autorización inválido: %s", *req.Authorization)
	}

	err := s.tx.RunInTx(ctx, func(st store.Stores) error {
		entry, err := st.Entries.FindByID(ctx, entryID)
		if err != nil {
			return err
		}
		if entry == nil {
			return dErrors.Newf(dErrors.CodeEntryNotFound, "ingreso con ID %d no encontrado", entryID)
		}
		if req.Authorization != nil {
			entry.Authorization = *req.Authorization
		}
		if req.Notes != nil {
			entry.Notes = *req.Notes
		}
		return st.Entries.Update(ctx, entry)
	})
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx, entryID)
	return s.projection(ctx, entryID)
}

// Get returns one entry projection, read-through the cache.
func (s *Service) Get(ctx context.Context, entryID int64) (*domain.EntryProjection, error) {
	ctx, span := s.tracer.Start(ctx, "access.GetEntry",
		trace.WithAttributes(attribute.Int64("entry_id", entryID)))
	defer span.End()

	if p, ok := s.cache.Get(ctx, entryID); ok {
		return p, nil
	}

	p, err := s.reader.GetProjection(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, dErrors.Newf(dErrors.CodeEntryNotFound, "ingreso con ID %d no encontrado", entryID)
	}
	s.cache.Put(ctx, p)
	return p, nil
}

// List returns one page of entries, newest first.
func (s *Service) List(ctx context.Context, page, limit int) (*domain.EntryPage, error) {
	ctx, span := s.tracer.Start(ctx, "access.ListEntries")
	defer span.End()

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	projections, total, err := s.reader.ListProjections(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &domain.EntryPage{
		Data:       projections,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
	}, nil
}

// projection re-fetches a committed entry for the API response and warms
// the cache with it.
func (s *Service) projection(ctx context.Context, entryID int64) (*domain.EntryProjection, error) {
	p, err := s.reader.GetProjection(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, dErrors.Newf(dErrors.CodeEntryNotFound, "ingreso con ID %d no encontrado", entryID)
	}
	s.cache.Put(ctx, p)
	return p, nil
}

// recordDenial counts and audits rejected registrations. Infrastructure
// failures are not denials and only count as errors upstream.
func (s *Service) recordDenial(ctx context.Context, contractorID, userID int64, err error) {
	code := dErrors.CodeOf(err)
	if code == dErrors.CodeInternal {
		return
	}
	s.metrics.EntriesDenied.WithLabelValues(string(code)).Inc()
	s.logger.Info("entry denied",
		"contractor_id", contractorID,
		"user_id", userID,
		"error_code", string(code),
	)
	s.emit(ctx, audit.Event{
		Action:       audit.ActionEntryDenied,
		UserID:       &userID,
		ContractorID: &contractorID,
		Reason:       string(code),
	})
}

// emit publishes an audit event; a sink failure never fails the
// operation that produced it.
func (s *Service) emit(ctx context.Context, event audit.Event) {
	if s.audit == nil {
		return
	}
	event.RequestID = middleware.GetRequestID(ctx)
	if err := s.audit.Emit(ctx, event); err != nil {
		s.logger.Warn("audit emit failed", "action", string(event.Action), "error", err)
	}
}
