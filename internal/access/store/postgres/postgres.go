// Package postgres implements the access stores on PostgreSQL. One
// Stores value wraps the pool; RunInTx hands callers a bundle bound to a
// single *sql.Tx so every statement of a registration shares the
// transaction.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"garita/internal/access/store"
	dErrors "garita/pkg/domainerrors"
)

// Stores is the PostgreSQL-backed store bundle factory.
type Stores struct {
	db *sql.DB
}

// New wraps an open database pool.
func New(db *sql.DB) *Stores {
	return &Stores{db: db}
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Stores returns a bundle running directly on the pool, outside any
// transaction.
func (s *Stores) Stores() store.Stores {
	return bundle(s.db)
}

// RunInTx begins a transaction, runs fn with a tx-bound store bundle,
// and commits; any error from fn rolls everything back.
func (s *Stores) RunInTx(ctx context.Context, fn func(st store.Stores) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(bundle(tx)); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func bundle(q querier) store.Stores {
	return store.Stores{
		Entries:     &entryStore{q},
		Assignments: &assignmentStore{q},
		Contractors: &contractorStore{q},
		Badges:      &badgeStore{q},
		Users:       &userStore{q},
	}
}

// mapUniqueViolation translates the partial unique indexes backing the
// concurrency invariants into the domain errors the in-tx checks would
// have raised. Two racing transactions both pass the read check; the
// loser hits the index at commit and still gets the contract error code.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != "23505" {
		return err
	}
	switch pqErr.Constraint {
	case "uq_ingresos_activo_por_contratista":
		return dErrors.Wrap(err, dErrors.CodeActiveEntryExists,
			"el contratista ya tiene un ingreso activo")
	case "uq_historial_abierto_por_gafete":
		return dErrors.Wrap(err, dErrors.CodeBadgeInUse,
			"el gafete ya está asignado a otro ingreso")
	}
	return err
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}

func nullInt64(value *int64) sql.NullInt64 {
	if value == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *value, Valid: true}
}

func nullString(value string) sql.NullString {
	if value == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: value, Valid: true}
}

func timePtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time
	return &t
}

func int64Ptr(value sql.NullInt64) *int64 {
	if !value.Valid {
		return nil
	}
	v := value.Int64
	return &v
}
