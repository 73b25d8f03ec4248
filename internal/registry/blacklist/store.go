// Package blacklist manages the administrative bars that keep a
// contractor out of the facility.
package blacklist

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"garita/internal/domain"
)

// Store persists blacklist entries in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const blacklistColumns = `
	id, contratista_id, grupo_riesgo, causa, nivel_riesgo, observaciones,
	entrada_activa, fecha_inclusion, fecha_retiro,
	fecha_creacion, fecha_actualizacion, fecha_eliminacion`

func (s *Store) Create(ctx context.Context, b *domain.BlacklistEntry) error {
	query := `
		INSERT INTO lista_negra (
			contratista_id, grupo_riesgo, causa, nivel_riesgo,
			observaciones, entrada_activa, fecha_inclusion
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, fecha_creacion, fecha_actualizacion
	`
	err := s.db.QueryRowContext(ctx, query,
		b.ContractorID, b.RiskGroup, b.Cause, b.RiskLevel,
		nullString(b.Notes), b.Active, b.IncludedAt,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert blacklist entry: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, b *domain.BlacklistEntry) error {
	query := `
		UPDATE lista_negra
		SET grupo_riesgo = $2, causa = $3, nivel_riesgo = $4,
		    observaciones = $5, entrada_activa = $6, fecha_retiro = $7,
		    fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.RiskGroup, b.Cause, b.RiskLevel,
		nullString(b.Notes), b.Active, nullTime(b.WithdrawnAt),
	)
	if err != nil {
		return fmt.Errorf("update blacklist entry: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.BlacklistEntry, error) {
	query := `SELECT` + blacklistColumns + `
		FROM lista_negra
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	b, err := scanEntry(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("find blacklist entry: %w", err)
	}
	return b, nil
}

// FindActiveByContractor returns the contractor's active bar, or (nil, nil).
func (s *Store) FindActiveByContractor(ctx context.Context, contractorID int64) (*domain.BlacklistEntry, error) {
	query := `SELECT` + blacklistColumns + `
		FROM lista_negra
		WHERE contratista_id = $1 AND entrada_activa AND fecha_eliminacion IS NULL
		ORDER BY id DESC
		LIMIT 1
	`
	b, err := scanEntry(s.db.QueryRowContext(ctx, query, contractorID))
	if err != nil {
		return nil, fmt.Errorf("find active blacklist entry: %w", err)
	}
	return b, nil
}

func (s *Store) List(ctx context.Context) ([]domain.BlacklistEntry, error) {
	query := `SELECT` + blacklistColumns + `
		FROM lista_negra
		WHERE fecha_eliminacion IS NULL
		ORDER BY id DESC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list blacklist entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.BlacklistEntry
	for rows.Next() {
		var b domain.BlacklistEntry
		if err := scanInto(&b, rows.Scan); err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		entries = append(entries, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blacklist entries: %w", err)
	}
	return entries, nil
}

// Delete removes the row outright; the withdraw flow is the normal path.
func (s *Store) Delete(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM lista_negra WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete blacklist entry: %w", err)
	}
	return nil
}

// ContractorExists reports whether an active, non-deleted contractor row
// exists.
func (s *Store) ContractorExists(ctx context.Context, contractorID int64) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM contratistas WHERE id = $1 AND fecha_eliminacion IS NULL
		)
	`
	var exists bool
	if err := s.db.QueryRowContext(ctx, query, contractorID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check contractor exists: %w", err)
	}
	return exists, nil
}

func scanEntry(row *sql.Row) (*domain.BlacklistEntry, error) {
	var b domain.BlacklistEntry
	err := scanInto(&b, row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanInto(b *domain.BlacklistEntry, scan func(...any) error) error {
	var (
		notes       sql.NullString
		withdrawnAt sql.NullTime
		deletedAt   sql.NullTime
	)
	err := scan(
		&b.ID, &b.ContractorID, &b.RiskGroup, &b.Cause, &b.RiskLevel, &notes,
		&b.Active, &b.IncludedAt, &withdrawnAt,
		&b.CreatedAt, &b.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return err
	}
	b.Notes = notes.String
	if withdrawnAt.Valid {
		t := withdrawnAt.Time
		b.WithdrawnAt = &t
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		b.DeletedAt = &t
	}
	return nil
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
