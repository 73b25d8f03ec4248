// Package badges is the physical badge registry, including the loan
// history listing per badge.
package badges

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
)

// Store persists badges in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const badgeColumns = `
	id, codigo, tipo, estado, descripcion, contratista_id,
	fecha_creacion, fecha_actualizacion, fecha_eliminacion`

func (s *Store) Create(ctx context.Context, b *domain.Badge) error {
	query := `
		INSERT INTO gafetes (codigo, tipo, estado, descripcion, contratista_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, fecha_creacion, fecha_actualizacion
	`
	err := s.db.QueryRowContext(ctx, query,
		b.Code, b.Type, string(b.Status), nullString(b.Description), nullInt64(b.ContractorID),
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.Newf(dErrors.CodeConflict, "ya existe un gafete con código %s", b.Code)
		}
		return fmt.Errorf("insert badge: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, b *domain.Badge) error {
	query := `
		UPDATE gafetes
		SET codigo = $2, tipo = $3, estado = $4, descripcion = $5,
		    contratista_id = $6, fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query,
		b.ID, b.Code, b.Type, string(b.Status), nullString(b.Description), nullInt64(b.ContractorID),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.Newf(dErrors.CodeConflict, "ya existe un gafete con código %s", b.Code)
		}
		return fmt.Errorf("update badge: %w", err)
	}
	return requireRow(res, b.ID)
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.Badge, error) {
	query := `SELECT` + badgeColumns + `
		FROM gafetes
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	var (
		b            domain.Badge
		description  sql.NullString
		contractorID sql.NullInt64
		deletedAt    sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&b.ID, &b.Code, &b.Type, &b.Status, &description, &contractorID,
		&b.CreatedAt, &b.UpdatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find badge: %w", err)
	}
	b.Description = description.String
	if contractorID.Valid {
		v := contractorID.Int64
		b.ContractorID = &v
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		b.DeletedAt = &t
	}
	return &b, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Badge, error) {
	query := `SELECT` + badgeColumns + `
		FROM gafetes
		WHERE fecha_eliminacion IS NULL
		ORDER BY codigo
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}
	defer rows.Close()

	var badges []domain.Badge
	for rows.Next() {
		var (
			b            domain.Badge
			description  sql.NullString
			contractorID sql.NullInt64
			deletedAt    sql.NullTime
		)
		err := rows.Scan(
			&b.ID, &b.Code, &b.Type, &b.Status, &description, &contractorID,
			&b.CreatedAt, &b.UpdatedAt, &deletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan badge: %w", err)
		}
		b.Description = description.String
		if contractorID.Valid {
			v := contractorID.Int64
			b.ContractorID = &v
		}
		badges = append(badges, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate badges: %w", err)
	}
	return badges, nil
}

func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE gafetes
		SET fecha_eliminacion = now(), fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete badge: %w", err)
	}
	return requireRow(res, id)
}

// History lists the loan ledger for a badge, newest first.
func (s *Store) History(ctx context.Context, badgeID int64) ([]domain.BadgeAssignment, error) {
	query := `
		SELECT id, gafete_id, contratista_id, ingreso_id, fecha_asignacion,
		       fecha_devolucion, estado_devolucion, observaciones
		FROM historial_gafetes
		WHERE gafete_id = $1
		ORDER BY fecha_asignacion DESC
	`
	rows, err := s.db.QueryContext(ctx, query, badgeID)
	if err != nil {
		return nil, fmt.Errorf("query badge history: %w", err)
	}
	defer rows.Close()

	var history []domain.BadgeAssignment
	for rows.Next() {
		var (
			a            domain.BadgeAssignment
			contractorID sql.NullInt64
			entryID      sql.NullInt64
			returnedAt   sql.NullTime
			condition    sql.NullString
			notes        sql.NullString
		)
		err := rows.Scan(
			&a.ID, &a.BadgeID, &contractorID, &entryID, &a.AssignedAt,
			&returnedAt, &condition, &notes,
		)
		if err != nil {
			return nil, fmt.Errorf("scan badge history row: %w", err)
		}
		if contractorID.Valid {
			v := contractorID.Int64
			a.ContractorID = &v
		}
		if entryID.Valid {
			v := entryID.Int64
			a.EntryID = &v
		}
		if returnedAt.Valid {
			t := returnedAt.Time
			a.ReturnedAt = &t
		}
		a.ReturnCondition = domain.ReturnCondition(condition.String)
		a.Notes = notes.String
		history = append(history, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate badge history: %w", err)
	}
	return history, nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return dErrors.Newf(dErrors.CodeBadgeNotFound, "gafete con ID %d no encontrado", id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullString(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
