package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"garita/internal/domain"
)

type assignmentStore struct {
	q querier
}

const assignmentColumns = `
	id, gafete_id, contratista_id, ingreso_id, fecha_asignacion,
	fecha_devolucion, estado_devolucion, observaciones`

func (s *assignmentStore) Create(ctx context.Context, a *domain.BadgeAssignment) error {
	query := `
		INSERT INTO historial_gafetes (
			gafete_id, contratista_id, ingreso_id, fecha_asignacion,
			fecha_devolucion, estado_devolucion, observaciones
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := s.q.QueryRowContext(ctx, query,
		a.BadgeID,
		nullInt64(a.ContractorID),
		nullInt64(a.EntryID),
		a.AssignedAt,
		nullTime(a.ReturnedAt),
		nullString(string(a.ReturnCondition)),
		nullString(a.Notes),
	).Scan(&a.ID)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert badge assignment: %w", err)
	}
	return nil
}

func (s *assignmentStore) Update(ctx context.Context, a *domain.BadgeAssignment) error {
	query := `
		UPDATE historial_gafetes
		SET fecha_devolucion = $2, estado_devolucion = $3, observaciones = $4
		WHERE id = $1
	`
	_, err := s.q.ExecContext(ctx, query,
		a.ID,
		nullTime(a.ReturnedAt),
		nullString(string(a.ReturnCondition)),
		nullString(a.Notes),
	)
	if err != nil {
		return fmt.Errorf("update badge assignment: %w", err)
	}
	return nil
}

func (s *assignmentStore) FindOpenByBadge(ctx context.Context, badgeID int64) (*domain.BadgeAssignment, error) {
	query := `SELECT` + assignmentColumns + `
		FROM historial_gafetes
		WHERE gafete_id = $1 AND fecha_devolucion IS NULL
	`
	assignment, err := scanAssignment(s.q.QueryRowContext(ctx, query, badgeID))
	if err != nil {
		return nil, fmt.Errorf("find open assignment by badge: %w", err)
	}
	return assignment, nil
}

func (s *assignmentStore) FindOpenByEntry(ctx context.Context, entryID int64) (*domain.BadgeAssignment, error) {
	query := `SELECT` + assignmentColumns + `
		FROM historial_gafetes
		WHERE ingreso_id = $1 AND fecha_devolucion IS NULL
		ORDER BY id DESC
		LIMIT 1
	`
	assignment, err := scanAssignment(s.q.QueryRowContext(ctx, query, entryID))
	if err != nil {
		return nil, fmt.Errorf("find open assignment by entry: %w", err)
	}
	return assignment, nil
}

func scanAssignment(row *sql.Row) (*domain.BadgeAssignment, error) {
	var (
		a            domain.BadgeAssignment
		contractorID sql.NullInt64
		entryID      sql.NullInt64
		returnedAt   sql.NullTime
		condition    sql.NullString
		notes        sql.NullString
	)

	err := row.Scan(
		&a.ID, &a.BadgeID, &contractorID, &entryID, &a.AssignedAt,
		&returnedAt, &condition, &notes,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	a.ContractorID = int64Ptr(contractorID)
	a.EntryID = int64Ptr(entryID)
	a.ReturnedAt = timePtr(returnedAt)
	a.ReturnCondition = domain.ReturnCondition(condition.String)
	a.Notes = notes.String
	return &a, nil
}
