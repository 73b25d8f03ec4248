package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"garita/internal/domain"
)

// FindOverdueLoans lists badge loans still open that were assigned before
// the cutoff. Feeds the overdue badge notifier.
func (r *Reader) FindOverdueLoans(ctx context.Context, before time.Time) ([]domain.BadgeAssignment, error) {
	query := `SELECT` + assignmentColumns + `
		FROM historial_gafetes
		WHERE fecha_devolucion IS NULL AND fecha_asignacion < $1
		ORDER BY fecha_asignacion
	`
	rows, err := r.db.QueryContext(ctx, query, before)
	if err != nil {
		return nil, fmt.Errorf("query overdue loans: %w", err)
	}
	defer rows.Close()

	var loans []domain.BadgeAssignment
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
			return nil, fmt.Errorf("scan overdue loan: %w", err)
		}
		a.ContractorID = int64Ptr(contractorID)
		a.EntryID = int64Ptr(entryID)
		a.ReturnedAt = timePtr(returnedAt)
		a.ReturnCondition = domain.ReturnCondition(condition.String)
		a.Notes = notes.String
		loans = append(loans, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overdue loans: %w", err)
	}
	return loans, nil
}
