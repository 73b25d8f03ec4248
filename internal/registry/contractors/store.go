// Package contractors is the contractor registry: the master data the
// gate workflow validates against.
package contractors

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
)

// Store persists contractors in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const contractorColumns = `
	id, primer_nombre, segundo_nombre, primer_apellido, segundo_apellido,
	cedula, telefono, empresa_id, fecha_vencimiento_praind, activo, notas,
	fecha_creacion, fecha_actualizacion, fecha_eliminacion`

func (s *Store) Create(ctx context.Context, c *domain.Contractor) error {
	query := `
		INSERT INTO contratistas (
			primer_nombre, segundo_nombre, primer_apellido, segundo_apellido,
			cedula, telefono, empresa_id, fecha_vencimiento_praind, activo, notas
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, fecha_creacion, fecha_actualizacion
	`
	err := s.db.QueryRowContext(ctx, query,
		c.FirstName, nullString(c.MiddleName), c.LastName, nullString(c.SecondLast),
		c.NationalID, nullString(c.Phone), nullInt64(c.CompanyID),
		nullTime(c.PermitExpiry), c.Active, nullString(c.Notes),
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.Newf(dErrors.CodeConflict,
				"ya existe un contratista con cédula %s", c.NationalID)
		}
		return fmt.Errorf("insert contractor: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, c *domain.Contractor) error {
	query := `
		UPDATE contratistas
		SET primer_nombre = $2, segundo_nombre = $3, primer_apellido = $4,
		    segundo_apellido = $5, cedula = $6, telefono = $7, empresa_id = $8,
		    fecha_vencimiento_praind = $9, activo = $10, notas = $11,
		    fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query,
		c.ID, c.FirstName, nullString(c.MiddleName), c.LastName,
		nullString(c.SecondLast), c.NationalID, nullString(c.Phone),
		nullInt64(c.CompanyID), nullTime(c.PermitExpiry), c.Active,
		nullString(c.Notes),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.Newf(dErrors.CodeConflict,
				"ya existe un contratista con cédula %s", c.NationalID)
		}
		return fmt.Errorf("update contractor: %w", err)
	}
	return requireRow(res, c.ID)
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.Contractor, error) {
	query := `SELECT` + contractorColumns + `
		FROM contratistas
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	c, err := scanContractor(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("find contractor: %w", err)
	}
	return c, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Contractor, error) {
	query := `SELECT` + contractorColumns + `
		FROM contratistas
		WHERE fecha_eliminacion IS NULL
		ORDER BY primer_apellido, primer_nombre
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list contractors: %w", err)
	}
	defer rows.Close()

	var contractors []domain.Contractor
	for rows.Next() {
		c, err := scanContractorRow(rows)
		if err != nil {
			return nil, err
		}
		contractors = append(contractors, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate contractors: %w", err)
	}
	return contractors, nil
}

// SoftDelete stamps fecha_eliminacion; the row stays for history.
func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE contratistas
		SET fecha_eliminacion = now(), fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete contractor: %w", err)
	}
	return requireRow(res, id)
}

// Restore clears the tombstone.
func (s *Store) Restore(ctx context.Context, id int64) error {
	query := `
		UPDATE contratistas
		SET fecha_eliminacion = NULL, fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NOT NULL
	`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("restore contractor: %w", err)
	}
	return requireRow(res, id)
}

func scanContractor(row *sql.Row) (*domain.Contractor, error) {
	var c domain.Contractor
	err := scanContractorInto(&c, row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func scanContractorRow(rows *sql.Rows) (*domain.Contractor, error) {
	var c domain.Contractor
	if err := scanContractorInto(&c, rows.Scan); err != nil {
		return nil, fmt.Errorf("scan contractor: %w", err)
	}
	return &c, nil
}

func scanContractorInto(c *domain.Contractor, scan func(...any) error) error {
	var (
		middleName   sql.NullString
		secondLast   sql.NullString
		phone        sql.NullString
		companyID    sql.NullInt64
		permitExpiry sql.NullTime
		notes        sql.NullString
		deletedAt    sql.NullTime
	)
	err := scan(
		&c.ID, &c.FirstName, &middleName, &c.LastName, &secondLast,
		&c.NationalID, &phone, &companyID, &permitExpiry, &c.Active, &notes,
		&c.CreatedAt, &c.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return err
	}
	c.MiddleName = middleName.String
	c.SecondLast = secondLast.String
	c.Phone = phone.String
	if companyID.Valid {
		v := companyID.Int64
		c.CompanyID = &v
	}
	if permitExpiry.Valid {
		t := permitExpiry.Time
		c.PermitExpiry = &t
	}
	c.Notes = notes.String
	if deletedAt.Valid {
		t := deletedAt.Time
		c.DeletedAt = &t
	}
	return nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return dErrors.Newf(dErrors.CodeContractorNotFound,
			"contratista con ID %d no encontrado", id)
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

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
