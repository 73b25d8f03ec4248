// Package vehicles manages the contractor vehicle registry. Compliance
// flags (licencia, dekra, marchamo) are recorded here but enforcement of
// vehicle-based entry rules stays with the gatehouse operator.
package vehicles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
)

// Store persists vehicles in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const vehicleColumns = `
	id, contratista_id, tipo, marca, color, numero_placa,
	tiene_licencia, dekra_al_dia, marchamo_al_dia,
	fecha_creacion, fecha_actualizacion, fecha_eliminacion`

func (s *Store) Create(ctx context.Context, v *domain.Vehicle) error {
	query := `
		INSERT INTO vehiculos (
			contratista_id, tipo, marca, color, numero_placa,
			tiene_licencia, dekra_al_dia, marchamo_al_dia
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, fecha_creacion, fecha_actualizacion
	`
	err := s.db.QueryRowContext(ctx, query,
		nullInt64(v.ContractorID), v.Type, v.Brand, v.Color,
		v.Plate, v.HasLicense, v.InspectionValid, v.TaxValid,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.Newf(dErrors.CodeConflict,
				"ya existe un vehículo con placa %s", v.Plate)
		}
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, v *domain.Vehicle) error {
	query := `
		UPDATE vehiculos
		SET contratista_id = $2, tipo = $3, marca = $4, color = $5,
		    numero_placa = $6, tiene_licencia = $7, dekra_al_dia = $8,
		    marchamo_al_dia = $9, fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query,
		v.ID, nullInt64(v.ContractorID), v.Type, v.Brand,
		v.Color, v.Plate, v.HasLicense, v.InspectionValid, v.TaxValid,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.Newf(dErrors.CodeConflict,
				"ya existe un vehículo con placa %s", v.Plate)
		}
		return fmt.Errorf("update vehicle: %w", err)
	}
	return requireRow(res, v.ID)
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.Vehicle, error) {
	query := `SELECT` + vehicleColumns + `
		FROM vehiculos
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	v, err := scanVehicle(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("find vehicle: %w", err)
	}
	return v, nil
}

// List returns vehicles, optionally filtered to one contractor.
func (s *Store) List(ctx context.Context, contractorID *int64) ([]domain.Vehicle, error) {
	query := `SELECT` + vehicleColumns + `
		FROM vehiculos
		WHERE fecha_eliminacion IS NULL`
	args := []any{}
	if contractorID != nil {
		query += ` AND contratista_id = $1`
		args = append(args, *contractorID)
	}
	query += ` ORDER BY numero_placa`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []domain.Vehicle
	for rows.Next() {
		var v domain.Vehicle
		if err := scanVehicleInto(&v, rows.Scan); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vehicles: %w", err)
	}
	return vehicles, nil
}

func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE vehiculos
		SET fecha_eliminacion = now(), fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete vehicle: %w", err)
	}
	return requireRow(res, id)
}

func scanVehicle(row *sql.Row) (*domain.Vehicle, error) {
	var v domain.Vehicle
	err := scanVehicleInto(&v, row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func scanVehicleInto(v *domain.Vehicle, scan func(...any) error) error {
	var (
		contractorID sql.NullInt64
		deletedAt    sql.NullTime
	)
	err := scan(
		&v.ID, &contractorID, &v.Type, &v.Brand, &v.Color, &v.Plate,
		&v.HasLicense, &v.InspectionValid, &v.TaxValid,
		&v.CreatedAt, &v.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return err
	}
	if contractorID.Valid {
		id := contractorID.Int64
		v.ContractorID = &id
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		v.DeletedAt = &t
	}
	return nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return dErrors.Newf(dErrors.CodeNotFound, "vehículo con ID %d no encontrado", id)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}
