package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"garita/internal/domain"
)

type entryStore struct {
	q querier
}

const entryColumns = `
	id, contratista_id, vehiculo_id, gafete_id, punto_entrada_id,
	punto_salida_id, tipo_autorizacion, fecha_ingreso, fecha_salida,
	ingresado_por_id, sacado_por_id, dentro_fuera, observaciones,
	fecha_creacion, fecha_actualizacion, fecha_eliminacion`

func (s *entryStore) Create(ctx context.Context, e *domain.Entry) error {
	query := `
		INSERT INTO ingresos (
			contratista_id, vehiculo_id, gafete_id, punto_entrada_id,
			punto_salida_id, tipo_autorizacion, fecha_ingreso, fecha_salida,
			ingresado_por_id, sacado_por_id, dentro_fuera, observaciones
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, fecha_creacion, fecha_actualizacion
	`
	err := s.q.QueryRowContext(ctx, query,
		nullInt64(e.ContractorID),
		nullInt64(e.VehicleID),
		nullInt64(e.BadgeID),
		nullInt64(e.EntryPointID),
		nullInt64(e.ExitPointID),
		nullString(string(e.Authorization)),
		nullTime(e.EntryAt),
		nullTime(e.ExitAt),
		nullInt64(e.RegisteredByID),
		nullInt64(e.ExitRegisteredByID),
		e.Inside,
		nullString(e.Notes),
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("insert entry: %w", err)
	}
	return nil
}

func (s *entryStore) Update(ctx context.Context, e *domain.Entry) error {
	query := `
		UPDATE ingresos
		SET contratista_id = $2, vehiculo_id = $3, gafete_id = $4,
		    punto_entrada_id = $5, punto_salida_id = $6,
		    tipo_autorizacion = $7, fecha_ingreso = $8, fecha_salida = $9,
		    ingresado_por_id = $10, sacado_por_id = $11, dentro_fuera = $12,
		    observaciones = $13, fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	_, err := s.q.ExecContext(ctx, query,
		e.ID,
		nullInt64(e.ContractorID),
		nullInt64(e.VehicleID),
		nullInt64(e.BadgeID),
		nullInt64(e.EntryPointID),
		nullInt64(e.ExitPointID),
		nullString(string(e.Authorization)),
		nullTime(e.EntryAt),
		nullTime(e.ExitAt),
		nullInt64(e.RegisteredByID),
		nullInt64(e.ExitRegisteredByID),
		e.Inside,
		nullString(e.Notes),
	)
	if err != nil {
		if mapped := mapUniqueViolation(err); mapped != err {
			return mapped
		}
		return fmt.Errorf("update entry: %w", err)
	}
	return nil
}

func (s *entryStore) FindByID(ctx context.Context, id int64) (*domain.Entry, error) {
	query := `SELECT` + entryColumns + `
		FROM ingresos
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	entry, err := scanEntry(s.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("find entry by id: %w", err)
	}
	return entry, nil
}

func (s *entryStore) FindActiveByContractor(ctx context.Context, contractorID int64) (*domain.Entry, error) {
	query := `SELECT` + entryColumns + `
		FROM ingresos
		WHERE contratista_id = $1 AND dentro_fuera AND fecha_eliminacion IS NULL
		ORDER BY id DESC
		LIMIT 1
	`
	entry, err := scanEntry(s.q.QueryRowContext(ctx, query, contractorID))
	if err != nil {
		return nil, fmt.Errorf("find active entry: %w", err)
	}
	return entry, nil
}

func scanEntry(row *sql.Row) (*domain.Entry, error) {
	var (
		e             domain.Entry
		contractorID  sql.NullInt64
		vehicleID     sql.NullInt64
		badgeID       sql.NullInt64
		entryPointID  sql.NullInt64
		exitPointID   sql.NullInt64
		authorization sql.NullString
		entryAt       sql.NullTime
		exitAt        sql.NullTime
		registeredBy  sql.NullInt64
		exitUser      sql.NullInt64
		notes         sql.NullString
		deletedAt     sql.NullTime
	)

	err := row.Scan(
		&e.ID, &contractorID, &vehicleID, &badgeID, &entryPointID,
		&exitPointID, &authorization, &entryAt, &exitAt,
		&registeredBy, &exitUser, &e.Inside, &notes,
		&e.CreatedAt, &e.UpdatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	e.ContractorID = int64Ptr(contractorID)
	e.VehicleID = int64Ptr(vehicleID)
	e.BadgeID = int64Ptr(badgeID)
	e.EntryPointID = int64Ptr(entryPointID)
	e.ExitPointID = int64Ptr(exitPointID)
	e.Authorization = domain.AuthorizationType(authorization.String)
	e.EntryAt = timePtr(entryAt)
	e.ExitAt = timePtr(exitAt)
	e.RegisteredByID = int64Ptr(registeredBy)
	e.ExitRegisteredByID = int64Ptr(exitUser)
	e.Notes = notes.String
	e.DeletedAt = timePtr(deletedAt)
	return &e, nil
}
