package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"garita/internal/domain"
)

// Reader is the SQL read model: it resolves an entry's relations with
// one joined query instead of per-entity lookups.
type Reader struct {
	db *sql.DB
}

// NewReader wraps an open database pool.
func NewReader(db *sql.DB) *Reader {
	return &Reader{db: db}
}

const projectionQuery = `
	SELECT i.id, i.tipo_autorizacion, i.fecha_ingreso, i.fecha_salida,
	       i.dentro_fuera, i.observaciones,
	       c.id, c.primer_nombre, c.segundo_nombre, c.primer_apellido,
	       c.segundo_apellido, c.cedula,
	       e.id, e.nombre,
	       g.id, g.codigo, g.estado,
	       v.id, v.numero_placa, v.tipo,
	       pe.id, pe.nombre, pe.codigo,
	       ps.id, ps.nombre, ps.codigo,
	       ui.id, ui.primer_nombre, ui.primer_apellido,
	       us.id, us.primer_nombre, us.primer_apellido
	FROM ingresos i
	LEFT JOIN contratistas c ON c.id = i.contratista_id
	LEFT JOIN empresas e ON e.id = c.empresa_id
	LEFT JOIN gafetes g ON g.id = i.gafete_id
	LEFT JOIN vehiculos v ON v.id = i.vehiculo_id
	LEFT JOIN puntos_acceso pe ON pe.id = i.punto_entrada_id
	LEFT JOIN puntos_acceso ps ON ps.id = i.punto_salida_id
	LEFT JOIN usuarios ui ON ui.id = i.ingresado_por_id
	LEFT JOIN usuarios us ON us.id = i.sacado_por_id
	WHERE i.fecha_eliminacion IS NULL`

// GetProjection returns the entry with relations resolved, or (nil, nil).
func (r *Reader) GetProjection(ctx context.Context, id int64) (*domain.EntryProjection, error) {
	query := projectionQuery + ` AND i.id = $1`

	rows, err := r.db.QueryContext(ctx, query, id)
	if err != nil {
		return nil, fmt.Errorf("query entry projection: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("query entry projection: %w", err)
		}
		return nil, nil
	}
	p, err := scanProjection(rows, time.Now())
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ListProjections returns one page of entries, newest first, plus the
// total non-deleted row count.
func (r *Reader) ListProjections(ctx context.Context, limit, offset int) ([]domain.EntryProjection, int, error) {
	var total int
	countQuery := `SELECT count(*) FROM ingresos WHERE fecha_eliminacion IS NULL`
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count entries: %w", err)
	}

	query := projectionQuery + `
	ORDER BY i.id DESC
	LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("query entry projections: %w", err)
	}
	defer rows.Close()

	now := time.Now()
	projections := make([]domain.EntryProjection, 0, limit)
	for rows.Next() {
		p, err := scanProjection(rows, now)
		if err != nil {
			return nil, 0, err
		}
		projections = append(projections, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate entry projections: %w", err)
	}
	return projections, total, nil
}

func scanProjection(rows *sql.Rows, now time.Time) (*domain.EntryProjection, error) {
	var (
		p             domain.EntryProjection
		authorization sql.NullString
		entryAt       sql.NullTime
		exitAt        sql.NullTime
		notes         sql.NullString

		contractorID sql.NullInt64
		firstName    sql.NullString
		middleName   sql.NullString
		lastName     sql.NullString
		secondLast   sql.NullString
		nationalID   sql.NullString

		companyID   sql.NullInt64
		companyName sql.NullString

		badgeID     sql.NullInt64
		badgeCode   sql.NullString
		badgeStatus sql.NullString

		vehicleID    sql.NullInt64
		vehiclePlate sql.NullString
		vehicleType  sql.NullString

		entryPointID   sql.NullInt64
		entryPointName sql.NullString
		entryPointCode sql.NullString

		exitPointID   sql.NullInt64
		exitPointName sql.NullString
		exitPointCode sql.NullString

		inUserID    sql.NullInt64
		inUserFirst sql.NullString
		inUserLast  sql.NullString

		outUserID    sql.NullInt64
		outUserFirst sql.NullString
		outUserLast  sql.NullString
	)

	err := rows.Scan(
		&p.ID, &authorization, &entryAt, &exitAt, &p.Inside, &notes,
		&contractorID, &firstName, &middleName, &lastName, &secondLast, &nationalID,
		&companyID, &companyName,
		&badgeID, &badgeCode, &badgeStatus,
		&vehicleID, &vehiclePlate, &vehicleType,
		&entryPointID, &entryPointName, &entryPointCode,
		&exitPointID, &exitPointName, &exitPointCode,
		&inUserID, &inUserFirst, &inUserLast,
		&outUserID, &outUserFirst, &outUserLast,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan entry projection: %w", err)
	}

	p.Authorization = domain.AuthorizationType(authorization.String)
	p.EntryAt = timePtr(entryAt)
	p.ExitAt = timePtr(exitAt)
	p.Notes = notes.String
	p.Duration = domain.StayDuration(p.EntryAt, p.ExitAt, now)

	if contractorID.Valid {
		contractor := domain.Contractor{
			FirstName:  firstName.String,
			MiddleName: middleName.String,
			LastName:   lastName.String,
			SecondLast: secondLast.String,
		}
		summary := domain.ContractorSummary{
			ID:         contractorID.Int64,
			FullName:   contractor.FullName(),
			NationalID: nationalID.String,
		}
		if companyID.Valid {
			summary.Company = &domain.CompanySummary{ID: companyID.Int64, Name: companyName.String}
		}
		p.Contractor = &summary
	}
	if badgeID.Valid {
		p.Badge = &domain.BadgeSummary{
			ID:     badgeID.Int64,
			Code:   badgeCode.String,
			Status: domain.BadgeStatus(badgeStatus.String),
		}
	}
	if vehicleID.Valid {
		p.Vehicle = &domain.VehicleSummary{
			ID:    vehicleID.Int64,
			Plate: vehiclePlate.String,
			Type:  vehicleType.String,
		}
	}
	if entryPointID.Valid {
		p.EntryPoint = &domain.AccessPointSummary{
			ID:   entryPointID.Int64,
			Name: entryPointName.String,
			Code: entryPointCode.String,
		}
	}
	if exitPointID.Valid {
		p.ExitPoint = &domain.AccessPointSummary{
			ID:   exitPointID.Int64,
			Name: exitPointName.String,
			Code: exitPointCode.String,
		}
	}
	if inUserID.Valid {
		u := domain.User{FirstName: inUserFirst.String, LastName: inUserLast.String}
		p.RegisteredBy = &domain.UserSummary{ID: inUserID.Int64, DisplayName: u.DisplayName()}
	}
	if outUserID.Valid {
		u := domain.User{FirstName: outUserFirst.String, LastName: outUserLast.String}
		p.ExitRegisteredBy = &domain.UserSummary{ID: outUserID.Int64, DisplayName: u.DisplayName()}
	}
	return &p, nil
}
