package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"garita/internal/domain"
)

type contractorStore struct {
	q querier
}

func (s *contractorStore) FindActiveWithBlacklist(ctx context.Context, id int64) (*domain.Contractor, error) {
	query := `
		SELECT id, primer_nombre, segundo_nombre, primer_apellido,
		       segundo_apellido, cedula, telefono, empresa_id,
		       fecha_vencimiento_praind, activo, notas,
		       fecha_creacion, fecha_actualizacion, fecha_eliminacion
		FROM contratistas
		WHERE id = $1 AND activo AND fecha_eliminacion IS NULL
	`
	var (
		c            domain.Contractor
		middleName   sql.NullString
		secondLast   sql.NullString
		phone        sql.NullString
		companyID    sql.NullInt64
		permitExpiry sql.NullTime
		notes        sql.NullString
		deletedAt    sql.NullTime
	)
	err := s.q.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.FirstName, &middleName, &c.LastName,
		&secondLast, &c.NationalID, &phone, &companyID,
		&permitExpiry, &c.Active, &notes,
		&c.CreatedAt, &c.UpdatedAt, &deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find contractor: %w", err)
	}

	c.MiddleName = middleName.String
	c.SecondLast = secondLast.String
	c.Phone = phone.String
	c.CompanyID = int64Ptr(companyID)
	c.PermitExpiry = timePtr(permitExpiry)
	c.Notes = notes.String
	c.DeletedAt = timePtr(deletedAt)

	blacklist, err := s.blacklistFor(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	c.Blacklist = blacklist
	return &c, nil
}

func (s *contractorStore) blacklistFor(ctx context.Context, contractorID int64) ([]domain.BlacklistEntry, error) {
	query := `
		SELECT id, contratista_id, grupo_riesgo, causa, nivel_riesgo,
		       observaciones, entrada_activa, fecha_inclusion, fecha_retiro,
		       fecha_creacion, fecha_actualizacion, fecha_eliminacion
		FROM lista_negra
		WHERE contratista_id = $1 AND fecha_eliminacion IS NULL
		ORDER BY id
	`
	rows, err := s.q.QueryContext(ctx, query, contractorID)
	if err != nil {
		return nil, fmt.Errorf("query blacklist: %w", err)
	}
	defer rows.Close()

	var entries []domain.BlacklistEntry
	for rows.Next() {
		var (
			b           domain.BlacklistEntry
			notes       sql.NullString
			withdrawnAt sql.NullTime
			deletedAt   sql.NullTime
		)
		err := rows.Scan(
			&b.ID, &b.ContractorID, &b.RiskGroup, &b.Cause, &b.RiskLevel,
			&notes, &b.Active, &b.IncludedAt, &withdrawnAt,
			&b.CreatedAt, &b.UpdatedAt, &deletedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan blacklist entry: %w", err)
		}
		b.Notes = notes.String
		b.WithdrawnAt = timePtr(withdrawnAt)
		b.DeletedAt = timePtr(deletedAt)
		entries = append(entries, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate blacklist entries: %w", err)
	}
	return entries, nil
}

type badgeStore struct {
	q querier
}

func (s *badgeStore) FindByID(ctx context.Context, id int64) (*domain.Badge, error) {
	query := `
		SELECT id, codigo, tipo, estado, descripcion, contratista_id,
		       fecha_creacion, fecha_actualizacion, fecha_eliminacion
		FROM gafetes
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	var (
		b            domain.Badge
		description  sql.NullString
		contractorID sql.NullInt64
		deletedAt    sql.NullTime
	)
	err := s.q.QueryRowContext(ctx, query, id).Scan(
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
	b.ContractorID = int64Ptr(contractorID)
	b.DeletedAt = timePtr(deletedAt)
	return &b, nil
}

type userStore struct {
	q querier
}

func (s *userStore) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `
		SELECT id, primer_nombre, segundo_nombre, primer_apellido,
		       segundo_apellido, cedula, email, telefono, password_hash,
		       rol, activo, fecha_creacion, fecha_actualizacion,
		       fecha_eliminacion
		FROM usuarios
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	var (
		u          domain.User
		middleName sql.NullString
		secondLast sql.NullString
		phone      sql.NullString
		deletedAt  sql.NullTime
	)
	err := s.q.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.FirstName, &middleName, &u.LastName,
		&secondLast, &u.NationalID, &u.Email, &phone, &u.PasswordHash,
		&u.Role, &u.Active, &u.CreatedAt, &u.UpdatedAt,
		&deletedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	u.MiddleName = middleName.String
	u.SecondLast = secondLast.String
	u.Phone = phone.String
	u.DeletedAt = timePtr(deletedAt)
	return &u, nil
}
