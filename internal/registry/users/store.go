// Package users manages the system operators who register entries and
// exits. Password hashes never leave this package's service layer.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
)

// Store persists users in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const userColumns = `
	id, primer_nombre, segundo_nombre, primer_apellido, segundo_apellido,
	cedula, email, telefono, password_hash, rol, activo,
	fecha_creacion, fecha_actualizacion, fecha_eliminacion`

func (s *Store) Create(ctx context.Context, u *domain.User) error {
	query := `
		INSERT INTO usuarios (
			primer_nombre, segundo_nombre, primer_apellido, segundo_apellido,
			cedula, email, telefono, password_hash, rol, activo
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, fecha_creacion, fecha_actualizacion
	`
	err := s.db.QueryRowContext(ctx, query,
		u.FirstName, nullString(u.MiddleName), u.LastName, nullString(u.SecondLast),
		u.NationalID, u.Email, nullString(u.Phone), u.PasswordHash,
		string(u.Role), u.Active,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.New(dErrors.CodeConflict,
				"ya existe un usuario con esa cédula o email")
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, u *domain.User) error {
	query := `
		UPDATE usuarios
		SET primer_nombre = $2, segundo_nombre = $3, primer_apellido = $4,
		    segundo_apellido = $5, cedula = $6, email = $7, telefono = $8,
		    password_hash = $9, rol = $10, activo = $11,
		    fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query,
		u.ID, u.FirstName, nullString(u.MiddleName), u.LastName,
		nullString(u.SecondLast), u.NationalID, u.Email, nullString(u.Phone),
		u.PasswordHash, string(u.Role), u.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.New(dErrors.CodeConflict,
				"ya existe un usuario con esa cédula o email")
		}
		return fmt.Errorf("update user: %w", err)
	}
	return requireRow(res, u.ID)
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.User, error) {
	query := `SELECT` + userColumns + `
		FROM usuarios
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	u, err := scanUser(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

// FindByEmail resolves login credentials; only active users can sign in.
func (s *Store) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT` + userColumns + `
		FROM usuarios
		WHERE email = $1 AND activo AND fecha_eliminacion IS NULL
	`
	u, err := scanUser(s.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return u, nil
}

func (s *Store) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT` + userColumns + `
		FROM usuarios
		WHERE fecha_eliminacion IS NULL
		ORDER BY primer_apellido, primer_nombre
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUserInto(&u, rows.Scan); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE usuarios
		SET fecha_eliminacion = now(), fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete user: %w", err)
	}
	return requireRow(res, id)
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	err := scanUserInto(&u, row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func scanUserInto(u *domain.User, scan func(...any) error) error {
	var (
		middleName sql.NullString
		secondLast sql.NullString
		phone      sql.NullString
		deletedAt  sql.NullTime
	)
	err := scan(
		&u.ID, &u.FirstName, &middleName, &u.LastName, &secondLast,
		&u.NationalID, &u.Email, &phone, &u.PasswordHash, &u.Role, &u.Active,
		&u.CreatedAt, &u.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return err
	}
	u.MiddleName = middleName.String
	u.SecondLast = secondLast.String
	u.Phone = phone.String
	if deletedAt.Valid {
		t := deletedAt.Time
		u.DeletedAt = &t
	}
	return nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return dErrors.Newf(dErrors.CodeUserNotFound, "usuario con ID %d no encontrado", id)
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
