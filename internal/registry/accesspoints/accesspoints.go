// Package accesspoints manages the physical gates entries and exits are
// registered at.
package accesspoints

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/lib/pq"

	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
	"garita/pkg/httputil"
)

// Store persists access points in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const pointColumns = `
	id, nombre, codigo, ubicacion, descripcion, activo,
	fecha_creacion, fecha_actualizacion, fecha_eliminacion`

func (s *Store) Create(ctx context.Context, p *domain.AccessPoint) error {
	query := `
		INSERT INTO puntos_acceso (nombre, codigo, ubicacion, descripcion, activo)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, fecha_creacion, fecha_actualizacion
	`
	err := s.db.QueryRowContext(ctx, query,
		p.Name, p.Code, nullString(p.Location), nullString(p.Description), p.Active,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.Newf(dErrors.CodeConflict,
				"ya existe un punto de acceso con código %s", p.Code)
		}
		return fmt.Errorf("insert access point: %w", err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, p *domain.AccessPoint) error {
	query := `
		UPDATE puntos_acceso
		SET nombre = $2, codigo = $3, ubicacion = $4, descripcion = $5,
		    activo = $6, fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query,
		p.ID, p.Name, p.Code, nullString(p.Location), nullString(p.Description), p.Active,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return dErrors.Newf(dErrors.CodeConflict,
				"ya existe un punto de acceso con código %s", p.Code)
		}
		return fmt.Errorf("update access point: %w", err)
	}
	return requireRow(res, p.ID)
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.AccessPoint, error) {
	query := `SELECT` + pointColumns + `
		FROM puntos_acceso
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	p, err := scanPoint(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, fmt.Errorf("find access point: %w", err)
	}
	return p, nil
}

func (s *Store) List(ctx context.Context) ([]domain.AccessPoint, error) {
	query := `SELECT` + pointColumns + `
		FROM puntos_acceso
		WHERE fecha_eliminacion IS NULL
		ORDER BY codigo
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list access points: %w", err)
	}
	defer rows.Close()

	var points []domain.AccessPoint
	for rows.Next() {
		var p domain.AccessPoint
		if err := scanPointInto(&p, rows.Scan); err != nil {
			return nil, fmt.Errorf("scan access point: %w", err)
		}
		points = append(points, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate access points: %w", err)
	}
	return points, nil
}

func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE puntos_acceso
		SET fecha_eliminacion = now(), fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete access point: %w", err)
	}
	return requireRow(res, id)
}

func scanPoint(row *sql.Row) (*domain.AccessPoint, error) {
	var p domain.AccessPoint
	err := scanPointInto(&p, row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func scanPointInto(p *domain.AccessPoint, scan func(...any) error) error {
	var (
		location    sql.NullString
		description sql.NullString
		deletedAt   sql.NullTime
	)
	err := scan(
		&p.ID, &p.Name, &p.Code, &location, &description, &p.Active,
		&p.CreatedAt, &p.UpdatedAt, &deletedAt,
	)
	if err != nil {
		return err
	}
	p.Location = location.String
	p.Description = description.String
	if deletedAt.Valid {
		t := deletedAt.Time
		p.DeletedAt = &t
	}
	return nil
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return dErrors.Newf(dErrors.CodeNotFound, "punto de acceso con ID %d no encontrado", id)
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

// Handler serves the access point registry endpoints.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/puntos-acceso", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type pointPayload struct {
	Nombre      *string `json:"nombre"`
	Codigo      *string `json:"codigo"`
	Ubicacion   *string `json:"ubicacion"`
	Descripcion *string `json:"descripcion"`
	Activo      *bool   `json:"activo"`
}

type pointResponse struct {
	ID          int64  `json:"id"`
	Nombre      string `json:"nombre"`
	Codigo      string `json:"codigo"`
	Ubicacion   string `json:"ubicacion,omitempty"`
	Descripcion string `json:"descripcion,omitempty"`
	Activo      bool   `json:"activo"`
}

func toResponse(p *domain.AccessPoint) pointResponse {
	return pointResponse{
		ID:          p.ID,
		Nombre:      p.Name,
		Codigo:      p.Code,
		Ubicacion:   p.Location,
		Descripcion: p.Description,
		Activo:      p.Active,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload pointPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}
	if payload.Nombre == nil || *payload.Nombre == "" || payload.Codigo == nil || *payload.Codigo == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "nombre y codigo son requeridos"))
		return
	}

	point := domain.AccessPoint{
		Name:   *payload.Nombre,
		Code:   *payload.Codigo,
		Active: true,
	}
	if payload.Ubicacion != nil {
		point.Location = *payload.Ubicacion
	}
	if payload.Descripcion != nil {
		point.Description = *payload.Descripcion
	}
	if payload.Activo != nil {
		point.Active = *payload.Activo
	}

	if err := h.store.Create(r.Context(), &point); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(&point))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	points, err := h.store.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]pointResponse, 0, len(points))
	for i := range points {
		out = append(out, toResponse(&points[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	point, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if point == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeNotFound, "punto de acceso con ID %d no encontrado", id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(point))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	point, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if point == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeNotFound, "punto de acceso con ID %d no encontrado", id))
		return
	}

	var payload pointPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}
	if payload.Nombre != nil {
		point.Name = *payload.Nombre
	}
	if payload.Codigo != nil {
		point.Code = *payload.Codigo
	}
	if payload.Ubicacion != nil {
		point.Location = *payload.Ubicacion
	}
	if payload.Descripcion != nil {
		point.Description = *payload.Descripcion
	}
	if payload.Activo != nil {
		point.Active = *payload.Activo
	}

	if err := h.store.Update(r.Context(), point); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(point))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.SoftDelete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "id debe ser un entero positivo"))
		return 0, false
	}
	return id, true
}
