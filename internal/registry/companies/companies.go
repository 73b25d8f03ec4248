// Package companies is the employer registry contractors belong to.
package companies

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

// Store persists companies in PostgreSQL.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, c *domain.Company) error {
	query := `
		INSERT INTO empresas (nombre)
		VALUES ($1)
		RETURNING id, fecha_creacion, fecha_actualizacion
	`
	err := s.db.QueryRowContext(ctx, query, c.Name).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return dErrors.Newf(dErrors.CodeConflict, "ya existe una empresa con nombre %s", c.Name)
		}
		return fmt.Errorf("insert company: %w", err)
	}
	return nil
}

func (s *Store) FindByID(ctx context.Context, id int64) (*domain.Company, error) {
	query := `
		SELECT id, nombre, fecha_creacion, fecha_actualizacion
		FROM empresas
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	var c domain.Company
	err := s.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find company: %w", err)
	}
	return &c, nil
}

func (s *Store) List(ctx context.Context) ([]domain.Company, error) {
	query := `
		SELECT id, nombre, fecha_creacion, fecha_actualizacion
		FROM empresas
		WHERE fecha_eliminacion IS NULL
		ORDER BY nombre
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()

	var companies []domain.Company
	for rows.Next() {
		var c domain.Company
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan company: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate companies: %w", err)
	}
	return companies, nil
}

func (s *Store) Rename(ctx context.Context, id int64, name string) error {
	query := `
		UPDATE empresas
		SET nombre = $2, fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, id, name)
	if err != nil {
		return fmt.Errorf("rename company: %w", err)
	}
	return requireRow(res, id)
}

func (s *Store) SoftDelete(ctx context.Context, id int64) error {
	query := `
		UPDATE empresas
		SET fecha_eliminacion = now(), fecha_actualizacion = now()
		WHERE id = $1 AND fecha_eliminacion IS NULL
	`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("soft delete company: %w", err)
	}
	return requireRow(res, id)
}

func requireRow(res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return dErrors.Newf(dErrors.CodeNotFound, "empresa con ID %d no encontrada", id)
	}
	return nil
}

// Handler serves the company registry endpoints.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/empresas", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type companyPayload struct {
	Nombre string `json:"nombre"`
}

type companyResponse struct {
	ID     int64  `json:"id"`
	Nombre string `json:"nombre"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload companyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Nombre == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "nombre es requerido"))
		return
	}

	company := domain.Company{Name: payload.Nombre}
	if err := h.store.Create(r.Context(), &company); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, companyResponse{ID: company.ID, Nombre: company.Name})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	companies, err := h.store.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]companyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, companyResponse{ID: c.ID, Nombre: c.Name})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	company, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if company == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeNotFound, "empresa con ID %d no encontrada", id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, companyResponse{ID: company.ID, Nombre: company.Name})
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload companyPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.Nombre == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "nombre es requerido"))
		return
	}
	if err := h.store.Rename(r.Context(), id, payload.Nombre); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, companyResponse{ID: id, Nombre: payload.Nombre})
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
