package contractors

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
	"garita/pkg/httputil"
)

// ContractorStore is the persistence surface the handler depends on.
type ContractorStore interface {
	Create(ctx context.Context, c *domain.Contractor) error
	Update(ctx context.Context, c *domain.Contractor) error
	FindByID(ctx context.Context, id int64) (*domain.Contractor, error)
	List(ctx context.Context) ([]domain.Contractor, error)
	SoftDelete(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
}

// Handler serves the contractor registry endpoints.
type Handler struct {
	store  ContractorStore
	logger *slog.Logger
}

func NewHandler(store ContractorStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// Routes mounts the registry endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/contratistas", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
		r.Patch("/{id}/restaurar", h.restore)
	})
}

type contractorPayload struct {
	PrimerNombre           string  `json:"primerNombre"`
	SegundoNombre          string  `json:"segundoNombre"`
	PrimerApellido         string  `json:"primerApellido"`
	SegundoApellido        string  `json:"segundoApellido"`
	Cedula                 string  `json:"cedula"`
	Telefono               string  `json:"telefono"`
	EmpresaID              *int64  `json:"empresaId"`
	FechaVencimientoPraind *string `json:"fechaVencimientoPraind"`
	Activo                 *bool   `json:"activo"`
	Notas                  string  `json:"notas"`
}

type contractorResponse struct {
	ID                     int64  `json:"id"`
	NombreCompleto         string `json:"nombreCompleto"`
	PrimerNombre           string `json:"primerNombre"`
	SegundoNombre          string `json:"segundoNombre,omitempty"`
	PrimerApellido         string `json:"primerApellido"`
	SegundoApellido        string `json:"segundoApellido,omitempty"`
	Cedula                 string `json:"cedula"`
	Telefono               string `json:"telefono,omitempty"`
	EmpresaID              *int64 `json:"empresaId,omitempty"`
	FechaVencimientoPraind string `json:"fechaVencimientoPraind,omitempty"`
	Activo                 bool   `json:"activo"`
	Notas                  string `json:"notas,omitempty"`
}

func toResponse(c *domain.Contractor) contractorResponse {
	resp := contractorResponse{
		ID:              c.ID,
		NombreCompleto:  c.FullName(),
		PrimerNombre:    c.FirstName,
		SegundoNombre:   c.MiddleName,
		PrimerApellido:  c.LastName,
		SegundoApellido: c.SecondLast,
		Cedula:          c.NationalID,
		Telefono:        c.Phone,
		EmpresaID:       c.CompanyID,
		Activo:          c.Active,
		Notas:           c.Notes,
	}
	if c.PermitExpiry != nil {
		resp.FechaVencimientoPraind = c.PermitExpiry.Format("2006-01-02")
	}
	return resp
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload contractorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}
	if payload.PrimerNombre == "" || payload.PrimerApellido == "" || payload.Cedula == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest,
			"primerNombre, primerApellido y cedula son requeridos"))
		return
	}

	contractor := domain.Contractor{
		FirstName:  payload.PrimerNombre,
		MiddleName: payload.SegundoNombre,
		LastName:   payload.PrimerApellido,
		SecondLast: payload.SegundoApellido,
		NationalID: payload.Cedula,
		Phone:      payload.Telefono,
		CompanyID:  payload.EmpresaID,
		Active:     true,
		Notes:      payload.Notas,
	}
	if payload.Activo != nil {
		contractor.Active = *payload.Activo
	}
	if payload.FechaVencimientoPraind != nil {
		expiry, err := time.Parse("2006-01-02", *payload.FechaVencimientoPraind)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest,
				"fechaVencimientoPraind debe tener formato AAAA-MM-DD"))
			return
		}
		contractor.PermitExpiry = &expiry
	}

	if err := h.store.Create(r.Context(), &contractor); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(&contractor))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	contractors, err := h.store.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]contractorResponse, 0, len(contractors))
	for i := range contractors {
		out = append(out, toResponse(&contractors[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	contractor, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if contractor == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeContractorNotFound,
			"contratista con ID %d no encontrado", id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(contractor))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	existing, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if existing == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeContractorNotFound,
			"contratista con ID %d no encontrado", id))
		return
	}

	var payload contractorPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}
	applyPayload(existing, payload)
	if payload.FechaVencimientoPraind != nil {
		expiry, err := time.Parse("2006-01-02", *payload.FechaVencimientoPraind)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest,
				"fechaVencimientoPraind debe tener formato AAAA-MM-DD"))
			return
		}
		existing.PermitExpiry = &expiry
	}

	if err := h.store.Update(r.Context(), existing); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(existing))
}

func applyPayload(c *domain.Contractor, p contractorPayload) {
	if p.PrimerNombre != "" {
		c.FirstName = p.PrimerNombre
	}
	if p.SegundoNombre != "" {
		c.MiddleName = p.SegundoNombre
	}
	if p.PrimerApellido != "" {
		c.LastName = p.PrimerApellido
	}
	if p.SegundoApellido != "" {
		c.SecondLast = p.SegundoApellido
	}
	if p.Cedula != "" {
		c.NationalID = p.Cedula
	}
	if p.Telefono != "" {
		c.Phone = p.Telefono
	}
	if p.EmpresaID != nil {
		c.CompanyID = p.EmpresaID
	}
	if p.Activo != nil {
		c.Active = *p.Activo
	}
	if p.Notas != "" {
		c.Notes = p.Notas
	}
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.SoftDelete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.Restore(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	contractor, err := h.store.FindByID(r.Context(), id)
	if err != nil || contractor == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeContractorNotFound,
			"contratista con ID %d no encontrado", id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(contractor))
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "id debe ser un entero positivo"))
		return 0, false
	}
	return id, true
}
