package users

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
	"garita/pkg/httputil"
)

// Handler serves the user registry endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/usuarios", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type userPayload struct {
	PrimerNombre    *string `json:"primerNombre"`
	SegundoNombre   *string `json:"segundoNombre"`
	PrimerApellido  *string `json:"primerApellido"`
	SegundoApellido *string `json:"segundoApellido"`
	Cedula          *string `json:"cedula"`
	Email           *string `json:"email"`
	Telefono        *string `json:"telefono"`
	Password        *string `json:"password"`
	Rol             *string `json:"rol"`
	Activo          *bool   `json:"activo"`
}

func str(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}

	req := CreateRequest{
		FirstName:  str(payload.PrimerNombre),
		MiddleName: str(payload.SegundoNombre),
		LastName:   str(payload.PrimerApellido),
		SecondLast: str(payload.SegundoApellido),
		NationalID: str(payload.Cedula),
		Email:      str(payload.Email),
		Phone:      str(payload.Telefono),
		Password:   str(payload.Password),
	}
	if payload.Rol != nil {
		req.Role = domain.Role(*payload.Rol)
	}

	projection, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, projection)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	projections, err := h.svc.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, projections)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	projection, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, projection)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload userPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}

	req := UpdateRequest{
		FirstName:  payload.PrimerNombre,
		MiddleName: payload.SegundoNombre,
		LastName:   payload.PrimerApellido,
		SecondLast: payload.SegundoApellido,
		Phone:      payload.Telefono,
		Password:   payload.Password,
		Active:     payload.Activo,
	}
	if payload.Rol != nil {
		role := domain.Role(*payload.Rol)
		req.Role = &role
	}

	projection, err := h.svc.Update(r.Context(), id, req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, projection)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
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
