package blacklist

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
	"garita/pkg/httputil"
)

// Handler serves the blacklist endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/lista-negra", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Patch("/{id}/retirar", h.withdraw)
		r.Delete("/{id}", h.remove)
	})
}

type entryPayload struct {
	ContratistaID int64   `json:"contratistaId"`
	GrupoRiesgo   *string `json:"grupoRiesgo"`
	Causa         *string `json:"causa"`
	NivelRiesgo   *string `json:"nivelRiesgo"`
	Observaciones *string `json:"observaciones"`
}

type entryResponse struct {
	ID             int64      `json:"id"`
	ContratistaID  int64      `json:"contratistaId"`
	GrupoRiesgo    string     `json:"grupoRiesgo"`
	Causa          string     `json:"causa"`
	NivelRiesgo    string     `json:"nivelRiesgo"`
	Observaciones  string     `json:"observaciones,omitempty"`
	EntradaActiva  bool       `json:"entradaActiva"`
	FechaInclusion time.Time  `json:"fechaInclusion"`
	FechaRetiro    *time.Time `json:"fechaRetiro"`
}

func toResponse(b *domain.BlacklistEntry) entryResponse {
	return entryResponse{
		ID:             b.ID,
		ContratistaID:  b.ContractorID,
		GrupoRiesgo:    b.RiskGroup,
		Causa:          b.Cause,
		NivelRiesgo:    b.RiskLevel,
		Observaciones:  b.Notes,
		EntradaActiva:  b.Active,
		FechaInclusion: b.IncludedAt,
		FechaRetiro:    b.WithdrawnAt,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload entryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}
	if payload.ContratistaID <= 0 || payload.GrupoRiesgo == nil || payload.Causa == nil || payload.NivelRiesgo == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest,
			"contratistaId, grupoRiesgo, causa y nivelRiesgo son requeridos"))
		return
	}

	req := CreateRequest{
		ContractorID: payload.ContratistaID,
		RiskGroup:    *payload.GrupoRiesgo,
		Cause:        *payload.Causa,
		RiskLevel:    *payload.NivelRiesgo,
	}
	if payload.Observaciones != nil {
		req.Notes = *payload.Observaciones
	}

	entry, err := h.svc.Create(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(entry))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	entries, err := h.svc.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]entryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toResponse(&entries[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entry, err := h.svc.Get(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(entry))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var payload entryPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}

	entry, err := h.svc.Update(r.Context(), id, UpdateRequest{
		RiskGroup: payload.GrupoRiesgo,
		Cause:     payload.Causa,
		RiskLevel: payload.NivelRiesgo,
		Notes:     payload.Observaciones,
	})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(entry))
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	entry, err := h.svc.Withdraw(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(entry))
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
