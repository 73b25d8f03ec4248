package badges

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

// BadgeStore is the persistence surface the handler depends on.
type BadgeStore interface {
	Create(ctx context.Context, b *domain.Badge) error
	Update(ctx context.Context, b *domain.Badge) error
	FindByID(ctx context.Context, id int64) (*domain.Badge, error)
	List(ctx context.Context) ([]domain.Badge, error)
	SoftDelete(ctx context.Context, id int64) error
	History(ctx context.Context, badgeID int64) ([]domain.BadgeAssignment, error)
}

// Handler serves the badge registry endpoints.
type Handler struct {
	store  BadgeStore
	logger *slog.Logger
}

func NewHandler(store BadgeStore, logger *slog.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/gafetes", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
		r.Get("/{id}/historial", h.history)
	})
}

type badgePayload struct {
	Codigo        string  `json:"codigo"`
	Tipo          string  `json:"tipo"`
	Estado        *string `json:"estado"`
	Descripcion   string  `json:"descripcion"`
	ContratistaID *int64  `json:"contratistaId"`
}

type badgeResponse struct {
	ID            int64  `json:"id"`
	Codigo        string `json:"codigo"`
	Tipo          string `json:"tipo"`
	Estado        string `json:"estado"`
	Descripcion   string `json:"descripcion,omitempty"`
	ContratistaID *int64 `json:"contratistaId,omitempty"`
}

type historyResponse struct {
	ID               int64      `json:"id"`
	GafeteID         int64      `json:"gafeteId"`
	ContratistaID    *int64     `json:"contratistaId,omitempty"`
	IngresoID        *int64     `json:"ingresoId,omitempty"`
	FechaAsignacion  time.Time  `json:"fechaAsignacion"`
	FechaDevolucion  *time.Time `json:"fechaDevolucion"`
	EstadoDevolucion string     `json:"estadoDevolucion,omitempty"`
	Observaciones    string     `json:"observaciones,omitempty"`
}

func toResponse(b *domain.Badge) badgeResponse {
	return badgeResponse{
		ID:            b.ID,
		Codigo:        b.Code,
		Tipo:          b.Type,
		Estado:        string(b.Status),
		Descripcion:   b.Description,
		ContratistaID: b.ContractorID,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload badgePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}
	if payload.Codigo == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "codigo es requerido"))
		return
	}

	badge := domain.Badge{
		Code:         payload.Codigo,
		Type:         payload.Tipo,
		Status:       domain.BadgeActive,
		Description:  payload.Descripcion,
		ContractorID: payload.ContratistaID,
	}
	if badge.Type == "" {
		badge.Type = "CONTRACTOR"
	}
	if payload.Estado != nil {
		status := domain.BadgeStatus(*payload.Estado)
		if status != domain.BadgeActive && status != domain.BadgeInactive && status != domain.BadgeLost {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "estado inválido: %s", *payload.Estado))
			return
		}
		badge.Status = status
	}

	if err := h.store.Create(r.Context(), &badge); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(&badge))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	badges, err := h.store.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]badgeResponse, 0, len(badges))
	for i := range badges {
		out = append(out, toResponse(&badges[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	badge, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if badge == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadgeNotFound, "gafete con ID %d no encontrado", id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(badge))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	badge, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if badge == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadgeNotFound, "gafete con ID %d no encontrado", id))
		return
	}

	var payload badgePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}
	if payload.Codigo != "" {
		badge.Code = payload.Codigo
	}
	if payload.Tipo != "" {
		badge.Type = payload.Tipo
	}
	if payload.Descripcion != "" {
		badge.Description = payload.Descripcion
	}
	if payload.ContratistaID != nil {
		badge.ContractorID = payload.ContratistaID
	}
	if payload.Estado != nil {
		status := domain.BadgeStatus(*payload.Estado)
		if status != domain.BadgeActive && status != domain.BadgeInactive && status != domain.BadgeLost {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "estado inválido: %s", *payload.Estado))
			return
		}
		badge.Status = status
	}

	if err := h.store.Update(r.Context(), badge); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(badge))
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

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	badge, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if badge == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadgeNotFound, "gafete con ID %d no encontrado", id))
		return
	}

	history, err := h.store.History(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]historyResponse, 0, len(history))
	for _, a := range history {
		out = append(out, historyResponse{
			ID:               a.ID,
			GafeteID:         a.BadgeID,
			ContratistaID:    a.ContractorID,
			IngresoID:        a.EntryID,
			FechaAsignacion:  a.AssignedAt,
			FechaDevolucion:  a.ReturnedAt,
			EstadoDevolucion: string(a.ReturnCondition),
			Observaciones:    a.Notes,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "id debe ser un entero positivo"))
		return 0, false
	}
	return id, true
}
