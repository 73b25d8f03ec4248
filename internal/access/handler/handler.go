// Package handler exposes the entry/exit workflow over HTTP. Routes and
// payload field names follow the operational vocabulary of the gate
// (ingresos, gafetes, contratistas).
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"garita/internal/access/service"
	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
	"garita/pkg/httputil"
)

//go:generate mockgen -source=handler.go -destination=mocks/mock_service.go -package=mocks

// EntryService is the workflow surface the handler depends on.
type EntryService interface {
	RegisterEntry(ctx context.Context, req service.EntryRequest, userID int64) (*domain.EntryProjection, error)
	RegisterExit(ctx context.Context, contractorID, userID int64, condition *domain.ReturnCondition) (*domain.EntryProjection, error)
	Update(ctx context.Context, entryID int64, req service.UpdateRequest) (*domain.EntryProjection, error)
	Get(ctx context.Context, entryID int64) (*domain.EntryProjection, error)
	List(ctx context.Context, page, limit int) (*domain.EntryPage, error)
}

// Handler translates HTTP to workflow calls.
type Handler struct {
	svc    EntryService
	logger *slog.Logger
}

// New constructs a Handler.
func New(svc EntryService, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// Routes mounts the entry endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Route("/ingresos", func(r chi.Router) {
		r.Post("/", h.registerEntry)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Patch("/{contratistaId}/salida", h.registerExit)
	})
}

type entryRequest struct {
	ContratistaID    int64  `json:"contratistaId"`
	GafeteID         *int64 `json:"gafeteId"`
	VehiculoID       *int64 `json:"vehiculoId"`
	PuntoEntradaID   *int64 `json:"puntoEntradaId"`
	TipoAutorizacion string `json:"tipoAutorizacion"`
	Observaciones    string `json:"observaciones"`
}

type entryUpdateRequest struct {
	TipoAutorizacion *string `json:"tipoAutorizacion"`
	Observaciones    *string `json:"observaciones"`
}

func (h *Handler) registerEntry(w http.ResponseWriter, r *http.Request) {
	userID, err := queryUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req entryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}
	if req.ContratistaID <= 0 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "contratistaId es requerido"))
		return
	}

	projection, err := h.svc.RegisterEntry(r.Context(), service.EntryRequest{
		ContractorID:  req.ContratistaID,
		BadgeID:       req.GafeteID,
		VehicleID:     req.VehiculoID,
		EntryPointID:  req.PuntoEntradaID,
		Authorization: domain.AuthorizationType(req.TipoAutorizacion),
		Notes:         req.Observaciones,
	}, userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, projection)
}

func (h *Handler) registerExit(w http.ResponseWriter, r *http.Request) {
	contractorID, err := pathID(r, "contratistaId")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	userID, err := queryUserID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var condition *domain.ReturnCondition
	if raw := r.URL.Query().Get("gafeteEstado"); raw != "" {
		c := domain.ReturnCondition(raw)
		condition = &c
	}

	projection, err := h.svc.RegisterExit(r.Context(), contractorID, userID, condition)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, projection)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var req entryUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}

	update := service.UpdateRequest{Notes: req.Observaciones}
	if req.TipoAutorizacion != nil {
		authorization := domain.AuthorizationType(*req.TipoAutorizacion)
		update.Authorization = &authorization
	}

	projection, err := h.svc.Update(r.Context(), entryID, update)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, projection)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	entryID, err := pathID(r, "id")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	projection, err := h.svc.Get(r.Context(), entryID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, projection)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := queryInt(r, "page", 1)
	limit := queryInt(r, "limit", 10)

	result, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	httputil.WriteError(w, err)
}

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.Newf(dErrors.CodeBadRequest, "%s debe ser un entero positivo", name)
	}
	return id, nil
}

func queryUserID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.URL.Query().Get("usuarioId"), 10, 64)
	if err != nil || id <= 0 {
		return 0, dErrors.New(dErrors.CodeBadRequest, "usuarioId es requerido")
	}
	return id, nil
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
