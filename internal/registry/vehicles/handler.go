package vehicles

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
	"garita/pkg/httputil"
)

// Handler serves the vehicle registry endpoints.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler {
	return &Handler{store: store}
}

func (h *Handler) Routes(r chi.Router) {
	r.Route("/vehiculos", func(r chi.Router) {
		r.Post("/", h.create)
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
		r.Patch("/{id}", h.update)
		r.Delete("/{id}", h.remove)
	})
}

type vehiclePayload struct {
	ContratistaID *int64  `json:"contratistaId"`
	Tipo          *string `json:"tipo"`
	Marca         *string `json:"marca"`
	Color         *string `json:"color"`
	NumeroPlaca   *string `json:"numeroPlaca"`
	TieneLicencia *bool   `json:"tieneLicencia"`
	DekraAlDia    *bool   `json:"dekraAlDia"`
	MarchamoAlDia *bool   `json:"marchamoAlDia"`
}

type vehicleResponse struct {
	ID            int64  `json:"id"`
	ContratistaID *int64 `json:"contratistaId,omitempty"`
	Tipo          string `json:"tipo"`
	Marca         string `json:"marca,omitempty"`
	Color         string `json:"color,omitempty"`
	NumeroPlaca   string `json:"numeroPlaca"`
	TieneLicencia bool   `json:"tieneLicencia"`
	DekraAlDia    bool   `json:"dekraAlDia"`
	MarchamoAlDia bool   `json:"marchamoAlDia"`
}

func toResponse(v *domain.Vehicle) vehicleResponse {
	return vehicleResponse{
		ID:            v.ID,
		ContratistaID: v.ContractorID,
		Tipo:          v.Type,
		Marca:         v.Brand,
		Color:         v.Color,
		NumeroPlaca:   v.Plate,
		TieneLicencia: v.HasLicense,
		DekraAlDia:    v.InspectionValid,
		MarchamoAlDia: v.TaxValid,
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var payload vehiclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}
	if payload.NumeroPlaca == nil || *payload.NumeroPlaca == "" || payload.Tipo == nil || *payload.Tipo == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "tipo y numeroPlaca son requeridos"))
		return
	}

	vehicle := domain.Vehicle{
		ContractorID: payload.ContratistaID,
		Type:         *payload.Tipo,
		Plate:        *payload.NumeroPlaca,
	}
	if payload.Marca != nil {
		vehicle.Brand = *payload.Marca
	}
	if payload.Color != nil {
		vehicle.Color = *payload.Color
	}
	if payload.TieneLicencia != nil {
		vehicle.HasLicense = *payload.TieneLicencia
	}
	if payload.DekraAlDia != nil {
		vehicle.InspectionValid = *payload.DekraAlDia
	}
	if payload.MarchamoAlDia != nil {
		vehicle.TaxValid = *payload.MarchamoAlDia
	}

	if err := h.store.Create(r.Context(), &vehicle); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toResponse(&vehicle))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	var contractorID *int64
	if raw := r.URL.Query().Get("contratistaId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "contratistaId debe ser un entero positivo"))
			return
		}
		contractorID = &id
	}

	vehicles, err := h.store.List(r.Context(), contractorID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	out := make([]vehicleResponse, 0, len(vehicles))
	for i := range vehicles {
		out = append(out, toResponse(&vehicles[i]))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	vehicle, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if vehicle == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeNotFound, "vehículo con ID %d no encontrado", id))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(vehicle))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	vehicle, err := h.store.FindByID(r.Context(), id)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if vehicle == nil {
		httputil.WriteError(w, dErrors.Newf(dErrors.CodeNotFound, "vehículo con ID %d no encontrado", id))
		return
	}

	var payload vehiclePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "cuerpo de la solicitud inválido"))
		return
	}
	if payload.ContratistaID != nil {
		vehicle.ContractorID = payload.ContratistaID
	}
	if payload.Tipo != nil {
		vehicle.Type = *payload.Tipo
	}
	if payload.Marca != nil {
		vehicle.Brand = *payload.Marca
	}
	if payload.Color != nil {
		vehicle.Color = *payload.Color
	}
	if payload.NumeroPlaca != nil {
		vehicle.Plate = *payload.NumeroPlaca
	}
	if payload.TieneLicencia != nil {
		vehicle.HasLicense = *payload.TieneLicencia
	}
	if payload.DekraAlDia != nil {
		vehicle.InspectionValid = *payload.DekraAlDia
	}
	if payload.MarchamoAlDia != nil {
		vehicle.TaxValid = *payload.MarchamoAlDia
	}

	if err := h.store.Update(r.Context(), vehicle); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponse(vehicle))
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
