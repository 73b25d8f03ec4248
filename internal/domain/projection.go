package domain

import (
	"fmt"
	"time"
)

// The projection types are the API view of an entry: related entities
// flattened to id-plus-name summaries, users stripped down to what the
// guard booth screen needs.

type UserSummary struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"nombre"`
}

type CompanySummary struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
}

type ContractorSummary struct {
	ID         int64           `json:"id"`
	FullName   string          `json:"nombreCompleto"`
	NationalID string          `json:"cedula"`
	Company    *CompanySummary `json:"empresa,omitempty"`
}

type BadgeSummary struct {
	ID     int64       `json:"id"`
	Code   string      `json:"codigo"`
	Status BadgeStatus `json:"estado"`
}

type VehicleSummary struct {
	ID    int64  `json:"id"`
	Plate string `json:"numeroPlaca"`
	Type  string `json:"tipo"`
}

type AccessPointSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"nombre"`
	Code string `json:"codigo"`
}

// EntryProjection is the wire representation of an entry with its
// relations resolved.
type EntryProjection struct {
	ID               int64               `json:"id"`
	Contractor       *ContractorSummary  `json:"contratista"`
	Vehicle          *VehicleSummary     `json:"vehiculo,omitempty"`
	Badge            *BadgeSummary       `json:"gafete,omitempty"`
	EntryPoint       *AccessPointSummary `json:"puntoEntrada,omitempty"`
	ExitPoint        *AccessPointSummary `json:"puntoSalida,omitempty"`
	Authorization    AuthorizationType   `json:"tipoAutorizacion,omitempty"`
	EntryAt          *time.Time          `json:"fechaIngreso"`
	ExitAt           *time.Time          `json:"fechaSalida"`
	RegisteredBy     *UserSummary        `json:"ingresadoPor,omitempty"`
	ExitRegisteredBy *UserSummary        `json:"sacadoPor,omitempty"`
	Inside           bool                `json:"dentroFuera"`
	Notes            string              `json:"observaciones,omitempty"`
	Duration         string              `json:"duracion,omitempty"`
}

// EntryPage is the paginated list envelope for entries.
type EntryPage struct {
	Data       []EntryProjection `json:"data"`
	Total      int               `json:"total"`
	Page       int               `json:"page"`
	TotalPages int               `json:"totalPages"`
}

// StayDuration renders the time between entry and exit (or now for open
// entries) as "3h 25m".
func StayDuration(entryAt, exitAt *time.Time, now time.Time) string {
	if entryAt == nil {
		return ""
	}
	end := now
	if exitAt != nil {
		end = *exitAt
	}
	d := end.Sub(*entryAt)
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
}
