package domain

import "time"

// Vehicle is a contractor vehicle registered for facility access.
type Vehicle struct {
	ID              int64
	ContractorID    *int64
	Type            string
	Brand           string
	Color           string
	Plate           string
	HasLicense      bool
	InspectionValid bool
	TaxValid        bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
	DeletedAt       *time.Time
}
