package domain

import (
	"strings"
	"time"
)

// Contractor is an external worker who may be granted facility access.
// PermitExpiry is the PRAIND safety-permit expiry date; a contractor
// without one is not eligible for entry.
type Contractor struct {
	ID           int64
	FirstName    string
	MiddleName   string
	LastName     string
	SecondLast   string
	NationalID   string
	Phone        string
	CompanyID    *int64
	PermitExpiry *time.Time
	Active       bool
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time

	// Blacklist holds the contractor's blacklist entries when the store
	// loaded them alongside the row.
	Blacklist []BlacklistEntry
}

// FullName joins the present name parts with single spaces.
func (c Contractor) FullName() string {
	parts := make([]string, 0, 4)
	for _, p := range []string{c.FirstName, c.MiddleName, c.LastName, c.SecondLast} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

// BlacklistEntry is an administrative bar on a contractor. The contractor
// is blacklisted while at least one entry is active.
type BlacklistEntry struct {
	ID           int64
	ContractorID int64
	RiskGroup    string
	Cause        string
	RiskLevel    string
	Notes        string
	Active       bool
	IncludedAt   time.Time
	WithdrawnAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
