package domain

import "time"

// AuthorizationType distinguishes routine automatic approvals from
// supervisor-authorized manual entries.
type AuthorizationType string

const (
	AuthorizationAutomatic AuthorizationType = "AUTOMATIC"
	AuthorizationManual    AuthorizationType = "MANUAL"
)

// ValidAuthorizationType reports whether v is a known authorization type.
func ValidAuthorizationType(v AuthorizationType) bool {
	return v == AuthorizationAutomatic || v == AuthorizationManual
}

// Entry records one contractor stay inside the facility, from entry
// timestamp until exit timestamp. Inside is true iff ExitAt is nil.
type Entry struct {
	ID                 int64
	ContractorID       *int64
	VehicleID          *int64
	BadgeID            *int64
	EntryPointID       *int64
	ExitPointID        *int64
	Authorization      AuthorizationType
	EntryAt            *time.Time
	ExitAt             *time.Time
	RegisteredByID     *int64
	ExitRegisteredByID *int64
	Inside             bool
	Notes              string
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

// BadgeAssignment is one row of the badge loan ledger: who held which
// badge for which entry. A nil ReturnedAt marks the loan as open.
type BadgeAssignment struct {
	ID              int64
	BadgeID         int64
	ContractorID    *int64
	EntryID         *int64
	AssignedAt      time.Time
	ReturnedAt      *time.Time
	ReturnCondition ReturnCondition
	Notes           string
}

// Open reports whether the badge is still on loan.
func (a BadgeAssignment) Open() bool { return a.ReturnedAt == nil }
