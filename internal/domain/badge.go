package domain

import "time"

// BadgeStatus is the lifecycle state of a physical badge. Only ACTIVE
// badges may be loaned out.
type BadgeStatus string

const (
	BadgeActive   BadgeStatus = "ACTIVE"
	BadgeInactive BadgeStatus = "INACTIVE"
	BadgeLost     BadgeStatus = "LOST"
)

// ReturnCondition classifies the state of a badge when it comes back.
type ReturnCondition string

const (
	ReturnGood    ReturnCondition = "GOOD"
	ReturnDamaged ReturnCondition = "DAMAGED"
	ReturnLost    ReturnCondition = "LOST"
)

// ValidReturnCondition reports whether v is a known return condition.
func ValidReturnCondition(v ReturnCondition) bool {
	return v == ReturnGood || v == ReturnDamaged || v == ReturnLost
}

// Badge is a physical access token. ContractorID is a denormalized
// convenience pointer; the assignment ledger is the source of truth for
// who currently holds the badge.
type Badge struct {
	ID           int64
	Code         string
	Type         string
	Status       BadgeStatus
	Description  string
	ContractorID *int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}
