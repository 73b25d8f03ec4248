package domain

import "time"

// AccessPoint is a physical gate or door where entries and exits are
// registered.
type AccessPoint struct {
	ID          int64
	Name        string
	Code        string
	Location    string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}
