package domain

import "time"

// Company groups contractors under the firm that employs them.
type Company struct {
	ID        int64
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time
}
