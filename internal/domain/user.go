package domain

import "time"

// Role controls what a system user is allowed to do.
type Role string

const (
	RoleAdmin      Role = "ADMIN"
	RoleSupervisor Role = "SUPERVISOR"
	RoleOperator   Role = "OPERADOR"
	RoleSecurity   Role = "SEGURIDAD"
)

// User is a system operator who registers entries and exits.
// PasswordHash never leaves the service layer.
type User struct {
	ID           int64
	FirstName    string
	MiddleName   string
	LastName     string
	SecondLast   string
	NationalID   string
	Email        string
	Phone        string
	PasswordHash string
	Role         Role
	Active       bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// DisplayName is the short form shown on entry records: first name and
// first surname only.
func (u User) DisplayName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
