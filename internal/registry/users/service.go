package users

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
)

// UserStore is the persistence surface the service depends on.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, u *domain.User) error
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	SoftDelete(ctx context.Context, id int64) error
}

// Service hashes passwords on the way in and strips them on the way out.
type Service struct {
	store  UserStore
	logger *slog.Logger
}

// NewService constructs the user service.
func NewService(store UserStore, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Projection is the API view of a user; it never carries the hash.
type Projection struct {
	ID              int64  `json:"id"`
	PrimerNombre    string `json:"primerNombre"`
	SegundoNombre   string `json:"segundoNombre,omitempty"`
	PrimerApellido  string `json:"primerApellido"`
	SegundoApellido string `json:"segundoApellido,omitempty"`
	Cedula          string `json:"cedula"`
	Email           string `json:"email"`
	Telefono        string `json:"telefono,omitempty"`
	Rol             string `json:"rol"`
	Activo          bool   `json:"activo"`
}

// Project maps a user to its API view.
func Project(u *domain.User) Projection {
	return Projection{
		ID:              u.ID,
		PrimerNombre:    u.FirstName,
		SegundoNombre:   u.MiddleName,
		PrimerApellido:  u.LastName,
		SegundoApellido: u.SecondLast,
		Cedula:          u.NationalID,
		Email:           u.Email,
		Telefono:        u.Phone,
		Rol:             string(u.Role),
		Activo:          u.Active,
	}
}

// CreateRequest carries the fields of a new user.
type CreateRequest struct {
	FirstName  string
	MiddleName string
	LastName   string
	SecondLast string
	NationalID string
	Email      string
	Phone      string
	Password   string
	Role       domain.Role
}

func validRole(r domain.Role) bool {
	switch r {
	case domain.RoleAdmin, domain.RoleSupervisor, domain.RoleOperator, domain.RoleSecurity:
		return true
	}
	return false
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*Projection, error) {
	if req.FirstName == "" || req.LastName == "" || req.NationalID == "" ||
		req.Email == "" || req.Password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest,
			"primerNombre, primerApellido, cedula, email y password son requeridos")
	}
	role := req.Role
	if role == "" {
		role = domain.RoleOperator
	}
	if !validRole(role) {
		return nil, dErrors.Newf(dErrors.CodeBadRequest, "rol inválido: %s", role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
	}

	user := &domain.User{
		FirstName:    req.FirstName,
		MiddleName:   req.MiddleName,
		LastName:     req.LastName,
		SecondLast:   req.SecondLast,
		NationalID:   req.NationalID,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		Role:         role,
		Active:       true,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "role", string(user.Role))
	projection := Project(user)
	return &projection, nil
}

// UpdateRequest carries the mutable fields; nil leaves a field alone.
// Password, when present, is re-hashed.
type UpdateRequest struct {
	FirstName  *string
	MiddleName *string
	LastName   *string
	SecondLast *string
	Phone      *string
	Password   *string
	Role       *domain.Role
	Active     *bool
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateRequest) (*Projection, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, dErrors.Newf(dErrors.CodeUserNotFound, "usuario con ID %d no encontrado", id)
	}

	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.MiddleName != nil {
		user.MiddleName = *req.MiddleName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.SecondLast != nil {
		user.SecondLast = *req.SecondLast
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Role != nil {
		if !validRole(*req.Role) {
			return nil, dErrors.Newf(dErrors.CodeBadRequest, "rol inválido: %s", *req.Role)
		}
		user.Role = *req.Role
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "hash password")
		}
		user.PasswordHash = string(hash)
	}

	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}
	projection := Project(user)
	return &projection, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*Projection, error) {
	user, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, dErrors.Newf(dErrors.CodeUserNotFound, "usuario con ID %d no encontrado", id)
	}
	projection := Project(user)
	return &projection, nil
}

func (s *Service) List(ctx context.Context) ([]Projection, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Projection, 0, len(users))
	for i := range users {
		out = append(out, Project(&users[i]))
	}
	return out, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.SoftDelete(ctx, id)
}
