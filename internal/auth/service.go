package auth

import (
	"context"
	"log/slog"

	"golang.org/x/crypto/bcrypt"

	"garita/internal/domain"
	"garita/pkg/audit"
	dErrors "garita/pkg/domainerrors"
)

// CredentialStore resolves login credentials.
type CredentialStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Service checks operator credentials and hands out tokens. Failed and
// successful logins both leave an audit trail.
type Service struct {
	store  CredentialStore
	tokens *TokenService
	audit  *audit.Publisher
	logger *slog.Logger
}

func NewService(store CredentialStore, tokens *TokenService, publisher *audit.Publisher, logger *slog.Logger) *Service {
	return &Service{store: store, tokens: tokens, audit: publisher, logger: logger}
}

// LoginResult is the successful login response.
type LoginResult struct {
	Token  string `json:"token"`
	UserID int64  `json:"usuarioId"`
	Nombre string `json:"nombre"`
	Rol    string `json:"rol"`
}

// Login verifies the credentials and returns a signed token. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "email y password son requeridos")
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, s.denied(ctx, nil, email)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, s.denied(ctx, &user.ID, email)
	}

	token, err := s.tokens.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "sign token")
	}

	if err := s.audit.Emit(ctx, audit.Event{
		Action: audit.ActionUserLogin,
		UserID: &user.ID,
	}); err != nil {
		s.logger.Warn("audit emit failed", "action", audit.ActionUserLogin, "error", err)
	}
	s.logger.Info("user logged in", "user_id", user.ID, "role", string(user.Role))

	return &LoginResult{
		Token:  token,
		UserID: user.ID,
		Nombre: user.DisplayName(),
		Rol:    string(user.Role),
	}, nil
}

func (s *Service) denied(ctx context.Context, userID *int64, email string) error {
	if err := s.audit.Emit(ctx, audit.Event{
		Action: audit.ActionLoginFailed,
		UserID: userID,
		Reason: "invalid credentials",
	}); err != nil {
		s.logger.Warn("audit emit failed", "action", audit.ActionLoginFailed, "error", err)
	}
	s.logger.Info("login rejected", "email", email)
	return dErrors.New(dErrors.CodeUnauthorized, "credenciales inválidas")
}
