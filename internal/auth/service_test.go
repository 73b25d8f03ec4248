package auth

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"garita/internal/domain"
	"garita/pkg/audit"
	dErrors "garita/pkg/domainerrors"
)

type fakeCredentials struct {
	users map[string]*domain.User
}

func (f *fakeCredentials) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func newService(t *testing.T) (*Service, *audit.InMemoryStore) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	store := &fakeCredentials{users: map[string]*domain.User{
		"laura@garita.local": {
			ID:           7,
			FirstName:    "Laura",
			LastName:     "Mora",
			Email:        "laura@garita.local",
			PasswordHash: string(hash),
			Role:         domain.RoleOperator,
			Active:       true,
		},
	}}
	sink := audit.NewInMemoryStore()
	tokens := NewTokenService("test-signing-key", time.Hour)
	return NewService(store, tokens, audit.NewPublisher(sink), slog.Default()), sink
}

func TestLoginIssuesValidToken(t *testing.T) {
	svc, sink := newService(t)

	result, err := svc.Login(context.Background(), "laura@garita.local", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.UserID)
	assert.Equal(t, "Laura Mora", result.Nombre)
	assert.Equal(t, string(domain.RoleOperator), result.Rol)

	claims, err := svc.tokens.ValidateToken(result.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, string(domain.RoleOperator), claims.Role)

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionUserLogin, events[0].Action)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, sink := newService(t)

	_, err := svc.Login(context.Background(), "laura@garita.local", "wrong")
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionLoginFailed, events[0].Action)
	require.NotNil(t, events[0].UserID)
	assert.Equal(t, int64(7), *events[0].UserID)
}

func TestLoginUnknownEmailSameError(t *testing.T) {
	svc, sink := newService(t)

	_, err := svc.Login(context.Background(), "nobody@garita.local", "hunter22")
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))

	wrongPassSvc, _ := newService(t)
	_, err2 := wrongPassSvc.Login(context.Background(), "laura@garita.local", "wrong")
	assert.Equal(t, err.Error(), err2.Error(), "unknown email and wrong password look identical")

	events := sink.Events()
	require.Len(t, events, 1)
	assert.Nil(t, events[0].UserID)
}

func TestLoginRequiresCredentials(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Login(context.Background(), "", "")
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestValidateTokenExpired(t *testing.T) {
	tokens := NewTokenService("test-signing-key", -time.Minute)
	token, err := tokens.GenerateToken(7, "OPERADOR")
	require.NoError(t, err)

	_, err = tokens.ValidateToken(token)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}

func TestValidateTokenWrongKey(t *testing.T) {
	token, err := NewTokenService("key-one", time.Hour).GenerateToken(7, "OPERADOR")
	require.NoError(t, err)

	_, err = NewTokenService("key-two", time.Hour).ValidateToken(token)
	assert.Equal(t, dErrors.CodeUnauthorized, dErrors.CodeOf(err))
}
