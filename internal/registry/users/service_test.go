package users

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"garita/internal/domain"
	dErrors "garita/pkg/domainerrors"
)

type fakeStore struct {
	users  map[int64]*domain.User
	nextID int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{users: map[int64]*domain.User{}}
}

func (f *fakeStore) Create(_ context.Context, u *domain.User) error {
	f.nextID++
	u.ID = f.nextID
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeStore) Update(_ context.Context, u *domain.User) error {
	clone := *u
	f.users[u.ID] = &clone
	return nil
}

func (f *fakeStore) FindByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	clone := *u
	return &clone, nil
}

func (f *fakeStore) List(_ context.Context) ([]domain.User, error) {
	var out []domain.User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) SoftDelete(_ context.Context, id int64) error {
	delete(f.users, id)
	return nil
}

func TestCreateHashesPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, slog.Default())

	projection, err := svc.Create(context.Background(), CreateRequest{
		FirstName:  "Laura",
		LastName:   "Mora",
		NationalID: "1-1111-1111",
		Email:      "laura@garita.local",
		Password:   "hunter22",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleOperator, domain.Role(projection.Rol), "role defaults to operator")

	stored := store.users[projection.ID]
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))
}

func TestProjectionNeverExposesHash(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, slog.Default())

	projection, err := svc.Create(context.Background(), CreateRequest{
		FirstName: "Laura", LastName: "Mora", NationalID: "1-1111-1111",
		Email: "laura@garita.local", Password: "hunter22",
	})
	require.NoError(t, err)

	raw, err := json.Marshal(projection)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "password")
	assert.NotContains(t, string(raw), "hash")
}

func TestCreateRejectsInvalidRole(t *testing.T) {
	svc := NewService(newFakeStore(), slog.Default())

	_, err := svc.Create(context.Background(), CreateRequest{
		FirstName: "Laura", LastName: "Mora", NationalID: "1-1111-1111",
		Email: "laura@garita.local", Password: "hunter22", Role: "GERENTE",
	})
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestCreateRequiresFields(t *testing.T) {
	svc := NewService(newFakeStore(), slog.Default())

	_, err := svc.Create(context.Background(), CreateRequest{FirstName: "Laura"})
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestUpdateRehashesPassword(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, slog.Default())

	projection, err := svc.Create(context.Background(), CreateRequest{
		FirstName: "Laura", LastName: "Mora", NationalID: "1-1111-1111",
		Email: "laura@garita.local", Password: "hunter22",
	})
	require.NoError(t, err)
	oldHash := store.users[projection.ID].PasswordHash

	newPassword := "correct-horse"
	_, err = svc.Update(context.Background(), projection.ID, UpdateRequest{Password: &newPassword})
	require.NoError(t, err)

	newHash := store.users[projection.ID].PasswordHash
	assert.NotEqual(t, oldHash, newHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(newHash), []byte("correct-horse")))
}

func TestUpdateMissingUser(t *testing.T) {
	svc := NewService(newFakeStore(), slog.Default())

	name := "Laura"
	_, err := svc.Update(context.Background(), 99, UpdateRequest{FirstName: &name})
	assert.Equal(t, dErrors.CodeUserNotFound, dErrors.CodeOf(err))
}
