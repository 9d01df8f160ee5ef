package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cletusgizo/ZapPay-Global/internal/hashing"
	"github.com/cletusgizo/ZapPay-Global/internal/model"
	"github.com/cletusgizo/ZapPay-Global/internal/repository"
	"github.com/cletusgizo/ZapPay-Global/internal/repository/memory"
)

func newUserService() (*UserService, *memory.UserRepository, *hashing.Hasher) {
	repo := memory.NewUserRepository()
	hasher := hashing.NewHasher(4)
	return NewUserService(repo, hasher, zap.NewNop()), repo, hasher
}

func seedUser(t *testing.T, repo *memory.UserRepository, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, IsVerified: true}
	require.NoError(t, repo.Create(context.Background(), user))
	return user
}

func TestUserServiceList(t *testing.T) {
	svc, repo, _ := newUserService()
	ctx := context.Background()

	seedUser(t, repo, "alice@example.com")
	seedUser(t, repo, "bob@example.com")

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestUserServiceGet(t *testing.T) {
	svc, repo, _ := newUserService()
	ctx := context.Background()

	user := seedUser(t, repo, "alice@example.com")

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = svc.Get(ctx, "no-such-user")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("partial update leaves other fields alone", func(t *testing.T) {
		svc, repo, _ := newUserService()
		user := seedUser(t, repo, "alice@example.com")

		phone := "+2348012345678"
		got, err := svc.Update(ctx, user.ID, UserUpdateRequest{Phone: &phone})
		require.NoError(t, err)
		assert.Equal(t, phone, got.Phone)
		assert.Equal(t, "alice@example.com", got.Email)
	})

	t.Run("password is re-hashed", func(t *testing.T) {
		svc, repo, hasher := newUserService()
		user := seedUser(t, repo, "alice@example.com")

		password := "newpassword1"
		_, err := svc.Update(ctx, user.ID, UserUpdateRequest{Password: &password})
		require.NoError(t, err)

		stored, err := repo.GetByID(ctx, user.ID)
		require.NoError(t, err)
		assert.NotEqual(t, password, stored.PasswordHash)
		assert.NoError(t, hasher.ComparePassword(stored.PasswordHash, password))
	})

	t.Run("email change to a taken address is rejected", func(t *testing.T) {
		svc, repo, _ := newUserService()
		alice := seedUser(t, repo, "alice@example.com")
		seedUser(t, repo, "bob@example.com")

		email := "bob@example.com"
		_, err := svc.Update(ctx, alice.ID, UserUpdateRequest{Email: &email})
		assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _, _ := newUserService()

		phone := "+2348012345678"
		_, err := svc.Update(ctx, "no-such-user", UserUpdateRequest{Phone: &phone})
		assert.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}

func TestUserServiceDelete(t *testing.T) {
	svc, repo, _ := newUserService()
	ctx := context.Background()

	user := seedUser(t, repo, "alice@example.com")

	require.NoError(t, svc.Delete(ctx, user.ID))

	_, err := repo.GetByID(ctx, user.ID)
	assert.ErrorIs(t, err, repository.ErrUserNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, user.ID), repository.ErrUserNotFound)
}
