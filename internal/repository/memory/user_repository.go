// Package memory provides an in-memory credential store used by tests and
// local development. It mirrors the Mongo repository's semantics, including
// email uniqueness and atomic per-record updates.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cletusgizo/ZapPay-Global/internal/model"
	"github.com/cletusgizo/ZapPay-Global/internal/repository"
)

type UserRepository struct {
	mu    sync.RWMutex
	users map[string]*model.User
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{users: make(map[string]*model.User)}
}

func (r *UserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.Email != "" {
		for _, u := range r.users {
			if u.Email == user.Email {
				return repository.ErrDuplicateEmail
			}
		}
	}

	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	r.users[user.ID] = clone(user)
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return clone(user), nil
}

func (r *UserRepository) GetByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Email != "" && u.Email == email {
			return clone(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *UserRepository) GetByPhone(_ context.Context, phone string) (*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, u := range r.users {
		if u.Phone != "" && u.Phone == phone {
			return clone(u), nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *UserRepository) List(_ context.Context) ([]*model.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*model.User, 0, len(r.users))
	for _, u := range r.users {
		users = append(users, clone(u))
	}
	return users, nil
}

func (r *UserRepository) Update(_ context.Context, id string, update repository.UserUpdate) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}

	if update.Email != nil && *update.Email != user.Email {
		for otherID, u := range r.users {
			if otherID != id && u.Email == *update.Email {
				return nil, repository.ErrDuplicateEmail
			}
		}
		user.Email = *update.Email
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.PasswordHash != nil {
		user.PasswordHash = *update.PasswordHash
	}

	return clone(user), nil
}

func (r *UserRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return repository.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *UserRepository) SetOTP(_ context.Context, id, code string, expiresAt time.Time) error {
	return r.mutate(id, func(u *model.User) {
		u.OTP = code
		u.OTPExpiresAt = &expiresAt
	})
}

func (r *UserRepository) ClearOTP(_ context.Context, id string) error {
	return r.mutate(id, func(u *model.User) {
		u.OTP = ""
		u.OTPExpiresAt = nil
	})
}

func (r *UserRepository) MarkVerified(_ context.Context, id string) error {
	return r.mutate(id, func(u *model.User) {
		u.IsVerified = true
		u.OTP = ""
		u.OTPExpiresAt = nil
	})
}

func (r *UserRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	return r.mutate(id, func(u *model.User) {
		u.LastLoginAt = &at
	})
}

func (r *UserRepository) UpdatePassword(_ context.Context, id, passwordHash string) error {
	return r.mutate(id, func(u *model.User) {
		u.PasswordHash = passwordHash
	})
}

func (r *UserRepository) HealthCheck(_ context.Context) error {
	return nil
}

func (r *UserRepository) mutate(id string, fn func(*model.User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	fn(user)
	return nil
}

func clone(u *model.User) *model.User {
	out := *u
	if u.OTPExpiresAt != nil {
		t := *u.OTPExpiresAt
		out.OTPExpiresAt = &t
	}
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		out.LastLoginAt = &t
	}
	return &out
}
