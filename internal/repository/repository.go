// Package repository defines the credential store contract the account
// lifecycle depends on. Implementations must provide atomic per-document
// update semantics and enforce email uniqueness.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cletusgizo/ZapPay-Global/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("user with this email already exists")
)

// UserUpdate carries the partial fields of a user update. Nil means "leave
// unchanged".
type UserUpdate struct {
	Email        *string
	Phone        *string
	PasswordHash *string
}

// UserRepository persists account records.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByPhone(ctx context.Context, phone string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, id string, update UserUpdate) (*model.User, error)
	Delete(ctx context.Context, id string) error

	// OTP and verification state. SetOTP overwrites any outstanding
	// challenge; MarkVerified flips the verification flag and clears the
	// challenge in a single document update.
	SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error
	ClearOTP(ctx context.Context, id string) error
	MarkVerified(ctx context.Context, id string) error

	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error

	HealthCheck(ctx context.Context) error
}
