package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/cletusgizo/ZapPay-Global/internal/hashing"
	"github.com/cletusgizo/ZapPay-Global/internal/model"
	"github.com/cletusgizo/ZapPay-Global/internal/repository"
	"github.com/cletusgizo/ZapPay-Global/internal/util"
)

// UserService handles plain account CRUD outside the authentication flow.
// All results are redacted views.
type UserService struct {
	users  repository.UserRepository
	hasher *hashing.Hasher
	logger *zap.Logger
}

func NewUserService(users repository.UserRepository, hasher *hashing.Hasher, logger *zap.Logger) *UserService {
	return &UserService{
		users:  users,
		hasher: hasher,
		logger: logger,
	}
}

// UserUpdateRequest carries the updatable account fields. Nil leaves a field
// unchanged; a supplied password is re-hashed before it is stored.
type UserUpdateRequest struct {
	Email    *string `json:"email,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (s *UserService) List(ctx context.Context) ([]*model.PublicUser, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*model.PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

func (s *UserService) Get(ctx context.Context, id string) (*model.PublicUser, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return user.Public(), nil
}

func (s *UserService) Update(ctx context.Context, id string, req UserUpdateRequest) (*model.PublicUser, error) {
	update := repository.UserUpdate{}
	if req.Email != nil {
		email := util.NormalizeEmail(*req.Email)
		update.Email = &email
	}
	if req.Phone != nil {
		phone := util.NormalizePhone(*req.Phone)
		update.Phone = &phone
	}
	if req.Password != nil {
		hash, err := s.hasher.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		update.PasswordHash = &hash
	}

	user, err := s.users.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User updated",
		util.String("user_id", id))

	return user.Public(), nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("User removed",
		util.String("user_id", id))
	return nil
}
