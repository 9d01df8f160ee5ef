package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/cletusgizo/ZapPay-Global/internal/model"
	"github.com/cletusgizo/ZapPay-Global/internal/repository"
	"github.com/cletusgizo/ZapPay-Global/internal/util"
)

// UserRepository implements repository.UserRepository on MongoDB. All OTP and
// verification mutations are single findOneAndUpdate/updateOne calls so
// read-modify-write on a document is never observably interleaved.
type UserRepository struct {
	client *Client
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(client *Client, logger *zap.Logger) *UserRepository {
	return &UserRepository{client: client}
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := r.client.Users().InsertOne(ctx, user); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicateEmail
		}
		util.Error("Failed to create user",
			zap.String("user_id", user.ID),
			zap.Error(err))
		return fmt.Errorf("failed to create user: %w", err)
	}

	util.Info("User created",
		zap.String("user_id", user.ID))
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"phone": phone})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	user := &model.User{}
	err := r.client.Users().FindOne(ctx, filter).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]*model.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	cursor, err := r.client.Users().Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Update(ctx context.Context, id string, update repository.UserUpdate) (*model.User, error) {
	set := bson.M{}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Phone != nil {
		set["phone"] = *update.Phone
	}
	if update.PasswordHash != nil {
		set["passwordHash"] = *update.PasswordHash
	}
	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}

	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	after := options.After
	user := &model.User{}
	err := r.client.Users().FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		&options.FindOneAndUpdateOptions{ReturnDocument: &after},
	).Decode(user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrUserNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, repository.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.client.Users().DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrUserNotFound
	}

	util.Info("User deleted",
		zap.String("user_id", id))
	return nil
}

// SetOTP overwrites any outstanding challenge with the new code and expiry.
func (r *UserRepository) SetOTP(ctx context.Context, id, code string, expiresAt time.Time) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{"otp": code, "otpExpiresAt": expiresAt},
	})
}

func (r *UserRepository) ClearOTP(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{
		"$unset": bson.M{"otp": "", "otpExpiresAt": ""},
	})
}

func (r *UserRepository) MarkVerified(ctx context.Context, id string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set":   bson.M{"isVerified": true},
		"$unset": bson.M{"otp": "", "otpExpiresAt": ""},
	})
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{"lastLoginAt": at},
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.updateOne(ctx, id, bson.M{
		"$set": bson.M{"passwordHash": passwordHash},
	})
}

func (r *UserRepository) updateOne(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	res, err := r.client.Users().UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		util.Error("Failed to update user",
			zap.String("user_id", id),
			zap.Error(err))
		return fmt.Errorf("failed to update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) HealthCheck(ctx context.Context) error {
	return r.client.HealthCheck(ctx)
}

func (r *UserRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.client.cfg.QueryTimeout)
}
