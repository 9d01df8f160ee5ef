package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/cletusgizo/ZapPay-Global/internal/config"
	"github.com/cletusgizo/ZapPay-Global/internal/util"
)

const usersCollection = "users"

// Client wraps the Mongo connection and owns index setup.
type Client struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    config.MongoConfig
}

func NewClient(cfg config.MongoConfig, logger *zap.Logger) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeout)
	defer cancel()

	opts := options.Client().ApplyURI(cfg.URI)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	c := &Client{
		client: client,
		db:     client.Database(cfg.Database),
		cfg:    cfg,
	}

	if err := c.ensureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ensure indexes: %w", err)
	}

	util.Info("Mongo client initialized",
		zap.String("database", cfg.Database))

	return c, nil
}

// ensureIndexes creates the unique sparse index that backs email-conflict
// detection. Sparse so accounts without an email don't collide on null.
func (c *Client) ensureIndexes(ctx context.Context) error {
	users := c.db.Collection(usersCollection)

	_, err := users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "phone", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
	return err
}

func (c *Client) Users() *mongo.Collection {
	return c.db.Collection(usersCollection)
}

func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx, readpref.Primary()); err != nil {
		return fmt.Errorf("mongo ping failed: %w", err)
	}
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	if err := c.client.Disconnect(ctx); err != nil {
		util.Error("Failed to close mongo client", util.ErrorField(err))
		return err
	}
	util.Info("Mongo client closed")
	return nil
}
