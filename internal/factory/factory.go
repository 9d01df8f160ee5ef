package factory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cletusgizo/ZapPay-Global/internal/config"
	"github.com/cletusgizo/ZapPay-Global/internal/events"
	"github.com/cletusgizo/ZapPay-Global/internal/hashing"
	"github.com/cletusgizo/ZapPay-Global/internal/mail"
	mongorepo "github.com/cletusgizo/ZapPay-Global/internal/repository/mongo"
	"github.com/cletusgizo/ZapPay-Global/internal/service"
	"github.com/cletusgizo/ZapPay-Global/internal/token"
	"github.com/cletusgizo/ZapPay-Global/internal/util"
)

// Factory manages the lifecycle of all application dependencies
type Factory struct {
	config *config.Config

	mongoClient *mongorepo.Client
	publisher   events.Publisher

	userRepository *mongorepo.UserRepository
	hasher         *hashing.Hasher
	signer         *token.Signer
	mailer         *mail.SMTPMailer

	authService *service.AuthService
	userService *service.UserService

	closeOnce sync.Once
}

// NewFactory loads configuration and initializes all dependencies.
func NewFactory() (*Factory, error) {
	cfg := config.LoadConfig()

	util.Init(cfg.Environment, cfg.Logging.Level, cfg.Logging.Format)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	f := &Factory{config: cfg}

	mongoClient, err := mongorepo.NewClient(cfg.Mongo, util.Get())
	if err != nil {
		return nil, fmt.Errorf("mongo: %w", err)
	}
	f.mongoClient = mongoClient
	f.userRepository = mongorepo.NewUserRepository(mongoClient, util.Get())

	f.hasher = hashing.NewHasher(hashing.DefaultCost)

	signer, err := token.NewSigner(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("token signer: %w", err)
	}
	f.signer = signer

	mailer, err := mail.NewSMTPMailer(cfg.SMTP, cfg.Server.BaseURL, util.Get())
	if err != nil {
		return nil, fmt.Errorf("mailer: %w", err)
	}
	f.mailer = mailer

	if cfg.Kafka.Enabled {
		f.publisher = events.NewKafkaPublisher(cfg.Kafka, util.Get())
	} else {
		f.publisher = events.NopPublisher{}
		util.Info("Kafka disabled, account events will be dropped")
	}

	f.authService = service.NewAuthService(
		f.userRepository,
		f.hasher,
		f.signer,
		f.mailer,
		f.publisher,
		cfg.OTP,
		util.Get(),
	)
	f.userService = service.NewUserService(f.userRepository, f.hasher, util.Get())

	util.Info("Factory initialized successfully",
		util.String("environment", cfg.Environment),
		util.Bool("kafka_enabled", cfg.Kafka.Enabled),
	)

	return f, nil
}

func (f *Factory) Config() *config.Config {
	return f.config
}

func (f *Factory) AuthService() *service.AuthService {
	return f.authService
}

func (f *Factory) UserService() *service.UserService {
	return f.userService
}

func (f *Factory) Signer() *token.Signer {
	return f.signer
}

// HealthCheck verifies connectivity of the external collaborators.
func (f *Factory) HealthCheck(ctx context.Context) error {
	if f.mongoClient == nil {
		return fmt.Errorf("mongo client not initialized")
	}
	return f.mongoClient.HealthCheck(ctx)
}

func (f *Factory) Close() error {
	f.closeOnce.Do(func() {
		util.Info("Shutting down factory...")

		if f.publisher != nil {
			if err := f.publisher.Close(); err != nil {
				util.Error("Failed to close event publisher", util.ErrorField(err))
			}
		}

		if f.mongoClient != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := f.mongoClient.Close(ctx); err != nil {
				util.Error("Failed to close mongo client", util.ErrorField(err))
			}
		}

		util.Sync()
		util.Info("Factory shutdown completed")
	})

	return nil
}
