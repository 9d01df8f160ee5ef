// Package events publishes account lifecycle events to Kafka. Publishing is
// strictly best-effort: failures are logged and never block or fail the
// operation that produced the event.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/cletusgizo/ZapPay-Global/internal/config"
	"github.com/cletusgizo/ZapPay-Global/internal/util"
)

const (
	EventUserRegistered = "user.registered"
	EventUserVerified   = "user.verified"
	EventUserLogin      = "user.login"
)

// AccountEvent is the wire shape of a published event.
type AccountEvent struct {
	Event      string    `json:"event"`
	UserID     string    `json:"user_id"`
	Email      string    `json:"email,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits account lifecycle events.
type Publisher interface {
	Publish(ctx context.Context, event, userID, email string)
	Close() error
}

// KafkaPublisher writes account events to a single topic keyed by user id.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	logger *zap.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}

	util.Info("Kafka account-event publisher initialized",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic))

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.Topic,
		logger: logger,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event, userID, email string) {
	payload, err := json.Marshal(AccountEvent{
		Event:      event,
		UserID:     userID,
		Email:      email,
		OccurredAt: time.Now().UTC(),
	})
	if err != nil {
		p.logger.Error("Failed to encode account event",
			util.String("event", event),
			util.ErrorField(err))
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(userID),
		Value: payload,
	}); err != nil {
		p.logger.Warn("Failed to publish account event",
			util.String("event", event),
			util.String("user_id", userID),
			util.ErrorField(err))
		return
	}

	p.logger.Debug("Account event published",
		util.String("event", event),
		util.String("user_id", userID))
}

func (p *KafkaPublisher) Close() error {
	if p.writer != nil {
		if err := p.writer.Close(); err != nil {
			util.Error("Failed to close Kafka publisher", util.ErrorField(err))
			return err
		}
		util.Info("Kafka publisher closed")
	}
	return nil
}

// NopPublisher drops all events. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, string) {}
func (NopPublisher) Close() error                                    { return nil }
