package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"github.com/tuckshop/backend/internal/config"
	"go.uber.org/zap"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to Kafka behind a circuit breaker so a
// broker outage fails fast instead of stalling every request.
type KafkaPublisher struct {
	writer  messageWriter
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

func NewKafkaPublisher(cfg config.KafkaConfig, logger *zap.Logger) *KafkaPublisher {
	return newKafkaPublisher(&kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		WriteTimeout: 5 * time.Second,
	}, logger)
}

func newKafkaPublisher(w messageWriter, logger *zap.Logger) *KafkaPublisher {
	p := &KafkaPublisher{writer: w, logger: logger}
	p.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "kafka-publisher",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})
	return p
}

// PublishTransaction keys messages by account so one account's events stay ordered.
func (p *KafkaPublisher) PublishTransaction(ctx context.Context, event TransactionCompleted) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(event.AccountID.String()),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}

	_, err = p.breaker.Execute(func() (any, error) {
		return nil, p.writer.WriteMessages(ctx, msg)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("event broker unavailable: %w", err)
	}
	if err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) State() gobreaker.State {
	return p.breaker.State()
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
