package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"servetix/pkg/logger"
	"servetix/pkg/metrics"

	"github.com/IBM/sarama"
	gobreaker "github.com/sony/gobreaker/v2"
)

// Publisher puts a notification on the notification pipeline
type Publisher interface {
	Publish(ctx context.Context, notification *Notification) error
	Close() error
}

// KafkaProducerConfig contains configuration for the Kafka notification producer
type KafkaProducerConfig struct {
	Brokers          []string
	Topic            string
	RetryMax         int
	Timeout          time.Duration
	RequiredAcks     sarama.RequiredAcks
	CompressionType  sarama.CompressionCodec
	IdempotentWrites bool
	MaxMessageBytes  int
}

func DefaultKafkaProducerConfig() *KafkaProducerConfig {
	return &KafkaProducerConfig{
		Brokers:          []string{"localhost:9092"},
		Topic:            "servetix-notifications",
		RetryMax:         3,
		Timeout:          10 * time.Second,
		RequiredAcks:     sarama.WaitForAll,
		CompressionType:  sarama.CompressionSnappy,
		IdempotentWrites: true,
		MaxMessageBytes:  1000000,
	}
}

// messageSender is the part of sarama.SyncProducer the publisher uses
type messageSender interface {
	SendMessage(msg *sarama.ProducerMessage) (partition int32, offset int64, err error)
	Close() error
}

type kafkaPublisher struct {
	producer messageSender
	topic    string
}

func NewKafkaPublisher(config *KafkaProducerConfig) (Publisher, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Return.Errors = true
	saramaConfig.Producer.RequiredAcks = config.RequiredAcks
	saramaConfig.Producer.Compression = config.CompressionType
	saramaConfig.Producer.Retry.Max = config.RetryMax
	saramaConfig.Producer.Timeout = config.Timeout
	saramaConfig.Producer.Idempotent = config.IdempotentWrites
	saramaConfig.Producer.MaxMessageBytes = config.MaxMessageBytes
	// Hash on the order id keeps one order's notifications in sequence
	saramaConfig.Producer.Partitioner = sarama.NewHashPartitioner
	if config.IdempotentWrites {
		saramaConfig.Net.MaxOpenRequests = 1
	}

	// Create producer
	producer, err := sarama.NewSyncProducer(config.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	logger.GetDefault().Info("Kafka notification producer created", slog.String("topic", config.Topic))
	return &kafkaPublisher{producer: producer, topic: config.Topic}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, notification *Notification) error {
	notification.Status = StatusQueued

	// Serialize notification
	payload, err := notification.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	// Create Kafka message
	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(notification.PartitionKey()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("notification_type"), Value: []byte(notification.Type)},
			{Key: []byte("notification_id"), Value: []byte(notification.ID.String())},
		},
		Timestamp: notification.CreatedAt,
	}

	// Send message
	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		notification.MarkFailed(err)
		return fmt.Errorf("failed to send notification to Kafka: %w", err)
	}

	logger.GetDefault().DebugContext(ctx, "Notification published",
		slog.String("type", string(notification.Type)),
		slog.String("order_id", notification.OrderID),
		slog.Int("partition", int(partition)),
		slog.Int64("offset", offset),
	)
	return nil
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// BreakerConfig tunes the circuit breaker around a Publisher
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:             "notification-publisher",
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// ErrBreakerOpen is returned while the broker is considered down
var ErrBreakerOpen = errors.New("notification publisher unavailable")

type breakerPublisher struct {
	next Publisher
	cb   *gobreaker.CircuitBreaker[struct{}]
}

// NewBreakerPublisher fails fast once next has failed FailureThreshold
// times in a row, so a broker outage costs callers nothing
func NewBreakerPublisher(next Publisher, cfg BreakerConfig) Publisher {
	settings := gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.GetDefault().Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	}
	return &breakerPublisher{next: next, cb: gobreaker.NewCircuitBreaker[struct{}](settings)}
}

func (b *breakerPublisher) Publish(ctx context.Context, notification *Notification) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.next.Publish(ctx, notification)
	})

	result := "ok"
	if err != nil {
		result = "error"
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			result = "rejected"
			err = fmt.Errorf("%w: %v", ErrBreakerOpen, err)
		}
	}
	metrics.NotificationsPublishedTotal.WithLabelValues(string(notification.Type), result).Inc()
	return err
}

func (b *breakerPublisher) Close() error {
	return b.next.Close()
}

type logPublisher struct{}

// NewLogPublisher is used when Kafka is disabled; it only logs
func NewLogPublisher() Publisher {
	return logPublisher{}
}

func (logPublisher) Publish(ctx context.Context, notification *Notification) error {
	logger.GetDefault().InfoContext(ctx, "Notification (Kafka disabled)",
		slog.String("type", string(notification.Type)),
		slog.String("order_id", notification.OrderID),
		slog.String("recipient", notification.RecipientEmail),
	)
	return nil
}

func (logPublisher) Close() error { return nil }
