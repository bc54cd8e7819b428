package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"servetix/pkg/logger"

	"github.com/IBM/sarama"
)

type ConsumerConfig struct {
	Brokers              []string
	GroupID              string
	Topics               []string
	SessionTimeout       time.Duration
	Heartbeat            time.Duration
	MaxProcessingTime    time.Duration
	OffsetOldest         bool
	MaxRetries           int
	RetryBackoffDuration time.Duration
}

func DefaultConsumerConfig() *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:              []string{"localhost:9092"},
		GroupID:              "servetix-notification-workers",
		Topics:               []string{"servetix-notifications"},
		SessionTimeout:       30 * time.Second,
		Heartbeat:            3 * time.Second,
		MaxProcessingTime:    5 * time.Minute,
		MaxRetries:           3,
		RetryBackoffDuration: time.Second,
	}
}

// Consumer reads the notification topic and hands each message to an
// EmailSender
type Consumer struct {
	group  sarama.ConsumerGroup
	config *ConsumerConfig
	sender EmailSender
	wg     sync.WaitGroup
}

func NewConsumer(config *ConsumerConfig, sender EmailSender) (*Consumer, error) {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Consumer.Group.Session.Timeout = config.SessionTimeout
	saramaConfig.Consumer.Group.Heartbeat.Interval = config.Heartbeat
	saramaConfig.Consumer.MaxProcessingTime = config.MaxProcessingTime
	saramaConfig.Consumer.Return.Errors = true
	saramaConfig.Consumer.Offsets.AutoCommit.Enable = true
	saramaConfig.Consumer.Offsets.AutoCommit.Interval = time.Second
	if config.OffsetOldest {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	}

	group, err := sarama.NewConsumerGroup(config.Brokers, config.GroupID, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer group: %w", err)
	}

	return &Consumer{group: group, config: config, sender: sender}, nil
}

// Start launches numWorkers consume loops that run until ctx is cancelled
func (c *Consumer) Start(ctx context.Context, numWorkers int) {
	log := logger.GetDefault()
	log.Info("Starting notification consumers", slog.Int("workers", numWorkers), slog.Any("topics", c.config.Topics))

	// Handle errors
	go func() {
		for err := range c.group.Errors() {
			log.Error("Consumer group error", slog.Any("error", err))
		}
	}()

	// Start consumer workers
	for i := 0; i < numWorkers; i++ {
		c.wg.Add(1)
		go func(workerID int) {
			defer c.wg.Done()
			handler := &groupHandler{workerID: workerID, sender: c.sender, config: c.config}
			for {
				if err := c.group.Consume(ctx, c.config.Topics, handler); err != nil {
					log.Error("Error consuming notifications", slog.Int("worker", workerID), slog.Any("error", err))
				}
				select {
				case <-ctx.Done():
					return
				case <-time.After(time.Second):
				}
			}
		}(i)
	}
}

// Stop waits for the workers to exit and closes the group. Cancel the ctx
// given to Start first.
func (c *Consumer) Stop() error {
	c.wg.Wait()
	if err := c.group.Close(); err != nil {
		return fmt.Errorf("failed to close consumer group: %w", err)
	}
	return nil
}

type groupHandler struct {
	workerID int
	sender   EmailSender
	config   *ConsumerConfig
}

func (h *groupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *groupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *groupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			// A message that can never be delivered is committed anyway so
			// it does not block the partition
			if err := h.processMessage(session.Context(), message.Value); err != nil {
				logger.GetDefault().Error("Dropping notification",
					slog.Int("worker", h.workerID),
					slog.Int64("offset", message.Offset),
					slog.Any("error", err))
			}
			session.MarkMessage(message, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

func (h *groupHandler) processMessage(ctx context.Context, payload []byte) error {
	// Parse notification
	var notification Notification
	if err := json.Unmarshal(payload, &notification); err != nil {
		return fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	// Send email
	if err := h.sendWithRetry(ctx, &notification); err != nil {
		notification.MarkFailed(err)
		return err
	}
	notification.MarkSent()

	logger.GetDefault().Info("Notification email sent",
		slog.String("type", string(notification.Type)),
		slog.String("order_id", notification.OrderID))
	return nil
}

func (h *groupHandler) sendWithRetry(ctx context.Context, notification *Notification) error {
	var err error
	for attempt := 0; attempt <= h.config.MaxRetries; attempt++ {
		if err = h.sender.Send(ctx, notification); err == nil {
			return nil
		}
		if attempt == h.config.MaxRetries {
			break
		}

		// Exponential backoff
		delay := h.config.RetryBackoffDuration * time.Duration(1<<attempt)
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("failed after %d attempts: %w", h.config.MaxRetries+1, err)
}
