package kafka

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/segmentio/kafka-go"

	"github.com/Saurabhrajput1234/BookMySeat/internal/logger"
	"github.com/Saurabhrajput1234/BookMySeat/internal/models"
)

// Consumer reads seat-status messages published by other server instances
// and hands them to a callback for local re-emission.
type Consumer struct {
	reader *kafka.Reader
	logger *logger.Logger
}

func NewConsumer(brokers []string, topic, groupID string, log *logger.Logger) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return &Consumer{reader: reader, logger: log}
}

// Start blocks consuming messages until ctx is cancelled. Malformed
// messages are logged and skipped.
func (c *Consumer) Start(ctx context.Context, handler func(models.SeatStatusMessage)) {
	c.logger.Info("KAFKA", "Seat status consumer started")

	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("KAFKA", "Seat status consumer stopped")
				return
			}
			c.logger.Error("KAFKA", "Error reading message: "+err.Error())
			continue
		}

		var statusMsg models.SeatStatusMessage
		if err := json.Unmarshal(msg.Value, &statusMsg); err != nil {
			c.logger.Warn("KAFKA", "Failed to unmarshal seat status message: "+err.Error())
			continue
		}
		handler(statusMsg)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}
