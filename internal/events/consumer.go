package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

// MessageReader is satisfied by *kafka.Reader.
type MessageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// InvoiceLoader loads a stored invoice by owner and number.
type InvoiceLoader interface {
	GetByNumber(ctx context.Context, userID, number string) (*models.Invoice, error)
}

// Mailer delivers an invoice by email.
type Mailer interface {
	SendInvoice(ctx context.Context, inv *models.Invoice) error
}

// KafkaConsumer reads the invoices topic and mails invoices on request.
type KafkaConsumer struct {
	reader   MessageReader
	invoices InvoiceLoader
	mailer   Mailer
	logger   *logging.LoggerV2
	stopCh   chan struct{}
}

// NewKafkaConsumer creates a consumer in cfg.ConsumerGroup.
func NewKafkaConsumer(cfg config.KafkaConfig, invoices InvoiceLoader, mailer Mailer, logger *logging.LoggerV2) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.InvoicesTopic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  time.Second,
	})
	return NewKafkaConsumerWithReader(reader, invoices, mailer, logger)
}

func NewKafkaConsumerWithReader(reader MessageReader, invoices InvoiceLoader, mailer Mailer, logger *logging.LoggerV2) *KafkaConsumer {
	return &KafkaConsumer{
		reader:   reader,
		invoices: invoices,
		mailer:   mailer,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start consumes until ctx is done or Stop is called.
func (c *KafkaConsumer) Start(ctx context.Context) error {
	c.logger.Info("Starting Kafka consumer")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.stopCh:
			c.logger.Info("Kafka consumer stopped")
			return nil
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				select {
				case <-c.stopCh:
					c.logger.Info("Kafka consumer stopped")
					return nil
				default:
				}
				c.logger.Error("Failed to read message", logging.Fields{"error": err.Error()})
				continue
			}

			if err := c.HandleMessage(ctx, msg); err != nil {
				c.logger.Error("Failed to handle message", logging.Fields{
					"offset": msg.Offset,
					"error":  err.Error(),
				})
			}
		}
	}
}

// Stop stops the consumer.
func (c *KafkaConsumer) Stop() {
	close(c.stopCh)
	c.reader.Close()
}

// HandleMessage dispatches one message. Unknown event types are ignored.
func (c *KafkaConsumer) HandleMessage(ctx context.Context, msg kafka.Message) error {
	c.logger.Debug("Received message", logging.Fields{
		"topic":     msg.Topic,
		"partition": msg.Partition,
		"offset":    msg.Offset,
	})

	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("decode event: %w", err)
	}

	switch event.Type {
	case EventTypeInvoiceEmailRequested:
		return c.handleEmailRequested(ctx, &event)
	default:
		c.logger.Debug("Ignoring event", logging.Fields{"type": event.Type})
		return nil
	}
}

func (c *KafkaConsumer) handleEmailRequested(ctx context.Context, event *Event) error {
	var ref InvoiceRef
	if err := json.Unmarshal(event.Data, &ref); err != nil {
		return fmt.Errorf("decode invoice reference: %w", err)
	}

	c.logger.Info("Handling invoice email request", logging.Fields{
		"event_id":       event.ID,
		"invoice_number": ref.InvoiceNumber,
		"correlation_id": event.CorrelationID,
	})

	inv, err := c.invoices.GetByNumber(ctx, ref.UserID, ref.InvoiceNumber)
	if err != nil {
		return fmt.Errorf("load invoice %s: %w", ref.InvoiceNumber, err)
	}
	return c.mailer.SendInvoice(ctx, inv)
}
