package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/metrics"
	"github.com/sharadkumardubey/billify-trip-generator/internal/middleware"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/sharadkumardubey/billify-trip-generator/internal/service"
)

var (
	_ service.EventPublisher = (*KafkaPublisher)(nil)
	_ service.EventPublisher = (*MockEventPublisher)(nil)
)

// EventType names a billify domain event.
type EventType string

const (
	EventTypeInvoiceCreated        EventType = "invoice.created"
	EventTypeInvoiceEmailRequested EventType = "invoice.email_requested"
	EventTypeBusinessRegistered    EventType = "business.registered"
	EventTypeSignedIn              EventType = "session.signed_in"
	EventTypeSignedOut             EventType = "session.signed_out"
)

// Event is the envelope written to the invoices topic. Messages are keyed
// by user ID so one user's events stay ordered within a partition.
type Event struct {
	ID            string            `json:"id"`
	Type          EventType         `json:"type"`
	UserID        string            `json:"user_id"`
	Subject       string            `json:"subject,omitempty"`
	Data          json.RawMessage   `json:"data"`
	Metadata      map[string]string `json:"metadata"`
	Timestamp     time.Time         `json:"timestamp"`
	CorrelationID string            `json:"correlation_id,omitempty"`
}

// InvoiceRef identifies one stored invoice.
type InvoiceRef struct {
	UserID        string `json:"user_id"`
	InvoiceNumber string `json:"invoice_number"`
}

// MessageWriter is satisfied by *kafka.Writer.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher publishes billify events to Kafka.
type KafkaPublisher struct {
	writer  MessageWriter
	topic   string
	metrics *metrics.Metrics
	logger  *logging.LoggerV2
	now     func() time.Time
}

// NewKafkaPublisher creates a Kafka-backed publisher for cfg.InvoicesTopic.
func NewKafkaPublisher(cfg config.KafkaConfig, m *metrics.Metrics, logger *logging.LoggerV2) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.InvoicesTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           10 * time.Second,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
	return NewKafkaPublisherWithWriter(writer, cfg.InvoicesTopic, m, logger)
}

func NewKafkaPublisherWithWriter(w MessageWriter, topic string, m *metrics.Metrics, logger *logging.LoggerV2) *KafkaPublisher {
	return &KafkaPublisher{
		writer:  w,
		topic:   topic,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

func (p *KafkaPublisher) PublishInvoiceCreated(ctx context.Context, inv *models.Invoice) error {
	return p.emit(ctx, EventTypeInvoiceCreated, inv.UserID, inv.InvoiceNumber, inv)
}

func (p *KafkaPublisher) PublishInvoiceEmailRequested(ctx context.Context, inv *models.Invoice) error {
	ref := InvoiceRef{UserID: inv.UserID, InvoiceNumber: inv.InvoiceNumber}
	return p.emit(ctx, EventTypeInvoiceEmailRequested, inv.UserID, inv.InvoiceNumber, ref)
}

func (p *KafkaPublisher) PublishBusinessRegistered(ctx context.Context, profile *models.BusinessProfile) error {
	return p.emit(ctx, EventTypeBusinessRegistered, profile.UserID, profile.ID, profile)
}

func (p *KafkaPublisher) PublishSignedIn(ctx context.Context, sess *models.Session) error {
	return p.emit(ctx, EventTypeSignedIn, sess.UserID, sess.TokenID, sessionPayload(sess))
}

func (p *KafkaPublisher) PublishSignedOut(ctx context.Context, sess *models.Session) error {
	return p.emit(ctx, EventTypeSignedOut, sess.UserID, sess.TokenID, sessionPayload(sess))
}

func sessionPayload(sess *models.Session) map[string]interface{} {
	return map[string]interface{}{
		"email":                sess.Email,
		"has_business_profile": sess.HasBusinessProfile,
		"expires_at":           sess.ExpiresAt,
	}
}

func (p *KafkaPublisher) emit(ctx context.Context, eventType EventType, userID, subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	event := p.createEvent(ctx, eventType, userID, subject, data)
	err = p.publish(ctx, event)
	p.metrics.EventPublished(string(eventType), err)
	return err
}

func (p *KafkaPublisher) createEvent(ctx context.Context, eventType EventType, userID, subject string, data []byte) *Event {
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		UserID:        userID,
		Subject:       subject,
		Data:          data,
		Metadata:      map[string]string{"topic": p.topic},
		Timestamp:     p.now().UTC(),
		CorrelationID: middleware.RequestIDFrom(ctx),
	}
}

func (p *KafkaPublisher) publish(ctx context.Context, event *Event) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.UserID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"user_id":    event.UserID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Info("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"subject":    event.Subject,
	})
	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher")
	return p.writer.Close()
}

// MockEventPublisher records events in memory.
type MockEventPublisher struct {
	Events []*Event
	Err    error
}

func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{Events: make([]*Event, 0)}
}

func (m *MockEventPublisher) record(eventType EventType, userID, subject string) error {
	if m.Err != nil {
		return m.Err
	}
	m.Events = append(m.Events, &Event{Type: eventType, UserID: userID, Subject: subject})
	return nil
}

func (m *MockEventPublisher) PublishInvoiceCreated(ctx context.Context, inv *models.Invoice) error {
	return m.record(EventTypeInvoiceCreated, inv.UserID, inv.InvoiceNumber)
}

func (m *MockEventPublisher) PublishInvoiceEmailRequested(ctx context.Context, inv *models.Invoice) error {
	return m.record(EventTypeInvoiceEmailRequested, inv.UserID, inv.InvoiceNumber)
}

func (m *MockEventPublisher) PublishBusinessRegistered(ctx context.Context, profile *models.BusinessProfile) error {
	return m.record(EventTypeBusinessRegistered, profile.UserID, profile.ID)
}

func (m *MockEventPublisher) PublishSignedIn(ctx context.Context, sess *models.Session) error {
	return m.record(EventTypeSignedIn, sess.UserID, sess.TokenID)
}

func (m *MockEventPublisher) PublishSignedOut(ctx context.Context, sess *models.Session) error {
	return m.record(EventTypeSignedOut, sess.UserID, sess.TokenID)
}
