package service

import (
	"context"

	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

// EventPublisher publishes domain events. Failures are logged by callers
// and never fail the originating request.
type EventPublisher interface {
	PublishInvoiceCreated(ctx context.Context, inv *models.Invoice) error
	PublishBusinessRegistered(ctx context.Context, profile *models.BusinessProfile) error
	PublishInvoiceEmailRequested(ctx context.Context, inv *models.Invoice) error
	PublishSignedIn(ctx context.Context, sess *models.Session) error
	PublishSignedOut(ctx context.Context, sess *models.Session) error
}

// InvoiceMailer delivers a PDF copy of an invoice to its business email.
type InvoiceMailer interface {
	SendInvoice(ctx context.Context, inv *models.Invoice) error
}
