package repository

import (
	"context"
	"time"

	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

// Ensure the PostgreSQL stores implement the store interfaces.
var (
	_ BusinessStore  = (*PostgresBusinessStore)(nil)
	_ InvoiceStore   = (*PostgresInvoiceStore)(nil)
	_ Cache          = (*RedisCache)(nil)
	_ RevocationList = (*RedisCache)(nil)
)

// BusinessStore persists business profiles, one per user.
type BusinessStore interface {
	Create(ctx context.Context, profile *models.BusinessProfile) error
	// GetByUserID returns errors.ErrNotFound when the user has no profile.
	GetByUserID(ctx context.Context, userID string) (*models.BusinessProfile, error)
	Exists(ctx context.Context, userID string) (bool, error)
}

// InvoiceStore persists invoices. Records are insert-only.
type InvoiceStore interface {
	// Create inserts inv inside a transaction bound to ctx. A number already
	// used by the same owner yields a StorageError with code duplicate.
	Create(ctx context.Context, inv *models.Invoice) error
	GetByNumber(ctx context.Context, userID, number string) (*models.Invoice, error)
	// ListByUserID returns the owner's invoices, newest first.
	ListByUserID(ctx context.Context, userID string) ([]*models.Invoice, error)
}

// Cache is a read-through cache for profiles and invoice lists.
// Misses return nil with a nil error.
//
// Invoice lists are stored under a per-user version. Readers take the
// version before loading from the store and write back under it, so a list
// loaded before InvalidateInvoices bumped the version is never served.
type Cache interface {
	GetProfile(ctx context.Context, userID string) (*models.BusinessProfile, error)
	SetProfile(ctx context.Context, profile *models.BusinessProfile) error
	InvalidateProfile(ctx context.Context, userID string) error
	InvoicesVersion(ctx context.Context, userID string) (int64, error)
	GetInvoices(ctx context.Context, userID string, version int64) ([]*models.Invoice, error)
	SetInvoices(ctx context.Context, userID string, version int64, invoices []*models.Invoice) error
	InvalidateInvoices(ctx context.Context, userID string) error
}

// RevocationList records signed-out tokens until they would have expired.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}
