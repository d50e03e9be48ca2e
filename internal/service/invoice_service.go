package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/metrics"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/sharadkumardubey/billify-trip-generator/internal/repository"
)

// InvoiceService generates and serves invoices.
type InvoiceService struct {
	store      repository.InvoiceStore
	cache      repository.Cache
	businesses *BusinessService
	numbers    *NumberGenerator
	publisher  EventPublisher
	mailer     InvoiceMailer
	metrics    *metrics.Metrics
	config     *config.Config
	logger     *logging.LoggerV2
	now        func() time.Time
}

func NewInvoiceService(
	store repository.InvoiceStore,
	cache repository.Cache,
	businesses *BusinessService,
	numbers *NumberGenerator,
	publisher EventPublisher,
	mailer InvoiceMailer,
	m *metrics.Metrics,
	cfg *config.Config,
) *InvoiceService {
	return &InvoiceService{
		store:      store,
		cache:      cache,
		businesses: businesses,
		numbers:    numbers,
		publisher:  publisher,
		mailer:     mailer,
		metrics:    m,
		config:     cfg,
		logger:     logging.NewLoggerV2("invoice-service"),
		now:        time.Now,
	}
}

// Quote returns the charges for trip without persisting anything.
func (s *InvoiceService) Quote(trip *models.TripInput) (*models.QuoteResponse, error) {
	return Quote(trip)
}

// Create validates trip, computes its charges and stores a new invoice for
// the caller's business.
func (s *InvoiceService) Create(ctx context.Context, sess *models.Session, trip *models.TripInput) (*models.Invoice, error) {
	if sess == nil {
		return nil, errors.ErrUnauthenticated
	}

	now := s.now()
	ApplyTripDefaults(trip, now)
	if err := ValidateTripInput(trip); err != nil {
		return nil, err
	}
	charges := CalculateCharges(trip.DistanceKm.Float64(), trip.PricePerKm.Float64(), trip.GSTPercentage.Float64())
	if err := ValidateCharges(charges); err != nil {
		return nil, err
	}

	profile, err := s.businesses.GetByUserID(ctx, sess.UserID)
	if errors.Is(err, errors.ErrNotFound) {
		return nil, errors.ErrBusinessProfileRequired
	}
	if err != nil {
		return nil, err
	}

	s.logger.Info("Creating invoice", logging.Fields{
		"user_id":      sess.UserID,
		"distance_km":  trip.DistanceKm.Float64(),
		"total_amount": charges.TotalAmount,
	})

	inv, err := s.insertWithFreshNumber(ctx, sess.UserID, profile, trip, charges, now)
	if err != nil {
		return nil, err
	}
	s.metrics.InvoiceCreated(inv.TotalAmount)

	if s.config.Features.EnableCaching {
		if err := s.cache.InvalidateInvoices(ctx, sess.UserID); err != nil {
			s.logger.Warn("Failed to invalidate invoice cache", logging.Fields{
				"user_id": sess.UserID,
				"error":   err.Error(),
			})
		}
	}

	if s.config.Features.EnableEvents {
		if err := s.publisher.PublishInvoiceCreated(ctx, inv); err != nil {
			s.logger.Error("Failed to publish invoice created event", logging.Fields{
				"invoice_number": inv.InvoiceNumber,
				"error":          err.Error(),
			})
		}
	}

	s.logger.Info("Invoice created", logging.Fields{
		"invoice_id":     inv.ID,
		"invoice_number": inv.InvoiceNumber,
		"user_id":        inv.UserID,
	})
	return inv, nil
}

// insertWithFreshNumber draws invoice numbers until one is accepted by the
// store or the attempt budget runs out.
func (s *InvoiceService) insertWithFreshNumber(
	ctx context.Context,
	ownerID string,
	profile *models.BusinessProfile,
	trip *models.TripInput,
	charges models.Charges,
	now time.Time,
) (*models.Invoice, error) {
	attempts := s.config.Invoice.MaxNumberAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		inv := AssembleInvoice(ownerID, profile, trip, charges, s.numbers.Next(now), now)

		err := s.insert(ctx, inv)
		if err == nil {
			return inv, nil
		}
		if !errors.IsStorageCode(err, errors.StorageDuplicate) {
			return nil, err
		}

		s.metrics.NumberCollision()
		s.logger.Warn("Invoice number already used, regenerating", logging.Fields{
			"invoice_number": inv.InvoiceNumber,
			"attempt":        attempt,
		})
	}
	return nil, errors.ErrInvoiceNumberExhausted
}

// insert stores inv within the configured deadline. When the deadline
// expires the outcome of the commit is unknown, so the record is looked up
// before a failure is reported.
func (s *InvoiceService) insert(ctx context.Context, inv *models.Invoice) error {
	storeCtx, cancel := context.WithTimeout(ctx, s.config.Invoice.StoreTimeout)
	defer cancel()

	err := s.store.Create(storeCtx, inv)
	if err == nil {
		return nil
	}
	if storeCtx.Err() == nil || ctx.Err() != nil {
		return err
	}

	confirmCtx, cancelConfirm := context.WithTimeout(context.WithoutCancel(ctx), s.config.Invoice.StoreTimeout)
	defer cancelConfirm()

	stored, lookupErr := s.store.GetByNumber(confirmCtx, inv.UserID, inv.InvoiceNumber)
	if lookupErr == nil && stored.ID == inv.ID {
		s.metrics.StoreTimeout(true)
		s.logger.Warn("Invoice insert hit its deadline but was committed", logging.Fields{
			"invoice_number": inv.InvoiceNumber,
		})
		return nil
	}

	s.metrics.StoreTimeout(false)
	s.logger.Error("Invoice insert timed out", logging.Fields{
		"invoice_number": inv.InvoiceNumber,
		"timeout":        s.config.Invoice.StoreTimeout.String(),
		"error":          err.Error(),
	})
	return fmt.Errorf("%w: invoice %s not stored within %s", errors.ErrStoreTimeout, inv.InvoiceNumber, s.config.Invoice.StoreTimeout)
}

// List returns the caller's invoices, newest first.
func (s *InvoiceService) List(ctx context.Context, sess *models.Session) ([]*models.Invoice, error) {
	if sess == nil {
		return nil, errors.ErrUnauthenticated
	}

	caching := s.config.Features.EnableCaching
	var version int64
	if caching {
		v, err := s.cache.InvoicesVersion(ctx, sess.UserID)
		if err != nil {
			s.logger.Warn("Failed to read invoice cache version", logging.Fields{
				"user_id": sess.UserID,
				"error":   err.Error(),
			})
			caching = false
		}
		version = v
	}

	if caching {
		invoices, err := s.cache.GetInvoices(ctx, sess.UserID, version)
		if err == nil && invoices != nil {
			s.metrics.CacheLookup("invoices", true)
			return invoices, nil
		}
		s.metrics.CacheLookup("invoices", false)
	}

	invoices, err := s.store.ListByUserID(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}

	if caching {
		if err := s.cache.SetInvoices(ctx, sess.UserID, version, invoices); err != nil {
			s.logger.Warn("Failed to cache invoices", logging.Fields{
				"user_id": sess.UserID,
				"error":   err.Error(),
			})
		}
	}
	return invoices, nil
}

// Get returns one of the caller's invoices by number.
func (s *InvoiceService) Get(ctx context.Context, sess *models.Session, number string) (*models.Invoice, error) {
	if sess == nil {
		return nil, errors.ErrUnauthenticated
	}
	return s.store.GetByNumber(ctx, sess.UserID, number)
}

// RequestEmail sends a PDF copy of an invoice to the business email. With
// events enabled the delivery is queued; otherwise it is sent inline.
func (s *InvoiceService) RequestEmail(ctx context.Context, sess *models.Session, number string) error {
	if !s.config.Features.EnableInvoiceEmail {
		return errors.ErrFeatureDisabled
	}

	inv, err := s.Get(ctx, sess, number)
	if err != nil {
		return err
	}

	if s.config.Features.EnableEvents {
		return s.publisher.PublishInvoiceEmailRequested(ctx, inv)
	}

	if err := s.mailer.SendInvoice(ctx, inv); err != nil {
		s.logger.Error("Failed to email invoice", logging.Fields{
			"invoice_number": number,
			"error":          err.Error(),
		})
		return err
	}
	return nil
}
