package service

import (
	"bytes"
	"context"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/metrics"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/sharadkumardubey/billify-trip-generator/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingPublisher) record(t string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, t)
	return p.err
}

func (p *recordingPublisher) Events() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.events...)
}

func (p *recordingPublisher) PublishInvoiceCreated(ctx context.Context, inv *models.Invoice) error {
	return p.record("invoice.created")
}

func (p *recordingPublisher) PublishBusinessRegistered(ctx context.Context, profile *models.BusinessProfile) error {
	return p.record("business.registered")
}

func (p *recordingPublisher) PublishInvoiceEmailRequested(ctx context.Context, inv *models.Invoice) error {
	return p.record("invoice.email_requested")
}

func (p *recordingPublisher) PublishSignedIn(ctx context.Context, sess *models.Session) error {
	return p.record("session.signed_in")
}

func (p *recordingPublisher) PublishSignedOut(ctx context.Context, sess *models.Session) error {
	return p.record("session.signed_out")
}

type recordingMailer struct {
	sent []string
	err  error
}

func (m *recordingMailer) SendInvoice(ctx context.Context, inv *models.Invoice) error {
	m.sent = append(m.sent, inv.InvoiceNumber)
	return m.err
}

type fixture struct {
	cfg        *config.Config
	businesses *repository.MockBusinessStore
	invoices   *repository.MockInvoiceStore
	cache      *repository.MockCache
	publisher  *recordingPublisher
	mailer     *recordingMailer
	business   *BusinessService
	invoice    *InvoiceService
	now        time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		cfg: &config.Config{
			Invoice: config.InvoiceConfig{
				StoreTimeout:      50 * time.Millisecond,
				MaxNumberAttempts: 5,
			},
			Features: config.FeatureFlags{
				EnableCaching:      true,
				EnableEvents:       true,
				EnableInvoiceEmail: true,
			},
		},
		businesses: repository.NewMockBusinessStore(),
		invoices:   repository.NewMockInvoiceStore(),
		cache:      repository.NewMockCache(),
		publisher:  &recordingPublisher{},
		mailer:     &recordingMailer{},
		now:        time.Date(2026, 10, 4, 12, 30, 0, 0, time.UTC),
	}

	m := metrics.New(prometheus.NewRegistry())
	f.business = NewBusinessService(f.businesses, f.cache, f.publisher, m, f.cfg)
	f.business.now = func() time.Time { return f.now }
	f.invoice = NewInvoiceService(f.invoices, f.cache, f.business, NewNumberGenerator(rand.NewPCG(3, 5)), f.publisher, f.mailer, m, f.cfg)
	f.invoice.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) registered(t *testing.T, userID string) *models.Session {
	t.Helper()
	sess := &models.Session{UserID: userID, Email: userID + "@example.com"}
	_, err := f.business.Register(context.Background(), sess, validBusiness())
	require.NoError(t, err)
	return sess
}

func duplicateNumberErr() error {
	return &errors.StorageError{
		Code:       errors.StorageDuplicate,
		Op:         "invoices.create",
		Constraint: "invoices_user_number_key",
		Err:        errors.New("duplicate key value"),
	}
}

func TestBusinessService_Register(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := &models.Session{UserID: "u1"}

	profile, err := f.business.Register(ctx, sess, validBusiness())
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.UserID)
	assert.NotEmpty(t, profile.ID)
	assert.True(t, sess.HasBusinessProfile)
	assert.Equal(t, []string{"business.registered"}, f.publisher.Events())

	_, err = f.business.Register(ctx, sess, validBusiness())
	assert.ErrorIs(t, err, errors.ErrBusinessProfileExists)
}

func TestBusinessService_RegisterRequiresSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.business.Register(context.Background(), nil, validBusiness())
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}

func TestBusinessService_RegisterInvalid(t *testing.T) {
	f := newFixture(t)
	req := validBusiness()
	req.GSTNumber = "bad"

	_, err := f.business.Register(context.Background(), &models.Session{UserID: "u1"}, req)

	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Details, "gst_number")
	assert.Empty(t, f.publisher.Events())
}

func TestBusinessService_RegisterStorageFailure(t *testing.T) {
	f := newFixture(t)
	f.businesses.Err = &errors.StorageError{Code: errors.StorageMissingTable, Op: "businesses.exists", Err: errors.New("relation does not exist")}

	_, err := f.business.Register(context.Background(), &models.Session{UserID: "u1"}, validBusiness())
	assert.True(t, errors.IsStorageCode(err, errors.StorageMissingTable))
}

func TestBusinessService_Get(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.business.Get(ctx, &models.Session{UserID: "nobody"})
	assert.ErrorIs(t, err, errors.ErrNotFound)

	sess := f.registered(t, "u1")
	profile, err := f.business.Get(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, "Sharma Travels", profile.BusinessName)

	has, err := f.business.HasProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, has)
}

type failingProfileCache struct {
	*repository.MockCache
}

func (failingProfileCache) SetProfile(ctx context.Context, profile *models.BusinessProfile) error {
	return errors.New("redis down")
}

func TestBusinessService_GetLogsCacheWriteFailure(t *testing.T) {
	f := newFixture(t)
	f.registered(t, "u1")

	var logs bytes.Buffer
	svc := NewBusinessService(f.businesses, failingProfileCache{repository.NewMockCache()}, f.publisher, metrics.New(prometheus.NewRegistry()), f.cfg)
	svc.logger = logging.NewTestLogger(&logs)

	profile, err := svc.GetByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", profile.UserID)
	assert.Contains(t, logs.String(), "Failed to cache business profile")
	assert.Contains(t, logs.String(), "redis down")
}

func TestInvoiceService_Create(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registered(t, "u1")

	trip := validTrip()
	trip.Date = ""

	inv, err := f.invoice.Create(ctx, sess, trip)
	require.NoError(t, err)

	assert.Regexp(t, invoiceNumberPattern, inv.InvoiceNumber)
	assert.Equal(t, "INV2610", inv.InvoiceNumber[:7])
	assert.Equal(t, "2026-10-04", inv.InvoiceDate)
	assert.Equal(t, 3450.0, inv.BaseAmount)
	assert.Equal(t, 172.5, inv.GSTAmount)
	assert.Equal(t, 3622.5, inv.TotalAmount)
	assert.Equal(t, "22AAAAA0000A1Z5", inv.GSTNumber)

	stored, err := f.invoices.GetByNumber(ctx, "u1", inv.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, stored.ID)
	assert.Contains(t, f.publisher.Events(), "invoice.created")
}

func TestInvoiceService_CreateRequiresProfile(t *testing.T) {
	f := newFixture(t)

	_, err := f.invoice.Create(context.Background(), &models.Session{UserID: "u1"}, validTrip())
	assert.ErrorIs(t, err, errors.ErrBusinessProfileRequired)
	assert.Zero(t, f.invoices.CreateCalls)
}

func TestInvoiceService_CreateRequiresSession(t *testing.T) {
	f := newFixture(t)
	_, err := f.invoice.Create(context.Background(), nil, validTrip())
	assert.ErrorIs(t, err, errors.ErrUnauthenticated)
}

func TestInvoiceService_CreateRejectsInvalidTrip(t *testing.T) {
	f := newFixture(t)
	sess := f.registered(t, "u1")

	trip := validTrip()
	trip.GSTPercentage = 28.01

	_, err := f.invoice.Create(context.Background(), sess, trip)
	var verr *errors.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "GST cannot exceed 28%", verr.Details["gst_percentage"])
	assert.Zero(t, f.invoices.CreateCalls)
}

func TestInvoiceService_RetriesNumberCollision(t *testing.T) {
	f := newFixture(t)
	sess := f.registered(t, "u1")

	var seen []string
	f.invoices.BeforeCreate = func(ctx context.Context, inv *models.Invoice) error {
		seen = append(seen, inv.InvoiceNumber)
		if len(seen) <= 2 {
			return duplicateNumberErr()
		}
		return nil
	}

	inv, err := f.invoice.Create(context.Background(), sess, validTrip())
	require.NoError(t, err)
	assert.Equal(t, 3, f.invoices.CreateCalls)
	assert.Equal(t, seen[2], inv.InvoiceNumber)
}

func TestInvoiceService_NumberAttemptsExhausted(t *testing.T) {
	f := newFixture(t)
	sess := f.registered(t, "u1")
	f.invoices.BeforeCreate = func(ctx context.Context, inv *models.Invoice) error {
		return duplicateNumberErr()
	}

	_, err := f.invoice.Create(context.Background(), sess, validTrip())
	assert.ErrorIs(t, err, errors.ErrInvoiceNumberExhausted)
	assert.Equal(t, 5, f.invoices.CreateCalls)
}

func TestInvoiceService_StorageErrorIsNotRetried(t *testing.T) {
	f := newFixture(t)
	sess := f.registered(t, "u1")
	f.invoices.BeforeCreate = func(ctx context.Context, inv *models.Invoice) error {
		return &errors.StorageError{Code: errors.StoragePermissionDenied, Op: "invoices.create", Err: errors.New("denied")}
	}

	_, err := f.invoice.Create(context.Background(), sess, validTrip())
	assert.True(t, errors.IsStorageCode(err, errors.StoragePermissionDenied))
	assert.Equal(t, 1, f.invoices.CreateCalls)
}

func TestInvoiceService_TimeoutWithoutWrite(t *testing.T) {
	f := newFixture(t)
	sess := f.registered(t, "u1")
	f.invoices.Delay = time.Second

	_, err := f.invoice.Create(context.Background(), sess, validTrip())
	assert.ErrorIs(t, err, errors.ErrStoreTimeout)

	list, err := f.invoices.ListByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotContains(t, f.publisher.Events(), "invoice.created")
}

func TestInvoiceService_TimeoutAfterCommitIsSuccess(t *testing.T) {
	f := newFixture(t)
	sess := f.registered(t, "u1")
	f.invoices.Delay = time.Second
	f.invoices.LandAfterDeadline = true

	inv, err := f.invoice.Create(context.Background(), sess, validTrip())
	require.NoError(t, err)

	stored, err := f.invoices.GetByNumber(context.Background(), "u1", inv.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, inv.ID, stored.ID)
}

func TestInvoiceService_ListUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registered(t, "u1")

	_, err := f.invoice.Create(ctx, sess, validTrip())
	require.NoError(t, err)

	list, err := f.invoice.List(ctx, sess)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// A row written behind the service's back stays hidden until invalidation.
	f.invoices.Seed(&models.Invoice{ID: "x", UserID: "u1", InvoiceNumber: "INV2610999", CreatedAt: f.now.Add(time.Hour)})
	list, err = f.invoice.List(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.invoice.Create(ctx, sess, validTrip())
	require.NoError(t, err)
	list, err = f.invoice.List(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, list, 3)
	assert.Equal(t, "INV2610999", list[0].InvoiceNumber)
}

func TestInvoiceService_ListIgnoresListCachedBeforeCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sess := f.registered(t, "u1")

	// A List that read the store before Create finishes its write-back late.
	version, err := f.cache.InvoicesVersion(ctx, "u1")
	require.NoError(t, err)
	stale, err := f.invoices.ListByUserID(ctx, "u1")
	require.NoError(t, err)

	_, err = f.invoice.Create(ctx, sess, validTrip())
	require.NoError(t, err)
	require.NoError(t, f.cache.SetInvoices(ctx, "u1", version, stale))

	list, err := f.invoice.List(ctx, sess)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestInvoiceService_GetIsScopedToOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.registered(t, "u1")
	other := f.registered(t, "u2")

	inv, err := f.invoice.Create(ctx, owner, validTrip())
	require.NoError(t, err)

	_, err = f.invoice.Get(ctx, other, inv.InvoiceNumber)
	assert.ErrorIs(t, err, errors.ErrNotFound)

	got, err := f.invoice.Get(ctx, owner, inv.InvoiceNumber)
	require.NoError(t, err)
	assert.Equal(t, inv.TotalAmount, got.TotalAmount)
}

func TestInvoiceService_RequestEmail(t *testing.T) {
	ctx := context.Background()

	t.Run("queued when events are enabled", func(t *testing.T) {
		f := newFixture(t)
		sess := f.registered(t, "u1")
		inv, err := f.invoice.Create(ctx, sess, validTrip())
		require.NoError(t, err)

		require.NoError(t, f.invoice.RequestEmail(ctx, sess, inv.InvoiceNumber))
		assert.Contains(t, f.publisher.Events(), "invoice.email_requested")
		assert.Empty(t, f.mailer.sent)
	})

	t.Run("sent inline without events", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Features.EnableEvents = false
		sess := f.registered(t, "u1")
		inv, err := f.invoice.Create(ctx, sess, validTrip())
		require.NoError(t, err)

		require.NoError(t, f.invoice.RequestEmail(ctx, sess, inv.InvoiceNumber))
		assert.Equal(t, []string{inv.InvoiceNumber}, f.mailer.sent)
	})

	t.Run("disabled", func(t *testing.T) {
		f := newFixture(t)
		f.cfg.Features.EnableInvoiceEmail = false
		err := f.invoice.RequestEmail(ctx, &models.Session{UserID: "u1"}, "INV2610001")
		assert.ErrorIs(t, err, errors.ErrFeatureDisabled)
	})

	t.Run("unknown invoice", func(t *testing.T) {
		f := newFixture(t)
		err := f.invoice.RequestEmail(ctx, f.registered(t, "u1"), "INV0000000")
		assert.ErrorIs(t, err, errors.ErrNotFound)
	})
}

func TestInvoiceService_PublishFailureDoesNotFailCreate(t *testing.T) {
	f := newFixture(t)
	sess := f.registered(t, "u1")
	f.publisher.err = errors.New("broker unavailable")

	_, err := f.invoice.Create(context.Background(), sess, validTrip())
	assert.NoError(t, err)
}
