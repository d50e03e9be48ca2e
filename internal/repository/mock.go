package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
)

// MockBusinessStore is an in-memory BusinessStore for tests.
type MockBusinessStore struct {
	mu       sync.Mutex
	profiles map[string]*models.BusinessProfile

	// Err, when set, is returned by every call.
	Err error
}

func NewMockBusinessStore() *MockBusinessStore {
	return &MockBusinessStore{profiles: make(map[string]*models.BusinessProfile)}
}

func (m *MockBusinessStore) Create(ctx context.Context, profile *models.BusinessProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.profiles[profile.UserID]; ok {
		return &errors.StorageError{
			Code:       errors.StorageDuplicate,
			Op:         "businesses.create",
			Constraint: "businesses_user_id_key",
			Err:        errors.New("duplicate key value"),
		}
	}
	cp := *profile
	m.profiles[profile.UserID] = &cp
	return nil
}

func (m *MockBusinessStore) GetByUserID(ctx context.Context, userID string) (*models.BusinessProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.profiles[userID]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *MockBusinessStore) Exists(ctx context.Context, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return false, m.Err
	}
	_, ok := m.profiles[userID]
	return ok, nil
}

// MockInvoiceStore is an in-memory InvoiceStore for tests.
type MockInvoiceStore struct {
	mu       sync.Mutex
	invoices map[string]*models.Invoice

	// BeforeCreate, when set, runs before an insert. Returning an error
	// aborts the insert; returning nil lets it proceed.
	BeforeCreate func(ctx context.Context, inv *models.Invoice) error
	// Delay makes Create wait, honoring ctx, before writing.
	Delay time.Duration
	// LandAfterDeadline stores the record even when ctx expires during
	// Delay, as a commit racing its deadline would.
	LandAfterDeadline bool
	CreateCalls       int
}

func NewMockInvoiceStore() *MockInvoiceStore {
	return &MockInvoiceStore{invoices: make(map[string]*models.Invoice)}
}

func invoiceKey(userID, number string) string {
	return userID + "/" + number
}

func (m *MockInvoiceStore) Create(ctx context.Context, inv *models.Invoice) error {
	m.mu.Lock()
	m.CreateCalls++
	hook := m.BeforeCreate
	m.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, inv); err != nil {
			return err
		}
	}

	if m.Delay > 0 {
		select {
		case <-time.After(m.Delay):
		case <-ctx.Done():
			if m.LandAfterDeadline {
				m.put(inv)
			}
			return &errors.StorageError{Code: errors.StorageUnavailable, Op: "invoices.commit", Err: ctx.Err()}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	key := invoiceKey(inv.UserID, inv.InvoiceNumber)
	if _, ok := m.invoices[key]; ok {
		return &errors.StorageError{
			Code:       errors.StorageDuplicate,
			Op:         "invoices.create",
			Constraint: "invoices_user_number_key",
			Err:        errors.New("duplicate key value"),
		}
	}
	cp := *inv
	m.invoices[key] = &cp
	return nil
}

func (m *MockInvoiceStore) put(inv *models.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *inv
	m.invoices[invoiceKey(inv.UserID, inv.InvoiceNumber)] = &cp
}

// Seed stores inv directly, bypassing hooks.
func (m *MockInvoiceStore) Seed(inv *models.Invoice) {
	m.put(inv)
}

func (m *MockInvoiceStore) GetByNumber(ctx context.Context, userID, number string) (*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	inv, ok := m.invoices[invoiceKey(userID, number)]
	if !ok {
		return nil, errors.ErrNotFound
	}
	cp := *inv
	return &cp, nil
}

func (m *MockInvoiceStore) ListByUserID(ctx context.Context, userID string) ([]*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*models.Invoice, 0)
	for _, inv := range m.invoices {
		if inv.UserID == userID {
			cp := *inv
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].InvoiceNumber > out[j].InvoiceNumber
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

// MockCache is an in-memory Cache and RevocationList for tests.
type MockCache struct {
	mu       sync.Mutex
	profiles map[string]*models.BusinessProfile
	invoices map[string][]*models.Invoice
	versions map[string]int64
	revoked  map[string]time.Time
}

func NewMockCache() *MockCache {
	return &MockCache{
		profiles: make(map[string]*models.BusinessProfile),
		invoices: make(map[string][]*models.Invoice),
		versions: make(map[string]int64),
		revoked:  make(map[string]time.Time),
	}
}

func (m *MockCache) GetProfile(ctx context.Context, userID string) (*models.BusinessProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profiles[userID], nil
}

func (m *MockCache) SetProfile(ctx context.Context, profile *models.BusinessProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[profile.UserID] = profile
	return nil
}

func (m *MockCache) InvalidateProfile(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.profiles, userID)
	return nil
}

func (m *MockCache) InvoicesVersion(ctx context.Context, userID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.versions[userID], nil
}

func (m *MockCache) GetInvoices(ctx context.Context, userID string, version int64) ([]*models.Invoice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.invoices[mockInvoicesKey(userID, version)], nil
}

func (m *MockCache) SetInvoices(ctx context.Context, userID string, version int64, invoices []*models.Invoice) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices[mockInvoicesKey(userID, version)] = invoices
	return nil
}

func (m *MockCache) InvalidateInvoices(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.invoices, mockInvoicesKey(userID, m.versions[userID]))
	m.versions[userID]++
	return nil
}

func mockInvoicesKey(userID string, version int64) string {
	return fmt.Sprintf("%s:%d", userID, version)
}

func (m *MockCache) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[tokenID] = time.Now().Add(ttl)
	return nil
}

func (m *MockCache) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	until, ok := m.revoked[tokenID]
	return ok && time.Now().Before(until), nil
}
