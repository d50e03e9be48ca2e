package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sharadkumardubey/billify-trip-generator/internal/auth"
	"github.com/sharadkumardubey/billify-trip-generator/internal/clients"
	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/events"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/mailer"
	"github.com/sharadkumardubey/billify-trip-generator/internal/metrics"
	"github.com/sharadkumardubey/billify-trip-generator/internal/middleware"
	"github.com/sharadkumardubey/billify-trip-generator/internal/repository"
	"github.com/sharadkumardubey/billify-trip-generator/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubVerifier struct{}

func (stubVerifier) Verify(ctx context.Context, idToken string) (*clients.Identity, error) {
	if idToken != "google-ok" {
		return nil, fmt.Errorf("%w: token rejected", errors.ErrUnauthenticated)
	}
	return &clients.Identity{Subject: "google-1", Email: "ravi@example.com", EmailVerified: "true", Name: "Ravi"}, nil
}

type api struct {
	router    *gin.Engine
	publisher *events.MockEventPublisher
	mailer    *mailer.MockMailer
	cfg       *config.Config
}

func newAPI(t *testing.T, checks ...ReadinessCheck) *api {
	t.Helper()

	cfg := &config.Config{
		ServiceName: "billify",
		Invoice: config.InvoiceConfig{
			StoreTimeout:      time.Second,
			MaxNumberAttempts: 5,
		},
		Features: config.FeatureFlags{
			EnableCaching:      true,
			EnableEvents:       true,
			EnableInvoiceEmail: true,
		},
	}
	cache := repository.NewMockCache()
	publisher := events.NewMockEventPublisher()
	mail := &mailer.MockMailer{}
	m := metrics.New(prometheus.NewRegistry())

	businesses := service.NewBusinessService(repository.NewMockBusinessStore(), cache, publisher, m, cfg)
	invoices := service.NewInvoiceService(repository.NewMockInvoiceStore(), cache, businesses, service.NewNumberGenerator(nil), publisher, mail, m, cfg)
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	authService := auth.NewService(stubVerifier{}, tokens, cache, businesses, publisher, true)
	resolver := auth.NewResolver(tokens, cache, businesses)

	h := NewHandlers(authService, businesses, invoices, cfg, checks...)
	r := gin.New()
	h.RegisterRoutes(r, middleware.RequireSession(resolver, logging.NewTestLogger(io.Discard)))

	return &api{router: r, publisher: publisher, mailer: mail, cfg: cfg}
}

func (a *api) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *api) signIn(t *testing.T) string {
	t.Helper()
	w := a.do(t, http.MethodPost, "/api/v1/auth/google", "", gin.H{"id_token": "google-ok"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, "register_business", resp["next_step"])
	return resp["token"].(string)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func businessBody() gin.H {
	return gin.H{
		"business_name":    "Sharma Travels",
		"business_address": "12 MG Road, Pune",
		"gst_number":       "22AAAAA0000A1Z5",
		"proprietor_name":  "Ravi Sharma",
		"contact_number":   "9876543210",
		"email":            "ravi@example.com",
	}
}

func tripBody() gin.H {
	return gin.H{
		"from_location":  "Pune",
		"to_location":    "Goa",
		"distance_km":    "230",
		"price_per_km":   15,
		"gst_percentage": "5",
		"customer_name":  "Anita Rao",
		"customer_phone": "9123456780",
		"date":           "2026-10-04",
	}
}

func TestHealth(t *testing.T) {
	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	h.Health(c)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "healthy", resp["status"])
	assert.Equal(t, "billify", resp["service"])
}

func TestLive(t *testing.T) {
	h := &Handlers{}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	h.Live(c)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestReady(t *testing.T) {
	ok := ReadinessCheck{Name: "postgres", Check: func(ctx context.Context) error { return nil }}
	down := ReadinessCheck{Name: "redis", Check: func(ctx context.Context) error { return stderrors.New("connection refused") }}

	w := newAPI(t, ok).do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = newAPI(t, ok, down).do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis")
	assert.NotContains(t, w.Body.String(), "postgres")
}

func TestQuote(t *testing.T) {
	a := newAPI(t)

	w := a.do(t, http.MethodPost, "/api/v1/invoices/quote", "", gin.H{
		"distance_km":    "230",
		"price_per_km":   "15",
		"gst_percentage": 5,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode(t, w)
	assert.Equal(t, 3450.0, resp["base_amount"])
	assert.Equal(t, 172.5, resp["gst_amount"])
	assert.Equal(t, 3622.5, resp["total_amount"])
}

func TestQuote_Invalid(t *testing.T) {
	a := newAPI(t)

	w := a.do(t, http.MethodPost, "/api/v1/invoices/quote", "", gin.H{
		"distance_km":    0,
		"price_per_km":   15,
		"gst_percentage": 40,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	details := decode(t, w)["details"].(map[string]interface{})
	assert.Contains(t, details, "distance_km")
	assert.Contains(t, details, "gst_percentage")
}

func TestQuote_RejectsNonFiniteAmounts(t *testing.T) {
	a := newAPI(t)

	w := a.do(t, http.MethodPost, "/api/v1/invoices/quote", "", gin.H{
		"distance_km":    "Infinity",
		"price_per_km":   15,
		"gst_percentage": 5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = a.do(t, http.MethodPost, "/api/v1/invoices/quote", "", gin.H{
		"distance_km":    1e200,
		"price_per_km":   1e200,
		"gst_percentage": 5,
	})
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	details := decode(t, w)["details"].(map[string]interface{})
	assert.Contains(t, details, "distance_km")
	assert.Contains(t, details, "price_per_km")
}

func TestCreateInvoice_RejectsOverflow(t *testing.T) {
	a := newAPI(t)
	token := a.signIn(t)
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/v1/business", token, businessBody()).Code)

	body := tripBody()
	body["distance_km"] = 1e200
	body["price_per_km"] = 1e200
	w := a.do(t, http.MethodPost, "/api/v1/invoices", token, body)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	w = a.do(t, http.MethodGet, "/api/v1/invoices", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0.0, decode(t, w)["total"])
}

func TestInvoiceLifecycle(t *testing.T) {
	a := newAPI(t)
	token := a.signIn(t)

	w := a.do(t, http.MethodPost, "/api/v1/invoices", token, tripBody())
	require.Equal(t, http.StatusPreconditionFailed, w.Code)
	assert.Equal(t, "register_business", decode(t, w)["next_step"])

	w = a.do(t, http.MethodGet, "/api/v1/business", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/business", token, businessBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "create_invoice", decode(t, w)["next_step"])

	w = a.do(t, http.MethodPost, "/api/v1/business", token, businessBody())
	assert.Equal(t, http.StatusConflict, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/auth/session", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "create_invoice", decode(t, w)["next_step"])

	w = a.do(t, http.MethodPost, "/api/v1/invoices", token, tripBody())
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode(t, w)
	number := created["invoice_number"].(string)
	assert.Regexp(t, `^INV[0-9]{7}$`, number)
	assert.Equal(t, "Sharma Travels", created["business_name"])
	assert.Equal(t, 3622.5, created["total_amount"])
	assert.Equal(t, "/api/v1/invoices/"+number, w.Header().Get("Location"))

	w = a.do(t, http.MethodGet, "/api/v1/invoices", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1.0, decode(t, w)["total"])

	w = a.do(t, http.MethodGet, "/api/v1/invoices/"+number, token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, number, decode(t, w)["invoice_number"])

	w = a.do(t, http.MethodGet, "/api/v1/invoices/"+number+"/preview", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	preview := decode(t, w)
	assert.Equal(t, "04/10/2026", preview["date"])
	assert.Equal(t, "Invoice_"+number+".pdf", preview["file_name"])

	w = a.do(t, http.MethodGet, "/api/v1/invoices/"+number+"/pdf", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Invoice_`+number+`.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("%PDF-")))

	w = a.do(t, http.MethodPost, "/api/v1/invoices/"+number+"/email", token, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "queued", decode(t, w)["status"])

	w = a.do(t, http.MethodGet, "/api/v1/invoices/INV0000000", token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var types []events.EventType
	for _, e := range a.publisher.Events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []events.EventType{
		events.EventTypeSignedIn,
		events.EventTypeBusinessRegistered,
		events.EventTypeInvoiceCreated,
		events.EventTypeInvoiceEmailRequested,
	}, types)
}

func TestCreateInvoice_Validation(t *testing.T) {
	a := newAPI(t)
	token := a.signIn(t)
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/v1/business", token, businessBody()).Code)

	body := tripBody()
	body["customer_phone"] = "12345"
	body["distance_km"] = "abc"

	w := a.do(t, http.MethodPost, "/api/v1/invoices", token, body)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	delete(body, "distance_km")
	w = a.do(t, http.MethodPost, "/api/v1/invoices", token, body)
	require.Equal(t, http.StatusBadRequest, w.Code)
	details := decode(t, w)["details"].(map[string]interface{})
	assert.Contains(t, details, "customer_phone")
	assert.Contains(t, details, "distance_km")
}

func TestEmailInvoice_Direct(t *testing.T) {
	a := newAPI(t)
	a.cfg.Features.EnableEvents = false
	token := a.signIn(t)
	require.Equal(t, http.StatusCreated, a.do(t, http.MethodPost, "/api/v1/business", token, businessBody()).Code)

	w := a.do(t, http.MethodPost, "/api/v1/invoices", token, tripBody())
	require.Equal(t, http.StatusCreated, w.Code)
	number := decode(t, w)["invoice_number"].(string)

	w = a.do(t, http.MethodPost, "/api/v1/invoices/"+number+"/email", token, nil)
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "sent", decode(t, w)["status"])
	require.Len(t, a.mailer.Sent, 1)

	a.cfg.Features.EnableInvoiceEmail = false
	w = a.do(t, http.MethodPost, "/api/v1/invoices/"+number+"/email", token, nil)
	assert.Equal(t, http.StatusNotImplemented, w.Code)
}

func TestSignOut(t *testing.T) {
	a := newAPI(t)
	token := a.signIn(t)

	w := a.do(t, http.MethodPost, "/api/v1/auth/signout", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = a.do(t, http.MethodGet, "/api/v1/auth/session", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "sign_in", decode(t, w)["next_step"])
}

func TestSignIn_Rejected(t *testing.T) {
	a := newAPI(t)

	w := a.do(t, http.MethodPost, "/api/v1/auth/google", "", gin.H{"id_token": "forged"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = a.do(t, http.MethodPost, "/api/v1/auth/google", "", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	a := newAPI(t)

	for _, path := range []string{"/api/v1/invoices", "/api/v1/business", "/api/v1/auth/session"} {
		w := a.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}
}

func TestHandleError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", errors.NewValidationError("email", "Invalid email address"), http.StatusBadRequest},
		{"unauthenticated", errors.ErrUnauthenticated, http.StatusUnauthorized},
		{"profile required", errors.ErrBusinessProfileRequired, http.StatusPreconditionFailed},
		{"profile exists", errors.ErrBusinessProfileExists, http.StatusConflict},
		{"numbers exhausted", errors.ErrInvoiceNumberExhausted, http.StatusConflict},
		{"not found", fmt.Errorf("load: %w", errors.ErrNotFound), http.StatusNotFound},
		{"store timeout", fmt.Errorf("%w: after 10s", errors.ErrStoreTimeout), http.StatusGatewayTimeout},
		{"feature disabled", errors.ErrFeatureDisabled, http.StatusNotImplemented},
		{"permission", &errors.StorageError{Code: errors.StoragePermissionDenied, Op: "invoices.create"}, http.StatusForbidden},
		{"unavailable", &errors.StorageError{Code: errors.StorageUnavailable, Op: "invoices.list"}, http.StatusServiceUnavailable},
		{"missing table", &errors.StorageError{Code: errors.StorageMissingTable, Op: "invoices.list"}, http.StatusInternalServerError},
		{"unknown", stderrors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)

			handleError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Len(t, c.Errors, 1)
		})
	}
}
