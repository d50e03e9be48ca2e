package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sharadkumardubey/billify-trip-generator/internal/auth"
	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/middleware"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/sharadkumardubey/billify-trip-generator/internal/service"
)

// Handlers holds all HTTP handlers for billify.
type Handlers struct {
	authService     *auth.Service
	businessService *service.BusinessService
	invoiceService  *service.InvoiceService
	checks          []ReadinessCheck
	config          *config.Config
	logger          *logging.LoggerV2
}

// NewHandlers creates a new handlers instance.
func NewHandlers(
	authService *auth.Service,
	businessService *service.BusinessService,
	invoiceService *service.InvoiceService,
	cfg *config.Config,
	checks ...ReadinessCheck,
) *Handlers {
	return &Handlers{
		authService:     authService,
		businessService: businessService,
		invoiceService:  invoiceService,
		checks:          checks,
		config:          cfg,
		logger:          logging.NewLoggerV2("handlers"),
	}
}

// session returns the caller's session. RequireSession guarantees one on
// every authenticated route.
func session(c *gin.Context) *models.Session {
	sess, _ := middleware.SessionFrom(c)
	return sess
}

// handleError maps service errors to HTTP responses.
func handleError(c *gin.Context, err error) {
	_ = c.Error(err)

	var validationErr *errors.ValidationError
	var storageErr *errors.StorageError

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   validationErr.Message,
			"details": validationErr.Details,
		})
	case errors.Is(err, errors.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":     "sign in required",
			"next_step": models.NextStepSignIn,
		})
	case errors.Is(err, errors.ErrBusinessProfileRequired):
		c.JSON(http.StatusPreconditionFailed, gin.H{
			"error":     "register your business before creating invoices",
			"next_step": models.NextStepRegisterBusiness,
		})
	case errors.Is(err, errors.ErrBusinessProfileExists):
		c.JSON(http.StatusConflict, gin.H{"error": "business profile already exists"})
	case errors.Is(err, errors.ErrInvoiceNumberExhausted):
		c.JSON(http.StatusConflict, gin.H{"error": "could not allocate an invoice number, please retry"})
	case errors.Is(err, errors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, errors.ErrStoreTimeout):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": "saving the invoice timed out, please retry"})
	case errors.Is(err, errors.ErrFeatureDisabled):
		c.JSON(http.StatusNotImplemented, gin.H{"error": err.Error()})
	case errors.As(err, &storageErr):
		c.JSON(storageStatus(storageErr.Code), gin.H{"error": storageErr.UserMessage()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func storageStatus(code errors.StorageCode) int {
	switch code {
	case errors.StorageDuplicate:
		return http.StatusConflict
	case errors.StoragePermissionDenied:
		return http.StatusForbidden
	case errors.StorageUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
}
