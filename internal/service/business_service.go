package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/metrics"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/sharadkumardubey/billify-trip-generator/internal/repository"
)

// BusinessService manages the one business profile each user owns.
type BusinessService struct {
	store     repository.BusinessStore
	cache     repository.Cache
	publisher EventPublisher
	metrics   *metrics.Metrics
	config    *config.Config
	logger    *logging.LoggerV2
	now       func() time.Time
}

func NewBusinessService(
	store repository.BusinessStore,
	cache repository.Cache,
	publisher EventPublisher,
	m *metrics.Metrics,
	cfg *config.Config,
) *BusinessService {
	return &BusinessService{
		store:     store,
		cache:     cache,
		publisher: publisher,
		metrics:   m,
		config:    cfg,
		logger:    logging.NewLoggerV2("business-service"),
		now:       time.Now,
	}
}

// Register creates the caller's business profile.
func (s *BusinessService) Register(ctx context.Context, sess *models.Session, req *models.CreateBusinessRequest) (*models.BusinessProfile, error) {
	if sess == nil {
		return nil, errors.ErrUnauthenticated
	}

	req.Normalize()
	if err := ValidateBusinessProfile(req); err != nil {
		return nil, err
	}

	exists, err := s.store.Exists(ctx, sess.UserID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.ErrBusinessProfileExists
	}

	profile := &models.BusinessProfile{
		ID:              uuid.NewString(),
		UserID:          sess.UserID,
		BusinessName:    req.BusinessName,
		BusinessAddress: req.BusinessAddress,
		GSTNumber:       req.GSTNumber,
		ProprietorName:  req.ProprietorName,
		ContactNumber:   req.ContactNumber,
		Email:           req.Email,
		CreatedAt:       s.now().UTC(),
	}

	if err := s.store.Create(ctx, profile); err != nil {
		if errors.IsStorageCode(err, errors.StorageDuplicate) {
			return nil, errors.ErrBusinessProfileExists
		}
		s.logger.Error("Failed to register business", logging.Fields{
			"user_id": sess.UserID,
			"error":   err.Error(),
		})
		return nil, err
	}
	sess.HasBusinessProfile = true
	s.metrics.BusinessRegistered()

	if s.config.Features.EnableCaching {
		if err := s.cache.SetProfile(ctx, profile); err != nil {
			s.logger.Warn("Failed to cache business profile", logging.Fields{
				"user_id": sess.UserID,
				"error":   err.Error(),
			})
		}
	}

	if s.config.Features.EnableEvents {
		if err := s.publisher.PublishBusinessRegistered(ctx, profile); err != nil {
			s.logger.Error("Failed to publish business registered event", logging.Fields{
				"business_id": profile.ID,
				"error":       err.Error(),
			})
		}
	}

	s.logger.Info("Business registered", logging.Fields{
		"business_id": profile.ID,
		"user_id":     profile.UserID,
	})
	return profile, nil
}

// Get returns the caller's profile or errors.ErrNotFound.
func (s *BusinessService) Get(ctx context.Context, sess *models.Session) (*models.BusinessProfile, error) {
	if sess == nil {
		return nil, errors.ErrUnauthenticated
	}
	return s.GetByUserID(ctx, sess.UserID)
}

// GetByUserID reads through the cache.
func (s *BusinessService) GetByUserID(ctx context.Context, userID string) (*models.BusinessProfile, error) {
	if s.config.Features.EnableCaching {
		profile, err := s.cache.GetProfile(ctx, userID)
		if err == nil && profile != nil {
			s.metrics.CacheLookup("profile", true)
			return profile, nil
		}
		s.metrics.CacheLookup("profile", false)
	}

	profile, err := s.store.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if s.config.Features.EnableCaching {
		if err := s.cache.SetProfile(ctx, profile); err != nil {
			s.logger.Warn("Failed to cache business profile", logging.Fields{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	return profile, nil
}

// HasProfile reports whether userID has registered a business.
func (s *BusinessService) HasProfile(ctx context.Context, userID string) (bool, error) {
	if s.config.Features.EnableCaching {
		if profile, err := s.cache.GetProfile(ctx, userID); err == nil && profile != nil {
			return true, nil
		}
	}
	return s.store.Exists(ctx, userID)
}
