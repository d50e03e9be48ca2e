package auth

import (
	"context"
	"time"

	"github.com/sharadkumardubey/billify-trip-generator/internal/clients"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/sharadkumardubey/billify-trip-generator/internal/repository"
)

// IdentityVerifier checks an identity provider token.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*clients.Identity, error)
}

// SessionPublisher announces session lifecycle changes.
type SessionPublisher interface {
	PublishSignedIn(ctx context.Context, sess *models.Session) error
	PublishSignedOut(ctx context.Context, sess *models.Session) error
}

// Service signs users in and out.
type Service struct {
	verifier      IdentityVerifier
	tokens        *TokenIssuer
	revoked       repository.RevocationList
	profiles      ProfileChecker
	publisher     SessionPublisher
	publishEvents bool
	logger        *logging.LoggerV2
	now           func() time.Time
}

func NewService(
	verifier IdentityVerifier,
	tokens *TokenIssuer,
	revoked repository.RevocationList,
	profiles ProfileChecker,
	publisher SessionPublisher,
	publishEvents bool,
) *Service {
	return &Service{
		verifier:      verifier,
		tokens:        tokens,
		revoked:       revoked,
		profiles:      profiles,
		publisher:     publisher,
		publishEvents: publishEvents,
		logger:        logging.NewLoggerV2("auth-service"),
		now:           time.Now,
	}
}

// SignIn exchanges an identity provider token for a session token.
func (s *Service) SignIn(ctx context.Context, idToken string) (*models.SignInResponse, error) {
	id, err := s.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	hasProfile, err := s.profiles.HasProfile(ctx, id.Subject)
	if err != nil {
		return nil, err
	}

	sess := &models.Session{
		UserID:             id.Subject,
		Email:              id.Email,
		Name:               id.Name,
		HasBusinessProfile: hasProfile,
	}
	token, err := s.tokens.Issue(sess, s.now())
	if err != nil {
		return nil, err
	}

	if s.publishEvents {
		if err := s.publisher.PublishSignedIn(ctx, sess); err != nil {
			s.logger.Error("Failed to publish sign-in event", logging.Fields{
				"user_id": sess.UserID,
				"error":   err.Error(),
			})
		}
	}

	s.logger.Info("User signed in", logging.Fields{
		"user_id":     sess.UserID,
		"has_profile": hasProfile,
	})
	return &models.SignInResponse{Token: token, Session: sess, NextStep: sess.NextStep()}, nil
}

// SignOut revokes the session's token for the rest of its lifetime.
func (s *Service) SignOut(ctx context.Context, sess *models.Session) error {
	if sess == nil {
		return errors.ErrUnauthenticated
	}

	ttl := sess.ExpiresAt.Sub(s.now())
	if err := s.revoked.Revoke(ctx, sess.TokenID, ttl); err != nil {
		s.logger.Error("Failed to revoke session", logging.Fields{
			"user_id": sess.UserID,
			"error":   err.Error(),
		})
		return err
	}

	if s.publishEvents {
		if err := s.publisher.PublishSignedOut(ctx, sess); err != nil {
			s.logger.Error("Failed to publish sign-out event", logging.Fields{
				"user_id": sess.UserID,
				"error":   err.Error(),
			})
		}
	}

	s.logger.Info("User signed out", logging.Fields{"user_id": sess.UserID})
	return nil
}
