package auth

import (
	"context"
	"fmt"
	"strings"

	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/models"
	"github.com/sharadkumardubey/billify-trip-generator/internal/repository"
)

// ProfileChecker reports whether a user has registered a business.
type ProfileChecker interface {
	HasProfile(ctx context.Context, userID string) (bool, error)
}

// Resolver turns a bearer token into a Session: signature and expiry,
// then the revocation list, then the profile flag.
type Resolver struct {
	tokens   *TokenIssuer
	revoked  repository.RevocationList
	profiles ProfileChecker
}

func NewResolver(tokens *TokenIssuer, revoked repository.RevocationList, profiles ProfileChecker) *Resolver {
	return &Resolver{tokens: tokens, revoked: revoked, profiles: profiles}
}

// Resolve returns the session for token.
func (r *Resolver) Resolve(ctx context.Context, token string) (*models.Session, error) {
	claims, err := r.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := r.revoked.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check revocation: %w", err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: session signed out", errors.ErrUnauthenticated)
	}

	hasProfile, err := r.profiles.HasProfile(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}

	return &models.Session{
		UserID:             claims.Subject,
		Email:              claims.Email,
		Name:               claims.Name,
		HasBusinessProfile: hasProfile,
		ExpiresAt:          claims.ExpiresAt.Time,
		TokenID:            claims.ID,
	}, nil
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
