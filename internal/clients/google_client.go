package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sharadkumardubey/billify-trip-generator/internal/config"
	"github.com/sharadkumardubey/billify-trip-generator/internal/errors"
	"github.com/sharadkumardubey/billify-trip-generator/internal/logging"
)

// Identity is the verified caller returned by the identity provider.
type Identity struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified string `json:"email_verified"`
	Name          string `json:"name"`
	Audience      string `json:"aud"`
}

// GoogleClient verifies Google ID tokens against the tokeninfo endpoint.
type GoogleClient struct {
	tokenInfoURL string
	clientID     string
	httpClient   *http.Client
	logger       *logging.LoggerV2
}

func NewGoogleClient(cfg config.AuthConfig, logger *logging.LoggerV2) *GoogleClient {
	return &GoogleClient{
		tokenInfoURL: cfg.GoogleTokenInfoURL,
		clientID:     cfg.GoogleClientID,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger,
	}
}

// Verify checks idToken with the provider. Rejected tokens return an error
// wrapping errors.ErrUnauthenticated.
func (c *GoogleClient) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if c.clientID == "" {
		return nil, fmt.Errorf("%w: no Google client ID configured", errors.ErrUnauthenticated)
	}

	u := c.tokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Failed to reach identity provider", logging.Fields{"error": err.Error()})
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
		return nil, fmt.Errorf("%w: identity provider rejected token", errors.ErrUnauthenticated)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity provider returned status %d", resp.StatusCode)
	}

	var id Identity
	if err := json.NewDecoder(resp.Body).Decode(&id); err != nil {
		return nil, err
	}

	if id.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", errors.ErrUnauthenticated)
	}
	if id.Audience != c.clientID {
		c.logger.Warn("Token issued for another client", logging.Fields{"aud": id.Audience})
		return nil, fmt.Errorf("%w: token audience mismatch", errors.ErrUnauthenticated)
	}
	if id.Email != "" && id.EmailVerified != "true" {
		return nil, fmt.Errorf("%w: email not verified", errors.ErrUnauthenticated)
	}

	c.logger.Debug("Identity verified", logging.Fields{"sub": id.Subject})
	return &id, nil
}
