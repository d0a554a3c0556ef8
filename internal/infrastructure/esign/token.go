package esign

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	infraconfig "github.com/lexflow/backend/internal/infrastructure/config"
)

const (
	jwtBearerGrant = "urn:ietf:params:oauth:grant-type:jwt-bearer"
	tokenScopes    = "signature impersonation"
	// refreshSkew renews the cached token before it actually expires
	refreshSkew = time.Minute
)

// tokenSource obtains DocuSign access tokens through the JWT grant and
// caches them until shortly before expiry.
type tokenSource struct {
	integrationKey string
	userID         string
	oauthBaseURL   string
	audience       string
	lifetime       time.Duration
	key            *rsa.PrivateKey
	httpClient     *http.Client
	now            func() time.Time

	mu        sync.Mutex
	token     string
	expiresAt time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

func newTokenSource(cfg infraconfig.DocuSignConfig, httpClient *http.Client) (*tokenSource, error) {
	key, err := loadPrivateKey(cfg)
	if err != nil {
		return nil, err
	}

	oauthBase, audience := oauthEndpoint(cfg.OAuthHost)
	lifetime := cfg.TokenLifetime
	if lifetime <= 0 {
		lifetime = time.Hour
	}

	return &tokenSource{
		integrationKey: cfg.IntegrationKey,
		userID:         cfg.UserID,
		oauthBaseURL:   oauthBase,
		audience:       audience,
		lifetime:       lifetime,
		key:            key,
		httpClient:     httpClient,
		now:            time.Now,
	}, nil
}

// oauthEndpoint accepts either a bare host (account-d.docusign.com) or a URL
func oauthEndpoint(host string) (baseURL, audience string) {
	host = strings.TrimRight(host, "/")
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		u, err := url.Parse(host)
		if err == nil {
			return host, u.Host
		}
	}
	return "https://" + host, host
}

func loadPrivateKey(cfg infraconfig.DocuSignConfig) (*rsa.PrivateKey, error) {
	pem := []byte(cfg.PrivateKey)
	if len(pem) == 0 {
		if cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("docusign: private key is required")
		}
		data, err := os.ReadFile(cfg.PrivateKeyPath)
		if err != nil {
			return nil, fmt.Errorf("docusign: failed to read private key: %w", err)
		}
		pem = data
	}

	key, err := jwt.ParseRSAPrivateKeyFromPEM(pem)
	if err != nil {
		return nil, fmt.Errorf("docusign: invalid private key: %w", err)
	}
	return key, nil
}

// Token returns a valid access token, requesting a new one when needed
func (s *tokenSource) Token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if s.token != "" && now.Add(refreshSkew).Before(s.expiresAt) {
		return s.token, nil
	}

	assertion, err := s.assertion(now)
	if err != nil {
		return "", err
	}

	form := url.Values{}
	form.Set("grant_type", jwtBearerGrant)
	form.Set("assertion", assertion)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.oauthBaseURL+"/oauth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	var body tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("token response decode failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK || body.AccessToken == "" {
		reason := body.Error
		if body.Description != "" {
			reason = body.Description
		}
		return "", fmt.Errorf("authentication failed: %s", reason)
	}

	expiresIn := time.Duration(body.ExpiresIn) * time.Second
	if expiresIn <= 0 {
		expiresIn = s.lifetime
	}
	s.token = body.AccessToken
	s.expiresAt = now.Add(expiresIn)
	return s.token, nil
}

func (s *tokenSource) assertion(now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"iss":   s.integrationKey,
		"sub":   s.userID,
		"aud":   s.audience,
		"iat":   now.Unix(),
		"exp":   now.Add(s.lifetime).Unix(),
		"scope": tokenScopes,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("failed to sign assertion: %w", err)
	}
	return signed, nil
}
