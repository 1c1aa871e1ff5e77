// Package spotify provides the core Spotify Web API client with
// client-credentials authentication, rate-limit-aware retries, and
// error handling.
package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/spotifetch/spotifetch/pkg/logging"
)

// Prometheus metrics for Spotify client operations.
var (
	apiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotifetch_requests_total",
		Help: "Total Spotify API requests by endpoint and status",
	}, []string{"endpoint", "status"})

	apiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "spotifetch_request_duration_seconds",
		Help:    "Spotify API request duration in seconds by endpoint",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"endpoint"})

	apiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "spotifetch_errors_total",
		Help: "Total Spotify API errors by status",
	}, []string{"status"})
)

// Default endpoints for the Spotify Web API.
const (
	// DefaultBaseURL is the Web API base.
	DefaultBaseURL = "https://api.spotify.com"

	// DefaultTokenURL is the accounts service token endpoint used for the
	// client-credentials exchange.
	DefaultTokenURL = "https://accounts.spotify.com/api/token"
)

// Config holds the client configuration.
type Config struct {
	// ClientID and ClientSecret are the application credentials used for
	// the client-credentials grant. Both are required.
	ClientID     string
	ClientSecret string

	// BaseURL overrides the Web API base (used for testing).
	BaseURL string

	// TokenURL overrides the token endpoint (used for testing).
	TokenURL string

	// HTTPClient is the underlying HTTP client. Defaults to a client
	// with a 30 second timeout.
	HTTPClient *http.Client
}

// Client is a Spotify Web API client. It must be authenticated exactly
// once via Authenticate before any request; the token is never refreshed
// and is assumed valid for the remainder of the run.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	tokenURL     string
	clientID     string
	clientSecret string
	token        *oauth2.Token
	logger       zerolog.Logger
}

// New creates a new Spotify client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("client ID is required")
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("client secret is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = DefaultTokenURL
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		tokenURL:     tokenURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		logger:       logging.NewLogger("spotify-client"),
	}, nil
}

// Authenticate performs the one-time client-credentials exchange and
// stores the resulting bearer token. The exchange POSTs to the token
// endpoint with HTTP Basic auth and form body grant_type=client_credentials.
// A rejected exchange surfaces as *AuthError with the upstream status
// and body.
func (c *Client) Authenticate(ctx context.Context) error {
	conf := &clientcredentials.Config{
		ClientID:     c.clientID,
		ClientSecret: c.clientSecret,
		TokenURL:     c.tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.httpClient)
	token, err := conf.Token(ctx)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			authErr := &AuthError{Body: string(retrieveErr.Body)}
			if retrieveErr.Response != nil {
				authErr.StatusCode = retrieveErr.Response.StatusCode
			}
			c.logger.Error().
				Int("status", authErr.StatusCode).
				Msg("Token exchange rejected")
			return authErr
		}
		return fmt.Errorf("token exchange: %w", err)
	}

	c.token = token
	c.logger.Info().
		Str("token_type", token.TokenType).
		Time("expires_at", token.Expiry).
		Str("scope", tokenScope(token)).
		Msg("Authenticated with client credentials")

	return nil
}

// tokenScope extracts the scope string granted with the token, if any.
func tokenScope(token *oauth2.Token) string {
	scope, _ := token.Extra("scope").(string)
	return scope
}

// get issues an authenticated GET against the API base and decodes the
// JSON response into v. Any non-2xx status returns *APIError carrying
// the status, headers, and body; the retry wrapper inspects that error
// to handle 429 responses.
func (c *Client) get(ctx context.Context, endpoint string, query url.Values, v any) error {
	if c.token == nil {
		return ErrNotAuthenticated
	}

	u := c.baseURL + endpoint
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token.AccessToken)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	apiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		apiRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	apiRequestsTotal.WithLabelValues(endpoint, fmt.Sprintf("%d", resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErrorsTotal.WithLabelValues(fmt.Sprintf("%d", resp.StatusCode)).Inc()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.logger.Warn().
			Str("endpoint", endpoint).
			Int("status", resp.StatusCode).
			Msg("Spotify API error response")

		return &APIError{
			StatusCode: resp.StatusCode,
			Header:     resp.Header.Clone(),
			Body:       string(body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	c.logger.Debug().
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Msg("Spotify request succeeded")

	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}
