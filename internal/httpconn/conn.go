// Package httpconn implements types.Connection over HTTPS with OAuth2
// authentication and client-side rate limiting.
package httpconn

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// TokenPath is the OAuth2 token endpoint, relative to the base URL.
const TokenPath = "/oauth/v1/token"

// RequestIDHeader carries the per-request identifier.
const RequestIDHeader = "X-Request-Id"

// maxErrorBody bounds how much of a failed response is kept on APIError.
const maxErrorBody = 64 << 10

// Conn is a types.Connection backed by net/http. It is safe for
// concurrent use.
type Conn struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
	base    *http.Client
}

// Option configures a Conn.
type Option func(*Conn)

// WithHTTPClient sets the client used for transport and token refresh.
// Its Transport is wrapped with OAuth2 authorization.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Conn) {
		if hc != nil {
			c.base = hc
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conn) {
		if l != nil {
			c.logger = l
		}
	}
}

// New validates cfg and returns a connection using it.
func New(cfg types.Config, opts ...Option) (*Conn, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("httpconn: %w", err)
	}

	c := &Conn{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		logger:  slog.Default(),
		base:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("client", "hubspot"))

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, c.base)
	c.client = oauth2.NewClient(ctx, c.tokenSource(ctx, cfg))
	c.client.Timeout = cfg.Timeout

	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	}
	return c, nil
}

func (c *Conn) tokenSource(ctx context.Context, cfg types.Config) oauth2.TokenSource {
	if !cfg.UsesRefreshToken() {
		return oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: cfg.AccessToken,
			TokenType:   "Bearer",
		})
	}
	oc := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + TokenPath,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	return oc.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
}

// GetJSON issues a GET request.
func (c *Conn) GetJSON(ctx context.Context, path string, params types.Params) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, path, params, nil)
}

// PostJSON issues a POST request with body encoded as JSON.
func (c *Conn) PostJSON(ctx context.Context, path string, params types.Params, body any) (json.RawMessage, error) {
	return c.do(ctx, http.MethodPost, path, params, body)
}

// DeleteJSON issues a DELETE request.
func (c *Conn) DeleteJSON(ctx context.Context, path string, params types.Params) (json.RawMessage, error) {
	return c.do(ctx, http.MethodDelete, path, params, nil)
}

func (c *Conn) do(ctx context.Context, method, path string, params types.Params, body any) (json.RawMessage, error) {
	target, noParse, err := buildURL(c.baseURL, path, params)
	if err != nil {
		return nil, err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &types.APIError{Message: "rate limiter", Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	reqID := newRequestID()
	req.Header.Set(RequestIDHeader, reqID)

	log := c.logger.With(
		slog.String("method", method),
		slog.String("path", path),
		slog.String("request_id", reqID),
	)
	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Warn("request failed", slog.Any("error", err))
		return nil, &types.APIError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()
	log.Debug("request done",
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, newAPIError(resp.StatusCode, data)
	}

	if noParse {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &types.APIError{StatusCode: resp.StatusCode, Message: "read response body", Err: err}
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}
	if !json.Valid(data) {
		return nil, &types.APIError{StatusCode: resp.StatusCode, Message: "response is not valid JSON", Body: data}
	}
	return json.RawMessage(data), nil
}

func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// errorBody is the error envelope returned by the HubSpot API.
type errorBody struct {
	Status        string `json:"status"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId"`
	Category      string `json:"category"`
}

// newAPIError builds an APIError from a non-2xx response. When the body is
// not a HubSpot error envelope the trimmed body text or status text is
// used as the message.
func newAPIError(status int, body []byte) *types.APIError {
	e := &types.APIError{StatusCode: status, Body: body}
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err == nil && eb.Message != "" {
		e.Message = eb.Message
		e.CorrelationID = eb.CorrelationID
		return e
	}
	if text := strings.TrimSpace(string(body)); text != "" {
		e.Message = text
	} else {
		e.Message = http.StatusText(status)
	}
	return e
}
