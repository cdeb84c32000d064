// Package contactsapi is the HTTP client for the contacts microservice and its
// satellite services (roles, gaming accounts, deals).
//
// The client is thin on purpose: no retries, no caching. Every request
// carries a credential and an X-Request-ID. Non-2xx responses become
// *APIError; 204 and empty bodies decode to nothing.
package contactsapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 15 * time.Second

// Config configures a Client.
type Config struct {
	ContactsURL string // base URL of the contacts service (required)
	RolesURL    string // players/partners/hnc-members; defaults to ContactsURL
	GamingURL   string // gaming-accounts and deals; defaults to ContactsURL
	Timeout     time.Duration
	Credential  Credential // required

	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
}

// Client talks to the remote services. It is safe for concurrent use.
type Client struct {
	contacts *resty.Client
	roles    *resty.Client
	gaming   *resty.Client
	cred     Credential
	log      *zap.Logger
}

// New builds a Client from cfg.
func New(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.ContactsURL == "" {
		return nil, errors.New("contactsapi: contacts URL is required")
	}
	if cfg.Credential == nil {
		return nil, errors.New("contactsapi: credential is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.RolesURL == "" {
		cfg.RolesURL = cfg.ContactsURL
	}
	if cfg.GamingURL == "" {
		cfg.GamingURL = cfg.ContactsURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		contacts: newResty(cfg.ContactsURL, cfg),
		roles:    newResty(cfg.RolesURL, cfg),
		gaming:   newResty(cfg.GamingURL, cfg),
		cred:     cfg.Credential,
		log:      logger,
	}, nil
}

func newResty(baseURL string, cfg Config) *resty.Client {
	var rc *resty.Client
	if cfg.HTTPClient != nil {
		rc = resty.NewWithClient(cfg.HTTPClient)
	} else {
		rc = resty.New()
	}
	return rc.
		SetBaseURL(baseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
}

// envelope is the {data: ...} wrapper every service uses.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// call issues one request and, when out is non-nil and the response has a
// body, decodes the data member into out.
func (c *Client) call(ctx context.Context, rc *resty.Client, method, path string, q url.Values, body, out any) error {
	req := rc.R().SetContext(ctx)
	if err := c.cred.Apply(ctx, req); err != nil {
		return err
	}

	reqID := uuid.NewString()
	req.SetHeader(RequestIDHeader, reqID)
	if len(q) > 0 {
		req.SetQueryParamsFromValues(q)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		c.log.Error("remote call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}

	status := resp.StatusCode()
	if status < 200 || status > 299 {
		apiErr := newAPIError(status, resp.Body())
		c.log.Warn("remote call returned error status",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", reqID),
			zap.Int("status", status),
			zap.String("message", apiErr.Message))
		return apiErr
	}

	c.log.Debug("remote call ok",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", reqID),
		zap.Int("status", status),
		zap.Duration("elapsed", resp.Time()))

	raw := resp.Body()
	if out == nil || status == http.StatusNoContent || len(raw) == 0 {
		return nil
	}
	if w, ok := out.(wholeBody); ok {
		if err := json.Unmarshal(raw, w.v); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
		return nil
	}
	return decodeData(raw, out)
}

// wholeBody marks an out value that receives the full body, not its data
// member.
type wholeBody struct{ v any }

// decodeData unwraps {data: ...}. Bodies without a data member are decoded
// whole.
func decodeData(raw []byte, out any) error {
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && len(env.Data) > 0 && string(env.Data) != "null" {
		raw = env.Data
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Ping checks that the contacts service answers. Any 2xx is healthy. The
// health endpoint is public, so no credential is attached.
func (c *Client) Ping(ctx context.Context) error {
	resp, err := c.contacts.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, uuid.NewString()).
		Get("/health")
	if err != nil {
		return fmt.Errorf("GET /health: %w", err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return newAPIError(resp.StatusCode(), resp.Body())
	}
	return nil
}
