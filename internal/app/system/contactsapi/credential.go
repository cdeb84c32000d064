package contactsapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-resty/resty/v2"
	"golang.org/x/oauth2"
)

// ErrNoCredential is returned when no bearer token is available for the
// request. No request is sent in that case.
var ErrNoCredential = errors.New("contactsapi: no credential available")

// Credential attaches authentication to an outgoing request.
type Credential interface {
	Apply(ctx context.Context, req *resty.Request) error
}

// BearerCredential sends the caller's access token as Authorization: Bearer.
// Source returns the token source for the request, usually the signed-in
// user's token placed in the context by the auth middleware.
type BearerCredential struct {
	Source func(ctx context.Context) oauth2.TokenSource
}

func (b BearerCredential) Apply(ctx context.Context, req *resty.Request) error {
	if b.Source == nil {
		return ErrNoCredential
	}
	ts := b.Source(ctx)
	if ts == nil {
		return ErrNoCredential
	}
	tok, err := ts.Token()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoCredential, err)
	}
	if tok == nil || tok.AccessToken == "" {
		return ErrNoCredential
	}
	req.SetAuthToken(tok.AccessToken)
	return nil
}

// APIKeyCredential sends a static key in a fixed header.
type APIKeyCredential struct {
	Header string // defaults to DefaultAPIKeyHeader
	Key    string
}

// DefaultAPIKeyHeader is the header used when APIKeyCredential.Header is empty.
const DefaultAPIKeyHeader = "X-API-Key"

func (k APIKeyCredential) Apply(_ context.Context, req *resty.Request) error {
	if k.Key == "" {
		return ErrNoCredential
	}
	h := k.Header
	if h == "" {
		h = DefaultAPIKeyHeader
	}
	req.SetHeader(h, k.Key)
	return nil
}
