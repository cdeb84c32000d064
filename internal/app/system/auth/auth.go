// Package auth reads the caller's credential. ContactHub never signs anyone
// in: the host shell owns the session cookie and the identity provider owns
// the tokens. This package only finds the access token for the current
// request and exposes it to the contacts client.
package auth

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys shared with the host shell                                    |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	accessTokenKey = "access_token"
	tokenExpiryKey = "token_expiry" // unix seconds
	userIDKey      = "user_id"
	userNameKey    = "user_name"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Principal                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// Principal is the caller of the current request.
type Principal struct {
	Subject string // from unverified claims or the session; display and audit only
	Name    string
	Token   *oauth2.Token // nil for the api_key service principal
}

// CacheScope keys cached reads and rate limits. It is a hash of the access
// token, never a claim, so a cached result is only served to a caller
// holding the same token the contacts service accepted. The service
// principal has no token and uses its subject.
func (p Principal) CacheScope() string {
	if p.Token != nil && p.Token.AccessToken != "" {
		sum := sha256.Sum256([]byte(p.Token.AccessToken))
		return "tok-" + hex.EncodeToString(sum[:])
	}
	return p.Subject
}

type ctxKey string

const principalKey ctxKey = "principal"

// WithPrincipal returns ctx carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the principal in ctx.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// CurrentPrincipal returns the principal of r.
func CurrentPrincipal(r *http.Request) (Principal, bool) {
	return FromContext(r.Context())
}

// TokenSource returns the caller's token as an oauth2.TokenSource, or nil
// when the request carries no bearer token. It matches
// contactsapi.BearerCredential.Source.
func TokenSource(ctx context.Context) oauth2.TokenSource {
	p, ok := FromContext(ctx)
	if !ok || p.Token == nil || !p.Token.Valid() {
		return nil
	}
	return oauth2.StaticTokenSource(p.Token)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Session manager                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager reads the host shell's session cookie.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger

	// SignInURL is where browsers without a credential are sent. The
	// original request URI is appended as ?return=.
	SignInURL string
}

// NewSessionManager builds a manager for the cookie called name, signed
// with sessionKey. secure selects Secure + SameSite=None cookies for HTTPS
// embedding; use false for local http.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "contacthub-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger, SignInURL: "/login"}, nil
}

// SaveCredential writes p into the session. The host shell normally does
// this; ContactHub uses it for local development and tests.
func (sm *SessionManager) SaveCredential(w http.ResponseWriter, r *http.Request, p Principal) error {
	sess, _ := sm.store.Get(r, sm.name)
	sess.Values[userIDKey] = p.Subject
	sess.Values[userNameKey] = p.Name
	if p.Token != nil {
		sess.Values[accessTokenKey] = p.Token.AccessToken
		if !p.Token.Expiry.IsZero() {
			sess.Values[tokenExpiryKey] = p.Token.Expiry.Unix()
		}
	}
	return sess.Save(r, w)
}

// LoadCredential puts the caller's Principal into the request context.
// An Authorization: Bearer header (embedded mode) wins over the session
// cookie. Requests with neither continue without a principal.
func (sm *SessionManager) LoadCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := principalFromHeader(r); ok {
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
			return
		}
		if p, ok := sm.principalFromSession(r); ok {
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (sm *SessionManager) principalFromSession(r *http.Request) (Principal, bool) {
	sess, err := sm.store.Get(r, sm.name)
	if err != nil {
		var cookieErr securecookie.Error
		if errors.As(err, &cookieErr) && cookieErr.IsDecode() {
			// Rotated key or a cookie from another app; treat as signed out.
			sm.log.Debug("session cookie could not be decoded", zap.Error(err))
		} else {
			sm.log.Warn("session read failed", zap.Error(err))
		}
		return Principal{}, false
	}

	tok, _ := sess.Values[accessTokenKey].(string)
	if tok == "" {
		return Principal{}, false
	}
	t := &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}
	if exp, ok := sess.Values[tokenExpiryKey].(int64); ok && exp > 0 {
		t.Expiry = time.Unix(exp, 0)
	}
	if !t.Valid() {
		return Principal{}, false
	}

	p := Principal{Token: t}
	p.Subject, _ = sess.Values[userIDKey].(string)
	p.Name, _ = sess.Values[userNameKey].(string)
	if p.Subject == "" {
		p.Subject = tokenSubject(tok)
	}
	return p, true
}

// principalFromHeader reads Authorization: Bearer. The token is not
// verified here; the contacts service does that. Subject and name come
// from the JWT claims when the token is a JWT.
func principalFromHeader(r *http.Request) (Principal, bool) {
	h := r.Header.Get("Authorization")
	scheme, tok, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return Principal{}, false
	}
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return Principal{}, false
	}

	p := Principal{Token: &oauth2.Token{AccessToken: tok, TokenType: "Bearer"}}
	if c, ok := jwtClaims(tok); ok {
		p.Subject = c.Subject
		p.Name = c.Name
		if c.Expiry > 0 {
			p.Token.Expiry = time.Unix(c.Expiry, 0)
		}
	}
	if p.Subject == "" {
		p.Subject = tokenSubject(tok)
	}
	return p, true
}

type claims struct {
	Subject string `json:"sub"`
	Name    string `json:"name"`
	Expiry  int64  `json:"exp"`
}

func jwtClaims(tok string) (claims, bool) {
	parts := strings.Split(tok, ".")
	if len(parts) != 3 {
		return claims{}, false
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return claims{}, false
	}
	var c claims
	if json.Unmarshal(raw, &c) != nil {
		return claims{}, false
	}
	return c, true
}

// tokenSubject derives a stable, non-reversible subject from a raw token.
func tokenSubject(tok string) string {
	sum := sha256.Sum256([]byte(tok))
	return "tok-" + hex.EncodeToString(sum[:8])
}

// ServicePrincipal is the fixed principal used in api_key mode, where every
// request goes out with the deployment's key.
func ServicePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := Principal{Subject: "service", Name: "Service"}
		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
	})
}

// RequireCredential ensures there is a principal with a usable token in
// context (set by LoadCredential).
// If not:
//   - HTMX: sends HX-Redirect to the sign-in URL
//   - HTML: 303 redirect to the sign-in URL
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireCredential(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if p, ok := CurrentPrincipal(r); ok && p.Token.Valid() {
			next.ServeHTTP(w, r)
			return
		}

		dest := sm.signInURL(r)

		// HTMX: full-page client redirect (no partial swap)
		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", dest)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		// Browser/HTML: go to sign-in and preserve return
		if wantsHTML(r) {
			http.Redirect(w, r, dest, http.StatusSeeOther)
			return
		}

		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

func (sm *SessionManager) signInURL(r *http.Request) string {
	base := sm.SignInURL
	if base == "" {
		base = "/login"
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	return base + sep + "return=" + url.QueryEscape(r.URL.RequestURI())
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
