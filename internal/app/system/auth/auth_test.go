package auth_test

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func newTestSessionManager(t *testing.T) *auth.SessionManager {
	t.Helper()
	sm, err := auth.NewSessionManager(
		"test-session-key-must-be-32-chars-long",
		"test-session",
		"",
		24*time.Hour,
		false,
		zap.NewNop(),
	)
	if err != nil {
		t.Fatalf("failed to create session manager: %v", err)
	}
	return sm
}

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if called != nil {
			*called = true
		}
		w.WriteHeader(http.StatusOK)
	})
}

func TestNewSessionManager_EmptyKey(t *testing.T) {
	if _, err := auth.NewSessionManager("", "x", "", time.Hour, false, zap.NewNop()); err == nil {
		t.Fatal("expected error for empty session key")
	}
}

func TestRequireCredential_NoPrincipal_RedirectsToSignIn(t *testing.T) {
	sm := newTestSessionManager(t)
	sm.SignInURL = "https://portal.example/sign-in"

	handler := sm.LoadCredential(sm.RequireCredential(okHandler(nil)))

	req := httptest.NewRequest("GET", "/contacts?q=ada", nil)
	req.Header.Set("Accept", "text/html")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	want := "https://portal.example/sign-in?return=%2Fcontacts%3Fq%3Dada"
	if loc := rec.Header().Get("Location"); loc != want {
		t.Errorf("Location = %q, want %q", loc, want)
	}
}

func TestRequireCredential_NoPrincipal_API_Returns401(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireCredential(okHandler(nil))

	req := httptest.NewRequest("GET", "/contacts/export.xlsx", nil)
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
}

func TestRequireCredential_NoPrincipal_HTMX_ReturnsHXRedirect(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.RequireCredential(okHandler(nil))

	req := httptest.NewRequest("GET", "/contacts", nil)
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status %d, got %d", http.StatusUnauthorized, rec.Code)
	}
	if hx := rec.Header().Get("HX-Redirect"); !strings.HasPrefix(hx, "/login?return=") {
		t.Errorf("expected HX-Redirect to /login, got %q", hx)
	}
}

func jwt(payload string) string {
	enc := base64.RawURLEncoding.EncodeToString
	return enc([]byte(`{"alg":"none"}`)) + "." + enc([]byte(payload)) + ".sig"
}

func TestLoadCredential_BearerHeader(t *testing.T) {
	sm := newTestSessionManager(t)

	var got auth.Principal
	handler := sm.LoadCredential(sm.RequireCredential(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.CurrentPrincipal(r)
	})))

	tok := jwt(`{"sub":"user-42","name":"Grace Hopper"}`)
	req := httptest.NewRequest("GET", "/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if got.Subject != "user-42" || got.Name != "Grace Hopper" {
		t.Errorf("principal = %+v", got)
	}
	if got.Token == nil || got.Token.AccessToken != tok {
		t.Error("token not carried")
	}
}

func TestLoadCredential_ExpiredBearerIsRejected(t *testing.T) {
	sm := newTestSessionManager(t)
	handler := sm.LoadCredential(sm.RequireCredential(okHandler(nil)))

	past := time.Now().Add(-time.Hour).Unix()
	req := httptest.NewRequest("GET", "/contacts", nil)
	req.Header.Set("Authorization", "Bearer "+jwt(`{"sub":"u","exp":`+strconv.FormatInt(past, 10)+`}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestLoadCredential_OpaqueTokenGetsStableSubject(t *testing.T) {
	sm := newTestSessionManager(t)

	var subjects []string
	handler := sm.LoadCredential(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.CurrentPrincipal(r)
		subjects = append(subjects, p.Subject)
	}))

	for _, tok := range []string{"opaque-a", "opaque-a", "opaque-b"} {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("Authorization", "bearer "+tok)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if subjects[0] == "" || subjects[0] != subjects[1] || subjects[0] == subjects[2] {
		t.Errorf("subjects = %v", subjects)
	}
	if strings.Contains(subjects[0], "opaque") {
		t.Error("subject must not leak the token")
	}
}

func TestLoadCredential_SessionCookie(t *testing.T) {
	sm := newTestSessionManager(t)

	// Host shell writes the session.
	save := httptest.NewRecorder()
	err := sm.SaveCredential(save, httptest.NewRequest("GET", "/", nil), auth.Principal{
		Subject: "u-7",
		Name:    "Ada",
		Token:   &oauth2.Token{AccessToken: "session-token", Expiry: time.Now().Add(time.Hour)},
	})
	if err != nil {
		t.Fatal(err)
	}
	cookies := save.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("no session cookie written")
	}

	var ts oauth2.TokenSource
	var p auth.Principal
	handler := sm.LoadCredential(sm.RequireCredential(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ = auth.CurrentPrincipal(r)
		ts = auth.TokenSource(r.Context())
	})))

	req := httptest.NewRequest("GET", "/contacts", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if p.Subject != "u-7" || p.Name != "Ada" {
		t.Errorf("principal = %+v", p)
	}
	tok, err := ts.Token()
	if err != nil || tok.AccessToken != "session-token" {
		t.Errorf("TokenSource token = %v, %v", tok, err)
	}
}

func TestLoadCredential_ForeignCookieIsIgnored(t *testing.T) {
	sm := newTestSessionManager(t)
	called := false
	handler := sm.LoadCredential(okHandler(&called))

	req := httptest.NewRequest("GET", "/", nil)
	req.AddCookie(&http.Cookie{Name: "test-session", Value: "not-a-signed-value"})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !called || rec.Code != http.StatusOK {
		t.Error("undecodable cookie should fall through as anonymous")
	}
}

// Claims are unverified, so two tokens naming the same sub must not share a
// cache scope.
func TestLoadCredential_CacheScopeComesFromToken(t *testing.T) {
	sm := newTestSessionManager(t)

	var got []auth.Principal
	handler := sm.LoadCredential(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, _ := auth.CurrentPrincipal(r)
		got = append(got, p)
	}))

	genuine := jwt(`{"sub":"alice"}`)
	forged := strings.TrimSuffix(genuine, ".sig") + ".forged"
	for _, tok := range []string{genuine, forged, genuine} {
		req := httptest.NewRequest("GET", "/contacts", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	if len(got) != 3 {
		t.Fatalf("handler ran %d times, want 3", len(got))
	}
	if got[0].Subject != "alice" || got[1].Subject != "alice" {
		t.Errorf("subjects = %q, %q; want alice for display", got[0].Subject, got[1].Subject)
	}
	if got[0].CacheScope() == got[1].CacheScope() {
		t.Error("forged token shares the cache scope of the real one")
	}
	if got[0].CacheScope() != got[2].CacheScope() {
		t.Error("same token must keep the same cache scope")
	}
	if strings.Contains(got[0].CacheScope(), "alice") || strings.Contains(got[0].CacheScope(), genuine) {
		t.Errorf("cache scope %q leaks claims or token", got[0].CacheScope())
	}
}

func TestServicePrincipal(t *testing.T) {
	var p auth.Principal
	var ok bool
	handler := auth.ServicePrincipal(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok = auth.CurrentPrincipal(r)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if !ok || p.Subject != "service" || p.Token != nil {
		t.Errorf("principal = %+v, %v", p, ok)
	}
	if auth.TokenSource(auth.WithPrincipal(context.Background(), p)) != nil {
		t.Error("service principal has no bearer token")
	}
	if p.CacheScope() != "service" {
		t.Errorf("CacheScope() = %q, want service", p.CacheScope())
	}
}

func TestTokenSource_NoPrincipal(t *testing.T) {
	if auth.TokenSource(context.Background()) != nil {
		t.Error("expected nil token source without a principal")
	}
}
