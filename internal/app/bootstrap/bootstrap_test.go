package bootstrap

import (
	"context"
	"encoding/json"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dalemusser/contacthub/internal/app/system/querycache"
	"github.com/dalemusser/contacthub/internal/app/system/workers"
	"github.com/dalemusser/contacthub/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"github.com/gorilla/csrf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		ContactsAPIURL:  "http://contacts.local",
		RolesAPIURL:     "http://contacts.local",
		GamingAPIURL:    "https://gaming.local/v1",
		APIAuthMode:     authModeBearer,
		APIKeyHeader:    "X-API-Key",
		APITimeout:      15 * time.Second,
		SessionKey:      "0123456789abcdef0123456789abcdef",
		SessionName:     "contacthub-session",
		SessionMaxAge:   time.Hour,
		SignInURL:       "/login",
		CSRFKey:         "0123456789abcdef0123456789abcdef",
		SiteName:        "ContactHub",
		MongoURI:        "mongodb://localhost:27017",
		MongoDatabase:   "contact_hub_test",
		CacheBackend:    cacheMemory,
		CacheTTL:        30 * time.Second,
		AuditLog:        "all",
		DefaultPageSize: 10,

		MutationRateLimit: 60,
	}
}

func TestValidateConfig(t *testing.T) {
	core := &config.CoreConfig{Env: "dev"}

	tests := []struct {
		name    string
		mutate  func(c *AppConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "contacts url without scheme", mutate: func(c *AppConfig) { c.ContactsAPIURL = "contacts.local" }, wantErr: "contacts_api_url"},
		{name: "gaming url ftp", mutate: func(c *AppConfig) { c.GamingAPIURL = "ftp://gaming.local" }, wantErr: "gaming_api_url"},
		{name: "unknown auth mode", mutate: func(c *AppConfig) { c.APIAuthMode = "basic" }, wantErr: "api_auth_mode"},
		{name: "api key mode without key", mutate: func(c *AppConfig) { c.APIAuthMode = authModeAPIKey }, wantErr: "requires api_key"},
		{name: "api key mode with key", mutate: func(c *AppConfig) { c.APIAuthMode = authModeAPIKey; c.APIKey = "k" }},
		{name: "zero timeout", mutate: func(c *AppConfig) { c.APITimeout = 0 }, wantErr: "api_timeout"},
		{name: "bad audit mode", mutate: func(c *AppConfig) { c.AuditLog = "everything" }, wantErr: "audit_log"},
		{name: "bad mongo uri", mutate: func(c *AppConfig) { c.MongoURI = "postgres://x" }, wantErr: "MongoDB URI"},
		{name: "bad mongo uri ignored when audit skips db", mutate: func(c *AppConfig) { c.MongoURI = "postgres://x"; c.AuditLog = "log" }},
		{name: "unknown cache", mutate: func(c *AppConfig) { c.CacheBackend = "memcached" }, wantErr: "cache_backend"},
		{name: "redis without addr", mutate: func(c *AppConfig) { c.CacheBackend = cacheRedis }, wantErr: "redis_addr"},
		{name: "redis with addr", mutate: func(c *AppConfig) { c.CacheBackend = cacheRedis; c.RedisAddr = "localhost:6379" }},
		{name: "negative rate limit", mutate: func(c *AppConfig) { c.MutationRateLimit = -1 }, wantErr: "mutation_rate_limit"},
		{name: "page size not offered", mutate: func(c *AppConfig) { c.DefaultPageSize = 20 }, wantErr: "default_page_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(core, cfg, testLogger())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateConfig_ShortCSRFKeyInProd(t *testing.T) {
	cfg := validConfig()
	cfg.CSRFKey = "short"

	assert.NoError(t, ValidateConfig(&config.CoreConfig{Env: "dev"}, cfg, testLogger()))
	assert.Error(t, ValidateConfig(&config.CoreConfig{Env: "prod"}, cfg, testLogger()))
}

func TestConnectDB_SkipsMongoWhenAuditOff(t *testing.T) {
	cfg := validConfig()
	cfg.AuditLog = "off"
	cfg.MongoURI = "mongodb://unreachable.invalid:1"

	deps, err := ConnectDB(context.Background(), &config.CoreConfig{}, cfg, testLogger())
	require.NoError(t, err)
	assert.Nil(t, deps.MongoClient)
	assert.Nil(t, deps.MongoDatabase)
	assert.Nil(t, deps.Redis)

	assert.NoError(t, EnsureSchema(context.Background(), &config.CoreConfig{}, cfg, deps, testLogger()))
	assert.NoError(t, Shutdown(context.Background(), &config.CoreConfig{}, cfg, deps, testLogger()))
}

func TestConnectDB_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := validConfig()
	cfg.AuditLog = "log"
	cfg.CacheBackend = cacheRedis
	cfg.RedisAddr = mr.Addr()

	deps, err := ConnectDB(context.Background(), &config.CoreConfig{}, cfg, testLogger())
	require.NoError(t, err)
	require.NotNil(t, deps.Redis)
	assert.NoError(t, deps.Redis.Ping(context.Background()).Err())

	assert.NoError(t, Shutdown(context.Background(), &config.CoreConfig{}, cfg, deps, testLogger()))
}

func TestConnectDB_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := validConfig()
	cfg.AuditLog = "off"
	cfg.CacheBackend = cacheRedis
	cfg.RedisAddr = addr

	_, err := ConnectDB(context.Background(), &config.CoreConfig{}, cfg, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis ping")
}

func TestEnsureSchema_CreatesAuditIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db}
	require.NoError(t, EnsureSchema(ctx, &config.CoreConfig{}, validConfig(), deps, testLogger()))

	cur, err := db.Collection("audit_events").Indexes().List(ctx)
	require.NoError(t, err)
	var idx []map[string]any
	require.NoError(t, cur.All(ctx, &idx))
	assert.Greater(t, len(idx), 1, "expected indexes beyond _id")
}

// buildTestHandler runs Startup and BuildHandler against a fake API in
// api_key mode so no session cookie is needed.
func buildTestHandler(t *testing.T) (http.Handler, *testutil.FakeAPI) {
	t.Helper()
	api := testutil.NewFakeAPI(t)

	cfg := validConfig()
	cfg.ContactsAPIURL = api.URL
	cfg.RolesAPIURL = api.URL
	cfg.GamingAPIURL = api.URL
	cfg.APIAuthMode = authModeAPIKey
	cfg.APIKey = "secret-key"
	cfg.AuditLog = "log"
	cfg.CacheBackend = cacheOff

	core := &config.CoreConfig{Env: "test"}
	require.NoError(t, Startup(context.Background(), core, cfg, DBDeps{}, testLogger()))
	h, err := BuildHandler(core, cfg, DBDeps{}, testLogger())
	require.NoError(t, err)
	t.Cleanup(stopBackground)
	return h, api
}

func TestBuildHandler_RootRedirects(t *testing.T) {
	h, _ := buildTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/contacts", rec.Header().Get("Location"))
}

func TestBuildHandler_Health(t *testing.T) {
	h, _ := buildTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "disabled", body["database"])
}

func TestBuildHandler_UserInfo(t *testing.T) {
	h, _ := buildTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/user", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "service", body["subject"])
}

func TestBuildHandler_ListsContacts(t *testing.T) {
	h, api := buildTestHandler(t)
	api.AddContacts(testutil.Person("c1", "Ann", "Lee"))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contacts", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Ann Lee")
	assert.Equal(t, 1, api.Hits(http.MethodGet, "/contacts"))
}

func TestBuildHandler_PostWithoutCSRFTokenIsForbidden(t *testing.T) {
	h, api := buildTestHandler(t)

	form := url.Values{"size": {"25"}}
	req := httptest.NewRequest(http.MethodPost, "/contacts/clear", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 0, api.Hits(http.MethodGet, "/contacts"))
}

func TestBuildHandler_PostWithCSRFToken(t *testing.T) {
	h, _ := buildTestHandler(t)

	// Fetch a page to receive the CSRF cookie and a token.
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contacts/new", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	token := extractCSRFToken(t, rec.Body.String())
	form := url.Values{"size": {"25"}, "gorilla.csrf.Token": {token}}
	req := httptest.NewRequest(http.MethodPost, "/contacts/clear", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range rec.Result().Cookies() {
		req.AddCookie(c)
	}
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	loc := rec.Header().Get("Location")
	assert.True(t, strings.HasPrefix(loc, "/contacts"), loc)
	assert.Contains(t, loc, "size=25")
}

func TestBuildHandler_RateLimitsChanges(t *testing.T) {
	api := testutil.NewFakeAPI(t)
	cfg := validConfig()
	cfg.ContactsAPIURL, cfg.RolesAPIURL, cfg.GamingAPIURL = api.URL, api.URL, api.URL
	cfg.APIAuthMode = authModeAPIKey
	cfg.APIKey = "secret-key"
	cfg.AuditLog = "off"
	cfg.MutationRateLimit = 1

	core := &config.CoreConfig{Env: "test"}
	require.NoError(t, Startup(context.Background(), core, cfg, DBDeps{}, testLogger()))
	h, err := BuildHandler(core, cfg, DBDeps{}, testLogger())
	require.NoError(t, err)
	defer stopBackground()

	post := func() int {
		// An Authorization header skips the CSRF token check.
		req := httptest.NewRequest(http.MethodPost, "/contacts/clear", strings.NewReader("size=25"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Authorization", "Bearer t")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusSeeOther, post())
	assert.Equal(t, http.StatusTooManyRequests, post())
}

func TestStopBackground(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	w := workers.NewCacheSweep(querycache.NewMemory(time.Minute), testLogger(), time.Hour)
	w.Start()
	runInBackground(w)

	stopBackground()
	stopBackground()
}

func TestCSRFPrelude_SkipsCheckWithAuthorization(t *testing.T) {
	protected := csrf.Protect([]byte("0123456789abcdef0123456789abcdef"), csrf.Secure(false))(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNoContent) }))
	h := csrfPrelude(false)(protected)

	req := httptest.NewRequest(http.MethodPost, "/contacts/c1/status", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/contacts/c1/status", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func extractCSRFToken(t *testing.T, body string) string {
	t.Helper()
	const marker = `name="csrf-token" content="`
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0, "csrf meta tag not found")
	rest := body[i+len(marker):]
	j := strings.Index(rest, `"`)
	require.Greater(t, j, 0)
	return html.UnescapeString(rest[:j])
}
