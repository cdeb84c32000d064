// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/contacthub/internal/app/system/auditlog"
	"github.com/dalemusser/contacthub/internal/app/system/paging"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for ContactHub.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: contacts_api_url, session_name, etc.
//   - Environment variables: CONTACTHUB_CONTACTS_API_URL, CONTACTHUB_SESSION_NAME, etc.
//   - Command-line flags: --contacts_api_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	// Remote services
	{Name: "contacts_api_url", Default: "http://localhost:8081", Desc: "Base URL of the contacts service"},
	{Name: "roles_api_url", Default: "", Desc: "Base URL of the players/partners/hnc-members services (blank means contacts_api_url)"},
	{Name: "gaming_api_url", Default: "", Desc: "Base URL of the gaming-accounts and deals services (blank means contacts_api_url)"},
	{Name: "api_auth_mode", Default: "bearer", Desc: "Outgoing credential: 'bearer' (caller's token) or 'api_key'"},
	{Name: "api_key", Default: "", Desc: "Static key sent in api_key mode"},
	{Name: "api_key_header", Default: "X-API-Key", Desc: "Header that carries the key in api_key mode"},
	{Name: "api_timeout", Default: "15s", Desc: "Per-request timeout for remote service calls"},

	// Session (shared with the host shell)
	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must match the host shell)"},
	{Name: "session_name", Default: "contacthub-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "24h", Desc: "Session cookie lifetime"},
	{Name: "sign_in_url", Default: "/login", Desc: "Where browsers without a credential are sent"},

	// Forms
	{Name: "csrf_key", Default: "dev-only-csrf-key-change-me-0123456789", Desc: "CSRF token signing key (32+ chars)"},
	{Name: "site_name", Default: "ContactHub", Desc: "Name shown in the page header and titles"},

	// MongoDB (audit trail)
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "contact_hub", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	// Query cache
	{Name: "cache_backend", Default: "memory", Desc: "Query cache: 'memory', 'redis', or 'off'"},
	{Name: "cache_ttl", Default: "30s", Desc: "How long cached query results are served"},
	{Name: "redis_addr", Default: "", Desc: "Redis address (host:port) for the redis cache backend"},
	{Name: "redis_password", Default: "", Desc: "Redis password"},
	{Name: "redis_db", Default: 0, Desc: "Redis database number"},
	{Name: "cache_sweep_interval", Default: "1m", Desc: "How often expired entries are dropped from the memory cache"},

	// Audit logging
	{Name: "audit_log", Default: "all", Desc: "Mutation audit logging: 'all' (db+log), 'db', 'log', or 'off'"},

	// Abuse protection
	{Name: "mutation_rate_limit", Default: 60, Desc: "Changes allowed per user per minute (0 disables)"},

	// Listing
	{Name: "default_page_size", Default: paging.DefaultPageSize, Desc: "Rows per page when the URL has none (10, 25, 50, or 100)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CONTACTHUB_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CONTACTHUB", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		ContactsAPIURL: appValues.String("contacts_api_url"),
		RolesAPIURL:    appValues.String("roles_api_url"),
		GamingAPIURL:   appValues.String("gaming_api_url"),
		APIAuthMode:    appValues.String("api_auth_mode"),
		APIKey:         appValues.String("api_key"),
		APIKeyHeader:   appValues.String("api_key_header"),
		APITimeout:     appValues.Duration("api_timeout", 15*time.Second),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 24*time.Hour),
		SignInURL:     appValues.String("sign_in_url"),

		CSRFKey:  appValues.String("csrf_key"),
		SiteName: appValues.String("site_name"),

		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		CacheBackend:  appValues.String("cache_backend"),
		CacheTTL:      appValues.Duration("cache_ttl", 30*time.Second),
		RedisAddr:     appValues.String("redis_addr"),
		RedisPassword: appValues.String("redis_password"),
		RedisDB:       appValues.Int("redis_db"),

		CacheSweepInterval: appValues.Duration("cache_sweep_interval", time.Minute),
		MutationRateLimit:  appValues.Int("mutation_rate_limit"),

		AuditLog: appValues.String("audit_log"),

		DefaultPageSize: appValues.Int("default_page_size"),
	}

	// Role and gaming services live next to contacts unless told otherwise.
	if appCfg.RolesAPIURL == "" {
		appCfg.RolesAPIURL = appCfg.ContactsAPIURL
	}
	if appCfg.GamingAPIURL == "" {
		appCfg.GamingAPIURL = appCfg.ContactsAPIURL
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// Problems are caught here so they surface before any connection is made.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	for _, u := range []struct{ key, val string }{
		{"contacts_api_url", appCfg.ContactsAPIURL},
		{"roles_api_url", appCfg.RolesAPIURL},
		{"gaming_api_url", appCfg.GamingAPIURL},
	} {
		if err := validateServiceURL(u.val); err != nil {
			logger.Error("invalid service URL", zap.String("key", u.key), zap.Error(err))
			return fmt.Errorf("%s: %w", u.key, err)
		}
	}

	switch appCfg.APIAuthMode {
	case authModeBearer:
	case authModeAPIKey:
		if appCfg.APIKey == "" {
			return fmt.Errorf("api_auth_mode %q requires api_key to be set", authModeAPIKey)
		}
	default:
		return fmt.Errorf("api_auth_mode must be %q or %q, got %q", authModeBearer, authModeAPIKey, appCfg.APIAuthMode)
	}
	if appCfg.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be positive")
	}

	if !auditlog.ValidMode(appCfg.AuditLog) {
		return fmt.Errorf("audit_log must be one of all, db, log, off; got %q", appCfg.AuditLog)
	}
	if appCfg.auditUsesDB() {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
	}

	switch appCfg.CacheBackend {
	case cacheMemory, cacheOff:
	case cacheRedis:
		if appCfg.RedisAddr == "" {
			return fmt.Errorf("cache_backend %q requires redis_addr to be set", cacheRedis)
		}
	default:
		return fmt.Errorf("cache_backend must be memory, redis, or off; got %q", appCfg.CacheBackend)
	}

	if appCfg.MutationRateLimit < 0 {
		return fmt.Errorf("mutation_rate_limit must not be negative")
	}

	if !paging.IsAllowedSize(appCfg.DefaultPageSize) {
		return fmt.Errorf("default_page_size must be one of %v; got %d", paging.PageSizes, appCfg.DefaultPageSize)
	}

	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.CSRFKey) < 32 {
		return fmt.Errorf("csrf_key must be at least 32 characters in prod")
	}

	return nil
}

func validateServiceURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in %q", raw)
	}
	return nil
}
