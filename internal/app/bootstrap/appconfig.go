// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/contacthub/internal/app/system/auditlog"
)

const (
	authModeBearer = "bearer"
	authModeAPIKey = "api_key"

	cacheMemory = "memory"
	cacheRedis  = "redis"
	cacheOff    = "off"
)

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables, configuration files, or
// command-line flags (loaded in LoadConfig). They represent *app-level*
// configuration, not WAFFLE core configuration.
//
// WAFFLE's CoreConfig handles framework-level settings like:
//   - HTTP/HTTPS ports and TLS configuration
//   - Logging level and format
//   - CORS settings
//   - Request body size limits
//
// The struct is passed to most lifecycle hooks, so any configuration needed
// during startup, request handling, or shutdown should live here.
type AppConfig struct {
	// Remote services
	ContactsAPIURL string        // contacts service base URL
	RolesAPIURL    string        // players/partners/hnc-members base URL
	GamingAPIURL   string        // gaming-accounts/deals base URL
	APIAuthMode    string        // "bearer" or "api_key"
	APIKey         string        // static key for api_key mode
	APIKeyHeader   string        // header carrying APIKey
	APITimeout     time.Duration // per-request timeout

	// Session management configuration (cookie written by the host shell)
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionMaxAge time.Duration
	SignInURL     string

	CSRFKey  string // gorilla/csrf authentication key
	SiteName string

	// MongoDB connection configuration (audit trail only)
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Query cache
	CacheBackend  string // "memory", "redis", or "off"
	CacheTTL      time.Duration
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	CacheSweepInterval time.Duration // memory backend only; 0 disables
	MutationRateLimit  int           // per principal per minute; 0 disables

	AuditLog string // "all", "db", "log", or "off"

	DefaultPageSize int
}

// auditUsesDB reports whether audit events are written to MongoDB, which is
// the only reason the app opens a Mongo connection.
func (c AppConfig) auditUsesDB() bool {
	return c.AuditLog == auditlog.ModeAll || c.AuditLog == auditlog.ModeDB
}
