// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	auditlogfeature "github.com/dalemusser/contacthub/internal/app/features/auditlog"
	contactsfeature "github.com/dalemusser/contacthub/internal/app/features/contacts"
	errorsfeature "github.com/dalemusser/contacthub/internal/app/features/errors"
	healthfeature "github.com/dalemusser/contacthub/internal/app/features/health"
	userinfofeature "github.com/dalemusser/contacthub/internal/app/features/userinfo"
	"github.com/dalemusser/contacthub/internal/app/store/audit"
	"github.com/dalemusser/contacthub/internal/app/system/auditlog"
	"github.com/dalemusser/contacthub/internal/app/system/auth"
	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/app/system/querycache"
	"github.com/dalemusser/contacthub/internal/app/system/ratelimit"
	"github.com/dalemusser/contacthub/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

// cacheNamespace prefixes every Redis key this app writes.
const cacheNamespace = "contacthub:"

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// any Startup hooks have completed. ContactHub boots the template engine,
// builds the remote-service client with the configured credential, wires
// the query cache and audit trail, and mounts the contacts feature behind
// CSRF protection.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"

	// Initialize and boot the template engine once at startup.
	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	errLog := errorsfeature.NewErrorLogger(logger)
	errorsHandler := errorsfeature.NewHandler()

	r := chi.NewRouter()

	// Outgoing credential. Bearer mode forwards the caller's token read from
	// the host shell's session; api_key mode uses one key for everyone.
	var (
		cred      contactsapi.Credential
		contactMW []func(http.Handler) http.Handler
	)
	switch appCfg.APIAuthMode {
	case authModeAPIKey:
		cred = contactsapi.APIKeyCredential{Header: appCfg.APIKeyHeader, Key: appCfg.APIKey}
		r.Use(auth.ServicePrincipal)
	default:
		sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain,
			appCfg.SessionMaxAge, secure, logger)
		if err != nil {
			logger.Error("session manager init failed", zap.Error(err))
			return nil, err
		}
		sessionMgr.SignInURL = appCfg.SignInURL
		cred = contactsapi.BearerCredential{Source: auth.TokenSource}
		r.Use(sessionMgr.LoadCredential)
		contactMW = append(contactMW, sessionMgr.RequireCredential)
	}

	if appCfg.MutationRateLimit > 0 {
		limiter := ratelimit.New(appCfg.MutationRateLimit, time.Minute)
		runInBackground(limiter)
		contactMW = append(contactMW, ratelimit.Mutations(limiter, principalKey,
			func(w http.ResponseWriter, r *http.Request) {
				logger.Warn("mutation rate limit hit",
					zap.String("path", r.URL.Path),
					zap.String("client_ip", ratelimit.ClientIP(r)))
				errorsfeature.TooManyRequests(w, r, "Too many changes in a short time. Wait a minute and try again.", "/contacts")
			}))
	}

	client, err := contactsapi.New(contactsapi.Config{
		ContactsURL: appCfg.ContactsAPIURL,
		RolesURL:    appCfg.RolesAPIURL,
		GamingURL:   appCfg.GamingAPIURL,
		Timeout:     appCfg.APITimeout,
		Credential:  cred,
	}, logger)
	if err != nil {
		logger.Error("contacts api client init failed", zap.Error(err))
		return nil, err
	}

	// Query cache. Interface values stay nil when a backend is absent so the
	// health check reports it as disabled.
	var (
		cache       querycache.Cache
		cachePinger healthfeature.Pinger
	)
	switch appCfg.CacheBackend {
	case cacheRedis:
		rc := querycache.NewRedis(deps.Redis, appCfg.CacheTTL, cacheNamespace)
		cache, cachePinger = rc, rc
	case cacheOff:
		cache = querycache.Nop{}
	default:
		mem := querycache.NewMemory(appCfg.CacheTTL)
		cache = mem
		if appCfg.CacheSweepInterval > 0 {
			sweep := workers.NewCacheSweep(mem, logger, appCfg.CacheSweepInterval)
			sweep.Start()
			runInBackground(sweep)
		}
	}
	queries := querycache.NewQueries(client, cache, logger)

	var (
		eventStore auditlog.EventStore
		dbPinger   healthfeature.Pinger
		auditStore *audit.Store
	)
	if deps.MongoDatabase != nil {
		auditStore = audit.New(deps.MongoDatabase)
		eventStore, dbPinger = auditStore, auditStore
	}
	auditLogger := auditlog.New(eventStore, logger, auditlog.Uniform(appCfg.AuditLog))

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(dbPinger, client, cachePinger, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Principal probe for the host shell
	userinfofeature.MountRoutes(r, userinfofeature.NewHandler())

	// Static assets with pre-compressed file support (gzip/brotli)
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	// Everything below renders forms or accepts them.
	r.Group(func(r chi.Router) {
		r.Use(csrfPrelude(secure))
		r.Use(csrf.Protect([]byte(appCfg.CSRFKey),
			csrf.Secure(secure),
			csrf.Path("/"),
			csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				logger.Warn("csrf check failed",
					zap.String("path", r.URL.Path),
					zap.Error(csrf.FailureReason(r)))
				msg := "Your form expired. Reload the page and try again."
				if errorsfeature.IsHTMX(r) {
					errorsfeature.HTMXForbidden(w, r, msg, "/contacts")
					return
				}
				errorsfeature.RenderForbidden(w, r, msg, "/contacts")
			})),
		))

		r.Get("/forbidden", errorsHandler.Forbidden)
		r.Get("/unauthorized", errorsHandler.Unauthorized)

		contactsHandler := contactsfeature.NewHandler(client, queries, auditLogger, errLog, appCfg.DefaultPageSize, logger)
		if auditStore != nil {
			contactsHandler.History = auditStore
		}
		r.Mount("/contacts", contactsfeature.Routes(contactsHandler, contactMW...))

		// Activity page reads the stored audit trail.
		if auditStore != nil {
			auditHandler := auditlogfeature.NewHandler(auditStore, errLog, logger)
			r.Mount("/audit", auditlogfeature.Routes(auditHandler, contactMW...))
		}

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/contacts", http.StatusSeeOther)
		})
	})

	logger.Info("handler built",
		zap.String("auth_mode", appCfg.APIAuthMode),
		zap.Int("mutation_rate_limit", appCfg.MutationRateLimit),
		zap.String("cache", appCfg.CacheBackend),
		zap.String("audit_log", appCfg.AuditLog))

	return r, nil
}

// principalKey limits each credential separately. Anonymous requests fall
// back to the client IP.
func principalKey(r *http.Request) string {
	if p, ok := auth.CurrentPrincipal(r); ok {
		if scope := p.CacheScope(); scope != "" {
			return "sub:" + scope
		}
	}
	return ""
}

// csrfPrelude marks requests for gorilla/csrf: local http is flagged as
// plaintext so the Referer check does not demand https, and callers that
// authenticate with an Authorization header skip the token check.
func csrfPrelude(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			if r.Header.Get("Authorization") != "" {
				r = csrf.UnsafeSkipCheck(r)
			}
			next.ServeHTTP(w, r)
		})
	}
}
