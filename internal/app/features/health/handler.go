package health

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/dalemusser/contacthub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// Pinger is anything that can report its own reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds dependencies needed for health checks.
type Handler struct {
	DB       Pinger // audit store; nil when auditing to the database is off
	Contacts Pinger // contacts service
	Cache    Pinger // redis query cache; nil for in-process backends
	Log      *zap.Logger
}

// NewHandler constructs a health Handler.
func NewHandler(db, contacts, cache Pinger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:       db,
		Contacts: contacts,
		Cache:    cache,
		Log:      logger,
	}
}

// healthResponse is the JSON structure for the health check response.
type healthResponse struct {
	Status      string            `json:"status"`
	Database    string            `json:"database"`
	ContactsAPI string            `json:"contacts_api"`
	Cache       string            `json:"cache,omitempty"`
	Message     string            `json:"message,omitempty"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// Serve handles GET /health.
//
// On success: 200 and
//
//	{ "status":"ok", "database":"connected", "contacts_api":"reachable" }
//
// When the database or the contacts service fails: 503 and
//
//	{ "status":"error", "database":"disconnected", "contacts_api":"reachable", "errors":{...} }
//
// A failing cache is reported but does not fail the check; reads bypass it.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Ping())
	defer cancel()

	w.Header().Set("Content-Type", "application/json")

	resp := healthResponse{
		Status:      "ok",
		Database:    "disabled",
		ContactsAPI: "reachable",
	}
	errs := map[string]string{}

	if h.DB != nil {
		resp.Database = "connected"
		if err := h.DB.Ping(ctx); err != nil {
			h.Log.Error("health-check: mongo ping failed", zap.Error(err))
			resp.Database = "disconnected"
			errs["database"] = err.Error()
		}
	}

	if err := h.Contacts.Ping(ctx); err != nil {
		h.Log.Error("health-check: contacts api ping failed", zap.Error(err))
		resp.ContactsAPI = "unreachable"
		errs["contacts_api"] = err.Error()
	}

	if h.Cache != nil {
		resp.Cache = "connected"
		if err := h.Cache.Ping(ctx); err != nil {
			h.Log.Warn("health-check: cache ping failed", zap.Error(err))
			resp.Cache = "disconnected"
			errs["cache"] = err.Error()
		}
	}

	if len(errs) > 0 {
		resp.Errors = errs
	}
	if resp.Database == "disconnected" || resp.ContactsAPI == "unreachable" {
		resp.Status = "error"
		resp.Message = "Dependency unavailable"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	_ = json.NewEncoder(w).Encode(resp)
}
