// internal/app/features/userinfo/handler.go
package userinfo

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/dalemusser/contacthub/internal/app/system/auth"
)

// Handler reports who ContactHub thinks the caller is. The host shell uses
// it to check that the shared session reached this app.
type Handler struct{}

// NewHandler creates a new userinfo handler.
func NewHandler() *Handler {
	return &Handler{}
}

type response struct {
	IsAuthenticated bool       `json:"isAuthenticated"`
	Subject         string     `json:"subject"`
	Name            string     `json:"name"`
	HasToken        bool       `json:"hasToken"`
	TokenExpiry     *time.Time `json:"tokenExpiry,omitempty"`
}

// ServeUserInfo returns JSON with the current principal.
//
// Response format:
//
//	{ "isAuthenticated": bool, "subject": "...", "name": "...", "hasToken": bool, "tokenExpiry": "..." }
//
// The token itself is never echoed.
func (h *Handler) ServeUserInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	var resp response
	if p, ok := auth.CurrentPrincipal(r); ok {
		resp.IsAuthenticated = true
		resp.Subject = p.Subject
		resp.Name = p.Name
		if p.Token != nil && p.Token.Valid() {
			resp.HasToken = true
			if !p.Token.Expiry.IsZero() {
				exp := p.Token.Expiry.UTC()
				resp.TokenExpiry = &exp
			}
		}
	}

	_ = json.NewEncoder(w).Encode(resp)
}
