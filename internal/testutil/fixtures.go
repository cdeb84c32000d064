package testutil

import (
	"context"
	"net/http"
	"time"

	"github.com/dalemusser/contacthub/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	return WithChiURLParams(r, map[string]string{key: value})
}

// WithChiURLParams adds several chi URL parameters at once.
func WithChiURLParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// FixtureTime is the created/updated timestamp used by fixtures.
var FixtureTime = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// Person returns an active person contact.
func Person(id, first, last string) models.Contact {
	name := first
	if last != "" {
		name += " " + last
	}
	p := &models.PersonDetails{FirstName: first}
	if last != "" {
		p.LastName = &last
	}
	return models.Contact{
		ID:            id,
		ContactType:   models.ContactTypePerson,
		DisplayName:   name,
		IsActive:      true,
		PersonDetails: p,
		CreatedAt:     FixtureTime,
		UpdatedAt:     FixtureTime,
	}
}

// Organization returns an active organization contact.
func Organization(id, legalName string) models.Contact {
	return models.Contact{
		ID:                  id,
		ContactType:         models.ContactTypeOrganization,
		DisplayName:         legalName,
		IsActive:            true,
		OrganizationDetails: &models.OrganizationDetails{LegalName: legalName},
		CreatedAt:           FixtureTime,
		UpdatedAt:           FixtureTime,
	}
}

// Inactive returns c marked inactive.
func Inactive(c models.Contact) models.Contact {
	c.IsActive = false
	return c
}

// Joined returns c with the given join date (YYYY-MM-DD).
func Joined(c models.Contact, date string) models.Contact {
	c.JoinDate = &date
	return c
}

// PlayerRole returns an active player role for contactID.
func PlayerRole(id, contactID, username string) models.Role {
	return models.Role{
		ID:        id,
		ContactID: contactID,
		Type:      models.RoleTypePlayer,
		Status:    "active",
		Username:  &username,
		CreatedAt: FixtureTime,
		UpdatedAt: FixtureTime,
	}
}

// PartnerRole returns an active partner role for contactID.
func PartnerRole(id, contactID, company string) models.Role {
	return models.Role{
		ID:        id,
		ContactID: contactID,
		Type:      models.RoleTypePartner,
		Status:    "active",
		Company:   &company,
		CreatedAt: FixtureTime,
		UpdatedAt: FixtureTime,
	}
}
