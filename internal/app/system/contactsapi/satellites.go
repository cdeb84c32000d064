package contactsapi

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dalemusser/contacthub/internal/domain/models"
)

// ListGamingAccounts returns the gaming accounts linked to contactID.
func (c *Client) ListGamingAccounts(ctx context.Context, contactID string) ([]models.GamingAccount, error) {
	var all []models.GamingAccount
	q := url.Values{"contactId": {contactID}}
	if err := c.call(ctx, c.gaming, http.MethodGet, "/gaming-accounts", q, nil, &all); err != nil {
		return nil, err
	}
	out := make([]models.GamingAccount, 0, len(all))
	for _, a := range all {
		if a.ContactID == contactID {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListDeals returns the deals linked to contactID.
func (c *Client) ListDeals(ctx context.Context, contactID string) ([]models.Deal, error) {
	var all []models.Deal
	q := url.Values{"contactId": {contactID}}
	if err := c.call(ctx, c.gaming, http.MethodGet, "/deals", q, nil, &all); err != nil {
		return nil, err
	}
	out := make([]models.Deal, 0, len(all))
	for _, d := range all {
		if d.ContactID == contactID {
			out = append(out, d)
		}
	}
	return out, nil
}
