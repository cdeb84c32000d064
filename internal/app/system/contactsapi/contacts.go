package contactsapi

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/dalemusser/contacthub/internal/domain/models"
)

// ListParams are the server-side list filters. Zero values are omitted.
type ListParams struct {
	ContactType  models.ContactType
	IsActive     *bool
	Search       string
	Page         int
	Limit        int
	SortBy       string
	SortOrder    string
	JoinDateFrom string
	JoinDateTo   string
}

// Values encodes p as query parameters.
func (p ListParams) Values() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	set("contactType", string(p.ContactType))
	if p.IsActive != nil {
		q.Set("isActive", strconv.FormatBool(*p.IsActive))
	}
	set("search", p.Search)
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	set("sortBy", p.SortBy)
	set("sortOrder", p.SortOrder)
	set("joinDateFrom", p.JoinDateFrom)
	set("joinDateTo", p.JoinDateTo)
	return q
}

// ContactPage is one page of the list endpoint.
type ContactPage struct {
	Data       []models.Contact  `json:"data"`
	Pagination models.Pagination `json:"pagination"`
}

// CreateContactDTO is the body of POST /contacts.
type CreateContactDTO struct {
	ContactType         models.ContactType          `json:"contactType"`
	DisplayName         string                      `json:"displayName"`
	IsActive            *bool                       `json:"isActive,omitempty"`
	JoinDate            *string                     `json:"joinDate,omitempty"`
	PersonDetails       *models.PersonDetails       `json:"personDetails,omitempty"`
	OrganizationDetails *models.OrganizationDetails `json:"organizationDetails,omitempty"`
}

// UpdateContactDTO is the partial body of PATCH /contacts/:id. The contact
// type cannot change after creation, so it has no field here.
type UpdateContactDTO struct {
	DisplayName         *string                     `json:"displayName,omitempty"`
	IsActive            *bool                       `json:"isActive,omitempty"`
	JoinDate            *string                     `json:"joinDate,omitempty"`
	PersonDetails       *models.PersonDetails       `json:"personDetails,omitempty"`
	OrganizationDetails *models.OrganizationDetails `json:"organizationDetails,omitempty"`
}

func contactPath(id string) string {
	return "/contacts/" + url.PathEscape(id)
}

// ListContacts fetches one page of contacts. The list body carries both data
// and pagination, so it is decoded whole.
func (c *Client) ListContacts(ctx context.Context, p ListParams) (ContactPage, error) {
	var page ContactPage
	if err := c.call(ctx, c.contacts, http.MethodGet, "/contacts", p.Values(), nil, wholeBody{&page}); err != nil {
		return ContactPage{}, err
	}
	if page.Data == nil {
		page.Data = []models.Contact{}
	}
	return page, nil
}

// GetContact fetches one contact with its detail payload.
func (c *Client) GetContact(ctx context.Context, id string) (models.Contact, error) {
	var out models.Contact
	err := c.call(ctx, c.contacts, http.MethodGet, contactPath(id), nil, nil, &out)
	return out, err
}

// CreateContact creates a contact and returns the stored record.
func (c *Client) CreateContact(ctx context.Context, dto CreateContactDTO) (models.Contact, error) {
	var out models.Contact
	err := c.call(ctx, c.contacts, http.MethodPost, "/contacts", nil, dto, &out)
	return out, err
}

// UpdateContact patches a contact.
func (c *Client) UpdateContact(ctx context.Context, id string, dto UpdateContactDTO) (models.Contact, error) {
	var out models.Contact
	err := c.call(ctx, c.contacts, http.MethodPatch, contactPath(id), nil, dto, &out)
	return out, err
}

// DeleteContact deletes a contact. The service answers 204.
func (c *Client) DeleteContact(ctx context.Context, id string) error {
	return c.call(ctx, c.contacts, http.MethodDelete, contactPath(id), nil, nil, nil)
}
