package contactsapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/dalemusser/contacthub/internal/domain/models"
)

// RoleDTO is the body of role create and update calls. Only the fields of
// the role's own type are sent.
type RoleDTO struct {
	ContactID        string   `json:"contactId,omitempty"`
	Status           string   `json:"status,omitempty"`
	Username         *string  `json:"username,omitempty"`
	Level            *string  `json:"level,omitempty"`
	Company          *string  `json:"company,omitempty"`
	CommissionRate   *float64 `json:"commissionRate,omitempty"`
	MembershipNumber *string  `json:"membershipNumber,omitempty"`
	Tier             *string  `json:"tier,omitempty"`
}

func rolePath(t models.RoleType) (string, error) {
	p := t.Path()
	if p == "" {
		return "", fmt.Errorf("contactsapi: unknown role type %q", t)
	}
	return p, nil
}

// ListRoles returns the roles of type t held by contactID.
func (c *Client) ListRoles(ctx context.Context, t models.RoleType, contactID string) ([]models.Role, error) {
	path, err := rolePath(t)
	if err != nil {
		return nil, err
	}
	var roles []models.Role
	q := url.Values{"contactId": {contactID}}
	if err := c.call(ctx, c.roles, http.MethodGet, path, q, nil, &roles); err != nil {
		return nil, err
	}
	roles = FilterRolesByContact(roles, contactID)
	for i := range roles {
		roles[i].Type = t
	}
	return roles, nil
}

// CreateRole assigns a role of type t.
func (c *Client) CreateRole(ctx context.Context, t models.RoleType, dto RoleDTO) (models.Role, error) {
	path, err := rolePath(t)
	if err != nil {
		return models.Role{}, err
	}
	var out models.Role
	if err := c.call(ctx, c.roles, http.MethodPost, path, nil, dto, &out); err != nil {
		return models.Role{}, err
	}
	out.Type = t
	return out, nil
}

// UpdateRole patches a role.
func (c *Client) UpdateRole(ctx context.Context, t models.RoleType, id string, dto RoleDTO) (models.Role, error) {
	path, err := rolePath(t)
	if err != nil {
		return models.Role{}, err
	}
	var out models.Role
	if err := c.call(ctx, c.roles, http.MethodPatch, path+"/"+url.PathEscape(id), nil, dto, &out); err != nil {
		return models.Role{}, err
	}
	out.Type = t
	return out, nil
}

// DeleteRole removes a role.
func (c *Client) DeleteRole(ctx context.Context, t models.RoleType, id string) error {
	path, err := rolePath(t)
	if err != nil {
		return err
	}
	return c.call(ctx, c.roles, http.MethodDelete, path+"/"+url.PathEscape(id), nil, nil, nil)
}

// FilterRolesByContact keeps the roles that belong to contactID.
//
// The role services do not reliably apply the contactId query parameter and
// may return other contacts' roles. Remove once they filter server-side.
func FilterRolesByContact(roles []models.Role, contactID string) []models.Role {
	out := make([]models.Role, 0, len(roles))
	for _, r := range roles {
		if r.ContactID == contactID {
			out = append(out, r)
		}
	}
	return out
}
