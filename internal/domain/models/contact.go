// internal/domain/models/contact.go
package models

import (
	"strings"
	"time"
)

// ContactType selects which detail payload a contact carries.
// It is fixed at creation time.
type ContactType string

const (
	ContactTypePerson       ContactType = "person"
	ContactTypeOrganization ContactType = "organization"
)

// IsValid reports whether t is one of the known contact types.
func (t ContactType) IsValid() bool {
	return t == ContactTypePerson || t == ContactTypeOrganization
}

// Label is the human-readable form used in tables and selects.
func (t ContactType) Label() string {
	switch t {
	case ContactTypePerson:
		return "Person"
	case ContactTypeOrganization:
		return "Organization"
	}
	return string(t)
}

// ContactTypes lists the contact types in display order.
func ContactTypes() []ContactType {
	return []ContactType{ContactTypePerson, ContactTypeOrganization}
}

// Contact is a person or organization as returned by the contacts service.
//
// Exactly one of PersonDetails or OrganizationDetails is populated, chosen by
// ContactType. JoinDate is a calendar date (YYYY-MM-DD), unrelated to CreatedAt.
type Contact struct {
	ID          string      `json:"id"`
	ContactType ContactType `json:"contactType"`
	DisplayName string      `json:"displayName"`
	IsActive    bool        `json:"isActive"`
	JoinDate    *string     `json:"joinDate,omitempty"`

	PersonDetails       *PersonDetails       `json:"personDetails,omitempty"`
	OrganizationDetails *OrganizationDetails `json:"organizationDetails,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PersonDetails holds person-only fields.
type PersonDetails struct {
	FirstName   string  `json:"firstName"`
	LastName    *string `json:"lastName,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	Country     *string `json:"country,omitempty"`
	DateOfBirth *string `json:"dateOfBirth,omitempty"`
	Nationality *string `json:"nationality,omitempty"`
	Notes       *string `json:"notes,omitempty"`
}

// OrganizationDetails holds organization-only fields.
type OrganizationDetails struct {
	LegalName          string  `json:"legalName"`
	TradingName        *string `json:"tradingName,omitempty"`
	RegistrationNumber *string `json:"registrationNumber,omitempty"`
	TaxID              *string `json:"taxId,omitempty"`
	Email              *string `json:"email,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	Country            *string `json:"country,omitempty"`
	Website            *string `json:"website,omitempty"`
	Notes              *string `json:"notes,omitempty"`
}

// DetailsConsistent reports whether the populated detail payload matches
// ContactType. Records coming from the list endpoint may omit details
// entirely; those are considered consistent.
func (c Contact) DetailsConsistent() bool {
	switch c.ContactType {
	case ContactTypePerson:
		return c.OrganizationDetails == nil
	case ContactTypeOrganization:
		return c.PersonDetails == nil
	}
	return false
}

// Notes returns the free-text notes of whichever payload is set.
func (c Contact) Notes() string {
	switch {
	case c.PersonDetails != nil:
		return Deref(c.PersonDetails.Notes)
	case c.OrganizationDetails != nil:
		return Deref(c.OrganizationDetails.Notes)
	}
	return ""
}

// Email returns the contact email of whichever payload is set.
func (c Contact) Email() string {
	switch {
	case c.PersonDetails != nil:
		return Deref(c.PersonDetails.Email)
	case c.OrganizationDetails != nil:
		return Deref(c.OrganizationDetails.Email)
	}
	return ""
}

// Phone returns the phone number of whichever payload is set.
func (c Contact) Phone() string {
	switch {
	case c.PersonDetails != nil:
		return Deref(c.PersonDetails.Phone)
	case c.OrganizationDetails != nil:
		return Deref(c.OrganizationDetails.Phone)
	}
	return ""
}

// Country returns the country of whichever payload is set.
func (c Contact) Country() string {
	switch {
	case c.PersonDetails != nil:
		return Deref(c.PersonDetails.Country)
	case c.OrganizationDetails != nil:
		return Deref(c.OrganizationDetails.Country)
	}
	return ""
}

// JoinDateString returns the join date or "" when absent.
func (c Contact) JoinDateString() string {
	return Deref(c.JoinDate)
}

// StatusLabel is "Active" or "Inactive".
func (c Contact) StatusLabel() string {
	if c.IsActive {
		return "Active"
	}
	return "Inactive"
}

// PersonDisplayName builds the display name stored for a person.
func PersonDisplayName(first, last string) string {
	return strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
}

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StrPtr returns a pointer to the trimmed value, or nil when it is empty.
func StrPtr(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
