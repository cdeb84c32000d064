// internal/domain/models/role.go
package models

import "time"

// RoleType is a secondary capacity a contact can hold.
type RoleType string

const (
	RoleTypePlayer    RoleType = "player"
	RoleTypePartner   RoleType = "partner"
	RoleTypeHncMember RoleType = "hnc_member"
)

// RoleTypes lists every role type in display order.
func RoleTypes() []RoleType {
	return []RoleType{RoleTypePlayer, RoleTypePartner, RoleTypeHncMember}
}

// IsValid reports whether t is a known role type.
func (t RoleType) IsValid() bool {
	switch t {
	case RoleTypePlayer, RoleTypePartner, RoleTypeHncMember:
		return true
	}
	return false
}

// Path is the collection path of the satellite service for this role type.
func (t RoleType) Path() string {
	switch t {
	case RoleTypePlayer:
		return "/players"
	case RoleTypePartner:
		return "/partners"
	case RoleTypeHncMember:
		return "/hnc-members"
	}
	return ""
}

// Label is the human-readable role name.
func (t RoleType) Label() string {
	switch t {
	case RoleTypePlayer:
		return "Player"
	case RoleTypePartner:
		return "Partner"
	case RoleTypeHncMember:
		return "HNC Member"
	}
	return string(t)
}

// Role is one role record. The typed payload fields are only set for the
// matching Type; the satellite services return them flattened.
type Role struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contactId"`
	Type      RoleType  `json:"-"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// player
	Username *string `json:"username,omitempty"`
	Level    *string `json:"level,omitempty"`

	// partner
	Company        *string  `json:"company,omitempty"`
	CommissionRate *float64 `json:"commissionRate,omitempty"`

	// hnc_member
	MembershipNumber *string `json:"membershipNumber,omitempty"`
	Tier             *string `json:"tier,omitempty"`
}

// Summary is a one-line description shown in the roles tab.
func (r Role) Summary() string {
	switch r.Type {
	case RoleTypePlayer:
		return Deref(r.Username)
	case RoleTypePartner:
		return Deref(r.Company)
	case RoleTypeHncMember:
		return Deref(r.MembershipNumber)
	}
	return ""
}

// RoleSet groups a contact's roles by type.
type RoleSet struct {
	Players    []Role
	Partners   []Role
	HncMembers []Role
}

// ByType returns the roles of the given type.
func (s RoleSet) ByType(t RoleType) []Role {
	switch t {
	case RoleTypePlayer:
		return s.Players
	case RoleTypePartner:
		return s.Partners
	case RoleTypeHncMember:
		return s.HncMembers
	}
	return nil
}

// Set replaces the roles of the given type.
func (s *RoleSet) Set(t RoleType, roles []Role) {
	switch t {
	case RoleTypePlayer:
		s.Players = roles
	case RoleTypePartner:
		s.Partners = roles
	case RoleTypeHncMember:
		s.HncMembers = roles
	}
}

// Has reports whether at least one role of type t is assigned.
func (s RoleSet) Has(t RoleType) bool {
	return len(s.ByType(t)) > 0
}

// All returns every role, in role-type order.
func (s RoleSet) All() []Role {
	out := make([]Role, 0, len(s.Players)+len(s.Partners)+len(s.HncMembers))
	out = append(out, s.Players...)
	out = append(out, s.Partners...)
	out = append(out, s.HncMembers...)
	return out
}
