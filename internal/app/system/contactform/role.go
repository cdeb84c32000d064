package contactform

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/contacthub/internal/app/system/inputval"
	"github.com/dalemusser/contacthub/internal/domain/models"
)

// RoleInput is the role create/edit schema. Only the fields of Type are used.
type RoleInput struct {
	Type   string `validate:"required,roletype" label:"Role"`
	Status string `validate:"required,oneof=active inactive" label:"Status"`

	Username string `validate:"required_if=Type player,max=100" label:"Username"`
	Level    string `validate:"max=50" label:"Level"`

	Company        string `validate:"required_if=Type partner,max=200" label:"Company"`
	CommissionRate string `validate:"omitempty,numeric" label:"Commission rate"`

	MembershipNumber string `validate:"required_if=Type hnc_member,max=100" label:"Membership number"`
	Tier             string `validate:"max=50" label:"Tier"`
}

// RoleType returns the parsed role type.
func (in RoleInput) RoleType() models.RoleType {
	return models.RoleType(in.Type)
}

// ParseRole reads a role form. When locked is set (editing), the type is
// taken from it rather than the request.
func ParseRole(values url.Values, locked models.RoleType) RoleInput {
	get := func(k string) string { return htmlsanitize.Field(values.Get(k)) }
	in := RoleInput{
		Type:             get("type"),
		Status:           get("status"),
		Username:         get("username"),
		Level:            get("level"),
		Company:          get("company"),
		CommissionRate:   get("commissionRate"),
		MembershipNumber: get("membershipNumber"),
		Tier:             get("tier"),
	}
	if locked != "" {
		in.Type = string(locked)
	}
	if in.Status == "" {
		in.Status = "active"
	}
	return in
}

// RoleFromModel fills a role form from a stored role.
func RoleFromModel(r models.Role) RoleInput {
	in := RoleInput{
		Type:             string(r.Type),
		Status:           r.Status,
		Username:         models.Deref(r.Username),
		Level:            models.Deref(r.Level),
		Company:          models.Deref(r.Company),
		MembershipNumber: models.Deref(r.MembershipNumber),
		Tier:             models.Deref(r.Tier),
	}
	if r.CommissionRate != nil {
		in.CommissionRate = strconv.FormatFloat(*r.CommissionRate, 'f', -1, 64)
	}
	if in.Status == "" {
		in.Status = "active"
	}
	return in
}

// ValidateRole checks in. On create, a type the contact already holds is
// rejected too, so no request is sent for a duplicate.
func ValidateRole(in RoleInput, assigned models.RoleSet, creating bool) *inputval.Result {
	res := inputval.Validate(in)
	if creating && in.RoleType().IsValid() && assigned.Has(in.RoleType()) {
		res.Add("Type", "This contact already has the "+in.RoleType().Label()+" role.")
	}
	if in.CommissionRate != "" && res.Get("CommissionRate") == "" {
		if f, err := strconv.ParseFloat(in.CommissionRate, 64); err != nil || f < 0 || f > 100 {
			res.Add("CommissionRate", "Commission rate must be between 0 and 100.")
		}
	}
	return res
}

// ToRoleDTO builds the request body for in. Fields of other role types are
// left out.
func ToRoleDTO(in RoleInput, contactID string) contactsapi.RoleDTO {
	dto := contactsapi.RoleDTO{ContactID: contactID, Status: strings.TrimSpace(in.Status)}
	switch in.RoleType() {
	case models.RoleTypePlayer:
		dto.Username = models.StrPtr(in.Username)
		dto.Level = models.StrPtr(in.Level)
	case models.RoleTypePartner:
		dto.Company = models.StrPtr(in.Company)
		if f, err := strconv.ParseFloat(in.CommissionRate, 64); err == nil {
			dto.CommissionRate = &f
		}
	case models.RoleTypeHncMember:
		dto.MembershipNumber = models.StrPtr(in.MembershipNumber)
		dto.Tier = models.StrPtr(in.Tier)
	}
	return dto
}

// RoleOption is one entry of the role type selector.
type RoleOption struct {
	Type     models.RoleType
	Label    string
	Disabled bool
}

// AvailableRoleTypes lists every role type, disabling the ones the contact
// already holds.
func AvailableRoleTypes(assigned models.RoleSet) []RoleOption {
	types := models.RoleTypes()
	out := make([]RoleOption, len(types))
	for i, t := range types {
		out[i] = RoleOption{Type: t, Label: t.Label(), Disabled: assigned.Has(t)}
	}
	return out
}
