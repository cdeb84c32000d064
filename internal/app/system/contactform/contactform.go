// Package contactform parses, validates and converts the contact create and
// edit forms.
//
// A Form is either a PersonForm or an OrganizationForm. Handlers switch on the
// variant; nothing downstream branches on a contact type string.
package contactform

import (
	"errors"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/dalemusser/contacthub/internal/app/system/contactsapi"
	"github.com/dalemusser/contacthub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/contacthub/internal/app/system/inputval"
	"github.com/dalemusser/contacthub/internal/domain/models"
)

// Mode selects create or edit parsing.
type Mode int

const (
	Create Mode = iota
	Edit
)

var (
	// ErrUnknownType is returned when a create form names no valid contact type.
	ErrUnknownType = errors.New("contactform: unknown contact type")

	// ErrNotesTooLong is returned by NotesDTO when the text exceeds MaxNotes.
	ErrNotesTooLong = errors.New("contactform: notes too long")
)

// MaxNotes is the notes length limit in characters.
const MaxNotes = 5000

// PersonInput is the person schema.
type PersonInput struct {
	FirstName   string `validate:"required,max=100" label:"First name"`
	LastName    string `validate:"max=100" label:"Last name"`
	Email       string `validate:"omitempty,email" label:"Email"`
	Phone       string `validate:"max=40" label:"Phone"`
	Country     string `validate:"omitempty,country" label:"Country"`
	JoinDate    string `validate:"omitempty,isodate" label:"Join date"`
	DateOfBirth string `validate:"omitempty,isodate" label:"Date of birth"`
	Nationality string `validate:"max=100" label:"Nationality"`
	Notes       string `validate:"max=5000" label:"Notes"`
}

// OrganizationInput is the organization schema.
type OrganizationInput struct {
	LegalName          string `validate:"required,max=200" label:"Legal name"`
	TradingName        string `validate:"max=200" label:"Trading name"`
	RegistrationNumber string `validate:"max=100" label:"Registration number"`
	TaxID              string `validate:"max=100" label:"Tax ID"`
	Email              string `validate:"omitempty,email" label:"Email"`
	Phone              string `validate:"max=40" label:"Phone"`
	Country            string `validate:"omitempty,country" label:"Country"`
	Website            string `validate:"omitempty,httpurl" label:"Website"`
	JoinDate           string `validate:"omitempty,isodate" label:"Join date"`
	Notes              string `validate:"max=5000" label:"Notes"`
}

// Form is a parsed contact form.
type Form interface {
	isForm()
	Type() models.ContactType
}

// PersonForm is the person variant.
type PersonForm struct {
	PersonInput
	IsActive bool
}

// OrganizationForm is the organization variant.
type OrganizationForm struct {
	OrganizationInput
	IsActive bool
}

func (PersonForm) isForm()       {}
func (OrganizationForm) isForm() {}

func (PersonForm) Type() models.ContactType       { return models.ContactTypePerson }
func (OrganizationForm) Type() models.ContactType { return models.ContactTypeOrganization }

// Blank returns an empty form of type t, active by default.
func Blank(t models.ContactType) Form {
	if t == models.ContactTypeOrganization {
		return OrganizationForm{IsActive: true}
	}
	return PersonForm{IsActive: true}
}

// ParseForm builds the variant for the submitted values. In Create mode the
// type comes from the contactType field. In Edit mode it is always current,
// the type of the stored record, whatever the request says.
func ParseForm(values url.Values, mode Mode, current models.ContactType) (Form, error) {
	t := current
	if mode == Create {
		t = models.ContactType(strings.TrimSpace(values.Get("contactType")))
	}
	if !t.IsValid() {
		return nil, ErrUnknownType
	}

	get := func(k string) string { return htmlsanitize.Field(values.Get(k)) }
	active := values.Get("isActive") != "" && values.Get("isActive") != "false"

	switch t {
	case models.ContactTypePerson:
		return PersonForm{
			PersonInput: PersonInput{
				FirstName:   get("firstName"),
				LastName:    get("lastName"),
				Email:       strings.ToLower(get("email")),
				Phone:       get("phone"),
				Country:     strings.ToUpper(get("country")),
				JoinDate:    get("joinDate"),
				DateOfBirth: get("dateOfBirth"),
				Nationality: get("nationality"),
				Notes:       notes(values.Get("notes")),
			},
			IsActive: active,
		}, nil
	default:
		return OrganizationForm{
			OrganizationInput: OrganizationInput{
				LegalName:          get("legalName"),
				TradingName:        get("tradingName"),
				RegistrationNumber: get("registrationNumber"),
				TaxID:              get("taxId"),
				Email:              strings.ToLower(get("email")),
				Phone:              get("phone"),
				Country:            strings.ToUpper(get("country")),
				Website:            get("website"),
				JoinDate:           get("joinDate"),
				Notes:              notes(values.Get("notes")),
			},
			IsActive: active,
		}, nil
	}
}

func notes(s string) string {
	return strings.TrimSpace(htmlsanitize.PlainText(s))
}

// FromContact fills a form with a stored contact, for the edit page.
func FromContact(c models.Contact) Form {
	switch c.ContactType {
	case models.ContactTypeOrganization:
		d := c.OrganizationDetails
		if d == nil {
			d = &models.OrganizationDetails{}
		}
		return OrganizationForm{
			OrganizationInput: OrganizationInput{
				LegalName:          d.LegalName,
				TradingName:        models.Deref(d.TradingName),
				RegistrationNumber: models.Deref(d.RegistrationNumber),
				TaxID:              models.Deref(d.TaxID),
				Email:              models.Deref(d.Email),
				Phone:              models.Deref(d.Phone),
				Country:            models.Deref(d.Country),
				Website:            models.Deref(d.Website),
				JoinDate:           c.JoinDateString(),
				Notes:              models.Deref(d.Notes),
			},
			IsActive: c.IsActive,
		}
	default:
		d := c.PersonDetails
		if d == nil {
			d = &models.PersonDetails{}
		}
		return PersonForm{
			PersonInput: PersonInput{
				FirstName:   d.FirstName,
				LastName:    models.Deref(d.LastName),
				Email:       models.Deref(d.Email),
				Phone:       models.Deref(d.Phone),
				Country:     models.Deref(d.Country),
				JoinDate:    c.JoinDateString(),
				DateOfBirth: models.Deref(d.DateOfBirth),
				Nationality: models.Deref(d.Nationality),
				Notes:       models.Deref(d.Notes),
			},
			IsActive: c.IsActive,
		}
	}
}

// Validate checks f against its variant's schema.
func Validate(f Form) *inputval.Result {
	switch f := f.(type) {
	case PersonForm:
		return inputval.Validate(f.PersonInput)
	case OrganizationForm:
		return inputval.Validate(f.OrganizationInput)
	}
	res := &inputval.Result{}
	res.Add("ContactType", "Contact type must be person or organization.")
	return res
}

// DisplayName is the name stored for the contact: "First Last" for a person,
// the legal name for an organization.
func DisplayName(f Form) string {
	switch f := f.(type) {
	case PersonForm:
		return models.PersonDisplayName(f.FirstName, f.LastName)
	case OrganizationForm:
		return strings.TrimSpace(f.LegalName)
	}
	return ""
}

func personDetails(in PersonInput) *models.PersonDetails {
	return &models.PersonDetails{
		FirstName:   strings.TrimSpace(in.FirstName),
		LastName:    models.StrPtr(in.LastName),
		Email:       models.StrPtr(in.Email),
		Phone:       models.StrPtr(in.Phone),
		Country:     models.StrPtr(in.Country),
		DateOfBirth: models.StrPtr(in.DateOfBirth),
		Nationality: models.StrPtr(in.Nationality),
		Notes:       models.StrPtr(in.Notes),
	}
}

func organizationDetails(in OrganizationInput) *models.OrganizationDetails {
	return &models.OrganizationDetails{
		LegalName:          strings.TrimSpace(in.LegalName),
		TradingName:        models.StrPtr(in.TradingName),
		RegistrationNumber: models.StrPtr(in.RegistrationNumber),
		TaxID:              models.StrPtr(in.TaxID),
		Email:              models.StrPtr(in.Email),
		Phone:              models.StrPtr(in.Phone),
		Country:            models.StrPtr(in.Country),
		Website:            models.StrPtr(in.Website),
		Notes:              models.StrPtr(in.Notes),
	}
}

// ToCreateDTO builds the create body. Only the variant's detail payload is
// set.
func ToCreateDTO(f Form) contactsapi.CreateContactDTO {
	dto := contactsapi.CreateContactDTO{
		ContactType: f.Type(),
		DisplayName: DisplayName(f),
	}
	switch f := f.(type) {
	case PersonForm:
		dto.IsActive = &f.IsActive
		dto.JoinDate = models.StrPtr(f.JoinDate)
		dto.PersonDetails = personDetails(f.PersonInput)
	case OrganizationForm:
		dto.IsActive = &f.IsActive
		dto.JoinDate = models.StrPtr(f.JoinDate)
		dto.OrganizationDetails = organizationDetails(f.OrganizationInput)
	}
	return dto
}

// ToUpdateDTO builds the patch body. It never carries the contact type.
func ToUpdateDTO(f Form) contactsapi.UpdateContactDTO {
	name := DisplayName(f)
	dto := contactsapi.UpdateContactDTO{DisplayName: &name}
	switch f := f.(type) {
	case PersonForm:
		dto.IsActive = &f.IsActive
		dto.JoinDate = models.StrPtr(f.JoinDate)
		dto.PersonDetails = personDetails(f.PersonInput)
	case OrganizationForm:
		dto.IsActive = &f.IsActive
		dto.JoinDate = models.StrPtr(f.JoinDate)
		dto.OrganizationDetails = organizationDetails(f.OrganizationInput)
	}
	return dto
}

// NotesChanged reports whether an auto-save of next over previous would
// change anything. previous is the stored value; next is compared in the
// form it would be saved, sanitized and trimmed.
func NotesChanged(previous, next string) bool {
	return strings.TrimSpace(previous) != notes(next)
}

// NotesDTO is the patch body for a notes-only save of c.
func NotesDTO(c models.Contact, text string) (contactsapi.UpdateContactDTO, error) {
	text = notes(text)
	if utf8.RuneCountInString(text) > MaxNotes {
		return contactsapi.UpdateContactDTO{}, ErrNotesTooLong
	}
	switch c.ContactType {
	case models.ContactTypePerson:
		d := models.PersonDetails{}
		if c.PersonDetails != nil {
			d = *c.PersonDetails
		}
		d.Notes = &text
		return contactsapi.UpdateContactDTO{PersonDetails: &d}, nil
	case models.ContactTypeOrganization:
		d := models.OrganizationDetails{}
		if c.OrganizationDetails != nil {
			d = *c.OrganizationDetails
		}
		d.Notes = &text
		return contactsapi.UpdateContactDTO{OrganizationDetails: &d}, nil
	}
	return contactsapi.UpdateContactDTO{}, ErrUnknownType
}
