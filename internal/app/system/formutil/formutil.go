// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails validation, or the contacts service rejects
// it, the form is re-rendered with:
//   - The user's previously entered values (echoed back)
//   - An error message explaining what went wrong
//   - Per-field messages next to the offending inputs
//
// Example usage:
//
//	type contactFormData struct {
//		formutil.Base
//		Form contactform.Form
//	}
//
//	data := contactFormData{Form: form}
//	formutil.SetBase(&data.Base, r, "Edit contact", "/contacts")
//	data.SetResult(res)
//	templates.Render(w, r, "contact_form", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/contacthub/internal/app/system/inputval"
	"github.com/dalemusser/contacthub/internal/app/system/viewdata"
	"github.com/gorilla/csrf"
)

// Base contains common fields for form pages that can be embedded in form data structs.
type Base struct {
	viewdata.BaseVM
	CSRFField   template.HTML
	Error       template.HTML
	FieldErrors map[string]string
}

// SetBase populates the common Base fields from the request context.
//
// Parameters:
//   - b: pointer to the Base struct to populate
//   - r: the HTTP request
//   - title: the page title
//   - backDefault: default URL for the back button if none in request
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
	b.CSRFField = csrf.TemplateField(r)
}

// SetError sets the error message on a Base struct.
// The message is escaped; use it for server-provided text.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}

// SetResult copies validation messages into the form: the first one as the
// banner and all of them keyed by field for inline display.
func (b *Base) SetResult(res *inputval.Result) {
	if !res.HasErrors() {
		return
	}
	b.SetError(res.First())
	b.FieldErrors = res.Map()
}

// FieldError returns the inline message for field, or "".
func (b Base) FieldError(field string) string {
	return b.FieldErrors[field]
}
