package inputval

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/dalemusser/contacthub/internal/domain/models"
)

// IsValidEmail reports whether s is a bare address (no display name) with
// no leading, trailing or doubled dots in either part.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || strings.ContainsAny(s, " \t<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s || addr.Name != "" {
		return false
	}
	at := strings.LastIndex(s, "@")
	local, domain := s[:at], s[at+1:]
	for _, part := range []string{local, domain} {
		if part == "" || strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") || strings.Contains(part, "..") {
			return false
		}
	}
	return true
}

// IsValidHTTPURL reports whether s is an absolute http or https URL.
func IsValidHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// IsValidISODate reports whether s is a real calendar date in YYYY-MM-DD.
func IsValidISODate(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != len("2006-01-02") {
		return false
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// IsValidCountry reports whether s looks like an ISO 3166-1 alpha-2 code.
func IsValidCountry(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

// IsValidContactType reports whether s names a contact type.
func IsValidContactType(s string) bool {
	return models.ContactType(strings.TrimSpace(s)).IsValid()
}

// IsValidRoleType reports whether s names a role type.
func IsValidRoleType(s string) bool {
	return models.RoleType(strings.TrimSpace(s)).IsValid()
}
