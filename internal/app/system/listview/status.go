package listview

import "github.com/dalemusser/contacthub/internal/domain/models"

// StatusFilter restricts rows by their active flag.
type StatusFilter string

const (
	StatusAll      StatusFilter = ""
	StatusActive   StatusFilter = "active"
	StatusInactive StatusFilter = "inactive"
)

// ParseStatus maps a query value to a StatusFilter; unknown values mean "all".
func ParseStatus(s string) StatusFilter {
	switch StatusFilter(s) {
	case StatusActive, StatusInactive:
		return StatusFilter(s)
	}
	return StatusAll
}

// IsActiveParam is the isActive hint sent to the server, or nil for "all".
func (f StatusFilter) IsActiveParam() *bool {
	var v bool
	switch f {
	case StatusActive:
		v = true
	case StatusInactive:
		v = false
	default:
		return nil
	}
	return &v
}

// FilterStatus keeps the contacts whose isActive flag matches f.
//
// The contacts service coerces the isActive query parameter as a truthy
// string, so isActive=false still returns active rows. This filter always runs
// on the returned page, whatever was requested. Remove it once the service
// parses booleans correctly.
func FilterStatus(contacts []models.Contact, f StatusFilter) []models.Contact {
	out := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		switch f {
		case StatusActive:
			if !c.IsActive {
				continue
			}
		case StatusInactive:
			if c.IsActive {
				continue
			}
		}
		out = append(out, c)
	}
	return out
}
