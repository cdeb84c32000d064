// internal/domain/models/pagination.go
package models

// Pagination is the page metadata returned by the contacts service.
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}
