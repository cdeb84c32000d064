// internal/domain/models/satellite.go
package models

import (
	"strconv"
	"time"
)

// GamingAccount is a gaming platform account linked to a contact.
type GamingAccount struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contactId"`
	Platform  string    `json:"platform"`
	Username  string    `json:"username"`
	Status    string    `json:"status,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Deal is a commercial deal linked to a contact.
type Deal struct {
	ID        string    `json:"id"`
	ContactID string    `json:"contactId"`
	Title     string    `json:"title"`
	Stage     string    `json:"stage,omitempty"`
	Amount    *float64  `json:"amount,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// AmountLabel formats the amount with its currency, or "" when unknown.
func (d Deal) AmountLabel() string {
	if d.Amount == nil {
		return ""
	}
	s := strconv.FormatFloat(*d.Amount, 'f', 2, 64)
	if d.Currency != "" {
		s += " " + d.Currency
	}
	return s
}
