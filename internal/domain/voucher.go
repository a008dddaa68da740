package domain

import (
	"strings"
	"time"
)

// Voucher is a discount code with a finite redemption quota.
// Value is in currency minor units.
type Voucher struct {
	ID uint `json:"id"`

	Code  string `json:"code"`
	Value int    `json:"value"`
	Quota int    `json:"quota"`

	// ParticipantType overrides the ticket's participant type when set.
	ParticipantType string `json:"participant_type"`

	Active bool `json:"active"`

	// EmailWhitelist restricts redemption to the listed emails.
	// Empty means no restriction.
	EmailWhitelist []string `json:"email_whitelist"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AllowsEmail reports whether the requester's email may redeem the
// voucher. Comparison is case-insensitive and ignores surrounding
// whitespace.
func (v Voucher) AllowsEmail(email string) bool {
	if len(v.EmailWhitelist) == 0 {
		return true
	}

	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range v.EmailWhitelist {
		if strings.ToLower(strings.TrimSpace(allowed)) == email {
			return true
		}
	}

	return false
}
