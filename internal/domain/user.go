package domain

import "time"

type User struct {
	ID uint `json:"id"`

	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Password      string `json:"-"`
	Name          string `json:"name"`
	Phone         string `json:"phone"`

	// ParticipantType is assigned when a payment settles, from the
	// voucher override when present, otherwise from the ticket.
	ParticipantType string `json:"participant_type"`

	IsStaff bool `json:"is_staff"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
