package domain

import "time"

// Ticket is read-mostly reference data describing one ticket tier.
// Price is in currency minor units.
type Ticket struct {
	ID uint `json:"id"`

	Name            string `json:"name"`
	Price           int    `json:"price"`
	ParticipantType string `json:"participant_type"`
	SoldOut         bool   `json:"sold_out"`
	Active          bool   `json:"active"`
	Description     string `json:"description"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
