package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateTicketRequest struct {
	Name            string `json:"name"`
	Price           int    `json:"price"`
	ParticipantType string `json:"participant_type"`
	SoldOut         bool   `json:"sold_out"`
	Active          *bool  `json:"active"`
	Description     string `json:"description"`
}

func (req *CreateTicketRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Price, validation.Min(0)),
		validation.Field(&req.ParticipantType, validation.Required, validation.Length(2, 50)),
		validation.Field(&req.Description, validation.Length(0, 500)),
	)
}
