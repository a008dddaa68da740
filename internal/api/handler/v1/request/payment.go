package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreatePaymentRequest struct {
	TicketID    uint   `json:"ticket_id"`
	VoucherCode string `json:"voucher_code"`
}

func (req *CreatePaymentRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.TicketID, validation.Required, validation.Min(uint(1))),
	)
}

// WebhookRequest is the gateway's callback body.
type WebhookRequest struct {
	Event string      `json:"event"`
	Data  WebhookData `json:"data"`
}

type WebhookData struct {
	ID            string `json:"id"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
}

func (req *WebhookRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Event, validation.Required),
	)
}
