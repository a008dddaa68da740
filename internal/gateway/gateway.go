// Package gateway talks to the external payment provider. The provider
// is treated as a black box with three operations: create a hosted
// invoice, fetch its current status, and expire it.
package gateway

import (
	"context"
	"errors"
)

var ErrInvoiceNotFound = errors.New("invoice not found")

// Invoice is the provider's view of one payment attempt.
type Invoice struct {
	ID            string `json:"id"`
	TransactionID string `json:"transactionId"`
	Status        string `json:"status"`
	PaymentURL    string `json:"paymentUrl"`
}

type CreateInvoiceRequest struct {
	ExternalID  string `json:"externalId"`
	Amount      int    `json:"amount"`
	Description string `json:"description"`
	PayerEmail  string `json:"payerEmail"`
	RedirectURL string `json:"redirectUrl"`
}

type Client interface {
	CreateInvoice(ctx context.Context, req CreateInvoiceRequest) (Invoice, error)
	GetInvoice(ctx context.Context, id string) (Invoice, error)
	ExpireInvoice(ctx context.Context, id string) error
}
