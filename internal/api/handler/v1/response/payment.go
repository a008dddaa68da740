package response

import (
	"time"

	"github.com/pyconid/pyconid25-be-sub000/internal/domain"
)

type Payment struct {
	ID          uint     `json:"id"`
	PaymentLink *string  `json:"payment_link"`
	Amount      int      `json:"amount"`
	Status      string   `json:"status"`
	Description string   `json:"description"`
	Ticket      *Ticket  `json:"ticket"`
	Voucher     *Voucher `json:"voucher"`

	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`
}

func NewPayment(p domain.Payment) Payment {
	resp := Payment{
		ID:          p.ID,
		Amount:      p.Amount,
		Status:      string(p.Status),
		Description: p.Ticket.Name,
		CreatedAt:   p.CreatedAt,
		PaidAt:      p.PaidAt,
		ClosedAt:    p.ClosedAt,
	}

	// payment_link is null for free payments and once closed.
	if p.PaymentLink != "" {
		link := p.PaymentLink
		resp.PaymentLink = &link
	}

	if p.Ticket.ID != 0 {
		ticket := NewTicket(p.Ticket)
		resp.Ticket = &ticket
	}

	if p.Voucher != nil {
		voucher := NewVoucher(*p.Voucher)
		resp.Voucher = &voucher
	}

	return resp
}

func NewPayments(payments []domain.Payment) []Payment {
	resp := make([]Payment, len(payments))
	for i, p := range payments {
		resp[i] = NewPayment(p)
	}

	return resp
}
