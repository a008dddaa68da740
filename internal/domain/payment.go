package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "UNPAID"
	PaymentStatusPaid   PaymentStatus = "PAID"
	PaymentStatusClosed PaymentStatus = "CLOSED"
)

// Payment is one checkout attempt for a ticket. Status transitions are
// monotonic: UNPAID -> PAID or UNPAID -> CLOSED, both terminal.
type Payment struct {
	ID uint `json:"id"`

	UserID    uint  `json:"user_id"`
	TicketID  uint  `json:"ticket_id"`
	VoucherID *uint `json:"voucher_id,omitempty"`

	// Amount actually charged, in currency minor units. Never negative.
	Amount int           `json:"amount"`
	Status PaymentStatus `json:"status"`

	GatewayID            string `json:"-"`
	GatewayTransactionID string `json:"-"`

	// PaymentLink is the hosted checkout URL. Empty for free payments
	// and cleared once the payment is closed.
	PaymentLink string `json:"payment_link"`

	CreatedAt time.Time  `json:"created_at"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	ClosedAt  *time.Time `json:"closed_at,omitempty"`

	Ticket  Ticket   `json:"ticket"`
	Voucher *Voucher `json:"voucher,omitempty"`
}

// ChargeAmount computes the amount due for a ticket after applying a
// discount, clamped so it never goes below zero.
func ChargeAmount(price, discount int) int {
	if discount >= price {
		return 0
	}

	return price - discount
}

// PaymentStatusFromGateway maps a raw gateway status string onto the
// local status enum. Unrecognized values map to UNPAID so that
// reconciliation fails safe to a no-op.
func PaymentStatusFromGateway(raw string) PaymentStatus {
	switch raw {
	case "PAID", "SETTLED":
		return PaymentStatusPaid
	case "EXPIRED", "CANCELLED", "FAILED":
		return PaymentStatusClosed
	default:
		return PaymentStatusUnpaid
	}
}
