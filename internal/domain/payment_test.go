package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChargeAmount(t *testing.T) {
	tests := []struct {
		name     string
		price    int
		discount int
		want     int
	}{
		{"no discount", 500000, 0, 500000},
		{"partial discount", 500000, 50000, 450000},
		{"exact discount", 500000, 500000, 0},
		{"discount exceeds price", 500000, 600000, 0},
		{"free ticket", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ChargeAmount(tt.price, tt.discount))
		})
	}
}

func TestPaymentStatusFromGateway(t *testing.T) {
	tests := []struct {
		raw  string
		want PaymentStatus
	}{
		{"PAID", PaymentStatusPaid},
		{"SETTLED", PaymentStatusPaid},
		{"EXPIRED", PaymentStatusClosed},
		{"CANCELLED", PaymentStatusClosed},
		{"FAILED", PaymentStatusClosed},
		{"PENDING", PaymentStatusUnpaid},
		{"", PaymentStatusUnpaid},
		{"paid", PaymentStatusUnpaid},
	}

	for _, tt := range tests {
		t.Run("status "+tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, PaymentStatusFromGateway(tt.raw))
		})
	}
}
