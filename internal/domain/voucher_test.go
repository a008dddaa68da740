package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVoucherAllowsEmail(t *testing.T) {
	open := Voucher{Code: "OPEN"}
	assert.True(t, open.AllowsEmail("anyone@example.com"), "empty whitelist allows everyone")

	restricted := Voucher{
		Code:           "VIP",
		EmailWhitelist: []string{" Alice@Example.COM ", "bob@example.com"},
	}

	assert.True(t, restricted.AllowsEmail("alice@example.com"))
	assert.True(t, restricted.AllowsEmail("ALICE@EXAMPLE.COM"))
	assert.True(t, restricted.AllowsEmail("  bob@example.com  "))
	assert.False(t, restricted.AllowsEmail("mallory@example.com"))
}
