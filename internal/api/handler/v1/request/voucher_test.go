package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreateVoucherRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateVoucherRequest
		wantErr bool
	}{
		{
			"valid without whitelist",
			CreateVoucherRequest{Code: "SPEAKER50", Value: 50000, Quota: 10},
			false,
		},
		{
			"valid with whitelist",
			CreateVoucherRequest{Code: "VIPONLY", Value: 50000, Quota: 10, EmailWhitelist: []string{"a@example.com", "b@example.com"}},
			false,
		},
		{
			"code too short",
			CreateVoucherRequest{Code: "AB", Value: 50000, Quota: 10},
			true,
		},
		{
			"negative value",
			CreateVoucherRequest{Code: "SPEAKER50", Value: -1, Quota: 10},
			true,
		},
		{
			"bad whitelist entry",
			CreateVoucherRequest{Code: "VIPONLY", Value: 50000, Quota: 10, EmailWhitelist: []string{"a@example.com", "nope"}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
