package response

import "github.com/pyconid/pyconid25-be-sub000/internal/domain"

type Voucher struct {
	Code  string `json:"code"`
	Value int    `json:"value"`
	Type  string `json:"type"`
}

func NewVoucher(v domain.Voucher) Voucher {
	return Voucher{
		Code:  v.Code,
		Value: v.Value,
		Type:  v.ParticipantType,
	}
}

// AdminVoucher exposes the full voucher record to staff endpoints.
type AdminVoucher struct {
	ID              uint     `json:"id"`
	Code            string   `json:"code"`
	Value           int      `json:"value"`
	Quota           int      `json:"quota"`
	ParticipantType string   `json:"participant_type"`
	Active          bool     `json:"active"`
	EmailWhitelist  []string `json:"email_whitelist"`
}

func NewAdminVoucher(v domain.Voucher) AdminVoucher {
	return AdminVoucher{
		ID:              v.ID,
		Code:            v.Code,
		Value:           v.Value,
		Quota:           v.Quota,
		ParticipantType: v.ParticipantType,
		Active:          v.Active,
		EmailWhitelist:  v.EmailWhitelist,
	}
}
