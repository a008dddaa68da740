package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

type CreateVoucherRequest struct {
	Code            string   `json:"code"`
	Value           int      `json:"value"`
	Quota           int      `json:"quota"`
	ParticipantType string   `json:"participant_type"`
	Active          *bool    `json:"active"`
	EmailWhitelist  []string `json:"email_whitelist"`
}

func (req *CreateVoucherRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Code, validation.Required, validation.Length(3, 50)),
		validation.Field(&req.Value, validation.Min(0)),
		validation.Field(&req.Quota, validation.Min(0)),
		validation.Field(&req.EmailWhitelist, validation.By(validateEmailList)),
	)
}

func validateEmailList(value interface{}) error {
	emails, _ := value.([]string)

	for _, email := range emails {
		if err := validation.Validate(email, is.Email); err != nil {
			return err
		}
	}

	return nil
}
