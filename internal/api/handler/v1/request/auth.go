package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// passwordPattern requires at least one lower, one upper and one digit,
// minimum 8 characters. regexp2 because Go's stdlib regexp has no
// lookaheads.
const passwordPattern = `^(?=.*[a-z])(?=.*[A-Z])(?=.*\d).{8,}$`

func validatePassword(value interface{}) error {
	password, _ := value.(string)

	re := regexp2.MustCompile(passwordPattern, regexp2.None)
	match, err := re.MatchString(password)
	if err != nil {
		return err
	}
	if !match {
		return errors.New("password must be at least 8 characters with an upper, a lower and a digit")
	}

	return nil
}

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

func (req *SignupRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required, validation.By(validatePassword)),
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
}
