package response

import "github.com/pyconid/pyconid25-be-sub000/internal/domain"

type User struct {
	ID              uint   `json:"id"`
	Email           string `json:"email"`
	EmailVerified   bool   `json:"email_verified"`
	Name            string `json:"name"`
	Phone           string `json:"phone"`
	ParticipantType string `json:"participant_type"`
}

func NewUser(u domain.User) User {
	return User{
		ID:              u.ID,
		Email:           u.Email,
		EmailVerified:   u.EmailVerified,
		Name:            u.Name,
		Phone:           u.Phone,
		ParticipantType: u.ParticipantType,
	}
}

type Auth struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
