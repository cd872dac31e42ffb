package session

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/nyaruka/phonenumbers"
)

// LoginRequest is the credential-exchange payload. Format validation stays
// with the remote service; only presence is checked locally.
type LoginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Password, validation.Required),
	)
}

// RegisterRequest is the registration payload submitted to the platform.
// Field-level validation is delegated to the remote service.
type RegisterRequest struct {
	Email           string `form:"email" json:"email"`
	Username        string `form:"username" json:"username"`
	FirstName       string `form:"first_name" json:"first_name"`
	LastName        string `form:"last_name" json:"last_name"`
	Password        string `form:"password" json:"password"`
	PasswordConfirm string `form:"password_confirm" json:"password_confirm"`
	UserType        string `form:"user_type" json:"user_type"`
	PhoneNumber     string `form:"phone_number" json:"phone_number,omitempty"`
	City            string `form:"city" json:"city,omitempty"`
	State           string `form:"state" json:"state,omitempty"`
	Country         string `form:"country" json:"country,omitempty"`
}

// Validate will run validation rules
func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required),
		validation.Field(&r.Username, validation.Required),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.PasswordConfirm, validation.Required),
		validation.Field(&r.UserType, validation.Required),
	)
}

// NormalizePhone rewrites a phone number to E.164 for the given region.
// Best effort: anything unparseable is returned untouched, since the
// service applies its own phone validation.
func NormalizePhone(raw, region string) string {
	if raw == "" {
		return raw
	}

	num, err := phonenumbers.Parse(raw, region)
	if err != nil || !phonenumbers.IsValidNumber(num) {
		return raw
	}

	return phonenumbers.Format(num, phonenumbers.E164)
}
