package session

import (
	"encoding/json"
	"time"
)

// UserType discriminates the two marketplace roles plus platform admins.
type UserType string

const (
	UserTypeMusician UserType = "musician"
	UserTypeVenue    UserType = "venue"
	UserTypeAdmin    UserType = "admin"
)

// User mirrors the platform's user record. The manager treats it as
// pass-through data: fields it does not know about survive a round trip
// through Raw.
type User struct {
	ID          int64    `json:"id"`
	Email       string   `json:"email"`
	Username    string   `json:"username"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	UserType    UserType `json:"user_type"`
	PhoneNumber string   `json:"phone_number,omitempty"`
	Bio         string   `json:"bio,omitempty"`
	City        string   `json:"city,omitempty"`
	State       string   `json:"state,omitempty"`
	Country     string   `json:"country,omitempty"`
	Website     string   `json:"website,omitempty"`
	Instagram   string   `json:"instagram,omitempty"`
	Facebook    string   `json:"facebook,omitempty"`
	Twitter     string   `json:"twitter,omitempty"`
	IsVerified  bool     `json:"is_verified,omitempty"`

	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	// Raw keeps the unmodified record so consumers can reach fields this
	// SDK does not model (profile blobs, notification preferences).
	Raw json.RawMessage `json:"-"`
}

// IsMusician reports whether the record belongs to a musician account.
func (u *User) IsMusician() bool {
	return u != nil && u.UserType == UserTypeMusician
}

// IsVenue reports whether the record belongs to a venue account.
func (u *User) IsVenue() bool {
	return u != nil && u.UserType == UserTypeVenue
}

// FullName joins first and last names, falling back to the username.
func (u *User) FullName() string {
	if u == nil {
		return ""
	}
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// decodeUser parses a user record, keeping the raw payload attached.
func decodeUser(raw json.RawMessage) (*User, error) {
	user := &User{}
	if err := json.Unmarshal(raw, user); err != nil {
		return nil, err
	}
	user.Raw = append(json.RawMessage(nil), raw...)
	return user, nil
}

// cloneUser copies a record so published snapshots cannot alias manager
// state.
func cloneUser(u *User) *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Raw = append(json.RawMessage(nil), u.Raw...)
	return &clone
}
