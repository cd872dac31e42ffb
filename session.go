package session

import (
	"fmt"
	"time"
)

// Snapshot is the immutable view of a session published to subscribers.
// Token material is deliberately reduced to presence flags; consumers never
// read tokens directly.
type Snapshot struct {
	Status          Status
	User            *User
	HasAccessToken  bool
	HasRefreshToken bool
	At              time.Time
}

// Authenticated reports whether authenticated-only UI may render.
func (s Snapshot) Authenticated() bool {
	return s.Status == StatusAuthenticated
}

// Resolved reports whether the initial token check has completed; consumers
// must not render authenticated-only UI before this is true.
func (s Snapshot) Resolved() bool {
	return s.Status != StatusInitializing
}

func (s Snapshot) String() string {
	user := "<nil>"
	if s.User != nil {
		user = fmt.Sprintf("%d (%s)", s.User.ID, s.User.UserType)
	}
	return fmt.Sprintf(
		"status=%s user=%s access_token=%t refresh_token=%t at=%s",
		s.Status,
		user,
		s.HasAccessToken,
		s.HasRefreshToken,
		s.At.Format(time.RFC3339),
	)
}
