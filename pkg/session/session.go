// Package session holds the client's authenticated session: the state
// store with its transition actions, the persistent credential slot,
// and the rehydrator that rebuilds the session on process start.
package session

import "time"

// User is the display/derived identity attached to a session. The
// credential is the source of truth for authorization; User mirrors its
// claims (or the profile endpoint's richer answer after a login).
type User struct {
	ID         int64      `json:"id"`
	Username   string     `json:"username"`
	Email      string     `json:"email"`
	IsEducator bool       `json:"is_educator"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}

// Session is the client's current belief about who is logged in.
// Invariant: IsAuthenticated is true iff both User and Credential are
// present.
type Session struct {
	IsAuthenticated bool
	User            *User
	Credential      string // empty means absent
	Loading         bool   // true only during an in-flight login attempt
	Error           string // last login failure reason, empty means absent
}
