package auth

import "time"

// SessionUser is the minimal projection of a Spotify profile cached in a
// cookie so pages can render without a database round trip.
// ID is immutable and equals the Spotify user id.
type SessionUser struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	ProfileImage string `json:"profileImage"`
}

// Session is assembled fresh on every read from independent cookies; it is
// never persisted as a single object. Absence of the access token or user
// cookie means no session, even when a refresh token is still present —
// that state is "expired but refreshable" and the caller's to act on.
type Session struct {
	User        SessionUser
	AccessToken string
	ExpiresAt   time.Time
}
