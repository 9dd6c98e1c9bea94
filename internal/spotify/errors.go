package spotify

import "errors"

var (
	// ErrNoRefreshToken is returned when a refresh is attempted with no
	// refresh token stored. Maps to 401 at the HTTP boundary.
	ErrNoRefreshToken = errors.New("no refresh token stored")

	// ErrRefreshRejected is returned when Spotify rejects the refresh
	// grant. The response body is logged server-side, never surfaced.
	ErrRefreshRejected = errors.New("token refresh rejected by provider")

	// ErrNoActiveSession is returned by Fetch when no session exists and
	// no usable refresh token can produce one.
	ErrNoActiveSession = errors.New("no active session")

	// ErrRefreshFailed is returned by Fetch when the reactive refresh
	// after a 401 fails. No further retries are attempted.
	ErrRefreshFailed = errors.New("token refresh failed")
)
