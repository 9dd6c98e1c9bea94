// internal/server/pages.go
package server

import (
	"html/template"
	"net/http"
)

// errorMessages maps callback error codes to short, non-technical text
// shown on the login page. Provider-supplied codes fall through to the
// generic message unless listed here.
var errorMessages = map[string]string{
	"access_denied":         "You declined the Spotify authorization.",
	"missing_params":        "The login response was incomplete. Please try again.",
	"session_expired":       "Your login attempt expired. Please try again.",
	"state_mismatch":        "The login request could not be verified. Please try again.",
	"token_exchange_failed": "Signing in with Spotify failed. Please try again.",
	"profile_fetch_failed":  "Your Spotify profile could not be loaded. Please try again.",
	"database_error":        "Something went wrong saving your account. Please try again.",
}

const fallbackErrorMessage = "Something went wrong during login. Please try again."

// loginErrorMessage resolves an error code to user-facing text.
func loginErrorMessage(code string) string {
	if msg, ok := errorMessages[code]; ok {
		return msg
	}
	return fallbackErrorMessage
}

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html>
<head><title>viberx</title></head>
<body>
  <h1>viberx</h1>
  <p>Optimize your Spotify playlists.</p>
  <p><a href="/dashboard">Go to dashboard</a></p>
</body>
</html>
`))

var loginTemplate = template.Must(template.New("login").Parse(`<!DOCTYPE html>
<html>
<head><title>Log in - viberx</title></head>
<body>
  <h1>Log in</h1>
  {{if .Error}}<p class="error">{{.Error}}</p>{{end}}
  <p><a href="/api/auth/login">Continue with Spotify</a></p>
</body>
</html>
`))

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head><title>Dashboard - viberx</title></head>
<body>
  <h1>Dashboard</h1>
  {{if .User}}<p>Signed in as {{.User.DisplayName}}</p>{{end}}
  <form method="post" action="/api/auth/logout"><button>Log out</button></form>
</body>
</html>
`))

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	homeTemplate.Execute(w, nil)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	var data struct {
		Error string
	}
	if code := r.URL.Query().Get("error"); code != "" {
		data.Error = loginErrorMessage(code)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	loginTemplate.Execute(w, data)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	// The guard guarantees auth cookies, not a live session; the session
	// may still be nil when only the refresh token survives.
	sess := s.cookies(w, r).Session()

	var data struct {
		User any
	}
	if sess != nil {
		data.User = sess.User
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	dashboardTemplate.Execute(w, data)
}
