package state

import "github.com/five82/booth/internal/market"

// Session is the in-memory authentication state.
type Session struct {
	User    *market.User
	Token   string
	Loading bool
	Error   string
}

// Authenticated reports whether an access token is held.
func (s Session) Authenticated() bool {
	return s.Token != ""
}

// Pending marks a login or signup as in flight and clears the last error.
func (s Session) Pending() Session {
	s.Loading = true
	s.Error = ""
	return s
}

// Fulfilled records a successful login or signup. Fields missing from resp
// leave the previous values in place.
func (s Session) Fulfilled(resp market.AuthResponse) Session {
	s.Loading = false
	if resp.User != nil {
		user := *resp.User
		s.User = &user
	}
	if resp.AccessToken != "" {
		s.Token = resp.AccessToken
	}
	return s
}

// Rejected records a failed login or signup.
func (s Session) Rejected(msg string) Session {
	s.Loading = false
	s.Error = msg
	return s
}

// LoggedOut drops the user and token. It also serves session expiry.
func (s Session) LoggedOut() Session {
	return Session{Error: s.Error}
}

func (s Session) clone() Session {
	if s.User != nil {
		user := *s.User
		s.User = &user
	}
	return s
}
