package model

import "strings"

// Session is the authenticated identity passed explicitly into every
// backend call. It is never read from ambient state.
type Session struct {
	BaseURL  string
	Token    string
	UserID   int64
	Email    string
	UserName string
}

// LoggedIn reports whether the session carries a token and a user.
func (s Session) LoggedIn() bool {
	return strings.TrimSpace(s.Token) != "" && s.UserID > 0
}
