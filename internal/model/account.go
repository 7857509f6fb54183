package model

import (
	"strings"
)

// Signup is a new account registration.
type Signup struct {
	UserName string
	Email    string
	Password string
	Confirm  string
}

// Validate checks required fields and that both passwords match.
func (s Signup) Validate() error {
	var missing []string
	if strings.TrimSpace(s.UserName) == "" {
		missing = append(missing, "name")
	}
	if !looksLikeEmail(s.Email) {
		missing = append(missing, "email")
	}
	if s.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	if s.Password != s.Confirm {
		return &ValidationError{Fields: []string{"password"}, Reason: "passwords do not match"}
	}
	return nil
}

// PasswordReset completes a reset with the code mailed to Email.
type PasswordReset struct {
	Email       string
	Code        string
	NewPassword string
	Confirm     string
}

// Validate checks required fields and that both passwords match.
func (r PasswordReset) Validate() error {
	var missing []string
	if !looksLikeEmail(r.Email) {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(r.Code) == "" {
		missing = append(missing, "code")
	}
	if r.NewPassword == "" {
		missing = append(missing, "new password")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	if r.NewPassword != r.Confirm {
		return &ValidationError{Fields: []string{"new password"}, Reason: "passwords do not match"}
	}
	return nil
}

// ProfileUpdate changes the display name and optionally the password.
// The current password is always required. An empty NewPassword keeps the
// existing one.
type ProfileUpdate struct {
	UserName        string
	CurrentPassword string
	NewPassword     string
}

// Validate checks the name and current password are present.
func (p ProfileUpdate) Validate() error {
	var missing []string
	if strings.TrimSpace(p.UserName) == "" {
		missing = append(missing, "name")
	}
	if p.CurrentPassword == "" {
		missing = append(missing, "current password")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

func looksLikeEmail(s string) bool {
	s = strings.TrimSpace(s)
	at := strings.Index(s, "@")
	return at > 0 && at < len(s)-1 && !strings.ContainsAny(s, " \t")
}
