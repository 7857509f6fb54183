package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gagyelog/gagyelog/internal/model"
)

var (
	// ErrNoAccount is returned by FindID when no account has the given name.
	ErrNoAccount = errors.New("backend: no account with that name")
	// ErrWrongPassword is returned by UpdateProfile when the current
	// password is rejected.
	ErrWrongPassword = errors.New("backend: current password is incorrect")
)

// Signup registers a new account. It does not log in.
func (c *Client) Signup(ctx context.Context, sess model.Session, s model.Signup) error {
	if err := s.Validate(); err != nil {
		return err
	}
	body := signupRequest{
		UserName: strings.TrimSpace(s.UserName),
		Email:    strings.TrimSpace(s.Email),
		Password: s.Password,
	}
	return c.do(ctx, sess, http.MethodPost, "/signup", nil, body, nil)
}

// FindID returns the email addresses registered under userName.
func (c *Client) FindID(ctx context.Context, sess model.Session, userName string) ([]string, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return nil, &model.ValidationError{Fields: []string{"name"}}
	}

	var resp findIDResponse
	err := c.do(ctx, sess, http.MethodPost, "/user/find-id", nil, findIDRequest{UserName: userName}, &resp)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusBadRequest {
		return nil, ErrNoAccount
	}
	if err != nil {
		return nil, err
	}

	emails := resp.EmailList
	if !resp.Multiple {
		emails = nil
		if resp.Email != "" {
			emails = []string{resp.Email}
		}
	}
	if len(emails) == 0 {
		return nil, ErrNoAccount
	}
	return emails, nil
}

// SendResetCode asks the backend to mail a password reset code to email.
// It returns the backend's confirmation message.
func (c *Client) SendResetCode(ctx context.Context, sess model.Session, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", &model.ValidationError{Fields: []string{"email"}}
	}
	var resp resultResponse
	if err := c.do(ctx, sess, http.MethodPost, "/user/send-reset-code", nil, emailRequest{Email: email}, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", resultError("sending reset code", resp.Message)
	}
	return resp.Message, nil
}

// VerifyResetCode checks a mailed reset code before a new password is chosen.
func (c *Client) VerifyResetCode(ctx context.Context, sess model.Session, email, code string) error {
	var resp verifyCodeResponse
	body := verifyCodeRequest{Email: strings.TrimSpace(email), Code: strings.TrimSpace(code)}
	if err := c.do(ctx, sess, http.MethodPost, "/user/verify-reset-code", nil, body, &resp); err != nil {
		return err
	}
	if !resp.Verified {
		return resultError("verifying reset code", resp.Message)
	}
	return nil
}

// ResetPassword sets a new password using a verified reset code.
func (c *Client) ResetPassword(ctx context.Context, sess model.Session, r model.PasswordReset) (string, error) {
	if err := r.Validate(); err != nil {
		return "", err
	}
	var resp resultResponse
	body := resetPasswordRequest{
		Email:       strings.TrimSpace(r.Email),
		Code:        strings.TrimSpace(r.Code),
		NewPassword: r.NewPassword,
	}
	if err := c.do(ctx, sess, http.MethodPost, "/user/reset-password-by-code", nil, body, &resp); err != nil {
		return "", err
	}
	if !resp.Success {
		return "", resultError("resetting password", resp.Message)
	}
	return resp.Message, nil
}

// UpdateProfile changes the logged-in user's name and optionally password,
// returning the session with the new name.
func (c *Client) UpdateProfile(ctx context.Context, sess model.Session, p model.ProfileUpdate) (model.Session, error) {
	if err := requireLogin(sess); err != nil {
		return sess, err
	}
	if err := p.Validate(); err != nil {
		return sess, err
	}

	body := updateProfileRequest{
		UserID:          sess.UserID,
		UserName:        strings.TrimSpace(p.UserName),
		CurrentPassword: p.CurrentPassword,
	}
	if p.NewPassword != "" {
		body.NewPassword = &p.NewPassword
	}

	err := c.do(ctx, sess, http.MethodPut, "/user/update", nil, body, nil)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusForbidden && strings.Contains(apiErr.Message, "현재 비밀번호") {
		return sess, ErrWrongPassword
	}
	if err != nil {
		return sess, err
	}
	sess.UserName = body.UserName
	return sess, nil
}

func resultError(action, msg string) error {
	if msg == "" {
		msg = "rejected by backend"
	}
	return fmt.Errorf("backend: %s: %s", action, msg)
}
