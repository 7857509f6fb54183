// Package backend provides a client for the household-ledger REST backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gagyelog/gagyelog/internal/model"
	"github.com/gagyelog/gagyelog/internal/source"
)

const (
	// DefaultBaseURL is used when a session carries no base URL.
	DefaultBaseURL = "http://localhost:8080"

	requestTimeout = 10 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	userAgent      = "gagyelog/1.0"
)

var (
	// ErrUnauthorized indicates the token is missing, expired, or rejected.
	ErrUnauthorized = errors.New("backend: unauthorized (log in again)")
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("backend: not found")
	// ErrRateLimited indicates the backend rate limit was hit.
	ErrRateLimited = errors.New("backend: rate limited")
	// ErrNotLoggedIn is returned before any request when the session has no token.
	ErrNotLoggedIn = errors.New("backend: not logged in (run `gagyelog login`)")
)

// APIError is a non-2xx response. Message carries the backend's "message"
// field when present. errors.Is matches it against the status sentinels.
type APIError struct {
	Method  string
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("backend: %s %s: %d %s", e.Method, e.Path, e.Status, msg)
}

// Unwrap maps the status onto a sentinel so callers can use errors.Is.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusTooManyRequests:
		return ErrRateLimited
	}
	return nil
}

// Client talks to the backend. It holds no identity; every call takes the
// session explicitly.
type Client struct {
	http *http.Client
}

// NewClient creates a client. A nil httpClient uses a default one.
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{http: httpClient}
}

// Login exchanges email and password for a session.
func (c *Client) Login(ctx context.Context, sess model.Session, email, password string) (model.Session, error) {
	var resp loginResponse
	err := c.do(ctx, sess, http.MethodPost, "/user/login", nil, loginRequest{Email: email, Password: password}, &resp)
	if err != nil {
		return sess, err
	}
	if resp.Token == "" {
		return sess, errors.New("backend: login response carried no token")
	}

	userID, ok := source.ParseNumber(resp.UserID)
	if !ok || userID <= 0 {
		return sess, errors.New("backend: login response carried no valid userId")
	}

	sess.Token = resp.Token
	sess.UserID = userID
	sess.UserName = resp.UserName
	sess.Email = email
	return sess, nil
}

// OAuthLogin exchanges a social authorization code for a session.
func (c *Client) OAuthLogin(ctx context.Context, sess model.Session, provider Provider, code string) (*OAuthResult, error) {
	if provider.LoginType() == "" {
		return nil, fmt.Errorf("backend: unknown provider %q", provider)
	}
	q := url.Values{"code": {code}}

	var resp oauthResponse
	if err := c.do(ctx, sess, http.MethodGet, "/user/oauth/"+string(provider), q, nil, &resp); err != nil {
		return nil, err
	}
	return &OAuthResult{
		Session:         resp.apply(sess),
		RequiresConsent: resp.RequiresConsent,
		LoginType:       provider.LoginType(),
	}, nil
}

// ConfirmSocial completes a first-time social login after consent.
func (c *Client) ConfirmSocial(ctx context.Context, sess model.Session, email, loginType string) (model.Session, error) {
	var resp oauthResponse
	body := confirmSocialRequest{Email: email, LoginType: loginType}
	if err := c.do(ctx, sess, http.MethodPost, "/user/confirm-social", nil, body, &resp); err != nil {
		return sess, err
	}
	return resp.apply(sess), nil
}

func (r oauthResponse) apply(sess model.Session) model.Session {
	sess.Token = r.AccessToken
	if id, ok := source.ParseNumber(r.UserID); ok {
		sess.UserID = id
	}
	sess.Email = r.Email
	sess.UserName = r.UserName
	return sess
}

// Ledger fetches the user's receipts. A zero year fetches every month.
// Malformed elements are tolerated and counted in the result.
func (c *Client) Ledger(ctx context.Context, sess model.Session, year int, month time.Month) (source.DecodeResult, error) {
	if err := requireLogin(sess); err != nil {
		return source.DecodeResult{}, err
	}
	q := url.Values{"userId": {strconv.FormatInt(sess.UserID, 10)}}
	if year > 0 {
		q.Set("year", strconv.Itoa(year))
		q.Set("month", strconv.Itoa(int(month)))
	}

	body, err := c.raw(ctx, sess, http.MethodGet, "/receipt/ledger", q, nil)
	if err != nil {
		return source.DecodeResult{}, err
	}
	result, err := source.DecodeReceipts(body)
	if err != nil {
		return result, fmt.Errorf("backend: parsing ledger: %w", err)
	}
	return result, nil
}

// CreateReceipt submits a manual entry. The input is validated first and
// a ValidationError is returned without making a request.
func (c *Client) CreateReceipt(ctx context.Context, sess model.Session, in model.EntryInput) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := requireLogin(sess); err != nil {
		return err
	}
	body := createReceiptRequest{
		Date:       in.Date,
		Shop:       in.ShopOrDefault(),
		UserID:     sess.UserID,
		KeywordID:  in.CategoryID,
		TotalPrice: in.Amount,
		ImagePath:  in.ImagePath,
	}
	return c.do(ctx, sess, http.MethodPost, "/receipt/createReceipt", nil, body, nil)
}

// DeleteReceipt soft-deletes a receipt.
func (c *Client) DeleteReceipt(ctx context.Context, sess model.Session, id int64) error {
	if err := requireLogin(sess); err != nil {
		return err
	}
	return c.do(ctx, sess, http.MethodDelete, "/receipt/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// Budget returns the budget for a month, or 0 when none has been set.
func (c *Client) Budget(ctx context.Context, sess model.Session, year int, month time.Month) (int64, error) {
	if err := requireLogin(sess); err != nil {
		return 0, err
	}
	q := url.Values{
		"userId": {strconv.FormatInt(sess.UserID, 10)},
		"year":   {strconv.Itoa(year)},
		"month":  {strconv.Itoa(int(month))},
	}
	var resp budgetResponse
	if err := c.do(ctx, sess, http.MethodGet, "/budget", q, nil, &resp); err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	amount, _ := source.ParseNumber(resp.Budget)
	return amount, nil
}

// SaveBudget upserts the budget for a month.
func (c *Client) SaveBudget(ctx context.Context, sess model.Session, b model.Budget) error {
	if b.Amount < 0 {
		return &model.ValidationError{Fields: []string{"budget"}, Reason: "budget must not be negative"}
	}
	if err := requireLogin(sess); err != nil {
		return err
	}
	body := saveBudgetRequest{
		UserID: sess.UserID,
		Year:   b.Year,
		Month:  int(b.Month),
		Budget: b.Amount,
	}
	return c.do(ctx, sess, http.MethodPost, "/budget", nil, body, nil)
}

// MonthlyTotal returns the backend's total spend for the current month.
func (c *Client) MonthlyTotal(ctx context.Context, sess model.Session) (int64, error) {
	if err := requireLogin(sess); err != nil {
		return 0, err
	}
	body, err := c.raw(ctx, sess, http.MethodGet, "/statis/getReceipt/calMonthlyTotal", nil, nil)
	if err != nil {
		return 0, err
	}
	total, ok := source.ParseNumber(bytes.TrimSpace(body))
	if !ok && len(bytes.TrimSpace(body)) > 0 {
		return 0, fmt.Errorf("backend: parsing monthly total %q", truncate(string(body), 40))
	}
	return total, nil
}

// MonthlyStats returns the backend's category statistics for a month.
func (c *Client) MonthlyStats(ctx context.Context, sess model.Session, year int, month time.Month) (*model.MonthlyStats, error) {
	if err := requireLogin(sess); err != nil {
		return nil, err
	}
	q := url.Values{
		"year":  {strconv.Itoa(year)},
		"month": {strconv.Itoa(int(month))},
	}
	var resp monthlyStatsResponse
	if err := c.do(ctx, sess, http.MethodGet, "/statis/getReceipt/monthlyStats", q, nil, &resp); err != nil {
		return nil, err
	}

	stats := &model.MonthlyStats{CategoryStats: make(map[string]int64, len(resp.CategoryStats))}
	for label, raw := range resp.CategoryStats {
		v, _ := source.ParseNumber(raw)
		stats.CategoryStats[label] = v
	}
	stats.TotalSpending, _ = source.ParseNumber(resp.TotalSpending)
	if b, ok := source.ParseNumber(resp.Budget); ok {
		stats.Budget = &b
	}
	return stats, nil
}

// Recommendation returns the backend's overspending feedback.
func (c *Client) Recommendation(ctx context.Context, sess model.Session) (*model.Recommendation, error) {
	if err := requireLogin(sess); err != nil {
		return nil, err
	}
	var resp recommendationResponse
	if err := c.do(ctx, sess, http.MethodGet, "/statis/getReceipt/recommendCategory", nil, nil, &resp); err != nil {
		return nil, err
	}
	return &model.Recommendation{OverspentCategory: resp.OverspentCategory, Reason: resp.Reason}, nil
}

// Challenges returns the user's challenges.
func (c *Client) Challenges(ctx context.Context, sess model.Session) ([]model.Challenge, error) {
	if err := requireLogin(sess); err != nil {
		return nil, err
	}
	var resp []challengeResponse
	if err := c.do(ctx, sess, http.MethodGet, "/challenge/my", nil, nil, &resp); err != nil {
		return nil, err
	}

	challenges := make([]model.Challenge, 0, len(resp))
	for _, r := range resp {
		ch := model.Challenge{
			Type:           model.ChallengeType(r.Type),
			TargetCategory: r.TargetCategory,
			StartDate:      r.StartDate,
			EndDate:        r.EndDate,
			Success:        r.Success,
			Evaluated:      r.Evaluated,
		}
		ch.ID, _ = source.ParseNumber(r.ID)
		if amount, ok := source.ParseNumber(r.TargetAmount); ok {
			ch.TargetAmount = &amount
		}
		challenges = append(challenges, ch)
	}
	return challenges, nil
}

// Challenge returns one of the user's challenges by ID.
func (c *Client) Challenge(ctx context.Context, sess model.Session, id int64) (*model.Challenge, error) {
	all, err := c.Challenges(ctx, sess)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("challenge %d: %w", id, ErrNotFound)
}

// CreateChallenge starts a new challenge after validating it.
func (c *Client) CreateChallenge(ctx context.Context, sess model.Session, nc model.NewChallenge) error {
	if err := nc.Validate(); err != nil {
		return err
	}
	if err := requireLogin(sess); err != nil {
		return err
	}
	body := createChallengeRequest{
		Type:           string(nc.Type),
		StartDate:      nc.StartDate,
		EndDate:        nc.EndDate,
		TargetAmount:   nc.TargetAmount,
		TargetCategory: nc.TargetCategory,
	}
	return c.do(ctx, sess, http.MethodPost, "/challenge/create", nil, body, nil)
}

// DeleteChallenge removes a challenge.
func (c *Client) DeleteChallenge(ctx context.Context, sess model.Session, id int64) error {
	if err := requireLogin(sess); err != nil {
		return err
	}
	return c.do(ctx, sess, http.MethodDelete, "/challenge/"+strconv.FormatInt(id, 10), nil, nil, nil)
}

// Badges returns the user's granted badges.
func (c *Client) Badges(ctx context.Context, sess model.Session) ([]model.BadgeGrant, error) {
	if err := requireLogin(sess); err != nil {
		return nil, err
	}
	var resp []badgeResponse
	if err := c.do(ctx, sess, http.MethodPost, "/history/getGrantedDate", nil, nil, &resp); err != nil {
		return nil, err
	}
	grants := make([]model.BadgeGrant, 0, len(resp))
	for _, r := range resp {
		grants = append(grants, model.BadgeGrant{BadgeID: r.BadgeID, GrantedDate: r.GrantedDate})
	}
	return grants, nil
}

func requireLogin(sess model.Session) error {
	if !sess.LoggedIn() {
		return ErrNotLoggedIn
	}
	return nil
}

// do sends a JSON request and decodes a JSON response into out.
// A nil out discards the body.
func (c *Client) do(ctx context.Context, sess model.Session, method, path string, q url.Values, in, out any) error {
	body, err := c.raw(ctx, sess, method, path, q, in)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("backend: parsing %s response: %w", path, err)
	}
	return nil
}

// raw performs a request and returns the response body.
func (c *Client) raw(ctx context.Context, sess model.Session, method, path string, q url.Values, in any) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	base := strings.TrimRight(sess.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	target := base + path
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("backend: encoding request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return nil, fmt.Errorf("backend: creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sess.Token != "" {
		req.Header.Set("Authorization", "Bearer "+sess.Token)
	}

	//nolint:gosec // URL is built from the configured backend base
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("backend: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("backend: reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Method:  method,
			Path:    path,
			Status:  resp.StatusCode,
			Message: errorMessage(body),
		}
	}
	return body, nil
}

// errorMessage extracts the backend's "message" field, falling back to a
// trimmed plain-text body.
func errorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Message != "" {
		return er.Message
	}
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "<") {
		return ""
	}
	return truncate(text, 200)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
