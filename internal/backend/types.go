package backend

import (
	"encoding/json"

	"github.com/gagyelog/gagyelog/internal/model"
)

// Provider names a social login provider.
type Provider string

// Supported social login providers.
const (
	ProviderKakao  Provider = "kakao"
	ProviderGoogle Provider = "google"
)

// LoginType is the value the backend expects in confirm-social requests.
func (p Provider) LoginType() string {
	switch p {
	case ProviderKakao:
		return "KAKAO"
	case ProviderGoogle:
		return "GOOGLE"
	}
	return ""
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID   json.RawMessage `json:"userId"`
	Token    string          `json:"token"`
	UserName string          `json:"userName"`
}

// oauthResponse is shared by the OAuth callback and confirm-social endpoints.
type oauthResponse struct {
	UserID          json.RawMessage `json:"userId"`
	AccessToken     string          `json:"accessToken"`
	Email           string          `json:"email"`
	UserName        string          `json:"userName"`
	RequiresConsent bool            `json:"requiresConsent"`
}

// OAuthResult is the outcome of exchanging a social authorization code.
// When RequiresConsent is set the session is not yet usable and the user
// must confirm with ConfirmSocial.
type OAuthResult struct {
	Session         model.Session
	RequiresConsent bool
	LoginType       string
}

type confirmSocialRequest struct {
	Email     string `json:"email"`
	LoginType string `json:"loginType"`
}

type createReceiptRequest struct {
	Date       string `json:"date"`
	Shop       string `json:"shop"`
	UserID     int64  `json:"userId"`
	KeywordID  int    `json:"keywordId"`
	TotalPrice int64  `json:"totalPrice"`
	ImagePath  string `json:"imagePath"`
}

type budgetResponse struct {
	Budget json.RawMessage `json:"budget"`
}

type saveBudgetRequest struct {
	UserID int64 `json:"userId"`
	Year   int   `json:"year"`
	Month  int   `json:"month"`
	Budget int64 `json:"budget"`
}

type monthlyStatsResponse struct {
	CategoryStats map[string]json.RawMessage `json:"categoryStats"`
	TotalSpending json.RawMessage            `json:"totalSpending"`
	Budget        json.RawMessage            `json:"budget"`
}

type recommendationResponse struct {
	OverspentCategory string `json:"overspentCategory"`
	Reason            string `json:"reason"`
}

type challengeResponse struct {
	ID             json.RawMessage `json:"id"`
	Type           string          `json:"type"`
	TargetAmount   json.RawMessage `json:"targetAmount"`
	TargetCategory string          `json:"targetCategory"`
	StartDate      string          `json:"startDate"`
	EndDate        string          `json:"endDate"`
	Success        bool            `json:"success"`
	Evaluated      bool            `json:"evaluated"`
}

type createChallengeRequest struct {
	Type           string `json:"type"`
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	TargetAmount   *int64 `json:"targetAmount,omitempty"`
	TargetCategory string `json:"targetCategory,omitempty"`
}

type badgeResponse struct {
	BadgeID     int    `json:"badgeId"`
	GrantedDate string `json:"grantedDate"`
}

type errorResponse struct {
	Message string `json:"message"`
}

type signupRequest struct {
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type findIDRequest struct {
	UserName string `json:"userName"`
}

type findIDResponse struct {
	Multiple  bool     `json:"multiple"`
	Email     string   `json:"email"`
	EmailList []string `json:"emailList"`
}

type emailRequest struct {
	Email string `json:"email"`
}

// resultResponse is the {success, message} shape of the reset endpoints.
type resultResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type verifyCodeResponse struct {
	Verified bool   `json:"verified"`
	Message  string `json:"message"`
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type updateProfileRequest struct {
	UserID          int64   `json:"userId"`
	UserName        string  `json:"userName"`
	CurrentPassword string  `json:"currentPassword"`
	NewPassword     *string `json:"newPassword"`
}
