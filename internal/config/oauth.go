package config

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/oauth2"
)

// Social login endpoints. Token exchange happens on the backend, so only
// the authorize URLs are used here.
var (
	KakaoEndpoint = oauth2.Endpoint{
		AuthURL:  "https://kauth.kakao.com/oauth/authorize",
		TokenURL: "https://kauth.kakao.com/oauth/token",
	}
	GoogleEndpoint = oauth2.Endpoint{
		AuthURL:  "https://accounts.google.com/o/oauth2/v2/auth",
		TokenURL: "https://oauth2.googleapis.com/token",
	}
)

// CallbackURL returns the local redirect URI for a provider.
func CallbackURL(cfg Config, provider string) string {
	port := cfg.OAuth.CallbackPort
	if port == 0 {
		port = DefaultConfig().OAuth.CallbackPort
	}
	return fmt.Sprintf("http://localhost:%d/oauth/%s/callback", port, provider)
}

// OAuthClient returns the OAuth client config for "kakao" or "google".
// Client IDs come from env vars first, then the config file.
func OAuthClient(cfg Config, provider string) (*oauth2.Config, error) {
	switch strings.ToLower(provider) {
	case "kakao":
		id := firstNonEmpty(os.Getenv(EnvKakaoClientID), cfg.OAuth.KakaoClientID)
		if id == "" {
			return nil, fmt.Errorf("kakao client id not set (config [oauth] kakao_client_id or %s)", EnvKakaoClientID)
		}
		return &oauth2.Config{
			ClientID:    id,
			Endpoint:    KakaoEndpoint,
			RedirectURL: CallbackURL(cfg, "kakao"),
		}, nil
	case "google":
		id := firstNonEmpty(os.Getenv(EnvGoogleClient), cfg.OAuth.GoogleClientID)
		if id == "" {
			return nil, fmt.Errorf("google client id not set (config [oauth] google_client_id or %s)", EnvGoogleClient)
		}
		return &oauth2.Config{
			ClientID:    id,
			Endpoint:    GoogleEndpoint,
			RedirectURL: CallbackURL(cfg, "google"),
			Scopes:      []string{"email", "profile"},
		}, nil
	}
	return nil, fmt.Errorf("unknown oauth provider %q (want kakao or google)", provider)
}

// AuthorizeURL builds the URL the user opens to start a social login.
func AuthorizeURL(cfg Config, provider, state string) (string, error) {
	oc, err := OAuthClient(cfg, provider)
	if err != nil {
		return "", err
	}
	return oc.AuthCodeURL(state), nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
