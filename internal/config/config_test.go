package config

import (
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagyelog/gagyelog/internal/model"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	for _, key := range []string{EnvAPIURL, EnvToken, EnvUserID, EnvKakaoClientID, EnvGoogleClient} {
		t.Setenv(key, "")
	}
	return dir
}

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	isolate(t)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != DefaultAPIURL || cfg.General.SyncMonths != 6 {
		t.Errorf("defaults = %+v", cfg)
	}
	if Exists() {
		t.Error("Exists() = true before any save")
	}
}

func TestSaveLoad_SessionRoundTripAndPermissions(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	SetSession(&cfg, model.Session{Token: "jwt", UserID: 42, Email: "a@b.c", UserName: "Kim"})
	cfg.API.BaseURL = "https://ledger.example.com/"

	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	info, err := os.Stat(ConfigPath())
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config perm = %o, want 600", perm)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	sess := Session(loaded)
	if sess.Token != "jwt" || sess.UserID != 42 || sess.UserName != "Kim" {
		t.Errorf("session = %+v", sess)
	}
	if sess.BaseURL != "https://ledger.example.com" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", sess.BaseURL)
	}

	ClearSession(&loaded)
	if Session(loaded).LoggedIn() {
		t.Error("cleared session should not be logged in")
	}
}

func TestSession_EnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv(EnvAPIURL, "http://10.0.0.5:8080")
	t.Setenv(EnvToken, "env-token")
	t.Setenv(EnvUserID, "9")

	cfg := DefaultConfig()
	SetSession(&cfg, model.Session{Token: "file-token", UserID: 1})

	sess := Session(cfg)
	if sess.BaseURL != "http://10.0.0.5:8080" || sess.Token != "env-token" || sess.UserID != 9 {
		t.Errorf("session = %+v, want env values", sess)
	}
}

func TestLoadEnv_DotEnvDoesNotOverride(t *testing.T) {
	dir := isolate(t)
	if err := os.MkdirAll(filepath.Join(dir, "gagyelog"), 0o700); err != nil {
		t.Fatal(err)
	}
	env := EnvKakaoClientID + "=from-dotenv\n" + EnvGoogleClient + "=dotenv-google\n"
	if err := os.WriteFile(filepath.Join(dir, "gagyelog", ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv.Load only fills unset variables, so unset the placeholders.
	_ = os.Unsetenv(EnvKakaoClientID)
	_ = os.Unsetenv(EnvGoogleClient)
	t.Setenv(EnvGoogleClient, "already-set")

	LoadEnv()
	t.Cleanup(func() { _ = os.Unsetenv(EnvKakaoClientID) })

	if got := os.Getenv(EnvKakaoClientID); got != "from-dotenv" {
		t.Errorf("%s = %q, want from-dotenv", EnvKakaoClientID, got)
	}
	if got := os.Getenv(EnvGoogleClient); got != "already-set" {
		t.Errorf("%s = %q, want existing value kept", EnvGoogleClient, got)
	}
}

func TestAuthorizeURL(t *testing.T) {
	isolate(t)
	cfg := DefaultConfig()
	cfg.OAuth.KakaoClientID = "kakao-id"
	cfg.OAuth.GoogleClientID = "google-id"

	raw, err := AuthorizeURL(cfg, "kakao", "st")
	if err != nil {
		t.Fatalf("AuthorizeURL: %v", err)
	}
	u, _ := url.Parse(raw)
	q := u.Query()
	if u.Host != "kauth.kakao.com" || q.Get("client_id") != "kakao-id" || q.Get("response_type") != "code" {
		t.Errorf("kakao url = %s", raw)
	}
	if q.Get("redirect_uri") != "http://localhost:8085/oauth/kakao/callback" {
		t.Errorf("redirect_uri = %q", q.Get("redirect_uri"))
	}

	raw, _ = AuthorizeURL(cfg, "google", "st")
	u, _ = url.Parse(raw)
	if u.Query().Get("scope") != "email profile" {
		t.Errorf("google scope = %q", u.Query().Get("scope"))
	}

	if _, err := AuthorizeURL(cfg, "naver", "st"); err == nil {
		t.Error("unknown provider should fail")
	}
	cfg.OAuth.KakaoClientID = ""
	if _, err := AuthorizeURL(cfg, "kakao", "st"); err == nil {
		t.Error("missing client id should fail")
	}
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.General.Timezone = "Asia/Seoul"
	loc, err := Location(cfg)
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	if loc.String() != "Asia/Seoul" {
		t.Errorf("Location = %v", loc)
	}
	cfg.General.Timezone = "Mars/Olympus"
	if _, err := Location(cfg); err == nil {
		t.Error("bad timezone should fail")
	}
}
