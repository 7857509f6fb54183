// Package config handles gagyelog configuration and the persisted session.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/gagyelog/gagyelog/internal/model"
)

// Environment variables that override the config file.
const (
	EnvAPIURL        = "GAGYELOG_API_URL"
	EnvToken         = "GAGYELOG_TOKEN"
	EnvUserID        = "GAGYELOG_USER_ID"
	EnvKakaoClientID = "GAGYELOG_KAKAO_CLIENT_ID"
	EnvGoogleClient  = "GAGYELOG_GOOGLE_CLIENT_ID"
)

// DefaultAPIURL is the backend used when nothing else is configured.
const DefaultAPIURL = "http://localhost:8080"

// Config holds all gagyelog configuration.
type Config struct {
	General    GeneralConfig    `toml:"general"`
	API        APIConfig        `toml:"api"`
	Session    SessionConfig    `toml:"session"`
	OAuth      OAuthConfig      `toml:"oauth"`
	Appearance AppearanceConfig `toml:"appearance"`
	TUI        TUIConfig        `toml:"tui"`
	Daemon     DaemonConfig     `toml:"daemon"`
}

// GeneralConfig holds general preferences.
type GeneralConfig struct {
	SyncMonths int    `toml:"sync_months"`
	Timezone   string `toml:"timezone,omitempty"`
	NoCache    bool   `toml:"no_cache"`
}

// APIConfig holds backend connection settings.
type APIConfig struct {
	BaseURL string `toml:"base_url"`
}

// SessionConfig is the persisted login. It is written with 0600 permissions.
type SessionConfig struct {
	Token    string `toml:"token,omitempty"`
	UserID   int64  `toml:"user_id,omitempty"`
	Email    string `toml:"email,omitempty"`
	UserName string `toml:"user_name,omitempty"`
}

// OAuthConfig holds social login client settings.
type OAuthConfig struct {
	KakaoClientID  string `toml:"kakao_client_id,omitempty"`
	GoogleClientID string `toml:"google_client_id,omitempty"`
	CallbackPort   int    `toml:"callback_port"`
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	AutoRefresh        bool `toml:"auto_refresh"`
	RefreshIntervalSec int  `toml:"refresh_interval_sec"`
}

// DaemonConfig holds background poller settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	IntervalSec  int    `toml:"interval_sec"`
	EventsBuffer int    `toml:"events_buffer"`
	LogLevel     string `toml:"log_level"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			SyncMonths: 6,
		},
		API: APIConfig{
			BaseURL: DefaultAPIURL,
		},
		OAuth: OAuthConfig{
			CallbackPort: 8085,
		},
		Appearance: AppearanceConfig{
			Theme: "passbook",
		},
		TUI: TUIConfig{
			AutoRefresh:        true,
			RefreshIntervalSec: 60,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8787",
			IntervalSec:  60,
			EventsBuffer: 200,
			LogLevel:     "info",
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gagyelog")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "gagyelog")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// LoadEnv loads .env files from the working directory and the config
// directory. Variables already set in the environment win.
func LoadEnv() {
	for _, path := range []string{".env", filepath.Join(ConfigDir(), ".env")} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
		}
	}
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk. The file holds the session token, so it
// is only readable by the owner.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer func() { _ = f.Close() }()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// GetAPIURL returns the backend URL from env var or config, in that order.
func GetAPIURL(cfg Config) string {
	if u := strings.TrimSpace(os.Getenv(EnvAPIURL)); u != "" {
		return strings.TrimRight(u, "/")
	}
	if cfg.API.BaseURL != "" {
		return strings.TrimRight(cfg.API.BaseURL, "/")
	}
	return DefaultAPIURL
}

// Session builds the explicit session passed to backend calls. Env vars
// override the persisted token and user ID.
func Session(cfg Config) model.Session {
	s := model.Session{
		BaseURL:  GetAPIURL(cfg),
		Token:    cfg.Session.Token,
		UserID:   cfg.Session.UserID,
		Email:    cfg.Session.Email,
		UserName: cfg.Session.UserName,
	}
	if tok := strings.TrimSpace(os.Getenv(EnvToken)); tok != "" {
		s.Token = tok
	}
	if raw := strings.TrimSpace(os.Getenv(EnvUserID)); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			s.UserID = id
		}
	}
	return s
}

// SetSession stores a logged-in session in cfg.
func SetSession(cfg *Config, s model.Session) {
	cfg.Session = SessionConfig{
		Token:    s.Token,
		UserID:   s.UserID,
		Email:    s.Email,
		UserName: s.UserName,
	}
}

// ClearSession removes the persisted login.
func ClearSession(cfg *Config) {
	cfg.Session = SessionConfig{}
}

// Location returns the configured timezone, or the local zone.
func Location(cfg Config) (*time.Location, error) {
	if cfg.General.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(cfg.General.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", cfg.General.Timezone, err)
	}
	return loc, nil
}
