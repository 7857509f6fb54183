// Package cmd implements the gagyelog CLI commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/gagyelog/gagyelog/internal/config"
	"github.com/gagyelog/gagyelog/internal/pipeline"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	cfg := e.cfg

	fmt.Printf("  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Months cached:  %d\n", cfg.General.SyncMonths)
	fmt.Printf("    Timezone:       %s\n", e.loc)
	fmt.Printf("    Cache:          %s\n", cacheStatus(cfg))
	fmt.Println()

	fmt.Println("  [API]")
	fmt.Printf("    Backend: %s%s\n", e.sess.BaseURL, envNote(config.EnvAPIURL))
	fmt.Println()

	fmt.Println("  [Session]")
	if e.sess.LoggedIn() {
		fmt.Printf("    User:  %s (id %d)%s\n", orDash(e.sess.UserName), e.sess.UserID, envNote(config.EnvUserID))
		if e.sess.Email != "" {
			fmt.Printf("    Email: %s\n", e.sess.Email)
		}
		fmt.Printf("    Token: %s%s\n", maskToken(e.sess.Token), envNote(config.EnvToken))
	} else {
		fmt.Println("    Not logged in")
	}
	fmt.Println()

	fmt.Println("  [OAuth]")
	fmt.Printf("    Kakao client:  %s%s\n", configured(cfg.OAuth.KakaoClientID, config.EnvKakaoClientID), envNote(config.EnvKakaoClientID))
	fmt.Printf("    Google client: %s%s\n", configured(cfg.OAuth.GoogleClientID, config.EnvGoogleClient), envNote(config.EnvGoogleClient))
	fmt.Printf("    Callback port: %d\n", cfg.OAuth.CallbackPort)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  [TUI]")
	fmt.Printf("    Auto refresh: %v (every %ds)\n", cfg.TUI.AutoRefresh, cfg.TUI.RefreshIntervalSec)
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Listen:    %s\n", cfg.Daemon.Addr)
	fmt.Printf("    Interval:  %ds\n", cfg.Daemon.IntervalSec)
	fmt.Printf("    Log level: %s\n", cfg.Daemon.LogLevel)
	fmt.Println()

	fmt.Println("  Run `gagyelog setup` to reconfigure.")
	return nil
}

// maskToken shows only the ends of a secret.
func maskToken(tok string) string {
	if len(tok) <= 12 {
		return "****"
	}
	return tok[:6] + "..." + tok[len(tok)-4:]
}

func envNote(name string) string {
	if os.Getenv(name) != "" {
		return "  (from " + name + ")"
	}
	return ""
}

func configured(fileValue, envName string) string {
	if fileValue != "" || os.Getenv(envName) != "" {
		return "configured"
	}
	return "not configured"
}

func cacheStatus(cfg config.Config) string {
	if flagNoCache || cfg.General.NoCache {
		return "disabled"
	}
	return pipeline.CachePath()
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
