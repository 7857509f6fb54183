package cmd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gagyelog/gagyelog/internal/backend"
	"github.com/gagyelog/gagyelog/internal/config"
	"github.com/gagyelog/gagyelog/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var (
	flagLoginEmail    string
	flagLoginPassword string
	flagOAuthCode     string
	flagOAuthTimeout  time.Duration
	flagLogoutKeep    bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with email and password",
	RunE:  runLogin,
}

var loginOAuthCmd = &cobra.Command{
	Use:       "oauth kakao|google",
	Short:     "Log in with Kakao or Google",
	Long:      "Open the provider's consent page, then finish the login from the local\ncallback. Pass --code to finish with a code obtained elsewhere.",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(backend.ProviderKakao), string(backend.ProviderGoogle)},
	RunE:      runLoginOAuth,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session and its cached ledger",
	RunE:  runLogout,
}

func init() {
	loginCmd.Flags().StringVarP(&flagLoginEmail, "email", "e", "", "Account email")
	loginCmd.Flags().StringVarP(&flagLoginPassword, "password", "p", "", "Account password (prompted when omitted)")
	loginOAuthCmd.Flags().StringVar(&flagOAuthCode, "code", "", "Authorization code from the provider")
	loginOAuthCmd.Flags().DurationVar(&flagOAuthTimeout, "timeout", 5*time.Minute, "How long to wait for the browser callback")
	logoutCmd.Flags().BoolVar(&flagLogoutKeep, "keep-cache", false, "Keep the cached ledger")

	loginCmd.AddCommand(loginOAuthCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd)
}

func runLogin(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	email := strings.TrimSpace(flagLoginEmail)
	password := flagLoginPassword
	if email == "" {
		email = e.cfg.Session.Email
	}
	if (email == "" || password == "") && interactive() {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Email").Value(&email).Validate(requiredField("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&password).Validate(requiredField("password")),
		))
		if err := form.Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Println("  Cancelled.")
				return nil
			}
			return err
		}
	}
	email = strings.TrimSpace(email)
	var missing []string
	if email == "" {
		missing = append(missing, "email")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return &model.ValidationError{Fields: missing}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	sess, err := e.client.Login(ctx, e.sess, email, password)
	if err != nil {
		return err
	}
	if sess.Email == "" {
		sess.Email = email
	}
	return saveSession(e, sess)
}

func runLoginOAuth(cmd *cobra.Command, args []string) error {
	provider := backend.Provider(strings.ToLower(strings.TrimSpace(args[0])))
	if provider.LoginType() == "" {
		return &model.ValidationError{Fields: []string{"provider"}, Reason: fmt.Sprintf("unknown provider %q (want kakao or google)", args[0])}
	}
	e, err := loadEnv()
	if err != nil {
		return err
	}

	code := strings.TrimSpace(flagOAuthCode)
	if code == "" {
		state := uuid.NewString()
		authURL, err := config.AuthorizeURL(e.cfg, string(provider), state)
		if err != nil {
			return err
		}
		fmt.Printf("  Open this URL to log in with %s:\n\n  %s\n\n", provider, authURL)
		fmt.Printf("  Waiting for the callback on %s ...\n", config.CallbackURL(e.cfg, string(provider)))

		waitCtx, cancel := context.WithTimeout(cmd.Context(), flagOAuthTimeout)
		code, err = waitForOAuthCode(waitCtx, callbackAddr(e.cfg), "/oauth/"+string(provider)+"/callback", state)
		cancel()
		if err != nil {
			return err
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	res, err := e.client.OAuthLogin(ctx, e.sess, provider, code)
	if err != nil {
		return err
	}

	sess := res.Session
	if res.RequiresConsent {
		link := false
		if interactive() {
			err := huh.NewConfirm().
				Title("Link accounts?").
				Description(fmt.Sprintf("%s is already registered. Link your %s login to it?", res.Session.Email, provider)).
				Affirmative("Link").
				Negative("Cancel").
				Value(&link).
				Run()
			if err != nil && !errors.Is(err, huh.ErrUserAborted) {
				return err
			}
		}
		if !link {
			fmt.Println("  Not linked; nothing was saved.")
			return nil
		}
		if sess, err = e.client.ConfirmSocial(ctx, e.sess, res.Session.Email, res.LoginType); err != nil {
			return err
		}
	}
	return saveSession(e, sess)
}

func callbackAddr(cfg config.Config) string {
	port := cfg.OAuth.CallbackPort
	if port == 0 {
		port = config.DefaultConfig().OAuth.CallbackPort
	}
	return fmt.Sprintf("127.0.0.1:%d", port)
}

// waitForOAuthCode serves one redirect on addr and returns its code.
// A callback with the wrong state is rejected and waiting continues.
func waitForOAuthCode(ctx context.Context, addr, path, state string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", fmt.Errorf("listening for oauth callback: %w", err)
	}
	return serveOAuthCallback(ctx, ln, path, state)
}

func serveOAuthCallback(ctx context.Context, ln net.Listener, path, state string) (string, error) {
	type result struct {
		code string
		err  error
	}
	done := make(chan result, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		if errStr := q.Get("error"); errStr != "" {
			http.Error(w, "login failed: "+errStr, http.StatusBadRequest)
			select {
			case done <- result{err: fmt.Errorf("oauth provider returned %q", errStr)}:
			default:
			}
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}
		fmt.Fprintln(w, "Logged in. You may close this window and return to the terminal.")
		select {
		case done <- result{code: code}:
		default:
		}
	})

	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() { _ = srv.Serve(ln) }()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	select {
	case r := <-done:
		return r.code, r.err
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", errors.New("timed out waiting for the oauth callback")
		}
		return "", ctx.Err()
	}
}

func saveSession(e *env, sess model.Session) error {
	cfg := e.cfg
	config.SetSession(&cfg, sess)
	if strings.TrimSpace(flagAPIURL) != "" {
		cfg.API.BaseURL = e.sess.BaseURL
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	name := sess.UserName
	if name == "" {
		name = sess.Email
	}
	fmt.Printf("  Logged in as %s (user %d)\n", name, sess.UserID)
	fmt.Printf("  Session saved to %s\n", config.ConfigPath())
	return nil
}

func runLogout(_ *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	cfg := e.cfg
	userID := cfg.Session.UserID
	if cfg.Session.Token == "" && userID == 0 {
		fmt.Println("  Not logged in.")
		return nil
	}

	config.ClearSession(&cfg)
	if err := config.Save(cfg); err != nil {
		return err
	}

	if !flagLogoutKeep && userID > 0 {
		if cache := e.openExistingCache(); cache != nil {
			if err := cache.ClearUser(userID); err != nil {
				fmt.Printf("  Could not clear cached ledger: %v\n", err)
			}
			_ = cache.Close()
		}
	}
	fmt.Println("  Logged out.")
	return nil
}

func requiredField(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}
