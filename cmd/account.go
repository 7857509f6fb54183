package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gagyelog/gagyelog/internal/backend"
	"github.com/gagyelog/gagyelog/internal/config"
	"github.com/gagyelog/gagyelog/internal/model"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagAccountName        string
	flagAccountEmail       string
	flagAccountPassword    string
	flagAccountCode        string
	flagAccountNewPassword string
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Sign up, recover an account, or edit your profile",
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a new account",
	RunE:  runSignup,
}

var findIDCmd = &cobra.Command{
	Use:   "find-id [NAME]",
	Short: "Look up the email registered under a name",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runFindID,
}

var resetPasswordCmd = &cobra.Command{
	Use:   "reset-password",
	Short: "Reset a forgotten password with a mailed code",
	Long:  "Mail a reset code to the account email, verify it, then choose a new\npassword. Pass --code to skip sending a new code.",
	RunE:  runResetPassword,
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the logged-in profile",
	RunE:  runProfile,
}

var profileEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Change your name or password",
	RunE:  runProfileEdit,
}

func init() {
	signupCmd.Flags().StringVarP(&flagAccountName, "name", "n", "", "Display name")
	signupCmd.Flags().StringVarP(&flagAccountEmail, "email", "e", "", "Account email")
	signupCmd.Flags().StringVarP(&flagAccountPassword, "password", "p", "", "Password (prompted when omitted)")

	resetPasswordCmd.Flags().StringVarP(&flagAccountEmail, "email", "e", "", "Account email")
	resetPasswordCmd.Flags().StringVar(&flagAccountCode, "code", "", "Reset code already received by mail")
	resetPasswordCmd.Flags().StringVar(&flagAccountNewPassword, "new-password", "", "New password (prompted when omitted)")

	profileEditCmd.Flags().StringVarP(&flagAccountName, "name", "n", "", "New display name")
	profileEditCmd.Flags().StringVarP(&flagAccountPassword, "password", "p", "", "Current password (prompted when omitted)")
	profileEditCmd.Flags().StringVar(&flagAccountNewPassword, "new-password", "", "New password; empty keeps the current one")

	profileCmd.AddCommand(profileEditCmd)
	accountCmd.AddCommand(signupCmd, findIDCmd, resetPasswordCmd, profileCmd)
	rootCmd.AddCommand(accountCmd)
}

func runSignup(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	s := model.Signup{
		UserName: strings.TrimSpace(flagAccountName),
		Email:    strings.TrimSpace(flagAccountEmail),
		Password: flagAccountPassword,
		Confirm:  flagAccountPassword,
	}
	if (s.UserName == "" || s.Email == "" || s.Password == "") && interactive() {
		s.Confirm = ""
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Name").Value(&s.UserName).Validate(requiredField("name")),
			huh.NewInput().Title("Email").Value(&s.Email).Validate(requiredField("email")),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&s.Password).Validate(requiredField("password")),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&s.Confirm),
		))
		if ok, err := runForm(form); !ok {
			return err
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	if err := e.client.Signup(ctx, e.sess, s); err != nil {
		return err
	}
	fmt.Printf("  Account created for %s\n", strings.TrimSpace(s.Email))
	fmt.Println("  Next: `gagyelog login`")
	return nil
}

func runFindID(cmd *cobra.Command, args []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	name := ""
	if len(args) == 1 {
		name = strings.TrimSpace(args[0])
	}
	if name == "" && interactive() {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Name used at signup").Value(&name).Validate(requiredField("name")),
		))
		if ok, err := runForm(form); !ok {
			return err
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	emails, err := e.client.FindID(ctx, e.sess, name)
	if errors.Is(err, backend.ErrNoAccount) {
		fmt.Printf("  No account is registered under %q.\n", name)
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Printf("  Accounts registered under %q:\n", name)
	for _, email := range emails {
		fmt.Printf("    %s\n", email)
	}
	return nil
}

func runResetPassword(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}

	r := model.PasswordReset{
		Email:       strings.TrimSpace(flagAccountEmail),
		Code:        strings.TrimSpace(flagAccountCode),
		NewPassword: flagAccountNewPassword,
		Confirm:     flagAccountNewPassword,
	}
	if r.Email == "" {
		r.Email = e.sess.Email
	}
	if r.Email == "" && interactive() {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Account email").Value(&r.Email).Validate(requiredField("email")),
		))
		if ok, err := runForm(form); !ok {
			return err
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	if r.Code == "" {
		msg, err := e.client.SendResetCode(ctx, e.sess, r.Email)
		if err != nil {
			return err
		}
		fmt.Printf("  %s\n", orDefault(msg, "Reset code sent to "+r.Email))
		if !interactive() {
			fmt.Println("  Rerun with --code CODE once it arrives.")
			return nil
		}
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Reset code").Value(&r.Code).Validate(requiredField("code")),
		))
		if ok, err := runForm(form); !ok {
			return err
		}
	}

	if err := e.client.VerifyResetCode(ctx, e.sess, r.Email, r.Code); err != nil {
		return err
	}

	if r.NewPassword == "" && interactive() {
		r.Confirm = ""
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&r.NewPassword).Validate(requiredField("new password")),
			huh.NewInput().Title("Confirm new password").EchoMode(huh.EchoModePassword).Value(&r.Confirm),
		))
		if ok, err := runForm(form); !ok {
			return err
		}
	}

	msg, err := e.client.ResetPassword(ctx, e.sess, r)
	if err != nil {
		return err
	}
	fmt.Printf("  %s\n", orDefault(msg, "Password changed."))
	return nil
}

func runProfile(_ *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(profileSummary(e.sess))
	return nil
}

func profileSummary(sess model.Session) string {
	var b strings.Builder
	fmt.Fprintf(&b, "  Name:     %s\n", orDash(sess.UserName))
	fmt.Fprintf(&b, "  Email:    %s\n", orDash(sess.Email))
	fmt.Fprintf(&b, "  User ID:  %d\n", sess.UserID)
	fmt.Fprintf(&b, "  Backend:  %s\n", orDash(sess.BaseURL))
	return b.String()
}

func runProfileEdit(cmd *cobra.Command, _ []string) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if err := e.requireLogin(); err != nil {
		return err
	}

	p := model.ProfileUpdate{
		UserName:        strings.TrimSpace(flagAccountName),
		CurrentPassword: flagAccountPassword,
		NewPassword:     flagAccountNewPassword,
	}
	if p.UserName == "" {
		p.UserName = e.sess.UserName
	}
	if p.CurrentPassword == "" && interactive() {
		form := huh.NewForm(huh.NewGroup(
			huh.NewInput().Title("Name").Value(&p.UserName).Validate(requiredField("name")),
			huh.NewInput().Title("New password").Description("Leave blank to keep the current one").
				EchoMode(huh.EchoModePassword).Value(&p.NewPassword),
			huh.NewInput().Title("Current password").EchoMode(huh.EchoModePassword).Value(&p.CurrentPassword).Validate(requiredField("current password")),
		))
		if ok, err := runForm(form); !ok {
			return err
		}
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()
	sess, err := e.client.UpdateProfile(ctx, e.sess, p)
	if err != nil {
		return err
	}

	cfg := e.cfg
	config.SetSession(&cfg, sess)
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	fmt.Println("  Profile updated.")
	if p.NewPassword != "" {
		fmt.Println("  Password changed.")
	}
	return nil
}

// runForm runs a form, reporting false when the user cancelled or it failed.
func runForm(form *huh.Form) (bool, error) {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Cancelled.")
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
