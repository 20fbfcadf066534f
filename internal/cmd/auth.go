package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/rezai-admin/internal/auth"
	"github.com/felixgeelhaar/rezai-admin/internal/config"
	"github.com/felixgeelhaar/rezai-admin/internal/tui"
	"github.com/felixgeelhaar/rezai-admin/internal/ux"
	"github.com/felixgeelhaar/rezai-admin/internal/views"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the admin session",
	Long: `Manage the admin session.

The session is kept in ~/.rezai-admin/session.json and expires after 7 days.

Subcommands:
  login     Login with email and password
  logout    Logout and remove the session
  status    Show the current session

Examples:
  rezai-admin auth login --email admin@example.com
  rezai-admin auth status
  rezai-admin auth logout`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the admin API",
	Long: `Login with your admin email and password.

The password is prompted for when it is not given and stdin is a terminal.
It can also be read from REZAI_PASSWORD.

Examples:
  rezai-admin auth login --email admin@example.com
  REZAI_PASSWORD=secret rezai-admin auth login --email admin@example.com`,
	RunE: runAuthLogin,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout and remove the session",
	RunE:  runAuthLogout,
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session",
	RunE:  runAuthStatus,
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)

	authLoginCmd.Flags().String("email", "", "Email address")
	authLoginCmd.Flags().String("password", "", "Password (prompted when omitted)")

	rootCmd.AddCommand(authCmd)
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if password == "" {
		password = envPassword()
	}
	creds := auth.Credentials{Email: email, Password: password}

	if creds.Validate() != nil {
		if !tui.ShouldPrompt() {
			if email == "" {
				return MissingFlagError("email")
			}
			return MissingFlagError("password", "Or set REZAI_PASSWORD")
		}
		creds, err = tui.PromptCredentials(email)
		if err != nil {
			return err
		}
	}

	sess, err := a.Gateway.Login(cmd.Context(), creds)
	if err != nil {
		return err
	}

	return a.Print(sessionStatus(sess.User.Name, sess.User.Email, sess.User.Role, sess.ExpiresAt, ""))
}

func envPassword() string {
	return os.Getenv(config.EnvPrefix + "_PASSWORD")
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if _, ok := a.Gateway.CurrentUser(cmd.Context()); !ok {
		fmt.Fprintln(cmd.ErrOrStderr(), "Not logged in.")
		return nil
	}
	return a.Gateway.Logout(cmd.Context())
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	sess, err := a.Gateway.RequireSession(cmd.Context())
	if err != nil {
		return err
	}

	tokenExpiry := ""
	if claims, err := auth.TokenClaims(sess.Token); err == nil && !claims.ExpiresAt.IsZero() {
		tokenExpiry = views.FormatDate(claims.ExpiresAt)
		if claims.Expired(time.Now()) {
			tokenExpiry += " (expired)"
		}
	} else if err != nil {
		a.Logger.WithError(err).Debug("token claims unavailable")
	}

	return a.Print(sessionStatus(sess.User.Name, sess.User.Email, sess.User.Role, sess.ExpiresAt, tokenExpiry))
}

// statusData is the structured form of a session.
type statusData struct {
	Name             string    `json:"name" yaml:"name"`
	Email            string    `json:"email" yaml:"email"`
	Role             string    `json:"role" yaml:"role"`
	SessionExpiresAt time.Time `json:"sessionExpiresAt" yaml:"sessionExpiresAt"`
	TokenExpires     string    `json:"tokenExpires,omitempty" yaml:"tokenExpires,omitempty"`
}

func sessionStatus(name, email, role string, expires time.Time, tokenExpiry string) ux.Table {
	rows := [][]string{
		{"Name", name},
		{"Email", email},
		{"Role", role},
		{"Session expires", views.RelativeDate(expires)},
	}
	if tokenExpiry != "" {
		rows = append(rows, []string{"Token expires", tokenExpiry})
	}
	return ux.Table{
		Headers: []string{"Field", "Value"},
		Rows:    rows,
		Data: statusData{
			Name:             name,
			Email:            email,
			Role:             role,
			SessionExpiresAt: expires,
			TokenExpires:     tokenExpiry,
		},
	}
}
