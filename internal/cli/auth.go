package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"campus/internal/client/session"
)

// readSecret returns the flag value, or the first line of stdin when the flag
// is empty.
func readSecret(cmd *cobra.Command, flag string) (string, error) {
	value, _ := cmd.Flags().GetString(flag)
	if value != "" {
		return value, nil
	}
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading %s: %w", flag, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newLoginCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login <email>",
		Short: "Sign in and keep the session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readSecret(cmd, "password")
			if err != nil {
				return err
			}
			a.nav.Navigate("/login")
			res := a.manager.Login(cmd.Context(), args[0], password)
			if err := a.report(res); err != nil {
				return err
			}
			a.printer.Success("Signed in as %s", res.Session.DisplayName)
			landing, _ := a.nav.AfterLogin(res.Session)
			a.printer.Print("Landing page: %s", landing)
			return nil
		},
	}
	cmd.Flags().StringP("password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func newRegisterCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <name> <email>",
		Short: "Create an account",
		Long: `Create an account. The name is split at its first space into first and
last name. Unless the portal signs you in directly, a verification code is
mailed to the address; confirm it with 'campus verify-code'.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readSecret(cmd, "password")
			if err != nil {
				return err
			}
			res := a.manager.Register(cmd.Context(), args[0], args[1], password)
			if err := a.report(res); err != nil {
				return err
			}
			if res.Session != nil {
				a.printer.Success("Registered and signed in as %s", res.Session.DisplayName)
				return nil
			}
			a.printer.Success("Registered. Check your email for the verification code.")
			a.printMockCode(args[1], session.PurposeRegistration)
			return nil
		},
	}
	cmd.Flags().StringP("password", "p", "", "password (read from stdin when omitted)")
	return cmd
}

func newForgotPasswordCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "forgot-password <email>",
		Short: "Mail a password reset code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.report(a.manager.RequestPasswordReset(cmd.Context(), args[0])); err != nil {
				return err
			}
			a.printer.Success("A reset code is on its way to %s", args[0])
			a.printMockCode(args[0], session.PurposePasswordReset)
			return nil
		},
	}
}

func newVerifyCodeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify-code <email> <code>",
		Short: "Confirm a mailed verification code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if reset, _ := cmd.Flags().GetBool("reset"); reset {
				a.manager.Expect(args[0], session.PurposePasswordReset)
			}
			if err := a.report(a.manager.VerifyCode(cmd.Context(), args[0], args[1])); err != nil {
				return err
			}
			a.printer.Success("Code verified")
			return nil
		},
	}
	cmd.Flags().Bool("reset", false, "the code is a password reset code")
	return cmd
}

func newResetPasswordCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset-password <email> <code>",
		Short: "Verify a reset code and set a new password",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readSecret(cmd, "password")
			if err != nil {
				return err
			}
			a.manager.Expect(args[0], session.PurposePasswordReset)
			if err := a.report(a.manager.VerifyCode(cmd.Context(), args[0], args[1])); err != nil {
				return err
			}
			if err := a.report(a.manager.ResetPassword(cmd.Context(), args[0], password)); err != nil {
				return err
			}
			a.printer.Success("Password changed. Sign in with the new password.")
			return nil
		},
	}
	cmd.Flags().StringP("password", "p", "", "new password (read from stdin when omitted)")
	return cmd
}

func newLogoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a.manager.Logout(cmd.Context())
			a.printer.Success("Signed out")
			return nil
		},
	}
}

func newWhoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			s, err := a.enter("/whoami")
			if err != nil {
				return err
			}
			t := a.newTable("FIELD", "VALUE")
			t.AddRow("name", s.DisplayName)
			t.AddRow("email", s.Email)
			t.AddRow("role", s.Role)
			t.AddRow("user id", s.UserID)
			if !s.ExpiresAt.IsZero() {
				t.AddRow("expires", s.ExpiresAt.Local().Format("2006-01-02 15:04"))
			}
			return t.Render()
		},
	}
}

// printMockCode shows the code the demo backend "mailed", since there is no inbox.
func (a *app) printMockCode(addr string, purpose session.Purpose) {
	if a.mock == nil {
		return
	}
	if code, ok := a.mock.LastCode(strings.ToLower(strings.TrimSpace(addr)), purpose); ok {
		a.printer.Info("Demo backend code: %s", code)
	}
}
