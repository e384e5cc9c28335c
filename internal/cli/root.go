// Package cli implements the campus command line client.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"campus/internal/cli/output"
	"campus/internal/client/api"
	"campus/internal/client/guard"
	"campus/internal/client/session"
	"campus/internal/client/tasks"
	"campus/internal/client/tokenstore"
)

var version = "dev"

// SetVersion sets the version string reported by `campus version`.
func SetVersion(v string) {
	version = v
}

// app carries the state shared by every subcommand of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	verbose bool

	cfg     *Config
	logger  *slog.Logger
	printer *output.Printer
	http    *api.HTTPClient
	manager *session.Manager
	guard   *guard.Guard
	nav     *guard.Navigator
	tasks   *tasks.Client

	// mock is kept so mock-mode commands can print the mailed code.
	mock *api.Mock
}

// NewRootCommand builds the command tree. Each call returns an independent
// tree, so tests can run commands side by side.
func NewRootCommand() *cobra.Command {
	a := &app{v: viper.New()}

	root := &cobra.Command{
		Use:   "campus",
		Short: "School portal command line client",
		Long: `campus signs in to the school portal and manages your tasks.

Example usage:
  campus login jane@example.com --password password456
  campus whoami
  campus tasks add "Grade essays"
  campus tasks list
  campus logout`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.manager != nil {
				a.manager.Close()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is .campus.yaml)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")
	flags.String("api", "", "portal API base URL")
	flags.String("token-file", "", "where the session token is kept")
	flags.Bool("mock", false, "use the built-in demo backend instead of the API")
	flags.Bool("no-color", false, "disable colored output")

	_ = a.v.BindPFlag("api.url", flags.Lookup("api"))
	_ = a.v.BindPFlag("token.file", flags.Lookup("token-file"))
	_ = a.v.BindPFlag("mock", flags.Lookup("mock"))

	root.AddCommand(
		newLoginCommand(a),
		newRegisterCommand(a),
		newForgotPasswordCommand(a),
		newVerifyCodeCommand(a),
		newResetPasswordCommand(a),
		newLogoutCommand(a),
		newWhoamiCommand(a),
		newTasksCommand(a),
		newDashboardCommand(a),
		newVersionCommand(),
	)
	return root
}

// Execute runs the CLI with the given arguments and streams.
func Execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := NewRootCommand()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

func (a *app) init(cmd *cobra.Command) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := LoadConfig(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := parseLevel(cfg.Logging.Level)
	if a.verbose {
		level = slog.LevelDebug
	}
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	noColor, _ := cmd.Flags().GetBool("no-color")
	a.printer = output.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr(), !noColor && output.ResolveColors(cfg.Output.Colors))

	var authAPI session.AuthAPI
	if cfg.Mock {
		a.mock = api.NewMock()
		authAPI = a.mock
	} else {
		a.http = api.NewHTTPClient(strings.TrimRight(cfg.API.URL, "/"), api.WithTimeout(cfg.API.Timeout))
		authAPI = a.http
	}

	a.manager = session.New(authAPI, tokenstore.NewFile(cfg.Token.File), session.WithLogger(a.logger))
	a.guard = guard.New(a.manager,
		guard.WithLogger(a.logger),
		guard.WithPublicRoutes("/login", "/register", "/forgot-password", "/verify-code", "/reset-password"),
	)
	a.nav = guard.NewNavigator(a.guard)
	if a.http != nil {
		a.tasks = tasks.New(a.http, a.manager, tasks.WithLogger(a.logger))
	}

	a.logger.Debug("configuration loaded",
		"api", cfg.API.URL,
		"mock", cfg.Mock,
		"token_file", cfg.Token.File,
	)
	return nil
}

// requireServer fails commands that need the real API.
func (a *app) requireServer() error {
	if a.http == nil {
		return fmt.Errorf("this command needs the portal API; drop --mock")
	}
	return nil
}

// enter navigates to route through the guard and returns the session the
// command runs as.
func (a *app) enter(route string) (*session.Session, error) {
	if _, d := a.nav.Navigate(route); !d.Allowed {
		return nil, fmt.Errorf("not signed in; %s redirects to %s, run `campus login` first", route, d.Redirect)
	}
	s := a.manager.Current()
	if s == nil {
		return nil, fmt.Errorf("not signed in; run `campus login` first")
	}
	return s, nil
}

// report prints a failed result and turns it into the command error.
func (a *app) report(res session.Result) error {
	if res.OK() {
		return nil
	}
	return fmt.Errorf("%s", res.Err.Message())
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
