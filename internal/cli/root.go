// Package cli provides the stk command-line interface.
package cli

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/stockpile/pkg/api"
	"github.com/vanderheijden86/stockpile/pkg/config"
	"github.com/vanderheijden86/stockpile/pkg/debug"
	"github.com/vanderheijden86/stockpile/pkg/metrics"
	"github.com/vanderheijden86/stockpile/pkg/session"
	"github.com/vanderheijden86/stockpile/pkg/version"
)

// app is the state shared by every subcommand. It is filled in by the root
// command's PersistentPreRunE.
type app struct {
	cfgFile     string
	timings     bool
	sessionPath string
	httpClient  *http.Client
	stdin       io.Reader
	interactive func() bool

	cfg     config.Config
	session *session.Store
}

// Option customises the root command. Tests use it to point stk at a fake
// backend and a temporary session file.
type Option func(*app)

// WithHTTPClient sets the HTTP client used for backend calls.
func WithHTTPClient(hc *http.Client) Option {
	return func(a *app) { a.httpClient = hc }
}

// WithSessionPath overrides the session file location.
func WithSessionPath(path string) Option {
	return func(a *app) { a.sessionPath = path }
}

// WithStdin sets where --password-stdin reads from.
func WithStdin(r io.Reader) Option {
	return func(a *app) { a.stdin = r }
}

func withInteractive(fn func() bool) Option {
	return func(a *app) { a.interactive = fn }
}

// NewRootCmd creates the stk root command. Without a subcommand it runs the
// dashboard.
func NewRootCmd(opts ...Option) *cobra.Command {
	a := &app{
		stdin:       os.Stdin,
		interactive: isTerminal,
	}
	for _, opt := range opts {
		opt(a)
	}

	rootCmd := &cobra.Command{
		Use:   "stk",
		Short: "stk - home inventory in the terminal",
		Long: `stk is a terminal client for a home inventory backend.

Run it without arguments to open the dashboard, or use the subcommands
to script against the same backend.`,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "version" {
				return nil
			}
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if a.timings {
				printTimings(cmd.ErrOrStderr(), metrics.AllTimingStats())
			}
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDashboard(cmd, a)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default: $XDG_CONFIG_HOME/stockpile/config.yaml)")
	pf.String("server", "", "backend base URL, e.g. http://localhost:7745/api")
	pf.Duration("timeout", 0, "per-request timeout")
	pf.String("view", "", "dashboard start page (inventory|locations|labels)")
	pf.BoolVar(&a.timings, "timings", false, "print backend request timings to stderr on exit")

	_ = rootCmd.RegisterFlagCompletionFunc("view", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.ViewInventory, config.ViewLocations, config.ViewLabels}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(newLoginCommand(a))
	rootCmd.AddCommand(newRegisterCommand(a))
	rootCmd.AddCommand(newLogoutCommand(a))
	rootCmd.AddCommand(newWhoamiCommand(a))
	rootCmd.AddCommand(newTreeCommand(a))
	rootCmd.AddCommand(newItemsCommand(a))
	rootCmd.AddCommand(newItemCommand(a))
	rootCmd.AddCommand(newLocationCommand(a))
	rootCmd.AddCommand(newLabelsCommand(a))
	rootCmd.AddCommand(newExportCommand(a))
	rootCmd.AddCommand(newConfigCommand(a))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// setup loads configuration and the stored session.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.cfgFile, cmd.Root().PersistentFlags())
	if err != nil {
		return err
	}
	a.cfg = cfg

	path := a.sessionPath
	if path == "" {
		path = session.DefaultPath()
	}
	a.session = session.NewStore(path)
	if err := a.session.Load(); err != nil {
		// A corrupt session is the same as no session.
		debug.Log("cli: %v", err)
	}
	return nil
}

// client returns a backend client authenticated with the stored session.
func (a *app) client(opts ...api.Option) (*api.Client, error) {
	base := []api.Option{
		api.WithTimeout(a.cfg.Server.Timeout),
		api.WithCredentials(a.session),
	}
	if a.httpClient != nil {
		base = append(base, api.WithHTTPClient(a.httpClient))
	}
	return api.NewClient(a.cfg.Server.URL, append(base, opts...)...)
}

// requireSession fails early when no usable session is stored.
func (a *app) requireSession() error {
	if !a.session.IsAuthenticated() {
		return errNotSignedIn
	}
	return nil
}
