package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bangunx/ghup"
	"github.com/bangunx/ghup/config"
	gherrors "github.com/bangunx/ghup/errors"
	"github.com/bangunx/ghup/git"
	"github.com/bangunx/ghup/probe"
)

// Options holds CLI-level configuration. Zero values select the real
// process streams and runners.
type Options struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	GitRunner git.CommandRunner
	SSHRunner probe.SSHRunner
}

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configFile   string
	sshConfig    string
	profilesFile string
	verbose      bool
	logJSON      bool
	logFile      string
	noColor      bool
}

// app is the state shared by the commands of one invocation.
type app struct {
	opts   Options
	flags  globalFlags
	styles styles
	close  func()
}

// NewRootCmd wires the cobra root command.
func NewRootCmd(opts Options) *cobra.Command {
	root, _ := newRoot(opts)
	return root
}

func newRoot(opts Options) (*cobra.Command, *app) {
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	a := &app{opts: opts, close: func() {}}

	root := &cobra.Command{
		Use:   "ghup",
		Short: "Switch git identities between GitHub accounts",
		Long: `ghup keeps several GitHub accounts on one machine apart.

Each profile carries a git identity and, optionally, its own SSH key routed
through a Host alias in ~/.ssh/config. Switching applies a profile to the
current repository, or globally with --global.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	root.SetIn(opts.Stdin)
	root.SetOut(opts.Stdout)
	root.SetErr(opts.Stderr)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", gherrors.ErrUsage, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configFile, "config", "", "settings file (default ~/.config/ghup/config.yaml)")
	pf.StringVar(&a.flags.sshConfig, "ssh-config", "", "SSH client config to edit (default ~/.ssh/config)")
	pf.StringVar(&a.flags.profilesFile, "profiles", "", "profile file (default ~/.config/ghup/accounts.yaml)")
	pf.BoolVarP(&a.flags.verbose, "verbose", "v", false, "debug logging on stderr (env: GHUP_VERBOSE)")
	pf.BoolVar(&a.flags.logJSON, "log-json", false, "log in JSON format")
	pf.StringVar(&a.flags.logFile, "log-file", "", "also write debug logs as JSON to this file")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output (env: NO_COLOR)")

	root.AddCommand(
		a.newListCmd(),
		a.newAddCmd(),
		a.newEditCmd(),
		a.newRemoveCmd(),
		a.newSwitchCmd(),
		a.newCurrentCmd(),
		a.newPinCmd(),
		a.newKeyCmd(),
		a.newTestCmd(),
		a.newConfigCmd(),
		newVersionCmd(),
	)
	return root, a
}

// setup builds the logger and services for the command about to run and
// stores the services in the command context.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	flagValues := map[string]string{
		config.KeySSHConfig:    a.flags.sshConfig,
		config.KeyProfilesFile: a.flags.profilesFile,
	}
	if a.flags.verbose {
		flagValues[config.KeyVerbose] = "true"
	}
	if a.flags.noColor {
		flagValues[config.KeyNoColor] = "true"
	}

	// Settings are resolved once quietly to learn the log level, then again
	// through the real logger so file warnings are reported.
	quiet := slog.New(slog.NewTextHandler(io.Discard, nil))
	pre, err := config.Parse(config.NewAppResolver(a.flags.configFile, quiet).ResolveWithFlags(flagValues))
	if err != nil {
		return fmt.Errorf("%w: %v", gherrors.ErrUsage, err)
	}

	logger, closeLog, err := newLogger(logOptions{
		Verbose: pre.Verbose,
		JSON:    a.flags.logJSON,
		File:    a.flags.logFile,
		Stderr:  a.opts.Stderr,
	})
	if err != nil {
		return err
	}
	a.close = closeLog

	svc, err := ghup.NewServices(ghup.Config{
		ConfigFile: a.flags.configFile,
		Flags:      flagValues,
		Logger:     logger,
		GitRunner:  a.opts.GitRunner,
		SSHRunner:  a.opts.SSHRunner,
	})
	if err != nil {
		closeLog()
		return fmt.Errorf("%w: %v", gherrors.ErrUsage, err)
	}

	a.styles = newStyles(cmd.OutOrStdout(), svc.Settings.NoColor)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(ghup.WithServices(ctx, svc))
	return nil
}

// Execute runs ghup with args and returns the process exit code. Errors
// are rendered on stderr.
func Execute(ctx context.Context, args []string, opts Options) int {
	root, a := newRoot(opts)
	root.SetArgs(args)
	defer func() { a.close() }()

	err := root.ExecuteContext(ctx)
	if err == nil {
		return gherrors.ExitOK
	}
	if strings.HasPrefix(err.Error(), "unknown command") {
		err = fmt.Errorf("%w: %v", gherrors.ErrUsage, err)
	}

	out := root.ErrOrStderr()
	st := newStyles(out, noColorRequested(args))
	st.renderError(out, gherrors.Describe(err))
	return gherrors.ExitCode(err)
}

func noColorRequested(args []string) bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return true
	}
	for _, arg := range args {
		if arg == "--no-color" {
			return true
		}
	}
	return false
}
