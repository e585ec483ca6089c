// Package cli implements the hubcontacts command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/hubcontacts/internal/config"
	"github.com/mesh-intelligence/hubcontacts/internal/httpconn"
	"github.com/mesh-intelligence/hubcontacts/internal/logger"
	"github.com/mesh-intelligence/hubcontacts/internal/paths"
	"github.com/mesh-intelligence/hubcontacts/internal/sqlite"
	"github.com/mesh-intelligence/hubcontacts/pkg/contacts"
	"github.com/mesh-intelligence/hubcontacts/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// ConnFactory builds the Connection used by API commands.
type ConnFactory func(cfg types.Config, log *slog.Logger) (types.Connection, error)

func httpConnFactory(cfg types.Config, log *slog.Logger) (types.Connection, error) {
	return httpconn.New(cfg, httpconn.WithLogger(log))
}

// Option configures the root command.
type Option func(*app)

// WithConnFactory replaces the HTTP connection, for tests.
func WithConnFactory(f ConnFactory) Option {
	return func(a *app) {
		if f != nil {
			a.newConn = f
		}
	}
}

// app holds global flag values and state shared by subcommands.
type app struct {
	configDir string
	dataDir   string
	jsonMode  bool

	settings *config.Settings
	newConn  ConnFactory
	started  bool // set once argument and flag validation has passed
}

// NewRootCmd creates the top-level "hubcontacts" command with global flags
// and all subcommands registered.
func NewRootCmd(opts ...Option) *cobra.Command {
	_, root := newRoot(opts...)
	return root
}

func newRoot(opts ...Option) (*app, *cobra.Command) {
	a := &app{newConn: httpConnFactory}
	for _, opt := range opts {
		opt(a)
	}

	root := &cobra.Command{
		Use:   "hubcontacts",
		Short: "Work with HubSpot CRM contacts",
		Long: "hubcontacts looks up, creates, updates, merges, searches and archives\n" +
			"HubSpot CRM contacts, and keeps local snapshots of contact lists.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.load,
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return userError(err)
	})

	root.PersistentFlags().StringVar(&a.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "snapshot data directory (default: platform data dir)")
	root.PersistentFlags().BoolVar(&a.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(
		newVersionCmd(),
		newInitCmd(a),
		newGetCmd(a),
		newCreateCmd(a),
		newUpsertCmd(a),
		newUpdateCmd(a),
		newDeleteCmd(a),
		newMergeCmd(a),
		newSearchCmd(a),
		newListCmd(a),
		newExportCmd(a),
		newSnapshotsCmd(a),
	)
	return a, root
}

// Execute runs the root command against os.Args and exits with the
// resulting code.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// Run executes the CLI with args and returns the exit code. Errors are
// printed to stderr.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, opts ...Option) int {
	a, root := newRoot(opts...)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return exitSuccess
	}
	fmt.Fprintln(stderr, "Error:", err)
	if !a.started {
		// Unknown command, bad arguments or conflicting flags.
		return exitUserError
	}
	return exitCode(err)
}

// load checks flag groups, resolves the config directory, reads
// config.yaml and sets up logging. version needs none of the config.
func (a *app) load(cmd *cobra.Command, _ []string) error {
	a.started = true
	if err := cmd.ValidateRequiredFlags(); err != nil {
		return userError(err)
	}
	if err := cmd.ValidateFlagGroups(); err != nil {
		return userError(err)
	}
	if cmd.Name() == "version" {
		return nil
	}
	dir, err := paths.ResolveConfigDir(a.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	a.configDir = dir

	s, err := config.Load(dir)
	if err != nil {
		return userError(err)
	}
	a.settings = s
	logger.Init(cmd.ErrOrStderr(), s.LogLevel, s.LogFormat)
	cmd.SetContext(logger.WithContext(cmd.Context(),
		logger.L.With(slog.String("command", cmd.CommandPath()))))
	return nil
}

// service builds a contacts.Service over a fresh connection.
func (a *app) service(ctx context.Context) (*contacts.Service, error) {
	log := logger.FromContext(ctx)
	conn, err := a.newConn(a.settings.API, log)
	if err != nil {
		return nil, err
	}
	return contacts.NewService(conn, contacts.WithLogger(log)), nil
}

// openStore opens the snapshot store in the resolved data directory.
// The caller must Close it.
func (a *app) openStore() (*sqlite.Store, error) {
	dir, err := paths.ResolveDataDir(a.dataDir, a.settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	return sqlite.Open(dir)
}

// exitError carries an explicit exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// userError marks err as caused by the invocation rather than the system.
func userError(err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: exitUserError, err: err}
}

// userErrors are sentinels that map to exitUserError.
var userErrors = []error{
	types.ErrInvalidParams,
	types.ErrInvalidFilter,
	types.ErrMissingVID,
	types.ErrContactDestroyed,
	types.ErrUnsupportedLookup,
	types.ErrCredentialsMissing,
	types.ErrCredentialsAmbiguous,
	types.ErrRefreshIncomplete,
	types.ErrTimeoutInvalid,
	types.ErrRateLimitInvalid,
	types.ErrRateBurstInvalid,
	types.ErrSnapshotNotFound,
	errContactNotFound,
}

// exitCode maps err to a process exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return exitUserError
		}
	}
	if contacts.IsContactNotFound(err) {
		return exitUserError
	}
	return exitSysError
}
