package cli

import (
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sandeepkv93/todosync/internal/config"
	"github.com/sandeepkv93/todosync/internal/logging"
	"github.com/spf13/cobra"
)

type App struct {
	ConfigPath string
	BaseURL    string
	Timeout    time.Duration
	LogFile    string
	LogLevel   string

	cfg config.RuntimeConfig
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:           "todosync",
		Short:         "To-do list client for a remote task collection",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI
  todosync

  # Scriptable commands
  todosync ls --group
  todosync add buy milk
  todosync done 1

  # Local backend for trying things out
  todosync fake-server --addr localhost:8000 --db todos.db
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		return app.load(cmd)
	}

	cmd.PersistentFlags().StringVar(&app.ConfigPath, "config", envOr("TODOSYNC_CONFIG", ""), "YAML config file")
	cmd.PersistentFlags().StringVar(&app.BaseURL, "base-url", "", "Collection server base URL (overrides config and env)")
	cmd.PersistentFlags().DurationVar(&app.Timeout, "timeout", 0, "Per-request timeout, 0 for transport defaults")
	cmd.PersistentFlags().StringVar(&app.LogFile, "log-file", "", "Log file path, empty to disable")
	cmd.PersistentFlags().StringVar(&app.LogLevel, "log-level", "", "Log level (debug|info|warn|error)")

	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newAddCmd(app))
	cmd.AddCommand(newEditCmd(app))
	cmd.AddCommand(newDoneCmd(app))
	cmd.AddCommand(newRemoveCmd(app))
	cmd.AddCommand(newFakeServerCmd(app))

	return cmd
}

// Execute runs the root command and reports a failure on stderr. It
// returns the process exit code.
func Execute() int {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fail(cmd.ErrOrStderr(), err.Error())
		return 1
	}
	return 0
}

// load resolves configuration: defaults, then the YAML file, then
// TODOSYNC_* env, then flags the user actually set.
func (app *App) load(cmd *cobra.Command) error {
	cfg, err := config.LoadFile(app.ConfigPath, config.DefaultRuntimeConfig())
	if err != nil {
		return err
	}
	cfg = config.RuntimeConfigFromEnv(cfg)

	flags := cmd.Flags()
	if flags.Changed("base-url") {
		cfg.BaseURL = app.BaseURL
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = app.Timeout
	}
	if flags.Changed("log-file") {
		cfg.LogFile = app.LogFile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = app.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	app.cfg = cfg
	return nil
}

// stderrLogger is the logger of every command except the TUI, which logs
// to cfg.LogFile instead.
func (app *App) stderrLogger(cmd *cobra.Command) (*slog.Logger, error) {
	return logging.Stderr(cmd.ErrOrStderr(), app.cfg)
}

func envOr(name, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return fallback
}
