package cli

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todosync/internal/logging"
	"github.com/sandeepkv93/todosync/internal/update"
	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive list and form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app)
		},
	}
}

func runTUI(cmd *cobra.Command, app *App) (err error) {
	logger, closeLog, err := logging.Open(app.cfg)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer func() {
		if closeErr := closeLog(); err == nil {
			err = closeErr
		}
	}()

	ctrl, err := buildController(cmd, app, logger)
	if err != nil {
		return err
	}
	logger.Info("starting tui", "base_url", app.cfg.BaseURL)
	p := tea.NewProgram(update.NewModelWithConfig(ctrl, app.cfg), tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}
