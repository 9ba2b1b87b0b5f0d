package cli

import (
	"errors"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todosync/internal/api"
	"github.com/sandeepkv93/todosync/internal/commands"
	"github.com/sandeepkv93/todosync/internal/controller"
	"github.com/sandeepkv93/todosync/internal/model"
	"github.com/spf13/cobra"
)

// newController builds a controller for a headless command, logging to
// stderr.
func newController(cmd *cobra.Command, app *App) (*controller.Controller, error) {
	logger, err := app.stderrLogger(cmd)
	if err != nil {
		return nil, err
	}
	return buildController(cmd, app, logger)
}

func buildController(cmd *cobra.Command, app *App, logger *slog.Logger) (*controller.Controller, error) {
	client, err := api.NewClient(api.Config{
		BaseURL: app.cfg.BaseURL,
		Timeout: app.cfg.RequestTimeout,
		Logger:  logger,
	})
	if err != nil {
		return nil, err
	}
	return controller.New(client, controller.Options{
		Logger:              logger,
		Context:             cmd.Context(),
		DiscardStaleRefresh: app.cfg.DiscardStaleRefresh,
	}), nil
}

// settle runs cmd to completion and returns the failure it surfaced.
func settle(c *controller.Controller, cmd tea.Cmd) error {
	c.Settle(cmd)
	return c.LastError()
}

// loadItems refreshes c and returns the collection.
func loadItems(c *controller.Controller) ([]model.Item, error) {
	if err := settle(c, c.Refresh()); err != nil {
		return nil, fmt.Errorf("refresh: %w", err)
	}
	return c.Items(), nil
}

// staleListError reports a change the server accepted whose follow-up
// refresh failed. Running the command again would repeat the change.
type staleListError struct {
	err error
}

func (e *staleListError) Error() string {
	return "change applied, but reloading the list failed: " + e.err.Error()
}

func (e *staleListError) Unwrap() error { return e.err }

// dispatchAll runs each command in order and waits for its remote effect
// before the next one.
func dispatchAll(c *controller.Controller, cmds ...commands.Command) (commands.Result, error) {
	var last commands.Result
	for _, cmd := range cmds {
		res, err := c.Dispatch(cmd)
		if err != nil {
			return res, err
		}
		if err := settleChange(c, res.Cmd); err != nil {
			return res, err
		}
		last = res
	}
	return last, nil
}

// settleChange runs cmd and its follow-ups. The first message is the
// outcome of the change itself; a failure after it comes from the refresh
// and is returned as a *staleListError.
func settleChange(c *controller.Controller, cmd tea.Cmd) error {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	follow := c.Apply(msg)
	switch typed := msg.(type) {
	case controller.SubmitFailedMsg:
		return typed.Err
	case controller.DeleteFailedMsg:
		return typed.Err
	case controller.RefreshFailedMsg:
		return typed.Err
	}
	if err := settle(c, follow); err != nil {
		return &staleListError{err: err}
	}
	return nil
}

// report prints msg for a change that went through. A stale list after it
// is a warning, not a failure.
func report(cmd *cobra.Command, op, msg string, err error) error {
	var stale *staleListError
	switch {
	case err == nil:
	case errors.As(err, &stale):
		warn(cmd.ErrOrStderr(), stale.Error())
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
	ok(cmd.OutOrStdout(), msg)
	return nil
}

func resolveItem(c *controller.Controller, raw string) (model.Item, error) {
	items, err := loadItems(c)
	if err != nil {
		return model.Item{}, err
	}
	return commands.ResolveIndex(items, raw)
}
