// Package controller owns the local copy of the task collection and the
// draft bound to the item form, and keeps both in step with the remote
// collection resource.
//
// Remote operations return a tea.Cmd. The command performs the request off
// the event loop and yields one of the result messages in messages.go; the
// event loop hands that message back to Apply, which is the only place the
// collection changes. Nothing here needs a lock as long as the controller
// is driven from a single goroutine.
package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todosync/internal/commands"
	"github.com/sandeepkv93/todosync/internal/model"
)

var ErrNotPersisted = errors.New("controller: item has no identifier")

// Remote is the collection resource. *api.Client satisfies it.
type Remote interface {
	ListTasks(ctx context.Context) ([]model.Item, error)
	CreateTask(ctx context.Context, item model.Item) (model.Item, error)
	UpdateTask(ctx context.Context, id string, patch model.Patch) (model.Item, error)
	DeleteTask(ctx context.Context, id string) error
}

type Options struct {
	// Logger defaults to a discarding logger.
	Logger *slog.Logger

	// Context is the parent of every remote call. Defaults to
	// context.Background().
	Context context.Context

	// DiscardStaleRefresh drops a refresh result that is older than one
	// already applied. With it off, whichever response lands last wins.
	DiscardStaleRefresh bool
}

type Controller struct {
	remote       Remote
	logger       *slog.Logger
	ctx          context.Context
	discardStale bool

	items []model.Item
	edit  model.EditState

	issuedSeq      uint64
	appliedSeq     uint64
	pending        int
	staleRefreshes int
	lastErr        error
}

func New(remote Remote, opts Options) *Controller {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return &Controller{
		remote:       remote,
		logger:       logger,
		ctx:          ctx,
		discardStale: opts.DiscardStaleRefresh,
		items:        []model.Item{},
		edit:         model.NewEditState(),
	}
}

// Items returns a copy of the collection as of the last applied refresh.
func (c *Controller) Items() []model.Item {
	out := make([]model.Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Controller) EditState() model.EditState   { return c.edit }
func (c *Controller) DraftState() model.DraftState { return c.edit.State() }

// Pending is the number of remote calls issued whose result has not been
// applied yet.
func (c *Controller) Pending() int { return c.pending }

func (c *Controller) StaleRefreshes() int { return c.staleRefreshes }

// LastError is the most recent surfaced failure. A later successful remote
// operation clears it.
func (c *Controller) LastError() error { return c.lastErr }

// Refresh fetches the whole collection.
func (c *Controller) Refresh() tea.Cmd {
	c.issuedSeq++
	c.pending++
	seq := c.issuedSeq
	remote, ctx := c.remote, c.ctx
	return func() tea.Msg {
		items, err := remote.ListTasks(ctx)
		if err != nil {
			return RefreshFailedMsg{Seq: seq, Err: err}
		}
		return RefreshedMsg{Seq: seq, Items: items}
	}
}

// UpdateDraft sets one field of the active draft. No request is made and
// no validation beyond the field's type is done.
func (c *Controller) UpdateDraft(field model.Field, value any) error {
	next, err := model.ApplyField(c.edit.ActiveItem, field, value)
	if err != nil {
		return err
	}
	c.edit.ActiveItem = next
	return nil
}

// SubmitDraft patches item when it carries an identifier and creates it
// otherwise. EditState is left alone until the result is applied.
func (c *Controller) SubmitDraft(item model.Item) tea.Cmd {
	c.pending++
	remote, ctx := c.remote, c.ctx
	if item.IsPersisted() {
		return func() tea.Msg {
			updated, err := remote.UpdateTask(ctx, item.ID, model.PatchFrom(item))
			if err != nil {
				return SubmitFailedMsg{Op: SubmitUpdate, Draft: item, Err: err}
			}
			return SubmittedMsg{Op: SubmitUpdate, Draft: item, Item: updated}
		}
	}
	return func() tea.Msg {
		created, err := remote.CreateTask(ctx, item)
		if err != nil {
			return SubmitFailedMsg{Op: SubmitCreate, Draft: item, Err: err}
		}
		return SubmittedMsg{Op: SubmitCreate, Draft: item, Item: created}
	}
}

func (c *Controller) BeginEdit(item model.Item) {
	c.edit = model.EditState{ActiveItem: item, IsEditing: true}
}

// CancelEdit drops the draft and returns the form to an empty new item.
func (c *Controller) CancelEdit() {
	c.edit = model.NewEditState()
}

// DeleteItem removes item remotely. An item without an identifier is
// refused locally and nil is returned.
func (c *Controller) DeleteItem(item model.Item) tea.Cmd {
	if item.IsNew() {
		c.surface("delete refused", ErrNotPersisted)
		return nil
	}
	c.pending++
	id := item.ID
	remote, ctx := c.remote, c.ctx
	return func() tea.Msg {
		if err := remote.DeleteTask(ctx, id); err != nil {
			return DeleteFailedMsg{ID: id, Err: err}
		}
		return DeletedMsg{ID: id}
	}
}

// Apply folds a result message into local state and returns the follow-up
// command, if any. Messages it does not own are ignored.
func (c *Controller) Apply(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case RefreshedMsg:
		c.settle()
		if typed.Seq < c.appliedSeq {
			if c.discardStale {
				c.staleRefreshes++
				c.logger.Info("discarding stale refresh", "seq", typed.Seq, "applied", c.appliedSeq)
				return nil
			}
		} else {
			c.appliedSeq = typed.Seq
		}
		items := make([]model.Item, len(typed.Items))
		copy(items, typed.Items)
		c.items = items
		c.lastErr = nil
		c.logger.Debug("collection refreshed", "seq", typed.Seq, "items", len(items))
		return nil
	case RefreshFailedMsg:
		c.settle()
		if c.discardStale && typed.Seq < c.appliedSeq {
			c.staleRefreshes++
			c.logger.Info("discarding stale refresh failure", "seq", typed.Seq, "applied", c.appliedSeq, "error", typed.Err)
			return nil
		}
		c.surface("refresh failed", typed.Err)
		return nil
	case SubmittedMsg:
		c.settle()
		c.lastErr = nil
		if c.edit.ActiveItem != typed.Draft {
			c.logger.Debug("dropping draft on submit of another item", "draft_id", c.edit.ActiveItem.ID, "submitted_id", typed.Draft.ID)
		}
		c.edit = model.NewEditState()
		c.logger.Info("draft submitted", "op", typed.Op, "id", typed.Item.ID)
		return c.Refresh()
	case SubmitFailedMsg:
		c.settle()
		c.surface(fmt.Sprintf("%s failed", typed.Op), typed.Err)
		return nil
	case DeletedMsg:
		c.settle()
		c.lastErr = nil
		if c.edit.IsEditing && c.edit.ActiveItem.ID == typed.ID {
			c.edit = model.NewEditState()
		}
		c.logger.Info("item deleted", "id", typed.ID)
		return c.Refresh()
	case DeleteFailedMsg:
		c.settle()
		c.surface("delete failed", typed.Err)
		return nil
	}
	return nil
}

// Dispatch runs a typed command from the presentation layer.
func (c *Controller) Dispatch(cmd commands.Command) (commands.Result, error) {
	return commands.Execute(cmd, commands.Handlers{
		Edit: func(cmd commands.Command) (commands.Result, error) {
			c.BeginEdit(*cmd.Item)
			return commands.Result{Message: fmt.Sprintf("editing %q", cmd.Item.Title)}, nil
		},
		Delete: func(cmd commands.Command) (commands.Result, error) {
			next := c.DeleteItem(*cmd.Item)
			if next == nil {
				return commands.Result{}, ErrNotPersisted
			}
			return commands.Result{Message: fmt.Sprintf("deleting %q", cmd.Item.Title), Cmd: next}, nil
		},
		Submit: func(cmd commands.Command) (commands.Result, error) {
			verb := "creating"
			if cmd.Item.IsPersisted() {
				verb = "saving"
			}
			return commands.Result{Message: fmt.Sprintf("%s %q", verb, cmd.Item.Title), Cmd: c.SubmitDraft(*cmd.Item)}, nil
		},
		FieldChanged: func(args commands.FieldArgs) (commands.Result, error) {
			if err := c.UpdateDraft(args.Name, args.Value); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{}, nil
		},
		Refresh: func() (commands.Result, error) {
			return commands.Result{Message: "refreshing", Cmd: c.Refresh()}, nil
		},
		Cancel: func() (commands.Result, error) {
			c.CancelEdit()
			return commands.Result{Message: "edit cancelled"}, nil
		},
	})
}

// Settle runs cmd and every follow-up it causes to completion on the
// calling goroutine. The headless CLI and tests use it in place of an
// event loop.
func (c *Controller) Settle(cmd tea.Cmd) {
	for cmd != nil {
		cmd = c.Apply(cmd())
	}
}

func (c *Controller) settle() {
	if c.pending > 0 {
		c.pending--
	}
}

func (c *Controller) surface(what string, err error) {
	c.lastErr = err
	c.logger.Warn(what, "error", err)
}
