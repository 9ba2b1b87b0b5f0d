package commands

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Result is what a handler produced: a status line and, for commands that
// reach the remote resource, the command that performs the request.
type Result struct {
	Message string
	Cmd     tea.Cmd
}

type Handlers struct {
	Edit         func(Command) (Result, error)
	Delete       func(Command) (Result, error)
	Submit       func(Command) (Result, error)
	FieldChanged func(FieldArgs) (Result, error)
	Refresh      func() (Result, error)
	Cancel       func() (Result, error)
}

func Execute(cmd Command, handlers Handlers) (Result, error) {
	switch cmd.Type {
	case TypeEdit:
		if handlers.Edit == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "edit handler not configured"}
		}
		if cmd.Item == nil {
			return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "edit requires an item"}
		}
		return handlers.Edit(cmd)
	case TypeDelete:
		if handlers.Delete == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "delete handler not configured"}
		}
		if cmd.Item == nil {
			return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "delete requires an item"}
		}
		return handlers.Delete(cmd)
	case TypeSubmit:
		if handlers.Submit == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "submit handler not configured"}
		}
		if cmd.Item == nil {
			return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "submit requires an item"}
		}
		return handlers.Submit(cmd)
	case TypeFieldChanged:
		if handlers.FieldChanged == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "field handler not configured"}
		}
		if cmd.Field == nil {
			return Result{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "field_changed requires a field"}
		}
		return handlers.FieldChanged(*cmd.Field)
	case TypeRefresh:
		if handlers.Refresh == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "refresh handler not configured"}
		}
		return handlers.Refresh()
	case TypeCancel:
		if handlers.Cancel == nil {
			return Result{}, &CommandError{Code: ErrCodeHandlerMissing, Message: "cancel handler not configured"}
		}
		return handlers.Cancel()
	default:
		return Result{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unknown command type: %s", cmd.Type)}
	}
}
