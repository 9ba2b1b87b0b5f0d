package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sandeepkv93/todosync/internal/model"
)

type Type string

const (
	TypeEdit         Type = "edit"
	TypeDelete       Type = "delete"
	TypeSubmit       Type = "submit"
	TypeFieldChanged Type = "field_changed"
	TypeRefresh      Type = "refresh"
	TypeCancel       Type = "cancel"
)

type ErrorCode string

const (
	ErrCodeEmptyInput      ErrorCode = "empty_input"
	ErrCodeUnknownCommand  ErrorCode = "unknown_command"
	ErrCodeInvalidArgument ErrorCode = "invalid_argument"
	ErrCodeOutOfRange      ErrorCode = "out_of_range"
	ErrCodeHandlerMissing  ErrorCode = "handler_missing"
)

type CommandError struct {
	Code    ErrorCode
	Message string
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type FieldArgs struct {
	Name  model.Field
	Value any
}

// Command is what the presentation layer hands to the controller. Item is
// set for edit, delete and submit; Field for field_changed.
type Command struct {
	Type  Type
	Raw   string
	Item  *model.Item
	Field *FieldArgs
}

func Edit(item model.Item) Command   { return Command{Type: TypeEdit, Item: &item} }
func Delete(item model.Item) Command { return Command{Type: TypeDelete, Item: &item} }
func Submit(item model.Item) Command { return Command{Type: TypeSubmit, Item: &item} }
func Refresh() Command               { return Command{Type: TypeRefresh} }
func Cancel() Command                { return Command{Type: TypeCancel} }

func FieldChanged(name model.Field, value any) Command {
	return Command{Type: TypeFieldChanged, Field: &FieldArgs{Name: name, Value: value}}
}

// Snapshot is the view state a typed-in command is resolved against:
// list positions are 1-based indexes into Items.
type Snapshot struct {
	Items []model.Item
	Draft model.Item
}

// Parse reads a command palette line such as "add buy milk", "edit 2",
// "rm 3", "done 1", "title new text", "complete", "submit" or "refresh".
func Parse(input string, snap Snapshot) (Command, error) {
	raw := strings.TrimSpace(input)
	if strings.HasPrefix(raw, "/") {
		raw = strings.TrimSpace(strings.TrimPrefix(raw, "/"))
	}
	if raw == "" {
		return Command{}, &CommandError{Code: ErrCodeEmptyInput, Message: "command is empty"}
	}

	parts := strings.Fields(raw)
	head := strings.ToLower(parts[0])
	args := parts[1:]

	var (
		cmd Command
		err error
	)
	switch head {
	case "add", "new":
		cmd, err = parseAdd(args)
	case "edit":
		cmd, err = parseIndexed(head, args, snap, Edit)
	case "rm", "del", "delete":
		cmd, err = parseIndexed(head, args, snap, Delete)
	case "done", "toggle":
		cmd, err = parseIndexed(head, args, snap, func(item model.Item) Command {
			item.Completed = !item.Completed
			return Submit(item)
		})
	case "title":
		// Keep the user's spacing; only the command word is dropped.
		cmd = FieldChanged(model.FieldTitle, strings.TrimSpace(raw[len(parts[0]):]))
	case "complete":
		cmd = FieldChanged(model.FieldCompleted, true)
	case "incomplete":
		cmd = FieldChanged(model.FieldCompleted, false)
	case "submit", "save":
		cmd = Submit(snap.Draft)
	case "cancel":
		cmd = Cancel()
	case "refresh", "reload":
		cmd = Refresh()
	default:
		return Command{}, &CommandError{Code: ErrCodeUnknownCommand, Message: fmt.Sprintf("unsupported command: %s", head)}
	}
	if err != nil {
		return Command{}, err
	}
	cmd.Raw = input
	return cmd, nil
}

func parseAdd(args []string) (Command, error) {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: "add requires a title"}
	}
	return Submit(model.Item{Title: title}), nil
}

func parseIndexed(head string, args []string, snap Snapshot, build func(model.Item) Command) (Command, error) {
	if len(args) != 1 {
		return Command{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("%s requires one item index", head)}
	}
	item, err := ResolveIndex(snap.Items, args[0])
	if err != nil {
		return Command{}, err
	}
	return build(item), nil
}

// ResolveIndex maps a 1-based list position to the item shown there.
func ResolveIndex(items []model.Item, raw string) (model.Item, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return model.Item{}, &CommandError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf("not a number: %s", raw)}
	}
	if n < 1 || n > len(items) {
		return model.Item{}, &CommandError{Code: ErrCodeOutOfRange, Message: fmt.Sprintf("index out of range: have %d, got %d", len(items), n)}
	}
	return items[n-1], nil
}
