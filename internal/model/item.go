package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrUnknownField      = errors.New("model: unknown item field")
	ErrInvalidFieldValue = errors.New("model: invalid item field value")
)

// Item is a to-do entry as the collection resource stores it. ID is empty
// until the server has assigned one.
type Item struct {
	ID        string `json:"_id,omitempty"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

func (i Item) IsNew() bool { return strings.TrimSpace(i.ID) == "" }

func (i Item) IsPersisted() bool { return !i.IsNew() }

// Draft returns the item with its identifier stripped, which is the body a
// create request carries.
func (i Item) Draft() Item {
	i.ID = ""
	return i
}

type Field string

const (
	FieldTitle     Field = "title"
	FieldCompleted Field = "completed"
)

func (f Field) IsValid() bool {
	switch f {
	case FieldTitle, FieldCompleted:
		return true
	default:
		return false
	}
}

func ParseField(raw string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(raw)))
	if !f.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownField, raw)
	}
	return f, nil
}

// ApplyField returns a copy of item with one field set. Title takes any
// string, empty included. Completed takes a bool or a string that
// strconv.ParseBool understands.
func ApplyField(item Item, field Field, value any) (Item, error) {
	switch field {
	case FieldTitle:
		s, ok := value.(string)
		if !ok {
			return item, fmt.Errorf("%w: title wants a string, got %T", ErrInvalidFieldValue, value)
		}
		item.Title = s
		return item, nil
	case FieldCompleted:
		switch v := value.(type) {
		case bool:
			item.Completed = v
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return item, fmt.Errorf("%w: completed: %q", ErrInvalidFieldValue, v)
			}
			item.Completed = b
		default:
			return item, fmt.Errorf("%w: completed wants a bool, got %T", ErrInvalidFieldValue, value)
		}
		return item, nil
	default:
		return item, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
}

// Patch carries the fields of a partial update. Nil fields are left out of
// the request body.
type Patch struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// PatchFrom builds a patch carrying every editable field of item.
func PatchFrom(item Item) Patch {
	title := item.Title
	completed := item.Completed
	return Patch{Title: &title, Completed: &completed}
}

func (p Patch) IsEmpty() bool { return p.Title == nil && p.Completed == nil }

func (p Patch) ApplyTo(item Item) Item {
	if p.Title != nil {
		item.Title = *p.Title
	}
	if p.Completed != nil {
		item.Completed = *p.Completed
	}
	return item
}
