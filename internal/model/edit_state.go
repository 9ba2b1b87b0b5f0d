package model

import "strings"

type DraftState string

const (
	DraftStateIdle     DraftState = "Idle"
	DraftStateDrafting DraftState = "Drafting"
	DraftStateEditing  DraftState = "Editing"
)

// EditState is the draft bound to the item form. IsEditing is true only
// when ActiveItem was loaded from a persisted item.
type EditState struct {
	ActiveItem Item
	IsEditing  bool
}

func NewEditState() EditState {
	return EditState{ActiveItem: Item{}}
}

func (s EditState) State() DraftState {
	if s.IsEditing {
		return DraftStateEditing
	}
	if strings.TrimSpace(s.ActiveItem.Title) != "" || s.ActiveItem.Completed {
		return DraftStateDrafting
	}
	return DraftStateIdle
}

// SubmitLabel is the caption of the form's submit action.
func (s EditState) SubmitLabel() string {
	if s.IsEditing {
		return "Edit"
	}
	return "Add"
}
