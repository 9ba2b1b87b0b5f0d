package update

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/sandeepkv93/todosync/internal/views"
)

type KeyBinding struct {
	Key    string
	Action string
}

type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

func (k helpKeyMap) ShortHelp() []key.Binding  { return k.short }
func (k helpKeyMap) FullHelp() [][]key.Binding { return k.full }

func (m Model) renderHelpIfVisible() string {
	if !m.HelpVisible {
		return ""
	}
	return m.renderHelpView()
}

func (m Model) renderHelpView() string {
	bindings := m.helpBindings()
	var plain []string
	for _, kb := range append(m.globalBindings(), m.focusBindings()...) {
		plain = append(plain, fmt.Sprintf("- `%s` %s", kb.Key, kb.Action))
	}
	return views.RenderHelpPanel(views.HelpPanelData{
		Bindings: plain,
		HelpView: m.helpModel.View(helpKeyMap{
			short: bindings,
			full:  [][]key.Binding{bindings},
		}),
	})
}

func (m Model) globalBindings() []KeyBinding {
	return []KeyBinding{
		{Key: m.Keys.Next, Action: "next control"},
		{Key: m.Keys.Cancel, Action: "cancel edit"},
		{Key: m.Keys.Palette, Action: "open command palette"},
		{Key: m.Keys.Refresh, Action: "refresh"},
		{Key: m.Keys.Help, Action: "toggle help panel"},
		{Key: m.Keys.Quit, Action: "quit app"},
	}
}

func (m Model) focusBindings() []KeyBinding {
	switch m.Focus {
	case FocusTitle:
		return []KeyBinding{
			{Key: m.Keys.Submit, Action: "submit draft"},
		}
	case FocusCompleted:
		return []KeyBinding{
			{Key: m.Keys.Toggle + "/space", Action: "toggle completed"},
			{Key: m.Keys.Submit, Action: "submit draft"},
		}
	default:
		return []KeyBinding{
			{Key: "j/k", Action: "move cursor"},
			{Key: m.Keys.Edit + "/" + m.Keys.Submit, Action: "edit selected"},
			{Key: m.Keys.Delete, Action: "delete selected"},
			{Key: m.Keys.Toggle + "/space", Action: "toggle selected done"},
			{Key: m.Keys.Copy, Action: "copy selected id"},
		}
	}
}

func (m Model) helpBindings() []key.Binding {
	all := append(m.globalBindings(), m.focusBindings()...)
	out := make([]key.Binding, 0, len(all))
	for _, kb := range all {
		out = append(out, key.NewBinding(key.WithKeys(kb.Key), key.WithHelp(kb.Key, kb.Action)))
	}
	return out
}
