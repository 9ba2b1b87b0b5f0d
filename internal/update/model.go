package update

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/sandeepkv93/todosync/internal/config"
	"github.com/sandeepkv93/todosync/internal/controller"
)

// Focus is the control that receives keys outside the command palette.
type Focus string

const (
	FocusList      Focus = "list"
	FocusTitle     Focus = "title"
	FocusCompleted Focus = "completed"
)

var focusOrder = []Focus{FocusList, FocusTitle, FocusCompleted}

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Edit    string
	Delete  string
	Toggle  string
	Refresh string
	Copy    string
	Cancel  string
	Submit  string
	Next    string
	Palette string
	Help    string
	Quit    string
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type Notification struct {
	Body  string
	Level string
	At    time.Time
}

const (
	maxNotifications   = 20
	shownNotifications = 3

	defaultStatusTTL = 4 * time.Second
)

type Model struct {
	Sync            *controller.Controller
	Focus           Focus
	Cursor          int
	Palette         CommandPaletteState
	HelpVisible     bool
	Notifications   []Notification
	Status          StatusBar
	Keys            GlobalKeyMap
	Quitting        bool
	RefreshInterval time.Duration
	BaseURL         string

	// StatusTTL clears a non-error status after it has been shown this long.
	// Zero keeps it until the next one.
	StatusTTL time.Duration
	statusSeq int

	copyToClipboard func(string) error
	now             func() time.Time

	itemList      list.Model
	titleInput    textinput.Model
	commandInput  textinput.Model
	syncSpinner   spinner.Model
	helpModel     help.Model
	spinnerActive bool
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

// ClearStatusMsg clears the status bar if it still shows status Seq.
type ClearStatusMsg struct {
	Seq int
}

type AppErrorMsg struct {
	Err error
}

// RefreshTickMsg fires every RefreshInterval while the interval is set.
type RefreshTickMsg struct {
	At time.Time
}

func NewModel(sync *controller.Controller) Model {
	m := Model{
		Sync:  sync,
		Focus: FocusList,
		Keys: GlobalKeyMap{
			Edit:    "e",
			Delete:  "d",
			Toggle:  "x",
			Refresh: "r",
			Copy:    "y",
			Cancel:  "esc",
			Submit:  "enter",
			Next:    "tab",
			Palette: "/",
			Help:    "?",
			Quit:    "q",
		},
		copyToClipboard: clipboard.WriteAll,
		now:             time.Now,
	}
	m.initBubbleComponents()
	m.syncBubbleData()
	return m
}

func NewModelWithConfig(sync *controller.Controller, cfg config.RuntimeConfig) Model {
	m := NewModel(sync)
	m.RefreshInterval = cfg.RefreshInterval
	m.BaseURL = cfg.BaseURL
	m.StatusTTL = defaultStatusTTL
	return m
}

func (m *Model) initBubbleComponents() {
	m.itemList = list.New([]list.Item{}, itemDelegate{}, 40, 14)
	m.itemList.SetShowTitle(false)
	m.itemList.SetShowHelp(false)
	m.itemList.SetShowStatusBar(false)
	m.itemList.SetFilteringEnabled(false)
	m.itemList.DisableQuitKeybindings()

	m.titleInput = textinput.New()
	m.titleInput.Prompt = "title: "
	m.titleInput.Placeholder = "what needs doing?"
	m.titleInput.CharLimit = 256
	m.titleInput.Width = 36
	m.titleInput.Cursor.SetMode(cursor.CursorStatic)

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 48
	m.commandInput.Cursor.SetMode(cursor.CursorStatic)

	m.syncSpinner = spinner.New()
	m.syncSpinner.Spinner = spinner.Dot

	m.helpModel = help.New()
}

// syncBubbleData copies controller state into the widgets. It runs after
// every Update.
func (m *Model) syncBubbleData() {
	items := m.Sync.Items()
	if m.Cursor >= len(items) {
		m.Cursor = len(items) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}

	rows := make([]list.Item, 0, len(items))
	for _, item := range items {
		rows = append(rows, listItem{item: item})
	}
	m.itemList.SetItems(rows)
	if len(rows) > 0 {
		m.itemList.Select(m.Cursor)
	}

	draft := m.Sync.EditState().ActiveItem
	if m.titleInput.Value() != draft.Title {
		m.titleInput.SetValue(draft.Title)
		m.titleInput.CursorEnd()
	}
	if m.Focus == FocusTitle {
		m.titleInput.Focus()
	} else {
		m.titleInput.Blur()
	}

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	} else {
		m.commandInput.Blur()
	}
}
