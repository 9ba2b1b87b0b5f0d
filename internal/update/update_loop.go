package update

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todosync/internal/commands"
	"github.com/sandeepkv93/todosync/internal/controller"
	"github.com/sandeepkv93/todosync/internal/model"
	"github.com/sandeepkv93/todosync/internal/views"
)

// Init loads the collection once and starts the refresh ticker when an
// interval is configured.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.Sync.Refresh(), m.syncSpinner.Tick, m.scheduleRefresh())
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	next.syncBubbleData()
	if next.Status != m.Status {
		next.statusSeq++
		cmd = tea.Batch(cmd, next.scheduleStatusClear())
	}
	return next, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case spinner.TickMsg:
		if m.Sync.Pending() == 0 {
			m.spinnerActive = false
			return m, nil
		}
		m.spinnerActive = true
		var cmd tea.Cmd
		m.syncSpinner, cmd = m.syncSpinner.Update(typed)
		return m, cmd
	case RefreshTickMsg:
		// Skip a beat rather than stack refreshes behind a slow server.
		if m.Sync.Pending() > 0 {
			return m, m.scheduleRefresh()
		}
		return m, tea.Batch(m.track(m.Sync.Refresh()), m.scheduleRefresh())
	case controller.RefreshedMsg, controller.RefreshFailedMsg,
		controller.SubmittedMsg, controller.SubmitFailedMsg,
		controller.DeletedMsg, controller.DeleteFailedMsg:
		return m.applySync(msg)
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		m.notify(typed.Text, levelFromError(typed.IsError))
		return m, nil
	case ClearStatusMsg:
		if typed.Seq == m.statusSeq {
			m.Status = StatusBar{}
		}
		return m, nil
	case AppErrorMsg:
		if typed.Err != nil {
			m.setError(typed.Err)
		}
		return m, nil
	}
	return m, nil
}

func (m Model) applySync(msg tea.Msg) (Model, tea.Cmd) {
	staleBefore := m.Sync.StaleRefreshes()
	follow := m.Sync.Apply(msg)

	switch typed := msg.(type) {
	case controller.RefreshedMsg:
		if m.Sync.StaleRefreshes() == staleBefore {
			m.setStatus(fmt.Sprintf("synced %d task(s)", len(m.Sync.Items())))
		}
	case controller.RefreshFailedMsg:
		m.setError(fmt.Errorf("refresh failed: %w", typed.Err))
	case controller.SubmittedMsg:
		verb := "added"
		if typed.Op == controller.SubmitUpdate {
			verb = "saved"
		}
		m.setStatus(fmt.Sprintf("%s %q", verb, typed.Item.Title))
	case controller.SubmitFailedMsg:
		m.setError(fmt.Errorf("%s failed: %w", typed.Op, typed.Err))
	case controller.DeletedMsg:
		m.setStatus("deleted " + typed.ID)
	case controller.DeleteFailedMsg:
		m.setError(fmt.Errorf("delete failed: %w", typed.Err))
	}
	return m, m.track(follow)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	keyStr := msg.String()
	if keyStr == "ctrl+c" {
		m.Quitting = true
		return m, tea.Quit
	}
	if m.Palette.Active {
		return m.handlePaletteKey(msg)
	}

	switch keyStr {
	case m.Keys.Next:
		m.cycleFocus(1)
		return m, nil
	case "shift+tab":
		m.cycleFocus(-1)
		return m, nil
	case m.Keys.Cancel:
		return m.dispatch(commands.Cancel())
	}

	if m.Focus == FocusTitle {
		return m.handleTitleKey(msg)
	}

	switch keyStr {
	case m.Keys.Palette:
		m.Palette = CommandPaletteState{Active: true}
		m.commandInput.SetValue("")
		m.Status = StatusBar{Text: "command palette active"}
		return m, nil
	case m.Keys.Help:
		m.HelpVisible = !m.HelpVisible
		if m.HelpVisible {
			m.Status = StatusBar{Text: "help shown"}
		} else {
			m.Status = StatusBar{Text: "help hidden"}
		}
		return m, nil
	case m.Keys.Refresh:
		return m.dispatch(commands.Refresh())
	case m.Keys.Quit:
		m.Quitting = true
		return m, tea.Quit
	}

	if m.Focus == FocusCompleted {
		return m.handleCompletedKey(msg)
	}
	return m.handleListKey(msg)
}

func (m Model) handleListKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	items := m.Sync.Items()
	switch msg.String() {
	case "j", "down":
		if m.Cursor < len(items)-1 {
			m.Cursor++
		}
		return m, nil
	case "k", "up":
		if m.Cursor > 0 {
			m.Cursor--
		}
		return m, nil
	case "g", "home":
		m.Cursor = 0
		return m, nil
	case "G", "end":
		m.Cursor = max(len(items)-1, 0)
		return m, nil
	}

	item, ok := m.selectedItem()
	if !ok {
		return m, nil
	}
	switch msg.String() {
	case m.Keys.Edit, m.Keys.Submit:
		return m.dispatch(commands.Edit(item))
	case m.Keys.Delete:
		return m.dispatch(commands.Delete(item))
	case m.Keys.Toggle, " ":
		item.Completed = !item.Completed
		return m.dispatch(commands.Submit(item))
	case m.Keys.Copy:
		return m, m.copyID(item.ID)
	}
	return m, nil
}

func (m Model) handleTitleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == m.Keys.Submit {
		return m.dispatch(commands.Submit(m.Sync.EditState().ActiveItem))
	}
	before := m.titleInput.Value()
	m.titleInput.Focus()
	var cmd tea.Cmd
	m.titleInput, cmd = m.titleInput.Update(msg)
	if after := m.titleInput.Value(); after != before {
		if _, err := m.Sync.Dispatch(commands.FieldChanged(model.FieldTitle, after)); err != nil {
			m.setError(err)
		}
	}
	return m, cmd
}

func (m Model) handleCompletedKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case m.Keys.Toggle, " ":
		done := !m.Sync.EditState().ActiveItem.Completed
		return m.dispatch(commands.FieldChanged(model.FieldCompleted, done))
	case m.Keys.Submit:
		return m.dispatch(commands.Submit(m.Sync.EditState().ActiveItem))
	}
	return m, nil
}

// dispatch hands cmd to the controller and folds the result into the
// status bar and focus.
func (m Model) dispatch(cmd commands.Command) (Model, tea.Cmd) {
	res, err := m.Sync.Dispatch(cmd)
	if err != nil {
		if errors.Is(err, controller.ErrNotPersisted) {
			err = errors.New("item is not saved yet")
		}
		m.setError(err)
		return m, nil
	}
	switch cmd.Type {
	case commands.TypeEdit:
		m.Focus = FocusTitle
	case commands.TypeCancel:
		m.Focus = FocusList
	}
	if res.Message != "" {
		m.setStatus(res.Message)
	}
	return m, m.track(res.Cmd)
}

// track starts the spinner alongside a remote command.
func (m *Model) track(cmd tea.Cmd) tea.Cmd {
	if cmd == nil {
		return nil
	}
	if m.spinnerActive {
		return cmd
	}
	m.spinnerActive = true
	return tea.Batch(cmd, m.syncSpinner.Tick)
}

// copyID writes id to the clipboard off the event loop.
func (m Model) copyID(id string) tea.Cmd {
	write := m.copyToClipboard
	return func() tea.Msg {
		if err := write(id); err != nil {
			return AppErrorMsg{Err: fmt.Errorf("copy failed: %w", err)}
		}
		return SetStatusMsg{Text: "copied id " + id}
	}
}

func (m Model) scheduleStatusClear() tea.Cmd {
	if m.StatusTTL <= 0 || m.Status.Text == "" || m.Status.IsError {
		return nil
	}
	seq := m.statusSeq
	return tea.Tick(m.StatusTTL, func(time.Time) tea.Msg { return ClearStatusMsg{Seq: seq} })
}

func (m Model) scheduleRefresh() tea.Cmd {
	if m.RefreshInterval <= 0 {
		return nil
	}
	return tea.Tick(m.RefreshInterval, func(t time.Time) tea.Msg { return RefreshTickMsg{At: t} })
}

func (m *Model) cycleFocus(step int) {
	idx := 0
	for i, f := range focusOrder {
		if f == m.Focus {
			idx = i
			break
		}
	}
	idx = (idx + step + len(focusOrder)) % len(focusOrder)
	m.Focus = focusOrder[idx]
}

func (m Model) selectedItem() (model.Item, bool) {
	items := m.Sync.Items()
	if m.Cursor < 0 || m.Cursor >= len(items) {
		return model.Item{}, false
	}
	return items[m.Cursor], true
}

func (m *Model) setStatus(text string) {
	m.Status = StatusBar{Text: text}
	m.notify(text, "info")
}

func (m *Model) setError(err error) {
	m.Status = StatusBar{Text: err.Error(), IsError: true}
	m.notify(err.Error(), "error")
}

func (m *Model) notify(body, level string) {
	if strings.TrimSpace(body) == "" {
		return
	}
	m.Notifications = append(m.Notifications, Notification{Body: body, Level: level, At: m.now().UTC()})
	if len(m.Notifications) > maxNotifications {
		m.Notifications = m.Notifications[len(m.Notifications)-maxNotifications:]
	}
}

func (m Model) recentNotifications() []views.NotificationData {
	start := max(len(m.Notifications)-shownNotifications, 0)
	out := make([]views.NotificationData, 0, len(m.Notifications)-start)
	for _, n := range m.Notifications[start:] {
		out = append(out, views.NotificationData{Body: n.Body, Level: n.Level, At: n.At})
	}
	return out
}

func levelFromError(isErr bool) string {
	if isErr {
		return "error"
	}
	return "info"
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	edit := m.Sync.EditState()
	form := views.RenderFormPanel(views.FormPanelData{
		TitleView:        m.titleInput.View(),
		TitleFocused:     m.Focus == FocusTitle,
		Completed:        edit.ActiveItem.Completed,
		CompletedFocused: m.Focus == FocusCompleted,
		SubmitLabel:      edit.SubmitLabel(),
		DraftState:       string(edit.State()),
		EditingID:        edit.ActiveItem.ID,
	})
	rightPane := strings.TrimSpace(strings.Join([]string{
		form,
		views.RenderCommandPalette(m.Palette.Active, m.commandInput.View()),
		views.RenderNotifications(m.recentNotifications()),
		m.renderHelpIfVisible(),
	}, "\n\n"))

	items := m.Sync.Items()
	done := 0
	for _, item := range items {
		if item.Completed {
			done++
		}
	}
	leftPane := views.RenderListPanel(views.ListPanelData{
		ListView: m.itemList.View(),
		Total:    len(items),
		Done:     done,
	})

	notification := ""
	if pending := m.Sync.Pending(); pending > 0 {
		notification = fmt.Sprintf("sync: %s %d request(s) in flight", m.syncSpinner.View(), pending)
	}

	header := "todosync"
	if m.BaseURL != "" {
		header += " | " + m.BaseURL
	}
	header += fmt.Sprintf(" | focus: %s", m.Focus)

	return views.RenderApp(views.AppData{
		Header:       header,
		LeftPane:     leftPane,
		RightPane:    rightPane,
		StatusLine:   status,
		StatusError:  m.Status.IsError,
		Notification: notification,
		Footer: fmt.Sprintf("keys: %s edit | %s delete | %s toggle | %s refresh | %s focus | %s cmd | %s help | %s quit",
			m.Keys.Edit, m.Keys.Delete, m.Keys.Toggle, m.Keys.Refresh, m.Keys.Next, m.Keys.Palette, m.Keys.Help, m.Keys.Quit),
	})
}
