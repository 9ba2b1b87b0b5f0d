package update

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todosync/internal/config"
	"github.com/sandeepkv93/todosync/internal/controller"
	"github.com/sandeepkv93/todosync/internal/model"
)

type stubRemote struct {
	items   []model.Item
	nextID  int
	methods []string

	failCreate error
}

func (s *stubRemote) ListTasks(ctx context.Context) ([]model.Item, error) {
	s.methods = append(s.methods, "GET")
	return append([]model.Item(nil), s.items...), nil
}

func (s *stubRemote) CreateTask(ctx context.Context, item model.Item) (model.Item, error) {
	s.methods = append(s.methods, "POST")
	if err := s.failCreate; err != nil {
		s.failCreate = nil
		return model.Item{}, err
	}
	s.nextID++
	item.ID = fmt.Sprint(s.nextID)
	s.items = append(s.items, item)
	return item, nil
}

func (s *stubRemote) UpdateTask(ctx context.Context, id string, patch model.Patch) (model.Item, error) {
	s.methods = append(s.methods, "PATCH "+id)
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = patch.ApplyTo(s.items[i])
			return s.items[i], nil
		}
	}
	return model.Item{}, errors.New("not found")
}

func (s *stubRemote) DeleteTask(ctx context.Context, id string) error {
	s.methods = append(s.methods, "DELETE "+id)
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func newTestModel(t *testing.T, items ...model.Item) (Model, *stubRemote) {
	t.Helper()
	remote := &stubRemote{items: items, nextID: len(items)}
	m := NewModel(controller.New(remote, controller.Options{DiscardStaleRefresh: true}))
	return drain(t, m, m.Init()), remote
}

// drain runs cmd and every command it leads to, feeding each message back
// through Update. Spinner frames are dropped so the queue empties.
func drain(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("command queue did not settle")
		}
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		msg := next()
		switch typed := msg.(type) {
		case tea.BatchMsg:
			queue = append(queue, typed...)
			continue
		case spinner.TickMsg:
			continue
		}
		updated, follow := m.Update(msg)
		m = updated.(Model)
		queue = append(queue, follow)
	}
	return m
}

func press(t *testing.T, m Model, keys ...tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var updated tea.Model
		updated, cmd = m.Update(k)
		m = updated.(Model)
	}
	return m, cmd
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyTab   = tea.KeyMsg{Type: tea.KeyTab}
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEsc}
)

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(controller.New(&stubRemote{}, controller.Options{}))
	if m.Focus != FocusList {
		t.Fatalf("expected list focus, got %q", m.Focus)
	}
	if m.Keys.Quit != "q" || m.Keys.Palette != "/" {
		t.Fatalf("unexpected keys: %+v", m.Keys)
	}
	if m.RefreshInterval != 0 {
		t.Fatalf("expected periodic refresh off, got %s", m.RefreshInterval)
	}
}

func TestNewModelWithConfig(t *testing.T) {
	cfg := config.DefaultRuntimeConfig()
	cfg.RefreshInterval = time.Minute
	m := NewModelWithConfig(controller.New(&stubRemote{}, controller.Options{}), cfg)
	if m.RefreshInterval != time.Minute || m.BaseURL != cfg.BaseURL {
		t.Fatalf("config not applied: %+v", m)
	}
}

func TestInitLoadsCollection(t *testing.T) {
	m, remote := newTestModel(t, model.Item{ID: "1", Title: "buy milk"}, model.Item{ID: "2", Title: "walk dog", Completed: true})
	if len(remote.methods) != 1 || remote.methods[0] != "GET" {
		t.Fatalf("expected one initial GET, got %v", remote.methods)
	}
	if m.Status.Text != "synced 2 task(s)" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
	out := m.View()
	for _, want := range []string{"buy milk", "walk dog", "tasks: 2 (1 done)", "Add"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in view: %q", want, out)
		}
	}
}

func TestTypingTitleThenSubmitCreates(t *testing.T) {
	m, remote := newTestModel(t)

	m, _ = press(t, m, keyTab, runes("buy milk"))
	if m.Focus != FocusTitle {
		t.Fatalf("expected title focus, got %q", m.Focus)
	}
	edit := m.Sync.EditState()
	if edit.ActiveItem.Title != "buy milk" || m.Sync.DraftState() != model.DraftStateDrafting {
		t.Fatalf("unexpected draft: %+v", edit)
	}

	m, cmd := press(t, m, keyEnter)
	m = drain(t, m, cmd)

	if got := strings.Join(remote.methods, ","); got != "GET,POST,GET" {
		t.Fatalf("unexpected calls: %s", got)
	}
	items := m.Sync.Items()
	if len(items) != 1 || items[0].Title != "buy milk" {
		t.Fatalf("unexpected items: %#v", items)
	}
	if m.Sync.DraftState() != model.DraftStateIdle || m.titleInput.Value() != "" {
		t.Fatalf("expected cleared form, got draft %+v input %q", m.Sync.EditState(), m.titleInput.Value())
	}
}

func TestEditSelectedThenSubmitPatches(t *testing.T) {
	m, remote := newTestModel(t, model.Item{ID: "1", Title: "buy milk"})

	m, _ = press(t, m, runes("e"))
	if m.Focus != FocusTitle || !m.Sync.EditState().IsEditing {
		t.Fatalf("expected editing with title focus, got %q %+v", m.Focus, m.Sync.EditState())
	}
	if m.titleInput.Value() != "buy milk" {
		t.Fatalf("expected title loaded into input, got %q", m.titleInput.Value())
	}
	if out := m.View(); !strings.Contains(out, "Edit") || !strings.Contains(out, "item: editing (1)") {
		t.Fatalf("expected edit form in view: %q", out)
	}

	m, _ = press(t, m, runes(" 2L"), keyTab, runes("x"))
	if m.Focus != FocusCompleted || !m.Sync.EditState().ActiveItem.Completed {
		t.Fatalf("expected completed draft, got %+v", m.Sync.EditState())
	}

	m, cmd := press(t, m, keyEnter)
	m = drain(t, m, cmd)
	if got := remote.methods[1]; got != "PATCH 1" {
		t.Fatalf("expected PATCH 1, got %v", remote.methods)
	}
	items := m.Sync.Items()
	if items[0].Title != "buy milk 2L" || !items[0].Completed {
		t.Fatalf("unexpected item after patch: %#v", items[0])
	}
	if m.Sync.EditState().IsEditing {
		t.Fatal("edit should end after a successful submit")
	}
}

func TestDeleteSelected(t *testing.T) {
	m, remote := newTestModel(t, model.Item{ID: "1", Title: "a"}, model.Item{ID: "2", Title: "b"})

	m, _ = press(t, m, runes("j"))
	m, cmd := press(t, m, runes("d"))
	m = drain(t, m, cmd)

	if remote.methods[1] != "DELETE 2" {
		t.Fatalf("expected DELETE 2, got %v", remote.methods)
	}
	if items := m.Sync.Items(); len(items) != 1 || items[0].ID != "1" {
		t.Fatalf("unexpected items: %#v", items)
	}
	if m.Cursor != 0 {
		t.Fatalf("cursor should clamp to the shorter list, got %d", m.Cursor)
	}
}

func TestToggleSelectedCompletes(t *testing.T) {
	m, remote := newTestModel(t, model.Item{ID: "1", Title: "a"})
	m, cmd := press(t, m, runes("x"))
	m = drain(t, m, cmd)
	if remote.methods[1] != "PATCH 1" || !m.Sync.Items()[0].Completed {
		t.Fatalf("expected completed via PATCH, got %v %#v", remote.methods, m.Sync.Items())
	}
}

func TestFailedSubmitKeepsDraftAndShowsError(t *testing.T) {
	m, remote := newTestModel(t)
	remote.failCreate = errors.New("server down")

	m, _ = press(t, m, keyTab, runes("buy milk"))
	m, cmd := press(t, m, keyEnter)
	m = drain(t, m, cmd)

	if !m.Status.IsError || !strings.Contains(m.Status.Text, "server down") {
		t.Fatalf("expected error status, got %+v", m.Status)
	}
	if m.Sync.EditState().ActiveItem.Title != "buy milk" || m.titleInput.Value() != "buy milk" {
		t.Fatalf("draft should survive a failed submit, got %+v", m.Sync.EditState())
	}
	if out := m.View(); !strings.Contains(out, "status: error:") {
		t.Fatalf("expected error status line in view: %q", out)
	}
}

func TestEscCancelsEdit(t *testing.T) {
	m, _ := newTestModel(t, model.Item{ID: "1", Title: "a"})
	m, _ = press(t, m, runes("e"), keyEsc)
	if m.Sync.EditState().IsEditing || m.Focus != FocusList {
		t.Fatalf("expected cancelled edit, got %+v focus %q", m.Sync.EditState(), m.Focus)
	}
	if m.Status.Text != "edit cancelled" {
		t.Fatalf("unexpected status: %+v", m.Status)
	}
}

func TestPaletteAddAndDone(t *testing.T) {
	m, remote := newTestModel(t)

	m, _ = press(t, m, runes("/"))
	if !m.Palette.Active {
		t.Fatal("expected palette active")
	}
	m, _ = press(t, m, runes("add walk dog"))
	m, cmd := press(t, m, keyEnter)
	if m.Palette.Active {
		t.Fatal("palette should close after enter")
	}
	m = drain(t, m, cmd)
	if items := m.Sync.Items(); len(items) != 1 || items[0].Title != "walk dog" {
		t.Fatalf("unexpected items after add: %#v", items)
	}

	m, _ = press(t, m, runes("/"), runes("done 1"))
	m, cmd = press(t, m, keyEnter)
	m = drain(t, m, cmd)
	if !m.Sync.Items()[0].Completed || remote.methods[len(remote.methods)-2] != "PATCH 1" {
		t.Fatalf("expected done via palette, got %v", remote.methods)
	}
}

func TestPaletteErrors(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("/"), runes("frobnicate"), keyEnter)
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "unknown_command") {
		t.Fatalf("expected unknown command error, got %+v", m.Status)
	}

	m, _ = press(t, m, runes("/"), runes("rm 4"), keyEnter)
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "out_of_range") {
		t.Fatalf("expected out of range error, got %+v", m.Status)
	}

	m, _ = press(t, m, runes("/"), runes("add x"), keyEsc)
	if m.Palette.Active || m.Status.Text != "command palette closed" {
		t.Fatalf("expected palette closed, got %+v %+v", m.Palette, m.Status)
	}
}

func TestCopySelectedID(t *testing.T) {
	m, _ := newTestModel(t, model.Item{ID: "abc", Title: "a"})
	var copied string
	m.copyToClipboard = func(s string) error {
		copied = s
		return nil
	}
	m, cmd := press(t, m, runes("y"))
	m = drain(t, m, cmd)
	if copied != "abc" || m.Status.Text != "copied id abc" {
		t.Fatalf("unexpected copy result %q %+v", copied, m.Status)
	}

	m.copyToClipboard = func(string) error { return errors.New("no clipboard") }
	m, cmd = press(t, m, runes("y"))
	m = drain(t, m, cmd)
	if !m.Status.IsError || !strings.Contains(m.Status.Text, "no clipboard") {
		t.Fatalf("expected copy failure status, got %+v", m.Status)
	}
	if last := m.Notifications[len(m.Notifications)-1]; last.Level != "error" {
		t.Fatalf("expected error notification, got %+v", last)
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, runes("?"))
	if !m.HelpVisible || !strings.Contains(m.renderHelpView(), "open command palette") {
		t.Fatal("expected help panel")
	}
	m, _ = press(t, m, runes("?"))
	if m.HelpVisible {
		t.Fatal("expected help hidden")
	}
}

func TestQuitKeyIgnoredWhileTyping(t *testing.T) {
	m, _ := newTestModel(t)
	m, _ = press(t, m, keyTab, runes("q"))
	if m.Quitting || m.Sync.EditState().ActiveItem.Title != "q" {
		t.Fatalf("q in the title field should type, got quitting=%v draft=%+v", m.Quitting, m.Sync.EditState())
	}

	m, cmd := press(t, m, keyTab, runes("q"))
	if !m.Quitting || cmd == nil {
		t.Fatal("expected quit from the completed control")
	}
}

func TestSpinnerStopsWhenIdle(t *testing.T) {
	m, _ := newTestModel(t)
	updated, cmd := m.Update(spinner.TickMsg{})
	if cmd != nil || updated.(Model).spinnerActive {
		t.Fatal("spinner should stop with nothing in flight")
	}
}

func TestRefreshTickSkipsWhilePending(t *testing.T) {
	m, remote := newTestModel(t)
	m.RefreshInterval = time.Hour

	m.Sync.Refresh()
	updated, cmd := m.Update(RefreshTickMsg{At: time.Now()})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected the ticker to be rescheduled")
	}
	if m.Sync.Pending() != 1 || len(remote.methods) != 1 {
		t.Fatalf("no new refresh should be issued while one is pending: pending=%d calls=%v", m.Sync.Pending(), remote.methods)
	}
}

func TestStatusMessages(t *testing.T) {
	m, _ := newTestModel(t)
	updated, _ := m.Update(SetStatusMsg{Text: "ready"})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	updated, _ = next.Update(AppErrorMsg{Err: errors.New("boom")})
	next = updated.(Model)
	if !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}
	if last := next.Notifications[len(next.Notifications)-1]; last.Level != "error" || last.Body != "boom" {
		t.Fatalf("unexpected notification: %+v", last)
	}

	updated, _ = next.Update(ClearStatusMsg{Seq: next.statusSeq - 1})
	next = updated.(Model)
	if next.Status.Text != "boom" {
		t.Fatalf("an older clear must not wipe the current status, got %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{Seq: next.statusSeq})
	next = updated.(Model)
	if next.Status.Text != "" {
		t.Fatalf("expected cleared status, got %+v", next.Status)
	}
}

func TestStatusClearIsScheduled(t *testing.T) {
	m, _ := newTestModel(t)
	if _, cmd := m.Update(SetStatusMsg{Text: "ready"}); cmd != nil {
		t.Fatal("no clear should be scheduled without a status ttl")
	}

	m.StatusTTL = time.Millisecond
	updated, cmd := m.Update(SetStatusMsg{Text: "ready"})
	if cmd == nil {
		t.Fatal("expected a scheduled clear")
	}
	msg, ok := cmd().(ClearStatusMsg)
	if !ok {
		t.Fatalf("expected ClearStatusMsg, got %T", msg)
	}
	updated, _ = updated.Update(msg)
	if got := updated.(Model).Status; got.Text != "" {
		t.Fatalf("expected status cleared, got %+v", got)
	}

	updated, cmd = m.Update(AppErrorMsg{Err: errors.New("boom")})
	if cmd != nil || !updated.(Model).Status.IsError {
		t.Fatal("errors should stay until replaced")
	}
}

func TestViewShowsRecentNotifications(t *testing.T) {
	m, _ := newTestModel(t, model.Item{ID: "1", Title: "a"})
	for _, text := range []string{"one", "two", "three", "four"} {
		updated, _ := m.Update(SetStatusMsg{Text: text})
		m = updated.(Model)
	}
	recent := m.recentNotifications()
	if len(recent) != shownNotifications || recent[0].Body != "two" || recent[2].Body != "four" {
		t.Fatalf("unexpected recent notifications: %+v", recent)
	}
	if !strings.Contains(m.View(), "recent:") {
		t.Fatal("expected notifications in the view")
	}
}
