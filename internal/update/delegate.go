package update

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todosync/internal/model"
	"github.com/sandeepkv93/todosync/internal/views"
)

type listItem struct {
	item model.Item
}

func (i listItem) FilterValue() string { return i.item.Title }

// itemDelegate draws one row per item through views.RenderItemLine.
type itemDelegate struct{}

func (itemDelegate) Height() int                             { return 1 }
func (itemDelegate) Spacing() int                            { return 0 }
func (itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (itemDelegate) Render(w io.Writer, m list.Model, index int, row list.Item) {
	li, ok := row.(listItem)
	if !ok {
		return
	}
	line := views.RenderItemLine(views.ItemData{
		ID:        li.item.ID,
		Title:     li.item.Title,
		Completed: li.item.Completed,
	}, index, index == m.Index())
	fmt.Fprint(w, line)
}
