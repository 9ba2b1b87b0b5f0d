package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/sandeepkv93/todosync/internal/model"
)

var (
	headingStyle = lipgloss.NewStyle().Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	doneStyle    = lipgloss.NewStyle().Faint(true).Strikethrough(true)
)

func ok(w io.Writer, msg string) {
	fmt.Fprintln(w, successStyle.Render("✔ "+msg))
}

func warn(w io.Writer, msg string) {
	fmt.Fprintln(w, pendingStyle.Render("! "+msg))
}

func fail(w io.Writer, msg string) {
	fmt.Fprintln(w, errorStyle.Render("✖ "+msg))
}

// printItems writes one line per item. Indexes stay the 1-based positions
// the index arguments of edit, done and rm refer to, also when grouped.
func printItems(w io.Writer, items []model.Item, group bool) {
	if len(items) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("(no tasks)"))
		return
	}
	if !group {
		for i, item := range items {
			fmt.Fprintln(w, itemLine(i+1, item))
		}
		return
	}

	var pending, done []string
	for i, item := range items {
		if item.Completed {
			done = append(done, itemLine(i+1, item))
		} else {
			pending = append(pending, itemLine(i+1, item))
		}
	}
	sections := make([]string, 0, 2)
	if len(pending) > 0 {
		sections = append(sections, headingStyle.Render(fmt.Sprintf("Pending (%d)", len(pending)))+"\n"+strings.Join(pending, "\n"))
	}
	if len(done) > 0 {
		sections = append(sections, headingStyle.Render(fmt.Sprintf("Done (%d)", len(done)))+"\n"+strings.Join(done, "\n"))
	}
	fmt.Fprintln(w, strings.Join(sections, "\n\n"))
}

func itemLine(index int, item model.Item) string {
	num := mutedStyle.Render(fmt.Sprintf("%3d.", index))
	if item.Completed {
		return fmt.Sprintf("%s %s %s", num, successStyle.Render("[x]"), doneStyle.Render(item.Title))
	}
	return fmt.Sprintf("%s %s %s", num, pendingStyle.Render("[ ]"), item.Title)
}
