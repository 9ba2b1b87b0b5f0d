package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var (
	cursorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	completedStyle = lipgloss.NewStyle().Strikethrough(true).Foreground(lipgloss.Color("8"))
	focusedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	buttonStyle    = lipgloss.NewStyle().Bold(true).Padding(0, 1).Background(lipgloss.Color("4")).Foreground(lipgloss.Color("15"))
)

type ItemData struct {
	ID        string
	Title     string
	Completed bool
}

type FormPanelData struct {
	TitleView        string
	TitleFocused     bool
	Completed        bool
	CompletedFocused bool
	SubmitLabel      string
	DraftState       string
	EditingID        string
}

type ListPanelData struct {
	ListView string
	Total    int
	Done     int
}

type NotificationData struct {
	Body  string
	Level string
	At    time.Time
}

type HelpPanelData struct {
	Bindings []string
	HelpView string
}

func RenderFormPanel(data FormPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("item: %s", strings.ToLower(data.DraftState)))
	if data.EditingID != "" {
		b.WriteString(fmt.Sprintf(" (%s)", data.EditingID))
	}
	b.WriteString("\n\n")

	title := data.TitleView
	if data.TitleFocused {
		title = focusedStyle.Render("> ") + title
	} else {
		title = "  " + title
	}
	b.WriteString(title + "\n")

	check := Checkbox(data.Completed) + " completed"
	if data.CompletedFocused {
		check = focusedStyle.Render("> " + check)
	} else {
		check = "  " + check
	}
	b.WriteString(check + "\n\n")
	b.WriteString(buttonStyle.Render(data.SubmitLabel))
	return b.String()
}

func RenderListPanel(data ListPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("tasks: %d (%d done)\n", data.Total, data.Done))
	if data.Total == 0 {
		b.WriteString("(no tasks)")
		return b.String()
	}
	b.WriteString(data.ListView)
	return strings.TrimRight(b.String(), "\n")
}

// RenderItemLine renders one list row. Completed titles are struck through.
func RenderItemLine(item ItemData, index int, selected bool) string {
	cursor := " "
	if selected {
		cursor = cursorStyle.Render(">")
	}
	title := item.Title
	if strings.TrimSpace(title) == "" {
		title = "(untitled)"
	}
	if item.Completed {
		title = completedStyle.Render(title)
	}
	return fmt.Sprintf("%s %d. %s %s", cursor, index+1, Checkbox(item.Completed), title)
}

func Checkbox(done bool) string {
	if done {
		return "[x]"
	}
	return "[ ]"
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: %s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	md := "## keys\n\n" + strings.Join(data.Bindings, "\n") +
		"\n\n## commands\n\n`add <title>` `edit <n>` `rm <n>` `done <n>` `title <text>` `complete` `incomplete` `submit` `cancel` `refresh`"
	return RenderMarkdown(md) + "\n" + data.HelpView
}

// RenderNotifications lists the most recent notifications, newest last.
func RenderNotifications(items []NotificationData) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items)+1)
	lines = append(lines, "recent:")
	for _, n := range items {
		line := fmt.Sprintf("%s %s", n.At.Format("15:04:05"), n.Body)
		if n.Level == "error" {
			line = errorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
