// Package logging builds the process logger. While the TUI runs the
// terminal belongs to it, so records go to a file or nowhere. Headless
// commands write warnings and errors to stderr.
package logging

import (
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/todosync/internal/config"
)

// Open returns a text logger writing to cfg.LogFile at cfg.LogLevel and a
// close func for the file. An empty LogFile yields a discarding logger.
func Open(cfg config.RuntimeConfig) (*slog.Logger, func() error, error) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if cfg.LogFile == "" {
		return Discard(), func() error { return nil }, nil
	}
	f, err := tea.LogToFile(cfg.LogFile, "todosync")
	if err != nil {
		return nil, nil, err
	}
	return New(f, level), f.Close, nil
}

// Stderr returns a logger for headless commands writing to w. Records
// below warn are dropped whatever cfg.LogLevel says.
func Stderr(w io.Writer, cfg config.RuntimeConfig) (*slog.Logger, error) {
	level, err := config.ParseLogLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return New(w, max(level, slog.LevelWarn)), nil
}

func New(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
