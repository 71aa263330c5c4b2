package ui

import (
	"os"

	"github.com/desertthunder/listsync/internal/tasks"
	"github.com/mattn/go-isatty"
)

var (
	_ tasks.Decider = (*Prompt)(nil)
	_ tasks.Decider = (*LinePrompt)(nil)
)

// IsTerminal reports whether f is attached to a terminal (including Cygwin/MSYS ptys).
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// NewDecider picks the bubbletea [Prompt] when both streams are terminals and a [LinePrompt] otherwise.
func NewDecider(in, out *os.File) tasks.Decider {
	if IsTerminal(in) && IsTerminal(out) {
		return NewPrompt(in, out)
	}
	return NewLinePrompt(in, out)
}
