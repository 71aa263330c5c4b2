package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/listsync/internal/shared"
)

// confirmModel is a single yes/no question.
//
// It quits as soon as the operator answers or aborts; the answer is read back from the final model.
type confirmModel struct {
	question string
	choice   bool
	answered bool
	aborted  bool
	help     help.Model
	keys     keyMap
}

func newConfirmModel(question string) confirmModel {
	return confirmModel{
		question: strings.TrimSpace(question),
		help:     help.New(),
		keys:     newKeyMap(),
	}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			m.aborted = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.yes):
			m.choice, m.answered = true, true
			return m, tea.Quit
		case key.Matches(msg, m.keys.no):
			m.choice, m.answered = false, true
			return m, tea.Quit
		case key.Matches(msg, m.keys.toggle):
			m.choice = !m.choice
			return m, nil
		case key.Matches(msg, m.keys.enter):
			m.answered = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m confirmModel) View() string {
	switch {
	case m.aborted:
		return fmt.Sprintf("%s %s\n", m.question, styles.Err("aborted"))
	case m.answered && m.choice:
		return fmt.Sprintf("%s %s\n", m.question, styles.OK("y"))
	case m.answered:
		return fmt.Sprintf("%s %s\n", m.question, styles.Warn("n"))
	}

	yes, no := "  yes  ", "  no  "
	if m.choice {
		yes = styles.Title("[ yes ]")
	} else {
		no = styles.Title("[ no ]")
	}

	return fmt.Sprintf("%s\n\n  %s %s\n\n%s\n", m.question, yes, no, m.help.ShortHelpView(m.keys.ShortHelp()))
}

// Prompt asks yes/no questions with a bubbletea program on a terminal.
type Prompt struct {
	in  io.Reader
	out io.Writer
}

// NewPrompt creates a [Prompt]. Nil streams use the program defaults (stdin/stdout).
func NewPrompt(in io.Reader, out io.Writer) *Prompt {
	return &Prompt{in: in, out: out}
}

// Decide shows question and blocks until the operator answers.
//
// Aborting (q, esc, ctrl+c) returns [shared.ErrAborted].
func (p *Prompt) Decide(ctx context.Context, question string) (bool, error) {
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if p.in != nil {
		opts = append(opts, tea.WithInput(p.in))
	}
	if p.out != nil {
		opts = append(opts, tea.WithOutput(p.out))
	}

	final, err := tea.NewProgram(newConfirmModel(question), opts...).Run()
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return false, ctxErr
		}
		return false, fmt.Errorf("prompt failed: %w", err)
	}

	return answerOf(final)
}

func answerOf(final tea.Model) (bool, error) {
	m, ok := final.(confirmModel)
	if !ok {
		return false, errors.New("unexpected prompt model")
	}
	if m.aborted || !m.answered {
		return false, shared.ErrAborted
	}
	return m.choice, nil
}
