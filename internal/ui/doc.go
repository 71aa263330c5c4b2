// Package ui implements the operator prompts used while syncing.
//
// Missing lists are offered for creation one at a time. On a terminal the question is a small bubbletea program
// ([Prompt]) answered with y/n, or by choosing with the arrow keys and pressing enter; q aborts the run.
// Elsewhere (pipes, CI) a [LinePrompt] reads one answer per line. [NewDecider] chooses between them with go-isatty.
//
// The lipgloss [Palette] is shared with the CLI for colored status output.
package ui
