package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

type lineResult struct {
	line string
	err  error
}

// LinePrompt asks yes/no questions on plain streams, for pipes and non-interactive shells.
//
// Only "y" or "yes" (any case) accepts; every other answer, including end of input, declines.
type LinePrompt struct {
	in      *bufio.Reader
	out     io.Writer
	pending chan lineResult // Read left running by a cancelled Decide
}

func NewLinePrompt(in io.Reader, out io.Writer) *LinePrompt {
	return &LinePrompt{in: bufio.NewReader(in), out: out}
}

// Decide returns ctx.Err() as soon as ctx is done, even while the read is blocked.
// The abandoned read answers the next call.
func (p *LinePrompt) Decide(ctx context.Context, question string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if _, err := io.WriteString(p.out, question); err != nil {
		return false, fmt.Errorf("failed to write prompt: %w", err)
	}

	if p.pending == nil {
		p.pending = make(chan lineResult, 1)
		go func(in *bufio.Reader, results chan<- lineResult) {
			line, err := in.ReadString('\n')
			results <- lineResult{line: line, err: err}
		}(p.in, p.pending)
	}

	var res lineResult
	select {
	case res = <-p.pending:
		p.pending = nil
	case <-ctx.Done():
		return false, ctx.Err()
	}

	line, err := res.line, res.err
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(p.out)
		return false, nil
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
