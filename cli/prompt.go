package cli

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TerminalPrompter answers repository prompts from an interactive terminal.
// Choices are displayed 1-based; answers are returned as 0-based indices.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func NewTerminalPrompter(in io.Reader, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(in), out: out}
}

func (p *TerminalPrompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (p *TerminalPrompter) SelectBranch(post string, branches []string) (int, error) {
	fmt.Fprintf(p.out, "Multiple branches carry %s:\n", post)
	for i, b := range branches {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, b)
	}
	fmt.Fprintf(p.out, "Select branch [1-%d]: ", len(branches))

	line, err := p.readLine()
	if err != nil {
		return 0, fmt.Errorf("failed to read branch selection: %w", err)
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(branches) {
		return 0, fmt.Errorf("invalid branch selection %q", line)
	}
	return n - 1, nil
}

func (p *TerminalPrompter) CommitMessage(post string) (string, error) {
	fmt.Fprintf(p.out, "Commit message for %s: ", post)
	line, err := p.readLine()
	if err != nil {
		return "", fmt.Errorf("failed to read commit message: %w", err)
	}
	return line, nil
}

func (p *TerminalPrompter) UseCurrentBranch(current, requested string) (bool, error) {
	fmt.Fprintf(p.out, "Stay on current branch %s instead of %s? [y/N]: ", current, requested)
	line, err := p.readLine()
	if err != nil {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	switch strings.ToLower(line) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
