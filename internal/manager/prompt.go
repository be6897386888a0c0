package manager

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/manifoldco/promptui"
)

// Prompter asks the user a single free-text question.
type Prompter interface {
	// Prompt shows label and returns the trimmed answer. An empty answer
	// yields def. Interrupts are reported as ErrAborted.
	Prompt(label, def string) (string, error)
}

// Console is a line-oriented prompter over plain reader and writer streams.
// The selector and the confirmations share one Console so buffered input is
// never lost between prompts.
type Console struct {
	in  *bufio.Reader
	out io.Writer
}

// NewConsole wraps in and out.
func NewConsole(in io.Reader, out io.Writer) *Console {
	return &Console{in: bufio.NewReader(in), out: out}
}

// Prompt implements Prompter.
func (c *Console) Prompt(label, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(c.out, "%s [%s]: ", label, def)
	} else {
		fmt.Fprintf(c.out, "%s: ", label)
	}
	line, err := c.in.ReadString('\n')
	if err != nil {
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading answer: %w", err)
		}
		if line == "" {
			fmt.Fprintln(c.out)
			return def, io.EOF
		}
	}
	answer := strings.TrimSpace(line)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// TerminalPrompter prompts through promptui, for interactive terminals.
type TerminalPrompter struct {
	Stdin  io.ReadCloser
	Stdout io.WriteCloser
}

// Prompt implements Prompter.
func (p TerminalPrompter) Prompt(label, def string) (string, error) {
	prompt := promptui.Prompt{
		Label:   label,
		Default: def,
		Stdin:   p.Stdin,
		Stdout:  p.Stdout,
	}
	answer, err := prompt.Run()
	if err != nil {
		if errors.Is(err, promptui.ErrInterrupt) {
			return "", ErrAborted
		}
		if errors.Is(err, promptui.ErrEOF) {
			return def, io.EOF
		}
		return "", fmt.Errorf("prompting: %w", err)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
