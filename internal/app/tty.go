package app

import (
	"os"

	"github.com/mattn/go-isatty"
)

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func stdoutIsTerminal() bool { return isTerminal(os.Stdout) }

func stderrIsTerminal() bool { return isTerminal(os.Stderr) }

// interactive reports whether both ends of the session are a terminal, which
// is what the checklist selector and arrow-key prompts need.
func interactive() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}
