package notifier

import (
	"os"

	"golang.org/x/term"
)

const (
	ansiBold   = "\x1b[1m"
	ansiItalic = "\x1b[3m"
	ansiReset  = "\x1b[0m"
)

// Styler applies ANSI text styles when enabled.
type Styler struct {
	Enabled bool
}

// NewStyler enables styling when f is a terminal and NO_COLOR is unset.
func NewStyler(f *os.File) Styler {
	if os.Getenv("NO_COLOR") != "" {
		return Styler{}
	}
	return Styler{Enabled: term.IsTerminal(int(f.Fd()))}
}

func (s Styler) Bold(text string) string   { return s.wrap(ansiBold, text) }
func (s Styler) Italic(text string) string { return s.wrap(ansiItalic, text) }

func (s Styler) wrap(code, text string) string {
	if !s.Enabled {
		return text
	}
	return code + text + ansiReset
}
