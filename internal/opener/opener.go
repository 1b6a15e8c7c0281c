// Package opener hands purchase links to the desktop's URL handler.
package opener

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// ErrOpenFailed means the URL handler could not be run.
var ErrOpenFailed = errors.New("can't open purchase URL")

// Opener opens a URL.
type Opener interface {
	Open(ctx context.Context, url string) error
}

// CommandOpener runs an external command with the URL as its last argument.
type CommandOpener struct {
	// Command may carry arguments, e.g. "firefox --new-tab".
	Command string
	// run is swapped in tests.
	run func(ctx context.Context, name string, args ...string) error
}

// NewCommandOpener returns an opener that runs command.
func NewCommandOpener(command string) *CommandOpener {
	return &CommandOpener{Command: command, run: runCommand}
}

// Open blocks until the command exits.
func (o *CommandOpener) Open(ctx context.Context, url string) error {
	fields := strings.Fields(o.Command)
	if len(fields) == 0 {
		return fmt.Errorf("%w: no open command configured", ErrOpenFailed)
	}
	args := append(fields[1:], url)
	if err := o.run(ctx, fields[0], args...); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrOpenFailed, fields[0], err)
	}
	return nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil && len(out) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return err
}
