package console

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"scenedebug/internal/config"
	"scenedebug/internal/inspect"
	"scenedebug/internal/refchain"
	"scenedebug/internal/script"
	"scenedebug/internal/watch"

	"github.com/buildkite/shellwords"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrUsage          = errors.New("usage")
)

// Env is what the commands operate on. Every field is required.
type Env struct {
	History  *History
	Explorer *inspect.Explorer
	Mutator  *inspect.Mutator
	Watches  *watch.List
	Script   *script.REPL
	Settings *config.Store
}

type command struct {
	names []string
	usage string
	help  string
	// raw commands get the rest of the line unsplit as their only argument
	raw bool
	f   func(c *Console, w io.Writer, args []string) error
}

// Console runs command lines against the explorer. Like the explorer it
// must only be used from the frame loop.
type Console struct {
	Env
	commands []command
}

func New(env Env) *Console {
	return &Console{Env: env, commands: builtins()}
}

func (c *Console) lookup(name string) (command, bool) {
	for _, cmd := range c.commands {
		if slices.Contains(cmd.names, name) {
			return cmd, true
		}
	}
	return command{}, false
}

// Exec runs one command line and writes its output to w. The line is
// recorded in the history as input.
func (c *Console) Exec(w io.Writer, line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	c.History.Add(SeverityInput, "> "+line)

	name := strings.Fields(line)[0]
	cmd, ok := c.lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s (try help)", ErrUnknownCommand, name)
	}
	if cmd.raw {
		return cmd.f(c, w, []string{strings.TrimSpace(line[len(name):])})
	}
	parts, err := shellwords.SplitPosix(line)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return cmd.f(c, w, parts[1:])
}

func (c *Console) chain(path string) (*refchain.Chain, error) {
	return inspect.ParsePath(c.Explorer.Scene(), path, c.Explorer.Options().MaxDepth)
}

func usage(cmd string) error {
	for _, b := range builtins() {
		if b.names[0] == cmd {
			return fmt.Errorf("%w: %s", ErrUsage, b.usage)
		}
	}
	return ErrUsage
}
