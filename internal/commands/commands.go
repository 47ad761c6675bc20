package commands

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mattn/go-shellwords"
)

const prefix = "cmd"

// Command is a subcommand with its own flags and a Run function.
// Flags are defined on FlagSet; Run is called after Parse and receives the positional arguments.
type Command struct {
	Name    string
	Usage   string
	FlagSet *flag.FlagSet
	Run     func(args []string) (string, error)
}

// Registry holds subcommands by name. Add commands with Register; run with Execute.
type Registry struct {
	cmds map[string]*Command
}

// NewRegistry returns an empty command registry.
func NewRegistry() *Registry {
	return &Registry{cmds: make(map[string]*Command)}
}

// Register adds a subcommand. name is the first token after "cmd" (e.g. "model").
// fs may be nil for commands without flags; run is called after fs.Parse(args[1:]) succeeds
// and its output is shown to the user.
func (r *Registry) Register(name, usage string, fs *flag.FlagSet, run func(args []string) (string, error)) {
	if fs == nil {
		fs = flag.NewFlagSet(name, flag.ContinueOnError)
	}
	fs.SetOutput(io.Discard)
	r.cmds[name] = &Command{Name: name, Usage: usage, FlagSet: fs, Run: run}
}

// Names returns the registered subcommands in order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.cmds))
	for name := range r.cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Help lists every subcommand with its usage line.
func (r *Registry) Help() string {
	var b strings.Builder
	for i, name := range r.Names() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "cmd %s %s", name, r.cmds[name].Usage)
	}
	return strings.TrimRight(b.String(), " ")
}

// Parse interprets line as a terminal line. If its first word is "cmd", the rest is split
// with shell quoting rules and returned with ok true. Otherwise nil, false. A line with
// unbalanced quotes is still a command line and yields the split error.
func Parse(line string) (args []string, ok bool, err error) {
	trimmed := strings.TrimSpace(line)
	if trimmed != prefix && !strings.HasPrefix(trimmed, prefix+" ") {
		return nil, false, nil
	}
	args, err = shellwords.Parse(trimmed[len(prefix):])
	if err != nil {
		return nil, true, fmt.Errorf("cmd: %w", err)
	}
	return args, true, nil
}

// Execute runs the subcommand in args[0] with args[1:] as flag/positional arguments.
// Returns an error for unknown command, parse error, or from Run().
func (r *Registry) Execute(args []string) (string, error) {
	if len(args) == 0 {
		return "", errors.New("missing subcommand; try cmd help")
	}
	name := args[0]
	if name == "help" {
		return r.Help(), nil
	}
	cmd, ok := r.cmds[name]
	if !ok {
		return "", fmt.Errorf("unknown command: %s", name)
	}
	if err := cmd.FlagSet.Parse(args[1:]); err != nil {
		return "", fmt.Errorf("%s: %w", name, err)
	}
	return cmd.Run(cmd.FlagSet.Args())
}
