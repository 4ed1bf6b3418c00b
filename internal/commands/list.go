package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"optitask/internal/config"
	"optitask/internal/exitcode"
	"optitask/internal/output"
	"optitask/internal/service"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `optitask` (no args) and `optitask list`.
type ListCmd struct {
	long bool
}

// SetLong enables the timestamp lines (for testing).
func (c *ListCmd) SetLong(long bool) {
	c.long = long
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string     { return "optitask list [--long]" }
func (c *ListCmd) NeedsStore() bool  { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.long, "long", false, "")
	fs.BoolVar(&c.long, "l", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, store service.RecordStore, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	s, code := openSession(ctx, cfg, store, errOut)
	if s == nil {
		return code
	}

	tasks := displayed(cfg, s)
	if len(tasks) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no tasks found")
		}
		return exitcode.Success
	}
	output.FormatList(out, tasks, c.long)
	return exitcode.Success
}
