package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"optitask/internal/config"
	"optitask/internal/exitcode"
	"optitask/internal/optimistic"
	"optitask/internal/service"
)

func init() {
	Register(&ToggleCmd{})
}

// ToggleCmd implements the toggle command.
type ToggleCmd struct{}

func (c *ToggleCmd) Name() string      { return "toggle" }
func (c *ToggleCmd) Aliases() []string { return []string{"done"} }
func (c *ToggleCmd) Synopsis() string  { return "Flip a task between open and completed" }
func (c *ToggleCmd) Usage() string     { return "optitask toggle <n>" }
func (c *ToggleCmd) NeedsStore() bool  { return true }

func (c *ToggleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ToggleCmd) Run(ctx context.Context, cfg *config.Config, store service.RecordStore, args []string, out, errOut io.Writer) int {
	return runByRef(ctx, cfg, store, args, out, errOut, func(id service.ID) (optimistic.Intent, error) {
		return optimistic.NewToggle(id)
	})
}

// runByRef resolves the task reference in args against the current list and
// submits the intent built for it.
func runByRef(ctx context.Context, cfg *config.Config, store service.RecordStore, args []string, out, errOut io.Writer, build func(service.ID) (optimistic.Intent, error)) int {
	num, rest, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if len(rest) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", rest[0])
		return exitcode.UserError
	}

	s, code := openSession(ctx, cfg, store, errOut)
	if s == nil {
		return code
	}

	task, err := ResolveTaskRef(displayed(cfg, s), num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	intent, err := build(task.ID)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return finish(cfg, s.Submit(ctx, intent), out, errOut)
}
