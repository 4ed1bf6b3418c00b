package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"optitask/internal/config"
	"optitask/internal/exitcode"
	"optitask/internal/optimistic"
	"optitask/internal/service"
)

func init() {
	Register(&EditCmd{})
}

// EditCmd implements the edit command.
type EditCmd struct{}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return []string{"rename"} }
func (c *EditCmd) Synopsis() string  { return "Change a task's title" }
func (c *EditCmd) Usage() string     { return "optitask edit <n> <title...>" }
func (c *EditCmd) NeedsStore() bool  { return true }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, store service.RecordStore, args []string, out, errOut io.Writer) int {
	num, rest, err := ParseTaskRef(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	// Reject a blank title before contacting the store
	title := strings.Join(rest, " ")
	if err := service.ValidateTitle(title); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
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

	intent, err := optimistic.NewUpdate(task.ID, title)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return finish(cfg, s.Submit(ctx, intent), out, errOut)
}
