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
	Register(&AddCmd{})
	Register(&CreateCmd{})
}

// AddCmd implements the add command.
type AddCmd struct{}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return nil }
func (c *AddCmd) Synopsis() string  { return "Create a task" }
func (c *AddCmd) Usage() string     { return "optitask add <title...>" }
func (c *AddCmd) NeedsStore() bool  { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, store service.RecordStore, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, store, args, out, errOut)
}

// CreateCmd is an alias for AddCmd.
type CreateCmd struct{}

func (c *CreateCmd) Name() string      { return "create" }
func (c *CreateCmd) Aliases() []string { return nil }
func (c *CreateCmd) Synopsis() string  { return "Create a task (alias for add)" }
func (c *CreateCmd) Usage() string     { return "optitask create <title...>" }
func (c *CreateCmd) NeedsStore() bool  { return true }

func (c *CreateCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *CreateCmd) Run(ctx context.Context, cfg *config.Config, store service.RecordStore, args []string, out, errOut io.Writer) int {
	return runAdd(ctx, cfg, store, args, out, errOut)
}

// runAdd is the shared implementation for add and create commands.
// A create never needs the current list, so the cache starts empty.
func runAdd(ctx context.Context, cfg *config.Config, store service.RecordStore, args []string, out, errOut io.Writer) int {
	intent, err := optimistic.NewCreate(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	s := newSynchronizer(cfg, store, errOut)
	return finish(cfg, s.Submit(ctx, intent), out, errOut)
}
