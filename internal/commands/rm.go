package commands

import (
	"context"
	"flag"
	"io"

	"optitask/internal/config"
	"optitask/internal/optimistic"
	"optitask/internal/service"
)

func init() {
	Register(&RmCmd{})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "optitask rm <n>" }
func (c *RmCmd) NeedsStore() bool  { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, store service.RecordStore, args []string, out, errOut io.Writer) int {
	return runByRef(ctx, cfg, store, args, out, errOut, func(id service.ID) (optimistic.Intent, error) {
		return optimistic.NewDelete(id)
	})
}
