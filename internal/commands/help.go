package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"optitask/internal/config"
	"optitask/internal/exitcode"
	"optitask/internal/service"
)

func init() {
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "optitask help" }
func (c *HelpCmd) NeedsStore() bool  { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, _ service.RecordStore, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  optitask                                   List tasks
  optitask list [common flags] [--long]      List tasks, --long adds timestamps
  optitask add [common flags] <title...>
  optitask create [common flags] <title...>
  optitask edit [common flags] <n> <title...>
  optitask toggle [common flags] <n>         Also: done
  optitask rm [common flags] <n>
  optitask shell [common flags]              Interactive editing
  optitask serve [common flags] [--addr <host:port>] [--db <path> | --empty]
  optitask login [common flags]
  optitask logout [common flags]
  optitask help
  optitask version

Tasks are numbered as shown by list.

Common flags:
  --config <dir>      Override config directory
  --backend <name>    Record store: http, google or memory
  --quiet             Suppress informational output
  --debug             Print debug logs to stderr
`
