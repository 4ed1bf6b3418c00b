package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"optitask/internal/config"
	"optitask/internal/exitcode"
	"optitask/internal/optimistic"
	"optitask/internal/output"
	"optitask/internal/service"
)

func init() {
	Register(&ShellCmd{})
}

// ShellCmd implements the interactive shell. Mutations run in the background
// so the list reflects them before the store answers.
type ShellCmd struct {
	// In is read for commands; nil means os.Stdin.
	In io.Reader
}

func (c *ShellCmd) Name() string      { return "shell" }
func (c *ShellCmd) Aliases() []string { return nil }
func (c *ShellCmd) Synopsis() string  { return "Edit tasks interactively" }
func (c *ShellCmd) Usage() string     { return "optitask shell" }
func (c *ShellCmd) NeedsStore() bool  { return true }

func (c *ShellCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ShellCmd) Run(ctx context.Context, cfg *config.Config, store service.RecordStore, args []string, out, errOut io.Writer) int {
	in := c.In
	if in == nil {
		in = os.Stdin
	}

	sh := &shell{ctx: ctx, cfg: cfg, out: out, errOut: errOut}
	sh.engine = newSynchronizer(cfg, store, errOut)
	if err := sh.engine.Refresh(ctx); err != nil {
		printError(errOut, err)
		return exitcode.ForError(err)
	}

	sh.loop(in)
	sh.wg.Wait()
	return exitcode.Success
}

const shellHelp = `Commands:
  ls               Show tasks and pending operations
  add <title>      Create a task
  edit <n>         Start editing task n
  set <title>      Save the title of the task being edited
  cancel           Stop editing
  toggle <n>       Flip task n between open and completed
  rm <n>           Delete task n
  refresh          Reload tasks from the store
  wait             Wait for pending operations
  help             Show this help
  quit             Wait for pending operations and exit
`

type shell struct {
	ctx    context.Context
	cfg    *config.Config
	engine *optimistic.Synchronizer
	out    io.Writer
	errOut io.Writer
	wg     sync.WaitGroup

	mu      sync.Mutex // guards editing and writes to out/errOut
	editing service.ID
}

func (sh *shell) loop(in io.Reader) {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "ls", "list":
			sh.list()
		case "add":
			intent, err := optimistic.NewCreate(rest)
			sh.submit(intent, err)
		case "edit":
			sh.edit(rest)
		case "set":
			sh.set(rest)
		case "cancel":
			sh.mu.Lock()
			sh.editing = ""
			sh.mu.Unlock()
		case "toggle", "done":
			sh.byRef(rest, func(id service.ID) (optimistic.Intent, error) { return optimistic.NewToggle(id) })
		case "rm", "delete":
			sh.byRef(rest, func(id service.ID) (optimistic.Intent, error) { return optimistic.NewDelete(id) })
		case "refresh":
			sh.refresh()
		case "wait":
			sh.wg.Wait()
		case "help":
			sh.printf(sh.out, "%s", shellHelp)
		case "quit", "exit":
			return
		default:
			sh.printf(sh.errOut, "error: unknown command: %s\n", cmd)
		}
	}
}

func (sh *shell) printf(w io.Writer, format string, args ...any) {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	fmt.Fprintf(w, format, args...)
}

// closeOrphanedEditLocked drops the edit target once its task has left the
// reconciled list. It does nothing while a delete is pending. Callers hold sh.mu.
func (sh *shell) closeOrphanedEditLocked() {
	if sh.editing == "" || sh.engine.Pending(optimistic.KindDelete) {
		return
	}
	if !service.Contains(sh.engine.Snapshot(), sh.editing) {
		sh.editing = ""
		fmt.Fprintln(sh.out, "edit closed: task no longer exists")
	}
}

func (sh *shell) list() {
	tasks := displayed(sh.cfg, sh.engine)

	sh.mu.Lock()
	defer sh.mu.Unlock()
	if len(tasks) == 0 {
		fmt.Fprintln(sh.out, "no tasks")
	} else {
		output.FormatList(sh.out, tasks, false)
	}

	var pending []string
	for _, k := range optimistic.Kinds {
		if sh.engine.Pending(k) {
			pending = append(pending, k.String())
		}
	}
	if len(pending) > 0 {
		fmt.Fprintf(sh.out, "pending: %s\n", strings.Join(pending, ", "))
	}
	if sh.editing != "" {
		for i, t := range tasks {
			if t.ID == sh.editing {
				fmt.Fprintf(sh.out, "editing: %d\n", i+1)
			}
		}
	}
}

func (sh *shell) resolve(arg string) (service.Task, bool) {
	num, rest, err := ParseTaskRef(strings.Fields(arg))
	if err == nil && len(rest) > 0 {
		err = fmt.Errorf("unexpected argument: %s", rest[0])
	}
	if err != nil {
		sh.printf(sh.errOut, "error: %v\n", err)
		return service.Task{}, false
	}
	task, err := ResolveTaskRef(displayed(sh.cfg, sh.engine), num)
	if err != nil {
		sh.printf(sh.errOut, "error: %v\n", err)
		return service.Task{}, false
	}
	return task, true
}

func (sh *shell) edit(arg string) {
	task, ok := sh.resolve(arg)
	if !ok {
		return
	}
	sh.mu.Lock()
	defer sh.mu.Unlock()
	sh.editing = task.ID
	fmt.Fprintf(sh.out, "editing: %s\n", task.Title)
}

func (sh *shell) set(title string) {
	sh.mu.Lock()
	id := sh.editing
	sh.mu.Unlock()
	if id == "" {
		sh.printf(sh.errOut, "error: no task being edited\n")
		return
	}

	intent, err := optimistic.NewUpdate(id, title)
	if err != nil {
		sh.printf(sh.errOut, "error: %v\n", err)
		return
	}
	sh.run(intent, func() {
		if sh.editing == id {
			sh.editing = ""
		}
	})
}

func (sh *shell) byRef(arg string, build func(service.ID) (optimistic.Intent, error)) {
	task, ok := sh.resolve(arg)
	if !ok {
		return
	}
	intent, err := build(task.ID)
	sh.submit(intent, err)
}

func (sh *shell) submit(intent optimistic.Intent, err error) {
	if err != nil {
		sh.printf(sh.errOut, "error: %v\n", err)
		return
	}
	sh.run(intent, nil)
}

// run submits intent in the background. done runs under sh.mu once the
// intent is terminal.
func (sh *shell) run(intent optimistic.Intent, done func()) {
	sh.wg.Add(1)
	go func() {
		defer sh.wg.Done()
		res := sh.engine.Submit(sh.ctx, intent)

		sh.mu.Lock()
		defer sh.mu.Unlock()
		if done != nil {
			done()
		}
		sh.closeOrphanedEditLocked()
		switch res.Outcome {
		case optimistic.Committed:
			if !sh.cfg.Quiet {
				fmt.Fprintf(sh.out, "saved: %s\n", intent.Kind())
			}
		case optimistic.Reverted:
			fmt.Fprintf(sh.errOut, "error: %s failed and was undone: %v\n", intent.Kind(), res.Err)
		default:
			fmt.Fprintf(sh.errOut, "error: %s not applied: %v\n", intent.Kind(), res.Err)
		}
	}()
}

func (sh *shell) refresh() {
	err := sh.engine.Refresh(sh.ctx)
	switch {
	case err == nil:
		sh.mu.Lock()
		defer sh.mu.Unlock()
		sh.closeOrphanedEditLocked()
		if !sh.cfg.Quiet {
			fmt.Fprintln(sh.out, "ok")
		}
	case errors.Is(err, optimistic.ErrSuperseded):
		sh.printf(sh.errOut, "refresh skipped: changes in flight\n")
	default:
		sh.printf(sh.errOut, "error: backend error: %v\n", err)
	}
}
