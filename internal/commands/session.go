package commands

import (
	"context"
	"fmt"
	"io"

	"optitask/internal/cache"
	"optitask/internal/config"
	"optitask/internal/exitcode"
	"optitask/internal/logging"
	"optitask/internal/optimistic"
	"optitask/internal/output"
	"optitask/internal/service"
)

// newSynchronizer wires a fresh cache and synchronizer to store.
// Engine logs only reach errOut with --debug.
func newSynchronizer(cfg *config.Config, store service.RecordStore, errOut io.Writer) *optimistic.Synchronizer {
	logger := logging.Discard()
	if cfg.Debug {
		logger = logging.New(errOut, true)
	}
	return optimistic.New(store, cache.New(), optimistic.Options{Logger: logger})
}

// openSession creates a synchronizer and fills its cache from the store.
// On failure it prints the error and returns a non-zero exit code.
func openSession(ctx context.Context, cfg *config.Config, store service.RecordStore, errOut io.Writer) (*optimistic.Synchronizer, int) {
	s := newSynchronizer(cfg, store, errOut)
	if err := s.Refresh(ctx); err != nil {
		printError(errOut, err)
		return nil, exitcode.ForError(err)
	}
	return s, exitcode.Success
}

// displayed returns the cache contents in display order.
func displayed(cfg *config.Config, s *optimistic.Synchronizer) []service.Task {
	return output.Ordered(s.Snapshot(), cfg.Settings.ShowNewestFirst())
}

// finish reports a terminal mutation result and returns the exit code.
func finish(cfg *config.Config, res optimistic.Result, out, errOut io.Writer) int {
	if res.Outcome == optimistic.Committed {
		if !cfg.Quiet {
			fmt.Fprintln(out, "ok")
		}
		return exitcode.Success
	}
	printError(errOut, res.Err)
	return exitcode.ForError(res.Err)
}

// printError prints err in the CLI's "error: ..." format.
func printError(errOut io.Writer, err error) {
	switch service.KindOf(err) {
	case service.KindValidation:
		fmt.Fprintf(errOut, "error: %v\n", err)
	case service.KindNotFound:
		fmt.Fprintln(errOut, "error: task not found")
	case service.KindInvalid:
		fmt.Fprintf(errOut, "error: rejected by backend: %v\n", err)
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
	}
}
