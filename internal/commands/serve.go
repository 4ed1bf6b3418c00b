package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net"
	"time"

	"optitask/internal/backend/httpapi"
	"optitask/internal/backend/memstore"
	"optitask/internal/backend/sqlitestore"
	"optitask/internal/config"
	"optitask/internal/exitcode"
	"optitask/internal/logging"
	"optitask/internal/service"
)

const (
	// DefaultServeAddr is where serve listens unless --addr is given.
	DefaultServeAddr = "127.0.0.1:8787"

	// StarterTask is the title of the task an in-memory server starts with.
	StarterTask = "Learn optitask"

	shutdownTimeout = 5 * time.Second
)

func init() {
	Register(&ServeCmd{})
}

// ServeCmd runs the HTTP Record Store.
type ServeCmd struct {
	addr   string
	dbPath string
	empty  bool

	// Ready, when set, is called with the bound address once listening.
	Ready func(net.Addr)
}

// SetAddr sets the listen address (for testing).
func (c *ServeCmd) SetAddr(addr string) {
	c.addr = addr
}

func (c *ServeCmd) Name() string      { return "serve" }
func (c *ServeCmd) Aliases() []string { return nil }
func (c *ServeCmd) Synopsis() string  { return "Run the HTTP record store" }
func (c *ServeCmd) Usage() string     { return "optitask serve [--addr <host:port>] [--db <path> | --empty]" }
func (c *ServeCmd) NeedsStore() bool  { return false }

func (c *ServeCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.addr, "addr", DefaultServeAddr, "")
	fs.StringVar(&c.dbPath, "db", "", "")
	fs.BoolVar(&c.empty, "empty", false, "")
}

func (c *ServeCmd) Run(ctx context.Context, cfg *config.Config, _ service.RecordStore, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}
	addr := c.addr
	if addr == "" {
		addr = DefaultServeAddr
	}
	logger := logging.New(errOut, cfg.Debug)

	var store service.RecordStore
	if c.dbPath == "" {
		mem := memstore.New()
		if !c.empty {
			mem.Seed(service.Task{Title: StarterTask, CreatedAt: mem.Now()})
		}
		store = mem
	} else {
		db, err := sqlitestore.Open(ctx, c.dbPath)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		defer db.Close()
		store = db
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		fmt.Fprintf(errOut, "error: listen %s: %v\n", addr, err)
		return exitcode.BackendError
	}

	srv := httpapi.NewServer(store, addr, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()
	if c.Ready != nil {
		c.Ready(ln.Addr())
	}

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			return exitcode.BackendError
		}
		return exitcode.Success
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(errOut, "error: shutdown: %v\n", err)
		return exitcode.BackendError
	}
	<-errCh
	return exitcode.Success
}
