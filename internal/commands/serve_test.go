package commands_test

import (
	"bytes"
	"context"
	"flag"
	"net"
	"path/filepath"
	"testing"

	"optitask/internal/backend/httpapi"
	"optitask/internal/commands"
	"optitask/internal/exitcode"
	"optitask/internal/service"
)

// serveOnce runs serve on a random port, calls use with a client for it,
// then stops the server.
func serveOnce(t *testing.T, args []string, use func(*httpapi.Client)) {
	t.Helper()
	cmd := &commands.ServeCmd{}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cmd.SetAddr("127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cmd.Ready = func(addr net.Addr) {
		defer cancel()
		use(httpapi.NewClient("http://"+addr.String(), nil))
	}

	var outBuf, errBuf bytes.Buffer
	code := cmd.Run(ctx, testConfig(t, false), nil, fs.Args(), &outBuf, &errBuf)
	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d (stderr %q)", exitcode.Success, code, errBuf.String())
	}
}

func TestServeCommand_InMemoryStartsWithStarterTask(t *testing.T) {
	serveOnce(t, nil, func(c *httpapi.Client) {
		tasks, err := c.ListTasks(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(tasks) != 1 || tasks[0].ID != "1" || tasks[0].Title != commands.StarterTask || tasks[0].Completed {
			t.Errorf("expected the starter task, got %+v", tasks)
		}
		if tasks[0].CreatedAt.IsZero() {
			t.Error("expected the starter task to have a creation time")
		}
	})
}

func TestServeCommand_InMemory(t *testing.T) {
	serveOnce(t, []string{"--empty"}, func(c *httpapi.Client) {
		ctx := context.Background()
		created, err := c.CreateTask(ctx, "Buy milk")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := c.ToggleTask(ctx, created.ID); err != nil {
			t.Fatalf("toggle: %v", err)
		}
		tasks, err := c.ListTasks(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(tasks) != 1 || !tasks[0].Completed {
			t.Errorf("expected one completed task, got %+v", tasks)
		}
	})
}

func TestServeCommand_SQLitePersists(t *testing.T) {
	args := []string{"--db", filepath.Join(t.TempDir(), "tasks.db")}

	serveOnce(t, args, func(c *httpapi.Client) {
		if _, err := c.CreateTask(context.Background(), "Buy milk"); err != nil {
			t.Fatalf("create: %v", err)
		}
	})

	serveOnce(t, args, func(c *httpapi.Client) {
		tasks, err := c.ListTasks(context.Background())
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "Buy milk" {
			t.Errorf("expected persisted task, got %+v", tasks)
		}
		if err := c.DeleteTask(context.Background(), service.ID("42")); service.KindOf(err) != service.KindNotFound {
			t.Errorf("expected not found, got %v", err)
		}
	})
}

func TestServeCommand_UnexpectedArgument(t *testing.T) {
	var outBuf, errBuf bytes.Buffer
	code := (&commands.ServeCmd{}).Run(context.Background(), testConfig(t, false), nil, []string{"extra"}, &outBuf, &errBuf)

	if code != exitcode.UserError {
		t.Errorf("expected exit code %d, got %d", exitcode.UserError, code)
	}
	if errBuf.String() != "error: unexpected argument: extra\n" {
		t.Errorf("unexpected stderr %q", errBuf.String())
	}
}
