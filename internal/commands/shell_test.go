package commands_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"optitask/internal/commands"
	"optitask/internal/exitcode"
	"optitask/internal/service"
	"optitask/internal/testutil"
)

func runShell(t *testing.T, store service.RecordStore, script string) (stdout, stderr string, code int) {
	t.Helper()
	cmd := &commands.ShellCmd{In: strings.NewReader(script)}
	return runCommand(t, cmd, store, nil, false)
}

func TestShell_AddAndList(t *testing.T) {
	store := testutil.NewFakeStore()

	stdout, stderr, code := runShell(t, store, "add Buy milk\nwait\nls\nquit\n")

	if code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "saved: create\n   1  [ ] Buy milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestShell_EditAndSet(t *testing.T) {
	store := testutil.NewFakeStore()
	store.AddTask("1", "Buy milk", false)

	stdout, stderr, _ := runShell(t, store, "edit 1\nset Buy oat milk\nwait\nls\n")

	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	expected := "editing: Buy milk\nsaved: update\n   1  [ ] Buy oat milk\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestShell_SetWithoutEdit(t *testing.T) {
	store := testutil.NewFakeStore()
	store.AddTask("1", "Buy milk", false)

	_, stderr, _ := runShell(t, store, "set Buy eggs\n")

	if stderr != "error: no task being edited\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if store.Calls("update") != 0 {
		t.Error("expected no update call")
	}
}

func TestShell_CancelEdit(t *testing.T) {
	store := testutil.NewFakeStore()
	store.AddTask("1", "Buy milk", false)

	_, stderr, _ := runShell(t, store, "edit 1\ncancel\nset Buy eggs\n")

	if stderr != "error: no task being edited\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestShell_BlankTitleIsRejectedLocally(t *testing.T) {
	store := testutil.NewFakeStore()
	store.AddTask("1", "Buy milk", false)

	_, stderr, _ := runShell(t, store, "add   \nedit 1\nset \nwait\n")

	expected := "error: task title cannot be empty\nerror: task title cannot be empty\n"
	if stderr != expected {
		t.Errorf("expected %q, got %q", expected, stderr)
	}
	if n := store.Calls("create") + store.Calls("update"); n != 0 {
		t.Errorf("expected no mutations, got %d", n)
	}
}

func TestShell_DeleteClosesEdit(t *testing.T) {
	store := testutil.NewFakeStore()
	store.AddTask("1", "Buy milk", false)

	stdout, _, _ := runShell(t, store, "edit 1\nrm 1\nwait\nls\nset Buy eggs\n")

	expected := "editing: Buy milk\nedit closed: task no longer exists\nsaved: delete\nno tasks\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
}

func TestShell_FailedDeleteIsUndone(t *testing.T) {
	store := testutil.NewFakeStore()
	store.AddTask("1", "Buy milk", false)
	store.DeleteTaskErr = service.Unavailable(errors.New("offline"))

	stdout, stderr, _ := runShell(t, store, "rm 1\nwait\nls\n")

	if stdout != "   1  [ ] Buy milk\n" {
		t.Errorf("expected task to be restored, got %q", stdout)
	}
	if !strings.HasPrefix(stderr, "error: delete failed and was undone: backend unavailable: offline") {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestShell_FailedDeleteKeepsEdit(t *testing.T) {
	store := testutil.NewFakeStore()
	store.AddTask("1", "Buy milk", false)
	store.DeleteTaskErr = service.Unavailable(errors.New("offline"))

	stdout, stderr, _ := runShell(t, store, "edit 1\nrm 1\nwait\nset Buy eggs\nwait\nls\n")

	expected := "editing: Buy milk\nsaved: update\n   1  [ ] Buy eggs\n"
	if stdout != expected {
		t.Errorf("expected %q, got %q", expected, stdout)
	}
	if !strings.HasPrefix(stderr, "error: delete failed and was undone") || strings.Contains(stderr, "no task being edited") {
		t.Errorf("unexpected stderr %q", stderr)
	}
	if store.Calls("update") != 1 {
		t.Errorf("expected one update call, got %d", store.Calls("update"))
	}
}

func TestShell_RefreshClosesEditOfRemovedTask(t *testing.T) {
	store := testutil.NewFakeStore()
	store.AddTask("1", "Buy milk", false)

	in, feed := io.Pipe()
	cmd := &commands.ShellCmd{In: in}
	cfg := testConfig(t, false)
	var outBuf, errBuf bytes.Buffer
	done := make(chan int, 1)
	go func() {
		done <- cmd.Run(context.Background(), cfg, store, nil, &outBuf, &errBuf)
	}()

	io.WriteString(feed, "edit 1\n")
	io.WriteString(feed, "\n") // returns once edit has been handled
	if err := store.DeleteTask(context.Background(), "1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	io.WriteString(feed, "refresh\nset Buy eggs\nquit\n")
	feed.Close()

	if code := <-done; code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "editing: Buy milk\nedit closed: task no longer exists\nok\n"
	if got := outBuf.String(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
	if got := errBuf.String(); got != "error: no task being edited\n" {
		t.Errorf("unexpected stderr %q", got)
	}
}

func TestShell_ToggleAndUnknownCommand(t *testing.T) {
	store := testutil.NewFakeStore()
	store.AddTask("1", "Buy milk", false)

	stdout, stderr, _ := runShell(t, store, "toggle 1\nwait\nls\nfrobnicate\n")

	if stdout != "saved: toggle\n   1  [x] Buy milk\n" {
		t.Errorf("unexpected stdout %q", stdout)
	}
	if stderr != "error: unknown command: frobnicate\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func TestShell_ShowsPendingWork(t *testing.T) {
	store := testutil.NewFakeStore()
	store.Started = make(chan string, 8)
	store.Block = make(chan struct{}, 1)
	store.Block <- struct{}{} // lets the initial refresh through

	in, feed := io.Pipe()
	cmd := &commands.ShellCmd{In: in}
	cfg := testConfig(t, false)
	var outBuf, errBuf bytes.Buffer
	done := make(chan int, 1)
	go func() {
		done <- cmd.Run(context.Background(), cfg, store, nil, &outBuf, &errBuf)
	}()

	expectOp(t, store.Started, "list")
	io.WriteString(feed, "add Buy milk\n")
	expectOp(t, store.Started, "create")
	io.WriteString(feed, "ls\n")
	io.WriteString(feed, "\n") // returns once ls has been handled
	close(store.Block)
	io.WriteString(feed, "wait\nls\nquit\n")
	feed.Close()

	if code := <-done; code != exitcode.Success {
		t.Fatalf("expected exit code %d, got %d", exitcode.Success, code)
	}
	expected := "   1  [ ] Buy milk (saving)\npending: create\nsaved: create\n   1  [ ] Buy milk\n"
	if got := outBuf.String(); got != expected {
		t.Errorf("expected %q, got %q", expected, got)
	}
}

func TestShell_InitialRefreshFails(t *testing.T) {
	store := testutil.NewFakeStore()
	store.ListTasksErr = service.Unavailable(errors.New("down"))

	_, stderr, code := runShell(t, store, "ls\n")

	if code != exitcode.BackendError {
		t.Errorf("expected exit code %d, got %d", exitcode.BackendError, code)
	}
	if stderr != "error: backend error: backend unavailable: down\n" {
		t.Errorf("unexpected stderr %q", stderr)
	}
}

func expectOp(t *testing.T, started <-chan string, want string) {
	t.Helper()
	select {
	case got := <-started:
		if got != want {
			t.Fatalf("expected %s call, got %s", want, got)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s call", want)
	}
}
