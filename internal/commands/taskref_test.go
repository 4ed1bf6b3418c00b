package commands

import (
	"errors"
	"testing"

	"optitask/internal/service"
)

func TestParseTaskRef(t *testing.T) {
	num, rest, err := ParseTaskRef([]string{"5", "new", "title"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if num != 5 {
		t.Errorf("expected 5, got %d", num)
	}
	if len(rest) != 2 || rest[0] != "new" {
		t.Errorf("unexpected rest: %v", rest)
	}
}

func TestParseTaskRef_Empty(t *testing.T) {
	_, _, err := ParseTaskRef(nil)
	if err != ErrTaskRefRequired {
		t.Errorf("expected ErrTaskRefRequired, got %v", err)
	}
}

func TestParseTaskRef_Invalid(t *testing.T) {
	for _, arg := range []string{"abc", "a1", "-1", "1.5", "٣"} {
		_, _, err := ParseTaskRef([]string{arg})
		if err == nil {
			t.Errorf("%q: expected error", arg)
			continue
		}
		if want := "invalid task reference: " + arg; err.Error() != want {
			t.Errorf("%q: expected %q, got %q", arg, want, err.Error())
		}
	}
}

func TestResolveTaskRef(t *testing.T) {
	tasks := []service.Task{
		{ID: "2", Title: "Second"},
		{ID: "1", Title: "First"},
	}

	got, err := ResolveTaskRef(tasks, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "1" {
		t.Errorf("expected task 1, got %s", got.ID)
	}

	for _, n := range []int{0, 3} {
		if _, err := ResolveTaskRef(tasks, n); err == nil {
			t.Errorf("%d: expected out of range error", n)
		}
	}
}

func TestResolveTaskRef_Speculative(t *testing.T) {
	tasks := []service.Task{{ID: service.NewSpeculativeID(), Title: "Saving"}}
	_, err := ResolveTaskRef(tasks, 1)
	if !errors.Is(err, errStillSaving) {
		t.Errorf("expected errStillSaving, got %v", err)
	}
}
