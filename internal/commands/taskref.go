package commands

import (
	"errors"
	"fmt"
	"strconv"
	"unicode"

	"optitask/internal/service"
)

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// errStillSaving is returned for references to tasks whose creation is unconfirmed.
var errStillSaving = errors.New("task is still being saved")

// ParseTaskRef parses a 1-based task number from the first argument and
// returns the remaining arguments.
func ParseTaskRef(args []string) (int, []string, error) {
	if len(args) == 0 {
		return 0, nil, ErrTaskRefRequired
	}
	ref := args[0]
	if !isAllDigits(ref) {
		return 0, nil, fmt.Errorf("invalid task reference: %s", ref)
	}
	num, err := strconv.Atoi(ref)
	if err != nil {
		return 0, nil, fmt.Errorf("invalid task reference: %s", ref)
	}
	return num, args[1:], nil
}

// ResolveTaskRef returns the task at 1-based position num of the displayed list.
func ResolveTaskRef(tasks []service.Task, num int) (service.Task, error) {
	if num < 1 || num > len(tasks) {
		return service.Task{}, fmt.Errorf("task number out of range: %d", num)
	}
	t := tasks[num-1]
	if t.ID.IsSpeculative() {
		return service.Task{}, errStillSaving
	}
	return t, nil
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
