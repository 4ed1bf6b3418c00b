// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"optitask/internal/service"
)

// DateTimeLayout renders timestamps like "Oct 26, 10:30 AM".
const DateTimeLayout = "Jan 2, 03:04 PM"

// Location is the zone timestamps are shown in.
var Location = time.Local

// Ordered returns tasks in display order: newest first reverses store order.
func Ordered(tasks []service.Task, newestFirst bool) []service.Task {
	out := slices.Clone(tasks)
	if newestFirst {
		slices.Reverse(out)
	}
	return out
}

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}\n", with " (saving)" for unconfirmed tasks.
func FormatTask(w io.Writer, num int, task service.Task) {
	mark := " "
	if task.Completed {
		mark = "x"
	}
	suffix := ""
	if task.ID.IsSpeculative() {
		suffix = " (saving)"
	}
	fmt.Fprintf(w, "%4d  [%s] %s%s\n", num, mark, normalizeTitle(task.Title), suffix)
}

// FormatTaskLong formats a task line followed by its timestamps.
func FormatTaskLong(w io.Writer, num int, task service.Task) {
	FormatTask(w, num, task)
	fmt.Fprintf(w, "          created %s", FormatDateTime(task.CreatedAt))
	if task.UpdatedAt != nil {
		fmt.Fprintf(w, "  updated %s", FormatDateTime(*task.UpdatedAt))
	}
	fmt.Fprintln(w)
}

// FormatList prints tasks numbered from 1 in the order given.
func FormatList(w io.Writer, tasks []service.Task, long bool) {
	for i, t := range tasks {
		if long {
			FormatTaskLong(w, i+1, t)
		} else {
			FormatTask(w, i+1, t)
		}
	}
}

// FormatDateTime renders t in Location using DateTimeLayout.
func FormatDateTime(t time.Time) string {
	return t.In(Location).Format(DateTimeLayout)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
