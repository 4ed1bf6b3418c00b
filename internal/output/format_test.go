package output_test

import (
	"bytes"
	"testing"
	"time"

	"optitask/internal/output"
	"optitask/internal/service"
	"optitask/internal/testutil"
)

func init() {
	output.Location = time.UTC
}

func sample() []service.Task {
	updated := time.Date(2026, 10, 26, 22, 30, 0, 0, time.UTC)
	return []service.Task{
		{ID: "1", Title: "Learn X", CreatedAt: testutil.Epoch},
		{ID: "2", Title: "Buy milk", Completed: true, CreatedAt: testutil.Epoch, UpdatedAt: &updated},
		{ID: service.NewSpeculativeID(), Title: "Call\nmum", CreatedAt: testutil.Epoch},
	}
}

func TestFormatList_Short(t *testing.T) {
	var buf bytes.Buffer
	output.FormatList(&buf, sample(), false)
	testutil.GoldenString(t, "list_short", buf.String())
}

func TestFormatList_Long(t *testing.T) {
	var buf bytes.Buffer
	output.FormatList(&buf, sample(), true)
	testutil.GoldenString(t, "list_long", buf.String())
}

func TestFormatTask_Untitled(t *testing.T) {
	var buf bytes.Buffer
	output.FormatTask(&buf, 12, service.Task{ID: "9", Title: "  "})
	if buf.String() != "  12  [ ] (untitled)\n" {
		t.Errorf("unexpected line %q", buf.String())
	}
}

func TestOrdered(t *testing.T) {
	tasks := sample()

	newest := output.Ordered(tasks, true)
	if newest[0].Title != "Call\nmum" || newest[2].ID != "1" {
		t.Errorf("unexpected newest-first order: %+v", newest)
	}
	if tasks[0].ID != "1" {
		t.Error("expected input to be left untouched")
	}

	oldest := output.Ordered(tasks, false)
	if oldest[0].ID != "1" {
		t.Errorf("unexpected oldest-first order: %+v", oldest)
	}
}

func TestFormatDateTime(t *testing.T) {
	got := output.FormatDateTime(time.Date(2026, 10, 26, 10, 30, 0, 0, time.UTC))
	if got != "Oct 26, 10:30 AM" {
		t.Errorf("unexpected format %q", got)
	}
}
