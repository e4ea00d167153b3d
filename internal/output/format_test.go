package output_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"tasksync/internal/output"
	"tasksync/internal/service"
	"tasksync/internal/taskview"
	"tasksync/internal/testutil"
)

var now = time.Date(2026, 4, 15, 10, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestFormatView(t *testing.T) {
	var buf bytes.Buffer
	cfg := taskview.Config{Filter: taskview.FilterActive, Sort: taskview.SortPriority, Search: "a"}
	output.FormatViewHeader(&buf, cfg, 4, 7)
	output.FormatTask(&buf, 1, service.Task{Title: "Pay rent", Priority: service.PriorityHigh, DueDate: date(2026, 4, 14)}, now)
	output.FormatTask(&buf, 2, service.Task{Title: "Buy milk", Priority: service.PriorityLow, DueDate: date(2026, 4, 16), Completed: true}, now)
	output.FormatTask(&buf, 3, service.Task{Title: "line1\nline2"}, now)
	output.FormatTask(&buf, 10, service.Task{Title: "  "}, now)

	testutil.Golden(t, "view", buf.Bytes())
}

func TestFormatViewHeader_Defaults(t *testing.T) {
	var buf bytes.Buffer
	output.FormatViewHeader(&buf, taskview.Config{}, 0, 0)

	want := output.ListSeparator + "\nTasks: all, sorted by created (0 of 0)\n" + output.ListSeparator + "\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestFormatStats(t *testing.T) {
	var buf bytes.Buffer
	output.FormatStats(&buf, taskview.Stats{
		Total:          4,
		Completed:      1,
		Active:         3,
		Overdue:        1,
		HighPriority:   2,
		ByPriority:     taskview.PriorityCounts{High: 2, Medium: 1, Low: 1},
		CompletionRate: 0.25,
	})

	testutil.Golden(t, "stats", buf.Bytes())
}

func TestFormatProfile(t *testing.T) {
	var buf bytes.Buffer
	user := service.User{Name: "Alice", Email: "alice@example.com"}
	output.FormatProfile(&buf, user, now.Add(time.Hour), false)

	testutil.GoldenString(t, "profile", buf.String())
}

func TestFormatProfile_SessionStates(t *testing.T) {
	tests := []struct {
		name    string
		expiry  time.Time
		expired bool
		want    string
	}{
		{"unknown expiry", time.Time{}, false, "Session: active\n"},
		{"expired", now.Add(-time.Minute), true, "Session: expired 2026-04-15 09:59 UTC (refreshed on next request)\n"},
		{"valid", now.Add(time.Minute), false, "Session: expires 2026-04-15 10:01 UTC\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			output.FormatProfile(&buf, service.User{Email: "a@b.co"}, tt.expiry, tt.expired)
			if !strings.HasSuffix(buf.String(), tt.want) {
				t.Errorf("expected suffix %q, got %q", tt.want, buf.String())
			}
		})
	}
}
