// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"tasksync/internal/service"
	"tasksync/internal/taskview"
)

const (
	// ListSeparator is the separator line around the view header.
	ListSeparator = "------------"

	// DateLayout is how due dates are displayed.
	DateLayout = "2006-01-02"

	// TimeLayout is how timestamps are displayed.
	TimeLayout = "2006-01-02 15:04 MST"
)

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}  ({PRIORITY}, due {DATE}, overdue)\n"
// The parenthesised part lists only what is set.
func FormatTask(w io.Writer, num int, task service.Task, now time.Time) {
	box := "[ ]"
	if task.Completed {
		box = "[x]"
	}
	line := fmt.Sprintf("%4d  %s %s", num, box, normalizeTitle(task.Title))

	var meta []string
	if task.Priority != "" {
		meta = append(meta, string(task.Priority))
	}
	if task.DueDate != nil {
		meta = append(meta, "due "+task.DueDate.In(now.Location()).Format(DateLayout))
	}
	if taskview.IsOverdue(task, now) {
		meta = append(meta, "overdue")
	}
	if len(meta) > 0 {
		line += "  (" + strings.Join(meta, ", ") + ")"
	}
	fmt.Fprintln(w, line)
}

// FormatViewHeader formats the header above a task view.
func FormatViewHeader(w io.Writer, cfg taskview.Config, shown, total int) {
	filter := cfg.Filter
	if filter == "" {
		filter = taskview.FilterAll
	}
	sortKey := cfg.Sort
	if sortKey == "" {
		sortKey = taskview.SortCreated
	}

	title := fmt.Sprintf("Tasks: %s, sorted by %s", filter, sortKey)
	if cfg.Search != "" {
		title += fmt.Sprintf(", matching %q", cfg.Search)
	}
	title += fmt.Sprintf(" (%d of %d)", shown, total)

	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintln(w, title)
	fmt.Fprintln(w, ListSeparator)
}

// FormatStats formats collection counters.
func FormatStats(w io.Writer, s taskview.Stats) {
	fmt.Fprintf(w, "%-15s%d\n", "Total:", s.Total)
	fmt.Fprintf(w, "%-15s%d\n", "Active:", s.Active)
	fmt.Fprintf(w, "%-15s%d\n", "Completed:", s.Completed)
	fmt.Fprintf(w, "%-15s%d\n", "Overdue:", s.Overdue)
	fmt.Fprintf(w, "%-15s%d open\n", "High priority:", s.HighPriority)
	fmt.Fprintf(w, "%-15shigh %d, medium %d, low %d\n", "By priority:",
		s.ByPriority.High, s.ByPriority.Medium, s.ByPriority.Low)
	fmt.Fprintf(w, "%-15s%.0f%%\n", "Completion:", s.CompletionRate*100)
}

// FormatProfile formats the signed-in user and the session's token expiry.
// A zero expiry means the token does not carry one.
func FormatProfile(w io.Writer, user service.User, expiry time.Time, expired bool) {
	fmt.Fprintf(w, "%-9s%s\n", "Name:", orDash(user.Name))
	fmt.Fprintf(w, "%-9s%s\n", "Email:", orDash(user.Email))
	fmt.Fprintf(w, "%-9s%s\n", "Role:", orDash(user.Role))

	var session string
	switch {
	case expiry.IsZero():
		session = "active"
	case expired:
		session = "expired " + expiry.Format(TimeLayout) + " (refreshed on next request)"
	default:
		session = "expires " + expiry.Format(TimeLayout)
	}
	fmt.Fprintf(w, "%-9s%s\n", "Session:", session)
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

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
