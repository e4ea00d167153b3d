// Package taskview derives the visible task list and its counters from the
// full collection. Every view is recomputed from scratch; nothing here holds
// state between calls.
package taskview

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"tasksync/internal/service"
)

// Filter selects which tasks are shown.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
	FilterOverdue   Filter = "overdue"
	FilterHigh      Filter = "high"
	FilterMedium    Filter = "medium"
	FilterLow       Filter = "low"
)

// Filters lists the accepted filters in display order.
var Filters = []Filter{FilterAll, FilterActive, FilterCompleted, FilterOverdue, FilterHigh, FilterMedium, FilterLow}

// SortKey orders the shown tasks.
type SortKey string

const (
	SortCreated  SortKey = "created"
	SortPriority SortKey = "priority"
	SortDueDate  SortKey = "dueDate"
	SortTitle    SortKey = "title"
	SortStatus   SortKey = "status"
)

// SortKeys lists the accepted sort keys.
var SortKeys = []SortKey{SortCreated, SortPriority, SortDueDate, SortTitle, SortStatus}

// ParseFilter parses a filter name. Empty means all.
func ParseFilter(s string) (Filter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return FilterAll, nil
	}
	for _, f := range Filters {
		if string(f) == s {
			return f, nil
		}
	}
	return "", &service.ValidationError{Field: "filter", Message: "must be one of " + joinNames(Filters)}
}

// ParseSortKey parses a sort key name. Empty means created. Matching is
// case-insensitive so "duedate" and "due" both select SortDueDate.
func ParseSortKey(s string) (SortKey, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return SortCreated, nil
	case "due", "due_date":
		return SortDueDate, nil
	}
	for _, k := range SortKeys {
		if strings.ToLower(string(k)) == s {
			return k, nil
		}
	}
	return "", &service.ValidationError{Field: "sort", Message: "must be one of " + joinNames(SortKeys)}
}

// Config is the user's view configuration.
type Config struct {
	Search string
	Filter Filter
	Sort   SortKey
}

// DefaultConfig shows everything, newest first.
func DefaultConfig() Config {
	return Config{Filter: FilterAll, Sort: SortCreated}
}

// Stats summarizes the whole collection, independent of filter and search.
type Stats struct {
	Total        int
	Completed    int
	Active       int
	Overdue      int
	HighPriority int // high priority and not completed
	ByPriority   PriorityCounts
	// CompletionRate is Completed/Total, 0 for an empty collection.
	CompletionRate float64
}

// PriorityCounts counts tasks per priority, completed or not.
type PriorityCounts struct {
	High   int
	Medium int
	Low    int
}

// View is the derived list plus collection stats.
type View struct {
	Items []service.Task
	Stats Stats
}

// Apply derives the view for cfg, with "today" taken from now's date in
// now's location. Titles are collated for English. tasks is not modified.
func Apply(tasks []service.Task, cfg Config, now time.Time) View {
	return apply(tasks, cfg, now, language.English)
}

// Engine applies views with a fixed locale and clock.
type Engine struct {
	Locale language.Tag
	Now    func() time.Time
}

// New returns an engine for English using the wall clock.
func New() *Engine {
	return &Engine{Locale: language.English, Now: time.Now}
}

// Apply derives the view for cfg at the engine's current time.
func (e *Engine) Apply(tasks []service.Task, cfg Config) View {
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	return apply(tasks, cfg, now(), e.Locale)
}

func apply(tasks []service.Task, cfg Config, now time.Time, locale language.Tag) View {
	today := startOfDay(now)

	items := make([]service.Task, 0, len(tasks))
	needle := strings.ToLower(cfg.Search)
	for _, t := range tasks {
		if !matches(t, cfg.Filter, today) {
			continue
		}
		if needle != "" && !strings.Contains(strings.ToLower(t.Title), needle) {
			continue
		}
		items = append(items, t)
	}

	slices.SortStableFunc(items, comparator(cfg.Sort, locale))

	return View{Items: items, Stats: Compute(tasks, now)}
}

// Compute returns the stats for the whole collection.
func Compute(tasks []service.Task, now time.Time) Stats {
	today := startOfDay(now)

	var s Stats
	s.Total = len(tasks)
	for _, t := range tasks {
		if t.Completed {
			s.Completed++
		} else {
			if IsOverdue(t, today) {
				s.Overdue++
			}
			if t.Priority == service.PriorityHigh {
				s.HighPriority++
			}
		}
		switch t.Priority {
		case service.PriorityHigh:
			s.ByPriority.High++
		case service.PriorityMedium:
			s.ByPriority.Medium++
		case service.PriorityLow:
			s.ByPriority.Low++
		}
	}
	s.Active = s.Total - s.Completed
	if s.Total > 0 {
		s.CompletionRate = float64(s.Completed) / float64(s.Total)
	}
	return s
}

// IsOverdue reports whether an incomplete task's due day is before the day
// containing now. The comparison uses calendar dates in now's location.
func IsOverdue(t service.Task, now time.Time) bool {
	if t.Completed || t.DueDate == nil {
		return false
	}
	return startOfDay(t.DueDate.In(now.Location())).Before(startOfDay(now))
}

func matches(t service.Task, f Filter, today time.Time) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	case FilterOverdue:
		return IsOverdue(t, today)
	case FilterHigh, FilterMedium, FilterLow:
		return t.Priority == service.Priority(f)
	default:
		return true
	}
}

func comparator(key SortKey, locale language.Tag) func(a, b service.Task) int {
	switch key {
	case SortPriority:
		return func(a, b service.Task) int {
			return b.Priority.Rank() - a.Priority.Rank()
		}
	case SortDueDate:
		return func(a, b service.Task) int {
			return dueTime(a).Compare(dueTime(b))
		}
	case SortTitle:
		col := collate.New(locale)
		return func(a, b service.Task) int {
			return col.CompareString(a.Title, b.Title)
		}
	case SortStatus:
		return func(a, b service.Task) int {
			return boolRank(a.Completed) - boolRank(b.Completed)
		}
	default:
		return func(a, b service.Task) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	}
}

// dueTime treats a missing due date as the earliest possible time.
func dueTime(t service.Task) time.Time {
	if t.DueDate == nil {
		return time.Time{}
	}
	return *t.DueDate
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func joinNames[T ~string](names []T) string {
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = string(n)
	}
	return strings.Join(parts, ", ")
}
