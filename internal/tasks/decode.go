// Package tasks ingests task payloads from the API and mirrors the server's
// task list in memory.
package tasks

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"tasksync/internal/service"
)

// Field-name variants accepted from older server schemas, in order of preference.
var (
	idFields        = []string{"id", "_id"}
	dueFields       = []string{"dueDate", "due_date"}
	createdFields   = []string{"createdAt", "created_at", "dateCreated"}
	completedFields = []string{"completed", "isCompleted"}
)

// dateLayouts are tried in order. Date-only values are calendar dates and
// are read in the local time zone.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
}

const dateOnly = "2006-01-02"

// ErrInvalidTask is returned for payloads that are not a task object.
var ErrInvalidTask = errors.New("invalid task")

// Decode converts one task object into canonical form. A task needs an id
// and a non-empty title; everything else is optional.
func Decode(raw []byte) (service.Task, error) {
	if !gjson.ValidBytes(raw) {
		return service.Task{}, fmt.Errorf("%w: malformed JSON", ErrInvalidTask)
	}
	return decode(gjson.ParseBytes(raw))
}

// DecodeList converts a task list body. The body may be a bare array or an
// object with a "tasks" array.
func DecodeList(raw []byte) ([]service.Task, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: malformed JSON", ErrInvalidTask)
	}
	root := gjson.ParseBytes(raw)
	if !root.IsArray() {
		root = root.Get("tasks")
	}
	if !root.IsArray() {
		return nil, fmt.Errorf("%w: expected a task array", ErrInvalidTask)
	}

	var out []service.Task
	var err error
	root.ForEach(func(i, v gjson.Result) bool {
		var t service.Task
		t, err = decode(v)
		if err != nil {
			err = fmt.Errorf("task %d: %w", i.Int(), err)
			return false
		}
		out = append(out, t)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DecodeEntity reads a single-task response, which may wrap the task in
// a "task" field.
func DecodeEntity(raw []byte) (service.Task, error) {
	if !gjson.ValidBytes(raw) {
		return service.Task{}, fmt.Errorf("%w: malformed JSON", ErrInvalidTask)
	}
	v := gjson.ParseBytes(raw)
	if inner := v.Get("task"); inner.IsObject() {
		v = inner
	}
	return decode(v)
}

func decode(v gjson.Result) (service.Task, error) {
	if !v.IsObject() {
		return service.Task{}, fmt.Errorf("%w: not an object", ErrInvalidTask)
	}

	t := service.Task{
		ID:          first(v, idFields).String(),
		Title:       strings.TrimSpace(v.Get("title").String()),
		Description: v.Get("description").String(),
		Priority:    service.ParsePriority(v.Get("priority").String()),
		Completed:   completed(v),
	}
	if t.ID == "" {
		return service.Task{}, fmt.Errorf("%w: missing id", ErrInvalidTask)
	}
	if t.Title == "" {
		return service.Task{}, fmt.Errorf("%w: task %s has no title", ErrInvalidTask, t.ID)
	}

	if due, ok := parseDue(first(v, dueFields)); ok {
		t.DueDate = &due
	}
	if created, ok := parseTime(first(v, createdFields)); ok {
		t.CreatedAt = created
	}
	return t, nil
}

func first(v gjson.Result, fields []string) gjson.Result {
	for _, f := range fields {
		if r := v.Get(f); r.Exists() && r.Type != gjson.Null {
			return r
		}
	}
	return gjson.Result{}
}

// completed reads the first completion flag present. status is only
// consulted when neither flag is sent.
func completed(v gjson.Result) bool {
	if flag := first(v, completedFields); flag.Exists() {
		return flag.Bool()
	}
	switch strings.ToLower(v.Get("status").String()) {
	case "completed", "done":
		return true
	}
	return false
}

// parseDue reads a due date as a calendar day: the date in the zone the value
// was sent in (UTC for epoch millis), at local midnight. A date stored as
// "2026-10-19T00:00:00Z" stays the 19th west of UTC.
func parseDue(v gjson.Result) (time.Time, bool) {
	t, ok := parseTime(v)
	if !ok {
		return time.Time{}, false
	}
	if v.Type == gjson.Number {
		t = t.UTC()
	}
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.Local), true
}

// parseTime accepts ISO strings and epoch milliseconds.
func parseTime(v gjson.Result) (time.Time, bool) {
	switch v.Type {
	case gjson.Number:
		return time.UnixMilli(v.Int()), true
	case gjson.String:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return time.Time{}, false
		}
		if t, err := time.ParseInLocation(dateOnly, s, time.Local); err == nil {
			return t, true
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
