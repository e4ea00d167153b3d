package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"tasksync/internal/service"
)

// TaskRef represents a parsed task reference.
type TaskRef struct {
	Num int    // 1-based position in the default view; 0 when ID is set
	ID  string // task id when the reference is not numeric
}

// ErrTaskRefRequired indicates no task reference was provided.
var ErrTaskRefRequired = errors.New("task reference required")

// ParseTaskRef parses a task reference from args.
//
// Parsing rules:
// 1. No args or a blank first arg → error: task reference required
// 2. All digits → position in the default view (all tasks, newest first)
// 3. Anything else → task id
func ParseTaskRef(args []string) (TaskRef, error) {
	if len(args) == 0 {
		return TaskRef{}, ErrTaskRefRequired
	}

	first := strings.TrimSpace(args[0])
	if first == "" {
		return TaskRef{}, ErrTaskRefRequired
	}

	if isAllDigits(first) {
		num, err := strconv.Atoi(first)
		if err != nil {
			return TaskRef{}, fmt.Errorf("invalid task reference: %s", first)
		}
		if num < 1 {
			return TaskRef{}, fmt.Errorf("task number out of range: %d", num)
		}
		return TaskRef{Num: num}, nil
	}

	return TaskRef{ID: first}, nil
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

// parseTaskRefArg parses a reference and reports errors the way every
// task-addressing command does.
func parseTaskRefArg(args []string) (TaskRef, error) {
	ref, err := ParseTaskRef(args)
	if err != nil {
		return TaskRef{}, &service.ValidationError{Message: err.Error()}
	}
	return ref, nil
}
