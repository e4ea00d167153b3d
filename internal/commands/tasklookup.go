package commands

import (
	"context"
	"fmt"
	"time"

	"tasksync/internal/service"
	"tasksync/internal/taskview"
)

// ResolveTask finds the task a reference points to. Numeric references are
// resolved against the default view, which is also how list numbers tasks.
func ResolveTask(ctx context.Context, svc service.Service, ref TaskRef, now time.Time) (service.Task, error) {
	list, err := svc.ListTasks(ctx)
	if err != nil {
		return service.Task{}, err
	}

	if ref.ID != "" {
		for _, t := range list {
			if t.ID == ref.ID {
				return t, nil
			}
		}
		return service.Task{}, fmt.Errorf("task %s: %w", ref.ID, service.ErrNotFound)
	}

	view := taskview.Apply(list, taskview.DefaultConfig(), now)
	if ref.Num > len(view.Items) {
		return service.Task{}, &service.ValidationError{Message: fmt.Sprintf("task number out of range: %d", ref.Num)}
	}
	return view.Items[ref.Num-1], nil
}

// refNumbers maps task ids to their numbers in the default view.
func refNumbers(list []service.Task, now time.Time) map[string]int {
	view := taskview.Apply(list, taskview.DefaultConfig(), now)
	nums := make(map[string]int, len(view.Items))
	for i, t := range view.Items {
		nums[t.ID] = i + 1
	}
	return nums
}
