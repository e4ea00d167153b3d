package tasks_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tasksync/internal/service"
	"tasksync/internal/tasks"
	"tasksync/internal/taskview"
)

func TestDecode_CanonicalFields(t *testing.T) {
	task, err := tasks.Decode([]byte(`{
		"id": "t1",
		"title": "  Write report ",
		"description": "quarterly",
		"priority": "High",
		"dueDate": "2026-03-01T09:30:00Z",
		"completed": true,
		"createdAt": "2026-02-01T08:00:00.123Z"
	}`))
	require.NoError(t, err)

	assert.Equal(t, "t1", task.ID)
	assert.Equal(t, "Write report", task.Title)
	assert.Equal(t, "quarterly", task.Description)
	assert.Equal(t, service.PriorityHigh, task.Priority)
	assert.True(t, task.Completed)
	require.NotNil(t, task.DueDate)
	assert.True(t, task.DueDate.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)))
	assert.True(t, task.CreatedAt.Equal(time.Date(2026, 2, 1, 8, 0, 0, 123e6, time.UTC)))
}

func TestDecode_FieldVariants(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		id        string
		completed bool
		hasDue    bool
		created   bool
	}{
		{"mongo id", `{"_id":"abc","title":"x"}`, "abc", false, false, false},
		{"numeric id", `{"id":42,"title":"x"}`, "42", false, false, false},
		{"isCompleted", `{"id":"1","title":"x","isCompleted":true}`, "1", true, false, false},
		{"status completed", `{"id":"1","title":"x","status":"completed"}`, "1", true, false, false},
		{"status done", `{"id":"1","title":"x","status":"Done"}`, "1", true, false, false},
		{"status pending", `{"id":"1","title":"x","status":"pending"}`, "1", false, false, false},
		{"completed false wins over status", `{"id":"1","title":"x","completed":false,"status":"done"}`, "1", false, false, false},
		{"isCompleted false wins over status", `{"id":"1","title":"x","isCompleted":false,"status":"completed"}`, "1", false, false, false},
		{"completed wins over isCompleted", `{"id":"1","title":"x","completed":false,"isCompleted":true}`, "1", false, false, false},
		{"null completed falls back", `{"id":"1","title":"x","completed":null,"status":"done"}`, "1", true, false, false},
		{"snake case dates", `{"id":"1","title":"x","due_date":"2026-01-05","created_at":"2026-01-01T00:00:00Z"}`, "1", false, true, true},
		{"dateCreated", `{"id":"1","title":"x","dateCreated":1767225600000}`, "1", false, false, true},
		{"null due date", `{"id":"1","title":"x","dueDate":null}`, "1", false, false, false},
		{"empty due date", `{"id":"1","title":"x","dueDate":""}`, "1", false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := tasks.Decode([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.id, task.ID)
			assert.Equal(t, tt.completed, task.Completed)
			assert.Equal(t, tt.hasDue, task.DueDate != nil)
			assert.Equal(t, tt.created, !task.CreatedAt.IsZero())
		})
	}
}

func TestDecode_DateOnlyIsLocalCalendarDay(t *testing.T) {
	task, err := tasks.Decode([]byte(`{"id":"1","title":"x","dueDate":"2026-01-05"}`))
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)

	y, m, d := task.DueDate.Date()
	assert.Equal(t, 2026, y)
	assert.Equal(t, time.January, m)
	assert.Equal(t, 5, d)
	assert.Equal(t, time.Local, task.DueDate.Location())
}

// withLocal runs the test with time.Local set to loc.
func withLocal(t *testing.T, loc *time.Location) {
	t.Helper()
	prev := time.Local
	time.Local = loc
	t.Cleanup(func() { time.Local = prev })
}

func TestDecode_MidnightUTCDueDateKeepsCalendarDay(t *testing.T) {
	withLocal(t, time.FixedZone("EDT", -4*60*60))

	for _, raw := range []string{
		`{"id":"1","title":"x","dueDate":"2026-10-19T00:00:00.000Z"}`,
		`{"id":"1","title":"x","dueDate":"2026-10-19T00:00:00+00:00"}`,
		`{"id":"1","title":"x","dueDate":1792368000000}`,
	} {
		task, err := tasks.Decode([]byte(raw))
		require.NoError(t, err, raw)
		require.NotNil(t, task.DueDate, raw)
		assert.Equal(t, time.Date(2026, 10, 19, 0, 0, 0, 0, time.Local), *task.DueDate, raw)

		now := time.Date(2026, 10, 19, 10, 0, 0, 0, time.Local)
		assert.False(t, taskview.IsOverdue(task, now), raw)

		v := taskview.Apply([]service.Task{task}, taskview.Config{Filter: taskview.FilterOverdue}, now)
		assert.Empty(t, v.Items, raw)
		assert.Zero(t, v.Stats.Overdue, raw)

		tomorrow := now.AddDate(0, 0, 1)
		assert.True(t, taskview.IsOverdue(task, tomorrow), raw)
	}
}

func TestDecode_UnknownPriorityKept(t *testing.T) {
	task, err := tasks.Decode([]byte(`{"id":"1","title":"x","priority":"URGENT"}`))
	require.NoError(t, err)
	assert.Equal(t, service.Priority("urgent"), task.Priority)
	assert.Equal(t, 0, task.Priority.Rank())
}

func TestDecode_Invalid(t *testing.T) {
	for _, raw := range []string{
		`not json`,
		`[1,2]`,
		`{"title":"no id"}`,
		`{"id":"1"}`,
		`{"id":"1","title":"   "}`,
	} {
		_, err := tasks.Decode([]byte(raw))
		assert.ErrorIs(t, err, tasks.ErrInvalidTask, raw)
	}
}

func TestDecodeList(t *testing.T) {
	bare, err := tasks.DecodeList([]byte(`[{"id":"1","title":"a"},{"_id":"2","title":"b"}]`))
	require.NoError(t, err)
	require.Len(t, bare, 2)
	assert.Equal(t, "2", bare[1].ID)

	wrapped, err := tasks.DecodeList([]byte(`{"tasks":[{"id":"1","title":"a"}]}`))
	require.NoError(t, err)
	assert.Len(t, wrapped, 1)

	empty, err := tasks.DecodeList([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = tasks.DecodeList([]byte(`{"items":[]}`))
	assert.ErrorIs(t, err, tasks.ErrInvalidTask)

	_, err = tasks.DecodeList([]byte(`[{"id":"1","title":"a"},{"id":"2"}]`))
	assert.ErrorContains(t, err, "task 1")
}

func TestDecodeEntity(t *testing.T) {
	task, err := tasks.DecodeEntity([]byte(`{"task":{"id":"9","title":"wrapped"}}`))
	require.NoError(t, err)
	assert.Equal(t, "9", task.ID)

	task, err = tasks.DecodeEntity([]byte(`{"id":"8","title":"bare"}`))
	require.NoError(t, err)
	assert.Equal(t, "bare", task.Title)
}

func TestCollection_UpsertAndRemoveByID(t *testing.T) {
	ctx := context.Background()
	c := tasks.NewCollection()
	require.NoError(t, c.Replace(ctx, []service.Task{{ID: "1", Title: "a"}, {ID: "2", Title: "b"}}))

	require.NoError(t, c.Upsert(ctx, service.Task{ID: "1", Title: "a2"}))
	require.NoError(t, c.Upsert(ctx, service.Task{ID: "3", Title: "c"}))

	snap := c.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, "a2", snap[0].Title, "upsert keeps position")
	assert.Equal(t, "3", snap[2].ID)

	require.NoError(t, c.Remove(ctx, "2"))
	require.NoError(t, c.Remove(ctx, "missing"))
	assert.Equal(t, 2, c.Len())

	_, ok := c.Get("2")
	assert.False(t, ok)
	got, ok := c.Get("3")
	assert.True(t, ok)
	assert.Equal(t, "c", got.Title)
}

func TestCollection_SnapshotIsACopy(t *testing.T) {
	c := tasks.NewCollection()
	require.NoError(t, c.Replace(context.Background(), []service.Task{{ID: "1", Title: "a"}}))

	snap := c.Snapshot()
	snap[0].Title = "changed"

	got, _ := c.Get("1")
	assert.Equal(t, "a", got.Title)
}

func TestCollection_DiscardsUpdatesForAbandonedRequests(t *testing.T) {
	c := tasks.NewCollection()
	require.NoError(t, c.Replace(context.Background(), []service.Task{{ID: "1", Title: "a"}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, c.Upsert(ctx, service.Task{ID: "1", Title: "late"}), service.ErrCanceled)
	assert.ErrorIs(t, c.Remove(ctx, "1"), service.ErrCanceled)
	assert.ErrorIs(t, c.Replace(ctx, nil), service.ErrCanceled)

	got, ok := c.Get("1")
	require.True(t, ok)
	assert.Equal(t, "a", got.Title)
}
