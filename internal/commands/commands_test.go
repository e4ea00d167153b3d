package commands_test

import (
	"bytes"
	"context"
	"flag"
	"io"
	"strings"
	"testing"
	"time"

	"tasksync/internal/commands"
	"tasksync/internal/config"
	"tasksync/internal/exitcode"
	"tasksync/internal/service"
	"tasksync/internal/testutil"
)

// runCommand is a helper to run a command with FakeService. args are parsed
// with the command's own flags first, as the dispatcher does.
func runCommand(t *testing.T, cmd commands.Command, svc service.Service, args []string, quiet bool) (stdout, stderr string, code int) {
	t.Helper()

	fs := flag.NewFlagSet(cmd.Name(), flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cmd.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("failed to parse flags %q: %v", args, err)
	}

	var outBuf, errBuf bytes.Buffer

	cfg := &config.Config{
		Dir:      t.TempDir(),
		Quiet:    quiet,
		Settings: config.DefaultSettings(),
	}

	ctx := context.Background()
	code = cmd.Run(ctx, cfg, svc, fs.Args(), &outBuf, &errBuf)
	return outBuf.String(), errBuf.String(), code
}

func signedIn() *testutil.FakeService {
	svc := testutil.NewFakeService()
	svc.SignIn(service.User{ID: "u1", Email: "alice@example.com", Name: "Alice", Role: "user"})
	return svc
}

func expect(t *testing.T, gotOut, gotErr string, gotCode int, wantOut, wantErr string, wantCode int) {
	t.Helper()
	if gotCode != wantCode {
		t.Errorf("expected exit code %d, got %d (stderr %q)", wantCode, gotCode, gotErr)
	}
	if gotOut != wantOut {
		t.Errorf("expected stdout %q, got %q", wantOut, gotOut)
	}
	if gotErr != wantErr {
		t.Errorf("expected stderr %q, got %q", wantErr, gotErr)
	}
}

// Tests for version command
func TestVersionCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.VersionCmd{}, nil, nil, false)
	expect(t, stdout, stderr, code, "tasksync 0.1.0\n", "", exitcode.Success)
}

// Tests for help command
func TestHelpCommand(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.HelpCmd{}, nil, nil, false)

	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}
	if stderr != "" {
		t.Errorf("expected no stderr, got %q", stderr)
	}
	for _, want := range []string{"Usage:", "tasksync list", "tasksync whoami", "Common flags:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("help output should contain %q", want)
		}
	}
}

func TestHelpCommand_ListsRegistry(t *testing.T) {
	r := commands.NewRegistry()
	if err := r.Register(&commands.RmCmd{}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	stdout, _, code := runCommand(t, &commands.HelpCmd{Registry: r}, nil, nil, false)
	if code != exitcode.Success {
		t.Errorf("expected exit code %d, got %d", exitcode.Success, code)
	}

	want := "Usage:\n" +
		"  tasksync\n      List all tasks, newest first\n" +
		"  tasksync rm <ref>\n      Delete a task (alias: delete)\n\n" +
		"Filters:"
	if !strings.HasPrefix(stdout, want) {
		t.Errorf("expected help to start with %q, got %q", want, stdout)
	}
}

// Tests for list command
func TestListCommand_DefaultView(t *testing.T) {
	svc := signedIn()
	svc.AddTask(service.Task{Title: "Buy milk"})
	svc.AddTask(service.Task{Title: "Buy eggs"})

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)

	expected := "------------\n" +
		"Tasks: all, sorted by created (2 of 2)\n" +
		"------------\n" +
		"   1  [ ] Buy eggs\n" +
		"   2  [ ] Buy milk\n"
	expect(t, stdout, stderr, code, expected, "", exitcode.Success)
}

func TestListCommand_FilterKeepsReferenceNumbers(t *testing.T) {
	svc := signedIn()
	svc.AddTask(service.Task{Title: "Pay rent", Priority: service.PriorityHigh})
	svc.AddTask(service.Task{Title: "Buy milk", Priority: service.PriorityLow})
	svc.AddTask(service.Task{Title: "File taxes", Priority: service.PriorityHigh, Completed: true})

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, []string{"--filter", "high"}, false)

	expected := "------------\n" +
		"Tasks: high, sorted by created (2 of 3)\n" +
		"------------\n" +
		"   1  [x] File taxes  (high)\n" +
		"   3  [ ] Pay rent  (high)\n"
	expect(t, stdout, stderr, code, expected, "", exitcode.Success)
}

func TestListCommand_SearchAndSort(t *testing.T) {
	svc := signedIn()
	svc.AddTask(service.Task{Title: "banana bread"})
	svc.AddTask(service.Task{Title: "Apple pie"})
	svc.AddTask(service.Task{Title: "cherry tart"})
	svc.AddTask(service.Task{Title: "walk dog"})

	cmd := &commands.ListCmd{}
	stdout, stderr, code := runCommand(t, cmd, svc, []string{"--sort", "title", "--search", "A"}, false)

	expected := "------------\n" +
		"Tasks: all, sorted by title, matching \"A\" (4 of 4)\n" +
		"------------\n" +
		"   3  [ ] Apple pie\n" +
		"   4  [ ] banana bread\n" +
		"   2  [ ] cherry tart\n" +
		"   1  [ ] walk dog\n"
	expect(t, stdout, stderr, code, expected, "", exitcode.Success)
}

func TestListCommand_Empty(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, signedIn(), nil, false)
	expect(t, stdout, stderr, code, "no tasks found\n", "", exitcode.Success)
}

func TestListCommand_EmptyQuiet(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, signedIn(), nil, true)
	expect(t, stdout, stderr, code, "", "", exitcode.Success)
}

func TestListCommand_InvalidFilter(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, signedIn(), []string{"--filter", "urgent"}, false)
	expect(t, stdout, stderr, code, "",
		"error: invalid filter: must be one of all, active, completed, overdue, high, medium, low\n",
		exitcode.UserError)
}

func TestListCommand_SessionExpired(t *testing.T) {
	svc := signedIn()
	svc.ListErr = &service.AuthError{Err: service.ErrSessionExpired}

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)
	expect(t, stdout, stderr, code, "", "error: session expired, please log in again\n", exitcode.AuthError)
}

func TestListCommand_CanceledIsQuiet(t *testing.T) {
	svc := signedIn()
	svc.ListErr = service.Canceled(context.Canceled)

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)
	expect(t, stdout, stderr, code, "", "", exitcode.Canceled)
}

func TestListCommand_ServerError(t *testing.T) {
	svc := signedIn()
	svc.ListErr = &service.ServerError{Status: 500, Message: "database unavailable"}

	stdout, stderr, code := runCommand(t, &commands.ListCmd{}, svc, nil, false)
	expect(t, stdout, stderr, code, "", "error: database unavailable (status 500)\n", exitcode.BackendError)
}

// Tests for add command
func TestAddCommand_Success(t *testing.T) {
	svc := signedIn()

	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc,
		[]string{"--priority", "High", "--due", "2026-05-01", "--desc", "monthly", "Pay", "rent"}, false)
	expect(t, stdout, stderr, code, "created t1\n", "", exitcode.Success)

	tasks := svc.Snapshot()
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	got := tasks[0]
	if got.Title != "Pay rent" {
		t.Errorf("expected title %q, got %q", "Pay rent", got.Title)
	}
	if got.Priority != service.PriorityHigh {
		t.Errorf("expected priority high, got %q", got.Priority)
	}
	if got.Description != "monthly" {
		t.Errorf("expected description monthly, got %q", got.Description)
	}
	if got.DueDate == nil || got.DueDate.Format(commands.DueLayout) != "2026-05-01" {
		t.Errorf("expected due 2026-05-01, got %v", got.DueDate)
	}
}

func TestAddCommand_Quiet(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, signedIn(), []string{"Buy milk"}, true)
	expect(t, stdout, stderr, code, "", "", exitcode.Success)
}

func TestAddCommand_NoTitle(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, signedIn(), []string{"  "}, false)
	expect(t, stdout, stderr, code, "", "error: title required\n", exitcode.UserError)
}

func TestAddCommand_InvalidPriority(t *testing.T) {
	svc := signedIn()
	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, svc, []string{"-p", "urgent", "x"}, false)
	expect(t, stdout, stderr, code, "", "error: invalid priority: must be one of low, medium, high\n", exitcode.UserError)

	if len(svc.Snapshot()) != 0 {
		t.Error("expected no task to be created")
	}
}

func TestAddCommand_InvalidDue(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.AddCmd{}, signedIn(), []string{"--due", "tomorrow", "x"}, false)
	expect(t, stdout, stderr, code, "", "error: invalid due date: must be YYYY-MM-DD\n", exitcode.UserError)
}

// Tests for edit command
func TestEditCommand_Success(t *testing.T) {
	svc := signedIn()
	due := time.Date(2026, 5, 1, 0, 0, 0, 0, time.Local)
	svc.AddTask(service.Task{Title: "Pay rent", DueDate: &due})

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, svc,
		[]string{"--title", "Pay rent early", "--priority", "low", "--clear-due", "1"}, false)
	expect(t, stdout, stderr, code, "ok\n", "", exitcode.Success)

	got := svc.Snapshot()[0]
	if got.Title != "Pay rent early" {
		t.Errorf("expected new title, got %q", got.Title)
	}
	if got.Priority != service.PriorityLow {
		t.Errorf("expected low priority, got %q", got.Priority)
	}
	if got.DueDate != nil {
		t.Errorf("expected due date cleared, got %v", got.DueDate)
	}
}

func TestEditCommand_ByID(t *testing.T) {
	svc := signedIn()
	task := svc.AddTask(service.Task{Title: "Pay rent"})

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--desc", "", task.ID}, false)
	expect(t, stdout, stderr, code, "ok\n", "", exitcode.Success)
}

func TestEditCommand_NothingToUpdate(t *testing.T) {
	svc := signedIn()
	svc.AddTask(service.Task{Title: "Pay rent"})

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"1"}, false)
	expect(t, stdout, stderr, code, "", "error: nothing to update\n", exitcode.UserError)
}

func TestEditCommand_ConflictingDueFlags(t *testing.T) {
	svc := signedIn()
	svc.AddTask(service.Task{Title: "Pay rent"})

	stdout, stderr, code := runCommand(t, &commands.EditCmd{}, svc, []string{"--due", "2026-05-01", "--clear-due", "1"}, false)
	expect(t, stdout, stderr, code, "", "error: cannot use both --due and --clear-due\n", exitcode.UserError)
}

// Tests for done command
func TestDoneCommand_Toggles(t *testing.T) {
	svc := signedIn()
	svc.AddTask(service.Task{Title: "Buy milk"})

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"1"}, false)
	expect(t, stdout, stderr, code, "completed: Buy milk\n", "", exitcode.Success)
	if !svc.Snapshot()[0].Completed {
		t.Error("expected task to be completed")
	}

	stdout, stderr, code = runCommand(t, &commands.DoneCmd{}, svc, []string{"1"}, false)
	expect(t, stdout, stderr, code, "reopened: Buy milk\n", "", exitcode.Success)
	if svc.Snapshot()[0].Completed {
		t.Error("expected task to be reopened")
	}
}

func TestDoneCommand_NoRef(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, signedIn(), nil, false)
	expect(t, stdout, stderr, code, "", "error: task reference required\n", exitcode.UserError)
}

func TestDoneCommand_OutOfRange(t *testing.T) {
	svc := signedIn()
	svc.AddTask(service.Task{Title: "Buy milk"})

	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, svc, []string{"5"}, false)
	expect(t, stdout, stderr, code, "", "error: task number out of range: 5\n", exitcode.UserError)
}

func TestDoneCommand_UnknownID(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.DoneCmd{}, signedIn(), []string{"abc"}, false)
	expect(t, stdout, stderr, code, "", "error: task abc: not found\n", exitcode.UserError)
}

// Tests for rm command
func TestRmCommand_Success(t *testing.T) {
	svc := signedIn()
	svc.AddTask(service.Task{Title: "Buy milk"})
	svc.AddTask(service.Task{Title: "Buy eggs"})

	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, svc, []string{"2"}, false)
	expect(t, stdout, stderr, code, "deleted: Buy milk\n", "", exitcode.Success)

	remaining := svc.Snapshot()
	if len(remaining) != 1 || remaining[0].Title != "Buy eggs" {
		t.Errorf("expected only Buy eggs to remain, got %+v", remaining)
	}
}

func TestRmCommand_NoRef(t *testing.T) {
	stdout, stderr, code := runCommand(t, &commands.RmCmd{}, signedIn(), nil, false)
	expect(t, stdout, stderr, code, "", "error: task reference required\n", exitcode.UserError)
}

// Tests for stats command
func TestStatsCommand(t *testing.T) {
	svc := signedIn()
	svc.AddTask(service.Task{Title: "a", Priority: service.PriorityHigh})
	svc.AddTask(service.Task{Title: "b", Priority: service.PriorityLow, Completed: true})

	stdout, stderr, code := runCommand(t, &commands.StatsCmd{}, svc, nil, false)

	expected := "Total:         2\n" +
		"Active:        1\n" +
		"Completed:     1\n" +
		"Overdue:       0\n" +
		"High priority: 1 open\n" +
		"By priority:   high 1, medium 0, low 1\n" +
		"Completion:    50%\n"
	expect(t, stdout, stderr, code, expected, "", exitcode.Success)
}
