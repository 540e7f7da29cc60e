package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/domain"
	_ "modernc.org/sqlite"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "taskboard.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	return repo
}

func mustTask(t *testing.T, id, title string, tags []string, now time.Time) domain.Task {
	t.Helper()
	task, err := domain.NewTask(domain.TaskInput{
		ID:          id,
		Title:       title,
		Description: title + " details",
		Tags:        tags,
	}, now)
	if err != nil {
		t.Fatalf("NewTask() error = %v", err)
	}
	return task
}

func TestRepository_TaskLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	now := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)

	task := mustTask(t, "t1", "Task title", []string{"zeta", "alpha"}, now)
	if err := repo.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	loaded, err := repo.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if loaded.Title != "Task title" || loaded.Description != "Task title details" {
		t.Fatalf("unexpected task %#v", loaded)
	}
	if !slices.Equal(loaded.Tags, []string{"zeta", "alpha"}) {
		t.Fatalf("expected tag order preserved, got %#v", loaded.Tags)
	}
	if loaded.Status != domain.StatusTodo {
		t.Fatalf("expected todo, got %q", loaded.Status)
	}
	if !loaded.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v, want %v", loaded.CreatedAt, now)
	}

	if err := repo.UpdateTaskStatus(ctx, "t1", domain.StatusDone); err != nil {
		t.Fatalf("UpdateTaskStatus() error = %v", err)
	}
	loaded, err = repo.GetTask(ctx, "t1")
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if loaded.Status != domain.StatusDone {
		t.Fatalf("expected done, got %q", loaded.Status)
	}

	if err := repo.DeleteTask(ctx, "t1"); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if _, err := repo.GetTask(ctx, "t1"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestRepository_NotFoundTranslation(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	if err := repo.UpdateTaskStatus(ctx, "missing", domain.StatusDone); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("UpdateTaskStatus() error = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteTask(ctx, "missing"); !errors.Is(err, app.ErrNotFound) {
		t.Fatalf("DeleteTask() error = %v, want ErrNotFound", err)
	}
}

func TestRepository_ListTasksOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	base := time.Date(2026, 2, 21, 12, 0, 0, 0, time.UTC)

	// Whole-second and fractional timestamps must still sort chronologically.
	fixtures := []domain.Task{
		mustTask(t, "late", "late", nil, base.Add(2*time.Second)),
		mustTask(t, "frac", "frac", nil, base.Add(500*time.Millisecond)),
		mustTask(t, "first", "first", nil, base),
		mustTask(t, "tie", "tie", nil, base),
	}
	for _, task := range fixtures {
		if err := repo.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask() error = %v", err)
		}
	}

	tasks, err := repo.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	got := make([]string, 0, len(tasks))
	for _, task := range tasks {
		got = append(got, task.ID)
		if task.Tags == nil {
			t.Fatalf("expected non-nil tags for %q", task.ID)
		}
	}
	want := []string{"first", "tie", "frac", "late"}
	if !slices.Equal(got, want) {
		t.Fatalf("ListTasks() order = %#v, want %#v", got, want)
	}
}

func TestRepository_DuplicateIDRejected(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)
	now := time.Now()
	if err := repo.CreateTask(ctx, mustTask(t, "t1", "one", nil, now)); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if err := repo.CreateTask(ctx, mustTask(t, "t1", "two", nil, now)); err == nil {
		t.Fatal("expected unique constraint error")
	}
}

func TestRepository_MigrateIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "nested", "taskboard.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if err := repo.CreateTask(ctx, mustTask(t, "t1", "kept", []string{"x"}, time.Now())); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if err := repo.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() second time error = %v", err)
	}
	t.Cleanup(func() {
		_ = reopened.Close()
	})
	tasks, err := reopened.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "t1" {
		t.Fatalf("unexpected tasks after reopen %#v", tasks)
	}
	if err := reopened.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func TestRepository_ScanToleratesLegacyRows(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "legacy.db")
	repo, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})

	db, err := sql.Open(driverName, dbPath)
	if err != nil {
		t.Fatalf("sql.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if _, err := db.ExecContext(ctx, `
		INSERT INTO tasks(id, title, description, tags_json, status, created_at)
		VALUES('legacy', 'Legacy', '', '', 'unknown', '2026-02-21T12:00:00Z')
	`); err != nil {
		t.Fatalf("insert legacy row error = %v", err)
	}

	task, err := repo.GetTask(ctx, "legacy")
	if err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
	if task.Status != domain.StatusTodo {
		t.Fatalf("expected unknown status to fall back to todo, got %q", task.Status)
	}
	if len(task.Tags) != 0 || task.Tags == nil {
		t.Fatalf("expected empty tags, got %#v", task.Tags)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestOpenInMemory(t *testing.T) {
	repo, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	ctx := context.Background()
	if err := repo.CreateTask(ctx, mustTask(t, "mem-1", "memory", nil, time.Now())); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if _, err := repo.GetTask(ctx, "mem-1"); err != nil {
		t.Fatalf("GetTask() error = %v", err)
	}
}
