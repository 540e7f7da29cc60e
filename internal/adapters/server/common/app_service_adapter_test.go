package common

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/evanschultz/taskboard/internal/adapters/storage/sqlite"
	"github.com/evanschultz/taskboard/internal/app"
	"github.com/evanschultz/taskboard/internal/domain"
)

// newAdapterForTest wires an adapter over a file-backed sqlite repository.
func newAdapterForTest(t *testing.T) *AppServiceAdapter {
	t.Helper()
	repo, err := sqlite.Open(filepath.Join(t.TempDir(), "taskboard.db"))
	if err != nil {
		t.Fatalf("sqlite.Open() error = %v", err)
	}
	t.Cleanup(func() {
		_ = repo.Close()
	})
	seq := 0
	now := time.Date(2026, 2, 24, 12, 0, 0, 0, time.UTC)
	svc := app.NewService(repo, func() string {
		seq++
		return fmt.Sprintf("t%d", seq)
	}, func() time.Time {
		now = now.Add(time.Second)
		return now
	})
	return NewAppServiceAdapter(svc)
}

// TestAppServiceAdapterBoardFlow verifies create, move, list, and delete through the adapter.
func TestAppServiceAdapterBoardFlow(t *testing.T) {
	ctx := context.Background()
	adapter := newAdapterForTest(t)

	created, err := adapter.CreateTask(ctx, CreateTaskRequest{
		Title:       "  First  ",
		Description: " details ",
		Tags:        []string{"b", " a ", ""},
	})
	if err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}
	if created.ID != "t1" || created.Status != "todo" || created.Title != "First" {
		t.Fatalf("unexpected created task %#v", created)
	}
	if !slices.Equal(created.Tags, []string{"b", "a"}) {
		t.Fatalf("unexpected tags %#v", created.Tags)
	}
	if _, err := adapter.CreateTask(ctx, CreateTaskRequest{Title: "Second"}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	moved, err := adapter.MoveTask(ctx, MoveTaskRequest{ID: "t1", Status: "done"})
	if err != nil {
		t.Fatalf("MoveTask() error = %v", err)
	}
	if moved.Status != "done" {
		t.Fatalf("moved status = %q, want done", moved.Status)
	}

	board, err := adapter.ListBoard(ctx)
	if err != nil {
		t.Fatalf("ListBoard() error = %v", err)
	}
	if len(board.Todo) != 1 || board.Todo[0].ID != "t2" {
		t.Fatalf("unexpected todo column %#v", board.Todo)
	}
	if board.InProgress == nil || len(board.InProgress) != 0 {
		t.Fatalf("expected empty non-nil inprogress column, got %#v", board.InProgress)
	}
	if len(board.Done) != 1 || board.Done[0].ID != "t1" {
		t.Fatalf("unexpected done column %#v", board.Done)
	}
	if board.Todo[0].Tags == nil {
		t.Fatal("expected non-nil tags on wire task")
	}

	if err := adapter.DeleteTask(ctx, DeleteTaskRequest{ID: "t1"}); err != nil {
		t.Fatalf("DeleteTask() error = %v", err)
	}
	if err := adapter.DeleteTask(ctx, DeleteTaskRequest{ID: "t1"}); err != nil {
		t.Fatalf("DeleteTask() repeat error = %v", err)
	}
	board, err = adapter.ListBoard(ctx)
	if err != nil {
		t.Fatalf("ListBoard() error = %v", err)
	}
	if len(board.Done) != 0 {
		t.Fatalf("expected done column empty after delete, got %#v", board.Done)
	}
	if err := adapter.Ready(ctx); err != nil {
		t.Fatalf("Ready() error = %v", err)
	}
}

// TestAppServiceAdapterValidation verifies transport-visible error categories.
func TestAppServiceAdapterValidation(t *testing.T) {
	ctx := context.Background()
	adapter := newAdapterForTest(t)
	if _, err := adapter.CreateTask(ctx, CreateTaskRequest{Title: "exists"}); err != nil {
		t.Fatalf("CreateTask() error = %v", err)
	}

	cases := []struct {
		name    string
		run     func() error
		wantErr []error
	}{
		{
			name: "blank title",
			run: func() error {
				_, err := adapter.CreateTask(ctx, CreateTaskRequest{Title: "  "})
				return err
			},
			wantErr: []error{ErrInvalidRequest},
		},
		{
			name: "move missing fields",
			run: func() error {
				_, err := adapter.MoveTask(ctx, MoveTaskRequest{ID: "t1"})
				return err
			},
			wantErr: []error{ErrInvalidRequest},
		},
		{
			name: "move invalid status",
			run: func() error {
				_, err := adapter.MoveTask(ctx, MoveTaskRequest{ID: "t1", Status: "blocked"})
				return err
			},
			wantErr: []error{ErrInvalidRequest, domain.ErrInvalidStatus},
		},
		{
			name: "move unknown id",
			run: func() error {
				_, err := adapter.MoveTask(ctx, MoveTaskRequest{ID: "nope", Status: "done"})
				return err
			},
			wantErr: []error{ErrInvalidRequest, ErrNotFound},
		},
		{
			name: "delete missing id",
			run: func() error {
				return adapter.DeleteTask(ctx, DeleteTaskRequest{ID: " "})
			},
			wantErr: []error{ErrInvalidRequest},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.run()
			for _, want := range tc.wantErr {
				if !errors.Is(err, want) {
					t.Fatalf("error = %v, want errors.Is(%v)", err, want)
				}
			}
		})
	}
}

// TestAppServiceAdapterUnconfigured verifies nil adapters fail closed.
func TestAppServiceAdapterUnconfigured(t *testing.T) {
	var adapter *AppServiceAdapter
	if _, err := adapter.ListBoard(context.Background()); !errors.Is(err, ErrServiceUnavailable) {
		t.Fatalf("ListBoard() error = %v, want ErrServiceUnavailable", err)
	}
}

// TestBoardGroupedRoundTrip verifies wire boards convert back into full groupings.
func TestBoardGroupedRoundTrip(t *testing.T) {
	board := Board{
		Todo: []Task{{ID: "a", Title: "A", Status: "todo", Tags: []string{"x"}}},
		Done: []Task{{ID: "b", Title: "B", Status: "todo"}},
	}
	grouped := board.Grouped()
	if len(grouped[domain.StatusInProgress]) != 0 {
		t.Fatalf("expected empty inprogress, got %#v", grouped[domain.StatusInProgress])
	}
	if got := grouped[domain.StatusDone]; len(got) != 1 || got[0].Status != domain.StatusDone {
		t.Fatalf("expected column to decide status, got %#v", got)
	}
	back := BoardFromGrouped(grouped)
	if len(back.Todo) != 1 || back.Todo[0].ID != "a" || !slices.Equal(back.Todo[0].Tags, []string{"x"}) {
		t.Fatalf("unexpected round trip %#v", back)
	}
}
