package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/arefin/memotube/internal/apperror"
	"github.com/arefin/memotube/internal/model"
	"github.com/arefin/memotube/internal/repository"
)

func newTestTaskService(t *testing.T) (*TaskService, *MemoService) {
	t.Helper()
	memoRepo := newMockMemoRepo()
	memos := NewMemoService(memoRepo, newMockVideoRepo(), testLogger())
	tasks := NewTaskService(newMockTaskRepo(), memoRepo, testLogger())
	return tasks, memos
}

// =========================================================================
// CREATE
// =========================================================================

func TestTaskCreate_Defaults(t *testing.T) {
	tasks, _ := newTestTaskService(t)

	task, err := tasks.Create(context.Background(), "user-1", CreateTaskInput{
		Title: "Review the talk notes",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.Status != model.TaskStatusPending {
		t.Errorf("status = %q, want pending", task.Status)
	}
	if task.Priority != model.TaskPriorityMedium {
		t.Errorf("priority = %q, want medium", task.Priority)
	}
	if task.CompletedAt != nil {
		t.Error("a pending task has no completion time")
	}
}

func TestTaskCreate_Validation(t *testing.T) {
	tasks, _ := newTestTaskService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CreateTaskInput
	}{
		{"empty title", CreateTaskInput{Title: "  "}},
		{"bad status", CreateTaskInput{Title: "x", Status: "paused"}},
		{"bad priority", CreateTaskInput{Title: "x", Priority: "critical"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := tasks.Create(ctx, "user-1", tc.in); !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestTaskCreate_DoneStampsCompletion(t *testing.T) {
	tasks, _ := newTestTaskService(t)

	task, err := tasks.Create(context.Background(), "user-1", CreateTaskInput{
		Title:  "Already finished",
		Status: model.TaskStatusDone,
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if task.CompletedAt == nil {
		t.Error("creating a done task must stamp CompletedAt")
	}
}

// =========================================================================
// CONVERT FROM MEMO
// =========================================================================

func TestTaskCreateFromMemo(t *testing.T) {
	tasks, memos := newTestTaskService(t)
	ctx := context.Background()

	memo, err := memos.Create(ctx, "user-1", CreateMemoInput{
		Content: "Benchmark the new cache layer\nBefore the next release.",
	})
	if err != nil {
		t.Fatalf("creating memo: %v", err)
	}

	task, err := tasks.CreateFromMemo(ctx, "user-1", memo.ID, CreateTaskInput{
		Priority: model.TaskPriorityHigh,
	})
	if err != nil {
		t.Fatalf("CreateFromMemo: %v", err)
	}
	if task.Title != "Benchmark the new cache layer" {
		t.Errorf("title should be the memo's first line, got %q", task.Title)
	}
	if task.Description != memo.Content {
		t.Errorf("description should carry the memo content")
	}
	if task.MemoID == nil || *task.MemoID != memo.ID {
		t.Errorf("memo link = %v, want %s", task.MemoID, memo.ID)
	}
	if task.Priority != model.TaskPriorityHigh {
		t.Errorf("priority = %q", task.Priority)
	}
}

func TestTaskCreateFromMemo_ForeignMemoRejected(t *testing.T) {
	tasks, memos := newTestTaskService(t)
	ctx := context.Background()

	memo, err := memos.Create(ctx, "user-1", CreateMemoInput{Content: "mine"})
	if err != nil {
		t.Fatalf("creating memo: %v", err)
	}

	_, err = tasks.CreateFromMemo(ctx, "user-2", memo.ID, CreateTaskInput{})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// =========================================================================
// STATUS TRANSITIONS
// =========================================================================

func TestTaskUpdate_CompletionLifecycle(t *testing.T) {
	tasks, _ := newTestTaskService(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, "user-1", CreateTaskInput{Title: "lifecycle"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	done, err := tasks.Update(ctx, "user-1", task.ID, UpdateTaskInput{
		Status: ptrString(model.TaskStatusDone),
	})
	if err != nil {
		t.Fatalf("Update to done: %v", err)
	}
	if done.CompletedAt == nil {
		t.Fatal("moving to done must stamp CompletedAt")
	}

	reopened, err := tasks.Update(ctx, "user-1", task.ID, UpdateTaskInput{
		Status: ptrString(model.TaskStatusInProgress),
	})
	if err != nil {
		t.Fatalf("Update to in_progress: %v", err)
	}
	if reopened.CompletedAt != nil {
		t.Error("leaving done must clear CompletedAt")
	}
}

func TestTaskUpdate_DueDate(t *testing.T) {
	tasks, _ := newTestTaskService(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, "user-1", CreateTaskInput{Title: "due"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	due := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	withDue, err := tasks.Update(ctx, "user-1", task.ID, UpdateTaskInput{DueDate: &due})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if withDue.DueDate == nil || !withDue.DueDate.Equal(due) {
		t.Errorf("due date = %v, want %v", withDue.DueDate, due)
	}

	cleared, err := tasks.Update(ctx, "user-1", task.ID, UpdateTaskInput{ClearDue: true})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if cleared.DueDate != nil {
		t.Errorf("due date should be cleared, got %v", cleared.DueDate)
	}
}

// =========================================================================
// OWNERSHIP
// =========================================================================

func TestTask_OwnershipIsolation(t *testing.T) {
	tasks, _ := newTestTaskService(t)
	ctx := context.Background()

	task, err := tasks.Create(ctx, "user-1", CreateTaskInput{Title: "private"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := tasks.GetByID(ctx, "user-2", task.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get as non-owner: expected ErrNotFound, got %v", err)
	}
	_, err = tasks.Update(ctx, "user-2", task.ID, UpdateTaskInput{Title: ptrString("stolen")})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update as non-owner: expected ErrNotFound, got %v", err)
	}
	if err := tasks.Delete(ctx, "user-2", task.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete as non-owner: expected ErrNotFound, got %v", err)
	}
}

// =========================================================================
// LIST
// =========================================================================

func TestTaskList_FiltersAndPrioritySort(t *testing.T) {
	tasks, _ := newTestTaskService(t)
	ctx := context.Background()

	fixtures := []CreateTaskInput{
		{Title: "low pending", Priority: model.TaskPriorityLow},
		{Title: "urgent pending", Priority: model.TaskPriorityUrgent},
		{Title: "high done", Priority: model.TaskPriorityHigh, Status: model.TaskStatusDone},
	}
	for _, in := range fixtures {
		if _, err := tasks.Create(ctx, "user-1", in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	pending, page, err := tasks.List(ctx, "user-1",
		repository.ListOptions{}, repository.TaskFilter{Status: model.TaskStatusPending})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.Total != 2 || len(pending) != 2 {
		t.Errorf("status filter: got %d items (total %d), want 2", len(pending), page.Total)
	}

	byPriority, _, err := tasks.List(ctx, "user-1",
		repository.ListOptions{Sort: "priority", Order: "desc"}, repository.TaskFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if byPriority[0].Priority != model.TaskPriorityUrgent {
		t.Errorf("desc priority sort should lead with urgent, got %q", byPriority[0].Priority)
	}
	if byPriority[len(byPriority)-1].Priority != model.TaskPriorityLow {
		t.Errorf("desc priority sort should end with low, got %q",
			byPriority[len(byPriority)-1].Priority)
	}
}

func TestTaskList_InvalidFilterRejected(t *testing.T) {
	tasks, _ := newTestTaskService(t)

	_, _, err := tasks.List(context.Background(), "user-1",
		repository.ListOptions{}, repository.TaskFilter{Status: "archived"})
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("expected ErrValidation, got %v", err)
	}
}
