package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/arefin/memotube/internal/model"
	"github.com/arefin/memotube/internal/repository"
)

func seedTask(t *testing.T, db *DB, userID, title, status, priority string) *model.Task {
	t.Helper()
	task := &model.Task{
		UserID:   userID,
		Title:    title,
		Status:   status,
		Priority: priority,
	}
	if err := db.CreateTask(context.Background(), task); err != nil {
		t.Fatalf("seeding task: %v", err)
	}
	return task
}

// Priority must sort by rank (urgent > high > medium > low), not by the
// lexical order of the strings.
func TestListTasks_PrioritySortUsesRank(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice@example.com")

	seedTask(t, db, user.ID, "m", model.TaskStatusPending, model.TaskPriorityMedium)
	seedTask(t, db, user.ID, "u", model.TaskStatusPending, model.TaskPriorityUrgent)
	seedTask(t, db, user.ID, "l", model.TaskStatusPending, model.TaskPriorityLow)
	seedTask(t, db, user.ID, "h", model.TaskStatusPending, model.TaskPriorityHigh)

	tasks, _, err := db.ListTasksByUser(ctx, user.ID,
		repository.ListOptions{Sort: "priority", Order: "desc"}, repository.TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasksByUser: %v", err)
	}

	want := []string{
		model.TaskPriorityUrgent,
		model.TaskPriorityHigh,
		model.TaskPriorityMedium,
		model.TaskPriorityLow,
	}
	for i, priority := range want {
		if tasks[i].Priority != priority {
			t.Fatalf("position %d: got %q, want %q (lexical sort would put high first)",
				i, tasks[i].Priority, priority)
		}
	}
}

func TestListTasks_StatusAndPriorityFilters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice@example.com")

	seedTask(t, db, user.ID, "a", model.TaskStatusPending, model.TaskPriorityHigh)
	seedTask(t, db, user.ID, "b", model.TaskStatusDone, model.TaskPriorityHigh)
	seedTask(t, db, user.ID, "c", model.TaskStatusPending, model.TaskPriorityLow)

	tasks, total, err := db.ListTasksByUser(ctx, user.ID,
		repository.ListOptions{},
		repository.TaskFilter{Status: model.TaskStatusPending, Priority: model.TaskPriorityHigh})
	if err != nil {
		t.Fatalf("ListTasksByUser: %v", err)
	}
	// Filters are conjunctive: pending AND high.
	if total != 1 || len(tasks) != 1 {
		t.Fatalf("got %d rows (total %d), want 1", len(tasks), total)
	}
	if tasks[0].Title != "a" {
		t.Errorf("matched the wrong task: %q", tasks[0].Title)
	}
}

func TestTask_NullableColumnsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := seedUser(t, db, "alice@example.com")

	due := time.Date(2026, 9, 15, 12, 0, 0, 0, time.UTC)
	task := &model.Task{
		UserID:   user.ID,
		Title:    "with due date",
		Status:   model.TaskStatusPending,
		Priority: model.TaskPriorityMedium,
		DueDate:  &due,
	}
	if err := db.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	got, err := db.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Errorf("due date = %v, want %v", got.DueDate, due)
	}
	if got.CompletedAt != nil {
		t.Errorf("completed_at should be NULL, got %v", got.CompletedAt)
	}
	if got.MemoID != nil {
		t.Errorf("memo_id should be NULL, got %v", got.MemoID)
	}

	// Clear the due date and stamp completion.
	now := time.Now().UTC()
	got.DueDate = nil
	got.CompletedAt = &now
	got.Status = model.TaskStatusDone
	if err := db.UpdateTask(ctx, got); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	back, err := db.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTaskByID: %v", err)
	}
	if back.DueDate != nil {
		t.Errorf("due date should be cleared, got %v", back.DueDate)
	}
	if back.CompletedAt == nil {
		t.Error("completed_at should be set")
	}
}
