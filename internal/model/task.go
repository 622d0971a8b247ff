package model

import "time"

// Task status values.
const (
	TaskStatusPending    = "pending"
	TaskStatusInProgress = "in_progress"
	TaskStatusDone       = "done"
)

// Task priority values, lowest to highest.
const (
	TaskPriorityLow    = "low"
	TaskPriorityMedium = "medium"
	TaskPriorityHigh   = "high"
	TaskPriorityUrgent = "urgent"
)

// PriorityRank maps a priority to its sort weight: urgent=4 > high=3 >
// medium=2 > low=1. Sorting by priority uses this rank, never the lexical
// order of the strings (which would put "high" above "urgent").
var PriorityRank = map[string]int{
	TaskPriorityLow:    1,
	TaskPriorityMedium: 2,
	TaskPriorityHigh:   3,
	TaskPriorityUrgent: 4,
}

// ValidTaskStatus reports whether s is one of the known status values.
func ValidTaskStatus(s string) bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

// ValidTaskPriority reports whether p is one of the known priority values.
func ValidTaskPriority(p string) bool {
	_, ok := PriorityRank[p]
	return ok
}

// Task is a trackable to-do owned by one user, optionally derived from a
// memo. CompletedAt is set when the status transitions to done and cleared
// when it leaves done.
type Task struct {
	ID          string     `json:"id"          db:"id"`
	UserID      string     `json:"userId"      db:"user_id"`
	MemoID      *string    `json:"memoId"      db:"memo_id"`
	Title       string     `json:"title"       db:"title"`
	Description string     `json:"description" db:"description"`
	Status      string     `json:"status"      db:"status"`
	Priority    string     `json:"priority"    db:"priority"`
	DueDate     *time.Time `json:"dueDate"     db:"due_date"`
	CompletedAt *time.Time `json:"completedAt" db:"completed_at"`
	CreatedAt   time.Time  `json:"createdAt"   db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt"   db:"updated_at"`
}
