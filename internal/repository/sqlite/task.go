package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/arefin/memotube/internal/apperror"
	"github.com/arefin/memotube/internal/model"
	"github.com/arefin/memotube/internal/repository"
)

// compile-time check that *DB implements repository.TaskRepository
var _ repository.TaskRepository = (*DB)(nil)

const taskColumns = `id, user_id, memo_id, title, description, status, priority, due_date, completed_at, created_at, updated_at`

// priorityRankSQL orders tasks by the fixed priority rank (urgent=4 down to
// low=1) instead of the lexical order of the enum strings, which would put
// "high" above "urgent".
const priorityRankSQL = `CASE priority
	WHEN 'urgent' THEN 4
	WHEN 'high' THEN 3
	WHEN 'medium' THEN 2
	WHEN 'low' THEN 1
	ELSE 0 END`

var taskSortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"title":     "title",
	"dueDate":   "due_date",
	"status":    "status",
	"priority":  priorityRankSQL,
}

// CreateTask inserts a new task for its owner.
func (db *DB) CreateTask(ctx context.Context, task *model.Task) error {
	task.ID = xid.New().String()
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO tasks (`+taskColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.UserID,
		task.MemoID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.CompletedAt,
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating task: %w", err)
	}

	return nil
}

// GetTaskByID fetches a task by id alone; ownership is the service's call.
func (db *DB) GetTaskByID(ctx context.Context, id string) (*model.Task, error) {
	var t model.Task

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id,
	).Scan(
		&t.ID,
		&t.UserID,
		&t.MemoID,
		&t.Title,
		&t.Description,
		&t.Status,
		&t.Priority,
		&t.DueDate,
		&t.CompletedAt,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("task", id)
		}
		return nil, fmt.Errorf("sqlite: getting task %s: %w", id, err)
	}

	return &t, nil
}

// ListTasksByUser returns one page of the user's tasks plus the total count.
func (db *DB) ListTasksByUser(ctx context.Context, userID string, opts repository.ListOptions, filter repository.TaskFilter) ([]model.Task, int, error) {
	opts = opts.Normalize()

	where := []string{"user_id = ?"}
	args := []any{userID}

	if opts.Search != "" {
		where = append(where, `(title LIKE ? ESCAPE '\' COLLATE NOCASE OR description LIKE ? ESCAPE '\' COLLATE NOCASE)`)
		pattern := likePattern(opts.Search)
		args = append(args, pattern, pattern)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		where = append(where, "priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.MemoID != "" {
		where = append(where, "memo_id = ?")
		args = append(args, filter.MemoID)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks WHERE `+whereClause, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting tasks: %w", err)
	}

	orderBy := orderClause(taskSortColumns, opts.Sort, "created_at", opts.Order)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+taskColumns+` FROM tasks
		 WHERE `+whereClause+`
		 ORDER BY `+orderBy+`
		 LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, opts.Limit)
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(
			&t.ID, &t.UserID, &t.MemoID, &t.Title, &t.Description, &t.Status,
			&t.Priority, &t.DueDate, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating tasks: %w", err)
	}

	return tasks, total, nil
}

// UpdateTask writes the mutable fields, conditional on ownership.
func (db *DB) UpdateTask(ctx context.Context, task *model.Task) error {
	task.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE tasks
		 SET memo_id = ?, title = ?, description = ?, status = ?, priority = ?, due_date = ?, completed_at = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		task.MemoID,
		task.Title,
		task.Description,
		task.Status,
		task.Priority,
		task.DueDate,
		task.CompletedAt,
		task.UpdatedAt,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating task %s: %w", task.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", task.ID)
	}

	return nil
}

// DeleteTask removes a task, conditional on ownership.
func (db *DB) DeleteTask(ctx context.Context, id, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting task %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("task", id)
	}

	return nil
}
