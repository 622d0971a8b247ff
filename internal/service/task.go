package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/arefin/memotube/internal/apperror"
	"github.com/arefin/memotube/internal/model"
	"github.com/arefin/memotube/internal/repository"
)

const (
	MaxTaskTitleLength       = 200
	MaxTaskDescriptionLength = 5000
)

// TaskService handles task CRUD. Tasks can be created standalone or
// converted from one of the caller's memos.
type TaskService struct {
	repo   repository.TaskRepository
	memos  repository.MemoRepository
	logger *slog.Logger
}

func NewTaskService(repo repository.TaskRepository, memos repository.MemoRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		memos:  memos,
		logger: logger,
	}
}

// CreateTaskInput is the validated input for Create. Status and Priority
// default to pending/medium when empty.
type CreateTaskInput struct {
	Title       string
	Description string
	Status      string
	Priority    string
	MemoID      *string
	DueDate     *time.Time
}

func (s *TaskService) Create(ctx context.Context, userID string, in CreateTaskInput) (*model.Task, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(title) > MaxTaskTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or less", MaxTaskTitleLength))
	}
	if len(in.Description) > MaxTaskDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxTaskDescriptionLength))
	}

	status := in.Status
	if status == "" {
		status = model.TaskStatusPending
	}
	if !model.ValidTaskStatus(status) {
		return nil, apperror.ValidationFailed("status", "status must be one of: pending, in_progress, done")
	}

	priority := in.Priority
	if priority == "" {
		priority = model.TaskPriorityMedium
	}
	if !model.ValidTaskPriority(priority) {
		return nil, apperror.ValidationFailed("priority", "priority must be one of: low, medium, high, urgent")
	}

	if in.MemoID != nil && *in.MemoID != "" {
		if err := s.checkMemoOwnership(ctx, userID, *in.MemoID); err != nil {
			return nil, err
		}
	} else {
		in.MemoID = nil
	}

	task := &model.Task{
		UserID:      userID,
		MemoID:      in.MemoID,
		Title:       title,
		Description: in.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     in.DueDate,
	}
	if status == model.TaskStatusDone {
		now := time.Now().UTC()
		task.CompletedAt = &now
	}

	if err := s.repo.CreateTask(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating task: %w", err)
	}

	return task, nil
}

// CreateFromMemo converts one of the caller's memos into a task, seeding the
// title from the memo's first line.
func (s *TaskService) CreateFromMemo(ctx context.Context, userID, memoID string, in CreateTaskInput) (*model.Task, error) {
	memo, err := s.memos.GetMemoByID(ctx, memoID)
	if err != nil {
		return nil, err
	}
	if memo.UserID != userID {
		return nil, apperror.NotFound("memo", memoID)
	}

	if strings.TrimSpace(in.Title) == "" {
		in.Title = titleFromContent(memo.Content)
	}
	if in.Description == "" {
		in.Description = memo.Content
	}
	in.MemoID = &memoID

	return s.Create(ctx, userID, in)
}

func (s *TaskService) GetByID(ctx context.Context, userID, id string) (*model.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "task ID is required")
	}

	task, err := s.repo.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, apperror.NotFound("task", id)
	}

	return task, nil
}

func (s *TaskService) List(ctx context.Context, userID string, opts repository.ListOptions, filter repository.TaskFilter) ([]model.Task, model.Pagination, error) {
	opts = opts.Normalize()

	if filter.Status != "" && !model.ValidTaskStatus(filter.Status) {
		return nil, model.Pagination{}, apperror.ValidationFailed("status", "status must be one of: pending, in_progress, done")
	}
	if filter.Priority != "" && !model.ValidTaskPriority(filter.Priority) {
		return nil, model.Pagination{}, apperror.ValidationFailed("priority", "priority must be one of: low, medium, high, urgent")
	}

	tasks, total, err := s.repo.ListTasksByUser(ctx, userID, opts, filter)
	if err != nil {
		s.logger.Error("failed to list tasks", slog.String("error", err.Error()))
		return nil, model.Pagination{}, fmt.Errorf("listing tasks: %w", err)
	}

	return tasks, model.NewPagination(opts.Page, opts.Limit, total), nil
}

// UpdateTaskInput carries optional changes; nil means unchanged.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	ClearDue    bool
}

func (s *TaskService) Update(ctx context.Context, userID, id string, in UpdateTaskInput) (*model.Task, error) {
	task, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title cannot be empty")
		}
		if len(title) > MaxTaskTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxTaskTitleLength))
		}
		task.Title = title
	}
	if in.Description != nil {
		if len(*in.Description) > MaxTaskDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxTaskDescriptionLength))
		}
		task.Description = *in.Description
	}
	if in.Status != nil {
		if !model.ValidTaskStatus(*in.Status) {
			return nil, apperror.ValidationFailed("status", "status must be one of: pending, in_progress, done")
		}
		// Moving into done stamps completion; moving out clears it.
		if *in.Status == model.TaskStatusDone && task.Status != model.TaskStatusDone {
			now := time.Now().UTC()
			task.CompletedAt = &now
		}
		if *in.Status != model.TaskStatusDone {
			task.CompletedAt = nil
		}
		task.Status = *in.Status
	}
	if in.Priority != nil {
		if !model.ValidTaskPriority(*in.Priority) {
			return nil, apperror.ValidationFailed("priority", "priority must be one of: low, medium, high, urgent")
		}
		task.Priority = *in.Priority
	}
	if in.ClearDue {
		task.DueDate = nil
	} else if in.DueDate != nil {
		task.DueDate = in.DueDate
	}

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return nil, err
	}

	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "task ID is required")
	}

	return s.repo.DeleteTask(ctx, id, userID)
}

func (s *TaskService) checkMemoOwnership(ctx context.Context, userID, memoID string) error {
	memo, err := s.memos.GetMemoByID(ctx, memoID)
	if err != nil {
		return err
	}
	if memo.UserID != userID {
		return apperror.NotFound("memo", memoID)
	}
	return nil
}

// titleFromContent derives a task title from memo text: first line, clipped.
func titleFromContent(content string) string {
	line := content
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if len(line) > MaxTaskTitleLength {
		line = line[:MaxTaskTitleLength]
	}
	return line
}
