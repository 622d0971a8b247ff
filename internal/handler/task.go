package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/arefin/memotube/internal/apperror"
	"github.com/arefin/memotube/internal/repository"
	"github.com/arefin/memotube/internal/service"
)

// TaskHandler owns the task endpoints, including memo-to-task conversion.
type TaskHandler struct {
	svc    *service.TaskService
	logger *slog.Logger
}

func NewTaskHandler(svc *service.TaskService, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{svc: svc, logger: logger}
}

type createTaskRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	MemoID      *string `json:"memoId"`
	DueDate     *string `json:"dueDate"` // RFC 3339
}

func (req createTaskRequest) toInput() (service.CreateTaskInput, error) {
	in := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		MemoID:      req.MemoID,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := time.Parse(time.RFC3339, *req.DueDate)
		if err != nil {
			return in, apperror.ValidationFailed("dueDate", "must be an RFC 3339 timestamp")
		}
		in.DueDate = &due
	}
	return in, nil
}

// HandleCreate creates a task, optionally linked to a memo.
//
// POST /api/tasks
func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.svc.Create(r.Context(), identity.UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusCreated, task)
}

// HandleCreateFromMemo converts one of the caller's memos into a task. The
// body is optional; an empty one takes the title and description from the
// memo itself.
//
// POST /api/memos/{id}/tasks
func (h *TaskHandler) HandleCreateFromMemo(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req createTaskRequest
	if r.ContentLength > 0 {
		if err := decodeBody(r, &req); err != nil {
			writeError(w, r, err)
			return
		}
	}
	in, err := req.toInput()
	if err != nil {
		writeError(w, r, err)
		return
	}

	task, err := h.svc.CreateFromMemo(r.Context(), identity.UserID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusCreated, task)
}

// HandleList returns one page of the caller's tasks.
//
// GET /api/tasks?page=&limit=&sort=&order=&search=&status=&priority=&memoId=
func (h *TaskHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	filter := repository.TaskFilter{
		Status:   q.Get("status"),
		Priority: q.Get("priority"),
		MemoID:   q.Get("memoId"),
	}

	tasks, page, err := h.svc.List(r.Context(), identity.UserID,
		listOptionsFromQuery(r), filter)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, listPayload{Items: tasks, Pagination: page})
}

// HandleGet returns a single task.
//
// GET /api/tasks/{id}
func (h *TaskHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	task, err := h.svc.GetByID(r.Context(), identity.UserID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, task)
}

type updateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
	Priority    *string `json:"priority"`
	DueDate     *string `json:"dueDate"` // RFC 3339; "" clears the due date
}

// HandleUpdate applies partial changes to a task.
//
// PUT /api/tasks/{id}
func (h *TaskHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	var req updateTaskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, r, err)
		return
	}

	in := service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate != nil {
		if *req.DueDate == "" {
			in.ClearDue = true
		} else {
			due, err := time.Parse(time.RFC3339, *req.DueDate)
			if err != nil {
				writeError(w, r, apperror.ValidationFailed("dueDate", "must be an RFC 3339 timestamp"))
				return
			}
			in.DueDate = &due
		}
	}

	task, err := h.svc.Update(r.Context(), identity.UserID, chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, task)
}

// HandleDelete removes a task.
//
// DELETE /api/tasks/{id}
func (h *TaskHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	identity, ok := callerIdentity(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}

	writeData(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
