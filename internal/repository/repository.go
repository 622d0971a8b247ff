// Package repository declares the persistence interfaces the service layer
// programs against. The sqlite subpackage implements them; tests substitute
// in-memory mocks.
package repository

import (
	"context"

	"github.com/arefin/memotube/internal/model"
)

// Pagination bounds. Limits outside [1, MaxLimit] are clamped, not rejected —
// a sloppy client gets a sane page, not an error.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ListOptions is the generic paginated-list input shared by every resource.
//
// Sort names an API-level field; each repository maps it through its own
// allow-list to a real column and silently falls back to the default when
// the name is unknown. Sort values are NEVER interpolated into SQL directly.
// Search is a case-insensitive substring match over the resource's text
// columns, ANDed with any resource filter.
type ListOptions struct {
	Page   int
	Limit  int
	Sort   string
	Order  string // "asc" or "desc"; anything else becomes "desc"
	Search string
}

// Normalize clamps the options into their legal ranges.
func (o ListOptions) Normalize() ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = DefaultLimit
	}
	if o.Limit > MaxLimit {
		o.Limit = MaxLimit
	}
	if o.Order != "asc" && o.Order != "desc" {
		o.Order = "desc"
	}
	return o
}

// Offset is the row offset for the requested page: (page-1) * limit.
func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// VideoFilter narrows a video listing. Nil fields mean "don't filter".
type VideoFilter struct {
	Watched *bool
}

// MemoFilter narrows a memo listing. Empty VideoID means "don't filter".
type MemoFilter struct {
	VideoID string
}

// TaskFilter narrows a task listing. Empty fields mean "don't filter".
type TaskFilter struct {
	Status   string
	Priority string
	MemoID   string
}

// UserRepository persists accounts. Get methods return apperror.ErrNotFound
// (wrapped) when no row matches; lookups never filter out inactive accounts
// — the service layer decides how deactivation behaves per operation.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*model.User, error)
	UpdateUser(ctx context.Context, user *model.User) error
	DeactivateUser(ctx context.Context, id string) error
}

// VideoRepository persists saved videos.
//
// Update and Delete are conditional on BOTH id and owner (WHERE id=? AND
// user_id=?) so the ownership check and the mutation are a single atomic
// statement — no read-then-write race. Zero affected rows surfaces as
// not-found regardless of which half of the condition failed.
type VideoRepository interface {
	CreateVideo(ctx context.Context, video *model.Video) error
	GetVideoByID(ctx context.Context, id string) (*model.Video, error)
	ListVideosByUser(ctx context.Context, userID string, opts ListOptions, filter VideoFilter) ([]model.Video, int, error)
	UpdateVideo(ctx context.Context, video *model.Video) error
	DeleteVideo(ctx context.Context, id, userID string) error
}

// MemoRepository persists memos. Same ownership semantics as videos.
type MemoRepository interface {
	CreateMemo(ctx context.Context, memo *model.Memo) error
	GetMemoByID(ctx context.Context, id string) (*model.Memo, error)
	ListMemosByUser(ctx context.Context, userID string, opts ListOptions, filter MemoFilter) ([]model.Memo, int, error)
	UpdateMemo(ctx context.Context, memo *model.Memo) error
	DeleteMemo(ctx context.Context, id, userID string) error
}

// TaskRepository persists tasks. Same ownership semantics as videos.
type TaskRepository interface {
	CreateTask(ctx context.Context, task *model.Task) error
	GetTaskByID(ctx context.Context, id string) (*model.Task, error)
	ListTasksByUser(ctx context.Context, userID string, opts ListOptions, filter TaskFilter) ([]model.Task, int, error)
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, id, userID string) error
}
