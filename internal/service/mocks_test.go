package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/arefin/memotube/internal/apperror"
	"github.com/arefin/memotube/internal/model"
	"github.com/arefin/memotube/internal/repository"
)

// =========================================================================
// IN-MEMORY MOCK REPOSITORIES
// =========================================================================
//
// Hand-written fakes implementing the repository interfaces. They keep just
// enough behavior to exercise the services: stable IDs, copy-on-read so
// tests can't alias internal state, and the same not-found/conflict errors
// the sqlite implementations return.

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// --- users ---------------------------------------------------------------

type mockUserRepo struct {
	users  map[string]*model.User
	nextID int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) CreateUser(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperror.Conflict("user", "email already registered")
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	user.Active = true
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	result := *u
	return &result, nil
}

func (m *mockUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *mockUserRepo) GetUserByGoogleID(_ context.Context, googleID string) (*model.User, error) {
	for _, u := range m.users {
		if u.GoogleID != "" && u.GoogleID == googleID {
			result := *u
			return &result, nil
		}
	}
	return nil, apperror.NotFound("user", googleID)
}

func (m *mockUserRepo) UpdateUser(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return apperror.NotFound("user", user.ID)
	}
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) DeactivateUser(_ context.Context, id string) error {
	u, ok := m.users[id]
	if !ok || !u.Active {
		return apperror.NotFound("user", id)
	}
	u.Active = false
	return nil
}

// --- videos --------------------------------------------------------------

type mockVideoRepo struct {
	videos map[string]*model.Video
	nextID int
}

func newMockVideoRepo() *mockVideoRepo {
	return &mockVideoRepo{videos: make(map[string]*model.Video)}
}

func (m *mockVideoRepo) CreateVideo(_ context.Context, video *model.Video) error {
	m.nextID++
	video.ID = fmt.Sprintf("video-%d", m.nextID)
	video.CreatedAt = time.Now().UTC()
	video.UpdatedAt = video.CreatedAt
	stored := *video
	m.videos[video.ID] = &stored
	return nil
}

func (m *mockVideoRepo) GetVideoByID(_ context.Context, id string) (*model.Video, error) {
	v, ok := m.videos[id]
	if !ok {
		return nil, apperror.NotFound("video", id)
	}
	result := *v
	return &result, nil
}

func (m *mockVideoRepo) ListVideosByUser(_ context.Context, userID string, opts repository.ListOptions, filter repository.VideoFilter) ([]model.Video, int, error) {
	var all []model.Video
	for _, v := range m.videos {
		if v.UserID != userID {
			continue
		}
		if filter.Watched != nil && v.Watched != *filter.Watched {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(v.Title), strings.ToLower(opts.Search)) {
			continue
		}
		all = append(all, *v)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, opts), len(all), nil
}

func (m *mockVideoRepo) UpdateVideo(_ context.Context, video *model.Video) error {
	stored, ok := m.videos[video.ID]
	if !ok || stored.UserID != video.UserID {
		return apperror.NotFound("video", video.ID)
	}
	copied := *video
	m.videos[video.ID] = &copied
	return nil
}

func (m *mockVideoRepo) DeleteVideo(_ context.Context, id, userID string) error {
	stored, ok := m.videos[id]
	if !ok || stored.UserID != userID {
		return apperror.NotFound("video", id)
	}
	delete(m.videos, id)
	return nil
}

// --- memos ---------------------------------------------------------------

type mockMemoRepo struct {
	memos  map[string]*model.Memo
	nextID int
}

func newMockMemoRepo() *mockMemoRepo {
	return &mockMemoRepo{memos: make(map[string]*model.Memo)}
}

func (m *mockMemoRepo) CreateMemo(_ context.Context, memo *model.Memo) error {
	m.nextID++
	memo.ID = fmt.Sprintf("memo-%d", m.nextID)
	memo.CreatedAt = time.Now().UTC()
	memo.UpdatedAt = memo.CreatedAt
	stored := *memo
	m.memos[memo.ID] = &stored
	return nil
}

func (m *mockMemoRepo) GetMemoByID(_ context.Context, id string) (*model.Memo, error) {
	memo, ok := m.memos[id]
	if !ok {
		return nil, apperror.NotFound("memo", id)
	}
	result := *memo
	return &result, nil
}

func (m *mockMemoRepo) ListMemosByUser(_ context.Context, userID string, opts repository.ListOptions, filter repository.MemoFilter) ([]model.Memo, int, error) {
	var all []model.Memo
	for _, memo := range m.memos {
		if memo.UserID != userID {
			continue
		}
		if filter.VideoID != "" && (memo.VideoID == nil || *memo.VideoID != filter.VideoID) {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(memo.Content), strings.ToLower(opts.Search)) {
			continue
		}
		all = append(all, *memo)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return page(all, opts), len(all), nil
}

func (m *mockMemoRepo) UpdateMemo(_ context.Context, memo *model.Memo) error {
	stored, ok := m.memos[memo.ID]
	if !ok || stored.UserID != memo.UserID {
		return apperror.NotFound("memo", memo.ID)
	}
	copied := *memo
	m.memos[memo.ID] = &copied
	return nil
}

func (m *mockMemoRepo) DeleteMemo(_ context.Context, id, userID string) error {
	stored, ok := m.memos[id]
	if !ok || stored.UserID != userID {
		return apperror.NotFound("memo", id)
	}
	delete(m.memos, id)
	return nil
}

// --- tasks ---------------------------------------------------------------

type mockTaskRepo struct {
	tasks  map[string]*model.Task
	nextID int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]*model.Task)}
}

func (m *mockTaskRepo) CreateTask(_ context.Context, task *model.Task) error {
	m.nextID++
	task.ID = fmt.Sprintf("task-%d", m.nextID)
	task.CreatedAt = time.Now().UTC()
	task.UpdatedAt = task.CreatedAt
	stored := *task
	m.tasks[task.ID] = &stored
	return nil
}

func (m *mockTaskRepo) GetTaskByID(_ context.Context, id string) (*model.Task, error) {
	task, ok := m.tasks[id]
	if !ok {
		return nil, apperror.NotFound("task", id)
	}
	result := *task
	return &result, nil
}

func (m *mockTaskRepo) ListTasksByUser(_ context.Context, userID string, opts repository.ListOptions, filter repository.TaskFilter) ([]model.Task, int, error) {
	var all []model.Task
	for _, task := range m.tasks {
		if task.UserID != userID {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Priority != "" && task.Priority != filter.Priority {
			continue
		}
		if filter.MemoID != "" && (task.MemoID == nil || *task.MemoID != filter.MemoID) {
			continue
		}
		if opts.Search != "" && !strings.Contains(strings.ToLower(task.Title), strings.ToLower(opts.Search)) {
			continue
		}
		all = append(all, *task)
	}
	if opts.Sort == "priority" {
		sort.Slice(all, func(i, j int) bool {
			ri, rj := model.PriorityRank[all[i].Priority], model.PriorityRank[all[j].Priority]
			if opts.Order == "asc" {
				return ri < rj
			}
			return ri > rj
		})
	} else {
		sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	}
	return page(all, opts), len(all), nil
}

func (m *mockTaskRepo) UpdateTask(_ context.Context, task *model.Task) error {
	stored, ok := m.tasks[task.ID]
	if !ok || stored.UserID != task.UserID {
		return apperror.NotFound("task", task.ID)
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

func (m *mockTaskRepo) DeleteTask(_ context.Context, id, userID string) error {
	stored, ok := m.tasks[id]
	if !ok || stored.UserID != userID {
		return apperror.NotFound("task", id)
	}
	delete(m.tasks, id)
	return nil
}

// page applies offset/limit the way the SQL LIMIT/OFFSET clauses do.
func page[T any](items []T, opts repository.ListOptions) []T {
	offset := opts.Offset()
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

// interface conformance checks
var (
	_ repository.UserRepository  = (*mockUserRepo)(nil)
	_ repository.VideoRepository = (*mockVideoRepo)(nil)
	_ repository.MemoRepository  = (*mockMemoRepo)(nil)
	_ repository.TaskRepository  = (*mockTaskRepo)(nil)
)

func ptrString(s string) *string { return &s }
func ptrInt(i int) *int          { return &i }
func ptrBool(b bool) *bool       { return &b }
