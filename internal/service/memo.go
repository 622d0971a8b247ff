package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arefin/memotube/internal/apperror"
	"github.com/arefin/memotube/internal/model"
	"github.com/arefin/memotube/internal/repository"
)

const MaxMemoContentLength = 10000

// MemoService handles memo CRUD. Memos optionally attach to one of the
// caller's videos at a playback timestamp; standalone memos are fine too.
type MemoService struct {
	repo   repository.MemoRepository
	videos repository.VideoRepository
	logger *slog.Logger
}

func NewMemoService(repo repository.MemoRepository, videos repository.VideoRepository, logger *slog.Logger) *MemoService {
	return &MemoService{
		repo:   repo,
		videos: videos,
		logger: logger,
	}
}

// CreateMemoInput is the validated input for Create.
type CreateMemoInput struct {
	Content          string
	VideoID          *string
	TimestampSeconds *int
}

func (s *MemoService) Create(ctx context.Context, userID string, in CreateMemoInput) (*model.Memo, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if len(content) > MaxMemoContentLength {
		return nil, apperror.ValidationFailed("content",
			fmt.Sprintf("content must be %d characters or less", MaxMemoContentLength))
	}
	if in.TimestampSeconds != nil && *in.TimestampSeconds < 0 {
		return nil, apperror.ValidationFailed("timestampSeconds", "timestamp cannot be negative")
	}

	if in.VideoID != nil && *in.VideoID != "" {
		if err := s.checkVideoOwnership(ctx, userID, *in.VideoID); err != nil {
			return nil, err
		}
	} else {
		// A timestamp without a video is meaningless.
		in.VideoID = nil
		in.TimestampSeconds = nil
	}

	memo := &model.Memo{
		UserID:           userID,
		VideoID:          in.VideoID,
		Content:          content,
		TimestampSeconds: in.TimestampSeconds,
	}

	if err := s.repo.CreateMemo(ctx, memo); err != nil {
		s.logger.Error("failed to create memo",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating memo: %w", err)
	}

	return memo, nil
}

func (s *MemoService) GetByID(ctx context.Context, userID, id string) (*model.Memo, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "memo ID is required")
	}

	memo, err := s.repo.GetMemoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if memo.UserID != userID {
		return nil, apperror.NotFound("memo", id)
	}

	return memo, nil
}

func (s *MemoService) List(ctx context.Context, userID string, opts repository.ListOptions, filter repository.MemoFilter) ([]model.Memo, model.Pagination, error) {
	opts = opts.Normalize()

	memos, total, err := s.repo.ListMemosByUser(ctx, userID, opts, filter)
	if err != nil {
		s.logger.Error("failed to list memos", slog.String("error", err.Error()))
		return nil, model.Pagination{}, fmt.Errorf("listing memos: %w", err)
	}

	return memos, model.NewPagination(opts.Page, opts.Limit, total), nil
}

// UpdateMemoInput carries optional changes; nil means unchanged.
type UpdateMemoInput struct {
	Content          *string
	VideoID          *string // empty string detaches the memo from its video
	TimestampSeconds *int
}

func (s *MemoService) Update(ctx context.Context, userID, id string, in UpdateMemoInput) (*model.Memo, error) {
	memo, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Content != nil {
		content := strings.TrimSpace(*in.Content)
		if content == "" {
			return nil, apperror.ValidationFailed("content", "content cannot be empty")
		}
		if len(content) > MaxMemoContentLength {
			return nil, apperror.ValidationFailed("content",
				fmt.Sprintf("content must be %d characters or less", MaxMemoContentLength))
		}
		memo.Content = content
	}
	if in.VideoID != nil {
		if *in.VideoID == "" {
			memo.VideoID = nil
			memo.TimestampSeconds = nil
		} else {
			if err := s.checkVideoOwnership(ctx, userID, *in.VideoID); err != nil {
				return nil, err
			}
			memo.VideoID = in.VideoID
		}
	}
	if in.TimestampSeconds != nil {
		if *in.TimestampSeconds < 0 {
			return nil, apperror.ValidationFailed("timestampSeconds", "timestamp cannot be negative")
		}
		if memo.VideoID == nil {
			return nil, apperror.ValidationFailed("timestampSeconds", "timestamp requires an attached video")
		}
		memo.TimestampSeconds = in.TimestampSeconds
	}

	if err := s.repo.UpdateMemo(ctx, memo); err != nil {
		return nil, err
	}

	return memo, nil
}

func (s *MemoService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "memo ID is required")
	}

	return s.repo.DeleteMemo(ctx, id, userID)
}

// checkVideoOwnership confirms the video exists and belongs to the caller.
// A foreign video reads as not-found, same as every other ownership miss.
func (s *MemoService) checkVideoOwnership(ctx context.Context, userID, videoID string) error {
	video, err := s.videos.GetVideoByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video.UserID != userID {
		return apperror.NotFound("video", videoID)
	}
	return nil
}
