package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/arefin/memotube/internal/apperror"
	"github.com/arefin/memotube/internal/model"
	"github.com/arefin/memotube/internal/repository"
	"github.com/arefin/memotube/internal/youtube"
)

const (
	MaxVideoTitleLength       = 200
	MaxVideoDescriptionLength = 5000
)

// VideoService handles saved-video CRUD with per-user ownership.
type VideoService struct {
	repo     repository.VideoRepository
	metadata youtube.Provider
	logger   *slog.Logger
}

func NewVideoService(repo repository.VideoRepository, metadata youtube.Provider, logger *slog.Logger) *VideoService {
	return &VideoService{
		repo:     repo,
		metadata: metadata,
		logger:   logger,
	}
}

// Create saves a video from a YouTube URL (or bare video ID). Metadata is
// fetched from the provider at save time; a fallback provider upstream
// guarantees this succeeds even offline.
func (s *VideoService) Create(ctx context.Context, userID, rawURL string) (*model.Video, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, apperror.ValidationFailed("url", "a YouTube URL is required")
	}

	youtubeID := youtube.ExtractVideoID(rawURL)
	if youtubeID == "" {
		return nil, apperror.ValidationFailed("url", "not a recognizable YouTube URL or video ID")
	}

	meta, err := s.metadata.Lookup(ctx, youtubeID)
	if err != nil {
		// The fallback chain makes this unlikely; save without metadata
		// rather than refusing the bookmark.
		s.logger.Warn("metadata lookup failed",
			slog.String("youtubeID", youtubeID),
			slog.String("error", err.Error()),
		)
		meta = &youtube.Metadata{}
	}

	video := &model.Video{
		UserID:          userID,
		YouTubeID:       youtubeID,
		URL:             rawURL,
		Title:           meta.Title,
		Description:     meta.Description,
		ChannelName:     meta.ChannelName,
		ThumbnailURL:    meta.ThumbnailURL,
		DurationSeconds: meta.DurationSeconds,
		PublishedAt:     meta.PublishedAt,
	}

	if err := s.repo.CreateVideo(ctx, video); err != nil {
		s.logger.Error("failed to create video",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating video: %w", err)
	}

	s.logger.Info("video saved",
		slog.String("id", video.ID),
		slog.String("youtubeID", youtubeID),
	)

	return video, nil
}

// GetByID returns the caller's video. A video that exists but belongs to
// someone else is reported exactly like one that doesn't exist.
func (s *VideoService) GetByID(ctx context.Context, userID, id string) (*model.Video, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "video ID is required")
	}

	video, err := s.repo.GetVideoByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if video.UserID != userID {
		return nil, apperror.NotFound("video", id)
	}

	return video, nil
}

// List returns one page of the caller's videos. The user filter is part of
// the repository query, never applied after the fact.
func (s *VideoService) List(ctx context.Context, userID string, opts repository.ListOptions, filter repository.VideoFilter) ([]model.Video, model.Pagination, error) {
	opts = opts.Normalize()

	videos, total, err := s.repo.ListVideosByUser(ctx, userID, opts, filter)
	if err != nil {
		s.logger.Error("failed to list videos", slog.String("error", err.Error()))
		return nil, model.Pagination{}, fmt.Errorf("listing videos: %w", err)
	}

	return videos, model.NewPagination(opts.Page, opts.Limit, total), nil
}

// UpdateVideoInput carries optional changes; nil means unchanged.
type UpdateVideoInput struct {
	Title       *string
	Description *string
	Watched     *bool
}

// Update applies changes to the caller's video. The repository statement is
// conditional on ownership, so a non-owner (or a missing id) comes back as
// not-found from the single atomic write.
func (s *VideoService) Update(ctx context.Context, userID, id string, in UpdateVideoInput) (*model.Video, error) {
	video, err := s.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, apperror.ValidationFailed("title", "title cannot be empty")
		}
		if len(title) > MaxVideoTitleLength {
			return nil, apperror.ValidationFailed("title",
				fmt.Sprintf("title must be %d characters or less", MaxVideoTitleLength))
		}
		video.Title = title
	}
	if in.Description != nil {
		if len(*in.Description) > MaxVideoDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxVideoDescriptionLength))
		}
		video.Description = *in.Description
	}
	if in.Watched != nil {
		video.Watched = *in.Watched
	}

	if err := s.repo.UpdateVideo(ctx, video); err != nil {
		return nil, err
	}

	return video, nil
}

// Delete removes the caller's video via the ownership-conditional delete.
func (s *VideoService) Delete(ctx context.Context, userID, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "video ID is required")
	}

	if err := s.repo.DeleteVideo(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("video deleted", slog.String("id", id))
	return nil
}
