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

// compile-time check that *DB implements repository.VideoRepository
var _ repository.VideoRepository = (*DB)(nil)

const videoColumns = `id, user_id, youtube_id, url, title, description, channel_name, thumbnail_url, duration_seconds, published_at, watched, created_at, updated_at`

// videoSortColumns is the allow-list mapping API sort fields to columns.
// Anything not in this map falls back to created_at — sort input is never
// spliced into the ORDER BY clause as-is.
var videoSortColumns = map[string]string{
	"createdAt":       "created_at",
	"updatedAt":       "updated_at",
	"title":           "title",
	"publishedAt":     "published_at",
	"durationSeconds": "duration_seconds",
}

// CreateVideo inserts a new saved video for its owner.
func (db *DB) CreateVideo(ctx context.Context, video *model.Video) error {
	video.ID = xid.New().String()
	now := time.Now()
	video.CreatedAt = now
	video.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO videos (`+videoColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		video.ID,
		video.UserID,
		video.YouTubeID,
		video.URL,
		video.Title,
		video.Description,
		video.ChannelName,
		video.ThumbnailURL,
		video.DurationSeconds,
		nullTime(video.PublishedAt),
		video.Watched,
		video.CreatedAt,
		video.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating video: %w", err)
	}

	return nil
}

// GetVideoByID fetches a video by id alone — no user filter. The service
// compares UserID against the caller and reports not-found on a mismatch.
func (db *DB) GetVideoByID(ctx context.Context, id string) (*model.Video, error) {
	var v model.Video
	var publishedAt sql.NullTime

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+videoColumns+` FROM videos WHERE id = ?`, id,
	).Scan(
		&v.ID,
		&v.UserID,
		&v.YouTubeID,
		&v.URL,
		&v.Title,
		&v.Description,
		&v.ChannelName,
		&v.ThumbnailURL,
		&v.DurationSeconds,
		&publishedAt,
		&v.Watched,
		&v.CreatedAt,
		&v.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("video", id)
		}
		return nil, fmt.Errorf("sqlite: getting video %s: %w", id, err)
	}

	if publishedAt.Valid {
		v.PublishedAt = publishedAt.Time
	}
	return &v, nil
}

// ListVideosByUser returns one page of the user's videos plus the total
// count across all pages. The user_id condition is part of the query — rows
// belonging to other users are never fetched and post-filtered.
func (db *DB) ListVideosByUser(ctx context.Context, userID string, opts repository.ListOptions, filter repository.VideoFilter) ([]model.Video, int, error) {
	opts = opts.Normalize()

	where := []string{"user_id = ?"}
	args := []any{userID}

	if opts.Search != "" {
		where = append(where, `(title LIKE ? ESCAPE '\' COLLATE NOCASE OR description LIKE ? ESCAPE '\' COLLATE NOCASE OR channel_name LIKE ? ESCAPE '\' COLLATE NOCASE)`)
		pattern := likePattern(opts.Search)
		args = append(args, pattern, pattern, pattern)
	}
	if filter.Watched != nil {
		where = append(where, "watched = ?")
		args = append(args, *filter.Watched)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM videos WHERE `+whereClause, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting videos: %w", err)
	}

	orderBy := orderClause(videoSortColumns, opts.Sort, "created_at", opts.Order)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+videoColumns+` FROM videos
		 WHERE `+whereClause+`
		 ORDER BY `+orderBy+`
		 LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing videos: %w", err)
	}
	defer rows.Close()

	videos := make([]model.Video, 0, opts.Limit)
	for rows.Next() {
		var v model.Video
		var publishedAt sql.NullTime
		if err := rows.Scan(
			&v.ID, &v.UserID, &v.YouTubeID, &v.URL, &v.Title, &v.Description,
			&v.ChannelName, &v.ThumbnailURL, &v.DurationSeconds, &publishedAt,
			&v.Watched, &v.CreatedAt, &v.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning video row: %w", err)
		}
		if publishedAt.Valid {
			v.PublishedAt = publishedAt.Time
		}
		videos = append(videos, v)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating videos: %w", err)
	}

	return videos, total, nil
}

// UpdateVideo writes the mutable fields. The WHERE id AND user_id condition
// makes the ownership check and the write one atomic statement; zero rows
// means either "no such video" or "not yours", and both report not-found.
func (db *DB) UpdateVideo(ctx context.Context, video *model.Video) error {
	video.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE videos
		 SET title = ?, description = ?, watched = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		video.Title,
		video.Description,
		video.Watched,
		video.UpdatedAt,
		video.ID,
		video.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating video %s: %w", video.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("video", video.ID)
	}

	return nil
}

// DeleteVideo removes a video, conditional on ownership like UpdateVideo.
func (db *DB) DeleteVideo(ctx context.Context, id, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM videos WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting video %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("video", id)
	}

	return nil
}

// orderClause resolves an API sort field through an allow-list. Unknown
// fields get the default column. order has already been normalized to
// asc/desc by ListOptions.Normalize.
func orderClause(allowed map[string]string, sort, defaultColumn, order string) string {
	column, ok := allowed[sort]
	if !ok {
		column = defaultColumn
	}
	dir := "DESC"
	if order == "asc" {
		dir = "ASC"
	}
	return column + " " + dir
}

// nullTime maps time.Time's zero value to SQL NULL.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}
