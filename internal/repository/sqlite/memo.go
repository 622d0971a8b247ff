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

// compile-time check that *DB implements repository.MemoRepository
var _ repository.MemoRepository = (*DB)(nil)

const memoColumns = `id, user_id, video_id, content, timestamp_seconds, created_at, updated_at`

var memoSortColumns = map[string]string{
	"createdAt":        "created_at",
	"updatedAt":        "updated_at",
	"timestampSeconds": "timestamp_seconds",
}

// CreateMemo inserts a new memo for its owner.
func (db *DB) CreateMemo(ctx context.Context, memo *model.Memo) error {
	memo.ID = xid.New().String()
	now := time.Now()
	memo.CreatedAt = now
	memo.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO memos (`+memoColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		memo.ID,
		memo.UserID,
		memo.VideoID,
		memo.Content,
		memo.TimestampSeconds,
		memo.CreatedAt,
		memo.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating memo: %w", err)
	}

	return nil
}

// GetMemoByID fetches a memo by id alone; ownership is the service's call.
func (db *DB) GetMemoByID(ctx context.Context, id string) (*model.Memo, error) {
	var m model.Memo

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+memoColumns+` FROM memos WHERE id = ?`, id,
	).Scan(
		&m.ID,
		&m.UserID,
		&m.VideoID,
		&m.Content,
		&m.TimestampSeconds,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("memo", id)
		}
		return nil, fmt.Errorf("sqlite: getting memo %s: %w", id, err)
	}

	return &m, nil
}

// ListMemosByUser returns one page of the user's memos plus the total count.
func (db *DB) ListMemosByUser(ctx context.Context, userID string, opts repository.ListOptions, filter repository.MemoFilter) ([]model.Memo, int, error) {
	opts = opts.Normalize()

	where := []string{"user_id = ?"}
	args := []any{userID}

	if opts.Search != "" {
		where = append(where, `content LIKE ? ESCAPE '\' COLLATE NOCASE`)
		args = append(args, likePattern(opts.Search))
	}
	if filter.VideoID != "" {
		where = append(where, "video_id = ?")
		args = append(args, filter.VideoID)
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM memos WHERE `+whereClause, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting memos: %w", err)
	}

	orderBy := orderClause(memoSortColumns, opts.Sort, "created_at", opts.Order)

	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+memoColumns+` FROM memos
		 WHERE `+whereClause+`
		 ORDER BY `+orderBy+`
		 LIMIT ? OFFSET ?`,
		append(args, opts.Limit, opts.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing memos: %w", err)
	}
	defer rows.Close()

	memos := make([]model.Memo, 0, opts.Limit)
	for rows.Next() {
		var m model.Memo
		if err := rows.Scan(
			&m.ID, &m.UserID, &m.VideoID, &m.Content, &m.TimestampSeconds,
			&m.CreatedAt, &m.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning memo row: %w", err)
		}
		memos = append(memos, m)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating memos: %w", err)
	}

	return memos, total, nil
}

// UpdateMemo writes the mutable fields, conditional on ownership.
func (db *DB) UpdateMemo(ctx context.Context, memo *model.Memo) error {
	memo.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE memos
		 SET video_id = ?, content = ?, timestamp_seconds = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		memo.VideoID,
		memo.Content,
		memo.TimestampSeconds,
		memo.UpdatedAt,
		memo.ID,
		memo.UserID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating memo %s: %w", memo.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("memo", memo.ID)
	}

	return nil
}

// DeleteMemo removes a memo, conditional on ownership.
func (db *DB) DeleteMemo(ctx context.Context, id, userID string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM memos WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting memo %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("memo", id)
	}

	return nil
}
