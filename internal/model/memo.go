package model

import "time"

// Memo is a note owned by one user, optionally pinned to a video and to a
// position inside it.
//
// VideoID is a pointer because a memo can exist on its own; nil means "not
// attached to any video". TimestampSeconds follows the same convention — a
// memo attached to a video doesn't have to reference a moment in it.
type Memo struct {
	ID               string    `json:"id"               db:"id"`
	UserID           string    `json:"userId"           db:"user_id"`
	VideoID          *string   `json:"videoId"          db:"video_id"`
	Content          string    `json:"content"          db:"content"`
	TimestampSeconds *int      `json:"timestampSeconds" db:"timestamp_seconds"`
	CreatedAt        time.Time `json:"createdAt"        db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt"        db:"updated_at"`
}
