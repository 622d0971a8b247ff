package model

import "time"

// Video is a saved YouTube video, owned by exactly one user.
//
// The metadata fields (Title through PublishedAt) come from the metadata
// provider at save time; they're snapshots, not live data. DurationSeconds
// is 0 when the provider couldn't determine a duration.
type Video struct {
	ID              string    `json:"id"              db:"id"`
	UserID          string    `json:"userId"          db:"user_id"`
	YouTubeID       string    `json:"youtubeId"       db:"youtube_id"`
	URL             string    `json:"url"             db:"url"`
	Title           string    `json:"title"           db:"title"`
	Description     string    `json:"description"     db:"description"`
	ChannelName     string    `json:"channelName"     db:"channel_name"`
	ThumbnailURL    string    `json:"thumbnailUrl"    db:"thumbnail_url"`
	DurationSeconds int       `json:"durationSeconds" db:"duration_seconds"`
	PublishedAt     time.Time `json:"publishedAt"     db:"published_at"`
	Watched         bool      `json:"watched"         db:"watched"`
	CreatedAt       time.Time `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt"       db:"updated_at"`
}
