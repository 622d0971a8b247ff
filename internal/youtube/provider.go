package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Metadata is what the application stores about a video at save time.
type Metadata struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	ChannelName     string    `json:"channelName"`
	ThumbnailURL    string    `json:"thumbnailUrl"`
	DurationSeconds int       `json:"durationSeconds"`
	PublishedAt     time.Time `json:"publishedAt"`
}

// Provider looks up metadata for a video ID. Two implementations exist: the
// Data API client below and the deterministic OfflineProvider used when no
// API key is configured or as a fallback when the API call fails.
type Provider interface {
	Lookup(ctx context.Context, videoID string) (*Metadata, error)
}

// DataAPIProvider calls the YouTube Data API v3 videos endpoint with an API
// key. A single keyed GET — no OAuth involved.
type DataAPIProvider struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewDataAPIProvider creates a Data API client. baseURL is overridable for
// tests; pass "" for the real endpoint.
func NewDataAPIProvider(apiKey, baseURL string) *DataAPIProvider {
	if baseURL == "" {
		baseURL = "https://www.googleapis.com/youtube/v3"
	}
	return &DataAPIProvider{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// videosResponse mirrors the slice of the Data API response we consume.
// The API returns far more; only these fields are unmarshaled.
type videosResponse struct {
	Items []struct {
		Snippet struct {
			Title        string    `json:"title"`
			Description  string    `json:"description"`
			ChannelTitle string    `json:"channelTitle"`
			PublishedAt  time.Time `json:"publishedAt"`
			Thumbnails   struct {
				High struct {
					URL string `json:"url"`
				} `json:"high"`
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
			} `json:"thumbnails"`
		} `json:"snippet"`
		ContentDetails struct {
			Duration string `json:"duration"` // ISO-8601, e.g. "PT4M13S"
		} `json:"contentDetails"`
	} `json:"items"`
}

// Lookup fetches snippet and contentDetails for the video.
func (p *DataAPIProvider) Lookup(ctx context.Context, videoID string) (*Metadata, error) {
	q := url.Values{}
	q.Set("id", videoID)
	q.Set("part", "snippet,contentDetails")
	q.Set("key", p.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/videos?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("youtube: building request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("youtube: calling videos endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube: videos endpoint returned status %d", resp.StatusCode)
	}

	var body videosResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("youtube: decoding videos response: %w", err)
	}

	if len(body.Items) == 0 {
		return nil, fmt.Errorf("youtube: no video found for id %s", videoID)
	}

	item := body.Items[0]
	duration, err := ParseISODuration(item.ContentDetails.Duration)
	if err != nil {
		// A video without a parseable duration (live streams report "P0D")
		// still has usable metadata. Duration stays 0.
		duration = 0
	}

	thumb := item.Snippet.Thumbnails.High.URL
	if thumb == "" {
		thumb = item.Snippet.Thumbnails.Default.URL
	}

	return &Metadata{
		Title:           item.Snippet.Title,
		Description:     item.Snippet.Description,
		ChannelName:     item.Snippet.ChannelTitle,
		ThumbnailURL:    thumb,
		DurationSeconds: duration,
		PublishedAt:     item.Snippet.PublishedAt,
	}, nil
}

// OfflineProvider derives stable placeholder metadata from the video ID
// alone. Same ID in, same metadata out, no network — saving a video works
// identically with or without an API key, and the user can edit the title
// afterwards.
type OfflineProvider struct{}

func NewOfflineProvider() *OfflineProvider {
	return &OfflineProvider{}
}

func (OfflineProvider) Lookup(_ context.Context, videoID string) (*Metadata, error) {
	return &Metadata{
		Title:        fmt.Sprintf("YouTube video %s", videoID),
		ChannelName:  "Unknown channel",
		ThumbnailURL: fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID),
	}, nil
}

// FallbackProvider tries a primary provider and falls back to a secondary
// when the primary fails. The server wires DataAPI → Offline so metadata
// lookup degrades instead of failing the save.
type FallbackProvider struct {
	primary  Provider
	fallback Provider
}

func NewFallbackProvider(primary, fallback Provider) *FallbackProvider {
	return &FallbackProvider{primary: primary, fallback: fallback}
}

func (p *FallbackProvider) Lookup(ctx context.Context, videoID string) (*Metadata, error) {
	meta, err := p.primary.Lookup(ctx, videoID)
	if err == nil {
		return meta, nil
	}
	return p.fallback.Lookup(ctx, videoID)
}
