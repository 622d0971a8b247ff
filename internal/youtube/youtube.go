// Package youtube extracts video IDs from the URL shapes YouTube uses and
// parses the ISO-8601 durations its Data API returns.
package youtube

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// videoIDPattern matches a canonical YouTube video ID: exactly 11 characters
// of [A-Za-z0-9_-].
var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// isoDurationPattern matches the subset of ISO-8601 durations YouTube emits:
// PT#H#M#S with every component optional (PT1H, PT90S, PT1H2M3S, ...).
var isoDurationPattern = regexp.MustCompile(`^PT(?:(\d+)H)?(?:(\d+)M)?(?:(\d+)S)?$`)

// ExtractVideoID pulls the 11-character video ID out of any of the URL
// shapes YouTube hands out, or accepts a bare ID:
//
//	https://www.youtube.com/watch?v=dQw4w9WgXcQ
//	https://youtu.be/dQw4w9WgXcQ
//	https://www.youtube.com/embed/dQw4w9WgXcQ
//	https://www.youtube.com/shorts/dQw4w9WgXcQ
//	https://www.youtube.com/live/dQw4w9WgXcQ
//	dQw4w9WgXcQ
//
// Returns "" when nothing recognizable is found — callers treat that as a
// validation error, not a panic-worthy condition.
func ExtractVideoID(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return ""
	}

	// A bare ID needs no URL parsing.
	if videoIDPattern.MatchString(input) {
		return input
	}

	u, err := url.Parse(input)
	if err != nil {
		return ""
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	switch host {
	case "youtu.be":
		// The ID is the first path segment: youtu.be/<id>
		return validID(firstSegment(u.Path))
	case "youtube.com", "m.youtube.com", "music.youtube.com":
		// watch URLs carry the ID in the v query parameter.
		if id := u.Query().Get("v"); id != "" {
			return validID(id)
		}
		// embed/shorts/live URLs carry it as the second path segment.
		segments := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(segments) >= 2 {
			switch segments[0] {
			case "embed", "shorts", "live", "v":
				return validID(segments[1])
			}
		}
	}

	return ""
}

// ParseISODuration converts an ISO-8601 duration like "PT1H2M3S" into total
// seconds. YouTube never emits date components (days/weeks) for videos, so
// only the time part is handled; anything else is an error.
func ParseISODuration(s string) (int, error) {
	if s == "" || s == "PT" {
		return 0, fmt.Errorf("youtube: empty duration %q", s)
	}

	m := isoDurationPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("youtube: cannot parse duration %q", s)
	}

	seconds := 0
	units := []int{3600, 60, 1}
	for i, unit := range units {
		part := m[i+1]
		if part == "" {
			continue
		}
		n := 0
		for _, c := range part {
			n = n*10 + int(c-'0')
		}
		seconds += n * unit
	}
	return seconds, nil
}

func firstSegment(path string) string {
	return strings.SplitN(strings.Trim(path, "/"), "/", 2)[0]
}

func validID(id string) string {
	if videoIDPattern.MatchString(id) {
		return id
	}
	return ""
}
