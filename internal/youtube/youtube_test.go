package youtube

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"watch URL", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch URL without www", "https://youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch URL with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s&list=PL1", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with params", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"embed URL", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts URL", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"live URL", "https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare ID", "dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"bare ID with whitespace", "  dQw4w9WgXcQ  ", "dQw4w9WgXcQ"},
		{"empty", "", ""},
		{"not a video URL", "https://www.youtube.com/feed/subscriptions", ""},
		{"wrong host", "https://vimeo.com/12345678901", ""},
		{"ID too short", "dQw4w9WgXc", ""},
		{"ID too long", "dQw4w9WgXcQQ", ""},
		{"ID with illegal chars", "dQw4w9WgXc!", ""},
		{"watch URL with bad ID", "https://www.youtube.com/watch?v=tooshort", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractVideoID(tt.input); got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseISODuration(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr bool
	}{
		{"PT1H2M3S", 3723, false},
		{"PT4M13S", 253, false},
		{"PT90S", 90, false},
		{"PT1H", 3600, false},
		{"PT2M", 120, false},
		{"PT0S", 0, false},
		{"PT10H30M", 37800, false},
		{"", 0, true},
		{"PT", 0, true},
		{"P0D", 0, true},
		{"1h2m", 0, true},
		{"PT1X", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseISODuration(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseISODuration(%q) = %d, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseISODuration(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseISODuration(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}
