package utils

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Breaking News", "breaking-news"},
		{"Breaking News: Go 1.24!", "breaking-news-go-1-24"},
		{"  spaced   out  ", "spaced-out"},
		{"already-a-slug", "already-a-slug"},
		{"UPPER", "upper"},
		{"100% true", "100-true"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
