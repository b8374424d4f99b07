package logger

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     string
		maxLength int
		want      string
	}{
		{name: "empty", input: "", maxLength: 100, want: ""},
		{name: "plain text", input: "hello world", maxLength: 100, want: "hello world"},
		{name: "keeps whitespace", input: "line1\nline2\ttabbed", maxLength: 100, want: "line1\nline2\ttabbed"},
		{name: "strips control characters", input: "hel\x00lo\x1b[31m", maxLength: 100, want: "hello[31m"},
		{name: "invalid UTF-8 dropped", input: "ok\xff\xfeok", maxLength: 100, want: "okok"},
		{name: "truncates", input: strings.Repeat("a", 10), maxLength: 5, want: "aaaaa..."},
		{name: "zero max falls back", input: "short", maxLength: 0, want: "short"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := SanitizeString(tt.input, tt.maxLength); got != tt.want {
				t.Errorf("SanitizeString(%q, %d) = %q, want %q", tt.input, tt.maxLength, got, tt.want)
			}
		})
	}
}

func TestSanitizePath(t *testing.T) {
	t.Parallel()

	long := "/api/v1/" + strings.Repeat("x", MaxPathLength)
	got := SanitizePath(long)
	if len(got) != MaxPathLength+3 {
		t.Errorf("Expected truncation to %d+ellipsis, got length %d", MaxPathLength, len(got))
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("Expected ellipsis suffix on truncated path")
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	if got := SanitizeError(nil); got != "" {
		t.Errorf("Expected empty string for nil error, got %q", got)
	}

	err := errors.New("query failed: \x00 malformed")
	if got := SanitizeError(err); strings.ContainsRune(got, '\x00') {
		t.Errorf("Expected control characters stripped, got %q", got)
	}
}

func TestNewProductionLogger(t *testing.T) {
	t.Parallel()

	logger, err := NewProductionLogger(false)
	if err != nil {
		t.Fatalf("NewProductionLogger returned error: %v", err)
	}
	if logger.Core().Enabled(-1) {
		t.Error("Expected debug disabled by default")
	}

	logger, err = NewProductionLogger(true)
	if err != nil {
		t.Fatalf("NewProductionLogger returned error: %v", err)
	}
	if !logger.Core().Enabled(-1) {
		t.Error("Expected debug enabled in debug mode")
	}
}
