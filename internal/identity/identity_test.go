package identity

import (
	"strings"
	"testing"
)

func TestGenerate(t *testing.T) {
	t.Parallel()

	id, err := Generate()
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if !strings.HasPrefix(id, Prefix) {
		t.Errorf("Expected prefix %q, got %q", Prefix, id)
	}
	if len(id) != len(Prefix)+TokenLength {
		t.Errorf("Expected length %d, got %d (%q)", len(Prefix)+TokenLength, len(id), id)
	}
	if !Valid(id) {
		t.Errorf("Generated id %q does not pass Valid", id)
	}
}

func TestGenerateUniqueness(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id, err := Generate()
		if err != nil {
			t.Fatalf("Generate returned error: %v", err)
		}
		if seen[id] {
			t.Fatalf("Duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		id   string
		want bool
	}{
		{name: "valid id", id: "user-a1b2c3d4", want: true},
		{name: "empty", id: "", want: false},
		{name: "missing prefix", id: "a1b2c3d4", want: false},
		{name: "wrong prefix", id: "usr-a1b2c3d4", want: false},
		{name: "token too short", id: "user-a1b2", want: false},
		{name: "token too long", id: "user-a1b2c3d4e5", want: false},
		{name: "non-hex token", id: "user-zzzzzzzz", want: false},
		{name: "prefix only", id: "user-", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Valid(tt.id); got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
