package verify

import (
	"errors"
	"strings"
	"testing"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"plain", "ada", "ada", false},
		{"trim and collapse", "  grace \t\n hopper  ", "grace hopper", false},
		{"script tag", "<script>alert(1)</script>", "scriptalert1script", false},
		{"quotes and slashes", `a"b'c` + "`d/e\\f", "abcdef", false},
		{"kept symbols", "neo-1_x.y", "neo-1_x.y", false},
		{"dropped symbols", "a$b%c!", "abc", false},
		{"full width folds", "ＡＢＣ１２３", "ABC123", false},
		{"unicode letters", "Łukasz Żółw", "Łukasz Żółw", false},
		{"control chars", "a\x00b\x1bc", "abc", false},
		{"only markup", "<>&/", "", true},
		{"only spaces", "   ", "", true},
		{"empty", "", "", true},
		{"at limit", strings.Repeat("a", 30), strings.Repeat("a", 30), false},
		{"over limit", strings.Repeat("a", 31), "", true},
		{"invalid utf8", "a\xffb", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeName(tt.raw, 30)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidName) {
					t.Errorf("Expected ErrInvalidName, got %q, %v", got, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizeName(%q) failed: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("SanitizeName(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitizeNameCountsRunes(t *testing.T) {
	// 30 two-byte letters fit even though they are 60 bytes
	raw := strings.Repeat("é", 30)
	if _, err := SanitizeName(raw, 30); err != nil {
		t.Errorf("Expected 30 runes to fit, got %v", err)
	}
}
