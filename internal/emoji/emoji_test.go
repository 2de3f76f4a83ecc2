package emoji

import "testing"

func TestGetEmoji(t *testing.T) {
	defer SetEmojiDisabled(false)

	tests := []struct {
		key      string
		disabled bool
		expected string
	}{
		{"success", false, "✅"},
		{"success", true, "[OK]"},
		{"lexical", true, "[LEX]"},
		{"locked", false, "🔒"},
		{"missing", false, "[?]"},
	}

	for _, tt := range tests {
		SetEmojiDisabled(tt.disabled)
		if got := GetEmoji(tt.key); got != tt.expected {
			t.Errorf("GetEmoji(%q) with disabled=%v: expected %q, got %q", tt.key, tt.disabled, tt.expected, got)
		}
	}
}
