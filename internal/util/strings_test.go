package util

import "testing"

func TestTruncateString(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		maxLen int
		want   string
	}{
		{"short string unchanged", "hello", 10, "hello"},
		{"exact length unchanged", "hello", 5, "hello"},
		{"truncated with ellipsis", "hello world", 8, "hello..."},
		{"tiny max", "hello", 3, "..."},
		{"zero max", "hello", 0, "..."},
		{"multibyte runes", "héllo wörld", 8, "héllo..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateString(tt.input, tt.maxLen); got != tt.want {
				t.Errorf("TruncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
			}
		})
	}
}

func TestTruncateANSI(t *testing.T) {
	if got := TruncateANSI("plain", 10); got != "plain" {
		t.Errorf("TruncateANSI(plain, 10) = %q, want unchanged", got)
	}
	if got := TruncateANSI("hello world", 8); got != "hello..." {
		t.Errorf("TruncateANSI = %q, want %q", got, "hello...")
	}
	if got := TruncateANSI("anything", 2); got != "..." {
		t.Errorf("TruncateANSI tiny max = %q, want %q", got, "...")
	}
}
