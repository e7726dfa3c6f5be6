package cli

import (
	"path/filepath"
	"testing"
)

func TestExpandHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		path string
		want string
	}{
		{"~", home},
		{"~/knowledge", filepath.Join(home, "knowledge")},
		{"/abs/knowledge", "/abs/knowledge"},
		{"relative/knowledge", "relative/knowledge"},
		{"~user/knowledge", "~user/knowledge"},
	}
	for _, tt := range tests {
		if got := expandHome(tt.path); got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
