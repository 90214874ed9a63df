package httpmetrics

import (
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"", "/"},
		{"/", "/"},
		{"/health", "/health"},
		{"/api/auth/login", "/api/auth/login"},
		{"/api/auth/login/", "/api/auth/login"},
		{"/api/auth/3f2b8c1e-9d4a-4b7e-8f1a-2c3d4e5f6a7b", "/api/auth/{param}"},
		{"/api/auth/01HZX3K5M8Q9R2S4T6V7W8X9YZ", "/api/auth/{param}"},
		{"/api/users/42/sessions", "/api/users/{param}/sessions"},
		{"/wp-admin/../../etc/passwd", "/wp-admin/{param}/{param}/etc/..."},
		{"/" + strings.Repeat("a", 40), "/{param}"},
		{"/a/b/c/d/e/f/g", "/a/b/c/d/..."},
	}

	for _, tt := range tests {
		if got := NormalizePath(tt.path); got != tt.want {
			t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
