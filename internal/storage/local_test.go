package storage

import "testing"

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"photo.png", "photo.png"},
		{"../../etc/passwd", "passwd"},
		{"my photo (1).jpg", "my_photo__1_.jpg"},
		{"..hidden", "hidden"},
		{"a/b/c.png", "c.png"},
		{"UPPER-case_ok.webp", "UPPER-case_ok.webp"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
