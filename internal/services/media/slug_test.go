package media

import "testing"

func TestSlugify(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Hello World", "hello-world"},
		{"photo", "photo"},
		{"My  File!!.name", "my-file-name"},
		{"UPPER_case-123", "upper-case-123"},
		{"--leading and trailing--", "leading-and-trailing"},
		{"***", "file"},
		{"", "file"},
		{"über café", "ber-caf"},
	}

	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
