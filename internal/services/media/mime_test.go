package media

import (
	"bytes"
	"testing"
)

func TestMimeTypeByExtension(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"photo.jpg", "image/jpeg"},
		{"photo.JPEG", "image/jpeg"},
		{"a/b/photo.png", "image/png"},
		{"clip.mp4", "video/mp4"},
		{"doc.pdf", "application/pdf"},
		{"notes.txt", "text/plain"},
		{"noextension", ""},
		{"weird.unknownext", ""},
	}

	for _, tt := range tests {
		if got := MimeTypeByExtension(tt.path); got != tt.want {
			t.Errorf("MimeTypeByExtension(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestExtensionByMimeType(t *testing.T) {
	if got := ExtensionByMimeType("image/jpeg"); got != "jpg" {
		t.Errorf("Expected jpg for image/jpeg, got %q", got)
	}
	if got := ExtensionByMimeType("image/png"); got != "png" {
		t.Errorf("Expected png for image/png, got %q", got)
	}
	if got := ExtensionByMimeType(""); got != "" {
		t.Errorf("Expected empty extension for empty mime type, got %q", got)
	}
}

func TestDetectMimeType(t *testing.T) {
	if got := DetectMimeType(pngBytes(t)); got != "image/png" {
		t.Errorf("Expected image/png, got %q", got)
	}

	if got := DetectMimeType([]byte("plain text content")); got != "text/plain" {
		t.Errorf("Expected text/plain, got %q", got)
	}

	// Undetectable content maps to the empty string, which the pipeline
	// treats as a rejection.
	if got := DetectMimeType([]byte{0x00, 0x01, 0x02, 0x03}); got != "" {
		t.Errorf("Expected empty for undetectable bytes, got %q", got)
	}
	if got := DetectMimeType(nil); got != "" {
		t.Errorf("Expected empty for no content, got %q", got)
	}

	// A PDF keeps its detected type even with a misleading name upstream.
	pdf := bytes.NewBufferString("%PDF-1.4\n")
	if got := DetectMimeType(pdf.Bytes()); got != "application/pdf" {
		t.Errorf("Expected application/pdf, got %q", got)
	}
}

func TestCanGenerateThumbnails(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"image/png", true},
		{"image/jpeg", true},
		{"image/webp", true},
		{"image/svg+xml", false},
		{"image/x-icon", false},
		{"application/pdf", false},
		{"video/mp4", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := CanGenerateThumbnails(tt.mimeType); got != tt.want {
			t.Errorf("CanGenerateThumbnails(%q) = %v, want %v", tt.mimeType, got, tt.want)
		}
	}
}
