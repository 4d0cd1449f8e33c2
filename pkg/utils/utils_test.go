package utils

import "testing"

func TestTruncate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short stays", "hallo", 10, "hallo"},
		{"exact stays", "hallo", 5, "hallo"},
		{"long cut", "hallo zusammen", 5, "hallo..."},
		{"zero max", "hallo", 0, ""},
		{"umlauts counted as runes", "grüße aus köln", 5, "grüße..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.max); got != tt.want {
				t.Fatalf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
		})
	}
}

func TestIsImageFile(t *testing.T) {
	if !IsImageFile("/tmp/screenshot_123_m0.PNG") {
		t.Fatal("expected .PNG to count as image")
	}
	if IsImageFile("/tmp/notes.txt") {
		t.Fatal("expected .txt to not count as image")
	}
}

func TestIsAudioFile(t *testing.T) {
	if !IsAudioFile("voice-note.ogg") {
		t.Fatal("expected .ogg to count as audio")
	}
	if IsAudioFile("screenshot.png") {
		t.Fatal("expected .png to not count as audio")
	}
}
