package utils

import (
	"path/filepath"
	"strings"
)

// Truncate shortens s to max runes, appending "..." when it cut
// something. Used for log previews so multi-KB answers do not flood
// the gateway log.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

// IsImageFile reports whether path looks like an image by extension.
func IsImageFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp":
		return true
	}
	return false
}

// IsAudioFile reports whether path looks like an audio clip by extension.
func IsAudioFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav", ".ogg", ".oga", ".m4a", ".flac", ".opus":
		return true
	}
	return false
}
