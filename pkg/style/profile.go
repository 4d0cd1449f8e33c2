// Package style derives a personal writing voice from sample texts and
// applies it to outgoing answers.
package style

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotsetgreg/kumpel/pkg/logger"
)

// DefaultAuthor signs the closing when no author is configured.
const DefaultAuthor = "Eren"

const defaultGreeting = "Hallo zusammen"

var (
	greetingPrefixes = []string{"hallo", "hi", "guten", "liebe"}
	closingMarkers   = []string{"grüße", "thanks"}
)

// Profile captures the voice derived from the sample texts. It is built once
// and never mutated afterwards.
type Profile struct {
	Rules    map[string]string
	Examples []string
	Greeting string
	Closing  string
}

// BuildProfile derives a profile from raw sample texts. It is a pure function
// of its inputs so it can be tested without touching the filesystem; use
// LoadSamples to read the configured sample directory.
func BuildProfile(samples []string, author string) Profile {
	author = strings.TrimSpace(author)
	if author == "" {
		author = DefaultAuthor
	}
	defaultClosing := "Viele Grüße\n" + author

	examples := make([]string, 0, len(samples))
	for _, sample := range samples {
		if trimmed := strings.TrimSpace(sample); trimmed != "" {
			examples = append(examples, trimmed)
		}
	}
	if len(examples) == 0 {
		examples = append(examples, fmt.Sprintf(
			"Hallo zusammen,\n\nkurzes Update: Bitte prüft die CAD-Cases bis 10 Uhr und gebt mir eine Rückmeldung.\n\nViele Grüße\n%s",
			author,
		))
	}

	profile := Profile{
		Rules: map[string]string{
			"ton":       "Direkt, lösungsorientiert, höflich und mit klaren Aufgaben.",
			"struktur":  "Kurze Einleitung, Problem benennen, klare nächsten Schritte, Bitte um Rückmeldung.",
			"abschluss": "Immer mit freundlicher Grußformel und Namen enden.",
		},
		Examples: examples,
		Greeting: extractGreeting(samples),
		Closing:  extractClosing(samples, defaultClosing),
	}

	logger.InfoCF("style", "Style profile built", map[string]interface{}{
		"examples": len(profile.Examples),
	})
	return profile
}

// LoadSamples reads every *.txt file in dir in filename order. Unreadable
// files are logged and skipped; a missing directory yields no samples.
func LoadSamples(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.DebugCF("style", "No style samples available", map[string]interface{}{
			"dir": dir,
		})
		return nil
	}

	var samples []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			logger.ErrorCF("style", "Failed to read style sample", map[string]interface{}{
				"file":  entry.Name(),
				"error": err.Error(),
			})
			continue
		}
		samples = append(samples, string(data))
	}
	return samples
}

func extractGreeting(samples []string) string {
	for _, sample := range samples {
		lines := nonEmptyLines(sample)
		if len(lines) == 0 {
			continue
		}
		first := strings.ToLower(lines[0])
		for _, prefix := range greetingPrefixes {
			if strings.HasPrefix(first, prefix) {
				return lines[0]
			}
		}
	}
	return defaultGreeting
}

func extractClosing(samples []string, fallback string) string {
	for _, sample := range samples {
		lines := nonEmptyLines(sample)
		if len(lines) < 2 {
			continue
		}
		closing := strings.Join(lines[len(lines)-2:], "\n")
		lower := strings.ToLower(closing)
		for _, marker := range closingMarkers {
			if strings.Contains(lower, marker) {
				return closing
			}
		}
	}
	return fallback
}

func nonEmptyLines(sample string) []string {
	var lines []string
	for _, line := range strings.Split(strings.TrimSpace(sample), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
