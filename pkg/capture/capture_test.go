package capture

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/dotsetgreg/kumpel/pkg/config"
)

func newTestCapturer(t *testing.T, command string) *Capturer {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Capture.Command = command
	cfg.Capture.Dir = t.TempDir()
	return New(cfg)
}

func TestCapturer_CaptureScreen_WritesFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell command differs on windows")
	}

	c := newTestCapturer(t, "printf PNG > {file}")
	path, err := c.CaptureScreen(context.Background())
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	name := filepath.Base(path)
	if !strings.HasPrefix(name, "screenshot_") || !strings.HasSuffix(name, ".png") {
		t.Fatalf("unexpected screenshot name %q", name)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "PNG" {
		t.Fatalf("screenshot not written: %v %q", err, data)
	}
}

func TestCapturer_CaptureScreen_FailsWithoutOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell command differs on windows")
	}

	// "true" accepts the appended path but never writes it.
	c := newTestCapturer(t, "true")
	if _, err := c.CaptureScreen(context.Background()); err == nil {
		t.Fatalf("expected error when the tool writes no file")
	}
}

func TestCapturer_UnavailableWithoutCommand(t *testing.T) {
	c := &Capturer{dir: t.TempDir()}
	if c.Available() {
		t.Fatalf("expected capturer to be unavailable")
	}
	if _, err := c.CaptureScreen(context.Background()); err == nil {
		t.Fatalf("expected error without a capture command")
	}
}

func TestCapturer_CleanupRemovesOnlyScreenshots(t *testing.T) {
	c := newTestCapturer(t, "true")

	for _, name := range []string{"a.png", "b.png", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(c.Dir(), name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	if got := c.Cleanup(); got != 2 {
		t.Fatalf("expected 2 deleted screenshots, got %d", got)
	}
	if _, err := os.Stat(filepath.Join(c.Dir(), "notes.txt")); err != nil {
		t.Fatalf("expected non-png files untouched: %v", err)
	}
	if got := c.Cleanup(); got != 0 {
		t.Fatalf("expected empty dir on second cleanup, got %d", got)
	}
}
