// Package capture grabs desktop screenshots through an external tool.
package capture

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/dotsetgreg/kumpel/pkg/config"
	"github.com/dotsetgreg/kumpel/pkg/logger"
	"github.com/google/uuid"
)

// filePlaceholder marks where the target path goes in a configured capture
// command; without it the path is appended as the last argument.
const filePlaceholder = "{file}"

type Capturer struct {
	command string
	dir     string
}

// New resolves the capture command from the config, falling back to
// well-known screenshot tools on the PATH.
func New(cfg *config.Config) *Capturer {
	command := strings.TrimSpace(cfg.Capture.Command)
	if command == "" {
		command = detectCommand()
	}
	return &Capturer{
		command: command,
		dir:     cfg.CaptureDir(),
	}
}

func (c *Capturer) Available() bool {
	return c != nil && c.command != ""
}

// Dir returns where screenshots are stored.
func (c *Capturer) Dir() string {
	return c.dir
}

// CaptureScreen takes one screenshot of the full desktop and returns the
// path of the written PNG.
func (c *Capturer) CaptureScreen(ctx context.Context) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("no screenshot tool configured (set capture.command)")
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	// Timestamp plus a short random suffix keeps concurrent captures apart.
	name := fmt.Sprintf("screenshot_%s_%s.png", time.Now().Format("20060102_150405"), uuid.NewString()[:8])
	path := filepath.Join(c.dir, name)

	line := c.command
	if strings.Contains(line, filePlaceholder) {
		line = strings.ReplaceAll(line, filePlaceholder, path)
	} else {
		line = line + " " + path
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", line)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", line)
	}
	if out, err := cmd.CombinedOutput(); err != nil {
		return "", fmt.Errorf("screenshot command failed: %v (%s)", err, strings.TrimSpace(string(out)))
	}

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", fmt.Errorf("screenshot tool produced no file at %s", path)
	}

	logger.DebugCF("capture", "Screenshot captured", map[string]interface{}{
		"file": name,
	})
	return path, nil
}

// Cleanup deletes all stored screenshots and returns how many were removed.
func (c *Capturer) Cleanup() int {
	matches, err := filepath.Glob(filepath.Join(c.dir, "*.png"))
	if err != nil {
		return 0
	}
	count := 0
	for _, path := range matches {
		if err := os.Remove(path); err != nil {
			continue
		}
		count++
	}
	logger.InfoCF("capture", "Screenshots deleted", map[string]interface{}{
		"count": count,
	})
	return count
}

func detectCommand() string {
	switch runtime.GOOS {
	case "darwin":
		if _, err := exec.LookPath("screencapture"); err == nil {
			return "screencapture -x {file}"
		}
	case "windows":
		return ""
	default:
		candidates := []struct{ bin, cmd string }{
			{"scrot", "scrot -o {file}"},
			{"maim", "maim {file}"},
			{"gnome-screenshot", "gnome-screenshot -f {file}"},
			{"import", "import -window root {file}"},
		}
		for _, candidate := range candidates {
			if _, err := exec.LookPath(candidate.bin); err == nil {
				return candidate.cmd
			}
		}
	}
	return ""
}
