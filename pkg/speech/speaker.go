// Package speech voices assistant answers through an external
// text-to-speech command.
package speech

import (
	"context"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/dotsetgreg/kumpel/pkg/config"
	"github.com/dotsetgreg/kumpel/pkg/logger"
	"github.com/dotsetgreg/kumpel/pkg/utils"
)

const speakTimeout = 30 * time.Second

// Speaker voices a short answer. Implementations never block the caller and
// never fail the request flow; a broken TTS setup degrades to silence.
type Speaker interface {
	Speak(text string)
}

// NewFromConfig picks the speaker matching the speech settings.
func NewFromConfig(cfg *config.Config) Speaker {
	if cfg == nil || !cfg.Speech.Enabled || strings.TrimSpace(cfg.Speech.Command) == "" {
		return NoopSpeaker{}
	}
	return NewCommandSpeaker(cfg.Speech.Command)
}

// NoopSpeaker is used when speech output is disabled.
type NoopSpeaker struct{}

func (NoopSpeaker) Speak(string) {}

// CommandSpeaker runs a shell command for every answer and feeds it the text
// on stdin, e.g. "espeak-ng -v de" or "say" on macOS.
type CommandSpeaker struct {
	command string
}

func NewCommandSpeaker(command string) *CommandSpeaker {
	return &CommandSpeaker{command: strings.TrimSpace(command)}
}

func (s *CommandSpeaker) Speak(text string) {
	text = strings.TrimSpace(text)
	if text == "" || s.command == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), speakTimeout)
		defer cancel()

		var cmd *exec.Cmd
		if runtime.GOOS == "windows" {
			cmd = exec.CommandContext(ctx, "powershell", "-NoProfile", "-NonInteractive", "-Command", s.command)
		} else {
			cmd = exec.CommandContext(ctx, "sh", "-c", s.command)
		}
		cmd.Stdin = strings.NewReader(text)

		if out, err := cmd.CombinedOutput(); err != nil {
			logger.WarnCF("speech", "Speech command failed", map[string]interface{}{
				"error":  err.Error(),
				"output": utils.Truncate(strings.TrimSpace(string(out)), 200),
			})
		}
	}()
}
