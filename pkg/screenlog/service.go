// Package screenlog periodically captures the desktop, asks the vision
// model what it sees and appends the observation to a plain text log.
// Observations never enter conversation memory.
package screenlog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/adhocore/gronx"
	"github.com/dotsetgreg/kumpel/pkg/bus"
	"github.com/dotsetgreg/kumpel/pkg/capture"
	"github.com/dotsetgreg/kumpel/pkg/config"
	"github.com/dotsetgreg/kumpel/pkg/constants"
	"github.com/dotsetgreg/kumpel/pkg/logger"
	"github.com/dotsetgreg/kumpel/pkg/state"
	"github.com/dotsetgreg/kumpel/pkg/utils"
)

// observationQuestion names the desk tools explicitly so the model calls
// them out instead of describing generic windows.
const observationQuestion = "Beschreibe genau, was auf meinem Bildschirm zu sehen ist. " +
	"Wenn du Tools wie Outlook, TechDirect, DFSM, LSTC oder Browserfenster erkennst, sag es explizit."

const logFileName = "screenlog.txt"

// VisionAsker answers a question about a screenshot file.
type VisionAsker interface {
	AskVision(ctx context.Context, question, imagePath string, facts, contextLines []string) (string, error)
}

// Service drives the capture/describe/log cycle on an interval ticker or,
// when a cron expression is configured, on gronx-checked minutes.
type Service struct {
	cfg      *config.Config
	capturer *capture.Capturer
	asker    VisionAsker
	state    *state.Manager
	bus      *bus.MessageBus

	stopCh   chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewService(cfg *config.Config, capturer *capture.Capturer, asker VisionAsker, stateManager *state.Manager, msgBus *bus.MessageBus) *Service {
	return &Service{
		cfg:      cfg,
		capturer: capturer,
		asker:    asker,
		state:    stateManager,
		bus:      msgBus,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the background loop. A disabled config or a missing
// screenshot tool is not an error, the service just stays idle. An invalid
// cron expression is a config mistake and is reported.
func (s *Service) Start() error {
	if !s.cfg.Screenlog.Enabled {
		logger.DebugC("screenlog", "Screen logging disabled")
		return nil
	}
	if s.capturer == nil || !s.capturer.Available() {
		logger.WarnC("screenlog", "No screenshot tool available, screen logging stays off")
		return nil
	}

	cronExpr := strings.TrimSpace(s.cfg.Screenlog.Cron)
	if cronExpr != "" && !gronx.New().IsValid(cronExpr) {
		return fmt.Errorf("invalid screenlog cron expression: %q", cronExpr)
	}

	s.wg.Add(1)
	if cronExpr != "" {
		go s.runCron(cronExpr)
	} else {
		go s.runInterval()
	}

	logger.InfoCF("screenlog", "Screen logging started", map[string]interface{}{
		"interval": s.cfg.Screenlog.Interval,
		"cron":     cronExpr,
		"deliver":  s.cfg.Screenlog.Deliver,
	})
	return nil
}

func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		s.wg.Wait()
	})
}

func (s *Service) runInterval() {
	defer s.wg.Done()

	interval := time.Duration(s.cfg.Screenlog.Interval) * time.Second
	if interval <= 0 {
		interval = 120 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Observe once right away, then on every tick.
	s.observe()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.observe()
		}
	}
}

func (s *Service) runCron(expr string) {
	defer s.wg.Done()

	gron := gronx.New()
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case now := <-ticker.C:
			due, err := gron.IsDue(expr, now)
			if err != nil {
				logger.WarnCF("screenlog", "Cron check failed", map[string]interface{}{"error": err.Error()})
				continue
			}
			if due {
				s.observe()
			}
		}
	}
}

// observe runs one capture/describe/log cycle. Every failure is logged and
// swallowed, the next tick gets a fresh chance.
func (s *Service) observe() {
	timeout := time.Duration(s.cfg.Agents.Defaults.AnswerTimeout) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	imagePath, err := s.capturer.CaptureScreen(ctx)
	if err != nil {
		logger.WarnCF("screenlog", "Screenshot failed", map[string]interface{}{"error": err.Error()})
		return
	}

	text, err := s.asker.AskVision(ctx, observationQuestion, imagePath, nil, nil)
	if err != nil {
		logger.WarnCF("screenlog", "Screen description failed", map[string]interface{}{"error": err.Error()})
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	if err := s.appendEntry(text); err != nil {
		logger.WarnCF("screenlog", "Failed to write screen log", map[string]interface{}{"error": err.Error()})
	}
	logger.InfoCF("screenlog", "Screen observation logged", map[string]interface{}{
		"preview": utils.Truncate(text, 80),
	})

	if s.cfg.Screenlog.Deliver {
		s.deliver(text)
	}
}

// appendEntry appends "timestamp, observation, blank line" so the log stays
// readable as plain text.
func (s *Service) appendEntry(text string) error {
	path := s.LogPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open screen log: %w", err)
	}
	defer f.Close()

	entry := fmt.Sprintf("%s\n%s\n\n", time.Now().Format("2006-01-02 15:04:05"), text)
	if _, err := f.WriteString(entry); err != nil {
		return fmt.Errorf("append screen log: %w", err)
	}
	return nil
}

// deliver pushes the observation to wherever the user last talked to us.
// Without a recorded external origin there is nowhere to send it.
func (s *Service) deliver(text string) {
	channel := s.state.LastChannel()
	chatID := s.state.LastChatID()
	if channel == "" || chatID == "" || constants.IsInternalChannel(channel) {
		logger.DebugC("screenlog", "No external channel recorded, keeping observation local")
		return
	}

	s.bus.PublishOutbound(bus.OutboundMessage{
		Channel: channel,
		ChatID:  chatID,
		Content: text,
	})
}

// LogPath returns the observation log location inside the workspace.
func (s *Service) LogPath() string {
	return filepath.Join(s.cfg.WorkspacePath(), logFileName)
}
