package screenlog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dotsetgreg/kumpel/pkg/bus"
	"github.com/dotsetgreg/kumpel/pkg/capture"
	"github.com/dotsetgreg/kumpel/pkg/config"
	"github.com/dotsetgreg/kumpel/pkg/state"
)

type fakeAsker struct {
	mu      sync.Mutex
	answer  string
	err     error
	calls   int
	lastQ   string
	lastImg string
}

func (f *fakeAsker) AskVision(ctx context.Context, question, imagePath string, facts, contextLines []string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.lastQ = question
	f.lastImg = imagePath
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *fakeAsker) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestService(t *testing.T, asker VisionAsker) *Service {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell capture command not available on windows")
	}

	cfg := config.DefaultConfig()
	cfg.Agents.Defaults.Workspace = t.TempDir()
	cfg.Screenlog.Enabled = true
	cfg.Capture.Command = "printf PNG > {file}"
	cfg.Capture.Dir = filepath.Join(cfg.Agents.Defaults.Workspace, "screenshots")

	return NewService(cfg, capture.New(cfg), asker, state.NewManager(cfg.WorkspacePath()), bus.NewMessageBus())
}

func TestService_ObserveAppendsEntry(t *testing.T) {
	asker := &fakeAsker{answer: "Outlook und zwei Browserfenster sind offen."}
	svc := newTestService(t, asker)

	svc.observe()

	if asker.callCount() != 1 {
		t.Fatalf("vision calls = %d, want 1", asker.callCount())
	}
	if asker.lastQ != observationQuestion {
		t.Errorf("question = %q", asker.lastQ)
	}
	if !strings.HasSuffix(asker.lastImg, ".png") {
		t.Errorf("image path = %q", asker.lastImg)
	}

	data, err := os.ReadFile(svc.LogPath())
	if err != nil {
		t.Fatalf("read screen log: %v", err)
	}
	entry := string(data)
	if !strings.Contains(entry, "Outlook und zwei Browserfenster sind offen.") {
		t.Fatalf("log entry = %q", entry)
	}
	if !strings.HasSuffix(entry, "\n\n") {
		t.Errorf("entry not terminated by a blank line: %q", entry)
	}

	// A second observation is appended, not overwritten.
	svc.observe()
	data, err = os.ReadFile(svc.LogPath())
	if err != nil {
		t.Fatalf("read screen log: %v", err)
	}
	if got := strings.Count(string(data), "Outlook und zwei Browserfenster"); got != 2 {
		t.Fatalf("entries = %d, want 2", got)
	}
}

func TestService_ObserveDeliversToLastChannel(t *testing.T) {
	asker := &fakeAsker{answer: "TechDirect ist im Vordergrund."}
	svc := newTestService(t, asker)
	svc.cfg.Screenlog.Deliver = true

	if err := svc.state.SetLastChannel("discord"); err != nil {
		t.Fatalf("SetLastChannel: %v", err)
	}
	if err := svc.state.SetLastChatID("99"); err != nil {
		t.Fatalf("SetLastChatID: %v", err)
	}

	svc.observe()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	out, ok := svc.bus.SubscribeOutbound(ctx)
	if !ok {
		t.Fatal("no delivered observation on the bus")
	}
	if out.Channel != "discord" || out.ChatID != "99" {
		t.Fatalf("delivered to %s:%s", out.Channel, out.ChatID)
	}
	if !strings.Contains(out.Content, "TechDirect") {
		t.Fatalf("delivered content = %q", out.Content)
	}
}

func TestService_ObserveWithoutOriginStaysLocal(t *testing.T) {
	asker := &fakeAsker{answer: "Nur der Desktop."}
	svc := newTestService(t, asker)
	svc.cfg.Screenlog.Deliver = true

	svc.observe()

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	if _, ok := svc.bus.SubscribeOutbound(ctx); ok {
		t.Fatal("observation delivered without a recorded channel")
	}
	if _, err := os.Stat(svc.LogPath()); err != nil {
		t.Fatalf("log entry missing: %v", err)
	}
}

func TestService_ObserveSwallowsModelError(t *testing.T) {
	asker := &fakeAsker{err: errors.New("vision offline")}
	svc := newTestService(t, asker)

	svc.observe()

	if _, err := os.Stat(svc.LogPath()); !os.IsNotExist(err) {
		t.Fatalf("log written despite model error: %v", err)
	}
}

func TestService_StartDisabledOrUnavailable(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Agents.Defaults.Workspace = t.TempDir()

	svc := NewService(cfg, nil, &fakeAsker{}, state.NewManager(cfg.WorkspacePath()), bus.NewMessageBus())
	if err := svc.Start(); err != nil {
		t.Fatalf("disabled Start: %v", err)
	}
	svc.Stop()

	cfg.Screenlog.Enabled = true
	svc = NewService(cfg, nil, &fakeAsker{}, state.NewManager(cfg.WorkspacePath()), bus.NewMessageBus())
	if err := svc.Start(); err != nil {
		t.Fatalf("Start without capturer: %v", err)
	}
	svc.Stop()
}

func TestService_StartRejectsInvalidCron(t *testing.T) {
	asker := &fakeAsker{answer: "leer"}
	svc := newTestService(t, asker)
	svc.cfg.Screenlog.Cron = "every two minutes"

	err := svc.Start()
	if err == nil || !strings.Contains(err.Error(), "invalid screenlog cron") {
		t.Fatalf("Start = %v, want cron validation error", err)
	}
}

func TestService_IntervalLoopObservesAndStops(t *testing.T) {
	asker := &fakeAsker{answer: "Ein Editor ist offen."}
	svc := newTestService(t, asker)
	svc.cfg.Screenlog.Interval = 3600

	if err := svc.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	// The loop observes once immediately after start.
	deadline := time.Now().Add(5 * time.Second)
	for asker.callCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no observation after start")
		}
		time.Sleep(20 * time.Millisecond)
	}

	done := make(chan struct{})
	go func() {
		svc.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}
