package channels

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dotsetgreg/kumpel/pkg/bus"
	"github.com/dotsetgreg/kumpel/pkg/config"
)

type stubChannel struct {
	name      string
	failStart bool

	mu      sync.Mutex
	running bool
	sent    []bus.OutboundMessage
}

func (s *stubChannel) Name() string { return s.name }

func (s *stubChannel) Start(ctx context.Context) error {
	if s.failStart {
		return errors.New("start failed")
	}
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	return nil
}

func (s *stubChannel) Stop(ctx context.Context) error {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	return nil
}

func (s *stubChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	return nil
}

func (s *stubChannel) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *stubChannel) IsAllowed(senderID string) bool { return true }

func (s *stubChannel) sentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func newTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Agents.Defaults.Workspace = t.TempDir()
	return cfg
}

func TestNewManager_DiscordDisabled(t *testing.T) {
	cfg := newTestConfig(t)

	m, err := NewManager(cfg, bus.NewMessageBus())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if got := m.GetEnabledChannels(); len(got) != 0 {
		t.Fatalf("enabled channels = %v, want none", got)
	}
	if err := m.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll without channels: %v", err)
	}
}

func TestNewManager_DiscordEnabledNeedsToken(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Channels.Discord.Enabled = true

	_, err := NewManager(cfg, bus.NewMessageBus())
	if err == nil || !strings.Contains(err.Error(), "channels.discord.token is required") {
		t.Fatalf("NewManager = %v, want token error", err)
	}
}

func TestNewManager_DiscordEnabledWithToken(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.Channels.Discord.Enabled = true
	cfg.Channels.Discord.Token = "test-token"

	m, err := NewManager(cfg, bus.NewMessageBus())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	if _, ok := m.GetChannel("discord"); !ok {
		t.Fatal("discord channel not registered")
	}
}

func TestManager_StartAllRollsBackOnPartialFailure(t *testing.T) {
	cfg := newTestConfig(t)
	m, err := NewManager(cfg, bus.NewMessageBus())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	good := &stubChannel{name: "good"}
	bad := &stubChannel{name: "bad", failStart: true}
	m.RegisterChannel("good", good)
	m.RegisterChannel("bad", bad)

	err = m.StartAll(context.Background())
	if err == nil || !strings.Contains(err.Error(), "bad: start failed") {
		t.Fatalf("StartAll = %v, want partial failure", err)
	}
	if good.IsRunning() {
		t.Fatal("surviving channel not rolled back")
	}
}

func TestManager_DispatchRoutesAndSkipsInternal(t *testing.T) {
	cfg := newTestConfig(t)
	msgBus := bus.NewMessageBus()
	m, err := NewManager(cfg, msgBus)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}

	stub := &stubChannel{name: "stub"}
	m.RegisterChannel("stub", stub)

	if err := m.StartAll(context.Background()); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	defer m.StopAll(context.Background())

	// Internal channels are dropped by the dispatcher, external ones reach
	// their transport.
	msgBus.PublishOutbound(bus.OutboundMessage{Channel: "cli", ChatID: "direct", Content: "intern"})
	msgBus.PublishOutbound(bus.OutboundMessage{Channel: "stub", ChatID: "42", Content: "extern"})

	deadline := time.Now().Add(5 * time.Second)
	for stub.sentCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("outbound message never dispatched")
		}
		time.Sleep(10 * time.Millisecond)
	}

	stub.mu.Lock()
	defer stub.mu.Unlock()
	if len(stub.sent) != 1 || stub.sent[0].Content != "extern" {
		t.Fatalf("dispatched = %+v", stub.sent)
	}
}
