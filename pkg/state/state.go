// Package state persists small runtime facts (last active channel and
// chat) across restarts so background services can deliver summaries
// to wherever the user last spoke.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

type State struct {
	LastChannel string `json:"last_channel"`
	LastChatID  string `json:"last_chat_id"`
	UpdatedAt   string `json:"updated_at"`
}

type Manager struct {
	path string
	mu   sync.Mutex
	cur  State
}

// NewManager loads runtime.json from the workspace if present. A
// missing or corrupt file starts empty rather than failing.
func NewManager(workspace string) *Manager {
	m := &Manager{path: filepath.Join(workspace, "runtime.json")}
	data, err := os.ReadFile(m.path)
	if err == nil {
		_ = json.Unmarshal(data, &m.cur)
	}
	return m
}

func (m *Manager) SetLastChannel(channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur.LastChannel = channel
	return m.save()
}

func (m *Manager) SetLastChatID(chatID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cur.LastChatID = chatID
	return m.save()
}

func (m *Manager) LastChannel() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur.LastChannel
}

func (m *Manager) LastChatID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cur.LastChatID
}

// save writes via temp file + rename so a crash mid-write never leaves
// a truncated runtime.json behind. Caller holds the lock.
func (m *Manager) save() error {
	m.cur.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	data, err := json.MarshalIndent(m.cur, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal runtime state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp := m.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write runtime state: %w", err)
	}
	if err := os.Rename(tmp, m.path); err != nil {
		return fmt.Errorf("replace runtime state: %w", err)
	}
	return nil
}
