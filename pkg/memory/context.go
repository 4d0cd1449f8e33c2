package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// DefaultContextWindow is how many recent interactions reach the prompt.
const DefaultContextWindow = 30

// ContextCache presents the most recent conversation window as
// prompt-ready lines, oldest first.
//
// Reload returns the freshly built window as a snapshot that stays
// stable for the caller even while concurrent requests keep writing:
// each request holds the slice Reload handed it and never re-reads the
// shared cache mid-flight.
type ContextCache struct {
	log    InteractionStore
	window int

	mu    sync.RWMutex
	lines []string
}

func NewContextCache(log InteractionStore, window int) *ContextCache {
	if window <= 0 {
		window = DefaultContextWindow
	}
	return &ContextCache{log: log, window: window}
}

// Reload rebuilds the window from the store and returns it in
// chronological order. The returned slice is never mutated afterwards;
// later reloads swap in a new one.
func (c *ContextCache) Reload(ctx context.Context) ([]string, error) {
	recent, err := c.log.RecentInteractions(ctx, c.window)
	if err != nil {
		return nil, fmt.Errorf("reload context: %w", err)
	}

	lines := make([]string, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		lines = append(lines, formatContextLine(recent[i]))
	}

	c.mu.Lock()
	c.lines = lines
	c.mu.Unlock()
	return lines, nil
}

// Lines returns the snapshot from the most recent Reload.
func (c *ContextCache) Lines() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lines
}

func formatContextLine(in Interaction) string {
	return fmt.Sprintf("%s (%s): %s", strings.ToUpper(in.Role), in.Timestamp, in.Content)
}
