// Kumpel - Personal desktop assistant with a long memory
// License: MIT
//
// Copyright (c) 2026 Kumpel contributors

package channels

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dotsetgreg/kumpel/pkg/bus"
	"github.com/dotsetgreg/kumpel/pkg/config"
	"github.com/dotsetgreg/kumpel/pkg/constants"
	"github.com/dotsetgreg/kumpel/pkg/logger"
)

// Manager owns the configured channels and the dispatcher that pumps
// outbound messages from the bus into them.
type Manager struct {
	channels     map[string]Channel
	bus          *bus.MessageBus
	config       *config.Config
	stopDispatch context.CancelFunc
	mu           sync.RWMutex
}

func NewManager(cfg *config.Config, messageBus *bus.MessageBus) (*Manager, error) {
	m := &Manager{
		channels: make(map[string]Channel),
		bus:      messageBus,
		config:   cfg,
	}
	if err := m.setupDiscord(); err != nil {
		return nil, err
	}

	logger.InfoCF("channels", "Channel manager initialized", map[string]interface{}{
		"enabled_channels": len(m.channels),
	})
	return m, nil
}

// setupDiscord registers the Discord channel when it is enabled. Local
// CLI use works without any channel.
func (m *Manager) setupDiscord() error {
	discordCfg := m.config.Channels.Discord
	if !discordCfg.Enabled {
		logger.DebugC("channels", "Discord channel disabled")
		return nil
	}
	if strings.TrimSpace(discordCfg.Token) == "" {
		return fmt.Errorf("channels.discord.token is required when discord is enabled")
	}

	discord, err := NewDiscordChannel(discordCfg, m.config.WorkspacePath(), m.bus)
	if err != nil {
		return fmt.Errorf("initialize Discord channel: %w", err)
	}
	m.channels[constants.ChannelDiscord] = discord
	logger.InfoC("channels", "Discord channel initialized")
	return nil
}

// StartAll starts every registered channel and then the outbound
// dispatcher. When one channel fails the already-started ones are
// stopped again and the error is returned.
func (m *Manager) StartAll(ctx context.Context) error {
	m.mu.RLock()
	active := make(map[string]Channel, len(m.channels))
	for name, channel := range m.channels {
		active[name] = channel
	}
	m.mu.RUnlock()

	if len(active) == 0 {
		logger.WarnC("channels", "No channels enabled")
		return nil
	}

	var started []string
	for name, channel := range active {
		logger.InfoCF("channels", "Starting channel", map[string]interface{}{"channel": name})
		if err := channel.Start(ctx); err != nil {
			for _, prev := range started {
				if stopErr := active[prev].Stop(ctx); stopErr != nil {
					logger.WarnCF("channels", "Rollback stop failed", map[string]interface{}{
						"channel": prev,
						"error":   stopErr.Error(),
					})
				}
			}
			return fmt.Errorf("start channel %s: %w", name, err)
		}
		started = append(started, name)
	}

	dispatchCtx, cancel := context.WithCancel(ctx)
	m.mu.Lock()
	if m.stopDispatch != nil {
		m.stopDispatch()
	}
	m.stopDispatch = cancel
	m.mu.Unlock()
	go m.dispatchOutbound(dispatchCtx)

	logger.InfoCF("channels", "All channels started", map[string]interface{}{
		"count": len(started),
	})
	return nil
}

func (m *Manager) StopAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.stopDispatch != nil {
		m.stopDispatch()
		m.stopDispatch = nil
	}

	for name, channel := range m.channels {
		if err := channel.Stop(ctx); err != nil {
			logger.ErrorCF("channels", "Error stopping channel", map[string]interface{}{
				"channel": name,
				"error":   err.Error(),
			})
		}
	}

	logger.InfoC("channels", "All channels stopped")
	return nil
}

// dispatchOutbound pumps styled answers from the bus into their
// transport. Internal channels (cli, screenlog) never map to one.
func (m *Manager) dispatchOutbound(ctx context.Context) {
	logger.InfoC("channels", "Outbound dispatcher started")
	defer logger.InfoC("channels", "Outbound dispatcher stopped")

	for {
		msg, ok := m.bus.SubscribeOutbound(ctx)
		if !ok {
			return
		}
		if constants.IsInternalChannel(msg.Channel) {
			continue
		}

		m.mu.RLock()
		channel, exists := m.channels[msg.Channel]
		m.mu.RUnlock()
		if !exists {
			logger.WarnCF("channels", "Unknown channel for outbound message", map[string]interface{}{
				"channel": msg.Channel,
			})
			continue
		}

		if err := channel.Send(ctx, msg); err != nil {
			logger.ErrorCF("channels", "Error sending message to channel", map[string]interface{}{
				"channel": msg.Channel,
				"error":   err.Error(),
			})
		}
	}
}

func (m *Manager) GetChannel(name string) (Channel, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	channel, ok := m.channels[name]
	return channel, ok
}

func (m *Manager) GetEnabledChannels() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.channels))
	for name := range m.channels {
		names = append(names, name)
	}
	return names
}

// RegisterChannel adds a transport under the given name, replacing any
// previous one.
func (m *Manager) RegisterChannel(name string, channel Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[name] = channel
}
