package channels

import (
	"context"
	"fmt"
	"strings"

	"github.com/dotsetgreg/kumpel/pkg/bus"
)

// Channel is an outbound transport plus its inbound listener.
type Channel interface {
	Name() string
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Send(ctx context.Context, msg bus.OutboundMessage) error
	IsRunning() bool
	IsAllowed(senderID string) bool
}

// BaseChannel carries the state every channel shares: its name, the bus
// it publishes into and the sender allowlist.
type BaseChannel struct {
	bus       *bus.MessageBus
	running   bool
	name      string
	allowList []string
}

func NewBaseChannel(name string, bus *bus.MessageBus, allowList []string) *BaseChannel {
	return &BaseChannel{
		bus:       bus,
		name:      name,
		allowList: allowList,
	}
}

func (c *BaseChannel) Name() string {
	return c.name
}

func (c *BaseChannel) IsRunning() bool {
	return c.running
}

// IsAllowed checks the sender against the allowlist. An empty allowlist
// admits everyone. Entries match either the raw ID or, for compound IDs
// like "123456|username", the ID or the username part.
func (c *BaseChannel) IsAllowed(senderID string) bool {
	if len(c.allowList) == 0 {
		return true
	}

	idPart, userPart, _ := strings.Cut(senderID, "|")
	if idPart == "" {
		// A leading pipe is not a compound ID.
		idPart, userPart = senderID, ""
	}

	for _, entry := range c.allowList {
		entry = strings.TrimSpace(strings.TrimPrefix(entry, "@"))
		if entry == "" {
			continue
		}
		if entry == senderID || entry == idPart || (userPart != "" && entry == userPart) {
			return true
		}
	}
	return false
}

// HandleMessage publishes an inbound message on the bus with the
// channel's session key "name:chatID".
func (c *BaseChannel) HandleMessage(senderID, chatID, content string, media []string, metadata map[string]string) {
	if !c.IsAllowed(senderID) {
		return
	}

	c.bus.PublishInbound(bus.InboundMessage{
		Channel:    c.name,
		SenderID:   senderID,
		ChatID:     chatID,
		Content:    content,
		Media:      media,
		SessionKey: fmt.Sprintf("%s:%s", c.name, chatID),
		Metadata:   metadata,
	})
}

func (c *BaseChannel) setRunning(running bool) {
	c.running = running
}
