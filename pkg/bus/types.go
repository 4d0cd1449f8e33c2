package bus

// InboundMessage is a user question (or an internal trigger such as a
// desktop snapshot) on its way to the router.
type InboundMessage struct {
	Channel    string            // "cli", "discord", "screenlog"
	SenderID   string            // channel-specific sender identity
	ChatID     string            // conversation id within the channel
	Content    string            // the question text
	Media      []string          // local image paths for vision questions
	SessionKey string            // "<channel>:<chat_id>"
	Metadata   map[string]string // channel extras (message ids, usernames)
}

// OutboundMessage is a styled answer on its way back to a channel.
type OutboundMessage struct {
	Channel string
	ChatID  string
	Content string
}
