package channels

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/dotsetgreg/kumpel/pkg/bus"
	"github.com/dotsetgreg/kumpel/pkg/config"
	"github.com/dotsetgreg/kumpel/pkg/constants"
	"github.com/dotsetgreg/kumpel/pkg/logger"
	"github.com/dotsetgreg/kumpel/pkg/utils"
	"github.com/google/uuid"
)

const (
	sendTimeout           = 10 * time.Second
	typingRefreshInterval = 8 * time.Second
	downloadTimeout       = 30 * time.Second
	maxDownloadBytes      = 25 << 20
)

type DiscordChannel struct {
	*BaseChannel
	session     *discordgo.Session
	config      config.DiscordConfig
	downloadDir string
	httpClient  *http.Client
	typing      *typingIndicator
}

func NewDiscordChannel(cfg config.DiscordConfig, workspace string, bus *bus.MessageBus) (*DiscordChannel, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}

	return &DiscordChannel{
		BaseChannel: NewBaseChannel(constants.ChannelDiscord, bus, []string(cfg.AllowFrom)),
		session:     session,
		config:      cfg,
		downloadDir: filepath.Join(workspace, "downloads"),
		httpClient:  &http.Client{Timeout: downloadTimeout},
		typing:      newTypingIndicator(),
	}, nil
}

func (c *DiscordChannel) Start(ctx context.Context) error {
	logger.InfoC("discord", "Starting Discord bot")

	c.session.AddHandler(c.handleMessage)

	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}

	c.setRunning(true)

	botUser, err := c.session.User("@me")
	if err != nil {
		return fmt.Errorf("failed to get bot user: %w", err)
	}
	logger.InfoCF("discord", "Discord bot connected", map[string]any{
		"username": botUser.Username,
		"user_id":  botUser.ID,
	})

	return nil
}

func (c *DiscordChannel) Stop(ctx context.Context) error {
	logger.InfoC("discord", "Stopping Discord bot")
	c.setRunning(false)
	c.typing.stopAll()

	if err := c.session.Close(); err != nil {
		return fmt.Errorf("failed to close discord session: %w", err)
	}

	return nil
}

func (c *DiscordChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if !c.IsRunning() {
		return fmt.Errorf("discord bot not running")
	}

	channelID := msg.ChatID
	if channelID == "" {
		return fmt.Errorf("channel ID is empty")
	}
	defer c.typing.end(channelID)

	if msg.Content == "" {
		return nil
	}

	// Discord caps messages at 2000 characters, keep headroom for clean
	// splits around code blocks.
	for _, chunk := range splitMessage(msg.Content, 1500) {
		if err := c.sendChunk(ctx, channelID, chunk); err != nil {
			return err
		}
	}

	return nil
}

// splitMessage breaks long content into chunks at natural boundaries,
// keeping ``` code fences intact where possible.
func splitMessage(content string, limit int) []string {
	var chunks []string

	for len(content) > 0 {
		if len(content) <= limit {
			chunks = append(chunks, content)
			break
		}

		end := cutPoint(content[:limit])
		if openIdx := findLastUnclosedCodeBlock(content[:end]); openIdx >= 0 {
			end = fenceAwareCut(content, end, openIdx, limit)
		}
		if end <= 0 {
			end = limit
		}

		chunks = append(chunks, content[:end])
		content = strings.TrimSpace(content[end:])
	}

	return chunks
}

// cutPoint prefers a newline near the end of the window, then a space,
// then the hard limit.
func cutPoint(s string) int {
	tail := len(s) - 200
	if tail < 0 {
		tail = 0
	}
	if idx := strings.LastIndexByte(s[tail:], '\n'); idx >= 0 && tail+idx > 0 {
		return tail + idx
	}

	tail = len(s) - 100
	if tail < 0 {
		tail = 0
	}
	if idx := strings.LastIndexAny(s[tail:], " \t"); idx >= 0 && tail+idx > 0 {
		return tail + idx
	}

	return len(s)
}

// fenceAwareCut resolves a cut that would land inside a code fence.
// When the rest fits in the extended window it is flushed whole;
// otherwise the chunk grows to the nearby closing fence or shrinks to
// end before the fence opens.
func fenceAwareCut(content string, end, openIdx, limit int) int {
	extended := limit + 500
	if len(content) <= extended {
		return len(content)
	}
	if closing := nextFenceEnd(content, end); closing > 0 && closing <= extended {
		return closing
	}
	return cutPoint(content[:openIdx])
}

// findLastUnclosedCodeBlock returns the position of the ``` fence left
// open at the end of text, or -1 when all fences are balanced.
func findLastUnclosedCodeBlock(text string) int {
	openIdx := -1
	open := false
	for i := 0; ; {
		idx := strings.Index(text[i:], "```")
		if idx < 0 {
			break
		}
		at := i + idx
		if !open {
			openIdx = at
		}
		open = !open
		i = at + 3
	}
	if open {
		return openIdx
	}
	return -1
}

// nextFenceEnd returns the position just past the next ``` at or after
// start, or -1.
func nextFenceEnd(text string, start int) int {
	if start >= len(text) {
		return -1
	}
	if idx := strings.Index(text[start:], "```"); idx >= 0 {
		return start + idx + 3
	}
	return -1
}

// sendChunk wraps the blocking discordgo send with a timeout, since the
// library call itself takes no context.
func (c *DiscordChannel) sendChunk(ctx context.Context, channelID, content string) error {
	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		_, err := c.session.ChannelMessageSend(channelID, content)
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send discord message: %w", err)
		}
		return nil
	case <-sendCtx.Done():
		return fmt.Errorf("send message timeout: %w", sendCtx.Err())
	}
}

// typingIndicator tracks channels with answers in flight. The indicator
// stays alive until the last pending answer was sent.
type typingIndicator struct {
	mu       sync.Mutex
	sessions map[string]*typingState
}

type typingState struct {
	pending int
	cancel  context.CancelFunc
}

func newTypingIndicator() *typingIndicator {
	return &typingIndicator{sessions: make(map[string]*typingState)}
}

// begin registers one pending answer. The returned context is non-nil
// exactly when the caller must start a refresh loop for the channel.
func (t *typingIndicator) begin(channelID string) context.Context {
	t.mu.Lock()
	defer t.mu.Unlock()

	if st, ok := t.sessions[channelID]; ok {
		st.pending++
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.sessions[channelID] = &typingState{pending: 1, cancel: cancel}
	return ctx
}

func (t *typingIndicator) end(channelID string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	st, ok := t.sessions[channelID]
	if !ok {
		return
	}
	st.pending--
	if st.pending > 0 {
		return
	}
	delete(t.sessions, channelID)
	st.cancel()
}

func (t *typingIndicator) stopAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for id, st := range t.sessions {
		st.cancel()
		delete(t.sessions, id)
	}
}

func (c *DiscordChannel) beginTyping(channelID string) {
	if channelID == "" {
		return
	}
	ctx := c.typing.begin(channelID)
	if ctx == nil {
		return
	}

	c.sendTyping(channelID)
	go c.refreshTyping(ctx, channelID)
}

func (c *DiscordChannel) refreshTyping(ctx context.Context, channelID string) {
	ticker := time.NewTicker(typingRefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.IsRunning() {
				return
			}
			c.sendTyping(channelID)
		}
	}
}

func (c *DiscordChannel) sendTyping(channelID string) {
	if channelID == "" || c.session == nil {
		return
	}
	if err := c.session.ChannelTyping(channelID); err != nil {
		logger.ErrorCF("discord", "Failed to send typing indicator", map[string]any{
			"error": err.Error(),
		})
	}
}

// downloadAttachment fetches an image attachment into the download dir
// so the vision pipeline can read it as a local file.
func (c *DiscordChannel) downloadAttachment(url, filename string) (string, error) {
	if err := os.MkdirAll(c.downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch attachment: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch attachment: status %d", resp.StatusCode)
	}

	ext := filepath.Ext(filename)
	if ext == "" {
		ext = ".png"
	}
	path := filepath.Join(c.downloadDir, fmt.Sprintf("discord_%s%s", uuid.NewString()[:8], ext))

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create attachment file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, io.LimitReader(resp.Body, maxDownloadBytes)); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("save attachment: %w", err)
	}

	return path, nil
}

// appendContent safely appends suffix text to existing content.
func appendContent(content, suffix string) string {
	if content == "" {
		return suffix
	}
	return content + "\n" + suffix
}

func (c *DiscordChannel) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m == nil || m.Author == nil {
		return
	}
	if m.Author.ID == s.State.User.ID {
		return
	}

	// Check the allowlist before downloading any attachments.
	if !c.IsAllowed(m.Author.ID) {
		logger.DebugCF("discord", "Message rejected by allowlist", map[string]any{
			"user_id": m.Author.ID,
		})
		return
	}

	senderID := m.Author.ID
	senderName := m.Author.Username
	if m.Author.Discriminator != "" && m.Author.Discriminator != "0" {
		senderName += "#" + m.Author.Discriminator
	}

	content := m.Content
	var mediaPaths []string

	for _, attachment := range m.Attachments {
		if utils.IsAudioFile(attachment.Filename) {
			content = appendContent(content, fmt.Sprintf("[Sprachnachricht: %s]", attachment.Filename))
			continue
		}
		if !utils.IsImageFile(attachment.Filename) {
			content = appendContent(content, fmt.Sprintf("[Anhang: %s]", attachment.Filename))
			continue
		}
		path, err := c.downloadAttachment(attachment.URL, attachment.Filename)
		if err != nil {
			logger.WarnCF("discord", "Failed to download image attachment", map[string]any{
				"filename": attachment.Filename,
				"error":    err.Error(),
			})
			content = appendContent(content, fmt.Sprintf("[Bild konnte nicht geladen werden: %s]", attachment.Filename))
			continue
		}
		mediaPaths = append(mediaPaths, path)
	}

	if content == "" && len(mediaPaths) == 0 {
		return
	}

	c.beginTyping(m.ChannelID)

	logger.DebugCF("discord", "Received message", map[string]any{
		"sender_name": senderName,
		"sender_id":   senderID,
		"media":       len(mediaPaths),
		"preview":     utils.Truncate(content, 50),
	})

	metadata := map[string]string{
		"message_id":   m.ID,
		"user_id":      senderID,
		"username":     m.Author.Username,
		"display_name": senderName,
		"guild_id":     m.GuildID,
		"channel_id":   m.ChannelID,
		"is_dm":        fmt.Sprintf("%t", m.GuildID == ""),
	}

	c.HandleMessage(senderID, m.ChannelID, content, mediaPaths, metadata)
}
