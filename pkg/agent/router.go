// Kumpel - Personal desktop assistant with a long memory
// License: MIT
//
// Copyright (c) 2026 Kumpel contributors

package agent

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dotsetgreg/kumpel/pkg/bus"
	"github.com/dotsetgreg/kumpel/pkg/config"
	"github.com/dotsetgreg/kumpel/pkg/constants"
	"github.com/dotsetgreg/kumpel/pkg/logger"
	"github.com/dotsetgreg/kumpel/pkg/memory"
	"github.com/dotsetgreg/kumpel/pkg/speech"
	"github.com/dotsetgreg/kumpel/pkg/state"
	"github.com/dotsetgreg/kumpel/pkg/style"
	"github.com/dotsetgreg/kumpel/pkg/utils"
)

const defaultVisionQuestion = "Beschreibe den angehängten Screenshot."

// Completer produces model answers for text and screenshot questions.
type Completer interface {
	AskText(ctx context.Context, question string, facts, contextLines []string) (string, error)
	AskVision(ctx context.Context, question, imagePath string, facts, contextLines []string) (string, error)
	TextModel() string
	VisionModel() string
}

// Styler rewrites raw answers in the personal voice.
type Styler interface {
	Apply(text string) string
	Profile() style.Profile
}

// AssistantRouter orchestrates one request end to end: record the user turn,
// refresh and rank facts, call the model, style the answer, record it, voice
// it. Model failures degrade to a styled error answer so the conversation
// log stays coherent.
type AssistantRouter struct {
	bus       *bus.MessageBus
	cfg       *config.Config
	store     memory.Store
	extractor *memory.KnowledgeExtractor
	ranker    *memory.RelevanceRanker
	cache     *memory.ContextCache
	decoder   *memory.AbbrevDecoder
	styler    Styler
	completer Completer
	speaker   speech.Speaker
	state     *state.Manager
	running   atomic.Bool
}

func NewRouter(cfg *config.Config, msgBus *bus.MessageBus, store memory.Store, completer Completer, styler Styler, speaker speech.Speaker) (*AssistantRouter, error) {
	workspace := cfg.WorkspacePath()
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}

	r := &AssistantRouter{
		bus:       msgBus,
		cfg:       cfg,
		store:     store,
		extractor: memory.NewKnowledgeExtractor(store, store),
		ranker:    memory.NewRelevanceRanker(store, cfg.Memory.RankLimit, cfg.Memory.MinImportance),
		cache:     memory.NewContextCache(store, cfg.Memory.ContextWindow),
		decoder:   memory.NewAbbrevDecoder(store),
		styler:    styler,
		completer: completer,
		speaker:   speaker,
		state:     state.NewManager(workspace),
	}

	// Warm start: load the recent conversation and make sure the seed facts
	// exist before the first question arrives. Neither step is fatal.
	warmCtx := context.Background()
	if lines, err := r.cache.Reload(warmCtx); err != nil {
		logger.WarnCF("agent", "Failed to load conversation context", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.InfoCF("agent", "Conversation context loaded", map[string]interface{}{
			"entries": len(lines),
		})
	}
	if added, err := r.extractor.Refresh(warmCtx); err != nil {
		logger.WarnCF("agent", "Initial fact refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
	} else if len(added) > 0 {
		logger.InfoCF("agent", "Facts refreshed", map[string]interface{}{
			"added": len(added),
		})
	}

	return r, nil
}

func (r *AssistantRouter) Run(ctx context.Context) error {
	r.running.Store(true)

	for r.running.Load() {
		// Blocks until a message arrives, the context ends or the bus closes.
		msg, ok := r.bus.ConsumeInbound(ctx)
		if !ok {
			return nil
		}

		response, err := r.processMessage(ctx, msg)
		if err != nil {
			response = fmt.Sprintf("Fehler bei der Verarbeitung: %v", err)
		}

		if response != "" {
			r.bus.PublishOutbound(bus.OutboundMessage{
				Channel: msg.Channel,
				ChatID:  msg.ChatID,
				Content: response,
			})
		}
	}

	return nil
}

func (r *AssistantRouter) Stop() {
	r.running.Store(false)
	if r.store != nil {
		_ = r.store.Close()
	}
}

func (r *AssistantRouter) ProcessDirect(ctx context.Context, content, sessionKey string) (string, error) {
	return r.ProcessDirectWithChannel(ctx, content, sessionKey, constants.ChannelCLI, "direct")
}

func (r *AssistantRouter) ProcessDirectWithChannel(ctx context.Context, content, sessionKey, channel, chatID string) (string, error) {
	msg := bus.InboundMessage{
		Channel:    channel,
		SenderID:   "local-user",
		ChatID:     chatID,
		Content:    content,
		SessionKey: sessionKey,
	}

	return r.processMessage(ctx, msg)
}

// ProcessVisionDirect answers a question about a local screenshot, outside
// of any channel.
func (r *AssistantRouter) ProcessVisionDirect(ctx context.Context, question, imagePath string) (string, error) {
	msg := bus.InboundMessage{
		Channel:    constants.ChannelCLI,
		SenderID:   "local-user",
		ChatID:     "direct",
		Content:    question,
		Media:      []string{imagePath},
		SessionKey: "cli:direct",
	}

	return r.processMessage(ctx, msg)
}

func (r *AssistantRouter) processMessage(ctx context.Context, msg bus.InboundMessage) (string, error) {
	content := strings.TrimSpace(msg.Content)
	if content == "" && len(msg.Media) == 0 {
		return "", nil
	}

	logger.InfoCF("agent", fmt.Sprintf("Processing message from %s:%s: %s", msg.Channel, msg.SenderID, utils.Truncate(content, 80)),
		map[string]interface{}{
			"channel":     msg.Channel,
			"chat_id":     msg.ChatID,
			"sender_id":   msg.SenderID,
			"session_key": msg.SessionKey,
		})

	if response, handled := r.handleCommand(ctx, msg); handled {
		return response, nil
	}

	// Remember where the user last talked to us so background reports can
	// reach them later.
	if !constants.IsInternalChannel(msg.Channel) && msg.ChatID != "" {
		if err := r.state.SetLastChannel(msg.Channel); err != nil {
			logger.WarnCF("agent", "Failed to record last channel", map[string]interface{}{"error": err.Error()})
		}
		if err := r.state.SetLastChatID(msg.ChatID); err != nil {
			logger.WarnCF("agent", "Failed to record last chat", map[string]interface{}{"error": err.Error()})
		}
	}

	if image := firstImagePath(msg.Media); image != "" {
		question := content
		if question == "" {
			question = defaultVisionQuestion
		}
		return r.HandleVision(ctx, question, image)
	}

	return r.HandleText(ctx, content)
}

// HandleText runs one text request end to end and returns the styled answer.
func (r *AssistantRouter) HandleText(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("question is empty")
	}
	return r.answer(ctx, question, "")
}

// HandleVision runs one screenshot request end to end and returns the styled
// answer.
func (r *AssistantRouter) HandleVision(ctx context.Context, question, imagePath string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		question = defaultVisionQuestion
	}
	if strings.TrimSpace(imagePath) == "" {
		return "", fmt.Errorf("image path is empty")
	}
	return r.answer(ctx, question, imagePath)
}

func (r *AssistantRouter) answer(ctx context.Context, question, imagePath string) (string, error) {
	vision := imagePath != ""
	meta := ""
	if vision {
		meta = memory.MetaVision
	}

	// 1. Record the user turn. Persistence failures degrade the memory but
	// never abort the request.
	if err := r.store.AddInteraction(ctx, memory.RoleUser, question, meta); err != nil {
		logger.WarnCF("agent", "Failed to record user turn", map[string]interface{}{"error": err.Error()})
	}

	// 2. Snapshot the conversation context. The fresh snapshot includes the
	// question recorded above; concurrent requests each hold their own slice.
	contextLines, err := r.cache.Reload(ctx)
	if err != nil {
		logger.WarnCF("agent", "Failed to reload context", map[string]interface{}{"error": err.Error()})
		contextLines = r.cache.Lines()
	}

	// 3. Refresh derived facts, rank them against the question, then expand
	// any dispatch shorthand the question mentions.
	if _, err := r.extractor.Refresh(ctx); err != nil {
		logger.WarnCF("agent", "Fact refresh failed", map[string]interface{}{"error": err.Error()})
	}
	facts, err := r.ranker.Top(ctx, question, 0)
	if err != nil {
		logger.WarnCF("agent", "Fact ranking failed", map[string]interface{}{"error": err.Error()})
		facts = nil
	}
	abbrevs, err := r.decoder.Decode(ctx, question)
	if err != nil {
		logger.WarnCF("agent", "Abbreviation lookup failed", map[string]interface{}{"error": err.Error()})
	}
	for _, ab := range abbrevs {
		facts = append(facts, fmt.Sprintf("%s: %s", ab.Code, ab.Meaning))
	}

	// 4. Ask the model. This is the only blocking step, so it carries the
	// configured answer timeout.
	callCtx := ctx
	if timeout := r.answerTimeout(); timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var raw string
	var askErr error
	if vision {
		raw, askErr = r.completer.AskVision(callCtx, question, imagePath, facts, contextLines)
	} else {
		raw, askErr = r.completer.AskText(callCtx, question, facts, contextLines)
	}
	if askErr != nil {
		logger.ErrorCF("agent", "Model call failed", map[string]interface{}{
			"error":  askErr.Error(),
			"vision": vision,
		})
		if vision {
			raw = fmt.Sprintf("Fehler bei der Analyse: %v", askErr)
		} else {
			raw = fmt.Sprintf("Fehler bei der Anfrage: %v", askErr)
		}
	}

	// 5. Style the answer, persist the assistant turn exactly as styled so
	// the log rereads like the conversation the user saw, reload context.
	styled := r.styler.Apply(raw)
	if err := r.store.AddInteraction(ctx, memory.RoleAssistant, styled, meta); err != nil {
		logger.WarnCF("agent", "Failed to record assistant turn", map[string]interface{}{"error": err.Error()})
	}
	if _, err := r.cache.Reload(ctx); err != nil {
		logger.WarnCF("agent", "Failed to reload context", map[string]interface{}{"error": err.Error()})
	}

	logger.InfoCF("agent", "Answer delivered", map[string]interface{}{
		"vision":  vision,
		"length":  len(styled),
		"preview": utils.Truncate(styled, 80),
	})

	// 6. Voice the answer, fire and forget.
	r.speaker.Speak(styled)

	return styled, nil
}

func (r *AssistantRouter) answerTimeout() time.Duration {
	return time.Duration(r.cfg.Agents.Defaults.AnswerTimeout) * time.Second
}

func (r *AssistantRouter) handleCommand(ctx context.Context, msg bus.InboundMessage) (string, bool) {
	content := strings.TrimSpace(msg.Content)
	if !strings.HasPrefix(content, "/") {
		return "", false
	}

	parts := strings.Fields(content)
	if len(parts) == 0 {
		return "", false
	}

	cmd := parts[0]
	args := parts[1:]

	switch cmd {
	case "/show":
		if len(args) < 1 {
			return "Verwendung: /show [model|style|context|channel]", true
		}
		switch args[0] {
		case "model":
			return fmt.Sprintf("Text-Modell: %s\nVision-Modell: %s", r.completer.TextModel(), r.completer.VisionModel()), true
		case "style":
			profile := r.styler.Profile()
			return fmt.Sprintf("Begrüßung: %s\nAbschluss: %s\nBeispiele: %d",
				profile.Greeting, strings.ReplaceAll(profile.Closing, "\n", " / "), len(profile.Examples)), true
		case "context":
			lines := r.cache.Lines()
			if len(lines) == 0 {
				return "Kein Kontext vorhanden.", true
			}
			return strings.Join(lines, "\n"), true
		case "channel":
			return fmt.Sprintf("Aktueller Kanal: %s", msg.Channel), true
		default:
			return fmt.Sprintf("Unbekanntes Ziel: %s", args[0]), true
		}

	case "/facts":
		query := strings.TrimSpace(strings.Join(args, " "))
		if query == "" {
			facts, err := r.store.Facts(ctx, 0)
			if err != nil {
				return fmt.Sprintf("Fakten konnten nicht geladen werden: %v", err), true
			}
			if len(facts) == 0 {
				return "Keine Fakten gespeichert.", true
			}
			lines := make([]string, 0, len(facts)+1)
			lines = append(lines, fmt.Sprintf("Gespeicherte Fakten (%d):", len(facts)))
			for _, f := range facts {
				lines = append(lines, fmt.Sprintf("- [%d] %s", f.Importance, f.Text))
			}
			return strings.Join(lines, "\n"), true
		}
		ranked, err := r.ranker.Top(ctx, query, 0)
		if err != nil {
			return fmt.Sprintf("Fakten konnten nicht bewertet werden: %v", err), true
		}
		if len(ranked) == 0 {
			return "Keine passenden Fakten gefunden.", true
		}
		return "- " + strings.Join(ranked, "\n- "), true

	case "/switch":
		if len(args) < 3 || args[1] != "to" {
			return "Verwendung: /switch model to <name>", true
		}
		switch args[0] {
		case "model":
			old := r.cfg.Agents.Defaults.TextModel
			r.cfg.Agents.Defaults.TextModel = args[2]
			return fmt.Sprintf("Modell gewechselt von %s zu %s", old, args[2]), true
		default:
			return fmt.Sprintf("Unbekanntes Ziel: %s", args[0]), true
		}
	}

	return "", false
}

func firstImagePath(media []string) string {
	for _, path := range media {
		if utils.IsImageFile(path) {
			return path
		}
	}
	return ""
}
