package providers

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotsetgreg/kumpel/pkg/config"
	"github.com/dotsetgreg/kumpel/pkg/logger"
)

const (
	// DefaultSystemPromptText frames every plain-text question.
	DefaultSystemPromptText = "Du bist ein hilfreicher Assistent für einen IT-/Dispatch-Spezialisten. Antworte kurz, klar und konkret."
	// DefaultSystemPromptVision frames questions that carry a screenshot.
	DefaultSystemPromptVision = "Du bist ein persönlicher Desktop-Assistent. Du siehst einen Screenshot des Nutzers und sollst konkret, kurz und praxisnah helfen."
)

const visionQuestionPreamble = "Hier ist ein Screenshot meines Bildschirms. Nutze ihn zur Beantwortung der Frage. Frage: "

// Completer assembles the full prompt for one assistant turn: system prompt,
// ranked background facts, conversation context, then the user question.
type Completer struct {
	provider LLMProvider
	cfg      *config.Config
}

func NewCompleter(provider LLMProvider, cfg *config.Config) *Completer {
	return &Completer{provider: provider, cfg: cfg}
}

// TextModel resolves the model used for plain-text questions.
func (c *Completer) TextModel() string {
	if m := strings.TrimSpace(c.cfg.Agents.Defaults.TextModel); m != "" {
		return m
	}
	return c.provider.GetDefaultModel()
}

// VisionModel resolves the model used for screenshot questions.
func (c *Completer) VisionModel() string {
	if m := strings.TrimSpace(c.cfg.Agents.Defaults.VisionModel); m != "" {
		return m
	}
	return c.TextModel()
}

func (c *Completer) AskText(ctx context.Context, question string, facts, contextLines []string) (string, error) {
	messages := buildPromptMessages(DefaultSystemPromptText, facts, contextLines)
	messages = append(messages, Message{Role: "user", Content: question})

	model := c.TextModel()
	logger.InfoCF("llm", "Sending text request", map[string]interface{}{
		"model":   model,
		"facts":   len(facts),
		"context": len(contextLines),
	})
	resp, err := c.provider.Chat(ctx, messages, model, c.requestOptions())
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *Completer) AskVision(ctx context.Context, question, imagePath string, facts, contextLines []string) (string, error) {
	dataURL, err := encodeImageFile(imagePath)
	if err != nil {
		return "", err
	}

	messages := buildPromptMessages(DefaultSystemPromptVision, facts, contextLines)
	messages = append(messages, Message{
		Role: "user",
		Content: []ContentPart{
			{Type: "text", Text: visionQuestionPreamble + question},
			{Type: "image_url", ImageURL: &ImageURL{URL: dataURL}},
		},
	})

	model := c.VisionModel()
	logger.InfoCF("llm", "Sending vision request", map[string]interface{}{
		"model": model,
		"image": filepath.Base(imagePath),
	})
	resp, err := c.provider.Chat(ctx, messages, model, c.requestOptions())
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (c *Completer) requestOptions() map[string]interface{} {
	opts := map[string]interface{}{
		"temperature": c.cfg.Agents.Defaults.Temperature,
	}
	if c.cfg.Agents.Defaults.MaxTokens > 0 {
		opts["max_tokens"] = c.cfg.Agents.Defaults.MaxTokens
	}
	return opts
}

func buildPromptMessages(systemPrompt string, facts, contextLines []string) []Message {
	messages := make([]Message, 0, len(contextLines)+3)
	messages = append(messages, Message{Role: "system", Content: systemPrompt})

	if len(facts) > 0 {
		var b strings.Builder
		b.WriteString("Relevantes Hintergrundwissen:")
		for _, fact := range facts {
			b.WriteString("\n- ")
			b.WriteString(fact)
		}
		messages = append(messages, Message{Role: "system", Content: b.String()})
	}

	for _, line := range contextLines {
		messages = append(messages, Message{Role: "system", Content: line})
	}
	return messages
}

func encodeImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", path, err)
	}
	return "data:" + imageMIME(path) + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func imageMIME(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		// Screenshots are captured as PNG.
		return "image/png"
	}
}
