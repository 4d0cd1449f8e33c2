package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultHTTPTimeout = 300 * time.Second

// chatClient talks to an OpenAI-compatible chat completions endpoint.
// Both backends share this transport and differ only in base URL,
// default model, auth and extra headers.
type chatClient struct {
	name     string
	endpoint string
	model    string
	auth     AuthStrategy
	http     *http.Client
	headers  map[string]string
}

func newChatClient(name, apiBase, defaultModel, proxy string, auth AuthStrategy, extraHeaders map[string]string) (*chatClient, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return nil, fmt.Errorf("provider name is required")
	}
	apiBase = strings.TrimRight(strings.TrimSpace(apiBase), "/")
	if apiBase == "" {
		return nil, fmt.Errorf("%s API base not configured", name)
	}
	if auth == nil {
		return nil, fmt.Errorf("%s auth is not configured", name)
	}

	httpClient := &http.Client{Timeout: defaultHTTPTimeout}
	if proxy = strings.TrimSpace(proxy); proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("parse %s proxy: %w", name, err)
		}
		httpClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}

	c := &chatClient{
		name:     name,
		endpoint: apiBase + "/chat/completions",
		model:    strings.TrimSpace(defaultModel),
		auth:     auth,
		http:     httpClient,
		headers:  map[string]string{},
	}
	for k, v := range extraHeaders {
		if k, v = strings.TrimSpace(k), strings.TrimSpace(v); k != "" && v != "" {
			c.headers[k] = v
		}
	}
	return c, nil
}

func (c *chatClient) Chat(ctx context.Context, messages []Message, model string, options map[string]interface{}) (*LLMResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("provider not initialized")
	}

	payload, err := json.Marshal(c.buildBody(messages, model, options))
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", c.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", c.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if err := c.auth.Apply(ctx, req); err != nil {
		return nil, fmt.Errorf("apply %s auth: %w", c.name, err)
	}
	for name, value := range c.headers {
		req.Header.Set(name, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send %s request: %w", c.name, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", c.name, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		msg := augmentProviderError(c.name, apiErrorMessage(body))
		return nil, fmt.Errorf("%s API request failed: status=%d error=%s", c.name, resp.StatusCode, msg)
	}

	result, err := decodeChatResponse(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s response: %w", c.name, err)
	}
	return result, nil
}

func (c *chatClient) GetDefaultModel() string {
	if c == nil {
		return ""
	}
	return c.model
}

// buildBody assembles the request map. Options arrive untyped from the
// caller, so the two knobs the API knows are coerced per kind here.
func (c *chatClient) buildBody(messages []Message, model string, options map[string]interface{}) map[string]interface{} {
	if model = strings.TrimSpace(model); model == "" {
		model = c.model
	}
	body := map[string]interface{}{
		"model":    model,
		"messages": messages,
	}

	switch v := options["max_tokens"].(type) {
	case int:
		body["max_tokens"] = v
	case int32:
		body["max_tokens"] = int(v)
	case int64:
		body["max_tokens"] = int(v)
	case float32:
		body["max_tokens"] = int(v)
	case float64:
		body["max_tokens"] = int(v)
	}

	switch v := options["temperature"].(type) {
	case float64:
		body["temperature"] = v
	case float32:
		body["temperature"] = float64(v)
	case int:
		body["temperature"] = float64(v)
	case int64:
		body["temperature"] = float64(v)
	}

	return body
}

func decodeChatResponse(body []byte) (*LLMResponse, error) {
	var decoded struct {
		Choices []struct {
			Message struct {
				Content interface{} `json:"content"`
			} `json:"message"`
			FinishReason string `json:"finish_reason"`
		} `json:"choices"`
		Usage *UsageInfo `json:"usage"`
	}
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}

	if len(decoded.Choices) == 0 {
		return &LLMResponse{Content: "", FinishReason: "stop"}, nil
	}

	choice := decoded.Choices[0]
	return &LLMResponse{
		Content:      textOfContent(choice.Message.Content),
		FinishReason: choice.FinishReason,
		Usage:        decoded.Usage,
	}, nil
}

// textOfContent handles both content encodings the API uses: a plain
// string, or a list of typed parts carrying "text" or "content" fields.
func textOfContent(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case []interface{}:
		var b strings.Builder
		for _, item := range v {
			part, ok := item.(map[string]interface{})
			if !ok {
				continue
			}
			if text, ok := part["text"].(string); ok {
				b.WriteString(text)
			} else if text, ok := part["content"].(string); ok {
				b.WriteString(text)
			}
		}
		return b.String()
	default:
		return ""
	}
}

// apiErrorMessage digs the human-readable message out of an error body,
// falling back to the raw body capped at 2000 bytes.
func apiErrorMessage(body []byte) string {
	trimmed := strings.TrimSpace(string(body))
	if trimmed == "" {
		return "empty response body"
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if msg := strings.TrimSpace(payload.Error.Message); msg != "" {
			return msg
		}
		if msg := strings.TrimSpace(payload.Message); msg != "" {
			return msg
		}
	}

	if len(trimmed) > 2000 {
		return trimmed[:2000] + "..."
	}
	return trimmed
}
