package providers

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

const (
	authModeAPIKey      = "api_key"
	authModeBearerToken = "bearer_token"
)

// TokenSource yields the secret a request is authorized with. Source
// names where the secret came from so errors can point at the right
// config field.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
	Source() string
}

// staticToken serves a credential pasted directly into the config.
type staticToken struct {
	token string
	field string
}

func NewStaticTokenSource(token, field string) TokenSource {
	return &staticToken{token: strings.TrimSpace(token), field: strings.TrimSpace(field)}
}

func (s *staticToken) Token(context.Context) (string, error) {
	if s.token == "" {
		return "", fmt.Errorf("token is empty for %s", s.Source())
	}
	// Catch template values copied verbatim, e.g. <OPENAI_API_KEY> or
	// ${OPENROUTER_API_KEY}.
	if (strings.HasPrefix(s.token, "<") && strings.HasSuffix(s.token, ">")) ||
		(strings.HasPrefix(s.token, "${") && strings.HasSuffix(s.token, "}")) {
		return "", fmt.Errorf("token for %s looks like an unresolved placeholder: %s", s.Source(), s.token)
	}
	return s.token, nil
}

func (s *staticToken) Source() string {
	if s.field == "" {
		return "static"
	}
	return s.field
}

// fileToken reads the credential from disk on every request, so a
// rotated token file works without a restart.
type fileToken struct {
	path string
}

func NewFileTokenSource(path string) TokenSource {
	return &fileToken{path: strings.TrimSpace(path)}
}

func (f *fileToken) Token(context.Context) (string, error) {
	path := expandHome(f.path)
	if path == "" {
		return "", fmt.Errorf("token file path is empty")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read token file %s: %w", path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("token file %s is empty", path)
	}
	return token, nil
}

func (f *fileToken) Source() string {
	if path := expandHome(f.path); path != "" {
		return path
	}
	return "token_file"
}

// AuthStrategy stamps outgoing provider requests with credentials.
type AuthStrategy interface {
	Mode() string
	Apply(ctx context.Context, req *http.Request) error
}

// bearerAuth covers both credential modes. They differ only in how the
// secret is labeled; on the wire both are a bearer Authorization header.
type bearerAuth struct {
	mode   string
	source TokenSource
}

func NewAPIKeyAuth(source TokenSource) AuthStrategy {
	return &bearerAuth{mode: authModeAPIKey, source: source}
}

func NewBearerTokenAuth(source TokenSource) AuthStrategy {
	return &bearerAuth{mode: authModeBearerToken, source: source}
}

func (a *bearerAuth) Mode() string { return a.mode }

func (a *bearerAuth) Apply(ctx context.Context, req *http.Request) error {
	if a.source == nil {
		return fmt.Errorf("auth token source is nil")
	}
	token, err := a.source.Token(ctx)
	if err != nil {
		return fmt.Errorf("resolve auth token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}
