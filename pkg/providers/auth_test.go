package providers

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStaticTokenSource(t *testing.T) {
	cases := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{name: "plain token", token: "sk-live-123", want: "sk-live-123"},
		{name: "surrounding whitespace trimmed", token: "  sk-live-123  ", want: "sk-live-123"},
		{name: "empty token", token: "", wantErr: true},
		{name: "angle bracket placeholder", token: "<OPENAI_API_KEY>", wantErr: true},
		{name: "env reference placeholder", token: "${OPENROUTER_API_KEY}", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := NewStaticTokenSource(tc.token, "providers.openai.api_key")
			got, err := src.Token(context.Background())
			if tc.wantErr {
				if err == nil {
					t.Fatalf("Token(%q) succeeded, want error", tc.token)
				}
				return
			}
			if err != nil {
				t.Fatalf("token: %v", err)
			}
			if got != tc.want {
				t.Fatalf("token = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestFileTokenSource_ReadsAndTrims(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "token.txt")
	if err := os.WriteFile(tokenFile, []byte("oauth-token-123\n"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	src := NewFileTokenSource(tokenFile)
	got, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	if got != "oauth-token-123" {
		t.Fatalf("token = %q", got)
	}
}

func TestFileTokenSource_MissingFile(t *testing.T) {
	src := NewFileTokenSource(filepath.Join(t.TempDir(), "missing.txt"))
	if _, err := src.Token(context.Background()); err == nil {
		t.Fatal("expected error for missing token file")
	}
}

func TestFileTokenSource_EmptyFile(t *testing.T) {
	tokenFile := filepath.Join(t.TempDir(), "empty.txt")
	if err := os.WriteFile(tokenFile, []byte("   \n"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}

	src := NewFileTokenSource(tokenFile)
	_, err := src.Token(context.Background())
	if err == nil || !strings.Contains(err.Error(), "empty") {
		t.Fatalf("expected empty-file error, got %v", err)
	}
}

func TestBearerAuth_SetsAuthorizationHeader(t *testing.T) {
	req, err := http.NewRequest(http.MethodPost, "http://localhost/chat/completions", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	auth := NewAPIKeyAuth(NewStaticTokenSource("sk-abc", "providers.openrouter.api_key"))
	if auth.Mode() != authModeAPIKey {
		t.Fatalf("mode = %q", auth.Mode())
	}
	if err := auth.Apply(context.Background(), req); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := req.Header.Get("Authorization"); got != "Bearer sk-abc" {
		t.Fatalf("authorization = %q", got)
	}

	oauth := NewBearerTokenAuth(NewStaticTokenSource("tok", "providers.openai.oauth_access_token"))
	if oauth.Mode() != authModeBearerToken {
		t.Fatalf("oauth mode = %q", oauth.Mode())
	}
}
