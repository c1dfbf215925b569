// Package copilot implements a GitHub Copilot LLM provider that
// exchanges a locally cached Copilot OAuth token for short-lived
// bearer tokens against GitHub's internal Copilot token endpoint, then
// speaks OpenAI-compatible chat completions against the Copilot API.
package copilot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"

	"github.com/routa-core/routa/internal/coreerr"
)

// appsJSONPath returns the platform-specific location of the Copilot
// editor credential store.
func appsJSONPath() string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "github-copilot", "apps.json")
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "github-copilot", "apps.json")
}

// findOAuthToken walks an arbitrarily nested JSON value looking for an
// "oauth_token" key, matching how different Copilot editor builds have
// nested the credential under varying parent objects over time.
func findOAuthToken(v any) string {
	switch t := v.(type) {
	case map[string]any:
		if tok, ok := t["oauth_token"].(string); ok && tok != "" {
			return tok
		}
		for _, child := range t {
			if tok := findOAuthToken(child); tok != "" {
				return tok
			}
		}
	case []any:
		for _, child := range t {
			if tok := findOAuthToken(child); tok != "" {
				return tok
			}
		}
	}
	return ""
}

// loadOAuthToken reads the long-lived Copilot editor OAuth token from
// apps.json.
func loadOAuthToken() (string, error) {
	path := appsJSONPath()
	if path == "" {
		return "", coreerr.New(coreerr.ProviderUnavailable, "loadOAuthToken", "could not determine copilot credential path")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", coreerr.Wrap(coreerr.ProviderUnavailable, "loadOAuthToken", "could not read copilot credentials", err)
	}
	var parsed any
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", coreerr.Wrap(coreerr.ProviderUnavailable, "loadOAuthToken", "could not parse copilot credentials", err)
	}
	tok := findOAuthToken(parsed)
	if tok == "" {
		return "", coreerr.New(coreerr.ProviderUnavailable, "loadOAuthToken", "no oauth_token found in copilot credentials")
	}
	return tok, nil
}
