package copilot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/routa-core/routa/internal/coreerr"
)

// tokenExchangeURL is a var rather than a const so tests can point it
// at a local server instead of GitHub's real endpoint.
var tokenExchangeURL = "https://api.github.com/copilot_internal/v2/token"

// refreshMargin triggers a refresh once the cached token has less than
// this much remaining lifetime, to avoid racing expiry mid-request.
const refreshMargin = 5 * time.Minute

// tokenCache holds the short-lived bearer token exchanged from the
// long-lived editor OAuth token, refreshing it on demand. The token is
// held as an oauth2.Token so its Expiry/Valid semantics match the rest
// of the cached-token shape used elsewhere for provider auth.
type tokenCache struct {
	mu         sync.Mutex
	oauthToken string
	httpClient *http.Client

	cached *oauth2.Token
}

func newTokenCache(oauthToken string, httpClient *http.Client) *tokenCache {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &tokenCache{oauthToken: oauthToken, httpClient: httpClient}
}

// Get returns a valid bearer token, exchanging a fresh one if the
// cached copy is missing or within refreshMargin of expiring.
func (c *tokenCache) Get(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Until(c.cached.Expiry) > refreshMargin {
		return c.cached.AccessToken, nil
	}

	tok, err := c.exchange(ctx)
	if err != nil {
		return "", err
	}
	c.cached = tok
	return c.cached.AccessToken, nil
}

func (c *tokenCache) exchange(ctx context.Context) (*oauth2.Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tokenExchangeURL, nil)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "exchange", "building token exchange request failed", err)
	}
	req.Header.Set("Authorization", "token "+c.oauthToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "exchange", "token exchange request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "exchange", "reading token exchange response failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, coreerr.New(coreerr.ProviderUnavailable, "exchange", "token exchange returned status "+resp.Status)
	}

	var payload struct {
		Token     string `json:"token"`
		ExpiresAt int64  `json:"expires_at"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "exchange", "parsing token exchange response failed", err)
	}
	if payload.Token == "" {
		return nil, coreerr.New(coreerr.ProviderUnavailable, "exchange", "token exchange response missing token")
	}
	return &oauth2.Token{
		AccessToken: payload.Token,
		TokenType:   "Bearer",
		Expiry:      time.Unix(payload.ExpiresAt, 0),
	}, nil
}

// modelsURL is a var rather than a const so tests can point it at a
// local server instead of GitHub's real endpoint.
var modelsURL = "https://api.githubcopilot.com/models"

// modelCacheTTL controls how long the model catalog is cached before
// being refetched.
const modelCacheTTL = time.Hour

type modelCapabilities struct {
	Type string `json:"type"` // "chat" | "embeddings" | "completion"
}

type modelPolicy struct {
	State string `json:"state"` // "enabled" | "disabled" | ""
}

type modelInfo struct {
	ID                 string            `json:"id"`
	ModelPickerEnabled bool              `json:"model_picker_enabled"`
	Capabilities       modelCapabilities `json:"capabilities"`
	Policy             modelPolicy       `json:"policy"`
}

// enabled reports whether m should be surfaced to callers: it must not
// be an embeddings model, not disabled by policy, and picker-enabled.
func (m modelInfo) enabled() bool {
	if m.Capabilities.Type == "embeddings" {
		return false
	}
	if m.Policy.State == "disabled" {
		return false
	}
	return m.ModelPickerEnabled
}

type modelsResponse struct {
	Data []modelInfo `json:"data"`
}

// modelCache holds the Copilot model catalog, refreshed at most once
// per modelCacheTTL.
type modelCache struct {
	mu         sync.Mutex
	tokens     *tokenCache
	httpClient *http.Client

	cached   []string
	fetchedAt time.Time
}

func newModelCache(tokens *tokenCache, httpClient *http.Client) *modelCache {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &modelCache{tokens: tokens, httpClient: httpClient}
}

func (c *modelCache) List(ctx context.Context) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && time.Since(c.fetchedAt) < modelCacheTTL {
		return c.cached, nil
	}

	tok, err := c.tokens.Get(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, modelsURL, nil)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "List", "building models request failed", err)
	}
	applyCopilotHeaders(req, tok)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "List", "models request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "List", "reading models response failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, coreerr.New(coreerr.ProviderUnavailable, "List", "models request returned status "+resp.Status)
	}

	var parsed modelsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, coreerr.Wrap(coreerr.ProviderUnavailable, "List", "parsing models response failed", err)
	}

	ids := make([]string, 0, len(parsed.Data))
	for _, m := range parsed.Data {
		if !m.enabled() {
			continue
		}
		ids = append(ids, m.ID)
	}
	c.cached = ids
	c.fetchedAt = time.Now()
	return ids, nil
}

// applyCopilotHeaders sets the headers Copilot's API requires beyond a
// bearer token: an editor identity and the integration that is calling
// on the editor's behalf.
func applyCopilotHeaders(req *http.Request, bearer string) {
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Editor-Version", "Zed/Unknown")
	req.Header.Set("Copilot-Integration-Id", "vscode-chat")
}
