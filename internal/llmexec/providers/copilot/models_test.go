package copilot

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestModelCacheFiltersDisabledAndEmbeddingModels covers the Copilot
// /models response shape: embedding models and models disabled by
// policy or the model picker must never be surfaced.
func TestModelCacheFiltersDisabledAndEmbeddingModels(t *testing.T) {
	tokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"token":"api-token","expires_at":9999999999}`))
	}))
	defer tokenSrv.Close()

	modelsSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"data": [
				{"id": "gpt-4o", "model_picker_enabled": true, "capabilities": {"type": "chat"}, "policy": {"state": "enabled"}},
				{"id": "text-embedding-3-small", "model_picker_enabled": true, "capabilities": {"type": "embeddings"}},
				{"id": "o1-preview", "model_picker_enabled": false, "capabilities": {"type": "chat"}},
				{"id": "claude-3.5-sonnet", "model_picker_enabled": true, "capabilities": {"type": "chat"}, "policy": {"state": "disabled"}}
			]
		}`))
	}))
	defer modelsSrv.Close()

	origToken, origModels := tokenExchangeURL, modelsURL
	tokenExchangeURL = tokenSrv.URL
	modelsURL = modelsSrv.URL
	t.Cleanup(func() {
		tokenExchangeURL = origToken
		modelsURL = origModels
	})

	tokens := newTokenCache("editor-oauth-token", modelsSrv.Client())
	cache := newModelCache(tokens, modelsSrv.Client())

	ids, err := cache.List(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{"gpt-4o"}, ids, "only the enabled, chat-capable, picker-enabled model should be returned")
}
