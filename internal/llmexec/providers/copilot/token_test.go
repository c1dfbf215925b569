package copilot

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

// TestTokenCacheRefreshesWithinMargin covers scenario 6: a cached
// token within refreshMargin of expiry triggers a new exchange, while
// one well outside the margin is reused without exchanging.
func TestTokenCacheRefreshesWithinMargin(t *testing.T) {
	var exchanges atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprintf(w, `{"token":"fresh-token","expires_at":%d}`, time.Now().Add(20*time.Minute).Unix())
	}))
	defer srv.Close()

	orig := tokenExchangeURL
	tokenExchangeURL = srv.URL
	t.Cleanup(func() { tokenExchangeURL = orig })

	cache := newTokenCache("editor-oauth-token", srv.Client())

	cache.cached = &oauth2.Token{AccessToken: "stale-token", Expiry: time.Now().Add(4 * time.Minute)}
	tok, err := cache.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fresh-token", tok, "4-minute remaining lifetime is within refreshMargin, so a new token must be exchanged")
	require.Equal(t, int32(1), exchanges.Load())

	cache.cached = &oauth2.Token{AccessToken: "still-good-token", Expiry: time.Now().Add(10 * time.Minute)}
	tok, err = cache.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, "still-good-token", tok, "10-minute remaining lifetime exceeds refreshMargin, so the cached token must be reused")
	require.Equal(t, int32(1), exchanges.Load(), "no new exchange should occur when the cached token is still fresh")
}
