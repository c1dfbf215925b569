package a2a

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerHandleMessageHappyPath(t *testing.T) {
	srv := NewServer(newDispatcher())
	req := httptest.NewRequest(http.MethodPost, "/a2a/message",
		bytes.NewBufferString(`{"command":"initialize","params":{"workspaceId":"ws1"}}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestServerHandleMessageMalformedJSON(t *testing.T) {
	srv := NewServer(newDispatcher())
	req := httptest.NewRequest(http.MethodPost, "/a2a/message", bytes.NewBufferString(`{not json`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Expected JSON format")
}

func TestServerHandleMessageMissingCommand(t *testing.T) {
	srv := NewServer(newDispatcher())
	req := httptest.NewRequest(http.MethodPost, "/a2a/message", bytes.NewBufferString(`{"params":{}}`))
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing command")
}

func TestServerBearerAuthRejectsMissingAndInvalidTokens(t *testing.T) {
	auth := NewBearerAuth("test-secret")
	srv := NewServer(newDispatcher(), WithBearerAuth(auth))

	reqNoAuth := httptest.NewRequest(http.MethodPost, "/a2a/message",
		bytes.NewBufferString(`{"command":"initialize","params":{"workspaceId":"ws1"}}`))
	recNoAuth := httptest.NewRecorder()
	srv.Router().ServeHTTP(recNoAuth, reqNoAuth)
	assert.Equal(t, http.StatusUnauthorized, recNoAuth.Code)

	reqBadToken := httptest.NewRequest(http.MethodPost, "/a2a/message",
		bytes.NewBufferString(`{"command":"initialize","params":{"workspaceId":"ws1"}}`))
	reqBadToken.Header.Set("Authorization", "Bearer not-a-real-token")
	recBadToken := httptest.NewRecorder()
	srv.Router().ServeHTTP(recBadToken, reqBadToken)
	assert.Equal(t, http.StatusUnauthorized, recBadToken.Code)
}

func TestServerBearerAuthAcceptsValidToken(t *testing.T) {
	secret := "test-secret"
	auth := NewBearerAuth(secret)
	srv := NewServer(newDispatcher(), WithBearerAuth(auth))

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "ops"})
	signed, err := tok.SignedString([]byte(secret))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/a2a/message",
		bytes.NewBufferString(`{"command":"initialize","params":{"workspaceId":"ws1"}}`))
	req.Header.Set("Authorization", "Bearer "+signed)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
