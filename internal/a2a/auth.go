package a2a

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// BearerAuth validates an HS256-signed bearer token ahead of dispatch.
// It is optional: a Server with no BearerAuth configured skips the
// check entirely, matching the default of exposing the dispatcher on
// a loopback or otherwise trusted listener.
type BearerAuth struct {
	secret []byte
}

// NewBearerAuth builds a BearerAuth validating tokens signed with secret.
func NewBearerAuth(secret string) *BearerAuth {
	return &BearerAuth{secret: []byte(secret)}
}

// Middleware rejects requests lacking a valid bearer token.
func (b *BearerAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeJSON(w, http.StatusUnauthorized, failure("missing bearer token"))
			return
		}
		raw := strings.TrimSpace(header[len("bearer "):])

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrTokenSignatureInvalid
			}
			return b.secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !token.Valid {
			writeJSON(w, http.StatusUnauthorized, failure("invalid bearer token"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
