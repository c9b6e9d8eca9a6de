package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/gundermanc/gsc/cmd/gscd/result"
)

// jwtIssuer identifies tokens minted by this daemon, mirroring the pack's
// own jwt.WithIssuer("tqs") convention.
const jwtIssuer = "gscd"

// sessionTTL is how long an issued JWT remains valid.
const sessionTTL = time.Hour

// ctxKey is a private context key type, following the AuthKey pattern
// server/token.go uses to avoid collisions with other packages' context
// values.
type ctxKey int

const ctxKeyAuthed ctxKey = iota

// getBearerToken extracts the token from an "Authorization: Bearer <token>"
// header, exactly as server/token.go's getJWT does.
func getBearerToken(req *http.Request) (string, error) {
	authHeader := strings.TrimSpace(req.Header.Get("Authorization"))
	if authHeader == "" {
		return "", fmt.Errorf("no authorization header present")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	scheme := strings.TrimSpace(strings.ToLower(parts[0]))
	token := strings.TrimSpace(parts[1])
	if scheme != "bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}

	return token, nil
}

// apiKeyMatches reports whether rawKey matches any of the daemon's accepted
// bcrypt-hashed API keys. Unlike server/server.go's per-user password check,
// there is no user record to look up here: the daemon's whole key material
// is a static list loaded from config.
func apiKeyMatches(rawKey string, hashes []string) bool {
	for _, hash := range hashes {
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(rawKey)) == nil {
			return true
		}
	}
	return false
}

// issueSessionToken signs a short-lived JWT once the caller has presented a
// valid API key, following the claims shape of server/token.go's
// generateJWT but with no per-user signing key since sessions aren't tied
// to a user record.
func issueSessionToken(secret []byte) (string, error) {
	claims := &jwt.MapClaims{
		"iss": jwtIssuer,
		"sub": "gscd-client",
		"exp": time.Now().Add(sessionTTL).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	return tok.SignedString(secret)
}

// requireSession validates the Bearer JWT on req, returning an error if the
// caller has not presented a current, correctly signed session token.
func requireSession(req *http.Request, secret []byte) error {
	tok, err := getBearerToken(req)
	if err != nil {
		return err
	}

	_, err = jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer(jwtIssuer), jwt.WithLeeway(time.Minute))

	return err
}

// authMiddleware wraps next, rejecting any request lacking a valid session
// JWT with an HTTP-401 before next is ever invoked. Modeled on
// server/token.go's AuthHandler, simplified to a single required mode since
// the daemon has no optional-auth endpoints.
func authMiddleware(secret []byte, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if err := requireSession(req, secret); err != nil {
			result.Unauthorized("", err.Error()).WriteResponse(w)
			return
		}

		ctx := context.WithValue(req.Context(), ctxKeyAuthed, true)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}
