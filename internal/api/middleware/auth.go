package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/matchqueue/internal/api/apierr"
	"github.com/mcoot/matchqueue/internal/model"
)

type contextKey string

const (
	tokenContextKey    contextKey = "token"
	usernameContextKey contextKey = "username"
)

// TokenResolver maps a session token to its owner
type TokenResolver interface {
	ResolveSession(token string) (model.Username, bool)
}

// Auth creates authentication middleware. Requests without a live session
// token are rejected before reaching the handler.
func Auth(sessions TokenResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			username, ok := sessions.ResolveSession(token)
			if !ok {
				apierr.WriteError(w, model.ErrUnauthorized)
				return
			}

			ctx := r.Context()
			ctx = context.WithValue(ctx, tokenContextKey, token)
			ctx = context.WithValue(ctx, usernameContextKey, username)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractToken extracts the bearer token from the request
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// GetToken returns the session token from the request context
func GetToken(ctx context.Context) string {
	token, _ := ctx.Value(tokenContextKey).(string)
	return token
}

// GetUsername returns the authenticated username from the request context
func GetUsername(ctx context.Context) model.Username {
	username, _ := ctx.Value(usernameContextKey).(model.Username)
	return username
}

// MustGetToken returns the session token or panics
func MustGetToken(ctx context.Context) string {
	token := GetToken(ctx)
	if token == "" {
		panic("no session token in context - auth middleware not applied?")
	}
	return token
}
