package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/supabase-community/supabase-go"

	"finanzas/internal/cache"
)

const (
	tokenCacheSize = 1000
	tokenCacheTTL  = 5 * time.Minute
)

// Session is what a successful sign-in yields: the bearer token to put
// in the cookie and its lifetime.
type Session struct {
	AccessToken string
	ExpiresIn   int
}

// SupabaseGate validates access tokens against Supabase GoTrue. Token
// lookups are cached so a page full of HTMX partials does not hammer
// the auth endpoint.
type SupabaseGate struct {
	client *supabase.Client
	tokens *cache.LRUCache[string]
}

func NewSupabaseGate(url, key string) (*SupabaseGate, error) {
	client, err := supabase.NewClient(url, key, &supabase.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("create supabase client: %w", err)
	}
	return &SupabaseGate{
		client: client,
		tokens: cache.NewLRUCache[string](tokenCacheSize, tokenCacheTTL),
	}, nil
}

// TokenCache exposes the token cache for registration with the cache
// cleanup manager.
func (g *SupabaseGate) TokenCache() *cache.LRUCache[string] {
	return g.tokens
}

func (g *SupabaseGate) Resolve(ctx context.Context, r *http.Request) (string, bool) {
	token := requestToken(r)
	if token == "" {
		return "", false
	}

	if userID, found := g.tokens.Get(token); found {
		return userID, true
	}

	user, err := g.client.Auth.WithToken(token).GetUser()
	if err != nil {
		slog.WarnContext(ctx, "Token validation failed", "error", err)
		return "", false
	}

	userID := user.ID.String()
	g.tokens.Set(token, userID)
	return userID, true
}

// SignIn exchanges credentials for a session token.
func (g *SupabaseGate) SignIn(ctx context.Context, email, password string) (Session, error) {
	resp, err := g.client.Auth.SignInWithEmailPassword(email, password)
	if err != nil {
		slog.WarnContext(ctx, "Sign-in failed", "email", email, "error", err)
		return Session{}, fmt.Errorf("sign in: %w", err)
	}
	return Session{
		AccessToken: resp.AccessToken,
		ExpiresIn:   resp.ExpiresIn,
	}, nil
}

// SignOut drops the cached token so the session dies immediately
// instead of at cache expiry.
func (g *SupabaseGate) SignOut(token string) {
	if token != "" {
		g.tokens.Delete(token)
	}
}
