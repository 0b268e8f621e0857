// Package auth resolves the identity of the calling user. Every request
// handler asks the gate for a user id before touching the ledger.
package auth

import (
	"context"
	"net/http"
	"strings"
)

// AccessTokenCookie holds the session token issued at login.
const AccessTokenCookie = "access_token"

// Identity turns an incoming request into a user id. A false result
// means the request carries no usable identity and must not see or
// touch any ledger data.
type Identity interface {
	Resolve(ctx context.Context, r *http.Request) (userID string, ok bool)
}

// requestToken extracts the access token from the session cookie or,
// for API clients, from the Authorization header.
func requestToken(r *http.Request) string {
	if cookie, err := r.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	header := r.Header.Get("Authorization")
	if token, found := strings.CutPrefix(header, "Bearer "); found {
		return strings.TrimSpace(token)
	}
	return ""
}
