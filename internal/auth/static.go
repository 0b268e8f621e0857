package auth

import (
	"context"
	"net/http"
)

// StaticGate grants every request the same fixed user id. Meant for
// single-user deployments and local development where running a
// Supabase instance is not worth it.
type StaticGate struct {
	userID string
}

func NewStaticGate(userID string) *StaticGate {
	return &StaticGate{userID: userID}
}

func (g *StaticGate) Resolve(_ context.Context, _ *http.Request) (string, bool) {
	return g.userID, g.userID != ""
}
