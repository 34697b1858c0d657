package main

import (
	"context"
	"strings"

	"github.com/mark3labs/mcp-go/server"

	"github.com/c3mb0/mindset-mcp/pkg/session"
)

// resolveSessionKey picks the counter key for a call: the caller-supplied
// identifier, then the transport's client session, then the anonymous key.
func resolveSessionKey(ctx context.Context, explicit string) string {
	if k := strings.TrimSpace(explicit); k != "" {
		return k
	}
	if s := server.ClientSessionFromContext(ctx); s != nil {
		if id := s.SessionID(); id != "" {
			return id
		}
	}
	return session.AnonymousKey
}
