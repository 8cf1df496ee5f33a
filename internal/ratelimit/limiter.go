// Package ratelimit bounds per-identity request rates ahead of the matching engine.
package ratelimit

import (
	"context"
	"strings"
	"time"

	"alumni-match/internal/identity"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed           bool
	Remaining         int
	RetryAfterSeconds int
	Backend           string
}

// Limiter is the admission check shared by the in-process and shared-store backends.
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
	Backend() string
}

// KeyFor derives the admission key for a caller: verified subject id first,
// then network origin, then an anonymous sentinel. Keys carry no secret or
// reversible PII beyond the opaque subject id.
func KeyFor(claims *identity.Claims, forwardedFor, remoteAddr string) string {
	if claims != nil && claims.SubjectID != "" {
		return "user:" + claims.SubjectID
	}
	if forwardedFor != "" {
		// First hop in the chain is the original client.
		if i := strings.IndexByte(forwardedFor, ','); i >= 0 {
			forwardedFor = forwardedFor[:i]
		}
		if ip := strings.TrimSpace(forwardedFor); ip != "" {
			return "ip:" + ip
		}
	}
	if remoteAddr != "" {
		host := remoteAddr
		if i := strings.LastIndexByte(remoteAddr, ':'); i >= 0 {
			host = remoteAddr[:i]
		}
		if host != "" {
			return "ip:" + host
		}
	}
	return "anonymous"
}

// retryAfterSeconds rounds a remaining window up to whole seconds, minimum 1.
func retryAfterSeconds(remaining time.Duration) int {
	if remaining <= 0 {
		return 1
	}
	secs := int((remaining + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
