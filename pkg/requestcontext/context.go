// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware sets these values; services read them. Keeping the package free
// of net/http lets services and tests use the accessors without pulling in
// transport code.
//
// Usage in services (read values):
//
//	actor := requestcontext.Actor(ctx)
//	requestID := requestcontext.RequestID(ctx)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithHeight(ctx, 15)
//	ctx = requestcontext.WithActor(ctx, account)
package requestcontext

import (
	"context"

	"dropforge/pkg/domain"
)

type (
	actorKey     struct{}
	requestIDKey struct{}
	heightKey    struct{}
	clientIPKey  struct{}
	userAgentKey struct{}
)

// Actor retrieves the authenticated actor account from the context. Returns
// the zero account if not set.
func Actor(ctx context.Context) domain.Account {
	if a, ok := ctx.Value(actorKey{}).(domain.Account); ok {
		return a
	}
	return domain.ZeroAccount
}

// WithActor injects an actor account into the context.
func WithActor(ctx context.Context, account domain.Account) context.Context {
	return context.WithValue(ctx, actorKey{}, account)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Height retrieves a request-scoped height override. Services fall back to
// the live height source when no override is present; tests inject a fixed
// height here so admissibility checks are deterministic.
func Height(ctx context.Context) (uint64, bool) {
	h, ok := ctx.Value(heightKey{}).(uint64)
	return h, ok
}

// WithHeight injects a fixed height into a context.
func WithHeight(ctx context.Context, height uint64) context.Context {
	return context.WithValue(ctx, heightKey{}, height)
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the parsed User-Agent summary from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context. Useful
// for tests that don't run the full middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}
