// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware and the CLI set these values; the scoring service reads them.
// Keeping this package free of net/http lets services import only what they
// need.
//
//	requestID := requestcontext.RequestID(ctx)
//	now := requestcontext.Now(ctx)
//	ctx = requestcontext.WithTime(ctx, fixedTime) // tests
package requestcontext

import (
	"context"
	"time"

	id "i9score/pkg/domain"
)

type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	runIDKey       struct{}
)

// Exported context keys for direct use in tests that need context.WithValue.
var (
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyRunID       = runIDKey{}
)

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RunID retrieves the batch run ID. Returns the nil ID outside a batch.
func RunID(ctx context.Context) id.RunID {
	if runID, ok := ctx.Value(ContextKeyRunID).(id.RunID); ok {
		return runID
	}
	return id.RunID{}
}

// WithRunID injects a batch run ID into the context.
func WithRunID(ctx context.Context, runID id.RunID) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// -----------------------------------------------------------------------------
// Request time
// -----------------------------------------------------------------------------

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() if not set.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context, so every report of a
// batch carries the same evaluation time.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}
