package logging

import (
	"context"

	"go.uber.org/zap"
)

type scopeKey struct{}

// scope is the per-request logging state carried in a context.
type scope struct {
	logger    *zap.Logger
	requestID string
	userID    int64
	role      string
}

func scopeFrom(ctx context.Context) (scope, bool) {
	if ctx == nil {
		return scope{}, false
	}
	sc, ok := ctx.Value(scopeKey{}).(scope)
	return sc, ok && sc.logger != nil
}

// WithRequest opens a request scope. The stored logger is base tagged with
// request_id.
func WithRequest(ctx context.Context, base *zap.Logger, requestID string) context.Context {
	if base == nil {
		base = zap.L()
	}
	return context.WithValue(ctx, scopeKey{}, scope{
		logger:    base.With(zap.String("request_id", requestID)),
		requestID: requestID,
	})
}

// WithTrace tags the scoped logger with trace and span ids. Empty ids are
// logged as "unknown". Without a scope ctx is returned unchanged.
func WithTrace(ctx context.Context, traceID, spanID string) context.Context {
	sc, ok := scopeFrom(ctx)
	if !ok {
		return ctx
	}
	if traceID == "" {
		traceID = "unknown"
	}
	if spanID == "" {
		spanID = "unknown"
	}
	sc.logger = sc.logger.With(zap.String("trace_id", traceID), zap.String("span_id", spanID))
	return context.WithValue(ctx, scopeKey{}, sc)
}

// WithUser records the authenticated user on the scope.
func WithUser(ctx context.Context, userID int64, role string) context.Context {
	sc, ok := scopeFrom(ctx)
	if !ok {
		sc = scope{logger: zap.L()}
	}
	sc.userID = userID
	sc.role = role
	sc.logger = sc.logger.With(zap.Int64("user_id", userID), zap.String("role", role))
	return context.WithValue(ctx, scopeKey{}, sc)
}

// RequestID returns the id given to WithRequest, or "".
func RequestID(ctx context.Context) string {
	sc, _ := scopeFrom(ctx)
	return sc.requestID
}

// User returns the user recorded by WithUser.
func User(ctx context.Context) (userID int64, role string, ok bool) {
	sc, found := scopeFrom(ctx)
	if !found || sc.userID == 0 {
		return 0, "", false
	}
	return sc.userID, sc.role, true
}

// Scoped returns the request logger if ctx carries one.
func Scoped(ctx context.Context) (*zap.Logger, bool) {
	sc, ok := scopeFrom(ctx)
	return sc.logger, ok
}

// FromContext returns the request logger, falling back to zap.L().
func FromContext(ctx context.Context) *zap.Logger {
	if lg, ok := Scoped(ctx); ok {
		return lg
	}
	return zap.L()
}
