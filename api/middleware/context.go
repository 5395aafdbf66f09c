package middleware

import (
	"context"

	"github.com/caec/caec-backend/pkg/auth/session"
)

type contextKey string

const (
	ctxPrincipal contextKey = "principal"
	ctxRequestID contextKey = "request_id"
)

// PrincipalFromContext returns the logged-in user set by RequireSession.
func PrincipalFromContext(ctx context.Context) (session.Principal, bool) {
	if ctx == nil {
		return session.Principal{}, false
	}
	p, ok := ctx.Value(ctxPrincipal).(session.Principal)
	return p, ok && p.UserID > 0
}

// UserIDFromContext returns 0 when no session is attached.
func UserIDFromContext(ctx context.Context) int64 {
	p, _ := PrincipalFromContext(ctx)
	return p.UserID
}

func WithPrincipal(ctx context.Context, p session.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxRequestID).(string); ok {
		return v
	}
	return ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxRequestID, id)
}
