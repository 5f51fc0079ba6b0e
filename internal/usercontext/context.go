package usercontext

import "context"

// UserContextKey is the request context key for the resolved caller identity.
type UserContextKey struct{}

// TokenContextKey is the request context key for the caller's opaque bearer
// credential, forwarded on every outbound hub call.
type TokenContextKey struct{}

// WithUserID stores the caller's member ID in the context.
func WithUserID(ctx context.Context, userID int64) context.Context {
	return context.WithValue(ctx, UserContextKey{}, userID)
}

// UserIDFromContext returns the caller's member ID from context, if set.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	if ctx == nil {
		return 0, false
	}
	value := ctx.Value(UserContextKey{})
	if value == nil {
		return 0, false
	}
	typed, ok := value.(int64)
	if !ok || typed == 0 {
		return 0, false
	}
	return typed, true
}

// WithToken stores the caller's bearer credential in the context.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, TokenContextKey{}, token)
}

// TokenFromContext returns the caller's bearer credential, if set.
func TokenFromContext(ctx context.Context) (string, bool) {
	if ctx == nil {
		return "", false
	}
	value := ctx.Value(TokenContextKey{})
	if value == nil {
		return "", false
	}
	typed, ok := value.(string)
	if !ok || typed == "" {
		return "", false
	}
	return typed, true
}
