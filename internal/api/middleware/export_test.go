package middleware

import "context"

// WithKeyPrefix stands in for Authenticate in rate limit tests.
func WithKeyPrefix(ctx context.Context, prefix string) context.Context {
	return WithPrincipal(ctx, Principal{KeyPrefix: prefix})
}
