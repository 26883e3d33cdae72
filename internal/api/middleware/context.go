package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey int

const (
	principalKey contextKey = iota
	requestLogKey
)

// Principal is the authenticated caller behind a request.
type Principal struct {
	KeyID     uuid.UUID
	TenantID  uuid.UUID
	KeyPrefix string
	Scopes    []string
}

// HasScope reports whether the principal was granted scope.
func (p Principal) HasScope(scope string) bool {
	for _, s := range p.Scopes {
		if s == scope {
			return true
		}
	}
	return false
}

// WithPrincipal attaches p to ctx and to the access log line, if any.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	if l := requestLogFrom(ctx); l != nil {
		l.principal = p
	}
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFrom returns the principal set by Authenticate.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// GetTenantID returns the tenant of the authenticated key.
func GetTenantID(r *http.Request) (uuid.UUID, bool) {
	p, ok := PrincipalFrom(r.Context())
	return p.TenantID, ok
}

// requestLog is shared between Logger and the handlers it wraps, so fields
// learned deeper in the chain reach the access log line.
type requestLog struct {
	principal Principal
	attrs     []any
}

func requestLogFrom(ctx context.Context) *requestLog {
	l, _ := ctx.Value(requestLogKey).(*requestLog)
	return l
}

// Annotate adds key/value pairs to the request's access log line. It is a
// no-op outside Logger.
func Annotate(r *http.Request, kv ...any) {
	if l := requestLogFrom(r.Context()); l != nil {
		l.attrs = append(l.attrs, kv...)
	}
}
