package correlationid

import "context"

// Header is the HTTP/Kafka header carrying the correlation ID.
const Header = "X-Correlation-ID"

type ctxKey struct{}

// NewContext returns a copy of ctx carrying the given correlation ID.
func NewContext(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, correlationID)
}

// FromContext extracts the correlation ID from ctx, if present.
func FromContext(ctx context.Context) (string, bool) {
	correlationID, ok := ctx.Value(ctxKey{}).(string)
	return correlationID, ok
}
