package audit

import "context"

type requestIDKey struct{}

// WithRequestID stores the request id so events dispatched further down the
// call chain can be correlated with the access log.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
