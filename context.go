package ghup

import "context"

// serviceContextKey is a private type for context keys to avoid collisions
type serviceContextKey string

const servicesKey serviceContextKey = "ghup.services"

// WithServices adds Services to the context
func WithServices(ctx context.Context, s *Services) context.Context {
	return context.WithValue(ctx, servicesKey, s)
}

// ServicesFrom extracts Services from context
func ServicesFrom(ctx context.Context) *Services {
	if s, ok := ctx.Value(servicesKey).(*Services); ok {
		return s
	}
	return nil
}

// MustServices extracts Services or panics
func MustServices(ctx context.Context) *Services {
	s := ServicesFrom(ctx)
	if s == nil {
		panic("ghup: Services not found in context")
	}
	return s
}
