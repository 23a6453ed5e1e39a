package auth

import (
	"context"

	"github.com/okian/prospect/internal/domain/model"
)

type ctxKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p model.Principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

// PrincipalFrom returns the principal stored in ctx, or the anonymous one.
func PrincipalFrom(ctx context.Context) model.Principal {
	if p, ok := ctx.Value(ctxKey{}).(model.Principal); ok {
		return p
	}
	return model.Principal{}
}
