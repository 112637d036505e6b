// Package auth implements the Authorizer port with a static admin token.
package auth

import (
	"context"
	"crypto/subtle"

	"github.com/dkindler/talerpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Authorizer = (*StaticAuthorizer)(nil)

type contextKey struct{}

// WithPresentedToken returns a context carrying the admin token presented by
// the caller. The driving adapter attaches it; the authorizer reads it.
func WithPresentedToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, contextKey{}, token)
}

func presentedToken(ctx context.Context) string {
	token, _ := ctx.Value(contextKey{}).(string)
	return token
}

// StaticAuthorizer grants settings management to callers presenting the
// configured admin token. With no token configured, the deployment is
// treated as trusted (loopback-only setups) and every caller is allowed.
type StaticAuthorizer struct {
	adminToken string
}

// NewStaticAuthorizer creates a StaticAuthorizer for the given admin token.
func NewStaticAuthorizer(adminToken string) *StaticAuthorizer {
	return &StaticAuthorizer{adminToken: adminToken}
}

// CanManageSettings reports whether the caller behind ctx presented the
// configured admin token. Constant-time comparison.
func (a *StaticAuthorizer) CanManageSettings(ctx context.Context) bool {
	if a.adminToken == "" {
		return true
	}
	presented := presentedToken(ctx)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(a.adminToken)) == 1
}
