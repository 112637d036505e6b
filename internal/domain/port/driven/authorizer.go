package driven

import "context"

// Authorizer defines the driven port for capability checks on settings
// changes. The save pipeline consults it before touching anything.
type Authorizer interface {
	// CanManageSettings reports whether the caller behind ctx may change
	// merchant backend settings.
	CanManageSettings(ctx context.Context) bool
}
