package driven

import (
	"context"
	"errors"

	"github.com/dkindler/talerpanel/internal/domain/model"
)

// ErrNotMerchantBackend is returned by ConfigCheck when the configured base
// URL responds but does not look like a Taler merchant backend at all, so
// callers can show a more specific message than a generic failure.
var ErrNotMerchantBackend = errors.New("endpoint does not look like a Taler merchant backend")

// MerchantClient defines the driven port for the remote merchant backend.
// Implementations perform a single attempt per call; retry policy belongs to
// the caller.
type MerchantClient interface {
	// ConfigCheck probes the backend with the given credential: config
	// discovery, then instance existence, then authenticated access. The
	// report carries the first failing stage. A transport-level failure is
	// returned as a non-nil error with a zero report.
	ConfigCheck(ctx context.Context, cred model.Credential) (model.CheckReport, error)

	// CreateOrder creates a new order using the given credential and
	// returns the backend-assigned order ID.
	CreateOrder(ctx context.Context, cred model.Credential, order model.OrderRequest) (string, error)

	// GetOrder retrieves the current status of an order. For unpaid orders
	// the status carries the taler pay URI.
	GetOrder(ctx context.Context, cred model.Credential, orderID string) (model.OrderStatus, error)
}
