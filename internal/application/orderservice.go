package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/dkindler/talerpanel/internal/domain/port/driven"

	"github.com/dkindler/talerpanel/internal/domain/model"
)

// ErrBackendNotConfigured is returned by order operations before a base URL
// has been saved.
var ErrBackendNotConfigured = errors.New("merchant backend base URL is not configured")

// ErrNoPayURI is returned when the backend created the order but its unpaid
// status carried no pay URI.
var ErrNoPayURI = errors.New("order created but no pay URI available")

const fulfillmentMessage = "Thank you for your purchase. Your order will be fulfilled after payment."

// OrderService creates orders on the merchant backend using the runtime
// credential. The credential is resolved from the current settings on every
// call so credential changes take effect immediately without restart.
type OrderService struct {
	store    driven.SettingsStore
	client   driven.MerchantClient
	resolver *Resolver
	logger   *slog.Logger
}

// NewOrderService creates an OrderService with the required dependencies.
func NewOrderService(
	store driven.SettingsStore,
	client driven.MerchantClient,
	resolver *Resolver,
	logger *slog.Logger,
) *OrderService {
	return &OrderService{store: store, client: client, resolver: resolver, logger: logger}
}

// CreatePayURI creates a new order for the given amount and summary and
// returns its taler:// pay URI from the unpaid order status.
func (s *OrderService) CreatePayURI(ctx context.Context, amount, summary string) (string, error) {
	settings, err := s.store.Load(ctx)
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}

	cred := s.resolver.RuntimeCredential(settings)
	if cred.BaseURL == "" {
		return "", ErrBackendNotConfigured
	}

	order := model.OrderRequest{
		OrderID:            uuid.NewString(),
		Amount:             amount,
		Summary:            summary,
		FulfillmentMessage: fulfillmentMessage,
	}

	orderID, err := s.client.CreateOrder(ctx, cred, order)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}

	status, err := s.client.GetOrder(ctx, cred, orderID)
	if err != nil {
		return "", fmt.Errorf("get order %s: %w", orderID, err)
	}

	if status.PayURI == "" {
		return "", ErrNoPayURI
	}

	s.logger.Info("order created", "order_id", orderID, "amount", amount)
	return status.PayURI, nil
}
