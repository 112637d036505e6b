// Package taler implements the MerchantClient port against the GNU Taler
// merchant backend's HTTP API.
package taler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gregjones/httpcache"

	"github.com/dkindler/talerpanel/internal/domain/model"
	"github.com/dkindler/talerpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.MerchantClient = (*Client)(nil)

// Client talks to a Taler merchant backend. It holds no credentials of its
// own; every call receives the credential to use, so candidate credentials
// can be probed before they are persisted.
type Client struct {
	http *http.Client
}

// NewClient creates a Client with a bounded overall timeout per attempt and
// an in-memory ETag cache in front of config discovery requests.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		http: &http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   timeout,
		},
	}
}

// NewClientWithHTTPClient creates a Client using the given http.Client.
// Intended for testing with an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client) *Client {
	return &Client{http: httpClient}
}

// errorBody is the merchant backend's standard error response shape.
type errorBody struct {
	Code int    `json:"code"`
	Hint string `json:"hint"`
}

// rootURL returns the backend base URL without a trailing slash.
func rootURL(cred model.Credential) string {
	return strings.TrimRight(cred.BaseURL, "/")
}

// instanceURL returns the API base for the credential's instance. The
// default instance lives at the backend root; named instances are nested
// under /instances/{id}.
func instanceURL(cred model.Credential) string {
	base := rootURL(cred)
	if cred.Instance == "" || cred.Instance == "default" {
		return base
	}
	return base + "/instances/" + cred.Instance
}

// ConfigCheck probes the backend in three stages: config discovery,
// instance existence, then authenticated access. The report carries the
// first failing stage. One attempt per stage, no retries.
func (c *Client) ConfigCheck(ctx context.Context, cred model.Credential) (model.CheckReport, error) {
	if report, err := c.checkConfig(ctx, cred); err != nil || !report.OK {
		return report, err
	}

	if report, err := c.checkInstance(ctx, cred); err != nil || !report.OK {
		return report, err
	}

	return c.checkAuth(ctx, cred)
}

// checkConfig verifies the root /config endpoint responds and looks like a
// merchant backend (a JSON document announcing its version).
func (c *Client) checkConfig(ctx context.Context, cred model.Credential) (model.CheckReport, error) {
	resp, err := c.get(ctx, rootURL(cred)+"/config", "")
	if err != nil {
		return model.CheckReport{}, fmt.Errorf("config request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.CheckReport{
			Stage:      model.StageConfig,
			HTTPStatus: resp.StatusCode,
			ErrorSlug:  readErrorSlug(resp.Body),
		}, nil
	}

	var config struct {
		Version string `json:"version"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&config); err != nil || config.Version == "" {
		return model.CheckReport{}, driven.ErrNotMerchantBackend
	}

	return model.CheckReport{OK: true}, nil
}

// checkInstance verifies a named instance exists. The default instance was
// already covered by the root config check.
func (c *Client) checkInstance(ctx context.Context, cred model.Credential) (model.CheckReport, error) {
	if cred.Instance == "" || cred.Instance == "default" {
		return model.CheckReport{OK: true}, nil
	}

	resp, err := c.get(ctx, instanceURL(cred)+"/config", "")
	if err != nil {
		return model.CheckReport{}, fmt.Errorf("instance request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.CheckReport{
			Stage:      model.StageInstance,
			HTTPStatus: resp.StatusCode,
			ErrorSlug:  readErrorSlug(resp.Body),
		}, nil
	}

	return model.CheckReport{OK: true}, nil
}

// checkAuth verifies the credential grants access to the instance's private
// API. An AuthNone credential passes once config discovery succeeded; the
// backend itself reports whether it requires authentication.
func (c *Client) checkAuth(ctx context.Context, cred model.Credential) (model.CheckReport, error) {
	header := ""

	switch cred.Method {
	case model.AuthNone:
		return model.CheckReport{OK: true}, nil

	case model.AuthToken:
		header = cred.Token

	case model.AuthUserPass:
		token, report, err := c.loginToken(ctx, cred)
		if err != nil || !report.OK {
			return report, err
		}
		header = "Bearer " + token
	}

	resp, err := c.get(ctx, instanceURL(cred)+"/private/orders?limit=1", header)
	if err != nil {
		return model.CheckReport{}, fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.CheckReport{
			Stage:      model.StageAuth,
			HTTPStatus: resp.StatusCode,
			ErrorSlug:  readErrorSlug(resp.Body),
		}, nil
	}

	return model.CheckReport{OK: true}, nil
}

// loginToken mints an access token for a user/password credential with the
// credential's scope, lifetime, and description.
func (c *Client) loginToken(ctx context.Context, cred model.Credential) (string, model.CheckReport, error) {
	body, err := json.Marshal(map[string]any{
		"scope":       cred.Scope,
		"duration":    map[string]int64{"d_us": cred.Duration.Microseconds()},
		"description": cred.Description,
	})
	if err != nil {
		return "", model.CheckReport{}, fmt.Errorf("encode token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, instanceURL(cred)+"/private/token", bytes.NewReader(body))
	if err != nil {
		return "", model.CheckReport{}, fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(cred.Username, cred.Password)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", model.CheckReport{}, fmt.Errorf("token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", model.CheckReport{
			Stage:      model.StageAuth,
			HTTPStatus: resp.StatusCode,
			ErrorSlug:  readErrorSlug(resp.Body),
		}, nil
	}

	var token struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", model.CheckReport{}, fmt.Errorf("decode token response: %w", err)
	}

	return token.Token, model.CheckReport{OK: true}, nil
}

// CreateOrder creates a new order on the backend and returns its ID.
func (c *Client) CreateOrder(ctx context.Context, cred model.Credential, order model.OrderRequest) (string, error) {
	header, err := c.authHeader(ctx, cred)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(map[string]any{
		"order": map[string]string{
			"order_id":            order.OrderID,
			"amount":              order.Amount,
			"summary":             order.Summary,
			"fulfillment_message": order.FulfillmentMessage,
		},
	})
	if err != nil {
		return "", fmt.Errorf("encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, instanceURL(cred)+"/private/orders", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build order request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("create order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("create order: backend returned HTTP %d: %s", resp.StatusCode, readErrorSlug(resp.Body))
	}

	var created struct {
		OrderID string `json:"order_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decode order response: %w", err)
	}

	return created.OrderID, nil
}

// GetOrder retrieves the current status of an order; for unpaid orders the
// result carries the taler pay URI.
func (c *Client) GetOrder(ctx context.Context, cred model.Credential, orderID string) (model.OrderStatus, error) {
	header, err := c.authHeader(ctx, cred)
	if err != nil {
		return model.OrderStatus{}, err
	}

	resp, err := c.get(ctx, instanceURL(cred)+"/private/orders/"+orderID, header)
	if err != nil {
		return model.OrderStatus{}, fmt.Errorf("get order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return model.OrderStatus{}, fmt.Errorf("get order: backend returned HTTP %d: %s", resp.StatusCode, readErrorSlug(resp.Body))
	}

	var status struct {
		OrderStatus string `json:"order_status"`
		PayURI      string `json:"taler_pay_uri"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return model.OrderStatus{}, fmt.Errorf("decode order status: %w", err)
	}

	return model.OrderStatus{OrderID: orderID, Status: status.OrderStatus, PayURI: status.PayURI}, nil
}

// authHeader resolves the Authorization header value for live operations,
// minting a login token first for user/password credentials.
func (c *Client) authHeader(ctx context.Context, cred model.Credential) (string, error) {
	switch cred.Method {
	case model.AuthToken:
		return cred.Token, nil
	case model.AuthUserPass:
		token, report, err := c.loginToken(ctx, cred)
		if err != nil {
			return "", err
		}
		if !report.OK {
			return "", fmt.Errorf("login failed: backend returned HTTP %d", report.HTTPStatus)
		}
		return "Bearer " + token, nil
	default:
		return "", nil
	}
}

func (c *Client) get(ctx context.Context, url, authHeader string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	return c.http.Do(req)
}

// readErrorSlug extracts the backend's error hint from a failure response
// body, if one was returned.
func readErrorSlug(body io.Reader) string {
	var eb errorBody
	if err := json.NewDecoder(io.LimitReader(body, 4096)).Decode(&eb); err != nil {
		return ""
	}
	if eb.Hint != "" {
		return eb.Hint
	}
	if eb.Code != 0 {
		return fmt.Sprintf("error code %d", eb.Code)
	}
	return ""
}
