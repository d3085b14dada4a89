package nsapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// Client is a minimal HTTP client for the nsforge orchestrator API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the orchestrator listening at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// CreateNamespace submits a provisioning request and returns the accepted
// request ID and initial status. A request whose workflow submission failed
// for a non-retryable reason is still accepted: the response status is then
// FAILED and the record carries the failure in errorMessage. Retryable
// rejections (an open dependency circuit) come back as an APIError with
// RetryAfterSeconds set instead.
func (c *Client) CreateNamespace(ctx context.Context, req CreateNamespaceRequest) (*CreateNamespaceResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	var out CreateNamespaceResponse
	if err := c.do(ctx, http.MethodPost, "/namespaces", bytes.NewReader(body), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStatus fetches the current record for a provisioning request.
func (c *Client) GetStatus(ctx context.Context, requestID string) (*ProvisioningRequest, error) {
	var out ProvisioningRequest
	path := "/namespaces/" + url.PathEscape(requestID) + "/status"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Cancel requests cancellation of a provisioning request. Cancelling a
// request that already reached a terminal phase is a no-op on the server;
// the returned record carries the unchanged status.
func (c *Client) Cancel(ctx context.Context, requestID string) (*ProvisioningRequest, error) {
	var out ProvisioningRequest
	path := "/namespaces/" + url.PathEscape(requestID)
	if err := c.do(ctx, http.MethodDelete, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// List lists all provisioning requests.
func (c *Client) List(ctx context.Context) ([]ProvisioningRequest, error) {
	var out []ProvisioningRequest
	if err := c.do(ctx, http.MethodGet, "/namespaces", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByTeam lists all provisioning requests owned by a team.
func (c *Client) ListByTeam(ctx context.Context, team string) ([]ProvisioningRequest, error) {
	var out []ProvisioningRequest
	path := "/namespaces?team=" + url.QueryEscape(team)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Breakers returns the orchestrator's circuit breaker snapshots.
func (c *Client) Breakers(ctx context.Context) ([]BreakerStatus, error) {
	var out []BreakerStatus
	if err := c.do(ctx, http.MethodGet, "/breakers", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ResetBreaker closes the named circuit breaker. Operator action.
func (c *Client) ResetBreaker(ctx context.Context, name string) error {
	path := "/breakers/" + url.PathEscape(name) + "/reset"
	return c.do(ctx, http.MethodPost, path, nil, nil)
}

// APIError is a non-2xx response from the orchestrator.
type APIError struct {
	StatusCode        int
	Message           string
	RetryAfterSeconds int
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Message)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return &APIError{
				StatusCode:        resp.StatusCode,
				Message:           apiErr.Error,
				RetryAfterSeconds: apiErr.RetryAfterSeconds,
			}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
	}
	return nil
}
