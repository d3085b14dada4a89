// Package workflow is the client for the external workflow engine that
// executes namespace provisioning DAGs. All calls are routed through a
// circuit breaker dedicated to the engine.
package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/nsforge/nsforge/internal/breaker"
)

// Client submits, polls, and terminates workflows over the engine's HTTP
// JSON API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *breaker.Breaker
	log        logr.Logger
}

// NewClient creates a workflow engine client. The breaker instance must be
// dedicated to the engine so its failure accounting is not polluted by other
// dependencies.
func NewClient(baseURL, token string, b *breaker.Breaker, log logr.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
		breaker:    b,
		log:        log.WithName("workflow"),
	}
}

type submitResponse struct {
	Ref string `json:"ref"`
}

// Submit sends the DAG spec to the engine and returns the created workflow
// reference. At most one engine call is made; the caller decides whether a
// failed submission is retried.
func (c *Client) Submit(ctx context.Context, spec *Spec) (string, error) {
	body, err := json.Marshal(spec)
	if err != nil {
		return "", fmt.Errorf("encode workflow spec: %w", err)
	}

	var out submitResponse
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPost, "/workflows", bytes.NewReader(body), &out)
	})
	if err != nil {
		return "", fmt.Errorf("submit workflow %s: %w", spec.Name, err)
	}

	c.log.Info("workflow submitted", "workflow", spec.Name, "ref", out.Ref)
	return out.Ref, nil
}

// GetStatus fetches the engine's current view of a workflow instance.
func (c *Client) GetStatus(ctx context.Context, ref string) (*Status, error) {
	var out Status
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodGet, "/workflows/"+ref, nil, &out)
	})
	if err != nil {
		return nil, fmt.Errorf("get workflow %s: %w", ref, err)
	}
	if out.Ref == "" {
		out.Ref = ref
	}
	return &out, nil
}

// WaitForCompletion polls GetStatus at pollInterval until the workflow
// reaches a terminal phase or timeout elapses. On timeout the last known
// status is returned with a nil error so the caller can distinguish "still
// running" from a failed poll; transient poll errors (including an open
// breaker) do not abort the loop. The context cancels the wait without
// affecting the workflow itself.
func (c *Client) WaitForCompletion(ctx context.Context, ref string, pollInterval, timeout time.Duration) (*Status, error) {
	deadline := time.Now().Add(timeout)
	last := &Status{Ref: ref, Phase: PhaseRunning}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		status, err := c.GetStatus(ctx, ref)
		switch {
		case err == nil:
			last = status
			if status.Phase.Terminal() {
				return status, nil
			}
		case IsNotFound(err):
			// The engine no longer knows the reference; nothing further
			// to wait for.
			return nil, err
		default:
			c.log.V(1).Info("workflow status poll failed", "ref", ref, "error", err.Error())
		}

		if time.Now().After(deadline) {
			return last, nil
		}

		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Terminate stops a running workflow. It is best-effort: a missing or
// already-terminal workflow is not an error.
func (c *Client) Terminate(ctx context.Context, ref string) error {
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodDelete, "/workflows/"+ref, nil, nil)
	})
	if err != nil {
		if IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("terminate workflow %s: %w", ref, err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		// A missing reference is a negative result, not an engine
		// failure; it must not count toward the breaker.
		return breaker.Benign(ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &EngineError{StatusCode: resp.StatusCode, Message: string(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
	}
	return nil
}
