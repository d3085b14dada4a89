// Package directory resolves and validates identity principals (users and
// groups) against the external directory service. All lookups are routed
// through a circuit breaker dedicated to the directory.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-logr/logr"

	"github.com/nsforge/nsforge/internal/breaker"
)

// PrincipalType distinguishes user and group principals.
type PrincipalType string

// Principal types.
const (
	TypeUser  PrincipalType = "User"
	TypeGroup PrincipalType = "Group"
)

// Principal is a validated directory identity. Values are produced only by
// successful directory lookups, never constructed from request input.
type Principal struct {
	ObjectID          string        `json:"objectId"`
	DisplayName       string        `json:"displayName"`
	PrincipalType     PrincipalType `json:"principalType"`
	UserPrincipalName string        `json:"userPrincipalName,omitempty"`
	Verified          bool          `json:"verified"`
}

// Client looks up principals over the directory's HTTP JSON API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	breaker    *breaker.Breaker
	log        logr.Logger
}

// NewClient creates a directory client using the given breaker instance.
func NewClient(baseURL, token string, b *breaker.Breaker, log logr.Logger) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{},
		breaker:    b,
		log:        log.WithName("directory"),
	}
}

// ValidateUser resolves a user by principal name (or object ID).
func (c *Client) ValidateUser(ctx context.Context, principalName string) (*Principal, error) {
	p, err := c.lookup(ctx, "/users/"+url.PathEscape(principalName))
	if err != nil {
		return nil, fmt.Errorf("validate user %s: %w", Mask(principalName), err)
	}
	p.PrincipalType = TypeUser
	return p, nil
}

// ValidateGroup resolves a group by object ID.
func (c *Client) ValidateGroup(ctx context.Context, objectID string) (*Principal, error) {
	p, err := c.lookup(ctx, "/groups/"+url.PathEscape(objectID))
	if err != nil {
		return nil, fmt.Errorf("validate group %s: %w", Mask(objectID), err)
	}
	p.PrincipalType = TypeGroup
	return p, nil
}

// ValidateByID resolves a principal whose type is unknown: a user lookup
// first, falling back to a group lookup only when the directory reports the
// user does not exist. Transport and server errors propagate without
// fallback so a degraded directory is not misread as "no such user".
func (c *Client) ValidateByID(ctx context.Context, objectID string) (*Principal, error) {
	user, err := c.ValidateUser(ctx, objectID)
	if err == nil {
		return user, nil
	}
	if !IsNotFound(err) {
		return nil, err
	}

	c.log.V(1).Info("principal is not a user, trying group lookup", "principal", Mask(objectID))
	return c.ValidateGroup(ctx, objectID)
}

type lookupResponse struct {
	ObjectID          string `json:"objectId"`
	DisplayName       string `json:"displayName"`
	UserPrincipalName string `json:"userPrincipalName"`
}

func (c *Client) lookup(ctx context.Context, path string) (*Principal, error) {
	var out lookupResponse
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.do(ctx, path, &out)
	})
	if err != nil {
		return nil, err
	}
	return &Principal{
		ObjectID:          out.ObjectID,
		DisplayName:       out.DisplayName,
		UserPrincipalName: out.UserPrincipalName,
		Verified:          true,
	}, nil
}

func (c *Client) do(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// A missing principal is a legitimate negative result and must
		// not count toward the breaker.
		return breaker.Benign(ErrNotFound)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return &AuthError{StatusCode: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return &ServiceError{StatusCode: resp.StatusCode, Message: string(data)}
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse response: %w (status %d)", err, resp.StatusCode)
	}
	return nil
}

// Mask hides most of a principal identifier so logs never carry full
// principal names.
func Mask(identifier string) string {
	const visible = 2
	if len(identifier) <= visible {
		return "***"
	}
	return identifier[:visible] + "***"
}
