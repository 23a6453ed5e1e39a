package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/okian/prospect/internal/auth"
	"github.com/okian/prospect/internal/domain/model"
	"github.com/okian/prospect/internal/domain/types"
	"github.com/okian/prospect/pkg/logger"
)

const tokenTTL = 15 * time.Minute

// Client talks to the prospect HTTP API on behalf of generated owners.
type Client struct {
	http    *http.Client
	baseURL string
	authn   *auth.Authenticator
}

// NewClient returns a client for baseURL that mints owner tokens with secret.
func NewClient(baseURL, secret string, timeout time.Duration) *Client {
	return &Client{
		http:    &http.Client{Timeout: timeout},
		baseURL: baseURL,
		authn:   auth.NewAuthenticator(secret),
	}
}

// statusError carries an unexpected HTTP status.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.status, e.body)
}

// Health checks GET /healthz.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, nil, nil)
}

// Create posts p's draft as its owner.
func (c *Client) Create(ctx context.Context, p Profile) (model.Athlete, error) {
	var a model.Athlete
	owner := model.Principal{UserID: p.UserID, Role: model.RoleAthlete}
	err := c.do(ctx, http.MethodPost, "/api/v1/athletes", &owner, p.Draft, &a)
	return a, err
}

// Breakdown fetches the rating breakdown of id as its owner.
func (c *Client) Breakdown(ctx context.Context, id, ownerID string) (types.BreakdownResponse, error) {
	var b types.BreakdownResponse
	owner := model.Principal{UserID: ownerID, Role: model.RoleAthlete}
	err := c.do(ctx, http.MethodGet, "/api/v1/ratings/"+id+"/breakdown", &owner, nil, &b)
	return b, err
}

// Top fetches the first page of the public listing.
func (c *Client) Top(ctx context.Context, n int) (types.AthleteList, error) {
	var page types.AthleteList
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/athletes?limit=%d", n), nil, nil, &page)
	return page, err
}

func (c *Client) do(ctx context.Context, method, path string, as *model.Principal, in, out any) error {
	var body io.Reader = http.NoBody
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if as != nil {
		tok, err := c.authn.Issue(*as, tokenTTL)
		if err != nil {
			return fmt.Errorf("issue token: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Get().Error(context.Background(), "failed to close response body", logger.Error(err))
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &statusError{status: resp.StatusCode, body: string(bytes.TrimSpace(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
