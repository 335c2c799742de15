package peer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client defines the interface for fetching ledger data from a peer backend.
// This interface enables dependency injection and testing with mock implementations.
type Client interface {
	FetchAgents(ctx context.Context) ([]RemoteAgent, error)
	FetchAgentRecords(ctx context.Context, agentID string) ([]RemoteRecord, error)
	FetchPost(ctx context.Context, address string) (RemotePost, error)
}

// LedgerClient fetches agents, chain records and post entries from another
// instance of this backend over its public API.
type LedgerClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewLedgerClient creates a new peer client for the given base URL.
// The timeout bounds each individual request.
func NewLedgerClient(baseURL string, timeout time.Duration) *LedgerClient {
	return &LedgerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchAgents retrieves all agents the peer knows about.
func (c *LedgerClient) FetchAgents(ctx context.Context) ([]RemoteAgent, error) {
	var agents []RemoteAgent
	if err := c.getJSON(ctx, "/api/agents", &agents); err != nil {
		return nil, err
	}
	return agents, nil
}

// FetchAgentRecords retrieves an agent's full chain in commit order.
func (c *LedgerClient) FetchAgentRecords(ctx context.Context, agentID string) ([]RemoteRecord, error) {
	var records []RemoteRecord
	if err := c.getJSON(ctx, "/api/agents/"+url.PathEscape(agentID)+"/records", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// FetchPost retrieves a single post entry by address.
func (c *LedgerClient) FetchPost(ctx context.Context, address string) (RemotePost, error) {
	var post RemotePost
	if err := c.getJSON(ctx, "/api/posts/"+url.PathEscape(address), &post); err != nil {
		return RemotePost{}, err
	}
	return post, nil
}

func (c *LedgerClient) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach peer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("peer returned %d for %s: %s", resp.StatusCode, path, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode peer response for %s: %w", path, err)
	}

	return nil
}
