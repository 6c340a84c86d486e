package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// fetchTimeout bounds a single upstream quote call. A hung provider must not
// stall the poll loop past this.
const fetchTimeout = 12 * time.Second

// QuoteSource fetches the raw quote payload for one instrument. The returned
// value is the decoded JSON as-is — shape is provider-controlled and goes
// straight to ExtractPrice. Implementations: DhanClient (live API), fakes in
// tests.
type QuoteSource interface {
	Fetch(ctx context.Context, securityID, exchange string) (any, error)
}

// DhanClient fetches market quotes from the Dhan HTTP API with bearer-token
// authorization.
type DhanClient struct {
	baseURL  string
	clientID string
	token    string
	client   *http.Client
}

func NewDhanClient(baseURL, clientID, token string) *DhanClient {
	return &DhanClient{
		baseURL:  baseURL,
		clientID: clientID,
		token:    token,
		client:   &http.Client{Timeout: fetchTimeout},
	}
}

func (c *DhanClient) Fetch(ctx context.Context, securityID, exchange string) (any, error) {
	endpoint := fmt.Sprintf("%s/market/quote?security_id=%s&exchange=%s",
		c.baseURL, url.QueryEscape(securityID), url.QueryEscape(exchange))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	if c.clientID != "" {
		req.Header.Set("client-id", c.clientID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("quote API error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4000))
		return nil, fmt.Errorf("quote API status %d: %s", resp.StatusCode, string(body))
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode error: %w", err)
	}
	return payload, nil
}
