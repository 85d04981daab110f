// Package zhipu fetches the prepaid account balance from the Zhipu open
// platform billing endpoint. Balance-style, like deepseek.
package zhipu

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/janekbaraniewski/tokentrack/internal/parsers"
)

const requestTimeout = 12 * time.Second

type balanceResponse struct {
	Balance  *float64 `json:"balance"`
	Currency string   `json:"currency"`
}

type Client struct {
	apiKey     string
	baseURL    string
	budget     float64
	httpClient *http.Client
	now        func() time.Time
}

func New(apiKey, baseURL string, budget float64) *Client {
	if baseURL == "" {
		baseURL = core.DefaultBaseURL(core.ProviderZhipu)
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		budget:     budget,
		httpClient: &http.Client{Timeout: requestTimeout},
		now:        time.Now,
	}
}

func (c *Client) Fetch(ctx context.Context, cached *core.UsageSnapshot) (core.UsageSnapshot, error) {
	if c.apiKey == "" {
		return core.UsageSnapshot{}, core.NewFetchError(core.ErrMissingCredentials)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/paas/v4/user/balance", nil)
	if err != nil {
		return core.UsageSnapshot{}, fmt.Errorf("zhipu: building balance request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.UsageSnapshot{}, fmt.Errorf("zhipu: balance request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := parsers.ReadBody(resp.Body, 1024)
		return core.UsageSnapshot{}, core.NewHTTPStatusError(resp.StatusCode, body)
	}

	var decoded balanceResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return core.UsageSnapshot{}, core.NewFetchError(core.ErrInvalidResponse)
	}
	if decoded.Balance == nil {
		return core.UsageSnapshot{}, core.NewFetchError(core.ErrInvalidPayload)
	}

	currency := strings.ToUpper(strings.TrimSpace(decoded.Currency))
	if currency == "" {
		currency = "CNY"
	}

	return core.FromBalance(core.ProviderZhipu, cached, *decoded.Balance, c.budget, core.CurrencyUnit(currency), c.now()), nil
}
