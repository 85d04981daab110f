// Package deepseek fetches account balance from the DeepSeek API.
//
//	GET https://api.deepseek.com/user/balance
//	Response: {"balance_infos": [{"currency": "USD", "total_balance": "..."}],
//	           "is_available": true}
//
// DeepSeek is balance-style: the endpoint reports what is left, and the
// shared estimation policy derives burn rate from consecutive balances.
package deepseek

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
	IsAvailable  bool          `json:"is_available"`
	BalanceInfos []balanceInfo `json:"balance_infos"`
}

type balanceInfo struct {
	Currency     string `json:"currency"`
	TotalBalance string `json:"total_balance"`
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
		baseURL = core.DefaultBaseURL(core.ProviderDeepSeek)
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

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/user/balance", nil)
	if err != nil {
		return core.UsageSnapshot{}, fmt.Errorf("deepseek: building balance request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.UsageSnapshot{}, fmt.Errorf("deepseek: balance request: %w", err)
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
	if len(decoded.BalanceInfos) == 0 {
		return core.UsageSnapshot{}, core.NewFetchError(core.ErrInvalidPayload)
	}

	// Prefer the USD balance when the account carries several currencies.
	preferred := decoded.BalanceInfos[0]
	for _, info := range decoded.BalanceInfos {
		if strings.EqualFold(info.Currency, "USD") {
			preferred = info
			break
		}
	}

	balance, ok := parsers.ParseFloat(preferred.TotalBalance)
	if !ok {
		return core.UsageSnapshot{}, core.NewFetchError(core.ErrInvalidPayload)
	}

	unit := core.CurrencyUnit(strings.ToUpper(preferred.Currency))
	return core.FromBalance(core.ProviderDeepSeek, cached, balance, c.budget, unit, c.now()), nil
}
