// Package openai fetches organization token usage from the OpenAI usage
// API. OpenAI is counter-style: the endpoint reports tokens consumed over a
// short trailing window, and the shared estimation policy turns the running
// total into a burn rate against the configured budget.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/janekbaraniewski/tokentrack/internal/parsers"
)

const (
	defaultBaseURL = "https://api.openai.com"
	requestTimeout = 12 * time.Second

	// usageWindow is how far back the usage query reaches. One-minute
	// buckets over the last five minutes are enough to see current
	// consumption.
	usageWindow = 5 * time.Minute
)

type usageResponse struct {
	Data []usageBucket `json:"data"`
}

type usageBucket struct {
	StartTime int64         `json:"start_time"`
	EndTime   int64         `json:"end_time"`
	Results   []usageResult `json:"results"`
}

type usageResult struct {
	InputTokens       int64 `json:"input_tokens"`
	OutputTokens      int64 `json:"output_tokens"`
	InputAudioTokens  int64 `json:"input_audio_tokens"`
	OutputAudioTokens int64 `json:"output_audio_tokens"`
}

func (r usageResult) total() int64 {
	return r.InputTokens + r.OutputTokens + r.InputAudioTokens + r.OutputAudioTokens
}

type Client struct {
	apiKey     string
	baseURL    string
	model      string
	budget     float64
	httpClient *http.Client
	now        func() time.Time
}

func New(apiKey, baseURL, model string, budget float64) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		model:      model,
		budget:     budget,
		httpClient: &http.Client{Timeout: requestTimeout},
		now:        time.Now,
	}
}

func (c *Client) Fetch(ctx context.Context, cached *core.UsageSnapshot) (core.UsageSnapshot, error) {
	if c.apiKey == "" {
		return core.UsageSnapshot{}, core.NewFetchError(core.ErrMissingCredentials)
	}

	now := c.now()
	end := now.Unix()
	start := now.Add(-usageWindow).Unix()

	query := url.Values{}
	query.Set("start_time", strconv.FormatInt(start, 10))
	query.Set("end_time", strconv.FormatInt(end, 10))
	query.Set("bucket_width", "1m")
	query.Set("limit", "5")
	if c.model != "" {
		query.Set("models", c.model)
	}

	endpoint := c.baseURL + "/v1/organization/usage/completions?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return core.UsageSnapshot{}, fmt.Errorf("openai: building usage request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.UsageSnapshot{}, fmt.Errorf("openai: usage request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := parsers.ReadBody(resp.Body, 1024)
		return core.UsageSnapshot{}, core.NewHTTPStatusError(resp.StatusCode, body)
	}

	var decoded usageResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return core.UsageSnapshot{}, core.NewFetchError(core.ErrInvalidResponse)
	}

	// Newest bucket wins; older ones were already accounted for in
	// previous refreshes.
	var newest *usageBucket
	for i := range decoded.Data {
		if newest == nil || decoded.Data[i].StartTime > newest.StartTime {
			newest = &decoded.Data[i]
		}
	}

	var used float64
	if newest != nil {
		for _, result := range newest.Results {
			used += float64(result.total())
		}
	}

	return core.FromUsedTotal(core.ProviderOpenAI, cached, used, c.budget, core.TokensUnit(), now), nil
}
