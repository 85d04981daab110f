// Package qwen fetches token consumption from a Prometheus-compatible
// monitoring endpoint exposing a `model_usage` counter, as deployed in
// front of self-hosted Qwen serving stacks.
//
//	GET {base}/api/v1/query_range?query=model_usage{model="..."}&start=...&end=...&step=60s
//
// Authentication is HTTP basic with an access key/secret pair. Qwen is
// counter-style: the difference between the last two counter points is the
// consumption total handed to the shared estimation policy.
package qwen

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/janekbaraniewski/tokentrack/internal/parsers"
)

const (
	requestTimeout = 12 * time.Second
	queryWindow    = 5 * time.Minute
)

type rangeResponse struct {
	Status string    `json:"status"`
	Data   rangeData `json:"data"`
}

type rangeData struct {
	ResultType string        `json:"resultType"`
	Result     []rangeSeries `json:"result"`
}

type rangeSeries struct {
	Values []samplePair `json:"values"`
}

// samplePair is one [timestamp, value] element of a Prometheus matrix.
type samplePair struct {
	Timestamp float64
	Value     float64
}

func (p *samplePair) UnmarshalJSON(data []byte) error {
	var parts [2]parsers.FlexibleFloat
	if err := json.Unmarshal(data, &parts); err != nil {
		return err
	}
	p.Timestamp = float64(parts[0])
	p.Value = float64(parts[1])
	return nil
}

type Client struct {
	accessKey    string
	accessSecret string
	baseURL      string
	model        string
	budget       float64
	httpClient   *http.Client
	now          func() time.Time
}

func New(accessKey, accessSecret, baseURL, model string, budget float64) *Client {
	return &Client{
		accessKey:    accessKey,
		accessSecret: accessSecret,
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		model:        model,
		budget:       budget,
		httpClient:   &http.Client{Timeout: requestTimeout},
		now:          time.Now,
	}
}

func (c *Client) Fetch(ctx context.Context, cached *core.UsageSnapshot) (core.UsageSnapshot, error) {
	if c.accessKey == "" || c.accessSecret == "" || c.baseURL == "" {
		return core.UsageSnapshot{}, core.NewFetchError(core.ErrMissingCredentials)
	}

	now := c.now()

	promQuery := "model_usage"
	if c.model != "" {
		promQuery = fmt.Sprintf(`model_usage{model=%q}`, c.model)
	}

	query := url.Values{}
	query.Set("query", promQuery)
	query.Set("start", strconv.FormatInt(now.Add(-queryWindow).Unix(), 10))
	query.Set("end", strconv.FormatInt(now.Unix(), 10))
	query.Set("step", "60s")

	endpoint := c.baseURL + "/api/v1/query_range?" + query.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return core.UsageSnapshot{}, fmt.Errorf("qwen: building query request: %w", err)
	}
	req.SetBasicAuth(c.accessKey, c.accessSecret)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return core.UsageSnapshot{}, fmt.Errorf("qwen: query request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body := parsers.ReadBody(resp.Body, 1024)
		return core.UsageSnapshot{}, core.NewHTTPStatusError(resp.StatusCode, body)
	}

	var decoded rangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return core.UsageSnapshot{}, core.NewFetchError(core.ErrInvalidResponse)
	}
	if decoded.Status != "success" {
		return core.UsageSnapshot{}, core.NewFetchError(core.ErrInvalidPayload)
	}

	var points []samplePair
	for _, series := range decoded.Data.Result {
		points = append(points, series.Values...)
	}
	sort.Slice(points, func(i, j int) bool { return points[i].Timestamp < points[j].Timestamp })

	var used float64
	switch {
	case len(points) >= 2:
		used = points[len(points)-1].Value - points[len(points)-2].Value
	case len(points) == 1:
		used = points[0].Value
	}
	if used < 0 {
		used = 0
	}

	return core.FromUsedTotal(core.ProviderQwen, cached, used, c.budget, core.TokensUnit(), now), nil
}
