package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/janekbaraniewski/tokentrack/internal/core"
)

type stubClient struct {
	snap  core.UsageSnapshot
	err   error
	delay time.Duration
}

func (c *stubClient) Fetch(ctx context.Context, _ *core.UsageSnapshot) (core.UsageSnapshot, error) {
	if c.delay > 0 {
		select {
		case <-time.After(c.delay):
		case <-ctx.Done():
			return core.UsageSnapshot{}, ctx.Err()
		}
	}
	return c.snap, c.err
}

type stubDirectory struct {
	clients map[core.ProviderID]core.UsageClient
}

func (d *stubDirectory) Client(id core.ProviderID) (core.UsageClient, bool) {
	c, ok := d.clients[id]
	return c, ok
}

func TestCheckProviderSuccess(t *testing.T) {
	dir := &stubDirectory{clients: map[core.ProviderID]core.UsageClient{
		core.ProviderDeepSeek: &stubClient{snap: core.UsageSnapshot{
			Remaining: 42.5,
			Unit:      core.CurrencyUnit("USD"),
		}},
	}}

	out := checkProvider(context.Background(), dir, core.ProviderDeepSeek, time.Second)
	if out != "DeepSeek: ok, 42.50 USD remaining" {
		t.Errorf("outcome = %q", out)
	}
}

func TestCheckProviderNoCredentials(t *testing.T) {
	dir := &stubDirectory{}

	out := checkProvider(context.Background(), dir, core.ProviderOpenAI, time.Second)
	if out != "OpenAI: no credentials configured" {
		t.Errorf("outcome = %q", out)
	}
}

func TestCheckProviderRejected(t *testing.T) {
	dir := &stubDirectory{clients: map[core.ProviderID]core.UsageClient{
		core.ProviderZhipu: &stubClient{err: core.NewHTTPStatusError(401, "bad key")},
	}}

	out := checkProvider(context.Background(), dir, core.ProviderZhipu, time.Second)
	if !strings.Contains(out, "credentials rejected") || !strings.Contains(out, "HTTP 401") {
		t.Errorf("outcome = %q", out)
	}
}

func TestCheckProviderTimesOutExactlyOnce(t *testing.T) {
	dir := &stubDirectory{clients: map[core.ProviderID]core.UsageClient{
		core.ProviderQwen: &stubClient{delay: time.Minute},
	}}

	start := time.Now()
	out := checkProvider(context.Background(), dir, core.ProviderQwen, 50*time.Millisecond)
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("check took %s, bounded wait not honored", elapsed)
	}
	if !strings.Contains(out, "timed out") {
		t.Errorf("outcome = %q, want timed out", out)
	}
}
