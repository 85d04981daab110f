package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/janekbaraniewski/tokentrack/internal/core"
)

type fakeSource struct {
	snapshots    map[core.ProviderID]core.UsageSnapshot
	history      map[core.ProviderID][]core.UsageSample
	errs         map[core.ProviderID]error
	refreshCalls int
}

func (f *fakeSource) Snapshots() map[core.ProviderID]core.UsageSnapshot { return f.snapshots }
func (f *fakeSource) History() map[core.ProviderID][]core.UsageSample   { return f.history }
func (f *fakeSource) LastErrors() map[core.ProviderID]error             { return f.errs }
func (f *fakeSource) RefreshAll(context.Context) map[core.ProviderID]core.UsageSnapshot {
	f.refreshCalls++
	return f.snapshots
}

func testSource() *fakeSource {
	t0 := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &fakeSource{
		snapshots: map[core.ProviderID]core.UsageSnapshot{
			core.ProviderDeepSeek: {
				ProviderID:        core.ProviderDeepSeek,
				Remaining:         80,
				Limit:             100,
				UpdatedAt:         t0,
				BurnRatePerMinute: 2,
				Unit:              core.CurrencyUnit("USD"),
			},
			core.ProviderOpenAI: {
				ProviderID: core.ProviderOpenAI,
				Remaining:  5000,
				Limit:      10000,
				UpdatedAt:  t0,
				Unit:       core.TokensUnit(),
			},
		},
		history: map[core.ProviderID][]core.UsageSample{},
		errs:    map[core.ProviderID]error{},
	}
}

func TestViewRendersProviderCards(t *testing.T) {
	src := testSource()
	m := NewModel(src, time.Minute)
	m.width = 80
	m.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 30, 0, time.UTC) }

	view := m.View()
	if !strings.Contains(view, "OpenAI") || !strings.Contains(view, "DeepSeek") {
		t.Errorf("view missing provider names:\n%s", view)
	}
	if !strings.Contains(view, "80.00 USD") {
		t.Errorf("view missing remaining balance:\n%s", view)
	}
	if !strings.Contains(view, "2.00 USD/min") {
		t.Errorf("view missing burn rate:\n%s", view)
	}
}

func TestViewWithoutProviders(t *testing.T) {
	m := NewModel(&fakeSource{}, time.Minute)
	if !strings.Contains(m.View(), "No providers configured") {
		t.Error("empty view missing setup hint")
	}
}

func TestViewShowsFetchError(t *testing.T) {
	src := testSource()
	src.errs[core.ProviderOpenAI] = errors.New("HTTP 401")

	m := NewModel(src, time.Minute)
	view := m.View()
	if !strings.Contains(view, "HTTP 401") || !strings.Contains(view, "last good data") {
		t.Errorf("view missing stale-data notice:\n%s", view)
	}
}

func TestRefreshKeyTriggersRefresh(t *testing.T) {
	src := testSource()
	m := NewModel(src, time.Minute)

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("expected refresh command")
	}
	if !m.refreshing {
		t.Error("model not marked refreshing")
	}

	if msg := cmd(); msg != nil {
		updated, _ = m.Update(msg)
		m = updated.(Model)
	}
	if src.refreshCalls != 1 {
		t.Errorf("refresh calls = %d, want 1", src.refreshCalls)
	}
	if m.refreshing {
		t.Error("model still refreshing after result")
	}
}

func TestRefreshKeyIgnoredWhileRefreshing(t *testing.T) {
	m := NewModel(testSource(), time.Minute)
	m.refreshing = true

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	if cmd != nil {
		t.Error("expected no command while a refresh is in flight")
	}
}

func TestQuitKey(t *testing.T) {
	m := NewModel(testSource(), time.Minute)

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not produce tea.Quit")
	}
}

func TestCursorNavigation(t *testing.T) {
	m := NewModel(testSource(), time.Minute)
	if len(m.order) != 2 {
		t.Fatalf("order = %v", m.order)
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = updated.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d after down, want 1", m.cursor)
	}

	// Bottom of the list, down stays put.
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'j'}})
	m = updated.(Model)
	if m.cursor != 1 {
		t.Errorf("cursor = %d, want 1", m.cursor)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'k'}})
	m = updated.(Model)
	if m.cursor != 0 {
		t.Errorf("cursor = %d after up, want 0", m.cursor)
	}
}

func TestTickSchedulesRefresh(t *testing.T) {
	src := testSource()
	m := NewModel(src, time.Minute)

	updated, cmd := m.Update(tickMsg(time.Now()))
	m = updated.(Model)
	if !m.refreshing {
		t.Error("tick did not mark refreshing")
	}
	if cmd == nil {
		t.Fatal("tick produced no command")
	}
}
