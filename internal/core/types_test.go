package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestUsageUnitJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		unit UsageUnit
		wire string
	}{
		{name: "tokens", unit: TokensUnit(), wire: `"tokens"`},
		{name: "usd", unit: CurrencyUnit("USD"), wire: `"currency:USD"`},
		{name: "cny", unit: CurrencyUnit("CNY"), wire: `"currency:CNY"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.unit)
			if err != nil {
				t.Fatalf("Marshal() error: %v", err)
			}
			if string(data) != tt.wire {
				t.Errorf("Marshal() = %s, want %s", data, tt.wire)
			}

			var back UsageUnit
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatalf("Unmarshal() error: %v", err)
			}
			if back != tt.unit {
				t.Errorf("round trip = %+v, want %+v", back, tt.unit)
			}
		})
	}
}

func TestUsageUnitUnknownWireFormFallsBackToTokens(t *testing.T) {
	var u UsageUnit
	if err := json.Unmarshal([]byte(`"credits"`), &u); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if u != TokensUnit() {
		t.Errorf("got %+v, want tokens unit", u)
	}
}

func TestSnapshotUsed(t *testing.T) {
	tests := []struct {
		name      string
		remaining float64
		limit     float64
		want      float64
	}{
		{name: "normal", remaining: 80, limit: 100, want: 20},
		{name: "exhausted", remaining: 0, limit: 100, want: 100},
		{name: "remaining exceeds lagging limit", remaining: 150, limit: 100, want: 0},
		{name: "empty", remaining: 0, limit: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := UsageSnapshot{Remaining: tt.remaining, Limit: tt.limit}
			if got := s.Used(); got != tt.want {
				t.Errorf("Used() = %v, want %v", got, tt.want)
			}
			if s.Used() < 0 {
				t.Error("Used() must never be negative")
			}
		})
	}
}

func TestETADepletion(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s := UsageSnapshot{Remaining: 120, BurnRatePerMinute: 2}
	eta, ok := s.ETADepletion(now)
	if !ok {
		t.Fatal("ETADepletion() absent, want present")
	}
	if want := now.Add(60 * time.Minute); !eta.Equal(want) {
		t.Errorf("ETADepletion() = %v, want %v", eta, want)
	}

	for _, rate := range []float64{0, -1} {
		s := UsageSnapshot{Remaining: 120, BurnRatePerMinute: rate}
		if _, ok := s.ETADepletion(now); ok {
			t.Errorf("ETADepletion() present at rate %v, want absent", rate)
		}
	}
}

func TestEmptySnapshot(t *testing.T) {
	now := time.Now()
	s := EmptySnapshot(ProviderDeepSeek, now)

	if s.Remaining != 0 || s.Limit != 0 || s.BurnRatePerMinute != 0 {
		t.Errorf("empty snapshot carries nonzero values: %+v", s)
	}
	if s.Unit != DefaultUnit(ProviderDeepSeek) {
		t.Errorf("unit = %+v, want provider default", s.Unit)
	}
	if _, ok := s.ETADepletion(now); ok {
		t.Error("empty snapshot must have no depletion ETA")
	}
}

func TestSampleFromSnapshot(t *testing.T) {
	now := time.Now()
	snap := UsageSnapshot{
		ProviderID: ProviderOpenAI,
		Remaining:  80,
		Limit:      100,
		UpdatedAt:  now,
	}

	sample := SampleFromSnapshot(snap)
	if sample.ID == "" {
		t.Error("sample ID must be assigned")
	}
	if sample.ProviderID != ProviderOpenAI || sample.Remaining != 80 || sample.Limit != 100 {
		t.Errorf("sample = %+v, want snapshot values", sample)
	}
	if !sample.Timestamp.Equal(now) {
		t.Errorf("timestamp = %v, want snapshot update time %v", sample.Timestamp, now)
	}
	if sample.Used() != snap.Used() {
		t.Errorf("sample Used() = %v, want %v", sample.Used(), snap.Used())
	}

	other := SampleFromSnapshot(snap)
	if other.ID == sample.ID {
		t.Error("sample IDs must be unique")
	}
}

func TestParseProviderID(t *testing.T) {
	tests := []struct {
		in   string
		want ProviderID
		ok   bool
	}{
		{in: "openai", want: ProviderOpenAI, ok: true},
		{in: " DeepSeek ", want: ProviderDeepSeek, ok: true},
		{in: "qwen", want: ProviderQwen, ok: true},
		{in: "zhipu", want: ProviderZhipu, ok: true},
		{in: "mistral", ok: false},
		{in: "", ok: false},
	}

	for _, tt := range tests {
		got, ok := ParseProviderID(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Errorf("ParseProviderID(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
