package core

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProviderID identifies one usage source. The set is closed: every
// per-provider store entry, sample and client is keyed by one of these.
type ProviderID string

const (
	ProviderOpenAI   ProviderID = "openai"
	ProviderDeepSeek ProviderID = "deepseek"
	ProviderQwen     ProviderID = "qwen"
	ProviderZhipu    ProviderID = "zhipu"
)

// AllProviderIDs returns the closed provider set in display order.
func AllProviderIDs() []ProviderID {
	return []ProviderID{ProviderOpenAI, ProviderDeepSeek, ProviderQwen, ProviderZhipu}
}

// ParseProviderID maps a user-supplied string to a known provider ID.
func ParseProviderID(s string) (ProviderID, bool) {
	id := ProviderID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllProviderIDs() {
		if id == known {
			return id, true
		}
	}
	return "", false
}

// UnitKind tags how a usage value is denominated.
type UnitKind string

const (
	UnitTokens   UnitKind = "tokens"
	UnitCurrency UnitKind = "currency"
)

// UsageUnit is informational only: it drives formatting, never arithmetic.
type UsageUnit struct {
	Kind     UnitKind
	Currency string // ISO code, set only when Kind == UnitCurrency
}

func TokensUnit() UsageUnit { return UsageUnit{Kind: UnitTokens} }

func CurrencyUnit(code string) UsageUnit {
	return UsageUnit{Kind: UnitCurrency, Currency: code}
}

// Label returns the display suffix, e.g. "tokens" or "USD".
func (u UsageUnit) Label() string {
	if u.Kind == UnitCurrency {
		return u.Currency
	}
	return string(UnitTokens)
}

// FractionDigits returns how many decimal places values in this unit carry.
func (u UsageUnit) FractionDigits() int {
	if u.Kind == UnitCurrency {
		return 2
	}
	return 0
}

// MarshalJSON encodes the unit as "tokens" or "currency:<code>".
func (u UsageUnit) MarshalJSON() ([]byte, error) {
	if u.Kind == UnitCurrency {
		return json.Marshal("currency:" + u.Currency)
	}
	return json.Marshal(string(UnitTokens))
}

// UnmarshalJSON accepts the wire forms produced by MarshalJSON. Anything
// unrecognized decodes as the tokens unit.
func (u *UsageUnit) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if code, ok := strings.CutPrefix(s, "currency:"); ok {
		*u = CurrencyUnit(code)
		return nil
	}
	*u = TokensUnit()
	return nil
}

// UsageSnapshot is the latest known consumption state for one provider.
// It is replaced wholesale on every successful refresh and never partially
// mutated.
type UsageSnapshot struct {
	ProviderID        ProviderID `json:"provider_id"`
	Remaining         float64    `json:"remaining"`
	Limit             float64    `json:"limit"`
	UpdatedAt         time.Time  `json:"updated_at"`
	BurnRatePerMinute float64    `json:"burn_rate_per_minute"`
	Unit              UsageUnit  `json:"unit"`
}

// Used derives consumption from the limit/remaining pair. Limit may lag a
// freshly observed remaining value, hence the clamp.
func (s UsageSnapshot) Used() float64 {
	if used := s.Limit - s.Remaining; used > 0 {
		return used
	}
	return 0
}

// ETADepletion projects when the remaining amount runs out at the current
// burn rate. The second return is false when the rate is zero or negative.
func (s UsageSnapshot) ETADepletion(now time.Time) (time.Time, bool) {
	if s.BurnRatePerMinute <= 0 {
		return time.Time{}, false
	}
	minutes := s.Remaining / s.BurnRatePerMinute
	return now.Add(time.Duration(minutes * float64(time.Minute))), true
}

// EmptySnapshot is the placeholder state for a provider with no cached data.
func EmptySnapshot(id ProviderID, now time.Time) UsageSnapshot {
	return UsageSnapshot{
		ProviderID: id,
		UpdatedAt:  now,
		Unit:       DefaultUnit(id),
	}
}

// UsageSample is one immutable historical observation. Samples are created
// once per provider per completed refresh cycle and removed only by
// retention pruning.
type UsageSample struct {
	ID         string     `json:"id"`
	ProviderID ProviderID `json:"provider_id"`
	Remaining  float64    `json:"remaining"`
	Limit      float64    `json:"limit"`
	Timestamp  time.Time  `json:"timestamp"`
}

func NewUsageSample(id ProviderID, remaining, limit float64, ts time.Time) UsageSample {
	return UsageSample{
		ID:         uuid.NewString(),
		ProviderID: id,
		Remaining:  remaining,
		Limit:      limit,
		Timestamp:  ts,
	}
}

func (s UsageSample) Used() float64 {
	if used := s.Limit - s.Remaining; used > 0 {
		return used
	}
	return 0
}

// SampleFromSnapshot records the snapshot's state at its own update time.
func SampleFromSnapshot(snap UsageSnapshot) UsageSample {
	return NewUsageSample(snap.ProviderID, snap.Remaining, snap.Limit, snap.UpdatedAt)
}
