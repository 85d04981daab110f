package core

import "time"

// Shared estimation policy applied inside every usage client. Consumption is
// defined as a decrease in remaining (or an increase in a reported usage
// total); a balance top-up never yields a negative burn rate. The limit is
// monotonically non-decreasing across refreshes: it is raised to cover any
// observed value or configured budget and never lowered automatically.

// minElapsedMinutes floors the elapsed interval at one second so rapid
// repeated refreshes cannot blow up the rate division.
const minElapsedMinutes = 1.0 / 60.0

func elapsedMinutes(prev *UsageSnapshot, now time.Time) float64 {
	since := now
	if prev != nil {
		since = prev.UpdatedAt
	}
	minutes := now.Sub(since).Minutes()
	if minutes < minElapsedMinutes {
		return minElapsedMinutes
	}
	return minutes
}

// FromBalance builds a snapshot for balance-style providers, where the API
// reports how much is left. budget <= 0 means no configured budget.
func FromBalance(id ProviderID, prev *UsageSnapshot, remaining, budget float64, unit UsageUnit, now time.Time) UsageSnapshot {
	prevRemaining := remaining
	prevLimit := 0.0
	if prev != nil {
		prevRemaining = prev.Remaining
		prevLimit = prev.Limit
	}

	delta := prevRemaining - remaining
	if delta < 0 {
		delta = 0
	}

	return UsageSnapshot{
		ProviderID:        id,
		Remaining:         remaining,
		Limit:             max(budget, remaining, prevLimit),
		UpdatedAt:         now,
		BurnRatePerMinute: delta / elapsedMinutes(prev, now),
		Unit:              unit,
	}
}

// FromUsedTotal builds a snapshot for counter-style providers, where the API
// reports a consumption total instead of a balance. budget <= 0 means no
// configured budget.
func FromUsedTotal(id ProviderID, prev *UsageSnapshot, used, budget float64, unit UsageUnit, now time.Time) UsageSnapshot {
	prevUsed := 0.0
	prevLimit := 0.0
	if prev != nil {
		prevUsed = prev.Used()
		prevLimit = prev.Limit
	}

	deltaUsed := used - prevUsed
	if deltaUsed < 0 {
		deltaUsed = 0
	}

	limit := max(budget, used, prevLimit)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}

	return UsageSnapshot{
		ProviderID:        id,
		Remaining:         remaining,
		Limit:             limit,
		UpdatedAt:         now,
		BurnRatePerMinute: deltaUsed / elapsedMinutes(prev, now),
		Unit:              unit,
	}
}
