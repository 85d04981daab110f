package tui

import (
	"fmt"
	"time"

	"github.com/janekbaraniewski/tokentrack/internal/core"
)

// FormatAmount renders a value in its unit: whole numbers for tokens, two
// decimals for currency.
func FormatAmount(v float64, unit core.UsageUnit) string {
	return fmt.Sprintf("%.*f %s", unit.FractionDigits(), v, unit.Label())
}

// FormatBurnRate renders the per-minute consumption rate, or a dash when
// nothing has burned yet.
func FormatBurnRate(rate float64, unit core.UsageUnit) string {
	if rate <= 0 {
		return "-"
	}
	digits := unit.FractionDigits()
	if digits == 0 && rate < 1 {
		digits = 2
	}
	return fmt.Sprintf("%.*f %s/min", digits, rate, unit.Label())
}

// FormatETA renders the projected depletion as a relative duration.
func FormatETA(snap core.UsageSnapshot, now time.Time) string {
	eta, ok := snap.ETADepletion(now)
	if !ok {
		return "-"
	}
	return formatDuration(eta.Sub(now))
}

// FormatAge renders how long ago a snapshot was refreshed.
func FormatAge(updatedAt time.Time, now time.Time) string {
	if updatedAt.IsZero() {
		return "never"
	}
	age := now.Sub(updatedAt)
	if age < time.Minute {
		return "just now"
	}
	return formatDuration(age) + " ago"
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d >= 48*time.Hour:
		return fmt.Sprintf("%dd %dh", int(d.Hours())/24, int(d.Hours())%24)
	case d >= time.Hour:
		return fmt.Sprintf("%dh %dm", int(d.Hours()), int(d.Minutes())%60)
	default:
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
}

// usedPercent converts a snapshot to the gauge scale, returning -1 when the
// limit is unknown.
func usedPercent(snap core.UsageSnapshot) float64 {
	if snap.Limit <= 0 {
		return -1
	}
	return snap.Used() / snap.Limit * 100
}
