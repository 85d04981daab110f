package tui

import (
	"github.com/NimbleMarkets/ntcharts/sparkline"

	"github.com/janekbaraniewski/tokentrack/internal/core"
)

// RenderHistorySparkline draws the per-refresh consumption trend from a
// provider's retained samples. Each point is the usage delta between two
// consecutive samples, clamped at zero so top-ups do not dip the chart.
func RenderHistorySparkline(samples []core.UsageSample, width int) string {
	if len(samples) < 2 || width < 2 {
		return dimStyle.Render("collecting history...")
	}

	sl := sparkline.New(width, 1, sparkline.WithStyle(sparkStyle))
	for i := 1; i < len(samples); i++ {
		delta := samples[i].Used() - samples[i-1].Used()
		if delta < 0 {
			delta = 0
		}
		sl.Push(delta)
	}
	sl.Draw()
	return sl.View()
}
