package tracker

import (
	"testing"
	"time"

	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/rs/zerolog"
)

func TestSetManualNoPriorCache(t *testing.T) {
	tr, _, _ := newTestTracker(t, &stubDirectory{})

	snap := tr.SetManual(core.ProviderDeepSeek, 500, 1000)

	if snap.Remaining != 500 || snap.Limit != 1000 {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.BurnRatePerMinute != 0 {
		t.Errorf("burn rate = %v, want 0", snap.BurnRatePerMinute)
	}
	if snap.Unit != core.DefaultUnit(core.ProviderDeepSeek) {
		t.Errorf("unit = %+v, want provider default", snap.Unit)
	}

	if got := len(tr.History()[core.ProviderDeepSeek]); got != 1 {
		t.Errorf("samples = %d, want 1", got)
	}
}

func TestSetManualPreservesRateAndUnit(t *testing.T) {
	snaps := newMemSnapshots()
	snaps.Save(map[core.ProviderID]core.UsageSnapshot{
		core.ProviderQwen: {
			ProviderID:        core.ProviderQwen,
			Remaining:         100,
			Limit:             1000,
			UpdatedAt:         time.Now().Add(-time.Hour),
			BurnRatePerMinute: 12.5,
			Unit:              core.TokensUnit(),
		},
	})

	tr := New(&stubDirectory{}, snaps, newMemHistory(), DefaultRetention, zerolog.Nop())

	snap := tr.SetManual(core.ProviderQwen, 900, 1200)

	if snap.BurnRatePerMinute != 12.5 {
		t.Errorf("burn rate = %v, want preserved 12.5", snap.BurnRatePerMinute)
	}
	if snap.Unit != core.TokensUnit() {
		t.Errorf("unit = %+v, want preserved", snap.Unit)
	}
	if snap.Remaining != 900 || snap.Limit != 1200 {
		t.Errorf("values = %v/%v, want 900/1200", snap.Remaining, snap.Limit)
	}
}

func TestSetManualClampsNegativeInputs(t *testing.T) {
	tr, _, _ := newTestTracker(t, &stubDirectory{})

	snap := tr.SetManual(core.ProviderOpenAI, -5, -10)
	if snap.Remaining != 0 || snap.Limit != 0 {
		t.Errorf("clamped values = %v/%v, want 0/0", snap.Remaining, snap.Limit)
	}
}

func TestSetManualPersists(t *testing.T) {
	tr, snaps, hist := newTestTracker(t, &stubDirectory{})
	histSavesBefore := hist.saves

	tr.SetManual(core.ProviderZhipu, 30, 60)

	if snaps.saves != 1 {
		t.Errorf("snapshot saves = %d, want 1", snaps.saves)
	}
	if hist.saves != histSavesBefore+1 {
		t.Errorf("history saves = %d, want %d", hist.saves, histSavesBefore+1)
	}
	if got := snaps.Load()[core.ProviderZhipu].Remaining; got != 30 {
		t.Errorf("persisted remaining = %v, want 30", got)
	}
}
