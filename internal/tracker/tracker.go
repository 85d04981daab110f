// Package tracker owns the refresh cycle: fan-out fetches across the
// configured providers, a serialized merge into the snapshot cache, history
// recording and retention pruning.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/janekbaraniewski/tokentrack/internal/store"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// Directory resolves the currently configured providers. Implementations
// re-evaluate configuration on every call so credential changes take effect
// on the next refresh.
type Directory interface {
	Active() []core.ProviderID
	Client(id core.ProviderID) (core.UsageClient, bool)
}

const DefaultRetention = 7 * 24 * time.Hour

type Tracker struct {
	directory Directory
	snapshots store.SnapshotStore
	history   store.HistoryStore
	retention time.Duration
	logger    zerolog.Logger
	now       func() time.Time

	// cycleMu serializes complete refresh cycles: a second RefreshAll or a
	// manual override queues behind the in-flight cycle, so no two merge
	// phases ever interleave.
	cycleMu sync.Mutex

	// stateMu guards the in-memory cache, history and diagnostics for
	// concurrent readers while a cycle is running.
	stateMu  sync.RWMutex
	cache    map[core.ProviderID]core.UsageSnapshot
	hist     map[core.ProviderID][]core.UsageSample
	lastErrs map[core.ProviderID]error

	onUpdate func(map[core.ProviderID]core.UsageSnapshot)

	runMu   sync.Mutex
	running bool
	stopped chan struct{}
}

func New(directory Directory, snapshots store.SnapshotStore, history store.HistoryStore, retention time.Duration, logger zerolog.Logger) *Tracker {
	return newWithClock(directory, snapshots, history, retention, logger, time.Now)
}

// newWithClock backs New. Construction already prunes and persists, so
// tests inject their clock here rather than after the fact.
func newWithClock(directory Directory, snapshots store.SnapshotStore, history store.HistoryStore, retention time.Duration, logger zerolog.Logger, now func() time.Time) *Tracker {
	if retention <= 0 {
		retention = DefaultRetention
	}

	t := &Tracker{
		directory: directory,
		snapshots: snapshots,
		history:   history,
		retention: retention,
		logger:    logger,
		now:       now,
		cache:     snapshots.Load(),
		hist:      history.Load(),
		lastErrs:  make(map[core.ProviderID]error),
	}

	// Drop anything that expired while the process was down.
	t.pruneLocked(t.now())
	t.history.Save(t.hist)

	return t
}

// OnUpdate registers a callback fired after every completed cycle with the
// merged snapshot mapping. It runs on the cycle's goroutine.
func (t *Tracker) OnUpdate(fn func(map[core.ProviderID]core.UsageSnapshot)) {
	t.stateMu.Lock()
	defer t.stateMu.Unlock()
	t.onUpdate = fn
}

// Snapshots returns a copy of the current cache.
func (t *Tracker) Snapshots() map[core.ProviderID]core.UsageSnapshot {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	out := make(map[core.ProviderID]core.UsageSnapshot, len(t.cache))
	for id, snap := range t.cache {
		out[id] = snap
	}
	return out
}

// History returns a copy of the retained sample sequences.
func (t *Tracker) History() map[core.ProviderID][]core.UsageSample {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	out := make(map[core.ProviderID][]core.UsageSample, len(t.hist))
	for id, samples := range t.hist {
		out[id] = append([]core.UsageSample(nil), samples...)
	}
	return out
}

// LastErrors returns the most recent fetch failure per provider. Entries
// clear on the next successful fetch.
func (t *Tracker) LastErrors() map[core.ProviderID]error {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	out := make(map[core.ProviderID]error, len(t.lastErrs))
	for id, err := range t.lastErrs {
		out[id] = err
	}
	return out
}

type fetchResult struct {
	id   core.ProviderID
	snap core.UsageSnapshot
	err  error
}

// RefreshAll runs one complete refresh cycle and returns the merged cache.
// A provider's fetch failure leaves its cached entry untouched and never
// aborts the cycle; with no configured providers the call is a no-op.
func (t *Tracker) RefreshAll(ctx context.Context) map[core.ProviderID]core.UsageSnapshot {
	t.cycleMu.Lock()
	defer t.cycleMu.Unlock()

	active := t.directory.Active()
	if len(active) == 0 {
		return t.Snapshots()
	}

	cached := t.Snapshots()

	results := make(chan fetchResult, len(active))
	var wg sync.WaitGroup

	for _, id := range active {
		client, ok := t.directory.Client(id)
		if !ok {
			continue
		}

		var prev *core.UsageSnapshot
		if snap, ok := cached[id]; ok {
			prev = &snap
		}

		wg.Add(1)
		go func(id core.ProviderID, client core.UsageClient, prev *core.UsageSnapshot) {
			defer wg.Done()
			snap, err := client.Fetch(ctx, prev)
			results <- fetchResult{id: id, snap: snap, err: err}
		}(id, client, prev)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	succeeded := make(map[core.ProviderID]core.UsageSnapshot)
	failed := make(map[core.ProviderID]error)
	for r := range results {
		if r.err != nil {
			t.logger.Warn().Str("provider", string(r.id)).Err(r.err).Msg("fetch failed, keeping stale snapshot")
			failed[r.id] = r.err
			continue
		}
		succeeded[r.id] = r.snap
	}

	// Fan-out has fully joined; merge on this single goroutine.
	now := t.now()

	t.stateMu.Lock()
	working := make(map[core.ProviderID]core.UsageSnapshot, len(t.cache)+len(succeeded))
	for id, snap := range t.cache {
		working[id] = snap
	}
	for id, snap := range succeeded {
		working[id] = snap
		delete(t.lastErrs, id)
	}
	for id, err := range failed {
		t.lastErrs[id] = err
	}
	t.cache = working

	for _, snap := range succeeded {
		t.hist[snap.ProviderID] = append(t.hist[snap.ProviderID], core.SampleFromSnapshot(snap))
	}
	t.pruneLocked(now)
	t.stateMu.Unlock()

	t.snapshots.Save(working)
	t.history.Save(t.historySnapshot())

	t.logger.Debug().
		Int("active", len(active)).
		Int("succeeded", len(succeeded)).
		Int("failed", len(failed)).
		Msg("refresh cycle complete")

	merged := t.Snapshots()
	t.fireUpdate(merged)
	return merged
}

// SetManual overrides one provider's snapshot from user input. Both values
// clamp to zero, the existing burn rate and unit survive, and the write goes
// through the same merge/append/prune/persist path as a refresh.
func (t *Tracker) SetManual(id core.ProviderID, remaining, limit float64) core.UsageSnapshot {
	if remaining < 0 {
		remaining = 0
	}
	if limit < 0 {
		limit = 0
	}

	t.cycleMu.Lock()
	defer t.cycleMu.Unlock()

	now := t.now()

	t.stateMu.Lock()
	prev, hadPrev := t.cache[id]
	snap := core.UsageSnapshot{
		ProviderID: id,
		Remaining:  remaining,
		Limit:      limit,
		UpdatedAt:  now,
		Unit:       core.DefaultUnit(id),
	}
	if hadPrev {
		snap.BurnRatePerMinute = prev.BurnRatePerMinute
		snap.Unit = prev.Unit
	}
	t.cache[id] = snap
	working := make(map[core.ProviderID]core.UsageSnapshot, len(t.cache))
	for pid, s := range t.cache {
		working[pid] = s
	}

	t.hist[id] = append(t.hist[id], core.SampleFromSnapshot(snap))
	t.pruneLocked(now)
	t.stateMu.Unlock()

	t.snapshots.Save(working)
	t.history.Save(t.historySnapshot())

	t.fireUpdate(working)
	return snap
}

// pruneLocked removes samples older than the retention window. Callers hold
// stateMu.
func (t *Tracker) pruneLocked(now time.Time) {
	cutoff := now.Add(-t.retention)
	for id, samples := range t.hist {
		t.hist[id] = lo.Filter(samples, func(s core.UsageSample, _ int) bool {
			return !s.Timestamp.Before(cutoff)
		})
	}
}

func (t *Tracker) historySnapshot() map[core.ProviderID][]core.UsageSample {
	t.stateMu.RLock()
	defer t.stateMu.RUnlock()
	out := make(map[core.ProviderID][]core.UsageSample, len(t.hist))
	for id, samples := range t.hist {
		out[id] = append([]core.UsageSample(nil), samples...)
	}
	return out
}

func (t *Tracker) fireUpdate(snapshots map[core.ProviderID]core.UsageSnapshot) {
	t.stateMu.RLock()
	fn := t.onUpdate
	t.stateMu.RUnlock()
	if fn != nil {
		fn(snapshots)
	}
}
