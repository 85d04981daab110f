package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/rs/zerolog"
)

func TestSnapshotFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.json")
	s := NewSnapshotFile(path, zerolog.Nop())

	want := map[core.ProviderID]core.UsageSnapshot{
		core.ProviderDeepSeek: {
			ProviderID:        core.ProviderDeepSeek,
			Remaining:         42.5,
			Limit:             100,
			UpdatedAt:         time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			BurnRatePerMinute: 1.5,
			Unit:              core.CurrencyUnit("USD"),
		},
		core.ProviderOpenAI: {
			ProviderID: core.ProviderOpenAI,
			Remaining:  900,
			Limit:      1000,
			UpdatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			Unit:       core.TokensUnit(),
		},
	}

	s.Save(want)

	got := s.Load()
	if len(got) != 2 {
		t.Fatalf("Load() returned %d entries, want 2", len(got))
	}
	for id, snap := range want {
		back := got[id]
		if back.Remaining != snap.Remaining || back.Limit != snap.Limit || back.Unit != snap.Unit {
			t.Errorf("%s: got %+v, want %+v", id, back, snap)
		}
		if !back.UpdatedAt.Equal(snap.UpdatedAt) {
			t.Errorf("%s: updated_at = %v, want %v", id, back.UpdatedAt, snap.UpdatedAt)
		}
	}
}

func TestSnapshotFileMissingAndCorrupt(t *testing.T) {
	dir := t.TempDir()

	missing := NewSnapshotFile(filepath.Join(dir, "missing.json"), zerolog.Nop())
	if got := missing.Load(); len(got) != 0 {
		t.Errorf("missing file: got %d entries, want 0", len(got))
	}

	corruptPath := filepath.Join(dir, "corrupt.json")
	if err := os.WriteFile(corruptPath, []byte("{broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	corrupt := NewSnapshotFile(corruptPath, zerolog.Nop())
	if got := corrupt.Load(); len(got) != 0 {
		t.Errorf("corrupt file: got %d entries, want 0", len(got))
	}
}

func TestSnapshotFileSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewSnapshotFile(filepath.Join(dir, "snapshots.json"), zerolog.Nop())

	s.Save(map[core.ProviderID]core.UsageSnapshot{
		core.ProviderQwen: {ProviderID: core.ProviderQwen},
	})

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want the single store file", len(entries))
	}
}

func TestSnapshotFileSaveFailureIsSwallowed(t *testing.T) {
	// Point the store at a path whose parent is a file, so the write fails.
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSnapshotFile(filepath.Join(blocker, "snapshots.json"), zerolog.Nop())
	s.Save(map[core.ProviderID]core.UsageSnapshot{}) // must not panic
}
