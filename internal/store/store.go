// Package store persists the per-provider snapshot cache and sample history.
//
// Both stores share one contract: Load returns an empty mapping when the
// backing data is missing or corrupt, and Save is best-effort: a failed
// write is logged and swallowed so the in-memory state stays authoritative
// and the previous on-disk generation is never corrupted.
package store

import (
	"os"
	"path/filepath"

	"github.com/janekbaraniewski/tokentrack/internal/core"
)

type SnapshotStore interface {
	Load() map[core.ProviderID]core.UsageSnapshot
	Save(snapshots map[core.ProviderID]core.UsageSnapshot)
}

type HistoryStore interface {
	Load() map[core.ProviderID][]core.UsageSample
	Save(history map[core.ProviderID][]core.UsageSample)
}

// DataDir is where the JSON stores and the sqlite history live.
func DataDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "tokentrack")
}

// writeFileAtomic replaces path all-or-nothing: the payload lands in a temp
// file first and is renamed over the target.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}

	return os.Rename(tmpName, path)
}
