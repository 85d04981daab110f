package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/rs/zerolog"
)

// SnapshotFile is the JSON-file snapshot cache, keyed by provider ID.
type SnapshotFile struct {
	path   string
	logger zerolog.Logger
}

func NewSnapshotFile(path string, logger zerolog.Logger) *SnapshotFile {
	if path == "" {
		path = filepath.Join(DataDir(), "usage_snapshots.json")
	}
	return &SnapshotFile{path: path, logger: logger}
}

func (s *SnapshotFile) Load() map[core.ProviderID]core.UsageSnapshot {
	snapshots := make(map[core.ProviderID]core.UsageSnapshot)

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("reading snapshot cache")
		}
		return snapshots
	}

	if err := json.Unmarshal(data, &snapshots); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("snapshot cache corrupt, starting empty")
		return make(map[core.ProviderID]core.UsageSnapshot)
	}

	return snapshots
}

func (s *SnapshotFile) Save(snapshots map[core.ProviderID]core.UsageSnapshot) {
	data, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		s.logger.Warn().Err(err).Msg("marshaling snapshot cache")
		return
	}
	data = append(data, '\n')

	if err := writeFileAtomic(s.path, data); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("writing snapshot cache")
	}
}
