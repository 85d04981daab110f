package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/rs/zerolog"
)

// HistoryFile is the JSON-file history store: one ordered sample sequence
// per provider, pretty-printed with stable key order and RFC 3339
// timestamps.
type HistoryFile struct {
	path   string
	logger zerolog.Logger
}

func NewHistoryFile(path string, logger zerolog.Logger) *HistoryFile {
	if path == "" {
		path = filepath.Join(DataDir(), "usage_history.json")
	}
	return &HistoryFile{path: path, logger: logger}
}

func (h *HistoryFile) Load() map[core.ProviderID][]core.UsageSample {
	history := make(map[core.ProviderID][]core.UsageSample)

	data, err := os.ReadFile(h.path)
	if err != nil {
		if !os.IsNotExist(err) {
			h.logger.Warn().Err(err).Str("path", h.path).Msg("reading history")
		}
		return history
	}

	if err := json.Unmarshal(data, &history); err != nil {
		h.logger.Warn().Err(err).Str("path", h.path).Msg("history corrupt, starting empty")
		return make(map[core.ProviderID][]core.UsageSample)
	}

	return history
}

func (h *HistoryFile) Save(history map[core.ProviderID][]core.UsageSample) {
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		h.logger.Warn().Err(err).Msg("marshaling history")
		return
	}
	data = append(data, '\n')

	if err := writeFileAtomic(h.path, data); err != nil {
		h.logger.Warn().Err(err).Str("path", h.path).Msg("writing history")
	}
}
