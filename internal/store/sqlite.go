package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/janekbaraniewski/tokentrack/internal/core"
	"github.com/rs/zerolog"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteHistory keeps the sample history in a sqlite database instead of
// the JSON file. It honors the same Load/Save contract: Load yields an
// empty mapping on any failure, Save replaces the full history and swallows
// errors.
type SQLiteHistory struct {
	db     *sql.DB
	logger zerolog.Logger
}

func OpenSQLiteHistory(path string, logger zerolog.Logger) (*SQLiteHistory, error) {
	if path == "" {
		path = filepath.Join(DataDir(), "usage_history.db")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating DB dir: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: opening DB: %w", err)
	}

	h := NewSQLiteHistory(db, logger)
	if err := h.Init(context.Background()); err != nil {
		db.Close()
		return nil, err
	}
	return h, nil
}

func NewSQLiteHistory(db *sql.DB, logger zerolog.Logger) *SQLiteHistory {
	return &SQLiteHistory{db: db, logger: logger}
}

func (h *SQLiteHistory) Close() error {
	if h == nil || h.db == nil {
		return nil
	}
	return h.db.Close()
}

func (h *SQLiteHistory) Init(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS usage_samples (
			sample_id TEXT PRIMARY KEY,
			provider_id TEXT NOT NULL,
			remaining REAL NOT NULL,
			limit_value REAL NOT NULL,
			recorded_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_usage_samples_provider_time ON usage_samples(provider_id, recorded_at);`,
	}
	for _, stmt := range stmts {
		if _, err := h.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: init schema: %w", err)
		}
	}
	return nil
}

func (h *SQLiteHistory) Load() map[core.ProviderID][]core.UsageSample {
	history := make(map[core.ProviderID][]core.UsageSample)

	rows, err := h.db.Query(`
		SELECT sample_id, provider_id, remaining, limit_value, recorded_at
		FROM usage_samples
		ORDER BY provider_id, recorded_at`)
	if err != nil {
		h.logger.Warn().Err(err).Msg("reading sqlite history")
		return history
	}
	defer rows.Close()

	for rows.Next() {
		var (
			sample     core.UsageSample
			providerID string
			recordedAt string
		)
		if err := rows.Scan(&sample.ID, &providerID, &sample.Remaining, &sample.Limit, &recordedAt); err != nil {
			h.logger.Warn().Err(err).Msg("scanning sqlite history row")
			return make(map[core.ProviderID][]core.UsageSample)
		}

		ts, err := time.Parse(time.RFC3339Nano, recordedAt)
		if err != nil {
			h.logger.Warn().Err(err).Str("recorded_at", recordedAt).Msg("bad timestamp in sqlite history")
			return make(map[core.ProviderID][]core.UsageSample)
		}

		sample.ProviderID = core.ProviderID(providerID)
		sample.Timestamp = ts
		history[sample.ProviderID] = append(history[sample.ProviderID], sample)
	}

	if err := rows.Err(); err != nil {
		h.logger.Warn().Err(err).Msg("iterating sqlite history")
		return make(map[core.ProviderID][]core.UsageSample)
	}

	return history
}

func (h *SQLiteHistory) Save(history map[core.ProviderID][]core.UsageSample) {
	tx, err := h.db.Begin()
	if err != nil {
		h.logger.Warn().Err(err).Msg("beginning sqlite history save")
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM usage_samples`); err != nil {
		h.logger.Warn().Err(err).Msg("clearing sqlite history")
		return
	}

	stmt, err := tx.Prepare(`
		INSERT INTO usage_samples (sample_id, provider_id, remaining, limit_value, recorded_at)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		h.logger.Warn().Err(err).Msg("preparing sqlite history insert")
		return
	}
	defer stmt.Close()

	for providerID, samples := range history {
		for _, sample := range samples {
			_, err := stmt.Exec(
				sample.ID,
				string(providerID),
				sample.Remaining,
				sample.Limit,
				sample.Timestamp.UTC().Format(time.RFC3339Nano),
			)
			if err != nil {
				h.logger.Warn().Err(err).Str("provider", string(providerID)).Msg("inserting sqlite history sample")
				return
			}
		}
	}

	if err := tx.Commit(); err != nil {
		h.logger.Warn().Err(err).Msg("committing sqlite history save")
	}
}
