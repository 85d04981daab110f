package config

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Watcher fires onChange whenever the settings or credentials file is
// written, so the next provider-directory evaluation picks the changes up
// without a restart.
type Watcher struct {
	fsw    *fsnotify.Watcher
	done   chan struct{}
	logger zerolog.Logger
}

// Watch observes the config directory. onChange may be called from the
// watcher's own goroutine.
func Watch(dir string, onChange func(), logger zerolog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{fsw: fsw, done: make(chan struct{}), logger: logger}

	go func() {
		for {
			select {
			case ev, ok := <-fsw.Events:
				if !ok {
					return
				}
				if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				name := filepath.Base(ev.Name)
				if name != "settings.json" && name != "credentials.json" {
					continue
				}
				logger.Debug().Str("file", name).Msg("config change detected")
				onChange()
			case err, ok := <-fsw.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Msg("config watcher error")
			case <-w.done:
				return
			}
		}
	}()

	return w, nil
}

func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	close(w.done)
	return w.fsw.Close()
}
