package cfg

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

const reloadDebounce = 500 * time.Millisecond

// Watch signals on the returned channel when the configuration file is written or replaced.
// Bursts of writes within the debounce window produce one signal. The watcher stops with ctx.
func Watch(ctx context.Context, pathTo string) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// editors replace the file, so watch its directory
	if err := watcher.Add(filepath.Dir(pathTo)); err != nil {
		watcher.Close()
		return nil, err
	}

	target := filepath.Clean(pathTo)
	changes := make(chan struct{}, 1)
	go func() {
		defer watcher.Close()
		var debounce <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					debounce = time.After(reloadDebounce)
				}
			case <-debounce:
				debounce = nil
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warning("Config watcher error")
			}
		}
	}()
	return changes, nil
}
