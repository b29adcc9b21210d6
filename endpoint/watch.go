package endpoint

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDelay is how long the watcher waits after the last change to
// the services file before reloading it.
const DefaultReloadDelay = 500 * time.Millisecond

// Logger is the subset of the logger package used by ServicesWatcher.
type Logger interface {
	InfoWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
	WarnWithContext(ctx context.Context, msg string, err error, fields ...map[string]interface{})
}

// ServicesWatcher reloads a services file into a Resolver whenever the file
// changes. Inline entries are merged over every reload. A file that fails to
// parse leaves the previous table in place.
type ServicesWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	inline   *Services
	resolver *Resolver
	delay    time.Duration
	logger   Logger
}

// NewServicesWatcher watches the directory of path, so editors that replace
// the file by rename are seen too.
func NewServicesWatcher(path string, inline *Services, resolver *Resolver) (*ServicesWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %q: %w", path, err)
	}
	return &ServicesWatcher{
		watcher:  watcher,
		path:     filepath.Clean(path),
		inline:   inline,
		resolver: resolver,
		delay:    DefaultReloadDelay,
	}, nil
}

// WithLogger attaches a logger for reload results.
func (w *ServicesWatcher) WithLogger(logger Logger) *ServicesWatcher {
	w.logger = logger
	return w
}

// WithDelay changes the debounce delay.
func (w *ServicesWatcher) WithDelay(d time.Duration) *ServicesWatcher {
	if d > 0 {
		w.delay = d
	}
	return w
}

// Reload reads the file now and installs it in the resolver.
func (w *ServicesWatcher) Reload() error {
	services, err := LoadServicesFile(w.path)
	if err != nil {
		return err
	}
	w.resolver.SetServices(services.Merge(w.inline))
	return nil
}

// Run handles file events until ctx is done. It closes the watcher on return.
func (w *ServicesWatcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(w.delay, func() { w.reload(ctx) })

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.warn(ctx, "services file watcher error", err)
		}
	}
}

func (w *ServicesWatcher) reload(ctx context.Context) {
	if err := w.Reload(); err != nil {
		w.warn(ctx, "services file reload failed, keeping previous table", err)
		return
	}
	if w.logger != nil {
		w.logger.InfoWithContext(ctx, "services file reloaded", nil, map[string]interface{}{
			"path":    w.path,
			"entries": w.resolver.Services().Len(),
		})
	}
}

func (w *ServicesWatcher) warn(ctx context.Context, msg string, err error) {
	if w.logger != nil {
		w.logger.WarnWithContext(ctx, msg, err, map[string]interface{}{"path": w.path})
	}
}
