// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package watch reports when documents being compared change on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/jeranaias/confdiff/internal/config"
)

// Event reports that a watched file changed.
type Event struct {
	Path string
	Time time.Time
}

// Watcher delivers change events for individual files.
type Watcher interface {
	// Add starts watching a file.
	Add(path string) error
	// Remove stops watching a file.
	Remove(path string) error
	// Events delivers one event per settled change.
	Events() <-chan Event
	// Close stops watching and releases resources.
	Close() error
}

// Options tunes change delivery.
type Options struct {
	// Debounce waits for a file to stay quiet this long before reporting it.
	Debounce time.Duration
	// MinInterval is the shortest gap between two events for the same file.
	MinInterval time.Duration
	// PollInterval is the scan period of the polling fallback.
	PollInterval time.Duration
}

// OptionsFromConfig converts the watch configuration.
func OptionsFromConfig(cfg config.WatchConfig) Options {
	return Options{
		Debounce:     time.Duration(cfg.DebounceMs) * time.Millisecond,
		MinInterval:  time.Duration(cfg.MinIntervalMs) * time.Millisecond,
		PollInterval: time.Duration(cfg.PollIntervalMs) * time.Millisecond,
	}
}

// New returns an fsnotify watcher, or a polling watcher when the platform
// cannot provide one.
func New(opts Options, log zerolog.Logger) Watcher {
	fw, err := NewFsnotifyWatcher(opts, log)
	if err == nil {
		return fw
	}
	log.Warn().Err(err).Msg("fsnotify unavailable, polling for changes")
	return NewPollingWatcher(opts, log)
}

func normalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// =============================================================================
// FSNOTIFY WATCHER
// =============================================================================

// FsnotifyWatcher watches the directory of each file so that editors which
// save by writing a new file and renaming it over the old one are noticed.
type FsnotifyWatcher struct {
	watcher *fsnotify.Watcher
	opts    Options
	log     zerolog.Logger
	events  chan Event

	mu       sync.Mutex
	files    map[string]bool
	dirs     map[string]int // directory -> watched files in it
	pending  map[string]time.Time
	limiters map[string]*rate.Limiter

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewFsnotifyWatcher creates a running fsnotify-based watcher.
func NewFsnotifyWatcher(opts Options, log zerolog.Logger) (*FsnotifyWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	fw := &FsnotifyWatcher{
		watcher:  w,
		opts:     opts,
		log:      log,
		events:   make(chan Event, 16),
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		pending:  make(map[string]time.Time),
		limiters: make(map[string]*rate.Limiter),
		ctx:      ctx,
		cancel:   cancel,
	}

	fw.wg.Add(2)
	go fw.processEvents()
	go fw.processPending()
	return fw, nil
}

// Add implements Watcher.
func (fw *FsnotifyWatcher) Add(path string) error {
	path, err := normalize(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.files[path] {
		return nil
	}
	dir := filepath.Dir(path)
	if fw.dirs[dir] == 0 {
		if err := fw.watcher.Add(dir); err != nil {
			return err
		}
	}
	fw.dirs[dir]++
	fw.files[path] = true
	return nil
}

// Remove implements Watcher.
func (fw *FsnotifyWatcher) Remove(path string) error {
	path, err := normalize(path)
	if err != nil {
		return err
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	if !fw.files[path] {
		return nil
	}
	delete(fw.files, path)
	delete(fw.pending, path)
	delete(fw.limiters, path)

	dir := filepath.Dir(path)
	fw.dirs[dir]--
	if fw.dirs[dir] == 0 {
		delete(fw.dirs, dir)
		return fw.watcher.Remove(dir)
	}
	return nil
}

// Events implements Watcher.
func (fw *FsnotifyWatcher) Events() <-chan Event {
	return fw.events
}

// processEvents records changes to watched files.
func (fw *FsnotifyWatcher) processEvents() {
	defer fw.wg.Done()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0 {
				fw.markChanged(filepath.Clean(event.Name))
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (fw *FsnotifyWatcher) markChanged(path string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.files[path] {
		fw.pending[path] = time.Now()
	}
}

// limiter returns the per-file emission limiter. Caller holds mu.
func (fw *FsnotifyWatcher) limiter(path string) *rate.Limiter {
	l, ok := fw.limiters[path]
	if !ok {
		limit := rate.Inf
		if fw.opts.MinInterval > 0 {
			limit = rate.Every(fw.opts.MinInterval)
		}
		l = rate.NewLimiter(limit, 1)
		fw.limiters[path] = l
	}
	return l
}

// processPending emits changes that have been quiet for the debounce period.
// A change arriving faster than MinInterval stays pending until allowed.
func (fw *FsnotifyWatcher) processPending() {
	defer fw.wg.Done()

	tick := 50 * time.Millisecond
	if fw.opts.Debounce > 0 && fw.opts.Debounce/2 < tick {
		tick = max(fw.opts.Debounce/2, 5*time.Millisecond)
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-fw.ctx.Done():
			return

		case now := <-ticker.C:
			var ready []Event

			fw.mu.Lock()
			for path, changed := range fw.pending {
				if now.Sub(changed) < fw.opts.Debounce {
					continue
				}
				if !fw.limiter(path).AllowN(now, 1) {
					continue
				}
				delete(fw.pending, path)
				ready = append(ready, Event{Path: path, Time: changed})
			}
			fw.mu.Unlock()

			for _, ev := range ready {
				select {
				case fw.events <- ev:
					fw.log.Debug().Str("path", ev.Path).Msg("document changed")
				case <-fw.ctx.Done():
					return
				}
			}
		}
	}
}

// Close implements Watcher. The events channel is closed once both
// goroutines have stopped.
func (fw *FsnotifyWatcher) Close() error {
	var err error
	fw.closeOnce.Do(func() {
		fw.cancel()
		err = fw.watcher.Close()
		fw.wg.Wait()
		close(fw.events)
	})
	return err
}

// =============================================================================
// POLLING WATCHER (FALLBACK)
// =============================================================================

type fileStamp struct {
	modTime time.Time
	size    int64
	exists  bool
}

func stamp(path string) fileStamp {
	info, err := os.Stat(path)
	if err != nil {
		return fileStamp{}
	}
	return fileStamp{modTime: info.ModTime(), size: info.Size(), exists: true}
}

// PollingWatcher detects changes by comparing modification times and sizes.
type PollingWatcher struct {
	opts   Options
	log    zerolog.Logger
	events chan Event

	mu    sync.Mutex
	files map[string]fileStamp

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewPollingWatcher creates a running polling watcher.
func NewPollingWatcher(opts Options, log zerolog.Logger) *PollingWatcher {
	if opts.PollInterval <= 0 {
		opts.PollInterval = time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	pw := &PollingWatcher{
		opts:   opts,
		log:    log,
		events: make(chan Event, 16),
		files:  make(map[string]fileStamp),
		ctx:    ctx,
		cancel: cancel,
	}
	pw.wg.Add(1)
	go pw.poll()
	return pw
}

// Add implements Watcher.
func (pw *PollingWatcher) Add(path string) error {
	path, err := normalize(path)
	if err != nil {
		return err
	}
	pw.mu.Lock()
	defer pw.mu.Unlock()
	if _, ok := pw.files[path]; !ok {
		pw.files[path] = stamp(path)
	}
	return nil
}

// Remove implements Watcher.
func (pw *PollingWatcher) Remove(path string) error {
	path, err := normalize(path)
	if err != nil {
		return err
	}
	pw.mu.Lock()
	defer pw.mu.Unlock()
	delete(pw.files, path)
	return nil
}

// Events implements Watcher.
func (pw *PollingWatcher) Events() <-chan Event {
	return pw.events
}

func (pw *PollingWatcher) poll() {
	defer pw.wg.Done()

	ticker := time.NewTicker(pw.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-pw.ctx.Done():
			return
		case now := <-ticker.C:
			var changed []Event

			pw.mu.Lock()
			for path, old := range pw.files {
				cur := stamp(path)
				if cur != old {
					pw.files[path] = cur
					changed = append(changed, Event{Path: path, Time: now})
				}
			}
			pw.mu.Unlock()

			for _, ev := range changed {
				select {
				case pw.events <- ev:
				case <-pw.ctx.Done():
					return
				}
			}
		}
	}
}

// Close implements Watcher.
func (pw *PollingWatcher) Close() error {
	pw.closeOnce.Do(func() {
		pw.cancel()
		pw.wg.Wait()
		close(pw.events)
	})
	return nil
}
