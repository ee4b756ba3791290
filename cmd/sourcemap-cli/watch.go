package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/MadAppGang/sourcemap/internal/cache"
	"github.com/MadAppGang/sourcemap/internal/logging"
	"github.com/MadAppGang/sourcemap/pkg/sourcemap"
)

// mapWatcher recursively watches a directory for changes to *.map files,
// debouncing bursts of events the way an editor's save-then-format
// sequence produces. Only events on *.map files trigger a rewrite; a
// change to a source a map references does not. It is adapted from
// a recursive fsnotify watcher that originally debounced saves of a
// different file extension; the debounce/ignore-directory shape carries
// over unchanged, only the file filter and the reaction differ.
type mapWatcher struct {
	watcher *fsnotify.Watcher
	logger  logging.Logger
	cache   *cache.DecodeCache
	opts    sourcemap.RewriteOptions

	debounceDur   time.Duration
	debounceTimer *time.Timer
	pending       map[string]bool
	mu            sync.Mutex
	done          chan struct{}
}

var watchIgnoreDirs = map[string]bool{
	"node_modules": true,
	"vendor":       true,
	".git":         true,
	"dist":         true,
	"build":        true,
}

func newMapWatcher(root string, logger logging.Logger, dc *cache.DecodeCache, opts sourcemap.RewriteOptions) (*mapWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	mw := &mapWatcher{
		watcher:     w,
		logger:      logger,
		cache:       dc,
		opts:        opts,
		debounceDur: 500 * time.Millisecond,
		pending:     make(map[string]bool),
		done:        make(chan struct{}),
	}

	if err := mw.addRecursive(root); err != nil {
		w.Close()
		return nil, err
	}
	go mw.loop()
	logger.Infof("watching %s for *.map changes (debounce %s)", root, mw.debounceDur)
	return mw, nil
}

func (mw *mapWatcher) addRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if watchIgnoreDirs[info.Name()] || (strings.HasPrefix(info.Name(), ".") && info.Name() != ".") {
				return filepath.SkipDir
			}
			if err := mw.watcher.Add(path); err != nil {
				mw.logger.Warnf("failed to watch %s: %v", path, err)
			}
		}
		return nil
	})
}

func (mw *mapWatcher) loop() {
	for {
		select {
		case ev, ok := <-mw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&fsnotify.Create == fsnotify.Create {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					mw.watcher.Add(ev.Name)
					continue
				}
			}
			if !strings.HasSuffix(ev.Name, ".map") {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			mw.schedule(ev.Name)

		case err, ok := <-mw.watcher.Errors:
			if !ok {
				return
			}
			mw.logger.Errorf("watch error: %v", err)

		case <-mw.done:
			return
		}
	}
}

func (mw *mapWatcher) schedule(path string) {
	mw.mu.Lock()
	defer mw.mu.Unlock()
	mw.pending[path] = true
	if mw.debounceTimer != nil {
		mw.debounceTimer.Stop()
	}
	mw.debounceTimer = time.AfterFunc(mw.debounceDur, mw.flush)
}

func (mw *mapWatcher) flush() {
	mw.mu.Lock()
	paths := make([]string, 0, len(mw.pending))
	for p := range mw.pending {
		paths = append(paths, p)
	}
	mw.pending = make(map[string]bool)
	mw.mu.Unlock()

	for _, path := range paths {
		mw.logger.Debugf("processing changed map: %s", path)
		mw.cache.Invalidate(path)
		if err := mw.rewriteInPlace(path); err != nil {
			mw.logger.Errorf("rewrite of %s failed: %v", path, err)
		}
	}
}

func (mw *mapWatcher) rewriteInPlace(path string) error {
	dm, err := mw.cache.Get(path)
	if err != nil {
		return err
	}
	sm, ok := dm.AsRegular()
	if !ok {
		mw.logger.Debugf("skipping indexed map %s (flatten first)", path)
		return nil
	}

	opts := mw.opts
	opts.LoadLocalSourceContents = true
	if opts.BasePath == "" {
		opts.BasePath = filepath.Dir(path)
	}

	out, err := sourcemap.Rewrite(sm, opts)
	if err != nil {
		return err
	}
	data, err := out.Encode()
	if err != nil {
		return err
	}
	// Writing the watched file back fires another event for it; skipping
	// the write when the rewrite reached its fixed point breaks the cycle.
	if prev, err := os.ReadFile(path); err == nil && bytes.Equal(prev, data) {
		mw.logger.Debugf("%s already rewritten, skipping write", path)
		return nil
	}
	mw.logger.Infof("rewrote %s (%d tokens)", path, out.TokenCount())
	return os.WriteFile(path, data, 0o644)
}

func (mw *mapWatcher) Close() error {
	close(mw.done)
	return mw.watcher.Close()
}

func newWatchCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Watch a directory of *.map files and re-run rewrite --load-local on change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dc := cache.New(state.logger)
			mw, err := newMapWatcher(args[0], state.logger, dc, state.cfg.Rewrite.ToOptions())
			if err != nil {
				return err
			}
			defer mw.Close()
			select {}
		},
	}
	return cmd
}
