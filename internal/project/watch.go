package project

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceWindow batches the event bursts editors produce on save so one
// save triggers one regeneration.
const debounceWindow = 250 * time.Millisecond

// Watch regenerates on every change to a matching source unit under root
// until the context is done. run is called once up front, then once per
// change batch; it owns its own error reporting so a broken source keeps
// the watch alive.
func Watch(ctx context.Context, root string, cfg Config, run func()) error {
	m, err := newMatcher(cfg)
	if err != nil {
		return err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	outDir := filepath.Clean(filepath.Join(root, cfg.OutDir))
	addDirs := func(base string) error {
		return filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return err
			}
			if filepath.Clean(path) == outDir {
				return filepath.SkipDir
			}
			return w.Add(path)
		})
	}
	if err := addDirs(root); err != nil {
		return err
	}

	run()

	var pending *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			// New directories need their own watch before anything inside
			// them can be seen.
			if ev.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					_ = addDirs(ev.Name)
				}
			}
			rel, err := filepath.Rel(root, ev.Name)
			if err != nil || !m.match(rel) {
				continue
			}
			if pending == nil {
				pending = time.NewTimer(debounceWindow)
				fire = pending.C
			} else {
				pending.Reset(debounceWindow)
			}

		case <-fire:
			pending = nil
			fire = nil
			run()

		case _, ok := <-w.Errors:
			if !ok {
				return nil
			}
		}
	}
}
