package server

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/florelab/floradb/internal/flora"
)

const reloadDebounce = 100 * time.Millisecond

// WatchCatalogFile re-applies the catalog file to the garden whenever it
// changes on disk. The returned stop function releases the watcher.
//
// A reload that fails validation is logged and skipped; the garden keeps
// its previous catalog.
func (s *Server) WatchCatalogFile(path string, gardenID flora.GardenID) (func(), error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating catalog watcher: %w", err)
	}

	// Watch the directory rather than the file: editors and atomic writers
	// replace files via rename+create, which silently drops a file watch.
	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watching %s: %w", dir, err)
	}

	stopCh := make(chan struct{})
	go s.watchCatalogLoop(watcher, filepath.Clean(path), gardenID, stopCh)

	s.logger.Infof("Watching catalog file: path=%s garden_id=%s", path, gardenID)

	stop := func() {
		close(stopCh)
		_ = watcher.Close()
	}
	return stop, nil
}

func (s *Server) watchCatalogLoop(watcher *fsnotify.Watcher, target string, gardenID flora.GardenID, stopCh <-chan struct{}) {
	debounce := time.NewTimer(0)
	<-debounce.C
	dirty := false

	for {
		select {
		case <-stopCh:
			debounce.Stop()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Coalesce the burst of events a single save produces.
			dirty = true
			debounce.Reset(reloadDebounce)

		case <-debounce.C:
			if !dirty {
				continue
			}
			dirty = false
			if err := s.ApplyCatalogFile(target, gardenID); err != nil {
				s.logger.Warnf("Catalog reload skipped: path=%s error=%v", target, err)
				continue
			}
			s.logger.Infof("Catalog reloaded: path=%s garden_id=%s", target, gardenID)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.logger.Warnf("Catalog watcher error: %v", err)
		}
	}
}
