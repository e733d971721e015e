package session

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/picoparser/pkg/log"
)

// changeWatcher flags modifications of the capture file. A session treats
// the file as a snapshot; this only makes violations visible.
type changeWatcher struct {
	w        *fsnotify.Watcher
	path     string
	logger   log.Logger
	modified atomic.Bool
	wg       sync.WaitGroup
}

func newChangeWatcher(path string, logger log.Logger) (*changeWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		w.Close()
		return nil, err
	}
	// Watch the directory so that replace-by-rename is seen too.
	if err := w.Add(filepath.Dir(abs)); err != nil {
		w.Close()
		return nil, err
	}
	cw := &changeWatcher{w: w, path: abs, logger: logger}
	cw.wg.Add(1)
	go cw.run()
	return cw, nil
}

func (cw *changeWatcher) run() {
	defer cw.wg.Done()
	for {
		select {
		case event, ok := <-cw.w.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !cw.modified.Swap(true) {
				cw.logger.Warn("capture file changed during session",
					log.String("op", event.Op.String()))
			}

		case err, ok := <-cw.w.Errors:
			if !ok {
				return
			}
			cw.logger.Error("capture file watch failed", log.Err(err))
		}
	}
}

func (cw *changeWatcher) Modified() bool {
	return cw.modified.Load()
}

func (cw *changeWatcher) Close() error {
	err := cw.w.Close()
	cw.wg.Wait()
	return err
}
