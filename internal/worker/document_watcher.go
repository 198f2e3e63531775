package worker

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"gopherai-docqa/internal/app"
)

const defaultWatchDebounce = 300 * time.Millisecond

type DocumentIngester interface {
	Ingest(ctx context.Context, name string, data []byte) (*app.IngestResult, error)
}

// DocumentWatcher re-ingests a file whenever it changes on disk. The parent
// directory is watched so editors that replace the file are still seen.
type DocumentWatcher struct {
	path     string
	ingester DocumentIngester
	debounce time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDocumentWatcher(path string, ingester DocumentIngester, debounce time.Duration) *DocumentWatcher {
	if debounce <= 0 {
		debounce = defaultWatchDebounce
	}
	return &DocumentWatcher{path: path, ingester: ingester, debounce: debounce}
}

func (w *DocumentWatcher) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve watch path failed: %w", err)
	}
	w.path = abs

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher failed: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		_ = fw.Close()
		return fmt.Errorf("watch %s failed: %w", filepath.Dir(abs), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer fw.Close()

		timer := time.NewTimer(w.debounce)
		timer.Stop()
		defer timer.Stop()

		for {
			select {
			case <-watchCtx.Done():
				return
			case ev, ok := <-fw.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs || !ev.Has(fsnotify.Write|fsnotify.Create) {
					continue
				}
				timer.Reset(w.debounce)
			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				log.Printf("document watcher error: %v", err)
			case <-timer.C:
				if err := w.Reload(watchCtx); err != nil {
					log.Printf("document watcher: %v", err)
				}
			}
		}
	}()
	return nil
}

// Reload reads the watched file and ingests it.
func (w *DocumentWatcher) Reload(ctx context.Context) error {
	data, err := os.ReadFile(w.path)
	if err != nil {
		return fmt.Errorf("read %s failed: %w", w.path, err)
	}
	res, err := w.ingester.Ingest(ctx, filepath.Base(w.path), data)
	if err != nil {
		return fmt.Errorf("ingest %s failed: %w", w.path, err)
	}
	if res.Rebuilt {
		log.Printf("document watcher: reloaded %s (%d chunks)", res.Name, res.ChunkCount)
	}
	return nil
}

func (w *DocumentWatcher) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
