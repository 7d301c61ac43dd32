// Package importer feeds Excel workbooks dropped into a local directory to
// the server's import endpoint (one-shot or watch mode).
package importer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nagacity/mynaga-console/internal/api"
)

// Options controls drop-folder behavior.
type Options struct {
	Dir      string
	Watch    bool
	Patterns []string // e.g. []string{"*.xlsx", "*.xls"}
	Logger   *log.Logger

	// SettleDelay is how long a file must sit unchanged before upload, so a
	// workbook still being copied in is not sent half-written.
	SettleDelay time.Duration
}

// Watcher uploads matching workbooks from a directory.
type Watcher struct {
	client *api.Client
	opts   Options

	mu   sync.Mutex
	seen map[string]time.Time // path -> modtime at last successful import

	imported int
	errors   int
}

// New constructs a drop-folder watcher.
func New(client *api.Client, opts Options) *Watcher {
	if opts.Logger == nil {
		opts.Logger = log.New(log.Writer(), "[import-folder] ", log.LstdFlags)
	}
	if len(opts.Patterns) == 0 {
		opts.Patterns = []string{"*.xlsx", "*.xls"}
	}
	if opts.SettleDelay <= 0 {
		opts.SettleDelay = 500 * time.Millisecond
	}
	return &Watcher{
		client: client,
		opts:   opts,
		seen:   make(map[string]time.Time),
	}
}

// Run performs an initial pass over the directory and, in watch mode, keeps
// uploading new or rewritten workbooks until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.scanOnce(ctx); err != nil {
		return err
	}

	if !w.opts.Watch {
		w.opts.Logger.Printf("completed one-shot import: files=%d errors=%d", w.imported, w.errors)
		return nil
	}

	return w.watchLoop(ctx)
}

func (w *Watcher) matches(name string) bool {
	lower := strings.ToLower(name)
	for _, pat := range w.opts.Patterns {
		if ok, _ := filepath.Match(strings.ToLower(strings.TrimSpace(pat)), lower); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) scanOnce(ctx context.Context) error {
	entries, err := os.ReadDir(w.opts.Dir)
	if err != nil {
		return fmt.Errorf("read dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !w.matches(e.Name()) {
			continue
		}
		w.importFile(ctx, filepath.Join(w.opts.Dir, e.Name()))
	}
	return nil
}

func (w *Watcher) watchLoop(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.opts.Dir); err != nil {
		return fmt.Errorf("watch add: %w", err)
	}

	w.opts.Logger.Printf("watching %s (patterns: %s)", w.opts.Dir, strings.Join(w.opts.Patterns, ","))

	for {
		select {
		case <-ctx.Done():
			w.opts.Logger.Printf("watch stopping: files=%d errors=%d", w.imported, w.errors)
			return ctx.Err()
		case ev := <-fw.Events:
			if !w.matches(filepath.Base(ev.Name)) {
				continue
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.settle(ctx, ev.Name)
				w.importFile(ctx, ev.Name)
			}
			if ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				w.mu.Lock()
				delete(w.seen, ev.Name)
				w.mu.Unlock()
			}
		case err := <-fw.Errors:
			if err != nil {
				w.opts.Logger.Printf("watch error: %v", err)
			}
		}
	}
}

// settle waits until the file size stops changing, bounded by a few rounds.
func (w *Watcher) settle(ctx context.Context, path string) {
	var lastSize int64 = -1
	for i := 0; i < 10; i++ {
		st, err := os.Stat(path)
		if err != nil {
			return
		}
		if st.Size() == lastSize {
			return
		}
		lastSize = st.Size()
		select {
		case <-ctx.Done():
			return
		case <-time.After(w.opts.SettleDelay):
		}
	}
}

// importFile uploads one workbook unless it was already imported at its
// current modtime. Failures leave the file in place for a retry on the next
// write event.
func (w *Watcher) importFile(ctx context.Context, path string) {
	st, err := os.Stat(path)
	if err != nil {
		w.opts.Logger.Printf("stat %s: %v", path, err)
		w.countError()
		return
	}

	w.mu.Lock()
	prev, ok := w.seen[path]
	w.mu.Unlock()
	if ok && prev.Equal(st.ModTime()) {
		return
	}

	f, err := os.Open(path)
	if err != nil {
		w.opts.Logger.Printf("open %s: %v", path, err)
		w.countError()
		return
	}
	defer f.Close()

	res, err := w.client.ImportExcel(ctx, path, f)
	if err != nil {
		w.opts.Logger.Printf("import %s failed: %v", path, err)
		w.countError()
		return
	}

	w.mu.Lock()
	w.seen[path] = st.ModTime()
	w.imported++
	w.mu.Unlock()

	w.opts.Logger.Printf("imported %s: %d rows, %d row errors", filepath.Base(path), res.ImportedCount, len(res.Errors))
	for _, rowErr := range res.Errors {
		w.opts.Logger.Printf("  %s: %s", filepath.Base(path), rowErr)
	}
}

func (w *Watcher) countError() {
	w.mu.Lock()
	w.errors++
	w.mu.Unlock()
}

// Counts reports totals so far.
func (w *Watcher) Counts() (imported, errors int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.imported, w.errors
}
