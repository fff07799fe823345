package jsonfile

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const (
	// Editors and our own atomic rename produce bursts of events per save.
	settleDelay = 50 * time.Millisecond
	changeQueue = 100
)

// Change reports that the file for Key was written or removed.
type Change struct {
	Key       string
	Timestamp time.Time
}

type subscription struct {
	pattern string
	ch      chan Change
}

// Watcher reports key files in a Store directory changed by any process,
// including other tick instances.
type Watcher struct {
	dir string
	fs  *fsnotify.Watcher
	log zerolog.Logger

	mu      sync.Mutex
	closed  bool
	subs    []*subscription
	pending map[string]*time.Timer

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWatcher starts watching dir, creating it first if needed.
func NewWatcher(dir string, log zerolog.Logger) (*Watcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create watch dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		dir:     dir,
		fs:      fw,
		log:     log.With().Str("cmp", "kv-watcher").Logger(),
		pending: map[string]*time.Timer{},
		done:    make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()

	return w, nil
}

// Watch subscribes to keys matching a doublestar glob ("" means every key).
// The channel closes when ctx ends or the watcher closes. A subscriber that
// falls behind misses changes rather than stalling the watcher.
func (w *Watcher) Watch(ctx context.Context, pattern string) (<-chan Change, error) {
	if pattern == "" {
		pattern = "*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("watch %q: %w", pattern, doublestar.ErrBadPattern)
	}

	sub := &subscription{pattern: pattern, ch: make(chan Change, changeQueue)}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		close(sub.ch)
		return sub.ch, nil
	}
	w.subs = append(w.subs, sub)
	w.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			w.drop(sub)
		case <-w.done:
		}
	}()

	return sub.ch, nil
}

// Close stops the watcher and closes every subscription channel.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	for _, t := range w.pending {
		t.Stop()
	}
	for _, sub := range w.subs {
		close(sub.ch)
	}
	w.subs = nil
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) drop(sub *subscription) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i := slices.Index(w.subs, sub); i >= 0 {
		w.subs = slices.Delete(w.subs, i, i+1)
		close(sub.ch)
	}
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			// Temp files from in-flight writes are not keys.
			if key, ok := KeyFromFile(ev.Name); ok {
				w.settle(key)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Str("dir", w.dir).Msg("fsnotify error")
		}
	}
}

// settle restarts the key's timer so a burst of events yields one Change.
func (w *Watcher) settle(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if t, ok := w.pending[key]; ok {
		t.Reset(settleDelay)
		return
	}
	w.pending[key] = time.AfterFunc(settleDelay, func() { w.emit(key) })
}

func (w *Watcher) emit(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.pending, key)
	if w.closed {
		return
	}

	change := Change{Key: key, Timestamp: time.Now()}
	for _, sub := range w.subs {
		if ok, _ := doublestar.Match(sub.pattern, key); !ok {
			continue
		}
		select {
		case sub.ch <- change:
		default:
		}
	}
}
