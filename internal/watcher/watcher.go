// Package watcher observes the content directory and announces additions
// and removals to live viewers, independent of which writer produced them.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/your-org/mediavault/internal/vault"
)

// Broadcaster receives the stable-file and removal notifications.
type Broadcaster interface {
	NewMedia(rec vault.MediaRecord)
	MediaDeleted(filename string)
}

// Watcher debounces filesystem events: a file is announced only after no
// further writes have hit it for the quiescence window, so viewers never
// see a partially written object. The debouncer is timer-driven and never
// delays unrelated notifications.
type Watcher struct {
	dir        string
	baseURL    string
	quiescence time.Duration
	poll       time.Duration
	sink       Broadcaster
	logger     *zap.Logger

	mu      sync.Mutex
	pending map[string]time.Time
}

type Params struct {
	Directory  string
	BaseURL    string
	Quiescence time.Duration
	Poll       time.Duration
	Sink       Broadcaster
	Logger     *zap.Logger
}

// New constructs a Watcher over the given directory.
func New(p Params) (*Watcher, error) {
	if p.Directory == "" {
		return nil, fmt.Errorf("watcher requires a directory")
	}
	if p.Sink == nil {
		return nil, fmt.Errorf("watcher requires a broadcaster")
	}
	w := &Watcher{
		dir:        p.Directory,
		baseURL:    strings.TrimRight(p.BaseURL, "/"),
		quiescence: p.Quiescence,
		poll:       p.Poll,
		sink:       p.Sink,
		logger:     p.Logger,
		pending:    make(map[string]time.Time),
	}
	if w.quiescence == 0 {
		w.quiescence = 2 * time.Second
	}
	if w.poll == 0 {
		w.poll = 100 * time.Millisecond
	}
	if w.logger == nil {
		w.logger = zap.NewNop()
	}
	return w, nil
}

// Run watches until the context is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fs watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	ticker := time.NewTicker(w.poll)
	defer ticker.Stop()

	w.logger.Info("watching content directory", zap.String("dir", w.dir))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ev)
		case <-ticker.C:
			w.flush()
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("fs watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if strings.HasPrefix(name, ".") {
		return
	}

	switch {
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		w.mu.Lock()
		w.pending[ev.Name] = time.Now()
		w.mu.Unlock()
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.mu.Lock()
		delete(w.pending, ev.Name)
		w.mu.Unlock()
		w.sink.MediaDeleted(name)
	}
}

// flush announces every pending file whose last write is older than the
// quiescence window.
func (w *Watcher) flush() {
	now := time.Now()

	w.mu.Lock()
	var stable []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.quiescence {
			stable = append(stable, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range stable {
		info, err := os.Stat(path)
		if err != nil {
			w.logger.Warn("stat stable file failed", zap.String("path", path), zap.Error(err))
			continue
		}
		if info.IsDir() {
			continue
		}
		name := info.Name()
		w.sink.NewMedia(vault.MediaRecord{
			URL:       w.baseURL + "/" + name,
			Filename:  name,
			Type:      vault.TypeFromFilename(name),
			Timestamp: info.ModTime().UnixMilli(),
			Size:      humanize.Bytes(uint64(info.Size())),
			SizeBytes: info.Size(),
		})
	}
}
