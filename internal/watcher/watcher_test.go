package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/mediavault/internal/vault"
)

type captureSink struct {
	mu      sync.Mutex
	added   []vault.MediaRecord
	deleted []string
}

func (c *captureSink) NewMedia(rec vault.MediaRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.added = append(c.added, rec)
}

func (c *captureSink) MediaDeleted(filename string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.deleted = append(c.deleted, filename)
}

func (c *captureSink) addedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.added)
}

func (c *captureSink) deletedCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deleted)
}

func startWatcher(t *testing.T, dir string, sink *captureSink) {
	t.Helper()
	w, err := New(Params{
		Directory:  dir,
		BaseURL:    "http://localhost:8080/media",
		Quiescence: 50 * time.Millisecond,
		Poll:       10 * time.Millisecond,
		Sink:       sink,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Run(ctx)

	// Give fsnotify a moment to establish the watch.
	time.Sleep(50 * time.Millisecond)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for !cond() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	require.True(t, cond())
}

func TestWatcher_AnnouncesStableFile(t *testing.T) {
	dir := t.TempDir()
	sink := &captureSink{}
	startWatcher(t, dir, sink)

	path := filepath.Join(dir, "vid_1700000000000_clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	waitFor(t, func() bool { return sink.addedCount() == 1 })

	sink.mu.Lock()
	rec := sink.added[0]
	sink.mu.Unlock()

	assert.Equal(t, "vid_1700000000000_clip.mp4", rec.Filename)
	assert.Equal(t, vault.TypeVideo, rec.Type)
	assert.Equal(t, int64(10), rec.SizeBytes)
	assert.Equal(t, "http://localhost:8080/media/vid_1700000000000_clip.mp4", rec.URL)
}

func TestWatcher_DefersUntilWritesQuiesce(t *testing.T) {
	dir := t.TempDir()
	sink := &captureSink{}
	startWatcher(t, dir, sink)

	path := filepath.Join(dir, "img_1_photo.jpg")
	f, err := os.Create(path)
	require.NoError(t, err)

	// Keep the file hot across the quiescence window.
	for i := 0; i < 3; i++ {
		_, err := f.Write([]byte("chunk"))
		require.NoError(t, err)
		require.NoError(t, f.Sync())
		assert.Equal(t, 0, sink.addedCount(), "must not announce a file still being written")
		time.Sleep(30 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	waitFor(t, func() bool { return sink.addedCount() == 1 })
}

func TestWatcher_AnnouncesRemoval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "img_2_photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	sink := &captureSink{}
	startWatcher(t, dir, sink)

	require.NoError(t, os.Remove(path))

	waitFor(t, func() bool { return sink.deletedCount() == 1 })
	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.Equal(t, "img_2_photo.jpg", sink.deleted[0])
}

func TestWatcher_IgnoresHiddenFiles(t *testing.T) {
	dir := t.TempDir()
	sink := &captureSink{}
	startWatcher(t, dir, sink)

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".tmp-upload"), []byte("x"), 0o644))

	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, 0, sink.addedCount())
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Params{Sink: &captureSink{}})
	assert.Error(t, err)

	_, err = New(Params{Directory: t.TempDir()})
	assert.Error(t, err)
}
