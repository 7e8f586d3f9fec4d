package vault

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
)

// memStore is an in-memory content store keyed by object name.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	putErr  error
	delErr  error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (m *memStore) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = buf.Bytes()
	return "http://store.local/" + key, nil
}

func (m *memStore) Delete(ctx context.Context, locator string) error {
	if m.delErr != nil {
		return m.delErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.objects {
		if "http://store.local/"+key == locator {
			delete(m.objects, key)
		}
	}
	return nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

// memCatalog mimics the Redis list adapter: append pushes to the head.
type memCatalog struct {
	mu        sync.Mutex
	records   [][]byte
	appendErr error
	listErr   error
	removeErr error
}

func (m *memCatalog) Append(ctx context.Context, record []byte) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append([][]byte{record}, m.records...)
	return nil
}

func (m *memCatalog) List(ctx context.Context) ([][]byte, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]byte, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *memCatalog) Remove(ctx context.Context, match func([]byte) bool) (int64, int64, error) {
	if m.removeErr != nil {
		return 0, 0, m.removeErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept [][]byte
	var removed int64
	for _, rec := range m.records {
		if match(rec) {
			removed++
			continue
		}
		kept = append(kept, rec)
	}
	m.records = kept
	return removed, int64(len(kept)), nil
}

func (m *memCatalog) Count(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.records)), nil
}

func (m *memCatalog) Close() error { return nil }

func (m *memCatalog) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

// fakeFetcher serves canned metadata and bytes.
type fakeFetcher struct {
	resolveErr  error
	downloadErr error
	size        int64
	data        []byte
}

func (f *fakeFetcher) Resolve(ctx context.Context, fileID string) (FileMeta, error) {
	if f.resolveErr != nil {
		return FileMeta{}, &MetadataFetchError{Err: f.resolveErr}
	}
	return FileMeta{FileID: fileID, URL: "http://transport.local/files/" + fileID, Size: f.size}, nil
}

func (f *fakeFetcher) Download(ctx context.Context, url string) ([]byte, error) {
	if f.downloadErr != nil {
		return nil, &DownloadError{Err: f.downloadErr}
	}
	return f.data, nil
}

// recordingNotifier captures every status text, optionally failing.
type recordingNotifier struct {
	mu      sync.Mutex
	sends   []string
	edits   []string
	sendErr error
	editErr error
	nextID  int
}

func (n *recordingNotifier) Send(chatID int64, replyTo int, text string) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.sendErr != nil {
		return 0, n.sendErr
	}
	n.sends = append(n.sends, text)
	n.nextID++
	return n.nextID, nil
}

func (n *recordingNotifier) Edit(chatID int64, messageID int, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.editErr != nil {
		return n.editErr
	}
	n.edits = append(n.edits, text)
	return nil
}

func (n *recordingNotifier) lastText() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.edits) > 0 {
		return n.edits[len(n.edits)-1]
	}
	if len(n.sends) > 0 {
		return n.sends[len(n.sends)-1]
	}
	return ""
}

// recordingBroadcaster captures media-deleted notifications.
type recordingBroadcaster struct {
	mu      sync.Mutex
	deleted []string
}

func (b *recordingBroadcaster) MediaDeleted(filename string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deleted = append(b.deleted, filename)
}

// recordingProducer captures published events.
type recordingProducer struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (p *recordingProducer) PublishJSON(ctx context.Context, key, eventType string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, fmt.Sprintf("%s %s", eventType, key))
	return nil
}
