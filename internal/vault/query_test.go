package vault

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendRecord(t *testing.T, cat *memCatalog, rec MediaRecord) {
	t.Helper()
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	require.NoError(t, cat.Append(context.Background(), raw))
}

func TestHistory_SortedDescending(t *testing.T) {
	f := newFixture(t)
	// Insert out of timestamp order.
	appendRecord(t, f.catalog, MediaRecord{URL: "u1", Filename: "img_1", Type: TypeImage, Timestamp: 100})
	appendRecord(t, f.catalog, MediaRecord{URL: "u3", Filename: "img_3", Type: TypeImage, Timestamp: 300})
	appendRecord(t, f.catalog, MediaRecord{URL: "u2", Filename: "img_2", Type: TypeImage, Timestamp: 200})

	history, err := f.service.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []string{"u3", "u2", "u1"},
		[]string{history[0].URL, history[1].URL, history[2].URL})
}

func TestHistory_TiesBrokenByInsertionOrder(t *testing.T) {
	f := newFixture(t)
	appendRecord(t, f.catalog, MediaRecord{URL: "older", Filename: "img_a", Type: TypeImage, Timestamp: 100})
	appendRecord(t, f.catalog, MediaRecord{URL: "newer", Filename: "img_b", Type: TypeImage, Timestamp: 100})

	history, err := f.service.History(context.Background())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "newer", history[0].URL, "most recent insertion first")
}

func TestHistory_DropsMalformedEntries(t *testing.T) {
	f := newFixture(t)
	appendRecord(t, f.catalog, MediaRecord{URL: "u1", Filename: "img_1", Type: TypeImage, Timestamp: 100})
	require.NoError(t, f.catalog.Append(context.Background(), []byte("{{corrupt")))
	require.NoError(t, f.catalog.Append(context.Background(), []byte(`{"timestamp":5}`)))

	history, err := f.service.History(context.Background())
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestLocators(t *testing.T) {
	f := newFixture(t)
	appendRecord(t, f.catalog, MediaRecord{URL: "u1", Filename: "img_1", Type: TypeImage, Timestamp: 100})
	appendRecord(t, f.catalog, MediaRecord{URL: "u2", Filename: "vid_2", Type: TypeVideo, Timestamp: 200})

	urls, err := f.service.Locators(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"u2", "u1"}, urls)
}

func TestStats_CountsAndSizes(t *testing.T) {
	f := newFixture(t)
	appendRecord(t, f.catalog, MediaRecord{URL: "u1", Filename: "img_1", Type: TypeImage, Timestamp: 1, SizeBytes: 1000})
	appendRecord(t, f.catalog, MediaRecord{URL: "u2", Filename: "vid_2", Type: TypeVideo, Timestamp: 2, Size: "2 KB"})
	appendRecord(t, f.catalog, MediaRecord{URL: "u3", Filename: "img_3", Type: TypeImage, Timestamp: 3, Size: "1 MB"})

	stats, err := f.service.Stats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, stats.TotalFiles)
	assert.Equal(t, 2, stats.Images)
	assert.Equal(t, 1, stats.Videos)
	assert.Equal(t, stats.Images+stats.Videos, stats.TotalFiles)
	assert.Equal(t, uint64(1000+2000+1000000), stats.TotalSizeBytes)
	assert.NotEmpty(t, stats.TotalSize)
}

func TestStats_SkipsUnparsableSizes(t *testing.T) {
	f := newFixture(t)
	appendRecord(t, f.catalog, MediaRecord{URL: "u1", Filename: "img_1", Type: TypeImage, Timestamp: 1, Size: "???"})
	appendRecord(t, f.catalog, MediaRecord{URL: "u2", Filename: "img_2", Type: TypeImage, Timestamp: 2, SizeBytes: 500})

	stats, err := f.service.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalFiles)
	assert.Equal(t, uint64(500), stats.TotalSizeBytes)
}
