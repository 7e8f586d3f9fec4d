package vault

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"
)

// MediaType classifies a stored media item. The type is carried explicitly
// on every record instead of being re-derived from filename prefixes at
// each consumer.
type MediaType string

const (
	TypeImage MediaType = "image"
	TypeVideo MediaType = "video"
)

// MediaRecord is one catalog entry. URL is the unique key used for
// deletion and matching; Timestamp (epoch milliseconds) is the primary
// ordering key, descending.
type MediaRecord struct {
	URL        string    `json:"url"`
	Filename   string    `json:"filename"`
	Type       MediaType `json:"type"`
	Timestamp  int64     `json:"timestamp"`
	Size       string    `json:"size"`
	SizeBytes  int64     `json:"sizeBytes,omitempty"`
	UploadedBy string    `json:"uploadedBy,omitempty"`
}

// decodeRecord parses a serialized catalog entry. Entries missing the url
// or filename are treated as malformed and dropped from listings rather
// than surfaced as errors.
func decodeRecord(raw []byte) (MediaRecord, bool) {
	var rec MediaRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return MediaRecord{}, false
	}
	if rec.URL == "" || rec.Filename == "" {
		return MediaRecord{}, false
	}
	if rec.Type != TypeImage && rec.Type != TypeVideo {
		rec.Type = TypeFromFilename(rec.Filename)
	}
	return rec, true
}

// newFilename builds a storage name unique within a deployment epoch by
// combining the ingestion instant with the source file's base name. Video
// names carry the vid prefix so directory watchers classify them the same
// way the catalog does.
func newFilename(kind MediaType, sourceName string, now time.Time) string {
	prefix := "img"
	if kind == TypeVideo {
		prefix = "vid"
	}
	base := path.Base(strings.TrimSpace(sourceName))
	if base == "." || base == "/" || base == "" {
		base = "file"
	}
	base = strings.ReplaceAll(base, " ", "_")
	return fmt.Sprintf("%s_%d_%s", prefix, now.UnixMilli(), base)
}

// TypeFromFilename mirrors the catalog's classification rule for consumers
// that only see a name: vid-prefixed names are videos, everything else is
// an image.
func TypeFromFilename(name string) MediaType {
	if strings.HasPrefix(path.Base(name), "vid") {
		return TypeVideo
	}
	return TypeImage
}
