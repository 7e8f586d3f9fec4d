package vault

import (
	"context"
	"fmt"
	"sort"

	"github.com/dustin/go-humanize"
)

// StatsResult aggregates the live catalog.
type StatsResult struct {
	TotalFiles     int    `json:"totalFiles"`
	Images         int    `json:"images"`
	Videos         int    `json:"videos"`
	TotalSizeBytes uint64 `json:"totalSizeBytes"`
	TotalSize      string `json:"totalSize"`
}

// History returns every catalog record, newest first. Malformed entries
// are dropped silently; one corrupt record must not fail the listing.
func (s *Service) History(ctx context.Context) ([]MediaRecord, error) {
	raws, err := s.catalog.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}

	records := make([]MediaRecord, 0, len(raws))
	for _, raw := range raws {
		rec, ok := decodeRecord(raw)
		if !ok {
			continue
		}
		records = append(records, rec)
	}

	// The list is already newest-insertion-first; a stable sort keeps that
	// order for equal timestamps.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp > records[j].Timestamp
	})
	return records, nil
}

// Locators returns just the content-store locator of every record, same
// ordering as History, for bulk-export use.
func (s *Service) Locators(ctx context.Context) ([]string, error) {
	records, err := s.History(ctx)
	if err != nil {
		return nil, err
	}
	urls := make([]string, len(records))
	for i, rec := range records {
		urls[i] = rec.URL
	}
	return urls, nil
}

// Stats computes total and per-type counts plus the summed size. Sizes are
// normalized to bytes before summing; a record whose size cannot be parsed
// simply contributes nothing.
func (s *Service) Stats(ctx context.Context) (StatsResult, error) {
	records, err := s.History(ctx)
	if err != nil {
		return StatsResult{}, err
	}

	var res StatsResult
	for _, rec := range records {
		res.TotalFiles++
		switch rec.Type {
		case TypeVideo:
			res.Videos++
		default:
			res.Images++
		}
		res.TotalSizeBytes += sizeInBytes(rec)
	}
	res.TotalSize = humanize.Bytes(res.TotalSizeBytes)
	return res, nil
}

// sizeInBytes prefers the raw byte count and falls back on parsing the
// humanized size field, which may carry any of B/KB/MB/GB units.
func sizeInBytes(rec MediaRecord) uint64 {
	if rec.SizeBytes > 0 {
		return uint64(rec.SizeBytes)
	}
	n, err := humanize.ParseBytes(rec.Size)
	if err != nil {
		return 0
	}
	return n
}
