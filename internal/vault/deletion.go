package vault

import (
	"context"

	"go.uber.org/zap"
)

// DeleteResult reports the outcome of a deletion: how many catalog records
// matched the locator and how many remain.
type DeleteResult struct {
	Success        bool  `json:"success"`
	Removed        int64 `json:"removed"`
	Remaining      int64 `json:"remaining"`
	AlreadyRemoved bool  `json:"alreadyRemoved,omitempty"`
}

// Delete removes the content object behind url and every catalog record
// referencing it. Content-store failure is logged but never aborts catalog
// cleanup: the object may already be gone. Deleting an absent url is
// idempotent and reports removed=0 with success.
func (s *Service) Delete(ctx context.Context, token, url string) (DeleteResult, error) {
	if err := s.authorize(token); err != nil {
		return DeleteResult{}, err
	}
	if url == "" {
		return DeleteResult{}, ErrBadRequest
	}

	if err := s.store.Delete(ctx, url); err != nil {
		s.logger.Warn("content delete failed, continuing with catalog cleanup",
			zap.String("url", url), zap.Error(err))
	}

	var filenames []string
	removed, remaining, err := s.catalog.Remove(ctx, func(raw []byte) bool {
		rec, ok := decodeRecord(raw)
		if !ok || rec.URL != url {
			return false
		}
		filenames = append(filenames, rec.Filename)
		return true
	})
	if err != nil {
		return DeleteResult{}, &CatalogWriteError{Err: err}
	}

	for _, name := range filenames {
		if s.broadcast != nil {
			s.broadcast.MediaDeleted(name)
		}
		s.publishEvent(ctx, EventMediaDeleted, MediaRecord{URL: url, Filename: name})
	}

	s.logger.Info("media deleted",
		zap.String("url", url),
		zap.Int64("removed", removed),
		zap.Int64("remaining", remaining))

	return DeleteResult{
		Success:        true,
		Removed:        removed,
		Remaining:      remaining,
		AlreadyRemoved: removed == 0,
	}, nil
}
