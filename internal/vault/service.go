package vault

import (
	"bytes"
	"context"
	"crypto/subtle"
	"encoding/json"
	"time"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/your-org/mediavault/pkg/storage/catalog"
	"github.com/your-org/mediavault/pkg/storage/objectstore"
)

// Downloader abstracts the Retrying Fetcher.
type Downloader interface {
	Resolve(ctx context.Context, fileID string) (FileMeta, error)
	Download(ctx context.Context, url string) ([]byte, error)
}

// EventPublisher matches the kafka producer's JSON publishing surface.
type EventPublisher interface {
	PublishJSON(ctx context.Context, key, eventType string, payload any) error
}

// DeletionBroadcaster pushes catalog removals to connected live viewers.
type DeletionBroadcaster interface {
	MediaDeleted(filename string)
}

// Service wires together the content store, catalog, transport notifier,
// and event bus for the ingestion and deletion flows.
type Service struct {
	store       objectstore.Client
	catalog     catalog.Store
	fetcher     Downloader
	notifier    Notifier
	producer    EventPublisher
	broadcast   DeletionBroadcaster
	logger      *zap.Logger
	deleteToken string
	now         func() time.Time
}

type Params struct {
	Store       objectstore.Client
	Catalog     catalog.Store
	Fetcher     Downloader
	Notifier    Notifier
	Producer    EventPublisher
	Broadcast   DeletionBroadcaster
	Logger      *zap.Logger
	DeleteToken string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewService constructs a vault Service.
func NewService(p Params) *Service {
	s := &Service{
		store:       p.Store,
		catalog:     p.Catalog,
		fetcher:     p.Fetcher,
		notifier:    p.Notifier,
		producer:    p.Producer,
		broadcast:   p.Broadcast,
		logger:      p.Logger,
		deleteToken: p.DeleteToken,
		now:         p.Now,
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Ingest runs the full pipeline for one inbound message: validate payload,
// resolve metadata, download, store, catalog. It returns (nil, nil) for
// messages that carry no supported media; those are deliberately skipped.
// Callers acknowledge the inbound event regardless of the returned error,
// so the transport never re-delivers.
func (s *Service) Ingest(ctx context.Context, msg *tgbotapi.Message) (*MediaRecord, error) {
	started := s.now()

	ref, ok := extractMediaRef(msg)
	if !ok {
		s.logger.Debug("skipping message without supported media",
			zap.Int("message_id", messageID(msg)))
		return nil, nil
	}

	st := s.beginStatus(msg)

	meta, err := s.fetcher.Resolve(ctx, ref.fileID)
	if err != nil {
		s.failStatus(st, err)
		return nil, err
	}
	declared := meta.Size
	if declared == 0 {
		declared = ref.declaredSize
	}
	s.updateStatus(st, statusText(phaseMetadata, statusInfo{
		Size: humanize.Bytes(uint64(max(declared, 0))),
	}))

	data, err := s.fetcher.Download(ctx, meta.URL)
	if err != nil {
		s.failStatus(st, err)
		return nil, err
	}
	s.updateStatus(st, statusText(phaseDownloaded, statusInfo{}))

	filename := newFilename(ref.kind, ref.name, s.now())
	locator, err := s.store.Put(ctx, filename, bytes.NewReader(data), int64(len(data)), contentTypeFor(ref))
	if err != nil {
		werr := &StorageWriteError{Err: err}
		s.failStatus(st, werr)
		return nil, werr
	}
	s.updateStatus(st, statusText(phaseStored, statusInfo{}))

	rec := MediaRecord{
		URL:        locator,
		Filename:   filename,
		Type:       ref.kind,
		Timestamp:  s.now().UnixMilli(),
		Size:       humanize.Bytes(uint64(len(data))),
		SizeBytes:  int64(len(data)),
		UploadedBy: displayName(msg.From),
	}
	raw, err := json.Marshal(rec)
	if err == nil {
		err = s.catalog.Append(ctx, raw)
	}
	if err != nil {
		// The stored object may now be orphaned; deletion tolerates that.
		werr := &CatalogWriteError{Err: err}
		s.logger.Error("catalog append failed",
			zap.String("filename", filename), zap.Error(err))
		s.failStatus(st, werr)
		return nil, werr
	}

	s.publishEvent(ctx, EventMediaIngested, rec)

	s.updateStatus(st, statusText(phaseCataloged, statusInfo{
		Filename: rec.Filename,
		Size:     rec.Size,
		URL:      rec.URL,
		Elapsed:  s.now().Sub(started),
	}))

	s.logger.Info("media ingested",
		zap.String("filename", rec.Filename),
		zap.String("type", string(rec.Type)),
		zap.Int64("size_bytes", rec.SizeBytes))
	return &rec, nil
}

func (s *Service) publishEvent(ctx context.Context, action string, rec MediaRecord) {
	if s.producer == nil {
		return
	}
	event := MediaEvent{
		ID:        uuid.NewString(),
		Action:    action,
		URL:       rec.URL,
		Filename:  rec.Filename,
		Type:      rec.Type,
		SizeBytes: rec.SizeBytes,
		CreatedAt: s.now().UTC(),
	}
	if err := s.producer.PublishJSON(ctx, rec.URL, action, event); err != nil {
		s.logger.Warn("publish media event failed",
			zap.String("action", action), zap.Error(err))
	}
}

// statusState tracks the single in-place-edited status message of one
// ingestion run. A zero messageID means no message exists yet.
type statusState struct {
	chatID    int64
	replyTo   int
	messageID int
}

func (s *Service) beginStatus(msg *tgbotapi.Message) *statusState {
	st := &statusState{}
	if msg != nil && msg.Chat != nil {
		st.chatID = msg.Chat.ID
		st.replyTo = msg.MessageID
	}
	if s.notifier == nil || st.chatID == 0 {
		return st
	}
	id, err := s.notifier.Send(st.chatID, st.replyTo, statusText(phaseReceived, statusInfo{}))
	if err != nil {
		s.logger.Warn("send status message failed", zap.Error(err))
		return st
	}
	st.messageID = id
	return st
}

func (s *Service) updateStatus(st *statusState, text string) {
	if s.notifier == nil || st.messageID == 0 {
		return
	}
	if err := s.notifier.Edit(st.chatID, st.messageID, text); err != nil {
		s.logger.Warn("edit status message failed", zap.Error(err))
	}
}

// failStatus reports a terminal failure: edits the existing status message,
// or sends a fresh one when none was created.
func (s *Service) failStatus(st *statusState, cause error) {
	if s.notifier == nil || st.chatID == 0 {
		return
	}
	text := failureText(cause)
	if st.messageID == 0 {
		if _, err := s.notifier.Send(st.chatID, st.replyTo, text); err != nil {
			s.logger.Warn("send failure message failed", zap.Error(err))
		}
		return
	}
	if err := s.notifier.Edit(st.chatID, st.messageID, text); err != nil {
		s.logger.Warn("edit failure message failed", zap.Error(err))
	}
}

func messageID(msg *tgbotapi.Message) int {
	if msg == nil {
		return 0
	}
	return msg.MessageID
}

func (s *Service) authorize(token string) error {
	if s.deleteToken == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(s.deleteToken)) != 1 {
		return ErrUnauthorized
	}
	return nil
}

// Close releases underlying resources.
func (s *Service) Close(ctx context.Context) error {
	return s.store.Close()
}
