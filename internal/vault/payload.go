package vault

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// mediaRef is the normalized view of a supported inbound payload.
type mediaRef struct {
	fileID       string
	kind         MediaType
	mime         string
	name         string
	declaredSize int64
}

// extractMediaRef picks the supported media out of an inbound message.
// Photos select the largest offered resolution; documents are accepted
// only when their declared MIME type is image/* or video/*. Anything else
// reports ok=false and is skipped without error.
func extractMediaRef(msg *tgbotapi.Message) (mediaRef, bool) {
	if msg == nil {
		return mediaRef{}, false
	}

	if len(msg.Photo) > 0 {
		best := msg.Photo[0]
		for _, ph := range msg.Photo[1:] {
			if ph.FileSize > best.FileSize {
				best = ph
			}
		}
		name := "photo.jpg"
		if best.FileUniqueID != "" {
			name = best.FileUniqueID + ".jpg"
		}
		return mediaRef{
			fileID:       best.FileID,
			kind:         TypeImage,
			name:         name,
			declaredSize: int64(best.FileSize),
		}, true
	}

	if msg.Video != nil {
		name := msg.Video.FileName
		if name == "" {
			name = "video.mp4"
		}
		return mediaRef{
			fileID:       msg.Video.FileID,
			kind:         TypeVideo,
			mime:         msg.Video.MimeType,
			name:         name,
			declaredSize: int64(msg.Video.FileSize),
		}, true
	}

	if doc := msg.Document; doc != nil {
		var kind MediaType
		switch {
		case strings.HasPrefix(doc.MimeType, "image/"):
			kind = TypeImage
		case strings.HasPrefix(doc.MimeType, "video/"):
			kind = TypeVideo
		default:
			return mediaRef{}, false
		}
		name := doc.FileName
		if name == "" {
			name = "document"
		}
		return mediaRef{
			fileID:       doc.FileID,
			kind:         kind,
			mime:         doc.MimeType,
			name:         name,
			declaredSize: int64(doc.FileSize),
		}, true
	}

	return mediaRef{}, false
}

// contentTypeFor preserves the original MIME type when known, otherwise
// falls back on the payload kind.
func contentTypeFor(ref mediaRef) string {
	if ref.mime != "" {
		return ref.mime
	}
	if ref.kind == TypeVideo {
		return "video/mp4"
	}
	return "image/jpeg"
}

// displayName is the best-effort name of the originating user. Empty when
// unknown; never blocks ingestion.
func displayName(user *tgbotapi.User) string {
	if user == nil {
		return ""
	}
	if user.UserName != "" {
		return user.UserName
	}
	return strings.TrimSpace(user.FirstName + " " + user.LastName)
}
