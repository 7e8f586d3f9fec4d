package vault

import (
	"fmt"
	"time"
)

// phase tracks how far an ingestion run has progressed. Phases exist only
// to drive the user-facing status message; the pipeline itself never
// blocks on notifier outcomes.
type phase int

const (
	phaseReceived phase = iota
	phaseMetadata
	phaseDownloaded
	phaseStored
	phaseCataloged
)

// statusInfo carries the values interpolated into status text.
type statusInfo struct {
	Size     string
	Filename string
	URL      string
	Elapsed  time.Duration
	Err      error
}

// statusText maps an ingestion phase to the Markdown shown in the chat.
func statusText(p phase, info statusInfo) string {
	switch p {
	case phaseReceived:
		return "Processing media..."
	case phaseMetadata:
		return fmt.Sprintf("Downloading (%s)...", info.Size)
	case phaseDownloaded:
		return "Uploading to storage..."
	case phaseStored:
		return "Saving to catalog..."
	case phaseCataloged:
		return fmt.Sprintf("Saved `%s` (%s, %s)\n[view](%s)",
			info.Filename, info.Size, info.Elapsed.Round(time.Millisecond), info.URL)
	default:
		return "Processing media..."
	}
}

func failureText(err error) string {
	return fmt.Sprintf("Failed to save media: %v", err)
}
