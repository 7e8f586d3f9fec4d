package vault

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusText(t *testing.T) {
	assert.Equal(t, "Processing media...", statusText(phaseReceived, statusInfo{}))
	assert.Equal(t, "Downloading (2.0 MB)...", statusText(phaseMetadata, statusInfo{Size: "2.0 MB"}))
	assert.Equal(t, "Uploading to storage...", statusText(phaseDownloaded, statusInfo{}))
	assert.Equal(t, "Saving to catalog...", statusText(phaseStored, statusInfo{}))
}

func TestStatusText_Terminal(t *testing.T) {
	text := statusText(phaseCataloged, statusInfo{
		Filename: "img_1_cat.jpg",
		Size:     "1.2 MB",
		URL:      "http://store.local/img_1_cat.jpg",
		Elapsed:  1500 * time.Millisecond,
	})
	assert.Contains(t, text, "img_1_cat.jpg")
	assert.Contains(t, text, "1.2 MB")
	assert.Contains(t, text, "1.5s")
	assert.Contains(t, text, "http://store.local/img_1_cat.jpg")
}

func TestFailureText(t *testing.T) {
	text := failureText(errors.New("boom"))
	assert.Contains(t, text, "boom")
}
