package vault

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// FileResolver is the subset of the Telegram API used to resolve a file
// reference to a remote locator.
type FileResolver interface {
	GetFile(cfg tgbotapi.FileConfig) (tgbotapi.File, error)
}

// FileMeta describes a resolved source file.
type FileMeta struct {
	FileID string
	URL    string
	Size   int64
}

// Fetcher resolves transport file references and downloads their bytes
// with bounded retries.
type Fetcher struct {
	resolver FileResolver
	token    string
	client   *http.Client
	maxTries uint

	initialInterval time.Duration
	maxInterval     time.Duration
}

type FetcherParams struct {
	Resolver FileResolver
	Token    string
	Client   *http.Client
	MaxTries uint
	// InitialInterval and MaxInterval bound the backoff between download
	// attempts. Later attempts wait at least as long as earlier ones.
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// NewFetcher constructs a Fetcher with capped-exponential retry defaults.
func NewFetcher(p FetcherParams) *Fetcher {
	f := &Fetcher{
		resolver:        p.Resolver,
		token:           p.Token,
		client:          p.Client,
		maxTries:        p.MaxTries,
		initialInterval: p.InitialInterval,
		maxInterval:     p.MaxInterval,
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: 30 * time.Second}
	}
	if f.maxTries == 0 {
		f.maxTries = 3
	}
	if f.initialInterval == 0 {
		f.initialInterval = time.Second
	}
	if f.maxInterval == 0 {
		f.maxInterval = 5 * time.Second
	}
	return f
}

// Resolve turns a file reference into a remote locator and declared size.
// A transport error here is fatal: an invalid reference cannot be fixed by
// retrying.
func (f *Fetcher) Resolve(ctx context.Context, fileID string) (FileMeta, error) {
	file, err := f.resolver.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return FileMeta{}, &MetadataFetchError{Err: err}
	}
	return FileMeta{
		FileID: fileID,
		URL:    file.Link(f.token),
		Size:   int64(file.FileSize),
	}, nil
}

// Download fetches the bytes behind a remote locator, retrying failed
// attempts with capped exponential backoff. After the last attempt fails
// the error wraps the final cause.
func (f *Fetcher) Download(ctx context.Context, url string) ([]byte, error) {
	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := f.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return io.ReadAll(resp.Body)
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = f.initialInterval
	policy.MaxInterval = f.maxInterval
	policy.Multiplier = 2

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(policy),
		backoff.WithMaxTries(f.maxTries),
	)
	if err != nil {
		return nil, &DownloadError{Err: err}
	}
	return data, nil
}
