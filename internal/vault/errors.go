package vault

import "errors"

var (
	// ErrUnauthorized is returned when the deletion secret does not match.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadRequest is returned when a deletion request carries no locator.
	ErrBadRequest = errors.New("url is required")
)

// MetadataFetchError means the transport could not resolve the file
// reference itself. Retrying cannot help, so the fetcher fails fast.
type MetadataFetchError struct {
	Err error
}

func (e *MetadataFetchError) Error() string { return "fetch file metadata: " + e.Err.Error() }
func (e *MetadataFetchError) Unwrap() error { return e.Err }

// DownloadError means all download attempts were exhausted. It carries the
// last underlying cause.
type DownloadError struct {
	Err error
}

func (e *DownloadError) Error() string { return "download media: " + e.Err.Error() }
func (e *DownloadError) Unwrap() error { return e.Err }

// StorageWriteError means the content-store put failed. No catalog entry
// is created after this error.
type StorageWriteError struct {
	Err error
}

func (e *StorageWriteError) Error() string { return "store media: " + e.Err.Error() }
func (e *StorageWriteError) Unwrap() error { return e.Err }

// CatalogWriteError means an append or rewrite against the catalog failed.
type CatalogWriteError struct {
	Err error
}

func (e *CatalogWriteError) Error() string { return "catalog write: " + e.Err.Error() }
func (e *CatalogWriteError) Unwrap() error { return e.Err }
