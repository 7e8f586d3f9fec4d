package objectstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config contains the information required to talk to a content store.
type Config struct {
	Provider  string
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	UseSSL    bool
	// Directory and PublicBaseURL configure the fs provider.
	Directory     string
	PublicBaseURL string
}

// Client represents the content-store capabilities the pipeline expects.
// Put persists the object under key and returns its public locator.
// Delete is idempotent: removing an absent object is not an error.
type Client interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error)
	Delete(ctx context.Context, locator string) error
	Close() error
}

// New creates a content store client based on the given configuration.
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "minio", "s3":
		return newMinioClient(cfg)
	case "fs":
		return newFSClient(cfg)
	default:
		return nil, fmt.Errorf("unsupported content store provider: %s", cfg.Provider)
	}
}

type minioClient struct {
	client *minio.Client
	bucket string
}

func newMinioClient(cfg Config) (Client, error) {
	cl, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio client: %w", err)
	}

	return &minioClient{client: cl, bucket: cfg.Bucket}, nil
}

func (m *minioClient) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	opts := minio.PutObjectOptions{ContentType: contentType}
	if _, err := m.client.PutObject(ctx, m.bucket, key, reader, size, opts); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s/%s", m.client.EndpointURL(), m.bucket, key), nil
}

func (m *minioClient) Delete(ctx context.Context, locator string) error {
	key, err := m.keyFromLocator(locator)
	if err != nil {
		return err
	}
	return m.client.RemoveObject(ctx, m.bucket, key, minio.RemoveObjectOptions{})
}

func (m *minioClient) keyFromLocator(locator string) (string, error) {
	u, err := url.Parse(locator)
	if err != nil {
		return "", fmt.Errorf("parse locator %q: %w", locator, err)
	}
	key := strings.TrimPrefix(u.Path, "/"+m.bucket+"/")
	key = strings.TrimPrefix(key, "/")
	if key == "" {
		return "", fmt.Errorf("locator %q has no object key", locator)
	}
	return key, nil
}

func (m *minioClient) Close() error {
	return nil
}

// fsClient persists objects into a local directory and serves them from a
// public base URL. Used by the directory-watching deployment variant.
type fsClient struct {
	dir     string
	baseURL string
}

func newFSClient(cfg Config) (Client, error) {
	if cfg.Directory == "" {
		return nil, errors.New("fs provider requires a directory")
	}
	if err := os.MkdirAll(cfg.Directory, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &fsClient{
		dir:     cfg.Directory,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (f *fsClient) Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) (string, error) {
	name := filepath.Base(key)
	path := filepath.Join(f.dir, name)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		os.Remove(path)
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}
	return f.baseURL + "/" + name, nil
}

func (f *fsClient) Delete(ctx context.Context, locator string) error {
	name := filepath.Base(strings.TrimRight(locator, "/"))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return fmt.Errorf("locator %q has no file name", locator)
	}
	err := os.Remove(filepath.Join(f.dir, name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (f *fsClient) Close() error {
	return nil
}
