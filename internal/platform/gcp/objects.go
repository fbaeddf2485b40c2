package gcp

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/neurobridge-drillfix/internal/platform/logger"
)

const objectIOTimeout = 2 * time.Minute

// ObjectClient reads and writes whole objects addressed by gs:// URIs.
type ObjectClient struct {
	log    *logger.Logger
	client *storage.Client
	mode   ObjectStorageMode
}

func NewObjectClient(ctx context.Context, log *logger.Logger) (*ObjectClient, error) {
	cfg, err := ResolveObjectStorageConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("resolve object storage config: %w", err)
	}
	return NewObjectClientWithConfig(ctx, log, cfg)
}

func NewObjectClientWithConfig(ctx context.Context, log *logger.Logger, cfg ObjectStorageConfig) (*ObjectClient, error) {
	if err := ValidateObjectStorageConfig(cfg); err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	if log == nil {
		log = logger.Nop()
	}
	st, err := newStorageClientForMode(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}
	log = log.With("service", "ObjectClient")
	log.Info("Object storage initialized", "mode", cfg.Mode, "emulator_host", cfg.EmulatorHost)
	return &ObjectClient{log: log, client: st, mode: cfg.Mode}, nil
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptionsFromEnv()
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		endpoint := strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
		_ = os.Setenv("STORAGE_EMULATOR_HOST", endpoint)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Value: string(cfg.Mode)}
	}
}

type readCloserWithCancel struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (r *readCloserWithCancel) Close() error {
	err := r.ReadCloser.Close()
	r.cancel()
	return err
}

// Open returns a reader for the object. The caller closes it.
func (c *ObjectClient) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	bucket, key, err := ParseObjectURI(uri)
	if err != nil {
		return nil, err
	}
	ctx2, cancel := context.WithTimeout(ctx, objectIOTimeout)
	r, err := c.client.Bucket(bucket).Object(key).NewReader(ctx2)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("open gcs object %s: %w", uri, err)
	}
	return &readCloserWithCancel{ReadCloser: r, cancel: cancel}, nil
}

// Write uploads src as the full object content. GCS only commits the object on Close,
// so a failed copy leaves any previous object untouched.
func (c *ObjectClient) Write(ctx context.Context, uri string, src io.Reader) error {
	bucket, key, err := ParseObjectURI(uri)
	if err != nil {
		return err
	}
	ctx2, cancel := context.WithTimeout(ctx, objectIOTimeout)
	defer cancel()

	w := c.client.Bucket(bucket).Object(key).NewWriter(ctx2)
	w.ContentType = contentTypeForKey(key)
	if _, err := io.Copy(w, src); err != nil {
		// cancelling before Close aborts the upload
		cancel()
		_ = w.Close()
		return fmt.Errorf("write gcs object %s: %w", uri, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close gcs writer %s: %w", uri, err)
	}
	c.log.Debug("object written", "uri", uri)
	return nil
}

func (c *ObjectClient) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func contentTypeForKey(key string) string {
	if strings.HasSuffix(strings.ToLower(key), ".json") {
		return "application/json; charset=utf-8"
	}
	return "application/octet-stream"
}
