package blobstore

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/yungbote/neurobridge-drillfix/internal/platform/gcp"
	"github.com/yungbote/neurobridge-drillfix/internal/platform/logger"
)

const bufSize = 64 * 1024

// ObjectBackend is the subset of gcp.ObjectClient the store needs.
type ObjectBackend interface {
	Open(ctx context.Context, uri string) (io.ReadCloser, error)
	Write(ctx context.Context, uri string, src io.Reader) error
	Close() error
}

// Store reads and writes whole files by location: a local path or gs://bucket/key.
// The object backend is only built the first time a gs:// location is used.
type Store struct {
	log        *logger.Logger
	newBackend func(ctx context.Context) (ObjectBackend, error)

	mu      sync.Mutex
	backend ObjectBackend
}

func New(log *logger.Logger) *Store {
	if log == nil {
		log = logger.Nop()
	}
	return &Store{
		log: log.With("service", "Blobstore"),
		newBackend: func(ctx context.Context) (ObjectBackend, error) {
			return gcp.NewObjectClient(ctx, log)
		},
	}
}

// NewWithBackend uses b for gs:// locations instead of a lazily built GCS client.
func NewWithBackend(log *logger.Logger, b ObjectBackend) *Store {
	s := New(log)
	s.backend = b
	return s
}

func (s *Store) objects(ctx context.Context) (ObjectBackend, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend != nil {
		return s.backend, nil
	}
	b, err := s.newBackend(ctx)
	if err != nil {
		return nil, err
	}
	s.backend = b
	return b, nil
}

// Open returns a reader over the content at loc. The caller closes it.
func (s *Store) Open(ctx context.Context, loc string) (io.ReadCloser, error) {
	if gcp.IsObjectURI(loc) {
		b, err := s.objects(ctx)
		if err != nil {
			return nil, fmt.Errorf("object storage: %w", err)
		}
		return b.Open(ctx, loc)
	}
	f, err := os.Open(loc)
	if err != nil {
		return nil, err
	}
	return &bufferedFile{Reader: bufio.NewReaderSize(f, bufSize), f: f}, nil
}

// WriteAtomic replaces the content at loc with everything read from r.
// Readers never observe a partially written file.
func (s *Store) WriteAtomic(ctx context.Context, loc string, r io.Reader) error {
	if gcp.IsObjectURI(loc) {
		b, err := s.objects(ctx)
		if err != nil {
			return fmt.Errorf("object storage: %w", err)
		}
		return b.Write(ctx, loc, r)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(loc)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return writeFileAtomic(ctx, dir, loc, r)
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return nil
	}
	err := s.backend.Close()
	s.backend = nil
	return err
}

func writeFileAtomic(ctx context.Context, dir, dest string, r io.Reader) (err error) {
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()
	if err = tmp.Chmod(0o644); err != nil {
		return err
	}
	bw := bufio.NewWriterSize(tmp, bufSize)
	if _, err = io.Copy(bw, &ctxReader{ctx: ctx, r: r}); err != nil {
		return err
	}
	if err = bw.Flush(); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Rename(tmpPath, dest); err != nil {
		return err
	}
	_ = syncDir(dir)
	return nil
}

type bufferedFile struct {
	*bufio.Reader
	f *os.File
}

func (b *bufferedFile) Close() error { return b.f.Close() }

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
