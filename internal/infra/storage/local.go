package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bryanwahyu/automaton-ux/internal/domain/upload"
)

// LocalStore keeps scratch files in a directory on disk.
type LocalStore struct {
	dir string
}

// NewLocal buat scratch dir kalau belum ada
func NewLocal(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create scratch dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(f *upload.ScratchFile) string {
	return filepath.Join(s.dir, filepath.Base(f.Key))
}

// Save writes r to a new file named by a generated key.
func (s *LocalStore) Save(ctx context.Context, r io.Reader, originalName, mimeType string) (*upload.ScratchFile, error) {
	f := &upload.ScratchFile{
		Key:          scratchKey(originalName),
		OriginalName: originalName,
		MIMEType:     mimeType,
		CreatedAt:    time.Now(),
	}
	out, err := os.OpenFile(s.path(f), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}

	n, err := io.Copy(out, &ctxReader{ctx: ctx, r: r})
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(s.path(f))
		return nil, fmt.Errorf("write scratch file: %w", err)
	}
	f.Size = n
	return f, nil
}

func (s *LocalStore) Open(_ context.Context, f *upload.ScratchFile) (io.ReadCloser, error) {
	return os.Open(s.path(f))
}

func (s *LocalStore) Remove(_ context.Context, f *upload.ScratchFile) error {
	return os.Remove(s.path(f))
}

// Check verifies the scratch dir still exists and is a directory.
func (s *LocalStore) Check(_ context.Context) error {
	fi, err := os.Stat(s.dir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return errors.New("scratch path is not a directory")
	}
	return nil
}

// ctxReader stops a copy once the context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
