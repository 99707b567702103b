package upload

import (
	"context"
	"io"
)

// ScratchStore port (transient storage for uploads)
type ScratchStore interface {
	Save(ctx context.Context, r io.Reader, originalName, mimeType string) (*ScratchFile, error)
	Open(ctx context.Context, f *ScratchFile) (io.ReadCloser, error)
	Remove(ctx context.Context, f *ScratchFile) error
	Check(ctx context.Context) error
}
