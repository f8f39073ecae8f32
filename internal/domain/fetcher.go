package domain

import (
	"context"
	"io"
)

// Target is a resolved remote file ready to be streamed
type Target struct {
	Body     io.ReadCloser
	Size     ExpectedSize
	FileName string // Server-suggested name, empty if none
}

// Fetcher resolves sources and copies them to disk
type Fetcher interface {
	// ResolveTarget turns a source into a byte stream
	ResolveTarget(ctx context.Context, source Source) (*Target, error)

	// StreamToFile copies the target into destinationPath, returning bytes written.
	// The target body is always closed.
	StreamToFile(ctx context.Context, target *Target, destinationPath string, onProgress ProgressFunc) (int64, error)

	// EnsureCached downloads rawURL into targetDir unless the destination already exists.
	// cached reports whether the existing file was reused.
	EnsureCached(ctx context.Context, rawURL, targetDir, fileName string, onProgress ProgressFunc) (path string, cached bool, err error)
}
