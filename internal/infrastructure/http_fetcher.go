package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/yourusername/gdfetch-go/internal/domain"
	"go.uber.org/zap"
)

// HTTPFetcher implements domain.Fetcher over plain HTTP(S)
type HTTPFetcher struct {
	config *domain.FetchConfig
	client *http.Client
	logger *zap.Logger
}

// NewHTTPFetcher creates a new HTTP fetcher
func NewHTTPFetcher(config *domain.FetchConfig, logger *zap.Logger) *HTTPFetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPFetcher{
		config: config,
		client: newHTTPClient(config, nil),
		logger: logger,
	}
}

// newHTTPClient builds a client with no overall timeout. Stalled bodies are
// the watchdog's job.
func newHTTPClient(config *domain.FetchConfig, jar http.CookieJar) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = config.ResponseHeaderTimeout
	return &http.Client{
		Transport: transport,
		Jar:       jar,
	}
}

func (f *HTTPFetcher) chunkSize() int {
	if f.config.ChunkSize > 0 {
		return f.config.ChunkSize
	}
	return domain.DefaultChunkSize
}

// ResolveTarget turns a source into a byte stream
func (f *HTTPFetcher) ResolveTarget(ctx context.Context, source domain.Source) (*domain.Target, error) {
	switch source.Mode() {
	case domain.ModeProvider:
		return f.resolveProvider(ctx, source.FileID)
	default:
		return f.resolveURL(ctx, source.URL)
	}
}

// resolveURL issues a single streaming GET
func (f *HTTPFetcher) resolveURL(ctx context.Context, rawURL string) (*domain.Target, error) {
	resp, err := f.get(ctx, f.client, rawURL, nil)
	if err != nil {
		return nil, err
	}

	size := domain.UnknownSize()
	if resp.ContentLength >= 0 {
		size = domain.KnownSize(resp.ContentLength)
	}

	return &domain.Target{
		Body:     resp.Body,
		Size:     size,
		FileName: fileNameFromDisposition(resp.Header.Get("Content-Disposition")),
	}, nil
}

// get performs a GET whose body is guarded by the inactivity watchdog. The
// stall timer starts with the first read of the body. Non-2xx responses are
// closed and reported as unreachable.
func (f *HTTPFetcher) get(ctx context.Context, client *http.Client, rawURL string, header http.Header) (*http.Response, error) {
	wctx, wd := newWatchdog(ctx, f.config.InactivityTimeout)

	req, err := http.NewRequestWithContext(wctx, http.MethodGet, rawURL, nil)
	if err != nil {
		wd.Cancel()
		return nil, fmt.Errorf("%w: setting up request for %s: %w", domain.ErrUnreachableSource, rawURL, err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	if f.config.UserAgent != "" {
		req.Header.Set("User-Agent", f.config.UserAgent)
	}

	f.logger.Debug("HTTP GET", zap.String("url", rawURL), zap.Any("headers", header))

	resp, err := client.Do(req)
	if err != nil {
		wd.Cancel()
		return nil, fmt.Errorf("%w: %w", domain.ErrUnreachableSource, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		_ = resp.Body.Close()
		wd.Cancel()
		return nil, fmt.Errorf("%w: GET %s returned %s", domain.ErrUnreachableSource, rawURL, resp.Status)
	}

	resp.Body = &watchedBody{body: resp.Body, wd: wd}
	return resp, nil
}

// StreamToFile copies the target into destinationPath in fixed-size chunks.
// The output is truncated first; on failure the partial file is left behind.
func (f *HTTPFetcher) StreamToFile(ctx context.Context, target *domain.Target, destinationPath string, onProgress domain.ProgressFunc) (written int64, err error) {
	defer target.Body.Close()

	out, err := os.OpenFile(destinationPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("%w: opening %s for writing: %w", domain.ErrWriteFailure, destinationPath, err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing %s: %w", domain.ErrWriteFailure, destinationPath, cerr)
		}
	}()

	chunkSize := f.chunkSize()
	buf := make([]byte, chunkSize)
	state := domain.ProgressState{Total: target.Size, ChunkSize: chunkSize}

	for {
		if cerr := ctx.Err(); cerr != nil {
			return state.BytesTransferred, fmt.Errorf("%w: %w", domain.ErrStreamInterrupted, cerr)
		}

		n, rerr := readChunk(target.Body, buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return state.BytesTransferred, fmt.Errorf("%w: writing %s: %w", domain.ErrWriteFailure, destinationPath, werr)
			}
			state.BytesTransferred += int64(n)
			state.Chunks++
			if onProgress != nil {
				onProgress(state)
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			return state.BytesTransferred, fmt.Errorf("%w: after %s: %w", domain.ErrStreamInterrupted, domain.FormatSize(state.BytesTransferred), rerr)
		}
	}

	f.logger.Debug("Stream copied",
		zap.String("file", destinationPath),
		zap.Int64("bytes", state.BytesTransferred),
		zap.Int64("chunks", state.Chunks))

	return state.BytesTransferred, nil
}

// readChunk fills buf unless the stream ends first. Unlike io.ReadFull it
// passes the reader's own error through, so a body cut short by the server
// is not mistaken for a normal final chunk.
func readChunk(r io.Reader, buf []byte) (int, error) {
	n := 0
	for n < len(buf) {
		nn, err := r.Read(buf[n:])
		n += nn
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// EnsureCached downloads rawURL into targetDir/fileName unless that file already exists
func (f *HTTPFetcher) EnsureCached(ctx context.Context, rawURL, targetDir, fileName string, onProgress domain.ProgressFunc) (string, bool, error) {
	if fileName == "" {
		fileName = domain.FileNameFromURL(rawURL)
	}
	if fileName == "" {
		return "", false, fmt.Errorf("%w: cannot derive a file name from %s", domain.ErrInvalidArguments, rawURL)
	}

	if err := os.MkdirAll(targetDir, 0755); err != nil {
		return "", false, fmt.Errorf("%w: creating %s: %w", domain.ErrWriteFailure, targetDir, err)
	}

	destination, err := filepath.Abs(filepath.Join(targetDir, fileName))
	if err != nil {
		return "", false, fmt.Errorf("%w: resolving %s: %w", domain.ErrWriteFailure, fileName, err)
	}

	if _, err := os.Stat(destination); err == nil {
		f.logger.Debug("Destination exists, skipping download", zap.String("file", destination))
		return destination, true, nil
	}

	f.logger.Info("Downloading",
		zap.String("url", rawURL),
		zap.String("file", destination))

	target, err := f.resolveURL(ctx, rawURL)
	if err != nil {
		return "", false, err
	}
	if _, err := f.StreamToFile(ctx, target, destination, onProgress); err != nil {
		return "", false, err
	}

	return destination, false, nil
}
