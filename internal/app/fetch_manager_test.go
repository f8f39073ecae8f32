package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourusername/gdfetch-go/internal/domain"
	"github.com/yourusername/gdfetch-go/internal/infrastructure"
)

// mockFetcher implements domain.Fetcher for testing
type mockFetcher struct {
	calls     int
	target    *domain.Target
	cached    bool
	err       error
	streamErr error
	written   []byte
}

func (m *mockFetcher) ResolveTarget(ctx context.Context, source domain.Source) (*domain.Target, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.target, nil
}

func (m *mockFetcher) StreamToFile(ctx context.Context, target *domain.Target, destinationPath string, onProgress domain.ProgressFunc) (int64, error) {
	m.calls++
	defer target.Body.Close()
	if m.streamErr != nil {
		return 0, m.streamErr
	}
	data, _ := io.ReadAll(target.Body)
	m.written = data
	if err := os.WriteFile(destinationPath, data, 0644); err != nil {
		return 0, err
	}
	onProgress(domain.ProgressState{BytesTransferred: int64(len(data)), Total: target.Size, Chunks: 1, ChunkSize: domain.DefaultChunkSize})
	return int64(len(data)), nil
}

func (m *mockFetcher) EnsureCached(ctx context.Context, rawURL, targetDir, fileName string, onProgress domain.ProgressFunc) (string, bool, error) {
	m.calls++
	if m.err != nil {
		return "", false, m.err
	}
	path := filepath.Join(targetDir, domain.FileNameFromURL(rawURL))
	if !m.cached {
		onProgress(domain.ProgressState{BytesTransferred: 42, Chunks: 1, ChunkSize: domain.DefaultChunkSize})
	}
	return path, m.cached, nil
}

func newTarget(body string, name string) *domain.Target {
	return &domain.Target{
		Body:     io.NopCloser(bytes.NewBufferString(body)),
		Size:     domain.KnownSize(int64(len(body))),
		FileName: name,
	}
}

func TestRun_BothSourcesRejected(t *testing.T) {
	fetcher := &mockFetcher{}
	fm := NewFetchManager(fetcher, nil, nil)

	download, err := fm.Run(context.Background(), domain.NewDownloadRequest("https://example.com/a.bin", "abc", t.TempDir()), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidArguments)
	assert.Nil(t, download)
	assert.Equal(t, 0, fetcher.calls)
}

func TestRun_NoSourceRejected(t *testing.T) {
	fetcher := &mockFetcher{}
	fm := NewFetchManager(fetcher, nil, nil)

	_, err := fm.Run(context.Background(), domain.NewDownloadRequest("", "", t.TempDir()), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArguments)
	assert.Equal(t, 0, fetcher.calls)
}

func TestRun_URLCompleted(t *testing.T) {
	fetcher := &mockFetcher{}
	fm := NewFetchManager(fetcher, nil, nil)
	dir := t.TempDir()

	var seen int
	download, err := fm.Run(context.Background(), domain.NewDownloadRequest("https://example.com/w/model.pth", "", dir), func(domain.ProgressState) { seen++ })
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, download.Status)
	assert.Equal(t, filepath.Join(dir, "model.pth"), download.FilePath)
	assert.Equal(t, int64(42), download.BytesTransferred)
	assert.Equal(t, 1, seen)
}

func TestRun_URLCached(t *testing.T) {
	fetcher := &mockFetcher{cached: true}
	fm := NewFetchManager(fetcher, nil, nil)

	download, err := fm.Run(context.Background(), domain.NewDownloadRequest("https://example.com/w/model.pth", "", t.TempDir()), nil)
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCached, download.Status)
	assert.Equal(t, int64(0), download.BytesTransferred)
}

func TestRun_ProviderUsesServerFileName(t *testing.T) {
	fetcher := &mockFetcher{target: newTarget("weights", "model.pth")}
	fm := NewFetchManager(fetcher, nil, nil)
	dir := filepath.Join(t.TempDir(), "new", "dir")

	download, err := fm.Run(context.Background(), domain.NewDownloadRequest("", "abc", dir), nil)
	require.NoError(t, err)

	expected, _ := filepath.Abs(filepath.Join(dir, "model.pth"))
	assert.Equal(t, expected, download.FilePath)
	assert.Equal(t, domain.StatusCompleted, download.Status)
	assert.Equal(t, int64(7), download.BytesTransferred)
	assert.FileExists(t, expected)
}

func TestRun_ProviderFallsBackToFileID(t *testing.T) {
	fetcher := &mockFetcher{target: newTarget("weights", "")}
	fm := NewFetchManager(fetcher, nil, nil)
	dir := t.TempDir()

	download, err := fm.Run(context.Background(), domain.NewDownloadRequest("", "abc", dir), nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "abc"), download.FilePath)
}

func TestRun_FailureMarksDownload(t *testing.T) {
	cause := fmt.Errorf("%w: dial tcp: no such host", domain.ErrUnreachableSource)
	fetcher := &mockFetcher{err: cause}
	fm := NewFetchManager(fetcher, nil, nil)

	download, err := fm.Run(context.Background(), domain.NewDownloadRequest("", "abc", t.TempDir()), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnreachableSource)
	require.NotNil(t, download)
	assert.Equal(t, domain.StatusFailed, download.Status)
	assert.Contains(t, download.ErrorMessage, "no such host")
}

func TestRun_StreamFailure(t *testing.T) {
	fetcher := &mockFetcher{target: newTarget("weights", "model.pth"), streamErr: domain.ErrStreamInterrupted}
	fm := NewFetchManager(fetcher, nil, nil)

	download, err := fm.Run(context.Background(), domain.NewDownloadRequest("", "abc", t.TempDir()), nil)
	assert.ErrorIs(t, err, domain.ErrStreamInterrupted)
	assert.Equal(t, domain.StatusFailed, download.Status)
}

func TestRun_ProviderEndToEnd(t *testing.T) {
	payload := bytes.Repeat([]byte("0123456789"), 5000)
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Query().Get("confirm") != "yes-please" {
			http.SetCookie(w, &http.Cookie{Name: "download_warning_1", Value: "yes-please"})
			_, _ = w.Write([]byte("virus scan warning"))
			return
		}
		if r.Header.Get("Range") == "bytes=0-2" {
			w.Header().Set("Content-Range", fmt.Sprintf("bytes 0-2/%d", len(payload)))
			w.WriteHeader(http.StatusPartialContent)
			_, _ = w.Write(payload[:3])
			return
		}
		_, _ = w.Write(payload)
	}))
	defer server.Close()

	config := domain.DefaultConfig().Fetch
	config.DriveURL = server.URL + "/uc?export=download"
	fm := NewFetchManager(infrastructure.NewHTTPFetcher(&config, nil), nil, nil)
	dir := t.TempDir()

	var last domain.ProgressState
	download, err := fm.Run(context.Background(), domain.NewDownloadRequest("", "xyz", dir), func(s domain.ProgressState) { last = s })
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "xyz"), download.FilePath)
	assert.Equal(t, int64(len(payload)), download.BytesTransferred)
	assert.Equal(t, domain.KnownSize(int64(len(payload))), last.Total)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))

	content, err := os.ReadFile(download.FilePath)
	require.NoError(t, err)
	assert.Equal(t, payload, content)
}
