package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewDownload(t *testing.T) {
	req := NewDownloadRequest("https://example.com/model.pth", "", "./weights")

	download := NewDownload(req)

	assert.NotEmpty(t, download.ID)
	assert.Equal(t, req.Source, download.Source)
	assert.Equal(t, ModeURL, download.Mode)
	assert.Equal(t, StatusPending, download.Status)
	assert.Equal(t, int64(0), download.BytesTransferred)
}

func TestNewDownload_ProviderMode(t *testing.T) {
	download := NewDownload(NewDownloadRequest("", "abc123", "./weights"))

	assert.Equal(t, ModeProvider, download.Mode)
	assert.Equal(t, "abc123", download.Source.String())
}

func TestDownload_MarkDownloading(t *testing.T) {
	download := NewDownload(NewDownloadRequest("https://example.com/a.bin", "", "/tmp"))

	download.MarkDownloading("/tmp/a.bin")

	assert.Equal(t, StatusDownloading, download.Status)
	assert.Equal(t, "/tmp/a.bin", download.FilePath)
	assert.NotNil(t, download.StartedAt)
	assert.False(t, download.IsTerminal())
}

func TestDownload_MarkCompleted(t *testing.T) {
	download := NewDownload(NewDownloadRequest("https://example.com/a.bin", "", "/tmp"))

	download.MarkCompleted("/tmp/a.bin", 4096)

	assert.Equal(t, StatusCompleted, download.Status)
	assert.Equal(t, "/tmp/a.bin", download.FilePath)
	assert.Equal(t, int64(4096), download.BytesTransferred)
	assert.NotNil(t, download.CompletedAt)
	assert.True(t, download.Succeeded())
}

func TestDownload_MarkCached(t *testing.T) {
	download := NewDownload(NewDownloadRequest("https://example.com/a.bin", "", "/tmp"))

	download.MarkCached("/tmp/a.bin")

	assert.Equal(t, StatusCached, download.Status)
	assert.Equal(t, int64(0), download.BytesTransferred)
	assert.True(t, download.IsTerminal())
	assert.True(t, download.Succeeded())
}

func TestDownload_MarkFailed(t *testing.T) {
	download := NewDownload(NewDownloadRequest("https://example.com/a.bin", "", "/tmp"))

	download.MarkFailed(errors.New("download failed"))

	assert.Equal(t, StatusFailed, download.Status)
	assert.Equal(t, "download failed", download.ErrorMessage)
	assert.True(t, download.IsTerminal())
	assert.False(t, download.Succeeded())
}
