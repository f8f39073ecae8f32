package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadStatus represents the current status of a download
type DownloadStatus string

const (
	StatusPending     DownloadStatus = "pending"
	StatusDownloading DownloadStatus = "downloading"
	StatusCompleted   DownloadStatus = "completed"
	StatusCached      DownloadStatus = "cached" // Destination already existed, nothing fetched
	StatusFailed      DownloadStatus = "failed"
)

// Download records one invocation of the fetcher. It is never persisted.
type Download struct {
	ID               string         `json:"id"`
	Source           Source         `json:"source"`
	Mode             SourceMode     `json:"mode"`
	Status           DownloadStatus `json:"status"`
	FilePath         string         `json:"file_path,omitempty"`
	BytesTransferred int64          `json:"bytes_transferred"`
	ErrorMessage     string         `json:"error_message,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	StartedAt        *time.Time     `json:"started_at,omitempty"`
	CompletedAt      *time.Time     `json:"completed_at,omitempty"`
}

// NewDownload creates a pending download for a request
func NewDownload(req *DownloadRequest) *Download {
	return &Download{
		ID:        uuid.New().String(),
		Source:    req.Source,
		Mode:      req.Source.Mode(),
		Status:    StatusPending,
		CreatedAt: time.Now(),
	}
}

// MarkDownloading marks the download as transferring into filePath
func (d *Download) MarkDownloading(filePath string) {
	d.Status = StatusDownloading
	d.FilePath = filePath
	now := time.Now()
	d.StartedAt = &now
}

// MarkCompleted marks the download as completed
func (d *Download) MarkCompleted(filePath string, bytes int64) {
	d.Status = StatusCompleted
	d.FilePath = filePath
	d.BytesTransferred = bytes
	now := time.Now()
	d.CompletedAt = &now
}

// MarkCached marks the download as satisfied by an existing file
func (d *Download) MarkCached(filePath string) {
	d.Status = StatusCached
	d.FilePath = filePath
	d.BytesTransferred = 0
	now := time.Now()
	d.CompletedAt = &now
}

// MarkFailed marks the download as failed
func (d *Download) MarkFailed(err error) {
	d.Status = StatusFailed
	d.ErrorMessage = err.Error()
}

// IsTerminal checks if the download is in a terminal state
func (d *Download) IsTerminal() bool {
	return d.Status == StatusCompleted || d.Status == StatusCached || d.Status == StatusFailed
}

// Succeeded checks if the file is available locally
func (d *Download) Succeeded() bool {
	return d.Status == StatusCompleted || d.Status == StatusCached
}
