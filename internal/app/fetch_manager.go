package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yourusername/gdfetch-go/internal/domain"
	"github.com/yourusername/gdfetch-go/internal/infrastructure"
	"go.uber.org/zap"
)

// FetchManager runs a single download request end to end
type FetchManager struct {
	fetcher  domain.Fetcher
	notifier *infrastructure.NotificationService
	logger   *zap.Logger
}

// NewFetchManager creates a new fetch manager
func NewFetchManager(
	fetcher domain.Fetcher,
	notifier *infrastructure.NotificationService,
	logger *zap.Logger,
) *FetchManager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FetchManager{
		fetcher:  fetcher,
		notifier: notifier,
		logger:   logger,
	}
}

// Run validates the request and fetches it. Invalid requests fail before
// any network activity and return a nil download.
func (fm *FetchManager) Run(ctx context.Context, req *domain.DownloadRequest, onProgress domain.ProgressFunc) (*domain.Download, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	download := domain.NewDownload(req)
	fm.logger.Info("Processing download",
		zap.String("id", download.ID),
		zap.String("source", download.Source.String()),
		zap.String("mode", string(download.Mode)),
		zap.String("save_path", req.DestinationDir))

	var transferred int64
	progress := func(state domain.ProgressState) {
		transferred = state.BytesTransferred
		if onProgress != nil {
			onProgress(state)
		}
	}

	var err error
	switch download.Mode {
	case domain.ModeProvider:
		err = fm.fetchProvider(ctx, req, download, progress)
	default:
		err = fm.fetchURL(ctx, req, download, progress)
	}

	if err != nil {
		download.MarkFailed(err)
		fm.logger.Error("Download failed",
			zap.String("id", download.ID),
			zap.String("source", download.Source.String()),
			zap.Int64("bytes", transferred),
			zap.Error(err))
		fm.notifier.NotifyDownloadFailed(download.Source.String(), err)
		return download, err
	}

	if download.Status == domain.StatusCompleted {
		download.BytesTransferred = transferred
		fm.notifier.NotifyDownloadCompleted(download.Source.String(), download.FilePath)
	}

	fm.logger.Info("Download finished",
		zap.String("id", download.ID),
		zap.String("status", string(download.Status)),
		zap.String("file", download.FilePath),
		zap.Int64("bytes", download.BytesTransferred))

	return download, nil
}

// fetchURL downloads a direct URL unless the destination already exists
func (fm *FetchManager) fetchURL(ctx context.Context, req *domain.DownloadRequest, download *domain.Download, progress domain.ProgressFunc) error {
	path, cached, err := fm.fetcher.EnsureCached(ctx, req.Source.URL, req.DestinationDir, "", progress)
	if err != nil {
		return err
	}

	if cached {
		fm.logger.Info("File already present, skipping download", zap.String("file", path))
		download.MarkCached(path)
		return nil
	}

	download.MarkCompleted(path, 0)
	return nil
}

// fetchProvider resolves a provider file id and writes it into the save path.
// Provider downloads always overwrite; only URL mode is cached.
func (fm *FetchManager) fetchProvider(ctx context.Context, req *domain.DownloadRequest, download *domain.Download, progress domain.ProgressFunc) error {
	if err := os.MkdirAll(req.DestinationDir, 0755); err != nil {
		return fmt.Errorf("%w: creating %s: %w", domain.ErrWriteFailure, req.DestinationDir, err)
	}

	target, err := fm.fetcher.ResolveTarget(ctx, req.Source)
	if err != nil {
		return err
	}

	name := target.FileName
	if name == "" {
		name = req.Source.FileID
	}
	destination, err := filepath.Abs(filepath.Join(req.DestinationDir, name))
	if err != nil {
		_ = target.Body.Close()
		return fmt.Errorf("%w: resolving %s: %w", domain.ErrWriteFailure, name, err)
	}

	download.MarkDownloading(destination)
	fm.logger.Info("Downloading",
		zap.String("id", download.ID),
		zap.String("file", destination),
		zap.String("size", target.Size.String()))

	written, err := fm.fetcher.StreamToFile(ctx, target, destination, progress)
	if err != nil {
		return err
	}

	download.MarkCompleted(destination, written)
	return nil
}
