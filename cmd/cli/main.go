package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yourusername/gdfetch-go/internal/app"
	"github.com/yourusername/gdfetch-go/internal/domain"
	"github.com/yourusername/gdfetch-go/internal/infrastructure"
	"github.com/yourusername/gdfetch-go/pkg/logger"
	"go.uber.org/zap"
)

type options struct {
	url        string
	fileID     string
	savePath   string
	configPath string
	logLevel   string
	noProgress bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "gdfetch",
		Short: "Download a file from a URL or Google Drive",
		Long: `Download a single file from a direct URL or a Google Drive file id.

URL downloads are skipped when the file already exists in the save path.
Google Drive downloads answer the large-file virus-scan warning automatically.`,
		Example: `  gdfetch --url https://github.com/zsyOAOA/ResShift/releases/download/v2.0/autoencoder_vq_f4.pth
  gdfetch --file_id 1AbCdEfGh --save_path ./weights`,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFetch(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "", "URL of the file to download")
	cmd.Flags().StringVar(&opts.fileID, "file_id", "", "Google Drive file ID")
	cmd.Flags().StringVar(&opts.savePath, "save_path", "./weights", "Directory to save the downloaded file")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "Config file (default ./configs/config.yaml, $HOME/.gdfetch/config.yaml)")
	cmd.Flags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "Don't show the progress bar")

	return cmd
}

func runFetch(cmd *cobra.Command, opts *options) error {
	// Reject bad flag combinations before touching config or network
	req := domain.NewDownloadRequest(opts.url, opts.fileID, opts.savePath)
	if err := req.Validate(); err != nil {
		return err
	}

	config, err := app.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("save_path") {
		req.DestinationDir = config.Fetch.SavePath
	}
	if opts.logLevel != "" {
		config.Logging.Level = opts.logLevel
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Sync()

	fetcher := infrastructure.NewHTTPFetcher(&config.Fetch, log)
	notifier := infrastructure.NewNotificationService(&config.Notification, log)
	manager := app.NewFetchManager(fetcher, notifier, log)

	var bar *infrastructure.ProgressBar
	var onProgress domain.ProgressFunc
	if config.Fetch.ShowProgress && !opts.noProgress {
		bar = infrastructure.NewProgressBar(cmd.OutOrStdout())
		onProgress = bar.Update
	}

	download, err := manager.Run(cmd.Context(), req, onProgress)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return err
	}

	log.Debug("Result", zap.String("id", download.ID), zap.String("status", string(download.Status)))
	fmt.Fprintln(cmd.OutOrStdout(), download.FilePath)
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		// Usage errors go to stdout, everything else to stderr
		if errors.Is(err, domain.ErrInvalidArguments) {
			fmt.Fprintf(os.Stdout, "Error: %v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
