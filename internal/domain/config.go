package domain

import "time"

// Config represents the application configuration
type Config struct {
	Fetch        FetchConfig        `mapstructure:"fetch"`
	Notification NotificationConfig `mapstructure:"notification"`
	Logging      LoggingConfig      `mapstructure:"logging"`
}

// FetchConfig contains download-related configuration
type FetchConfig struct {
	DriveURL              string        `mapstructure:"drive_url"`
	SavePath              string        `mapstructure:"save_path"`
	ChunkSize             int           `mapstructure:"chunk_size"`
	UserAgent             string        `mapstructure:"user_agent"`
	ResponseHeaderTimeout time.Duration `mapstructure:"response_header_timeout"`
	InactivityTimeout     time.Duration `mapstructure:"inactivity_timeout"` // 0 disables the stall check
	ShowProgress          bool          `mapstructure:"show_progress"`
}

// NotificationConfig contains notification-related configuration
type NotificationConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Method  string `mapstructure:"method"` // osascript, notify-send
}

// LoggingConfig contains logging-related configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, or file path
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Fetch: FetchConfig{
			DriveURL:              "https://docs.google.com/uc?export=download",
			SavePath:              "./weights",
			ChunkSize:             DefaultChunkSize,
			UserAgent:             "gdfetch/1.0",
			ResponseHeaderTimeout: 30 * time.Second,
			InactivityTimeout:     60 * time.Second,
			ShowProgress:          true,
		},
		Notification: NotificationConfig{
			Enabled: false,
			Method:  "notify-send",
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			OutputPath: "stderr",
		},
	}
}
