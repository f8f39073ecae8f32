package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/yourusername/gdfetch-go/internal/domain"
)

// LoadConfig loads configuration from file and environment
func LoadConfig(configPath string) (*domain.Config, error) {
	config := domain.DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.gdfetch")
		v.AddConfigPath("/etc/gdfetch")
	}

	// GDFETCH_FETCH_SAVE_PATH overrides fetch.save_path, and so on
	v.SetEnvPrefix("GDFETCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindEnvKeys(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config = expandPaths(config)

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// bindEnvKeys registers every key so AutomaticEnv also applies when no
// config file mentions it; Unmarshal only sees keys viper knows about.
func bindEnvKeys(v *viper.Viper) {
	for _, key := range []string{
		"fetch.drive_url",
		"fetch.save_path",
		"fetch.chunk_size",
		"fetch.user_agent",
		"fetch.response_header_timeout",
		"fetch.inactivity_timeout",
		"fetch.show_progress",
		"notification.enabled",
		"notification.method",
		"logging.level",
		"logging.format",
		"logging.output_path",
	} {
		_ = v.BindEnv(key)
	}
}

// expandPaths expands environment variables in path configurations
func expandPaths(config *domain.Config) *domain.Config {
	config.Fetch.SavePath = expandPath(config.Fetch.SavePath)

	if config.Logging.OutputPath != "stdout" && config.Logging.OutputPath != "stderr" {
		config.Logging.OutputPath = expandPath(config.Logging.OutputPath)
	}

	return config
}

// expandPath expands environment variables and ~ in paths
func expandPath(path string) string {
	path = os.ExpandEnv(path)

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	}

	return path
}

// validateConfig validates the configuration
func validateConfig(config *domain.Config) error {
	if config.Fetch.DriveURL == "" {
		return fmt.Errorf("drive url not configured")
	}

	if config.Fetch.SavePath == "" {
		return fmt.Errorf("save path not configured")
	}

	if config.Fetch.ChunkSize < 1 {
		return fmt.Errorf("chunk size must be positive: %d", config.Fetch.ChunkSize)
	}

	if config.Fetch.InactivityTimeout < 0 {
		return fmt.Errorf("inactivity timeout cannot be negative")
	}

	if config.Logging.Level == "" {
		config.Logging.Level = "info"
	}

	return nil
}
