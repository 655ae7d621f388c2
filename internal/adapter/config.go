package adapter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/clint/tmdb/internal/adapter/tmdb"
	"github.com/clint/tmdb/internal/domain"
	"github.com/spf13/viper"
)

const (
	appName    = "tmdb"
	envPrefix  = "TMDB"
	configName = "config"
	configType = "yaml"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Sync    SyncConfig    `mapstructure:"sync"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds catalog API configuration
type APIConfig struct {
	Key          string        `mapstructure:"key"`            // TMDB v3 API key
	BaseURL      string        `mapstructure:"base_url"`       // e.g. https://api.themoviedb.org/3
	ImageBaseURL string        `mapstructure:"image_base_url"` // Prefix for poster/backdrop paths
	Timeout      time.Duration `mapstructure:"timeout"`
}

// CacheConfig holds local store configuration
type CacheConfig struct {
	Dir string `mapstructure:"dir"`
}

// SyncConfig controls list refreshes
type SyncConfig struct {
	Pages int `mapstructure:"pages"` // Top rated pages fetched per refresh
}

// UIConfig holds UI configuration
type UIConfig struct {
	DefaultSort  string `mapstructure:"default_sort"`  // "none", "rating" or "release_date"
	DefaultOrder string `mapstructure:"default_order"` // "asc" or "desc"
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:      tmdb.DefaultBaseURL,
			ImageBaseURL: tmdb.DefaultImageBaseURL,
			Timeout:      30 * time.Second,
		},
		Cache: CacheConfig{
			Dir: defaultCachePath(),
		},
		Sync: SyncConfig{
			Pages: 5,
		},
		UI: UIConfig{
			DefaultSort:  "rating",
			DefaultOrder: "desc",
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// dataDir returns the per-user data directory for the current OS
func dataDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", appName)
	}
}

func defaultLogPath() string {
	return filepath.Join(dataDir(), appName+".log")
}

func defaultCachePath() string {
	return filepath.Join(dataDir(), "cache")
}

// DefaultConfigDir returns the default config directory for the current OS
func DefaultConfigDir() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), appName)
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", appName)
	}
}

// newViper returns a viper instance with defaults and env overrides
// (TMDB_API_KEY, TMDB_SYNC_PAGES, ...)
func newViper(dir string) *viper.Viper {
	v := viper.New()
	v.SetConfigName(configName)
	v.SetConfigType(configType)
	v.AddConfigPath(dir)
	v.AddConfigPath(".")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults register every key so env overrides reach Unmarshal
	setAll(v, DefaultConfig(), v.SetDefault)
	return v
}

// setAll writes every config field through set, using the file's key names
func setAll(v *viper.Viper, cfg *Config, set func(key string, value any)) {
	set("api.key", cfg.API.Key)
	set("api.base_url", cfg.API.BaseURL)
	set("api.image_base_url", cfg.API.ImageBaseURL)
	set("api.timeout", cfg.API.Timeout.String())

	set("cache.dir", cfg.Cache.Dir)

	set("sync.pages", cfg.Sync.Pages)

	set("ui.default_sort", cfg.UI.DefaultSort)
	set("ui.default_order", cfg.UI.DefaultOrder)

	set("logging.file", cfg.Logging.File)
	set("logging.level", cfg.Logging.Level)
}

// LoadConfig loads configuration from the default config directory and environment
func LoadConfig() (*Config, error) {
	return LoadConfigFrom(DefaultConfigDir())
}

// LoadConfigFrom loads configuration from dir and environment
func LoadConfigFrom(dir string) (*Config, error) {
	v := newViper(dir)

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the application cannot run with
func (c *Config) Validate() error {
	if c.Sync.Pages < 0 {
		return fmt.Errorf("sync.pages must not be negative, got %d", c.Sync.Pages)
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative, got %s", c.API.Timeout)
	}
	if c.Cache.Dir == "" {
		return errors.New("cache.dir is required")
	}
	return nil
}

// SaveConfig saves the configuration to the default config directory
func SaveConfig(cfg *Config) error {
	return SaveConfigTo(DefaultConfigDir(), cfg)
}

// SaveConfigTo writes cfg as config.yaml in dir
func SaveConfigTo(dir string, cfg *Config) error {
	// Ensure config directory exists
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	setAll(v, cfg, v.Set)

	configFile := filepath.Join(dir, configName+"."+configType)
	if err := v.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	// The file holds the API key
	return os.Chmod(configFile, 0600)
}

// IsConfigured returns true if an API key is set
func (c *Config) IsConfigured() bool {
	return strings.TrimSpace(c.API.Key) != ""
}

// SortKey returns the configured initial list order key
func (c *Config) SortKey() domain.SortKey {
	return domain.ParseSortKey(c.UI.DefaultSort)
}

// SortOrder returns the configured initial list direction
func (c *Config) SortOrder() domain.SortOrder {
	return domain.ParseSortOrder(c.UI.DefaultOrder)
}

// GetCachePath returns the cache directory path with ~ expanded
func (c *Config) GetCachePath() string {
	return expandHome(c.Cache.Dir)
}

// ClearCache removes all cached data
func (c *Config) ClearCache() error {
	cachePath := c.GetCachePath()
	if cachePath == "" {
		return errors.New("cache directory is not configured")
	}
	if err := os.RemoveAll(cachePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	return nil
}

// expandHome expands a leading ~ to the user's home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
