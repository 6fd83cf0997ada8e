package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Storage backends for the persisted token pair.
const (
	StorageSQLite = "sqlite"
	StorageBolt   = "bolt"
	StorageFile   = "file"
)

var (
	ErrMissingBaseURL     = errors.New("api base url is not set")
	ErrUnknownStorageKind = errors.New("unknown storage backend")
)

// Config holds runtime settings for the yama CLI.
//
// Fields:
//   - APIBaseURL: absolute http(s) URL of the backend API. Required.
//   - StorageBackend: where tokens are persisted: sqlite, bolt or file.
//   - DataPath: storage location; empty means a per-backend default under
//     the user's config directory (see StoragePath).
//   - LogFile: rotating log file; empty logs to stderr.
//   - LogLevel: debug, info, warn or error.
//   - RequestTimeout: http.Client timeout; zero means none.
type Config struct {
	APIBaseURL     string        `env:"API_BASE_URL"`
	StorageBackend string        `env:"YAMA_STORAGE"`
	DataPath       string        `env:"YAMA_DATA_PATH"`
	LogFile        string        `env:"YAMA_LOG_FILE"`
	LogLevel       string        `env:"YAMA_LOG_LEVEL"`
	RequestTimeout time.Duration `env:"YAMA_REQUEST_TIMEOUT"`
}

// LoadDefaults populates c with defaults. There is no default base URL.
func (c *Config) LoadDefaults() {
	c.StorageBackend = StorageSQLite
	c.LogLevel = "info"
	c.RequestTimeout = 0
}

// LoadConfig builds a Config from os.Args. See Load.
func LoadConfig() *Config {
	return Load(os.Args[1:])
}

// Load constructs a Config: defaults, then the optional config file named
// by -c/-config, then environment variables, then command-line flags. Later
// sources take precedence. Unreadable files and bad flag values panic.
func Load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg, args)
	parseEnv(cfg)
	parseFlags(cfg, args)
	return cfg
}

// Validate reports settings that make startup impossible.
func (c *Config) Validate() error {
	if c.APIBaseURL == "" {
		return ErrMissingBaseURL
	}
	switch c.StorageBackend {
	case StorageSQLite, StorageBolt, StorageFile:
	default:
		return ErrUnknownStorageKind
	}
	return nil
}

// StoragePath returns DataPath, or the default location for the backend.
func (c *Config) StoragePath() string {
	if c.DataPath != "" {
		return c.DataPath
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}

	name := "yama.db"
	switch c.StorageBackend {
	case StorageBolt:
		name = "yama.bolt"
	case StorageFile:
		name = "tokens.json"
	}
	return filepath.Join(dir, "yama", name)
}
