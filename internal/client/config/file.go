package config

import (
	"github.com/ilyakaznacheev/cleanenv"

	"github.com/dmitrijs2005/yama/internal/flagx"
	"github.com/dmitrijs2005/yama/internal/timex"
)

// FileConfig is the on-disk shape of the config file, JSON or YAML by
// extension. Intervals use timex.Duration so they can be written as "30s".
// Empty fields leave the current value alone.
type FileConfig struct {
	APIBaseURL     string         `json:"api_base_url" yaml:"api_base_url"`
	StorageBackend string         `json:"storage_backend" yaml:"storage_backend"`
	DataPath       string         `json:"data_path" yaml:"data_path"`
	LogFile        string         `json:"log_file" yaml:"log_file"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
}

// parseFile overlays cfg with the file given by -c or -config, if any.
func parseFile(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	var fc FileConfig
	if err := cleanenv.ReadConfig(path, &fc); err != nil {
		panic(err)
	}

	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.StorageBackend != "" {
		cfg.StorageBackend = fc.StorageBackend
	}
	if fc.DataPath != "" {
		cfg.DataPath = fc.DataPath
	}
	if fc.LogFile != "" {
		cfg.LogFile = fc.LogFile
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
}

// parseEnv overlays cfg with the env variables named in its struct tags.
// Variables that are not set keep the current value.
func parseEnv(cfg *Config) {
	if err := cleanenv.ReadEnv(cfg); err != nil {
		panic(err)
	}
}
