// Package config loads runtime configuration for the yama CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with -c or -config; JSON or YAML by
//     extension (see FileConfig).
//  3. Environment variables: API_BASE_URL, YAMA_STORAGE, YAMA_DATA_PATH,
//     YAMA_LOG_FILE, YAMA_LOG_LEVEL, YAMA_REQUEST_TIMEOUT. cmd/cli loads a
//     .env file into the environment first.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   backend API base URL
//	-s string   token storage backend (sqlite, bolt, file)
//	-d string   token storage path
//	-l string   log file
//	-t int      request timeout (seconds)
//
// # Config file
//
//	{
//	  "api_base_url": "https://yama.example.com/api",
//	  "storage_backend": "sqlite",
//	  "request_timeout": "30s"
//	}
//
// The base URL has no default: a Config without one fails Validate, and the
// CLI refuses to start.
package config
