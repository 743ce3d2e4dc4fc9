// Package config provides configuration loading from environment variables.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/usestring/zato-client-go/pkg/client"
	"github.com/usestring/zato-client-go/pkg/jsoncompact"
)

// Endpoint defaults
const (
	DefaultAddress    = "http://localhost:11223"
	DefaultInvokePath = "/zato/admin/invoke"
)

// Config holds all configuration for the command-line client.
type Config struct {
	Address           string        // ZATO_ADDRESS, default "http://localhost:11223"
	Path              string        // ZATO_PATH, default "" (channel path for direct calls)
	InvokePath        string        // ZATO_INVOKE_PATH, default "/zato/admin/invoke"
	Username          string        // ZATO_USERNAME, default "" (no auth)
	Password          string        // ZATO_PASSWORD
	HTTPClientTimeout time.Duration // HTTP_CLIENT_TIMEOUT_MS, default 10000ms (10s)

	// Response rendering
	MaxResponseRepr int  // MAX_RESPONSE_REPR, default 2500
	MaxCIDRepr      int  // MAX_CID_REPR, default 5
	Bunch           bool // BUNCH, default false

	// Compaction of JSON output
	CompactMaxArrayItems int // COMPACT_MAX_ARRAY_ITEMS
	CompactMaxStringLen  int // COMPACT_MAX_STRING_LEN
	CompactMaxDepth      int // COMPACT_MAX_DEPTH

	// Logging configuration
	LogLevel      string // LOG_LEVEL, default "info"
	LogFile       string // LOG_FILE, default "" (stderr only)
	LogMaxSizeMB  int    // LOG_MAX_SIZE_MB, default 10
	LogMaxBackups int    // LOG_MAX_BACKUPS, default 5
	LogMaxAgeDays int    // LOG_MAX_AGE_DAYS, default 28
	LogCompress   bool   // LOG_COMPRESS, default true
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Address:           getEnvString("ZATO_ADDRESS", DefaultAddress),
		Path:              getEnvString("ZATO_PATH", ""),
		InvokePath:        getEnvString("ZATO_INVOKE_PATH", DefaultInvokePath),
		Username:          getEnvString("ZATO_USERNAME", ""),
		Password:          getEnvString("ZATO_PASSWORD", ""),
		HTTPClientTimeout: getEnvDurationMs("HTTP_CLIENT_TIMEOUT_MS", 10000),

		MaxResponseRepr: getEnvInt("MAX_RESPONSE_REPR", client.DefaultMaxResponseRepr),
		MaxCIDRepr:      getEnvInt("MAX_CID_REPR", client.DefaultMaxCIDRepr),
		Bunch:           getEnvBool("BUNCH", false),

		// Compaction defaults (from jsoncompact package)
		CompactMaxArrayItems: getEnvInt("COMPACT_MAX_ARRAY_ITEMS", jsoncompact.DefaultMaxArrayItems),
		CompactMaxStringLen:  getEnvInt("COMPACT_MAX_STRING_LEN", jsoncompact.DefaultMaxStringLen),
		CompactMaxDepth:      getEnvInt("COMPACT_MAX_DEPTH", jsoncompact.DefaultMaxDepth),

		LogLevel:      getEnvString("LOG_LEVEL", "info"),
		LogFile:       getEnvString("LOG_FILE", ""),
		LogMaxSizeMB:  getEnvInt("LOG_MAX_SIZE_MB", 10),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 5),
		LogMaxAgeDays: getEnvInt("LOG_MAX_AGE_DAYS", 28),
		LogCompress:   getEnvBool("LOG_COMPRESS", true),
	}
}

// ClientOptions translates the configuration into client options shared by
// every client variant.
func (c *Config) ClientOptions() []client.Option {
	sopts := []client.SessionOption{client.WithTimeout(c.HTTPClientTimeout)}
	if c.Username != "" {
		sopts = append(sopts, client.WithSessionAuth(c.Username, c.Password))
	}
	return []client.Option{
		client.WithSession(client.NewHTTPSession(sopts...)),
		client.WithBunch(c.Bunch),
		client.WithMaxResponseRepr(c.MaxResponseRepr),
		client.WithMaxCIDRepr(c.MaxCIDRepr),
		client.WithTraceCompaction(c.CompactOptions()),
	}
}

// CompactOptions returns the configured JSON compaction limits.
func (c *Config) CompactOptions() *jsoncompact.Options {
	return &jsoncompact.Options{
		MaxArrayItems: c.CompactMaxArrayItems,
		MaxStringLen:  c.CompactMaxStringLen,
		MaxDepth:      c.CompactMaxDepth,
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		switch v {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDurationMs(key string, defaultMs int) time.Duration {
	ms := getEnvInt(key, defaultMs)
	return time.Duration(ms) * time.Millisecond
}
