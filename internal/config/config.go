// Package config provides environment-based configuration management.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig represents the full application configuration
type AppConfig struct {
	// Server configuration
	Server ServerConfig

	// Storage configuration
	Storage StorageConfig

	// Cleanup configuration
	Cleanup CleanupConfig

	// Advanced options
	Advanced AdvancedConfig
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port         int
	BindAddress  string
	EnableCORS   bool
	AllowOrigins string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
	BodyLimit    string
}

// StorageConfig contains session file store settings
type StorageConfig struct {
	// SessionParent is the directory the session root is created under.
	// Empty means the OS temp directory.
	SessionParent     string
	AllowedExtensions []string
	MaxRecentFiles    int
}

// CleanupConfig controls the periodic output sweep
type CleanupConfig struct {
	Enabled  bool
	Interval time.Duration
	MaxAge   time.Duration
}

// AdvancedConfig contains tuning options
type AdvancedConfig struct {
	LogLevel             string
	EnableRequestLogging bool
	ShutdownTimeout      time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         5000,
			BindAddress:  "0.0.0.0",
			EnableCORS:   true,
			AllowOrigins: "*",
			ReadTimeout:  60,
			WriteTimeout: 120,
			IdleTimeout:  120,
			BodyLimit:    "100M",
		},
		Storage: StorageConfig{
			SessionParent:     "",
			AllowedExtensions: []string{".pdf", ".jpg", ".jpeg", ".png", ".webp", ".tif", ".tiff"},
			MaxRecentFiles:    50,
		},
		Cleanup: CleanupConfig{
			Enabled:  true,
			Interval: 15 * time.Minute,
			MaxAge:   time.Hour,
		},
		Advanced: AdvancedConfig{
			LogLevel:             "info",
			EnableRequestLogging: true,
			ShutdownTimeout:      10 * time.Second,
		},
	}
}

// Load builds the configuration from defaults, an optional .env file, and
// environment variables. A missing .env file is not an error.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	c := DefaultConfig()
	if err := c.applyEnvironment(); err != nil {
		return nil, err
	}
	return c, nil
}

// applyEnvironment overrides config values from environment variables
func (c *AppConfig) applyEnvironment() error {
	if v := os.Getenv("PORT"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		c.Server.Port = p
	}
	if v := os.Getenv("HOST"); v != "" {
		c.Server.BindAddress = v
	}
	if v := os.Getenv("ENABLE_CORS"); v != "" {
		c.Server.EnableCORS = parseBool(v)
	}
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" {
		c.Server.AllowOrigins = v
	}
	if v := os.Getenv("MAX_FILE_SIZE_MB"); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil || mb <= 0 {
			return fmt.Errorf("invalid MAX_FILE_SIZE_MB %q", v)
		}
		c.Server.BodyLimit = fmt.Sprintf("%dM", mb)
	}

	if v := os.Getenv("SESSION_PARENT_DIR"); v != "" {
		c.Storage.SessionParent = v
	}
	if v := os.Getenv("ALLOWED_EXTENSIONS"); v != "" {
		c.Storage.AllowedExtensions = splitExtensions(v)
	}
	if v := os.Getenv("MAX_RECENT_FILES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid MAX_RECENT_FILES %q", v)
		}
		c.Storage.MaxRecentFiles = n
	}

	if v := os.Getenv("CLEANUP_ENABLED"); v != "" {
		c.Cleanup.Enabled = parseBool(v)
	}
	if v := os.Getenv("CLEANUP_INTERVAL_MINUTES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid CLEANUP_INTERVAL_MINUTES %q", v)
		}
		c.Cleanup.Interval = time.Duration(n) * time.Minute
	}
	if v := os.Getenv("CLEANUP_MAX_AGE_HOURS"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil || n <= 0 {
			return fmt.Errorf("invalid CLEANUP_MAX_AGE_HOURS %q", v)
		}
		c.Cleanup.MaxAge = time.Duration(n * float64(time.Hour))
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Advanced.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("ENABLE_REQUEST_LOGGING"); v != "" {
		c.Advanced.EnableRequestLogging = parseBool(v)
	}
	return nil
}

// GetServerAddr returns the server bind address
func (c *AppConfig) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.BindAddress, c.Server.Port)
}

// ExtensionAllowed reports whether ext (with leading dot, any case) is an
// accepted upload type.
func (c *AppConfig) ExtensionAllowed(ext string) bool {
	ext = strings.ToLower(ext)
	for _, allowed := range c.Storage.AllowedExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

func splitExtensions(v string) []string {
	var exts []string
	for _, part := range strings.Split(v, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		if !strings.HasPrefix(part, ".") {
			part = "." + part
		}
		exts = append(exts, part)
	}
	return exts
}
