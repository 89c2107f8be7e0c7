// Package config resolves server configuration from command-line flags,
// environment variables, an optional .env file, and built-in defaults, in
// that order of precedence.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Config holds the full server configuration.
type Config struct {
	App    AppConfig
	Logger LoggerConfig
	Data   DataConfig
	Server ServerConfig
	Auth   AuthConfig
	CORS   CORSConfig
	Media  MediaConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// DataConfig holds data storage configuration. The database file, auth key,
// and upload directory all live under BasePath.
type DataConfig struct {
	BasePath string
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Name         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	// AccessTokenKey is the 32-byte PASETO v4 symmetric key. It is not
	// configurable directly; auth.LoadOrGenerateKey fills it at startup.
	AccessTokenKey       []byte
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	// LockoutThreshold failed logins within LockoutWindow lock the account
	// out for the remainder of the window.
	LockoutThreshold int
	LockoutWindow    time.Duration
}

// CORSConfig holds cross-origin request configuration.
type CORSConfig struct {
	// AllowedOrigins is the exact-match origin allowlist. Browser-extension
	// origins (chrome-extension://...) are always allowed regardless.
	AllowedOrigins []string
}

// MediaConfig holds uploaded-media configuration.
type MediaConfig struct {
	MaxUploadBytes int64
}

// LoadConfig resolves the configuration and validates it.
func LoadConfig() (*Config, error) {
	env := flag.String("env", "", "Environment (development, staging, production)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	dataPath := flag.String("data-path", "", "Base path for data storage")
	serverName := flag.String("server-name", "", "Name for the server")
	serverPort := flag.String("port", "", "Server port (default: 8080)")
	readTimeout := flag.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := flag.String("write-timeout", "", "HTTP write timeout (default: 15s)")
	idleTimeout := flag.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	accessTokenDuration := flag.String("access-token-duration", "", "Access token lifetime (e.g., 15m)")
	refreshTokenDuration := flag.String("refresh-token-duration", "", "Refresh token lifetime (e.g., 720h)")
	lockoutThreshold := flag.String("lockout-threshold", "", "Failed logins before lockout (default: 5)")
	lockoutWindow := flag.String("lockout-window", "", "Login lockout window (default: 5m)")
	corsOrigins := flag.String("cors-origins", "", "Comma-separated allowed CORS origins")
	maxUploadBytes := flag.String("max-upload-bytes", "", "Maximum media upload size in bytes (default: 52428800)")
	envFile := flag.String("env-file", ".env", "Path to .env file")

	flag.Parse()

	// A missing .env file is fine; explicit settings still apply.
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: resolve(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: resolve(*logLevel, "LOG_LEVEL", "info"),
		},
		Data: DataConfig{
			BasePath: resolve(*dataPath, "DATA_PATH", ""),
		},
		Server: ServerConfig{
			Name: resolve(*serverName, "SERVER_NAME", "LinkVault Server"),
			Port: resolve(*serverPort, "SERVER_PORT", "8080"),
		},
		Auth: AuthConfig{
			LockoutThreshold: resolveInt(*lockoutThreshold, "LOCKOUT_THRESHOLD", 5),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitOrigins(resolve(*corsOrigins, "CORS_ORIGINS",
				"http://localhost:3000,http://localhost:5173,http://localhost:8080")),
		},
		Media: MediaConfig{
			MaxUploadBytes: resolveInt64(*maxUploadBytes, "MAX_UPLOAD_BYTES", 50*1024*1024),
		},
	}

	durations := []struct {
		dst      *time.Duration
		flagVal  string
		envKey   string
		fallback string
		what     string
	}{
		{&cfg.Auth.AccessTokenDuration, *accessTokenDuration, "ACCESS_TOKEN_DURATION", "15m", "access token duration"},
		{&cfg.Auth.RefreshTokenDuration, *refreshTokenDuration, "REFRESH_TOKEN_DURATION", "720h", "refresh token duration"},
		{&cfg.Auth.LockoutWindow, *lockoutWindow, "LOCKOUT_WINDOW", "5m", "lockout window"},
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s", "read timeout"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "15s", "write timeout"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s", "idle timeout"},
	}
	for _, d := range durations {
		raw := resolve(d.flagVal, d.envKey, d.fallback)
		parsed, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", d.what, raw, err)
		}
		*d.dst = parsed
	}

	if err := cfg.expandDataPath(); err != nil {
		return nil, fmt.Errorf("invalid data path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// UploadPath returns the directory uploaded media files are stored in.
func (c *Config) UploadPath() string {
	return filepath.Join(c.Data.BasePath, "uploads")
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	switch c.App.Environment {
	case "development", "staging", "production":
	case "":
		return errors.New("ENV is required")
	default:
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	switch strings.ToLower(c.Logger.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Data.BasePath == "" {
		return errors.New("data base path cannot be empty after expansion")
	}

	if c.Auth.LockoutThreshold < 1 {
		return fmt.Errorf("invalid lockout threshold: %d (must be at least 1)", c.Auth.LockoutThreshold)
	}

	if c.Media.MaxUploadBytes < 1 {
		return fmt.Errorf("invalid max upload size: %d (must be positive)", c.Media.MaxUploadBytes)
	}

	return nil
}

// expandDataPath fills in the default data directory, expands ~, and makes
// the path absolute.
func (c *Config) expandDataPath() error {
	path := c.Data.BasePath

	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home directory: %w", err)
		}
		c.Data.BasePath = filepath.Join(homeDir, "LinkVault", "data")
		return nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve absolute path: %w", err)
		}
		path = abs
	}

	c.Data.BasePath = filepath.Clean(path)
	return nil
}

// splitOrigins splits a comma-separated origin list, trimming whitespace and
// dropping empty entries.
func splitOrigins(raw string) []string {
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			origins = append(origins, part)
		}
	}
	return origins
}

// resolve returns the first non-empty of flag value, environment variable,
// and default.
func resolve(flagValue, envKey, fallback string) string {
	if flagValue != "" {
		return flagValue
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return fallback
}

func resolveInt(flagValue, envKey string, fallback int) int {
	raw := resolve(flagValue, envKey, "")
	if raw == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return fallback
	}
	return n
}

func resolveInt64(flagValue, envKey string, fallback int64) int64 {
	raw := resolve(flagValue, envKey, "")
	if raw == "" {
		return fallback
	}
	var n int64
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return fallback
	}
	return n
}

// loadEnvFile sets environment variables from a KEY=value file. Variables
// already present in the environment win over the file.
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- path comes from the operator
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
