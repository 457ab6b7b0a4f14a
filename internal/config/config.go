package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
)

const (
	defaultAddr          = ":8080"
	defaultSessionTTL    = time.Hour
	defaultSweepInterval = 5 * time.Minute
	defaultPreviewRows   = 100
	defaultMaxUploadMB   = 50
	defaultDelimiter     = ","

	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type Config struct {
	Addr          string
	SessionTTL    time.Duration
	SweepInterval time.Duration
	PreviewRows   int
	MaxUploadMB   int
	Delimiter     string
	Store         string
	DBPath        string
}

// fileConfig mirrors config.toml. Durations are Go duration strings.
type fileConfig struct {
	Addr          string `toml:"addr"`
	SessionTTL    string `toml:"session_ttl"`
	SweepInterval string `toml:"sweep_interval"`
	PreviewRows   int    `toml:"preview_rows"`
	MaxUploadMB   int    `toml:"max_upload_mb"`
	Delimiter     string `toml:"delimiter"`
	Store         string `toml:"store"`
	DBPath        string `toml:"db_path"`
}

// Path returns the location of config.toml under home.
func Path(home string) string {
	return filepath.Join(home, ".config", "chatx", "config.toml")
}

// Load reads defaults, then ~/.config/chatx/config.toml if present, then
// CHATX_* environment variables, and validates the result.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return LoadFile(Path(home), home)
}

func LoadFile(cfgPath, home string) (*Config, error) {
	cfg := &Config{
		Addr:          defaultAddr,
		SessionTTL:    defaultSessionTTL,
		SweepInterval: defaultSweepInterval,
		PreviewRows:   defaultPreviewRows,
		MaxUploadMB:   defaultMaxUploadMB,
		Delimiter:     defaultDelimiter,
		Store:         StoreMemory,
		DBPath:        filepath.Join(home, ".config", "chatx", "sessions.db"),
	}

	if _, err := os.Stat(cfgPath); err == nil {
		var fc fileConfig
		if _, err := toml.DecodeFile(cfgPath, &fc); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
		if err := cfg.applyFile(fc); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.DBPath = expandHome(cfg.DBPath, home)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(fc fileConfig) error {
	c.Addr = firstNonEmpty(fc.Addr, c.Addr)
	if fc.Delimiter != "" {
		c.Delimiter = fc.Delimiter
	}
	c.Store = firstNonEmpty(fc.Store, c.Store)
	c.DBPath = firstNonEmpty(fc.DBPath, c.DBPath)
	if fc.PreviewRows != 0 {
		c.PreviewRows = fc.PreviewRows
	}
	if fc.MaxUploadMB != 0 {
		c.MaxUploadMB = fc.MaxUploadMB
	}
	if fc.SessionTTL != "" {
		d, err := time.ParseDuration(fc.SessionTTL)
		if err != nil {
			return fmt.Errorf("session_ttl must be a valid duration: %w", err)
		}
		c.SessionTTL = d
	}
	if fc.SweepInterval != "" {
		d, err := time.ParseDuration(fc.SweepInterval)
		if err != nil {
			return fmt.Errorf("sweep_interval must be a valid duration: %w", err)
		}
		c.SweepInterval = d
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Addr = firstNonEmpty(strings.TrimSpace(os.Getenv("CHATX_ADDR")), c.Addr)
	c.Store = firstNonEmpty(strings.TrimSpace(os.Getenv("CHATX_STORE")), c.Store)
	c.DBPath = firstNonEmpty(strings.TrimSpace(os.Getenv("CHATX_DB_PATH")), c.DBPath)
	// no trimming: a tab delimiter is all whitespace
	if raw := os.Getenv("CHATX_DELIMITER"); raw != "" {
		c.Delimiter = raw
	}

	var err error
	if c.SessionTTL, err = parseDuration("CHATX_SESSION_TTL", c.SessionTTL); err != nil {
		return err
	}
	if c.SweepInterval, err = parseDuration("CHATX_SWEEP_INTERVAL", c.SweepInterval); err != nil {
		return err
	}
	if c.PreviewRows, err = parseInt("CHATX_PREVIEW_ROWS", c.PreviewRows); err != nil {
		return err
	}
	if c.MaxUploadMB, err = parseInt("CHATX_MAX_UPLOAD_MB", c.MaxUploadMB); err != nil {
		return err
	}
	return nil
}

func (c Config) Validate() error {
	if c.SessionTTL <= 0 {
		return fmt.Errorf("CHATX_SESSION_TTL must be greater than zero")
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("CHATX_SWEEP_INTERVAL must be greater than zero")
	}
	if c.PreviewRows <= 0 {
		return fmt.Errorf("CHATX_PREVIEW_ROWS must be greater than zero")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("CHATX_MAX_UPLOAD_MB must be greater than zero")
	}
	if _, err := ParseDelimiter(c.Delimiter); err != nil {
		return fmt.Errorf("CHATX_DELIMITER: %w", err)
	}
	switch c.Store {
	case StoreMemory:
	case StoreSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("CHATX_DB_PATH must not be empty when the sqlite store is selected")
		}
	default:
		return fmt.Errorf("CHATX_STORE must be %q or %q, got %q", StoreMemory, StoreSQLite, c.Store)
	}
	return nil
}

// DelimiterRune returns the validated default delimiter.
func (c Config) DelimiterRune() rune {
	r, err := ParseDelimiter(c.Delimiter)
	if err != nil {
		return ','
	}
	return r
}

// MaxUploadBytes is the request body bound for uploads.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// ParseDelimiter accepts a single rune, or the names "tab" and `\t`.
// Quotes and line breaks are rejected since they would corrupt quoting.
func ParseDelimiter(raw string) (rune, error) {
	switch strings.ToLower(raw) {
	case "tab", `\t`:
		return '\t', nil
	}
	if utf8.RuneCountInString(raw) != 1 {
		return 0, fmt.Errorf("delimiter must be exactly one character, got %q", raw)
	}
	r, _ := utf8.DecodeRuneInString(raw)
	if r == '"' || r == '\n' || r == '\r' || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter %q is not allowed", raw)
	}
	return r, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}

func parseDuration(name string, defaultValue time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return defaultValue, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", name, err)
	}
	return parsed, nil
}

func parseInt(name string, defaultValue int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", name, err)
	}
	return parsed, nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
