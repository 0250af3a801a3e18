package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pbaille/tasker/internal/logger"
	"gopkg.in/yaml.v3"
)

const (
	EnvDatabaseFile = "TASKS_TRACKER_DB_FILE"
	EnvLogLevel     = "TASKS_TRACKER_LOG_LEVEL"
	EnvPrettyLog    = "TASKS_TRACKER_PRETTY_LOG"
	EnvLogFile      = "TASKS_TRACKER_LOG_FILE"
	EnvConfigFile   = "TASKS_TRACKER_CONFIG"
)

// ErrMissingDatabaseFile is returned when no database path is configured.
var ErrMissingDatabaseFile = errors.New("no database file set")

// Config holds everything the command line needs at startup
type Config struct {
	DatabaseFile string // path to the SQLite file

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)
	LogFile   string // optional, empty = stderr

	SeedTags []SeedTag // tags created with a fresh database
}

// SeedTag is a tag inserted when the schema is first created
type SeedTag struct {
	Title   string `yaml:"title"`
	Default bool   `yaml:"default"`
}

// fileConfig mirrors the optional YAML file
type fileConfig struct {
	LogLevel  string    `yaml:"log_level"`
	PrettyLog *bool     `yaml:"pretty_log"`
	LogFile   string    `yaml:"log_file"`
	SeedTags  []SeedTag `yaml:"seed_tags"`
}

// DefaultSeedTags are used when the config file names none.
func DefaultSeedTags() []SeedTag {
	return []SeedTag{
		{Title: "Work", Default: true},
		{Title: "Personal"},
	}
}

// Load reads the optional YAML file named by TASKS_TRACKER_CONFIG and then
// applies environment overrides. The database file is required.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:  "warn",
		PrettyLog: true,
		SeedTags:  DefaultSeedTags(),
	}

	if path := getenv(EnvConfigFile, ""); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DatabaseFile = strings.TrimSpace(os.Getenv(EnvDatabaseFile))
	cfg.LogLevel = getenv(EnvLogLevel, cfg.LogLevel)
	cfg.LogFile = getenv(EnvLogFile, cfg.LogFile)

	pretty, err := getenvBool(EnvPrettyLog, cfg.PrettyLog)
	if err != nil {
		return nil, err
	}
	cfg.PrettyLog = pretty

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if c.DatabaseFile == "" {
		return ErrMissingDatabaseFile
	}

	if !logger.ValidLevel(c.LogLevel) {
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}

	defaults := 0
	for _, t := range c.SeedTags {
		if strings.TrimSpace(t.Title) == "" {
			return errors.New("seed tag with empty title")
		}
		if t.Default {
			defaults++
		}
	}
	if len(c.SeedTags) > 0 && defaults != 1 {
		return fmt.Errorf("seed tags need exactly one default, got %d", defaults)
	}
	return nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.LogLevel != "" {
		c.LogLevel = fc.LogLevel
	}
	if fc.PrettyLog != nil {
		c.PrettyLog = *fc.PrettyLog
	}
	if fc.LogFile != "" {
		c.LogFile = fc.LogFile
	}
	if len(fc.SeedTags) > 0 {
		c.SeedTags = fc.SeedTags
	}
	return nil
}

// Remediation is the message shown when the database file is not set.
func Remediation(home string) string {
	var sb strings.Builder
	sb.WriteString("No database file set\n\n")
	fmt.Fprintf(&sb, "Please set an environment variable called %s with the full path to your SQLite database file.\n\n", EnvDatabaseFile)
	sb.WriteString("Example:\n")
	fmt.Fprintf(&sb, "\texport %s=%s/.task-tracker/data.sqlite\n", EnvDatabaseFile, home)
	return sb.String()
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid bool for %s: %q", key, v)
	}
	return b, nil
}
