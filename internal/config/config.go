// Package config handles configuration loading from YAML files, .env files
// and environment variables.
// Configuration precedence: CLI flags > environment variables > .env file >
// config file > embedded defaults > built-in defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/Guliveer/sysstats/internal/render"
	"github.com/Guliveer/sysstats/internal/units"
)

// Duration is a wrapper around time.Duration that supports YAML unmarshaling
// from human-readable strings like "15s", "30s", "1m".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements the yaml.Unmarshaler interface for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		parsed, err := time.ParseDuration(value.Value)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", value.Value, err)
		}
		d.Duration = parsed
		return nil
	default:
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
}

// MarshalYAML implements the yaml.Marshaler interface for Duration.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all sysstats configuration.
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Paths      PathsConfig      `yaml:"paths"`
	Filter     FilterConfig     `yaml:"filter"`
	Output     OutputConfig     `yaml:"output"`
	Collection CollectionConfig `yaml:"collection"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// PathsConfig holds the kernel filesystem roots read on Linux. Pointing
// them at a host mount lets a container report on its host.
type PathsConfig struct {
	ProcRoot   string `yaml:"proc_root"`
	SysRoot    string `yaml:"sys_root"`
	EtcRoot    string `yaml:"etc_root"`
	MountTable string `yaml:"mount_table"`
}

// FilterConfig holds the disk exclusion patterns. Empty values select the
// built-in patterns.
type FilterConfig struct {
	IgnoreFSTypes     string `yaml:"ignore_fs_types"`
	IgnoreMountPoints string `yaml:"ignore_mount_points"`
}

// OutputConfig holds the default rendering settings.
type OutputConfig struct {
	Format string `yaml:"format"`
	Unit   string `yaml:"unit"`
}

// CollectionConfig bounds a whole invocation.
type CollectionConfig struct {
	Timeout Duration `yaml:"timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level: "warn",
			File:  "",
		},
		Paths: PathsConfig{
			ProcRoot: "/proc",
			SysRoot:  "/sys",
			EtcRoot:  "/etc",
		},
		Output: OutputConfig{
			Format: string(render.Table),
			Unit:   units.Bytes.String(),
		},
		Collection: CollectionConfig{
			Timeout: Duration{30 * time.Second},
		},
	}
}

// LoadFromBytes parses YAML configuration from a byte slice and merges with defaults.
// Environment variables take highest precedence and override values from the byte slice.
func LoadFromBytes(data []byte) (*Config, error) {
	cfg := DefaultConfig()

	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config data: %w", err)
		}
	}

	applyEnvOverrides(cfg, os.LookupEnv)

	return cfg, nil
}

// Load reads configuration from a YAML file and merges with defaults.
// If path is empty or the file does not exist, only defaults and environment
// variables are used.
func Load(path string) (*Config, error) {
	if path == "" {
		return LoadFromBytes(nil)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		return LoadFromBytes(nil)
	}

	return LoadFromBytes(data)
}

// CLIOverrides holds values from command-line flags.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	LogLevel string
	Unit     string
	Format   string
	// EnvFile is the .env file to read; missing files are ignored.
	EnvFile string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadLayered loads configuration with the full precedence chain:
// CLI flags > env vars > .env file > external YAML file > embedded bytes > defaults.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value  → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	// Layer 1: embedded config (lowest priority data layer)
	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	// Layer 2: external YAML file
	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", filePath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
		}
	}

	// Layers 3 and 4: .env file values, shadowed by the real environment
	dotenv, err := readDotEnv(cli.EnvFile)
	if err != nil {
		return nil, err
	}
	applyEnvOverrides(cfg, func(key string) (string, bool) {
		if v := os.Getenv(key); v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	})

	// Layer 5: CLI flags (highest priority)
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.Unit != "" {
		cfg.Output.Unit = cli.Unit
	}
	if cli.Format != "" {
		cfg.Output.Format = cli.Format
	}

	return cfg, nil
}

// readDotEnv parses a .env file without modifying the process environment.
func readDotEnv(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return values, nil
}

// WriteConfig serializes the config to a YAML file at the given path.
// Creates parent directories if needed.
func WriteConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(path, data, 0640)
}

// envOverrides maps environment variables to the fields they set.
var envOverrides = []struct {
	key   string
	field func(cfg *Config) *string
}{
	{"SYSSTATS_LOG_LEVEL", func(c *Config) *string { return &c.Logging.Level }},
	{"SYSSTATS_LOG_FILE", func(c *Config) *string { return &c.Logging.File }},
	{"SYSSTATS_PROC_ROOT", func(c *Config) *string { return &c.Paths.ProcRoot }},
	{"SYSSTATS_SYS_ROOT", func(c *Config) *string { return &c.Paths.SysRoot }},
	{"SYSSTATS_ETC_ROOT", func(c *Config) *string { return &c.Paths.EtcRoot }},
	{"SYSSTATS_UNIT", func(c *Config) *string { return &c.Output.Unit }},
	{"SYSSTATS_FORMAT", func(c *Config) *string { return &c.Output.Format }},
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Empty values are ignored.
func applyEnvOverrides(cfg *Config, lookup func(string) (string, bool)) {
	for _, o := range envOverrides {
		if v, ok := lookup(o.key); ok && v != "" {
			*o.field(cfg) = v
		}
	}
}

var logLevels = []string{"debug", "info", "warn", "error"}

// Validate checks that the configuration can be used.
func (c *Config) Validate() error {
	level := strings.ToLower(c.Logging.Level)
	valid := false
	for _, l := range logLevels {
		if level == l {
			valid = true
		}
	}
	if !valid {
		return fmt.Errorf("invalid log level %q, supported levels: %s", c.Logging.Level, strings.Join(logLevels, ", "))
	}

	if _, err := units.ParseUnit(c.Output.Unit); err != nil {
		return fmt.Errorf("output.unit: %w", err)
	}
	if _, err := render.ParseFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}

	for name, p := range map[string]string{
		"paths.proc_root":   c.Paths.ProcRoot,
		"paths.sys_root":    c.Paths.SysRoot,
		"paths.etc_root":    c.Paths.EtcRoot,
		"paths.mount_table": c.Paths.MountTable,
	} {
		if p != "" && !filepath.IsAbs(p) {
			return fmt.Errorf("%s must be an absolute path (got: %s)", name, p)
		}
	}

	if c.Collection.Timeout.Duration <= 0 {
		return fmt.Errorf("collection.timeout must be positive (got: %s)", c.Collection.Timeout.Duration)
	}
	return nil
}
