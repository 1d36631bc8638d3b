package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/twiced-technology-gmbh/taskrank/internal/clierr"
	"github.com/twiced-technology-gmbh/taskrank/internal/filelock"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no taskrank workspace found (run 'taskrank init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the workspace configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Name     string         `yaml:"name"`
	TasksDir string         `yaml:"tasks_dir"`
	Defaults DefaultsConfig `yaml:"defaults"`
	Suggest  SuggestConfig  `yaml:"suggest"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	History  HistoryConfig  `yaml:"history"`
	NextID   int            `yaml:"next_id"`

	// dir is the absolute path to the workspace directory (not serialized).
	dir string `yaml:"-"`
}

// DefaultsConfig holds defaults applied to analysis requests.
type DefaultsConfig struct {
	Strategy string `yaml:"strategy"`
}

// SuggestConfig tunes the suggest operation.
type SuggestConfig struct {
	Count int `yaml:"count"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	ReadTimeout     string `yaml:"read_timeout"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64  `yaml:"max_body_bytes"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// HistoryConfig bounds the analysis history log.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// Dir returns the absolute path to the workspace directory.
func (c *Config) Dir() string {
	return c.dir
}

// SetDir sets the workspace directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// TasksPath returns the absolute path to the tasks directory.
func (c *Config) TasksPath() string {
	return filepath.Join(c.dir, c.TasksDir)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// LastAnalysisPath returns where the last analyzed batch is stored.
func (c *Config) LastAnalysisPath() string {
	return filepath.Join(c.dir, LastAnalysisFileName)
}

// HistoryPath returns the analysis history log path.
func (c *Config) HistoryPath() string {
	return filepath.Join(c.dir, HistoryFileName)
}

// ReadTimeout parses server.read_timeout.
func (c *Config) ReadTimeout() time.Duration {
	return parseDurationOr(c.Server.ReadTimeout, DefaultReadTimeout)
}

// ShutdownTimeout parses server.shutdown_timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return parseDurationOr(c.Server.ShutdownTimeout, DefaultShutdownTimeout)
}

func parseDurationOr(s, fallback string) time.Duration {
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	d, _ := time.ParseDuration(fallback)
	return d
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version:  CurrentVersion,
		Name:     name,
		TasksDir: DefaultTasksDir,
		Defaults: DefaultsConfig{Strategy: DefaultStrategy},
		Suggest:  SuggestConfig{Count: DefaultSuggestCount},
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			ReadTimeout:     DefaultReadTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Log:     LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		History: HistoryConfig{MaxEntries: DefaultHistoryEntries},
		NextID:  1,
	}
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	if c.TasksDir == "" {
		return fmt.Errorf("%w: tasks_dir is required", ErrInvalid)
	}
	if !slices.Contains(Strategies, c.Defaults.Strategy) {
		return fmt.Errorf("%w: defaults.strategy %q is not one of %v", ErrInvalid, c.Defaults.Strategy, Strategies)
	}
	if c.Suggest.Count < 1 {
		return fmt.Errorf("%w: suggest.count must be >= 1", ErrInvalid)
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	if !slices.Contains(LogLevels, c.Log.Level) {
		return fmt.Errorf("%w: log.level %q is not one of %v", ErrInvalid, c.Log.Level, LogLevels)
	}
	if !slices.Contains(LogFormats, c.Log.Format) {
		return fmt.Errorf("%w: log.format %q is not one of %v", ErrInvalid, c.Log.Format, LogFormats)
	}
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("%w: history.max_entries must be >= 0", ErrInvalid)
	}
	if c.NextID < 1 {
		return fmt.Errorf("%w: next_id must be >= 1", ErrInvalid)
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}
	for key, v := range map[string]string{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: invalid %s %q: %w", ErrInvalid, key, v, err)
		}
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalid, key)
		}
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: server.max_body_bytes must be positive", ErrInvalid)
	}
	return nil
}

// Init creates a new workspace in dir: the directory, its tasks
// subdirectory and config file.
func Init(dir, name string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	if _, err := os.Stat(filepath.Join(absDir, ConfigFileName)); err == nil {
		return nil, clierr.Newf(clierr.WorkspaceAlreadyExists, "workspace already exists at %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	cfg := NewDefault(name)
	cfg.SetDir(absDir)

	if err := os.MkdirAll(cfg.TasksPath(), dirMode); err != nil {
		return nil, fmt.Errorf("creating tasks directory: %w", err)
	}

	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to its config file. Readers never observe a
// partially written file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	tmp := c.ConfigPath() + ".tmp"
	if err := os.WriteFile(tmp, data, fileMode); err != nil {
		return err
	}
	return os.Rename(tmp, c.ConfigPath())
}

// Load reads, migrates and validates the config in dir.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(absDir, ConfigFileName)) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	oldVersion := cfg.Version
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	// Persist migrated config so future loads skip re-migration.
	if cfg.Version != oldVersion {
		if err := cfg.Save(); err != nil {
			return nil, fmt.Errorf("saving migrated config: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ClaimNextID reserves the next task id, re-reading next_id under the
// config file lock so concurrent callers never receive the same id.
// floor raises the counter when existing files already use higher ids.
func (c *Config) ClaimNextID(floor int) (int, error) {
	var id int
	err := filelock.Guard(c.ConfigPath(), func() error {
		fresh, err := Load(c.dir)
		if err != nil {
			return err
		}
		id = max(fresh.NextID, floor)
		fresh.NextID = id + 1
		if err := fresh.Save(); err != nil {
			return fmt.Errorf("saving config: %w", err)
		}
		c.NextID = fresh.NextID
		return nil
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// FindDir walks upward from startDir looking for a workspace directory
// containing config.yml. Returns the absolute path to the workspace.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the workspace directory itself.
		if _, err := os.Stat(filepath.Join(dir, ConfigFileName)); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.WorkspaceNotFound, ErrNotFound.Error())
		}
		dir = parent
	}
}
