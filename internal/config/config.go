package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Project settings
	ProjectPath string
	SpecPath    string

	// Output settings
	OutputFile string
	OutputDir  string
	OutputPath string // overrides OutputDir/OutputFile when set
	ResultsDSN string
	LogLevel   string

	// Execution settings
	Timeout time.Duration

	// Paths to ignore when scanning
	PathsToIgnore []string

	// Command flags
	Flags Flags
}

// Flags holds command-line flags
type Flags struct {
	Paths        []string
	Filter       string
	Bail         bool
	Format       string
	Timeout      time.Duration
	Progress     bool
	OnlyFailed   bool
	OpenFailures bool
	MetricsFile  string
	NoColor      bool
	Stats        bool
}

// New creates a new Config with defaults
func New() *Config {
	cfg := &Config{
		ProjectPath: DefaultProjectPath,
		SpecPath:    DefaultSpecPath,
		OutputFile:  DefaultOutputFile,
		OutputDir:   DefaultOutputDir,
		LogLevel:    DefaultLogLevel,
		Timeout:     DefaultTimeout,
		Flags:       Flags{Format: DefaultFormat},
	}
	cfg.PathsToIgnore = make([]string, len(DefaultPathsToIgnore))
	copy(cfg.PathsToIgnore, DefaultPathsToIgnore)
	return cfg
}

// Load creates a config from defaults, the project's .env file and the
// process environment, in that order of increasing precedence.
func Load(projectPath string) (*Config, error) {
	cfg := New()
	if projectPath != "" {
		cfg.ProjectPath = projectPath
	}

	// A missing .env is fine; variables may come from the environment.
	_ = godotenv.Load(filepath.Join(cfg.ProjectPath, ".env"))

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvSpecPath); v != "" {
		c.SpecPath = v
	}
	if v := os.Getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v := os.Getenv(EnvResultsDSN); v != "" {
		c.ResultsDSN = v
	}
	if v := os.Getenv(EnvOutput); v != "" {
		c.OutputPath = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return nil
}

// ApplyFlags stores flags and lets them override the loaded settings.
func (c *Config) ApplyFlags(flags Flags) error {
	if flags.Format == "" {
		flags.Format = DefaultFormat
	}
	if !slices.Contains(Formats, flags.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", flags.Format, Formats)
	}
	if flags.Timeout < 0 {
		return fmt.Errorf("invalid timeout %s", flags.Timeout)
	}
	c.Flags = flags
	if flags.Timeout > 0 {
		c.Timeout = flags.Timeout
	}
	return nil
}

// GetSpecPaths returns the source arguments, falling back to the default
// discovery path. Relative paths are resolved against the project path.
func (c *Config) GetSpecPaths() []string {
	paths := c.Flags.Paths
	if len(paths) == 0 {
		paths = []string{c.SpecPath}
	}
	resolved := make([]string, 0, len(paths))
	for _, p := range paths {
		if filepath.IsAbs(p) {
			resolved = append(resolved, p)
			continue
		}
		resolved = append(resolved, filepath.Join(c.ProjectPath, p))
	}
	return resolved
}

// GetOutputPath returns the absolute path of the stored run record so run,
// list and failures always agree on the file regardless of cwd.
func (c *Config) GetOutputPath() string {
	p := c.OutputPath
	if p == "" {
		p = filepath.Join(c.ProjectPath, c.OutputDir, c.OutputFile)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
