package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfig_GetSpecPaths(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		expected []string
	}{
		{
			name: "default path",
			config: &Config{
				ProjectPath: ".",
				SpecPath:    "conformance",
			},
			expected: []string{"conformance"},
		},
		{
			name: "relative argument",
			config: &Config{
				ProjectPath: "/project",
				SpecPath:    "conformance",
				Flags:       Flags{Paths: []string{"specs/numbers.spec.js"}},
			},
			expected: []string{"/project/specs/numbers.spec.js"},
		},
		{
			name: "absolute argument",
			config: &Config{
				ProjectPath: "/project",
				SpecPath:    "conformance",
				Flags:       Flags{Paths: []string{"/abs/*.spec.yaml", "local"}},
			},
			expected: []string{"/abs/*.spec.yaml", "/project/local"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.config.GetSpecPaths())
		})
	}
}

func TestConfig_GetOutputPath(t *testing.T) {
	cfg := New()
	cfg.ProjectPath = "/project"
	assert.Equal(t, "/project/.conform/last-run.json", cfg.GetOutputPath())

	cfg.OutputPath = "/tmp/run.json"
	assert.Equal(t, "/tmp/run.json", cfg.GetOutputPath())
}

func TestNew(t *testing.T) {
	cfg := New()

	assert.Equal(t, DefaultProjectPath, cfg.ProjectPath)
	assert.Equal(t, DefaultTimeout, cfg.Timeout)
	assert.Equal(t, DefaultFormat, cfg.Flags.Format)
	assert.Len(t, cfg.PathsToIgnore, len(DefaultPathsToIgnore))
}

func TestLoad_EnvFileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	env := "CONFORM_TIMEOUT=750ms\nCONFORM_PATH=suites\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0644))

	// godotenv does not override variables that are already set.
	os.Unsetenv(EnvTimeout)
	os.Unsetenv(EnvSpecPath)
	t.Setenv(EnvLogLevel, "debug")
	t.Cleanup(func() {
		os.Unsetenv(EnvTimeout)
		os.Unsetenv(EnvSpecPath)
	})

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 750*time.Millisecond, cfg.Timeout)
	assert.Equal(t, "suites", cfg.SpecPath)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoad_InvalidTimeout(t *testing.T) {
	t.Setenv(EnvTimeout, "soon")
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestApplyFlags(t *testing.T) {
	cfg := New()

	require.NoError(t, cfg.ApplyFlags(Flags{Format: "json", Timeout: 5 * time.Second}))
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "json", cfg.Flags.Format)

	assert.Error(t, cfg.ApplyFlags(Flags{Format: "xml"}))
	assert.Error(t, cfg.ApplyFlags(Flags{Timeout: -time.Second}))
}
