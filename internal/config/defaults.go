package config

import "time"

const (
	// DefaultProjectPath is the default project path
	DefaultProjectPath = "."
	// DefaultSpecPath is where spec sources are discovered when no path is given
	DefaultSpecPath = "conformance"
	// DefaultOutputFile is the default run record file name
	DefaultOutputFile = "last-run.json"
	// DefaultOutputDir is the default run record directory
	DefaultOutputDir = ".conform"
	// DefaultTimeout bounds a single example
	DefaultTimeout = 2 * time.Second
	// DefaultFormat is the default report format
	DefaultFormat = "text"
	// DefaultLogLevel is the default log level
	DefaultLogLevel = "warn"
)

// Environment variables read by Load.
const (
	EnvSpecPath   = "CONFORM_PATH"
	EnvTimeout    = "CONFORM_TIMEOUT"
	EnvResultsDSN = "CONFORM_RESULTS_DSN"
	EnvOutput     = "CONFORM_OUTPUT"
	EnvLogLevel   = "CONFORM_LOG_LEVEL"
)

// DefaultPathsToIgnore are the directories skipped when scanning for sources
var DefaultPathsToIgnore = []string{
	"vendor",
	"node_modules",
	"testdata",
}

// Formats lists the accepted report formats.
var Formats = []string{"text", "json"}
