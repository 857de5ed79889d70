package cli

import (
	"time"

	"conform/internal/config"
)

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

// ToConfigFlags converts CLI flags to config flags
func (f *Flags) ToConfigFlags() config.Flags {
	return config.Flags{
		Paths:        f.Paths,
		Filter:       f.Filter,
		Bail:         f.Bail,
		Format:       f.Format,
		Timeout:      f.Timeout,
		Progress:     f.Progress,
		OnlyFailed:   f.OnlyFailed,
		OpenFailures: f.OpenFailures,
		MetricsFile:  f.MetricsFile,
		NoColor:      f.NoColor,
		Stats:        f.Stats,
	}
}
