package cli

import (
	"fmt"

	"tarp/internal/archive"
)

// Config holds all settings for one tarp run, assembled from CLI flags
// and the configuration file.
type Config struct {
	// Path is the directory to archive.
	Path string
	// Output is the archive file; empty means derive from Path and Format.
	Output string
	// Format is the requested format name; empty means the configured
	// default, falling back to tar.gz.
	Format string

	Preview bool
	Size    bool
	JSON    bool

	WithExclude    []string
	WithInclude    []string
	WithIgnoreFile []string
	WithEcosystem  []string

	WithoutExcludeAlways bool
	WithoutIncludeAlways bool
	WithoutIgnoreFiles   bool
	WithoutIgnoreFile    []string

	ListEcosystems bool

	Dereference   bool
	PreserveOwner bool
	Reproducible  bool

	Quiet   bool
	Verbose bool

	ShowConfig bool
	InitConfig bool
	EditConfig bool
}

// Validate checks flag combinations and the format name.
func (c *Config) Validate() error {
	if c.Quiet && c.Verbose {
		return fmt.Errorf("cannot use --quiet and --verbose together")
	}
	if c.Format != "" {
		if _, err := archive.ParseFormat(c.Format); err != nil {
			return err
		}
	}
	return nil
}
