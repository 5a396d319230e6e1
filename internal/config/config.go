// Package config loads and edits the tarp configuration file.
package config

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pelletier/go-toml/v2"
)

// Config is the on-disk configuration, located at
// <XDG_CONFIG_HOME>/tarp/config.toml.
type Config struct {
	Ignore   IgnoreConfig   `toml:"ignore"`
	Defaults DefaultsConfig `toml:"defaults"`
}

// IgnoreConfig controls the configured rule sources.
type IgnoreConfig struct {
	// Use lists extra ignore files to honor (e.g. .dockerignore).
	Use []string `toml:"use"`
	// AlwaysExclude patterns apply regardless of ignore files.
	AlwaysExclude []string `toml:"always_exclude"`
	// AlwaysInclude patterns force-include, overriding AlwaysExclude and
	// ignore files (CLI --with-include still ranks higher).
	AlwaysInclude []string `toml:"always_include"`
}

// DefaultsConfig supplies flag defaults the CLI can override.
type DefaultsConfig struct {
	Format        string `toml:"format"`
	Reproducible  bool   `toml:"reproducible"`
	Dereference   bool   `toml:"dereference"`
	PreserveOwner bool   `toml:"preserve_owner"`
}

// defaultAlwaysExclude covers version-control internals almost nobody
// wants in an archive.
var defaultAlwaysExclude = []string{".git/**", ".hg/**", ".svn/**"}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Ignore: IgnoreConfig{
			AlwaysExclude: append([]string(nil), defaultAlwaysExclude...),
		},
	}
}

// Path returns the config file location.
func Path() string {
	return filepath.Join(xdg.ConfigHome, "tarp", "config.toml")
}

// Exists reports whether a config file is present.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Load reads the config file, returning defaults when it is missing or
// unreadable. A malformed file also falls back to defaults.
func Load() Config {
	data, err := os.ReadFile(Path())
	if err != nil {
		return Default()
	}
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default()
	}
	return cfg
}

const defaultConfigFile = `# tarp configuration

[ignore]
# Additional ignore files to honor by default (any gitignore-format file)
# use = [".dockerignore", ".npmignore"]

# Patterns to ALWAYS exclude, regardless of other ignore files.
# Uses gitignore syntax. Use ** to match directory contents.
# Can be disabled per-run with --without-exclude-always
always_exclude = [
    # Version control internals
    ".git/**",
    ".hg/**",
    ".svn/**",

    # IDE/Editor directories
    ".idea/**",
    ".vscode/**",
    "*.swp",

    # OS files
    ".DS_Store",
    "Thumbs.db",
]

# Patterns to ALWAYS include (force include).
# Overrides 'always_exclude' patterns and ignore files.
# CLI --with-include takes highest priority.
# always_include = ["important.log", "dist/release.tar.gz"]

[defaults]
# Default output format (tar, tar.gz, tar.bz2, tar.zst, zip)
# format = "tar.gz"

# Always create reproducible archives
# reproducible = false

# Follow symlinks by default
# dereference = false

# Preserve file ownership by default
# preserve_owner = false
`

// Init writes a commented default config file and returns its path.
func Init() (string, error) {
	path := Path()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigFile), 0o644); err != nil {
		return "", fmt.Errorf("write config file: %w", err)
	}
	return path, nil
}

// Edit opens the config file in $EDITOR, creating it first if needed.
func Edit() (string, error) {
	path := Path()
	if !Exists() {
		if _, err := Init(); err != nil {
			return "", err
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		editor = "vi"
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("open editor %s: %w", editor, err)
	}
	return path, nil
}

// IgnoreFileSearch is the result of resolving requested ignore files.
type IgnoreFileSearch struct {
	Found    []string
	NotFound []string
}

// FindIgnoreFiles resolves requested ignore file names against a root
// directory. Absolute paths are used directly; paths with a separator
// are tried relative to the working directory, then the root; bare names
// are looked up in the root with a leading dot added when missing
// ("dockerignore" finds ".dockerignore").
func FindIgnoreFiles(root string, requested []string) IgnoreFileSearch {
	var search IgnoreFileSearch

	for _, name := range requested {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		if filepath.IsAbs(name) {
			if fileExists(name) {
				search.Found = append(search.Found, name)
			} else {
				search.NotFound = append(search.NotFound, name)
			}
			continue
		}

		if strings.ContainsAny(name, `/\`) {
			if fileExists(name) {
				search.Found = append(search.Found, name)
				continue
			}
			rooted := filepath.Join(root, name)
			if fileExists(rooted) {
				search.Found = append(search.Found, rooted)
			} else {
				search.NotFound = append(search.NotFound, name)
			}
			continue
		}

		filename := name
		if !strings.HasPrefix(filename, ".") {
			filename = "." + filename
		}
		path := filepath.Join(root, filename)
		if fileExists(path) {
			search.Found = append(search.Found, path)
		} else {
			search.NotFound = append(search.NotFound, name)
		}
	}

	return search
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
