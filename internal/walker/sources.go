package walker

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"tarp/internal/config"
	"tarp/internal/ecosystem"
	"tarp/internal/rules"
)

// SourceOptions selects which rule sources participate in a run.
type SourceOptions struct {
	// Ecosystems names gitignore templates to apply (lowest priority).
	Ecosystems []string
	// WithoutIgnoreFiles disables every ignore file source.
	WithoutIgnoreFiles bool
	// WithoutIgnoreFile disables specific ignore files by name.
	WithoutIgnoreFile []string
	// WithIgnoreFiles adds CLI-specified ignore files.
	WithIgnoreFiles []string
	// WithoutExcludeAlways disables the configured always_exclude patterns.
	WithoutExcludeAlways bool
	// WithoutIncludeAlways disables the configured always_include patterns.
	WithoutIncludeAlways bool
	// WithExclude and WithInclude are CLI patterns, the two highest
	// priority sources.
	WithExclude []string
	WithInclude []string
}

// BuildIndex assembles the rule index from all sources in precedence
// order, lowest first: ecosystem templates, root .gitignore/.ignore,
// configured ignore files, CLI ignore files, configured always_exclude,
// configured always_include, CLI excludes, CLI includes. Insertion order
// is the sole precedence mechanism: a later source overrides an earlier
// one simply by matching last.
func BuildIndex(root string, cfg *config.Config, opts SourceOptions, logger *log.Logger) *rules.Index {
	ix := rules.NewIndex(root)

	for _, name := range opts.Ecosystems {
		content, err := ecosystem.Template(name)
		if err != nil {
			logger.Warn("ecosystem template unavailable", "name", name, "err", err)
			continue
		}
		source := "ecosystem:" + name
		if err := rules.ParseReader(strings.NewReader(content), source, root, ix, rules.ActionExclude, logger); err != nil {
			logger.Warn("failed to parse ecosystem template", "name", name, "err", err)
		}
	}

	if !opts.WithoutIgnoreFiles {
		for _, name := range []string{".gitignore", ".ignore"} {
			if ignoreFileDisabled(opts.WithoutIgnoreFile, name) {
				continue
			}
			path := filepath.Join(root, name)
			if !fileExists(path) {
				continue
			}
			if err := rules.ParseFile(path, root, ix, rules.ActionExclude, logger); err != nil {
				logger.Warn("failed to parse ignore file", "path", path, "err", err)
			}
		}

		search := config.FindIgnoreFiles(root, cfg.Ignore.Use)
		for _, name := range search.NotFound {
			logger.Warn("configured ignore file not found", "name", name)
		}
		for _, path := range search.Found {
			if ignoreFileDisabled(opts.WithoutIgnoreFile, filepath.Base(path)) {
				continue
			}
			if err := rules.ParseFile(path, root, ix, rules.ActionExclude, logger); err != nil {
				logger.Warn("failed to parse ignore file", "path", path, "err", err)
			}
		}

		if len(opts.WithIgnoreFiles) > 0 {
			cliSearch := config.FindIgnoreFiles(root, opts.WithIgnoreFiles)
			for _, name := range cliSearch.NotFound {
				logger.Warn("ignore file not found", "name", name)
			}
			for _, path := range cliSearch.Found {
				if err := rules.ParseFile(path, root, ix, rules.ActionExclude, logger); err != nil {
					logger.Warn("failed to parse ignore file", "path", path, "err", err)
				}
			}
		}
	}

	if !opts.WithoutExcludeAlways {
		addPatterns(ix, cfg.Ignore.AlwaysExclude, rules.ActionExclude, "config always_exclude", root, logger)
	}
	if !opts.WithoutIncludeAlways {
		addPatterns(ix, cfg.Ignore.AlwaysInclude, rules.ActionInclude, "config always_include", root, logger)
	}
	addPatterns(ix, opts.WithExclude, rules.ActionExclude, "--with-exclude", root, logger)
	addPatterns(ix, opts.WithInclude, rules.ActionInclude, "--with-include", root, logger)

	ix.Build()
	return ix
}

func addPatterns(ix *rules.Index, patterns []string, action rules.Action, source, root string, logger *log.Logger) {
	for _, pattern := range patterns {
		if err := ix.AddRule(pattern, action, rules.Origin{Source: source}, root); err != nil {
			logger.Warn("skipping pattern", "source", source, "err", err)
		}
	}
}

// ignoreFileDisabled matches --without-ignorefile names with or without
// the leading dot ("gitignore" disables ".gitignore").
func ignoreFileDisabled(disabled []string, name string) bool {
	for _, d := range disabled {
		if d == name || "."+d == name {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
