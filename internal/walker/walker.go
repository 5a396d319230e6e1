// Package walker performs the depth-first descent over the archive root,
// consulting the rule index per entry and pruning excluded subtrees
// without breaking gitignore's "a deeper rule can resurrect an excluded
// path" semantics.
package walker

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"

	"tarp/internal/rules"
)

// Options configures a walk.
type Options struct {
	// Dereference follows symlinks and archives their targets' content.
	Dereference bool
	// Reproducible zeroes timestamps and sorts final entry lists so two
	// runs over an unchanged tree produce identical archives.
	Reproducible bool
}

// Results holds the ordered outcome of a walk.
type Results struct {
	Entries  []FileEntry
	Excluded []ExcludedFile
}

// WalkError wraps a fatal traversal failure with the path it occurred at.
type WalkError struct {
	Path string
	Err  error
}

func (e *WalkError) Error() string {
	return "walk " + e.Path + ": " + e.Err.Error()
}

func (e *WalkError) Unwrap() error {
	return e.Err
}

// Collect walks the tree rooted at the index's archive root and returns
// the included entries and the excluded paths. An unreadable directory
// or an uncomputable relative path aborts the walk.
func Collect(ix *rules.Index, opts Options, logger *log.Logger) (*Results, error) {
	results := &Results{}
	if err := walkDir(ix.Root(), ix, opts, logger, results); err != nil {
		return nil, err
	}

	if opts.Reproducible {
		sort.Slice(results.Entries, func(i, j int) bool {
			return results.Entries[i].RelativePath < results.Entries[j].RelativePath
		})
		sort.Slice(results.Excluded, func(i, j int) bool {
			return results.Excluded[i].RelativePath < results.Excluded[j].RelativePath
		})
	}

	return results, nil
}

func walkDir(dir string, ix *rules.Index, opts Options, logger *log.Logger, results *Results) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return &WalkError{Path: dir, Err: err}
	}
	// os.ReadDir sorts by name; keep the guarantee explicit since
	// deterministic visit order is load-bearing for reproducibility.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	root := ix.Root()
	for _, dirent := range entries {
		path := filepath.Join(dir, dirent.Name())

		relative, err := filepath.Rel(root, path)
		if err != nil {
			return &WalkError{Path: path, Err: fmt.Errorf("compute relative path: %w", err)}
		}

		// Nested ignore files are not discovered or parsed; warn unless
		// the file was explicitly loaded via config or CLI.
		if name := dirent.Name(); (name == ".gitignore" || name == ".ignore") && dir != root {
			if !wasLoaded(ix, path) {
				logger.Warn("nested ignore file not processed", "path", relative)
			}
		}

		info, err := statEntry(path, opts.Dereference)
		if err != nil {
			return &WalkError{Path: path, Err: err}
		}

		isDir := info.IsDir() && info.Mode()&os.ModeSymlink == 0

		if action, origin, ok := ix.FindMatch(path); ok {
			switch action {
			case rules.ActionExclude:
				results.Excluded = append(results.Excluded, ExcludedFile{
					RelativePath: relative,
					Origin:       origin,
				})
				// An excluded directory may still shelter explicitly
				// included descendants; enter it without recording the
				// directory itself.
				if isDir && ix.HasIncludeRules(path) {
					if err := walkDir(path, ix, opts, logger, results); err != nil {
						return err
					}
				}
				continue
			case rules.ActionInclude:
				if isDir {
					if err := walkDir(path, ix, opts, logger, results); err != nil {
						return err
					}
				} else {
					results.Entries = append(results.Entries, newFileEntry(path, relative, info, opts.Reproducible))
				}
				continue
			}
		}

		// No rule matched: include by default.
		if isDir {
			if err := walkDir(path, ix, opts, logger, results); err != nil {
				return err
			}
		} else {
			results.Entries = append(results.Entries, newFileEntry(path, relative, info, opts.Reproducible))
		}
	}

	return nil
}

// statEntry resolves metadata for one path. With dereference enabled a
// broken symlink falls back to the link itself so it is still recorded
// as a symlink entry rather than failing the walk.
func statEntry(path string, dereference bool) (os.FileInfo, error) {
	if dereference {
		info, err := os.Stat(path)
		if err == nil {
			return info, nil
		}
	}
	return os.Lstat(path)
}

func wasLoaded(ix *rules.Index, path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	_, ok := ix.LoadedIgnoreFiles[abs]
	return ok
}
