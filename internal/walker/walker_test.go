package walker

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/charmbracelet/log"

	"tarp/internal/config"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard)
}

// writeTree creates files under root; keys use forward slashes and a
// trailing slash marks an empty directory.
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		if len(name) > 0 && name[len(name)-1] == '/' {
			if err := os.MkdirAll(path, 0o755); err != nil {
				t.Fatal(err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func collect(t *testing.T, root string, opts Options, srcOpts SourceOptions) *Results {
	t.Helper()
	cfg := config.Default()
	ix := BuildIndex(root, &cfg, srcOpts, discardLogger())
	results, err := Collect(ix, opts, discardLogger())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	return results
}

func entryPaths(results *Results) []string {
	paths := make([]string, 0, len(results.Entries))
	for _, e := range results.Entries {
		paths = append(paths, filepath.ToSlash(e.RelativePath))
	}
	sort.Strings(paths)
	return paths
}

func excludedPaths(results *Results) []string {
	paths := make([]string, 0, len(results.Excluded))
	for _, e := range results.Excluded {
		paths = append(paths, filepath.ToSlash(e.RelativePath))
	}
	sort.Strings(paths)
	return paths
}

func assertPaths(t *testing.T, got, want []string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Fatalf("paths = %v, want %v", got, want)
		}
	}
}

func TestCollectHonorsGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "*.log\n",
		"a.txt":      "a",
		"app.log":    "noise",
		"sub/b.txt":  "b",
		"sub/x.log":  "noise",
	})

	results := collect(t, root, Options{}, SourceOptions{})

	// The ignore file itself is archived; only matched files are dropped.
	assertPaths(t, entryPaths(results), []string{".gitignore", "a.txt", "sub/b.txt"})
	assertPaths(t, excludedPaths(results), []string{"app.log", "sub/x.log"})
}

func TestCollectHiddenFilesIncluded(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".hidden":     "h",
		".env.sample": "e",
	})

	results := collect(t, root, Options{}, SourceOptions{})
	assertPaths(t, entryPaths(results), []string{".env.sample", ".hidden"})
}

func TestCollectEmptyDirsOmitted(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"empty/": "",
		"a.txt":  "a",
	})

	results := collect(t, root, Options{}, SourceOptions{})
	assertPaths(t, entryPaths(results), []string{"a.txt"})
}

func TestCollectNegationResurrection(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":        "secrets/\n!secrets/keep.txt\n",
		"secrets/keep.txt":  "k",
		"secrets/drop.txt":  "d",
		"secrets/other.key": "o",
	})

	results := collect(t, root, Options{}, SourceOptions{})

	assertPaths(t, entryPaths(results), []string{".gitignore", "secrets/keep.txt"})
	assertPaths(t, excludedPaths(results), []string{"secrets/drop.txt", "secrets/other.key"})
}

func TestCollectExcludedDirEnteredForIncludes(t *testing.T) {
	// A bare-name rule excludes the directory itself; the walk must still
	// enter it to find the force-included descendant.
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":       "secrets\n!secrets/keep.txt\n",
		"secrets/keep.txt": "k",
	})

	results := collect(t, root, Options{}, SourceOptions{})

	assertPaths(t, entryPaths(results), []string{".gitignore", "secrets/keep.txt"})
	assertPaths(t, excludedPaths(results), []string{"secrets"})
}

func TestCollectExcludedDirPruned(t *testing.T) {
	// Without any include rules an excluded subtree is never entered, so
	// its contents produce no excluded records either.
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":                "node_modules\n",
		"node_modules/pkg/index.js": "x",
		"a.txt":                     "a",
	})

	results := collect(t, root, Options{}, SourceOptions{})

	assertPaths(t, entryPaths(results), []string{".gitignore", "a.txt"})
	assertPaths(t, excludedPaths(results), []string{"node_modules"})
}

func TestCollectDotIgnoreAlongsideGitignore(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "*.log\n",
		".ignore":    "!app.log\n",
		"app.log":    "noise",
		"other.log":  "noise",
	})

	results := collect(t, root, Options{}, SourceOptions{})

	// .ignore loads after .gitignore, so its negation wins.
	assertPaths(t, entryPaths(results), []string{".gitignore", ".ignore", "app.log"})
	assertPaths(t, excludedPaths(results), []string{"other.log"})
}

func TestCollectNestedIgnoreFileNotApplied(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"sub/.gitignore": "*.log\n",
		"sub/x.log":      "noise",
	})

	results := collect(t, root, Options{}, SourceOptions{})

	// Only the root ignore files are discovered; the nested one is
	// archived like any other file and its patterns are inert.
	assertPaths(t, entryPaths(results), []string{"sub/.gitignore", "sub/x.log"})
}

func TestCollectWithoutIgnoreFiles(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore": "*.log\n",
		"app.log":    "noise",
	})

	results := collect(t, root, Options{}, SourceOptions{WithoutIgnoreFiles: true})
	assertPaths(t, entryPaths(results), []string{".gitignore", "app.log"})
}

func TestCollectWithoutOneIgnoreFile(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":  "*.log\n",
		".ignore":     "*.tmp\n",
		"app.log":     "noise",
		"scratch.tmp": "noise",
	})

	results := collect(t, root, Options{}, SourceOptions{WithoutIgnoreFile: []string{"gitignore"}})

	assertPaths(t, entryPaths(results), []string{".gitignore", ".ignore", "app.log"})
	assertPaths(t, excludedPaths(results), []string{"scratch.tmp"})
}

func TestCollectAlwaysExcludeGit(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".git/HEAD":        "ref: refs/heads/main",
		".git/objects/abc": "blob",
		"a.txt":            "a",
	})

	results := collect(t, root, Options{}, SourceOptions{})

	// .git itself is recursed (the pattern names its contents), HEAD and
	// the objects dir match, and the pruned objects dir hides its blobs.
	assertPaths(t, entryPaths(results), []string{"a.txt"})
	assertPaths(t, excludedPaths(results), []string{".git/HEAD", ".git/objects"})
}

func TestCollectCLIPrecedence(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		".gitignore":    "!important.log\n",
		"important.log": "keep me says git",
		"data.csv":      "d",
	})

	results := collect(t, root, Options{}, SourceOptions{
		WithExclude: []string{"*.log", "*.csv"},
		WithInclude: []string{"data.csv"},
	})

	// CLI excludes beat the ignore file's negation; the CLI include beats
	// the CLI exclude it follows.
	assertPaths(t, entryPaths(results), []string{".gitignore", "data.csv"})
	assertPaths(t, excludedPaths(results), []string{"important.log"})
}

func TestCollectSymlink(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"target.txt": "content here",
	})
	if err := os.Symlink("target.txt", filepath.Join(root, "link.txt")); err != nil {
		t.Fatal(err)
	}

	results := collect(t, root, Options{}, SourceOptions{})

	var link *FileEntry
	for i := range results.Entries {
		if results.Entries[i].RelativePath == "link.txt" {
			link = &results.Entries[i]
		}
	}
	if link == nil {
		t.Fatal("link.txt not collected")
	}
	if link.Kind != KindSymlink {
		t.Errorf("Kind = %v, want symlink", link.Kind)
	}
	if link.LinkTarget != "target.txt" {
		t.Errorf("LinkTarget = %q, want target.txt", link.LinkTarget)
	}
	if link.Size != 0 {
		t.Errorf("symlink Size = %d, want 0", link.Size)
	}
}

func TestCollectDereference(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"target.txt": "twelve bytes",
	})
	if err := os.Symlink("target.txt", filepath.Join(root, "link.txt")); err != nil {
		t.Fatal(err)
	}

	results := collect(t, root, Options{Dereference: true}, SourceOptions{})

	for _, e := range results.Entries {
		if e.RelativePath == "link.txt" {
			if e.Kind != KindFile {
				t.Errorf("dereferenced link Kind = %v, want file", e.Kind)
			}
			if e.Size != int64(len("twelve bytes")) {
				t.Errorf("dereferenced link Size = %d", e.Size)
			}
			return
		}
	}
	t.Fatal("link.txt not collected")
}

func TestCollectBrokenSymlinkWithDereference(t *testing.T) {
	root := t.TempDir()
	if err := os.Symlink("gone.txt", filepath.Join(root, "broken.txt")); err != nil {
		t.Fatal(err)
	}

	results := collect(t, root, Options{Dereference: true}, SourceOptions{})

	if len(results.Entries) != 1 {
		t.Fatalf("collected %d entries, want 1", len(results.Entries))
	}
	if results.Entries[0].Kind != KindSymlink {
		t.Errorf("broken link Kind = %v, want symlink fallback", results.Entries[0].Kind)
	}
}

func TestCollectReproducible(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"b.txt":     "b",
		"a.txt":     "a",
		"sub/c.txt": "c",
	})

	first := collect(t, root, Options{Reproducible: true}, SourceOptions{})
	second := collect(t, root, Options{Reproducible: true}, SourceOptions{})

	if len(first.Entries) != len(second.Entries) {
		t.Fatalf("entry counts differ: %d vs %d", len(first.Entries), len(second.Entries))
	}
	for i := range first.Entries {
		if first.Entries[i].RelativePath != second.Entries[i].RelativePath {
			t.Errorf("entry %d order differs: %q vs %q", i, first.Entries[i].RelativePath, second.Entries[i].RelativePath)
		}
		if first.Entries[i].ModTime != 0 {
			t.Errorf("entry %q ModTime = %d, want 0", first.Entries[i].RelativePath, first.Entries[i].ModTime)
		}
	}
	if !sort.SliceIsSorted(first.Entries, func(i, j int) bool {
		return first.Entries[i].RelativePath < first.Entries[j].RelativePath
	}) {
		t.Error("reproducible entries not sorted")
	}
}

func TestCollectUnreadableDir(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("permission bits do not bind for root")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"locked/a.txt": "a",
	})
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

	cfg := config.Default()
	ix := BuildIndex(root, &cfg, SourceOptions{}, discardLogger())
	_, err := Collect(ix, Options{}, discardLogger())
	if err == nil {
		t.Fatal("Collect over unreadable directory returned nil error")
	}
	var walkErr *WalkError
	if !errors.As(err, &walkErr) {
		t.Fatalf("error %T is not a WalkError", err)
	}
}
