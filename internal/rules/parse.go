package rules

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// ParseFile reads an ignore file in gitignore dialect and adds its
// patterns to the index, anchored at dir. The anchor is passed rather
// than derived from the file's location so an ignore file living outside
// the archive root still applies to the walked tree. Individual invalid
// patterns are logged and skipped; the file keeps parsing.
func ParseFile(path, dir string, ix *Index, action Action, logger *log.Logger) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open ignore file %s: %w", path, err)
	}
	defer f.Close()

	if abs, err := filepath.Abs(path); err == nil {
		if resolved, err := filepath.EvalSymlinks(abs); err == nil {
			abs = resolved
		}
		ix.LoadedIgnoreFiles[abs] = struct{}{}
	}

	return ParseReader(f, path, dir, ix, action, logger)
}

// ParseReader adds gitignore-dialect patterns from r to the index. The
// source label is used for rule attribution; dir anchors rooted patterns.
func ParseReader(r io.Reader, source, dir string, ix *Index, action Action, logger *log.Logger) error {
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		origin := Origin{Source: source, Line: lineNum}
		if err := ix.AddRule(line, action, origin, dir); err != nil {
			logger.Warn("skipping pattern", "source", source, "line", lineNum, "err", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read ignore file %s: %w", source, err)
	}
	return nil
}
