package rules

import (
	"fmt"

	"github.com/bmatcuk/doublestar/v4"
)

// Matcher matches absolute paths against one compiled glob. Patterns use
// doublestar semantics: ** matches zero or more path segments, which the
// lazy re-anchoring relies on.
type Matcher struct {
	pattern string
}

// compileMatcher validates a glob and prepares it for matching.
// Directory-only globs end in /**; a trailing /* is added so the glob
// matches a directory's contents but never the same-named path itself.
func compileMatcher(glob string, dirOnly bool) (*Matcher, error) {
	pattern := glob
	if dirOnly {
		pattern += "/*"
	}
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid glob syntax: %s", glob)
	}
	return &Matcher{pattern: pattern}, nil
}

// Match reports whether the absolute path matches the glob.
func (m *Matcher) Match(path string) bool {
	ok, err := doublestar.Match(m.pattern, path)
	return err == nil && ok
}
