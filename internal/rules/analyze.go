package rules

import (
	"path"
	"strings"
)

// analyze normalizes one raw pattern (negation already stripped) defined
// in ignoreDir and returns its anchored representation.
func analyze(pattern, ignoreDir string) Pattern {
	original := pattern
	pattern = strings.TrimSpace(pattern)

	// Trailing slash marks a directory-only pattern. A pattern already
	// ending in /** is equivalently directory-only.
	isDir := false
	if strings.HasSuffix(pattern, "/") {
		pattern = strings.TrimSuffix(pattern, "/")
		isDir = true
	} else {
		isDir = strings.HasSuffix(pattern, "/**")
	}

	// A pattern with an internal or leading slash is rooted to the
	// defining directory; otherwise it is universal.
	hasInternalSlash := strings.Contains(pattern, "/") && !strings.HasPrefix(pattern, "/")
	rooted := hasInternalSlash || strings.HasPrefix(pattern, "/")

	// A leading slash only signals rootedness, not a path component.
	pattern = strings.TrimPrefix(pattern, "/")

	hasDoubleStar := strings.Contains(pattern, "**")
	doubleStarDepth := 0
	if hasDoubleStar {
		doubleStarDepth = strings.Count(pattern[:strings.Index(pattern, "**")], "/")
	}

	wildcards := countWildcards(pattern)

	var bucket Bucket
	switch {
	case wildcards == 0 && !isDir:
		bucket = BucketExplicitPath
	case !hasDoubleStar && rooted && !isDir:
		bucket = BucketWildcardFilename
	case hasDoubleStar && rooted && doubleStarDepth > 0:
		bucket = BucketDeepDoubleStar
	default:
		bucket = BucketUniversal
	}

	// Anchor at the defining directory. Universal patterns may match at
	// any depth beneath it, modeled by a **/ prefix. Directory patterns
	// get a trailing /** so they match contents only.
	var absolute string
	if rooted {
		absolute = joinGlob(ignoreDir, pattern)
	} else {
		absolute = joinGlob(ignoreDir, "**/"+pattern)
	}
	if isDir {
		absolute += "/**"
	}

	return Pattern{
		Original:        original,
		Absolute:        absolute,
		Bucket:          bucket,
		PathDepth:       strings.Count(absolute, "/"),
		DoubleStarDepth: doubleStarDepth,
		WildcardCount:   wildcards,
		HasDoubleStar:   hasDoubleStar || !rooted || isDir,
		ActivationPath:  activationPath(absolute, ignoreDir),
		IsDirPattern:    isDir,
	}
}

// countWildcards counts wildcard units: * is 1, ** is 2, ? is 1, each
// [...] class is 1. A backslash escapes the following character.
func countWildcards(pattern string) int {
	n := 0
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '*':
			n++
			if i+1 < len(pattern) && pattern[i+1] == '*' {
				i++
				n++
			}
		case '?', '[':
			n++
		}
	}
	return n
}

// firstWildcard returns the index of the first unescaped wildcard
// character, or -1 if the pattern is fixed.
func firstWildcard(pattern string) int {
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case '\\':
			i++
		case '*', '?', '[':
			return i
		}
	}
	return -1
}

// activationPath returns the fixed prefix of an absolute glob: everything
// up to the first wildcard, truncated at the last path separator. When no
// directory prefix survives, the defining directory is the anchor.
func activationPath(absolute, base string) string {
	end := firstWildcard(absolute)
	if end < 0 {
		end = len(absolute)
	}
	slash := strings.LastIndexByte(absolute[:end], '/')
	if slash <= 0 {
		return base
	}
	return absolute[:slash]
}

// reanchorGlob rewrites everything before the ** segment with dir.
func reanchorGlob(glob, dir string) string {
	pos := strings.Index(glob, "**")
	if pos < 0 {
		return glob
	}
	return joinGlob(dir, glob[pos:])
}

// underOrEqual reports whether p equals dir or lies beneath it,
// component-wise.
func underOrEqual(p, dir string) bool {
	if p == dir {
		return true
	}
	if dir == "/" {
		return strings.HasPrefix(p, "/")
	}
	return strings.HasPrefix(p, dir+"/")
}

// joinGlob joins a directory and a glob suffix without cleaning away
// wildcard segments.
func joinGlob(dir, suffix string) string {
	if dir == "" || dir == "/" {
		return "/" + suffix
	}
	return dir + "/" + suffix
}

// parentDir returns the parent directory of an absolute path, or "" at
// the filesystem root.
func parentDir(p string) string {
	parent := path.Dir(p)
	if parent == p {
		return ""
	}
	return parent
}
