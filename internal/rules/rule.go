// Package rules turns ignore-pattern text from prioritized sources into
// a per-directory decision procedure. Patterns are absolutized at parse
// time and indexed by activation path; at walk time a pre-sorted list is
// scanned for the last match (gitignore semantics).
package rules

import "strconv"

// Action is what happens to a path when a rule matches it.
type Action int

const (
	ActionExclude Action = iota
	ActionInclude
)

func (a Action) String() string {
	if a == ActionInclude {
		return "include"
	}
	return "exclude"
}

// flip returns the opposite action, used for `!`-negated patterns.
func (a Action) flip() Action {
	if a == ActionExclude {
		return ActionInclude
	}
	return ActionExclude
}

// Origin records where a rule came from, for attribution in verbose output.
type Origin struct {
	Source string
	Line   int // 1-based; 0 means no line (CLI flags, config patterns)
}

func (o Origin) String() string {
	if o.Line > 0 {
		return o.Source + ":" + strconv.Itoa(o.Line)
	}
	return o.Source
}

// Bucket classifies a pattern by specificity. It is diagnostic only:
// match resolution is driven solely by insertion sequence.
type Bucket int

const (
	// BucketExplicitPath is a fixed path with no wildcards: /a/b/file.txt
	BucketExplicitPath Bucket = iota
	// BucketWildcardFilename is a fixed path with a wildcard filename: /a/b/*.txt
	BucketWildcardFilename
	// BucketDeepDoubleStar has ** at non-zero depth: a/b/**/file.txt
	BucketDeepDoubleStar
	// BucketUniversal matches at any depth: *.log, **/*.log
	BucketUniversal
)

func (b Bucket) String() string {
	switch b {
	case BucketExplicitPath:
		return "explicit-path"
	case BucketWildcardFilename:
		return "wildcard-filename"
	case BucketDeepDoubleStar:
		return "deep-double-star"
	default:
		return "universal"
	}
}

// Pattern is the analyzed, immutable form of one raw pattern line.
type Pattern struct {
	// Original is the raw pattern before absolutizing.
	Original string
	// Absolute is the pattern anchored in the archive root's coordinate space.
	Absolute string
	// Bucket is the diagnostic specificity class.
	Bucket Bucket
	// PathDepth is the component depth of Absolute.
	PathDepth int
	// DoubleStarDepth is the directory depth at which ** appears.
	DoubleStarDepth int
	// WildcardCount counts wildcard units (* is 1, ** is 2, ? and [..] are 1).
	WildcardCount int
	// HasDoubleStar reports whether the rule needs re-anchoring support on
	// descent: ** present, universal, or directory-only.
	HasDoubleStar bool
	// ActivationPath is the deepest directory guaranteed to exist before
	// any wildcard can vary. It decides in which subtrees the rule is
	// even considered.
	ActivationPath string
	// IsDirPattern marks a trailing-slash (or trailing /**) pattern that
	// matches a directory's contents, never a same-named file.
	IsDirPattern bool
}

// Rule is an indexed rule ready for matching. Rules are immutable once
// built; re-anchoring produces a new Rule with the same sequence number.
type Rule struct {
	// Glob is the absolute glob for this directory level.
	Glob    string
	matcher *Matcher
	Action  Action
	Origin  Origin
	Info    Pattern
	// Seq is the insertion sequence number. It is the sole precedence key:
	// among matching rules the highest Seq wins.
	Seq int
}

// Matches reports whether the rule matches the given absolute path.
func (r *Rule) Matches(path string) bool {
	return r.matcher.Match(path)
}

// reanchorFor adapts the rule for lookup in dir. It returns nil when the
// rule cannot apply anywhere under dir (sibling subtrees), the rule
// unchanged when its glob is already correct there, or a re-anchored
// clone when the recursive wildcard prefix must be rewritten.
func (r *Rule) reanchorFor(dir string) *Rule {
	dirUnderActivation := underOrEqual(dir, r.Info.ActivationPath)
	activationUnderDir := underOrEqual(r.Info.ActivationPath, dir)

	// Siblings: the rule can never apply below dir.
	if !dirUnderActivation && !activationUnderDir {
		return nil
	}

	// Directory patterns carry a trailing /** that already matches
	// contents at any depth beneath their anchor.
	if r.Info.IsDirPattern {
		return r
	}

	if !r.Info.HasDoubleStar {
		if dirUnderActivation {
			return r
		}
		return nil
	}

	// Activation point not reached yet: keep the rule deferred.
	if activationUnderDir {
		return r
	}

	// dir is strictly below the activation path: rewrite the fixed prefix
	// before ** so the pattern stays correct without re-scanning the
	// whole subtree prefix at every level.
	glob := reanchorGlob(r.Glob, dir)
	m, err := compileMatcher(glob, r.Info.IsDirPattern)
	if err != nil {
		return nil
	}
	clone := *r
	clone.Glob = glob
	clone.matcher = m
	return &clone
}
