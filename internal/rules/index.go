package rules

import (
	"fmt"
	"sort"
	"strings"
)

// indexEntry holds the applicable rules for one directory.
type indexEntry struct {
	// rules sorted by ascending sequence number.
	rules []*Rule
	// hasIncludes is true when any rule in the list is an Include. An
	// excluded directory with this flag set must still be entered so
	// resurrected descendants are discovered.
	hasIncludes bool
}

// Index owns all analyzed rules in global insertion order and maintains a
// per-directory cache of applicable, correctly re-anchored rules. It is
// built once, then extended in place during a single sequential walk.
type Index struct {
	root    string
	index   map[string]*indexEntry
	rules   []*Rule
	nextSeq int

	// LoadedIgnoreFiles tracks absolute paths of ignore files that were
	// parsed, so the walker can tell explicitly loaded files apart from
	// undiscovered nested ones.
	LoadedIgnoreFiles map[string]struct{}
}

// NewIndex creates an empty index for the given archive root. The root
// must be an absolute, symlink-resolved path.
func NewIndex(root string) *Index {
	return &Index{
		root:              root,
		index:             make(map[string]*indexEntry),
		LoadedIgnoreFiles: make(map[string]struct{}),
	}
}

// Root returns the archive root the index was built for.
func (ix *Index) Root() string { return ix.root }

// AddRule analyzes one pattern defined in ignoreDir and appends it to the
// index. Blank and comment lines are ignored. A leading ! flips the
// nominal action. Patterns whose activation path cannot intersect the
// archive root are dropped. An invalid glob is an error; the caller logs
// it and continues.
func (ix *Index) AddRule(pattern string, action Action, origin Origin, ignoreDir string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" || strings.HasPrefix(pattern, "#") {
		return nil
	}

	if negated, ok := strings.CutPrefix(pattern, "!"); ok {
		action = action.flip()
		pattern = negated
	}

	info := analyze(pattern, ignoreDir)

	// The rule activates in a subtree disjoint from the archive root, so
	// it can never match anything we walk.
	if !underOrEqual(ix.root, info.ActivationPath) && !underOrEqual(info.ActivationPath, ix.root) {
		return nil
	}

	m, err := compileMatcher(info.Absolute, info.IsDirPattern)
	if err != nil {
		return fmt.Errorf("pattern %q: %w", pattern, err)
	}

	rule := &Rule{
		Glob:    info.Absolute,
		matcher: m,
		Action:  action,
		Origin:  origin,
		Info:    info,
		Seq:     ix.nextSeq,
	}
	ix.nextSeq++
	ix.rules = append(ix.rules, rule)
	return nil
}

// Build populates the per-directory cache after all sources are added.
func (ix *Index) Build() {
	ix.index = make(map[string]*indexEntry)

	// Phase 1: register each rule at its activation path and at every
	// ancestor up to the archive root, so traversal sees the rule as soon
	// as it reaches any directory on the path down to the activation
	// point.
	for _, rule := range ix.rules {
		dir := rule.Info.ActivationPath
		for {
			e := ix.entryFor(dir)
			e.rules = append(e.rules, rule)
			if dir == ix.root || !underOrEqual(dir, ix.root) {
				break
			}
			parent := parentDir(dir)
			if parent == "" {
				break
			}
			dir = parent
		}
	}

	// Phase 2: pull ancestor rules down into every cached directory, so
	// wildcard rules registered higher up are visible at every depth they
	// can reach, not just along the single insertion chain.
	dirs := make([]string, 0, len(ix.index))
	for dir := range ix.index {
		dirs = append(dirs, dir)
	}

	for _, dir := range dirs {
		var fromAncestors []*Rule
		anc := parentDir(dir)
		for anc != "" {
			if e, ok := ix.index[anc]; ok {
				for _, rule := range e.rules {
					if rule.Info.HasDoubleStar || underOrEqual(dir, rule.Info.ActivationPath) {
						fromAncestors = append(fromAncestors, rule)
					}
				}
			}
			if anc == ix.root || !underOrEqual(anc, ix.root) {
				break
			}
			anc = parentDir(anc)
		}

		entry := ix.index[dir]
		for _, rule := range fromAncestors {
			if !containsGlob(entry.rules, rule.Glob) {
				entry.rules = append(entry.rules, rule)
			}
		}
	}

	for _, entry := range ix.index {
		finalize(entry)
	}
}

// RulesFor returns the rules applicable in dir, lazily extending the
// cache from the nearest cached ancestor. Each directory's re-anchored
// list is computed at most once per run.
func (ix *Index) RulesFor(dir string) []*Rule {
	if entry, ok := ix.index[dir]; ok {
		return entry.rules
	}

	var ancestor *indexEntry
	anc := parentDir(dir)
	for anc != "" {
		if e, ok := ix.index[anc]; ok {
			ancestor = e
			break
		}
		if anc == ix.root || !underOrEqual(anc, ix.root) {
			break
		}
		anc = parentDir(anc)
	}

	var adapted []*Rule
	if ancestor != nil {
		for _, rule := range ancestor.rules {
			if r := rule.reanchorFor(dir); r != nil {
				adapted = append(adapted, r)
			}
		}
	}

	entry := &indexEntry{rules: adapted}
	finalize(entry)
	ix.index[dir] = entry
	return entry.rules
}

// FindMatch resolves the effective action for an absolute file path:
// the parent directory's rules are scanned from highest to lowest
// sequence number and the first matching rule wins. The returned string
// describes the rule's origin. ok is false when no rule matches.
func (ix *Index) FindMatch(filePath string) (action Action, origin string, ok bool) {
	dir := parentDir(filePath)
	if dir == "" {
		return 0, "", false
	}
	list := ix.RulesFor(dir)
	for i := len(list) - 1; i >= 0; i-- {
		if list[i].Matches(filePath) {
			return list[i].Action, list[i].Origin.String(), true
		}
	}
	return 0, "", false
}

// HasIncludeRules reports whether any rule applicable in dir is an
// Include. O(1) amortized via the precomputed per-directory flag.
func (ix *Index) HasIncludeRules(dir string) bool {
	ix.RulesFor(dir)
	return ix.index[dir].hasIncludes
}

// AllRules returns every indexed rule in insertion order, for verbose
// output.
func (ix *Index) AllRules() []*Rule { return ix.rules }

func (ix *Index) entryFor(dir string) *indexEntry {
	e, ok := ix.index[dir]
	if !ok {
		e = &indexEntry{}
		ix.index[dir] = e
	}
	return e
}

func finalize(entry *indexEntry) {
	sort.SliceStable(entry.rules, func(i, j int) bool {
		return entry.rules[i].Seq < entry.rules[j].Seq
	})
	entry.hasIncludes = false
	for _, rule := range entry.rules {
		if rule.Action == ActionInclude {
			entry.hasIncludes = true
			break
		}
	}
}

func containsGlob(rules []*Rule, glob string) bool {
	for _, r := range rules {
		if r.Glob == glob {
			return true
		}
	}
	return false
}
