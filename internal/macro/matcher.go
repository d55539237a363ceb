package macro

import (
	"path"
	"path/filepath"
)

// Resolve returns the macro set applicable to the given file, built as the
// ordered union of every pattern entry whose glob matches the file's base
// name. All matching entries apply, not just the most specific one:
// configuration deliberately layers file-specific macros on top of global
// wildcard ones. When two matching patterns declare the same key, the
// later-declared pattern wins.
//
// A file matching no pattern gets an empty set; that is not an error.
func (t *Table) Resolve(fileName string) *Set {
	base := filepath.Base(fileName)
	union := NewSet()
	if t == nil {
		return union
	}

	for _, entry := range t.entries {
		// Patterns are validated at load time, so a match error here is
		// impossible; treat it as a non-match anyway.
		ok, err := path.Match(entry.Pattern, base)
		if err != nil || !ok {
			continue
		}
		for _, m := range entry.Set.Pairs() {
			union.Put(m.Key, m.Value)
		}
	}

	return union
}

// MatchingPatterns returns the patterns that match the given file, in
// declaration order. Used for diagnostics.
func (t *Table) MatchingPatterns(fileName string) []string {
	base := filepath.Base(fileName)
	var patterns []string
	if t == nil {
		return patterns
	}
	for _, entry := range t.entries {
		if ok, err := path.Match(entry.Pattern, base); err == nil && ok {
			patterns = append(patterns, entry.Pattern)
		}
	}
	return patterns
}
