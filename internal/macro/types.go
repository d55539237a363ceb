// Package macro implements the bidirectional macro substitution engine.
// Macros are literal tokens (e.g. "${MACRO_1}") that are expanded to concrete
// values before SQL files are submitted for translation and restored after
// translated output comes back.
package macro

// Macro is a single (key, value) substitution pair.
type Macro struct {
	Key   string
	Value string
}

// Set is an ordered collection of macros with unique keys.
// Order is declaration order; it determines the scan order of the forward
// pass and must stay deterministic.
type Set struct {
	pairs []Macro
	index map[string]int
}

// NewSet returns an empty macro set.
func NewSet() *Set {
	return &Set{index: make(map[string]int)}
}

// Put inserts a macro, or overwrites the value of an existing key.
// An overwritten key keeps its original position so scan order stays stable
// while later declarations win on value.
func (s *Set) Put(key, value string) {
	if i, ok := s.index[key]; ok {
		s.pairs[i].Value = value
		return
	}
	s.index[key] = len(s.pairs)
	s.pairs = append(s.pairs, Macro{Key: key, Value: value})
}

// Get returns the value for key and whether it is present.
func (s *Set) Get(key string) (string, bool) {
	i, ok := s.index[key]
	if !ok {
		return "", false
	}
	return s.pairs[i].Value, true
}

// Len returns the number of macros in the set.
func (s *Set) Len() int {
	return len(s.pairs)
}

// Pairs returns the macros in declaration order. The returned slice is a
// copy; the set itself is never mutated after resolution.
func (s *Set) Pairs() []Macro {
	out := make([]Macro, len(s.pairs))
	copy(out, s.pairs)
	return out
}

// PatternEntry binds a file-name glob pattern to its macro set.
type PatternEntry struct {
	Pattern string
	Set     *Set
}

// Table is the full macro configuration: an ordered list of pattern entries
// as declared in the mapping document. It is immutable once loaded and safe
// for concurrent reads.
type Table struct {
	entries []PatternEntry
}

// Entries returns the pattern entries in declaration order.
func (t *Table) Entries() []PatternEntry {
	return t.entries
}

// Len returns the number of patterns in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}
