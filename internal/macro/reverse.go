package macro

import (
	"fmt"
	"strings"
)

// Collision records two or more distinct macro keys sharing the same
// replacement value, which makes textual reversal ambiguous.
type Collision struct {
	Value string   `json:"value"`
	Keys  []string `json:"keys"`
}

func (c Collision) String() string {
	return fmt.Sprintf("value %q is produced by macros %s; reversal will use %q",
		c.Value, strings.Join(c.Keys, ", "), c.Keys[len(c.Keys)-1])
}

// ReverseSet maps replacement values back to their macro keys, in the
// declaration order of the forward set. Built fresh per file and append-only
// afterwards.
type ReverseSet struct {
	pairs []Macro // Key holds the value, Value holds the original key
	index map[string]int
}

// Len returns the number of reverse entries.
func (r *ReverseSet) Len() int {
	return len(r.pairs)
}

// Pairs returns (value, original-key) pairs in scan order.
func (r *ReverseSet) Pairs() []Macro {
	out := make([]Macro, len(r.pairs))
	copy(out, r.pairs)
	return out
}

// KeyFor returns the macro key a value reverses to.
func (r *ReverseSet) KeyFor(value string) (string, bool) {
	i, ok := r.index[value]
	if !ok {
		return "", false
	}
	return r.pairs[i].Value, true
}

// BuildReverse inverts a forward macro set into a ReverseSet.
//
// Two distinct keys mapping to the same value is a reportable collision:
// it is recorded rather than silently overwritten, and resolved so that the
// last-declared key wins. That matches the forward pass, where the
// last-declared entry is the one whose value ends up in the text, so forward
// and reverse stay mutually consistent whenever the file only ever contained
// one of the colliding keys.
func BuildReverse(set *Set) (*ReverseSet, []Collision) {
	rev := &ReverseSet{index: make(map[string]int)}
	colliding := make(map[string][]string)

	for _, m := range set.Pairs() {
		if i, ok := rev.index[m.Value]; ok {
			if prev, seen := colliding[m.Value]; seen {
				colliding[m.Value] = append(prev, m.Key)
			} else {
				colliding[m.Value] = []string{rev.pairs[i].Value, m.Key}
			}
			rev.pairs[i].Value = m.Key
			continue
		}
		rev.index[m.Value] = len(rev.pairs)
		rev.pairs = append(rev.pairs, Macro{Key: m.Value, Value: m.Key})
	}

	var collisions []Collision
	for _, m := range rev.pairs {
		if keys, ok := colliding[m.Key]; ok {
			collisions = append(collisions, Collision{Value: m.Key, Keys: keys})
		}
	}
	return rev, collisions
}
