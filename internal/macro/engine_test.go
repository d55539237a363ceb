package macro

import (
	"testing"
)

func setOf(pairs ...[2]string) *Set {
	s := NewSet()
	for _, p := range pairs {
		s.Put(p[0], p[1])
	}
	return s
}

func TestExpand_ConcreteScenario(t *testing.T) {
	table := mustParse(t, `
macros:
  '*.sql':
    '${MACRO_1}': 'my_table'
    '%MACRO_2%': 'macro_replacement_2'
  '2.sql':
    'templated_column': 'replacing_column'
`)
	engine := NewEngine(nil)

	// 2.sql gets the union of both patterns.
	set := table.Resolve("2.sql")
	text, result := engine.Expand("2.sql", "SELECT templated_column FROM ${MACRO_1}", set)
	if text != "SELECT replacing_column FROM my_table" {
		t.Errorf("forward = %q", text)
	}
	if result.Expanded() != 2 {
		t.Errorf("Expanded() = %d, want 2", result.Expanded())
	}

	// No-op "translation", then reverse restores the original.
	rev, collisions := BuildReverse(set)
	if len(collisions) != 0 {
		t.Fatalf("unexpected collisions: %v", collisions)
	}
	restored, n := engine.Unexpand("2.sql", text, rev)
	if restored != "SELECT templated_column FROM ${MACRO_1}" {
		t.Errorf("reverse = %q", restored)
	}
	if n != 2 {
		t.Errorf("restored count = %d, want 2", n)
	}

	// 1.sql only matches the wildcard pattern.
	set1 := table.Resolve("1.sql")
	text1, _ := engine.Expand("1.sql", "SELECT %MACRO_2% FROM t WHERE c = templated_column", set1)
	if text1 != "SELECT macro_replacement_2 FROM t WHERE c = templated_column" {
		t.Errorf("1.sql forward = %q (file-scoped macro must not apply)", text1)
	}
}

func TestExpand_MultipleOccurrences(t *testing.T) {
	engine := NewEngine(nil)
	set := setOf([2]string{"${T}", "orders"})

	text, result := engine.Expand("q.sql", "SELECT * FROM ${T} JOIN ${T} USING (id)", set)
	if text != "SELECT * FROM orders JOIN orders USING (id)" {
		t.Errorf("got %q", text)
	}
	if got := result.Replacements[0].Count; got != 2 {
		t.Errorf("count = %d, want 2", got)
	}
	if len(result.Replacements[0].Spans) != 2 {
		t.Errorf("spans = %v, want 2 entries", result.Replacements[0].Spans)
	}
}

func TestExpand_ZeroOccurrencesIsReported(t *testing.T) {
	engine := NewEngine(nil)
	set := setOf([2]string{"${USED}", "x"}, [2]string{"${STALE}", "y"})

	_, result := engine.Expand("q.sql", "SELECT ${USED}", set)

	unused := result.UnusedKeys()
	if len(unused) != 1 || unused[0] != "${STALE}" {
		t.Errorf("UnusedKeys() = %v, want [${STALE}]", unused)
	}
	// Still two replacement records, one with count zero.
	if len(result.Replacements) != 2 {
		t.Fatalf("want a record per declared key, got %d", len(result.Replacements))
	}
}

// A macro value containing another macro's key is expanded by the later
// scan. The exact output of multi-key interaction is part of the contract.
func TestExpand_ValueContainsLaterKey(t *testing.T) {
	engine := NewEngine(nil)
	set := setOf(
		[2]string{"${A}", "prefix_${B}"},
		[2]string{"${B}", "beta"},
	)

	text, _ := engine.Expand("q.sql", "${A} and ${B}", set)
	// ${A} expands first, then the ${B} scan rewrites both occurrences.
	if text != "prefix_beta and beta" {
		t.Errorf("got %q, want %q", text, "prefix_beta and beta")
	}
}

// Reversed declaration order pins the opposite interaction: once ${B} has
// been expanded, the later ${A} value's embedded key stays literal.
func TestExpand_ValueContainsEarlierKey(t *testing.T) {
	engine := NewEngine(nil)
	set := setOf(
		[2]string{"${B}", "beta"},
		[2]string{"${A}", "prefix_${B}"},
	)

	text, _ := engine.Expand("q.sql", "${A} and ${B}", set)
	if text != "prefix_${B} and beta" {
		t.Errorf("got %q, want %q", text, "prefix_${B} and beta")
	}
}

func TestExpand_Idempotence(t *testing.T) {
	engine := NewEngine(nil)
	set := setOf(
		[2]string{"${MACRO_1}", "my_table"},
		[2]string{"%MACRO_2%", "macro_replacement_2"},
	)
	input := "SELECT %MACRO_2% FROM ${MACRO_1}"

	once, _ := engine.Expand("q.sql", input, set)
	twice, _ := engine.Expand("q.sql", once, set)
	if once != twice {
		t.Errorf("expand is not idempotent: %q vs %q", once, twice)
	}
}

func TestRoundTrip(t *testing.T) {
	engine := NewEngine(nil)
	set := setOf(
		[2]string{"${MACRO_1}", "my_table"},
		[2]string{"%MACRO_2%", "macro_replacement_2"},
		[2]string{"templated_column", "replacing_column"},
	)

	inputs := []string{
		"SELECT templated_column FROM ${MACRO_1} WHERE x = %MACRO_2%",
		"no macros here at all",
		"${MACRO_1}${MACRO_1}${MACRO_1}",
		"",
	}

	rev, collisions := BuildReverse(set)
	if len(collisions) != 0 {
		t.Fatalf("unexpected collisions: %v", collisions)
	}

	for _, input := range inputs {
		forward, _ := engine.Expand("q.sql", input, set)
		back, _ := engine.Unexpand("q.sql", forward, rev)
		if back != input {
			t.Errorf("round trip failed: %q -> %q -> %q", input, forward, back)
		}
	}
}

func TestUnexpand_BestEffortOnAlteredOutput(t *testing.T) {
	engine := NewEngine(nil)
	set := setOf([2]string{"${T}", "my_table"})
	rev, _ := BuildReverse(set)

	// The translation service upper-cased the identifier; the literal
	// reverse scan does not find it. Accepted behavior.
	restored, n := engine.Unexpand("q.sql", "SELECT * FROM MY_TABLE", rev)
	if restored != "SELECT * FROM MY_TABLE" {
		t.Errorf("got %q", restored)
	}
	if n != 0 {
		t.Errorf("restored count = %d, want 0", n)
	}

	// The service duplicated the literal; both copies are reversed.
	restored, n = engine.Unexpand("q.sql", "my_table my_table", rev)
	if restored != "${T} ${T}" || n != 2 {
		t.Errorf("got %q (n=%d)", restored, n)
	}
}

func TestReplaceRecording_Spans(t *testing.T) {
	out, spans := replaceRecording("a KEY b KEY", "KEY", "value")
	if out != "a value b value" {
		t.Fatalf("out = %q", out)
	}
	want := []Span{{Start: 2, End: 7}, {Start: 10, End: 15}}
	if len(spans) != len(want) {
		t.Fatalf("spans = %v", spans)
	}
	for i := range want {
		if spans[i] != want[i] {
			t.Errorf("spans[%d] = %v, want %v", i, spans[i], want[i])
		}
	}
}

func TestReplaceRecording_EmptyKey(t *testing.T) {
	out, spans := replaceRecording("abc", "", "x")
	if out != "abc" || spans != nil {
		t.Errorf("empty key must be a no-op, got %q %v", out, spans)
	}
}
