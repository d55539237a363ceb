package macro

import (
	"io"
	"log/slog"
	"strings"
)

// Span marks a half-open [Start, End) byte range.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Replacement records the applications of one macro during a forward pass.
// Spans are positions in the text as it stood when that macro was scanned;
// a later macro in the same pass may shift them. They are diagnostic only.
type Replacement struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Count int    `json:"count"`
	Spans []Span `json:"spans,omitempty"`
}

// FileResult is the substitution record for a single file: what was
// replaced, under which patterns, and any reverse-map collisions.
type FileResult struct {
	File         string        `json:"file"`
	Patterns     []string      `json:"patterns,omitempty"`
	Replacements []Replacement `json:"replacements,omitempty"`
	Collisions   []Collision   `json:"collisions,omitempty"`
	Restored     int           `json:"restored,omitempty"`
	Skipped      bool          `json:"skipped,omitempty"`
}

// Expanded returns the total number of forward replacements made.
func (r *FileResult) Expanded() int {
	n := 0
	for _, rep := range r.Replacements {
		n += rep.Count
	}
	return n
}

// UnusedKeys returns macro keys that matched the file's patterns but never
// occurred in its text. Useful for spotting stale mapping entries.
func (r *FileResult) UnusedKeys() []string {
	var unused []string
	for _, rep := range r.Replacements {
		if rep.Count == 0 {
			unused = append(unused, rep.Key)
		}
	}
	return unused
}

// Engine performs forward and reverse macro substitution. It holds no
// per-file state, so one Engine may process many files concurrently.
type Engine struct {
	logger *slog.Logger
}

// NewEngine creates a substitution engine. A nil logger discards output.
func NewEngine(logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{logger: logger}
}

// Expand applies the forward pass: every macro key in the set, in
// declaration order, is replaced by its value wherever it literally occurs.
// Matching is pure substring matching with no token awareness; macros are
// expected to be distinctive tokens like "${MACRO_1}".
//
// Because keys are applied in order over the mutated text, a macro value
// containing a later macro's key will have that key expanded too. The
// ordering is deterministic and part of the contract.
func (e *Engine) Expand(fileName, text string, set *Set) (string, *FileResult) {
	result := &FileResult{File: fileName}

	for _, m := range set.Pairs() {
		var spans []Span
		text, spans = replaceRecording(text, m.Key, m.Value)
		result.Replacements = append(result.Replacements, Replacement{
			Key:   m.Key,
			Value: m.Value,
			Count: len(spans),
			Spans: spans,
		})
		if len(spans) > 0 {
			e.logger.Debug("macro expanded",
				"file", fileName, "key", m.Key, "count", len(spans))
		}
	}

	return text, result
}

// Unexpand applies the reverse pass: every replacement value in the reverse
// set is substituted back to its original macro key. Returns the restored
// text and the number of replacements made.
//
// Reversal is best-effort textual restoration. If the translation service
// altered or duplicated a substituted literal (case-folding an identifier,
// expanding a view), occurrences may be missed or over-matched; that is
// accepted behavior, not a defect.
func (e *Engine) Unexpand(fileName, text string, rev *ReverseSet) (string, int) {
	restored := 0
	for _, m := range rev.Pairs() {
		var spans []Span
		text, spans = replaceRecording(text, m.Key, m.Value)
		restored += len(spans)
	}
	if restored > 0 {
		e.logger.Debug("macros restored", "file", fileName, "count", restored)
	}
	return text, restored
}

// replaceRecording replaces every non-overlapping occurrence of old with new
// and records the span of each inserted replacement in the output text.
func replaceRecording(text, old, new string) (string, []Span) {
	if old == "" || !strings.Contains(text, old) {
		return text, nil
	}

	var b strings.Builder
	var spans []Span
	for {
		i := strings.Index(text, old)
		if i < 0 {
			break
		}
		b.WriteString(text[:i])
		start := b.Len()
		b.WriteString(new)
		spans = append(spans, Span{Start: start, End: b.Len()})
		text = text[i+len(old):]
	}
	b.WriteString(text)
	return b.String(), spans
}
