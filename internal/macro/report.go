package macro

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
)

// Report aggregates per-file substitution results for one run. It is safe
// for concurrent Add calls, so parallel per-file workers can share one
// report.
type Report struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`

	mu    sync.Mutex
	files []*FileResult
}

// NewReport creates an empty report with a fresh run ID.
func NewReport() *Report {
	return &Report{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
}

// Add records a file's substitution result.
func (r *Report) Add(result *FileResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.files = append(r.files, result)
}

// Files returns the recorded results sorted by file name for stable output.
func (r *Report) Files() []*FileResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*FileResult, len(r.files))
	copy(out, r.files)
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out
}

// TotalExpanded returns the total forward replacements across all files.
func (r *Report) TotalExpanded() int {
	n := 0
	for _, f := range r.Files() {
		n += f.Expanded()
	}
	return n
}

// TotalRestored returns the total reverse replacements across all files.
func (r *Report) TotalRestored() int {
	n := 0
	for _, f := range r.Files() {
		n += f.Restored
	}
	return n
}

// Warnings returns human-readable warnings: reverse-map collisions and
// macro keys that never matched. Neither is fatal.
func (r *Report) Warnings() []string {
	var warnings []string
	for _, f := range r.Files() {
		for _, c := range f.Collisions {
			warnings = append(warnings, fmt.Sprintf("%s: %s", f.File, c))
		}
		for _, key := range f.UnusedKeys() {
			warnings = append(warnings, fmt.Sprintf("%s: macro %q never matched", f.File, key))
		}
	}
	return warnings
}

// RenderText writes the report as a plain-text table followed by warnings.
func (r *Report) RenderText(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"File", "Patterns", "Expanded", "Restored", "Collisions"})

	for _, f := range r.Files() {
		if f.Skipped {
			t.AppendRow(table.Row{f.File, "-", "skipped", "-", "-"})
			continue
		}
		patterns := "-"
		if len(f.Patterns) > 0 {
			patterns = fmt.Sprintf("%v", f.Patterns)
		}
		t.AppendRow(table.Row{f.File, patterns, f.Expanded(), f.Restored, len(f.Collisions)})
	}
	t.AppendFooter(table.Row{"Total", "", r.TotalExpanded(), r.TotalRestored(), ""})
	t.Render()

	if warnings := r.Warnings(); len(warnings) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Warnings (%d):\n", len(warnings))
		for _, warning := range warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
}

// RenderJSON writes the report as indented JSON.
func (r *Report) RenderJSON(w io.Writer) error {
	payload := struct {
		RunID         string        `json:"run_id"`
		StartedAt     time.Time     `json:"started_at"`
		TotalExpanded int           `json:"total_expanded"`
		TotalRestored int           `json:"total_restored"`
		Warnings      []string      `json:"warnings,omitempty"`
		Files         []*FileResult `json:"files"`
	}{
		RunID:         r.RunID,
		StartedAt:     r.StartedAt,
		TotalExpanded: r.TotalExpanded(),
		TotalRestored: r.TotalRestored(),
		Warnings:      r.Warnings(),
		Files:         r.Files(),
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
