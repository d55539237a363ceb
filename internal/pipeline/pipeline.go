// Package pipeline orchestrates batch pre- and post-processing of SQL files
// around the remote translation step: forward macro substitution before
// submission, reverse substitution on translated output.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/shiftstack-labs/sqlshift/internal/macro"
	"github.com/shiftstack-labs/sqlshift/internal/translate"
)

// passthroughExtensions are copied to the output untouched. The translation
// service only consumes SQL-like text; archives and data files ride along.
var passthroughExtensions = map[string]bool{
	".zip":  true,
	".csv":  true,
	".json": true,
}

// Config holds pipeline configuration.
type Config struct {
	// Table is the loaded macro table, shared read-only across workers.
	Table *macro.Table
	// Workers bounds per-file parallelism; zero means GOMAXPROCS.
	Workers int
	// Logger is the structured logger (optional, uses discard if nil).
	Logger *slog.Logger
}

// Pipeline processes batches of files. Per-file work is independent: the
// macro table is immutable and the engine is stateless, so files run in
// parallel without coordination.
type Pipeline struct {
	table   *macro.Table
	engine  *macro.Engine
	logger  *slog.Logger
	workers int
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{
		table:   cfg.Table,
		engine:  macro.NewEngine(logger),
		logger:  logger,
		workers: workers,
	}
}

// Preprocess forward-substitutes every file under inputDir into outDir,
// mirroring the directory layout.
func (p *Pipeline) Preprocess(ctx context.Context, inputDir, outDir string) (*macro.Report, error) {
	return p.process(ctx, inputDir, outDir, p.preprocessFile)
}

// Postprocess reverse-substitutes every translated file under inputDir into
// outDir, restoring the original macro tokens.
func (p *Pipeline) Postprocess(ctx context.Context, inputDir, outDir string) (*macro.Report, error) {
	return p.process(ctx, inputDir, outDir, p.postprocessFile)
}

// Run executes the full round trip per file: forward substitution, remote
// translation, reverse substitution. Translated-and-restored output lands in
// outDir.
func (p *Pipeline) Run(ctx context.Context, translator translate.Translator, inputDir, outDir string) (*macro.Report, error) {
	return p.process(ctx, inputDir, outDir, func(rel, text string) (string, *macro.FileResult, error) {
		expanded, result, err := p.preprocessFile(rel, text)
		if err != nil {
			return "", nil, err
		}

		translated, err := translator.Translate(ctx, rel, expanded)
		if err != nil {
			return "", nil, err
		}

		set := p.table.Resolve(rel)
		rev, collisions := macro.BuildReverse(set)
		result.Collisions = collisions

		restored, n := p.engine.Unexpand(rel, translated, rev)
		result.Restored = n
		return restored, result, nil
	})
}

// fileFunc transforms one file's text and reports what it did.
type fileFunc func(rel, text string) (string, *macro.FileResult, error)

func (p *Pipeline) preprocessFile(rel, text string) (string, *macro.FileResult, error) {
	set := p.table.Resolve(rel)
	out, result := p.engine.Expand(rel, text, set)
	result.Patterns = p.table.MatchingPatterns(rel)

	// Surface reverse-map collisions already at preprocessing time, so a
	// mapping that cannot reverse cleanly is flagged before translation.
	_, result.Collisions = macro.BuildReverse(set)
	return out, result, nil
}

func (p *Pipeline) postprocessFile(rel, text string) (string, *macro.FileResult, error) {
	set := p.table.Resolve(rel)
	rev, collisions := macro.BuildReverse(set)

	out, n := p.engine.Unexpand(rel, text, rev)
	result := &macro.FileResult{
		File:       rel,
		Patterns:   p.table.MatchingPatterns(rel),
		Collisions: collisions,
		Restored:   n,
	}
	return out, result, nil
}

// process walks inputDir and applies fn to each regular file, writing the
// output under outDir at the same relative path.
func (p *Pipeline) process(ctx context.Context, inputDir, outDir string, fn fileFunc) (*macro.Report, error) {
	files, err := collectFiles(inputDir)
	if err != nil {
		return nil, err
	}

	report := macro.NewReport()
	p.logger.Info("processing batch",
		"run_id", report.RunID, "input", inputDir, "files", len(files), "workers", p.workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)

	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			src := filepath.Join(inputDir, rel)
			dst := filepath.Join(outDir, rel)
			if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			content, err := os.ReadFile(src) //nolint:gosec // G304: paths come from the walked input directory
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", rel, err)
			}

			if passthroughExtensions[strings.ToLower(filepath.Ext(rel))] {
				report.Add(&macro.FileResult{File: rel, Skipped: true})
				return writeFile(dst, content)
			}

			out, result, err := fn(rel, string(content))
			if err != nil {
				return err
			}
			report.Add(result)
			return writeFile(dst, []byte(out))
		})
	}

	if err := g.Wait(); err != nil {
		return report, err
	}
	return report, nil
}

func writeFile(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0o644); err != nil { //nolint:gosec // G306: translated SQL is not sensitive
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// collectFiles returns the relative paths of all regular files under dir,
// in walk order.
func collectFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("input path is not a directory: %s", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan input directory: %w", err)
	}
	return files, nil
}
