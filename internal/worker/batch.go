package worker

import (
	"bufio"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/contextcraft/internal/document"
	"github.com/ppiankov/contextcraft/internal/model"
	"github.com/ppiankov/contextcraft/internal/report"
)

// Transformer defines the interface for transforming one source document
type Transformer interface {
	TransformSource(ctx context.Context, ref string, profileID model.ProfileID, strength model.Strength, format document.Format, debug bool) (*model.Report, error)
}

// Options are applied to every document in a batch
type Options struct {
	Profile   model.ProfileID
	Strength  model.Strength
	Format    document.Format
	Debug     bool
	OutputDir string // When set, each report is written as <name>.json and <name>.md
}

// TransformJob represents one document transformation
type TransformJob struct {
	Index       int
	Source      string
	Transformer Transformer
	Options     Options
}

// Execute executes the transform job
func (j *TransformJob) Execute(ctx context.Context) Result {
	res := &TransformResult{Index: j.Index, Source: j.Source}

	rep, err := j.Transformer.TransformSource(ctx, j.Source, j.Options.Profile, j.Options.Strength, j.Options.Format, j.Options.Debug)
	if err != nil {
		res.Error = err
		return res
	}
	res.Report = rep

	if j.Options.OutputDir != "" {
		base := filepath.Join(j.Options.OutputDir, OutputName(j.Source))
		if err := report.RenderJSON(rep, base+".json"); err != nil {
			res.Error = err
			return res
		}
		if err := report.RenderTransformed(rep, base+".md"); err != nil {
			res.Error = err
			return res
		}
		res.OutputPath = base
	}

	return res
}

// TransformResult represents the result of a transform job
type TransformResult struct {
	Index      int
	Source     string
	Report     *model.Report
	OutputPath string // Path prefix of written outputs, if any
	Error      error
}

// GetError returns the error from the transform result
func (r *TransformResult) GetError() error {
	return r.Error
}

// BatchProcessor transforms multiple documents concurrently
type BatchProcessor struct {
	transformer Transformer
	workers     int
	options     Options
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(transformer Transformer, workers int, options Options) *BatchProcessor {
	return &BatchProcessor{
		transformer: transformer,
		workers:     workers,
		options:     options,
	}
}

// ProcessSources transforms every source; results follow input order
func (b *BatchProcessor) ProcessSources(ctx context.Context, sources []string) []*TransformResult {
	if len(sources) == 0 {
		return []*TransformResult{}
	}

	jobs := make([]Job, len(sources))
	for i, src := range sources {
		jobs[i] = &TransformJob{
			Index:       i,
			Source:      src,
			Transformer: b.transformer,
			Options:     b.options,
		}
	}

	results := NewPool(ctx, b.workers).Run(jobs)

	ordered := make([]*TransformResult, len(sources))
	for _, r := range results {
		tr := r.(*TransformResult)
		ordered[tr.Index] = tr
	}

	// Jobs skipped by cancellation still get a result
	for i, r := range ordered {
		if r == nil {
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			ordered[i] = &TransformResult{Index: i, Source: sources[i], Error: err}
		}
	}

	return ordered
}

// ProcessFile reads sources from a list file and transforms them
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]*TransformResult, error) {
	sources, err := ReadSourcesFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read sources: %w", err)
	}

	return b.ProcessSources(ctx, sources), nil
}

// ReadSourcesFromFile reads file paths or URLs from a file (one per line)
func ReadSourcesFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var sources []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			sources = append(sources, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return sources, nil
}

// OutputName derives a stable, filesystem-safe name for a source
func OutputName(source string) string {
	base := filepath.Base(strings.TrimRight(source, "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))

	var b strings.Builder
	for _, r := range base {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	sum := sha256.Sum256([]byte(source))
	return fmt.Sprintf("%s-%s", strings.Trim(b.String(), "_"), hex.EncodeToString(sum[:])[:8])
}
