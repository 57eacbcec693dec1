package worker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ppiankov/contextcraft/internal/document"
	"github.com/ppiankov/contextcraft/internal/model"
)

// MockTransformer implements the Transformer interface
type MockTransformer struct {
	FailOn string
}

func (m *MockTransformer) TransformSource(ctx context.Context, ref string, profileID model.ProfileID, strength model.Strength, format document.Format, debug bool) (*model.Report, error) {
	time.Sleep(10 * time.Millisecond) // Simulate work
	if m.FailOn != "" && strings.Contains(ref, m.FailOn) {
		return nil, errors.New("transform error")
	}
	return &model.Report{
		TransformedMarkdown: "rewritten " + ref + " for " + string(profileID),
		Validation:          model.ReportValidation{FidelityScore: 1},
	}, nil
}

func writeList(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestBatchProcessor_ProcessSources(t *testing.T) {
	processor := NewBatchProcessor(&MockTransformer{}, 2, Options{Profile: model.ProfileStartup})

	sources := []string{"a.md", "b.md", "https://example.com/c.md"}
	results := processor.ProcessSources(context.Background(), sources)

	if len(results) != len(sources) {
		t.Fatalf("expected %d results, got %d", len(sources), len(results))
	}
	for i, r := range results {
		if r.Source != sources[i] {
			t.Errorf("result %d: expected source %s, got %s", i, sources[i], r.Source)
		}
		if r.Error != nil {
			t.Errorf("unexpected error: %v", r.Error)
		}
		if r.Report == nil || !strings.HasSuffix(r.Report.TransformedMarkdown, "for startup") {
			t.Errorf("unexpected report: %+v", r.Report)
		}
	}
}

func TestBatchProcessor_ProcessSources_Error(t *testing.T) {
	processor := NewBatchProcessor(&MockTransformer{FailOn: "bad"}, 2, Options{})

	results := processor.ProcessSources(context.Background(), []string{"good.md", "bad.md"})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].GetError() != nil {
		t.Errorf("expected success for good.md, got %v", results[0].GetError())
	}
	if results[1].GetError() == nil {
		t.Error("expected error for bad.md")
	}
}

func TestBatchProcessor_ProcessSources_Empty(t *testing.T) {
	processor := NewBatchProcessor(&MockTransformer{}, 2, Options{})
	results := processor.ProcessSources(context.Background(), nil)
	if len(results) != 0 {
		t.Errorf("expected 0 results, got %d", len(results))
	}
}

func TestBatchProcessor_OutputDir(t *testing.T) {
	dir := t.TempDir()
	processor := NewBatchProcessor(&MockTransformer{}, 1, Options{OutputDir: dir})

	results := processor.ProcessSources(context.Background(), []string{"docs/launch notes.md"})
	if results[0].Error != nil {
		t.Fatalf("unexpected error: %v", results[0].Error)
	}

	base := results[0].OutputPath
	if !strings.HasPrefix(filepath.Base(base), "launch_notes-") {
		t.Errorf("unexpected output name: %s", base)
	}
	for _, ext := range []string{".json", ".md"} {
		if _, err := os.Stat(base + ext); err != nil {
			t.Errorf("expected %s output: %v", ext, err)
		}
	}
}

func TestBatchProcessor_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	processor := NewBatchProcessor(&MockTransformer{}, 1, Options{})
	results := processor.ProcessSources(ctx, []string{"a.md", "b.md", "c.md"})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if r == nil {
			t.Fatal("nil result")
		}
	}
}

func TestReadSourcesFromFile(t *testing.T) {
	path := writeList(t, "post.md\n# comment\nhttps://example.com/page\n   \n  notes.html   \npost.md\n")

	sources, err := ReadSourcesFromFile(path)
	if err != nil {
		t.Fatalf("ReadSourcesFromFile failed: %v", err)
	}

	expected := []string{"post.md", "https://example.com/page", "notes.html"}
	if len(sources) != len(expected) {
		t.Fatalf("expected %d sources, got %d", len(expected), len(sources))
	}
	for i, s := range sources {
		if s != expected[i] {
			t.Errorf("expected %s at index %d, got %s", expected[i], i, s)
		}
	}
}

func TestReadSourcesFromFile_NonExistent(t *testing.T) {
	if _, err := ReadSourcesFromFile("non_existent_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestBatchProcessor_ProcessFile(t *testing.T) {
	path := writeList(t, "a.md\nb.md\n# comment\n\nc.md\n")
	processor := NewBatchProcessor(&MockTransformer{}, 2, Options{})

	results, err := processor.ProcessFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ProcessFile failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("expected 3 results, got %d", len(results))
	}

	if _, err := processor.ProcessFile(context.Background(), "no_such_file.txt"); err == nil {
		t.Error("expected error for non-existent file, got nil")
	}
}

func TestOutputName(t *testing.T) {
	a := OutputName("https://example.com/blog/post.md")
	b := OutputName("https://example.org/blog/post.md")
	if !strings.HasPrefix(a, "post-") || a == b {
		t.Errorf("unexpected names: %s, %s", a, b)
	}
}
