// Package report assembles per-chunk rewrite results into the document
// report and renders it as JSON, Markdown or a terminal summary.
package report

import (
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/ppiankov/contextcraft/internal/model"
)

// Build assembles the report. results[i] belongs to chunks[i]; a nil
// result is treated as an unchanged chunk.
func Build(chunks []model.Chunk, results []*model.NodeRewriteResult, debug *model.ReportDebug) *model.Report {
	dmp := diffmatchpatch.New()

	texts := make([]string, len(chunks))
	changes := make([]model.Change, len(chunks))
	var diffs []string
	warnings := []string{}
	fidelity := 1

	for i, chunk := range chunks {
		res := resultAt(results, i, chunk.Text)

		texts[i] = res.Rewritten
		changeType := model.ChangeUnchanged
		if res.Rewritten != chunk.Text {
			changeType = model.ChangeModify
			diffs = append(diffs, "- "+chunk.Text+"\n+ "+res.Rewritten)
		}

		added, removed := charCounts(dmp, chunk.Text, res.Rewritten)
		changes[i] = model.Change{
			NodeID:       chunk.ID,
			NodeType:     chunk.Type,
			ChangeType:   changeType,
			Original:     chunk.Text,
			Transformed:  res.Rewritten,
			RuleID:       res.RuleID,
			Reason:       res.Reason,
			Warnings:     nonNil(res.Warnings),
			CharsAdded:   added,
			CharsRemoved: removed,
		}

		if !res.Validation.OK {
			fidelity = 0
		}
		warnings = append(warnings, res.Validation.Messages()...)
	}

	if debug != nil {
		debug.TextNodes = chunks
	}

	return &model.Report{
		TransformedMarkdown:       strings.Join(texts, "\n\n"),
		Diff:                      strings.Join(diffs, "\n"),
		Changes:                   changes,
		StructuralRecommendations: []string{},
		Validation: model.ReportValidation{
			FidelityScore: fidelity,
			Warnings:      warnings,
		},
		Debug: debug,
	}
}

func resultAt(results []*model.NodeRewriteResult, i int, original string) *model.NodeRewriteResult {
	if i < len(results) && results[i] != nil {
		return results[i]
	}
	return &model.NodeRewriteResult{
		Rewritten:  original,
		Reason:     "No rewrite needed for the selected profile.",
		RuleID:     model.RuleClarity,
		Validation: model.ValidationResult{OK: true},
	}
}

// charCounts returns inserted and deleted character (rune) counts
func charCounts(dmp *diffmatchpatch.DiffMatchPatch, original, rewritten string) (added, removed int) {
	if original == rewritten {
		return 0, 0
	}
	diffs := dmp.DiffCleanupSemantic(dmp.DiffMain(original, rewritten, false))
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added += utf8.RuneCountInString(d.Text)
		case diffmatchpatch.DiffDelete:
			removed += utf8.RuneCountInString(d.Text)
		}
	}
	return added, removed
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
