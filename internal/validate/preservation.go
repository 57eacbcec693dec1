package validate

import (
	"fmt"
	"strings"

	"github.com/ppiankov/contextcraft/internal/extract"
	"github.com/ppiankov/contextcraft/internal/model"
)

// Preservation checks that rewritten keeps every anchor of original and
// introduces no numeric/date literal that original did not contain.
//
// Presence is verified by substring containment, not token boundaries: an
// anchor embedded in different punctuation still counts as preserved, and
// a short literal ("20") is satisfied by a longer one ("2024").
func Preservation(original, rewritten string) model.ValidationResult {
	o := extract.Extract(original)
	r := extract.Extract(rewritten)

	var issues []model.ValidationIssue

	for _, a := range o.Anchors() {
		if strings.Contains(rewritten, a.Value) {
			continue
		}
		anchor := a
		issues = append(issues, model.ValidationIssue{
			Type:    model.IssueMissingAnchor,
			Message: fmt.Sprintf("Missing required %s anchor: %q", a.Kind, a.Value),
			Anchor:  &anchor,
		})
	}

	known := make(map[string]bool)
	for _, v := range o.Numeric() {
		known[v] = true
	}
	var extras []string
	for _, v := range r.Numeric() {
		if !known[v] {
			extras = append(extras, v)
		}
	}
	if len(extras) > 0 {
		issues = append(issues, model.ValidationIssue{
			Type:    model.IssueExtraAnchor,
			Message: "Introduced new numeric/date tokens not in original: " + strings.Join(extras, ", "),
			Extras:  extras,
		})
	}

	return model.ValidationResult{
		OK:      len(issues) == 0,
		Issues:  issues,
		Anchors: o,
	}
}
