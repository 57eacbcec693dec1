package rewrite

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/ppiankov/contextcraft/internal/model"
)

const (
	reasonNoChange = "No rewrite needed for the selected profile."
	reasonChanged  = "Improved clarity and tone while preserving meaning."
	reasonStrict   = "Rewrote while preserving anchors."
	reasonFallback = "Returned original text because rewrite failed preservation validation."
)

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json)?\\s*")
	trailingFence = regexp.MustCompile("(?i)\\s*```$")
)

// NormalizeAttempt turns raw generator output into a fully populated
// attempt. It never fails: unparseable output degrades to the original text.
func NormalizeAttempt(raw, original string, strict bool) model.RewriteAttempt {
	fields := parseObject(raw)

	rewritten := stringField(fields, "rewritten")
	if strings.TrimSpace(rewritten) == "" {
		rewritten = original
	}

	reason := stringField(fields, "reason")
	if strings.TrimSpace(reason) == "" {
		switch {
		case strict:
			reason = reasonStrict
		case rewritten == original:
			reason = reasonNoChange
		default:
			reason = reasonChanged
		}
	}

	return model.RewriteAttempt{
		Rewritten: rewritten,
		Reason:    reason,
		RuleID:    model.ParseRuleID(stringField(fields, "rule_id")),
	}
}

func stripFences(raw string) string {
	s := leadingFence.ReplaceAllString(raw, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// parseObject returns nil unless raw holds a JSON object
func parseObject(raw string) map[string]any {
	var fields map[string]any
	if err := json.Unmarshal([]byte(stripFences(raw)), &fields); err != nil {
		return nil
	}
	return fields
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}
