package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ppiankov/contextcraft/internal/model"
	"github.com/ppiankov/contextcraft/internal/profile"
)

func TestNormalizeAttempt(t *testing.T) {
	const orig = "Original text."

	tests := []struct {
		name   string
		raw    string
		strict bool
		want   model.RewriteAttempt
	}{
		{
			name: "plain json",
			raw:  `{"rewritten":"New text.","reason":"Clearer.","rule_id":"JARGON"}`,
			want: model.RewriteAttempt{Rewritten: "New text.", Reason: "Clearer.", RuleID: model.RuleJargon},
		},
		{
			name: "json fence",
			raw:  "```json\n{\"rewritten\":\"New text.\",\"reason\":\"r\",\"rule_id\":\"TONE\"}\n```",
			want: model.RewriteAttempt{Rewritten: "New text.", Reason: "r", RuleID: model.RuleTone},
		},
		{
			name: "uppercase fence",
			raw:  "```JSON {\"rewritten\":\"New text.\"} ```",
			want: model.RewriteAttempt{Rewritten: "New text.", Reason: reasonChanged, RuleID: model.RuleClarity},
		},
		{
			name: "not json",
			raw:  "sorry",
			want: model.RewriteAttempt{Rewritten: orig, Reason: reasonNoChange, RuleID: model.RuleClarity},
		},
		{
			name: "array",
			raw:  `["a"]`,
			want: model.RewriteAttempt{Rewritten: orig, Reason: reasonNoChange, RuleID: model.RuleClarity},
		},
		{
			name: "non-string fields",
			raw:  `{"rewritten":42,"reason":null,"rule_id":["TONE"]}`,
			want: model.RewriteAttempt{Rewritten: orig, Reason: reasonNoChange, RuleID: model.RuleClarity},
		},
		{
			name: "blank rewritten",
			raw:  `{"rewritten":"   ","reason":"kept"}`,
			want: model.RewriteAttempt{Rewritten: orig, Reason: "kept", RuleID: model.RuleClarity},
		},
		{
			name: "unknown rule",
			raw:  `{"rewritten":"New text.","reason":"r","rule_id":"VIBES"}`,
			want: model.RewriteAttempt{Rewritten: "New text.", Reason: "r", RuleID: model.RuleClarity},
		},
		{
			name:   "strict default reason",
			raw:    `{"rewritten":"New text."}`,
			strict: true,
			want:   model.RewriteAttempt{Rewritten: "New text.", Reason: reasonStrict, RuleID: model.RuleClarity},
		},
		{
			name:   "strict unchanged",
			raw:    ``,
			strict: true,
			want:   model.RewriteAttempt{Rewritten: orig, Reason: reasonStrict, RuleID: model.RuleClarity},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeAttempt(tt.raw, orig, tt.strict)
			assert.Equal(t, tt.want, got)
			assert.NotEmpty(t, got.Rewritten)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestSystemPrompt(t *testing.T) {
	normal := SystemPrompt(false)
	strict := SystemPrompt(true)

	assert.Contains(t, normal, "Return JSON ONLY")
	assert.NotContains(t, normal, "STRICT MODE")
	assert.Contains(t, strict, "STRICT MODE")
	assert.Contains(t, strict, normal)
}

func TestUserPrompt(t *testing.T) {
	p, err := profile.Load(model.ProfileEnterprise)
	assert.NoError(t, err)

	got := UserPrompt(p, model.StrengthAggressive, "Hello.")
	assert.Contains(t, got, "Profile: enterprise\nStrength: aggressive\n")
	assert.Contains(t, got, p.Rules[0].Action)
	assert.Contains(t, got, "Text:\n\"\"\"Hello.\"\"\"")

	assert.Contains(t, UserPrompt(nil, model.StrengthModerate, "x"), "Profile: general")
}
