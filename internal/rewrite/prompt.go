package rewrite

import (
	"fmt"
	"strings"

	"github.com/ppiankov/contextcraft/internal/model"
	"github.com/ppiankov/contextcraft/internal/profile"
)

const baseInstructions = `You are ContextCraft. Rewrite the given text for the target audience.
Hard constraints: preserve meaning; do not add facts; do not change numbers/dates/names.
Return JSON ONLY with keys: rewritten, reason, rule_id.
rule_id must be one of: TONE, CLARITY, JARGON, CONSISTENCY.
If no rewrite is needed, set rewritten equal to the input text, but STILL provide reason and rule_id.
`

const strictInstructions = `
STRICT MODE:
- You MUST preserve every number, date, percent, money token, and proper name EXACTLY.
- You MUST NOT introduce any new numbers/dates.
- If unsure, return the original text unchanged.
`

// SystemPrompt returns the generator instructions. Strict mode adds the
// anchor-preservation block used after a failed validation.
func SystemPrompt(strict bool) string {
	if strict {
		return baseInstructions + strictInstructions
	}
	return baseInstructions
}

// UserPrompt frames the text with its audience, strength and profile rules
func UserPrompt(p *profile.Profile, strength model.Strength, text string) string {
	var b strings.Builder

	id := model.ProfileGeneral
	if p != nil {
		id = p.ID
	}
	fmt.Fprintf(&b, "Profile: %s\nStrength: %s\n", id, strength)

	if p != nil && len(p.Rules) > 0 {
		b.WriteString("\nRules:\n")
		for _, r := range p.Rules {
			fmt.Fprintf(&b, "- [%s] %s", r.Type, r.Action)
			if r.Reason != "" {
				fmt.Fprintf(&b, " (%s)", r.Reason)
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "\nText:\n\"\"\"%s\"\"\"", text)
	return b.String()
}
