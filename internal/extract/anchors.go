package extract

import (
	"regexp"

	"github.com/ppiankov/contextcraft/internal/model"
)

// Anchor patterns. \b is the ASCII word boundary, so a literal may be found
// by more than one pattern (e.g. a year is also a number). Money requires
// the "$"; a bare amount is still anchored as a number.
var (
	percentPattern = regexp.MustCompile(`\b\d+(?:\.\d+)?%`)
	yearPattern    = regexp.MustCompile(`\b(?:19|20|21)\d{2}\b`)
	moneyPattern   = regexp.MustCompile(`\$\s?\d+(?:,\d{3})*(?:\.\d+)?\b`)
	datePattern    = regexp.MustCompile(`\b(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Sept|Oct|Nov|Dec)[a-z]*\s+\d{1,2},\s+\d{4}\b`)
	numberPattern  = regexp.MustCompile(`\b\d+(?:,\d{3})*(?:\.\d+)?\b`)
	namePattern    = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+\b`)
)

// Extract classifies the factual tokens of text into an AnchorSet.
// It never fails: a missing pattern yields an empty category.
func Extract(text string) model.AnchorSet {
	return model.AnchorSet{
		Percents: matchAll(percentPattern, text),
		Years:    matchAll(yearPattern, text),
		Money:    matchAll(moneyPattern, text),
		Dates:    matchAll(datePattern, text),
		Numbers:  matchNumbers(text),
		Names:    matchAll(namePattern, text),
	}
}

// matchAll returns the distinct matches of re in first-occurrence order
func matchAll(re *regexp.Regexp, text string) []string {
	return uniq(re.FindAllString(text, -1))
}

// matchNumbers returns bare digit groups. A group directly followed by '%'
// is the magnitude of a percent and is left to the percent class.
func matchNumbers(text string) []string {
	var out []string
	for _, loc := range numberPattern.FindAllStringIndex(text, -1) {
		if loc[1] < len(text) && text[loc[1]] == '%' {
			continue
		}
		out = append(out, text[loc[0]:loc[1]])
	}
	return uniq(out)
}

func uniq(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
