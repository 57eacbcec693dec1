package model

// AnchorKind classifies a factual token extracted from text
type AnchorKind string

const (
	AnchorPercent AnchorKind = "percent" // 25%, 3.5%
	AnchorYear    AnchorKind = "year"    // 1900-2199
	AnchorMoney   AnchorKind = "money"   // $1,200.50
	AnchorDate    AnchorKind = "date"    // Mar 4, 2024
	AnchorNumber  AnchorKind = "number"  // 1,200 / 3.14
	AnchorName    AnchorKind = "name"    // Two or more capitalized words
)

// AnchorKinds lists every kind in canonical order
var AnchorKinds = []AnchorKind{
	AnchorPercent,
	AnchorYear,
	AnchorMoney,
	AnchorDate,
	AnchorNumber,
	AnchorName,
}

// IsNumeric reports whether the kind belongs to the numeric/date family
// checked for introductions (everything except names)
func (k AnchorKind) IsNumeric() bool {
	return k != AnchorName
}

// Anchor is a factual literal whose preservation across a rewrite is mandatory
type Anchor struct {
	Kind  AnchorKind `json:"kind"`
	Value string     `json:"value"`
}

// AnchorSet holds the distinct literals found in one piece of text, per kind.
// A set is built once by the extractor and never mutated afterwards.
type AnchorSet struct {
	Percents []string `json:"percents"`
	Years    []string `json:"years"`
	Money    []string `json:"money"`
	Dates    []string `json:"dates"`
	Numbers  []string `json:"numbers"`
	Names    []string `json:"names"`
}

// Values returns the literals recorded for a kind
func (s AnchorSet) Values(kind AnchorKind) []string {
	switch kind {
	case AnchorPercent:
		return s.Percents
	case AnchorYear:
		return s.Years
	case AnchorMoney:
		return s.Money
	case AnchorDate:
		return s.Dates
	case AnchorNumber:
		return s.Numbers
	case AnchorName:
		return s.Names
	default:
		return nil
	}
}

// Anchors returns every anchor in canonical kind order. A literal found in
// several kinds is reported once, tagged with the first kind that found it.
func (s AnchorSet) Anchors() []Anchor {
	seen := make(map[string]bool)
	var out []Anchor
	for _, kind := range AnchorKinds {
		for _, v := range s.Values(kind) {
			if seen[v] {
				continue
			}
			seen[v] = true
			out = append(out, Anchor{Kind: kind, Value: v})
		}
	}
	return out
}

// Numeric returns the distinct numeric/date-like literals (names excluded)
func (s AnchorSet) Numeric() []string {
	seen := make(map[string]bool)
	var out []string
	for _, kind := range AnchorKinds {
		if !kind.IsNumeric() {
			continue
		}
		for _, v := range s.Values(kind) {
			if !seen[v] {
				seen[v] = true
				out = append(out, v)
			}
		}
	}
	return out
}

// Len returns the number of distinct literals across all kinds
func (s AnchorSet) Len() int {
	return len(s.Anchors())
}
