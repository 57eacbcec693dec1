package model

// IssueType tags a preservation violation
type IssueType string

const (
	IssueMissingAnchor IssueType = "missing_anchor" // Original anchor absent from the rewrite
	IssueExtraAnchor   IssueType = "extra_anchor"   // Rewrite introduced numeric/date literals
)

// ValidationIssue reports a single preservation violation
type ValidationIssue struct {
	Type    IssueType `json:"type"`
	Message string    `json:"message"`
	Anchor  *Anchor   `json:"anchor,omitempty"` // Set for missing_anchor
	Extras  []string  `json:"extras,omitempty"` // Set for extra_anchor
}

// ValidationResult is the outcome of comparing an original/rewritten pair
type ValidationResult struct {
	OK      bool              `json:"ok"`
	Issues  []ValidationIssue `json:"issues"`
	Anchors AnchorSet         `json:"anchors"` // Anchors of the original text
}

// Messages returns the human-readable message of every issue, in order
func (r ValidationResult) Messages() []string {
	msgs := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		msgs = append(msgs, issue.Message)
	}
	return msgs
}
