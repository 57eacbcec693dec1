package model

import "time"

// ChunkType is the structural role of a text chunk in its document
type ChunkType string

const (
	ChunkHeading   ChunkType = "heading"
	ChunkParagraph ChunkType = "paragraph"
)

// Chunk is one human-editable unit of document text
type Chunk struct {
	ID    string    `json:"node_id"` // UUIDv4
	Index int       `json:"index"`   // Position in document order (0-based)
	Type  ChunkType `json:"type"`
	Text  string    `json:"text"`
}

// ChangeType describes what happened to a chunk
type ChangeType string

const (
	ChangeUnchanged ChangeType = "unchanged"
	ChangeModify    ChangeType = "modify"
)

// Change is the per-chunk entry of the change log
type Change struct {
	NodeID       string     `json:"node_id"`
	NodeType     ChunkType  `json:"node_type"`
	ChangeType   ChangeType `json:"change_type"`
	Original     string     `json:"original"`
	Transformed  string     `json:"transformed"`
	RuleID       RuleID     `json:"rule_id"`
	Reason       string     `json:"reason"`
	Warnings     []string   `json:"warnings"`
	CharsAdded   int        `json:"chars_added"`
	CharsRemoved int        `json:"chars_removed"`
}

// Report is the aggregate result of transforming one document
type Report struct {
	TransformedMarkdown       string           `json:"transformed_markdown"`
	Diff                      string           `json:"diff"`
	Changes                   []Change         `json:"changes"`
	StructuralRecommendations []string         `json:"structural_recommendations"`
	Validation                ReportValidation `json:"validation"`

	Debug *ReportDebug `json:"debug,omitempty"` // Present only when debug output is enabled
}

// ReportValidation summarizes preservation checks across all chunks
type ReportValidation struct {
	FidelityScore int      `json:"fidelity_score"` // 1 when every chunk validated, else 0
	Warnings      []string `json:"warnings"`       // Issue messages of every chunk
}

// ReportDebug carries request context for troubleshooting
type ReportDebug struct {
	Profile     ProfileID `json:"profile"`
	Strength    Strength  `json:"strength"`
	TextNodes   []Chunk   `json:"text_nodes"`
	Generator   string    `json:"generator,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`
}
