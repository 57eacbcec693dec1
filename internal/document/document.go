// Package document splits Markdown and HTML sources into the heading and
// paragraph chunks that are rewritten independently.
package document

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/ppiankov/contextcraft/internal/model"
)

// Format is the source markup of a document
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
	FormatAuto     Format = "auto"
)

// ParseFormat normalises a user-supplied format name
func ParseFormat(raw string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "auto":
		return FormatAuto, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "html", "htm":
		return FormatHTML, nil
	default:
		return "", fmt.Errorf("unknown format %q (supported: markdown, html, auto)", raw)
	}
}

// Document is a parsed source and its chunks in document order
type Document struct {
	Format Format
	Chunks []model.Chunk
}

// Parse dispatches on format; auto treats input starting with '<' as HTML
func Parse(src []byte, format Format) (*Document, error) {
	if format == FormatAuto || format == "" {
		format = Sniff(src)
	}

	switch format {
	case FormatMarkdown:
		return ParseMarkdown(src)
	case FormatHTML:
		return ParseHTML(src)
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Sniff guesses the format of src
func Sniff(src []byte) Format {
	if bytes.HasPrefix(bytes.TrimSpace(src), []byte("<")) {
		return FormatHTML
	}
	return FormatMarkdown
}

// Texts returns the chunk texts in order
func (d *Document) Texts() []string {
	out := make([]string, len(d.Chunks))
	for i, c := range d.Chunks {
		out[i] = c.Text
	}
	return out
}

// Join recombines chunk texts with blank lines
func Join(texts []string) string {
	return strings.Join(texts, "\n\n")
}

// builder appends chunks with fresh IDs and sequential indexes
type builder struct {
	chunks []model.Chunk
}

func (b *builder) add(typ model.ChunkType, text string) {
	if text == "" {
		return
	}
	b.chunks = append(b.chunks, model.Chunk{
		ID:    uuid.NewString(),
		Index: len(b.chunks),
		Type:  typ,
		Text:  text,
	})
}
