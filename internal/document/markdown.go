package document

import (
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/text"

	"github.com/ppiankov/contextcraft/internal/model"
)

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ParseMarkdown extracts headings and paragraphs (including tight list
// item text). A chunk's text is the literal text of its direct children;
// emphasis, links and other inline containers are skipped.
func ParseMarkdown(src []byte) (*Document, error) {
	root := markdown.Parser().Parse(text.NewReader(src))

	var b builder
	err := ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}

		switch n.Kind() {
		case ast.KindHeading:
			b.add(model.ChunkHeading, directText(n, src))
		case ast.KindParagraph, ast.KindTextBlock:
			b.add(model.ChunkParagraph, directText(n, src))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	return &Document{Format: FormatMarkdown, Chunks: b.chunks}, nil
}

// directText joins the literal runs among n's children with single spaces.
// Adjacent text segments on the same line are merged first so that
// delimiter characters goldmark splits out (e.g. a lone '*') stay attached.
func directText(n ast.Node, src []byte) string {
	var (
		parts   []string
		current strings.Builder
		lastEnd = -1
	)
	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			parts = append(parts, s)
		}
		current.Reset()
		lastEnd = -1
	}

	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			if t.Segment.Start != lastEnd {
				flush()
			}
			current.Write(t.Segment.Value(src))
			lastEnd = t.Segment.Stop
			if t.SoftLineBreak() || t.HardLineBreak() {
				flush()
			}
		case *ast.String:
			flush()
			current.Write(t.Value)
			flush()
		case *ast.CodeSpan:
			flush()
			current.WriteString(codeSpanText(t, src))
			flush()
		default:
			flush()
		}
	}
	flush()

	return strings.Join(parts, " ")
}

func codeSpanText(n *ast.CodeSpan, src []byte) string {
	var b strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(src))
		case *ast.String:
			b.Write(t.Value)
		}
	}
	return b.String()
}
