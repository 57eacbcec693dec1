package pipeline

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/contextcraft/internal/document"
)

// Source is a loaded input document
type Source struct {
	Ref    string
	Body   []byte
	Format document.Format
}

// LoadSource reads ref as a URL, "-" (stdin) or a file path
func (p *Pipeline) LoadSource(ctx context.Context, ref string) (*Source, error) {
	return loadSource(ctx, ref, p.fetcher, os.Stdin, p.config.HTTP.MaxBodyBytes)
}

func loadSource(ctx context.Context, ref string, fetcher *Fetcher, stdin io.Reader, maxBytes int64) (*Source, error) {
	switch {
	case ref == "-":
		body, err := io.ReadAll(io.LimitReader(stdin, maxBytes))
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return &Source{Ref: ref, Body: body, Format: document.FormatAuto}, nil

	case isURL(ref):
		if fetcher == nil {
			return nil, fmt.Errorf("URL sources are not enabled")
		}
		res, err := fetcher.FetchWithRetry(ctx, ref)
		if err != nil {
			return nil, err
		}
		return &Source{Ref: res.FinalURL, Body: res.Body, Format: formatFromContentType(res.ContentType, ref)}, nil

	default:
		body, err := os.ReadFile(ref)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", ref, err)
		}
		return &Source{Ref: ref, Body: body, Format: formatFromPath(ref)}, nil
	}
}

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func formatFromPath(path string) document.Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".mdown", ".txt":
		return document.FormatMarkdown
	case ".html", ".htm", ".xhtml":
		return document.FormatHTML
	default:
		return document.FormatAuto
	}
}

func formatFromContentType(contentType, rawURL string) document.Format {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err == nil {
		switch mediaType {
		case "text/html", "application/xhtml+xml":
			return document.FormatHTML
		case "text/markdown", "text/x-markdown":
			return document.FormatMarkdown
		}
	}
	// text/plain and unknown types: trust the URL's extension, then sniff
	return formatFromPath(strings.SplitN(rawURL, "?", 2)[0])
}
