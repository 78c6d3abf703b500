// Package html extracts readable text from HTML pages.
package html

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"

	"github.com/custodia-labs/doclabel/internal/core/domain"
	"github.com/custodia-labs/doclabel/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// maxDepth stops runaway nesting in malformed pages.
const maxDepth = 200

// Extractor handles HTML documents.
type Extractor struct{}

// New creates a new HTML extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extensions returns the suffixes this extractor handles.
func (e *Extractor) Extensions() []string {
	return []string{".html", ".htm"}
}

// Extract returns the visible text, one line per block element. The page
// title, if any, is the first line.
func (e *Extractor) Extract(_ context.Context, data []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: parse html: %v", domain.ErrExtractionFailed, err)
	}

	w := &textWriter{}
	w.walk(doc, 0)

	text := tidy(w.body.String())
	title := tidy(w.title.String())
	switch {
	case title == "" || strings.HasPrefix(text, title):
		return text, nil
	case text == "":
		return title, nil
	}
	return title + "\n" + text, nil
}

// skipped elements never contribute text.
var skipped = map[string]bool{
	"script": true, "style": true, "noscript": true, "svg": true,
	"iframe": true, "template": true, "object": true,
}

// blocks start and end a line.
var blocks = map[string]bool{
	"p": true, "div": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "tr": true, "td": true, "th": true, "blockquote": true, "pre": true, "table": true,
	"section": true, "article": true, "header": true, "footer": true, "hr": true, "ul": true, "ol": true,
}

type textWriter struct {
	title strings.Builder
	body  strings.Builder
}

func (w *textWriter) walk(n *html.Node, depth int) {
	if depth > maxDepth {
		return
	}
	switch n.Type {
	case html.TextNode:
		w.body.WriteString(flatten(n.Data))
		return
	case html.CommentNode:
		return
	case html.ElementNode:
		switch {
		case skipped[n.Data]:
			return
		case n.Data == "title":
			if w.title.Len() == 0 {
				for c := n.FirstChild; c != nil; c = c.NextSibling {
					if c.Type == html.TextNode {
						w.title.WriteString(flatten(c.Data))
					}
				}
			}
			return
		case n.Data == "br":
			w.body.WriteByte('\n')
			return
		case blocks[n.Data]:
			w.body.WriteByte('\n')
			defer w.body.WriteByte('\n')
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.walk(c, depth+1)
	}
}

// flatten turns source line breaks and non-breaking spaces into spaces;
// only block structure produces new lines.
func flatten(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', '\t', '\u00a0':
			return ' '
		}
		return r
	}, s)
}

// tidy collapses runs of spaces and drops blank lines.
func tidy(s string) string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
