// Package normalize converts the extracted main-content element into Markdown
// for previews. Import itself never depends on it; the stored document is
// built from the extractor's plain text.
package normalize

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/gaurav-prasanna/readmate/core"
)

// MarkdownNormalizer converts HTML to Markdown using html-to-markdown.
type MarkdownNormalizer struct{}

// New creates a MarkdownNormalizer.
func New() *MarkdownNormalizer {
	return &MarkdownNormalizer{}
}

// Normalize converts a cleaned HTML fragment into Markdown.
func (n *MarkdownNormalizer) Normalize(html string) (string, error) {
	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

// Preview renders extracted content as a Markdown document with the title as
// a heading and the author as a byline. The plain-text body is used when the
// content element could not be converted.
func (n *MarkdownNormalizer) Preview(content *core.ExtractedContent) string {
	var b strings.Builder
	if content.Title != "" {
		fmt.Fprintf(&b, "# %s\n\n", content.Title)
	}
	if content.Author != "" {
		fmt.Fprintf(&b, "*%s*\n\n", content.Author)
	}

	body, err := n.Normalize(content.ContentHTML)
	if err != nil || body == "" {
		body = content.Body
	}
	b.WriteString(body)
	b.WriteString("\n")
	return b.String()
}
