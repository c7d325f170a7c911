// Package extract implements the Extractor interface.
// It isolates the readable article in a full HTML page by:
//  1. Finding the main content element (<article>, <main>, #content, or <body>)
//  2. Removing boilerplate subtrees (scripts, styles, navigation, headers, footers, asides)
//  3. Joining paragraph text, or the whole element's text when there are no paragraphs
package extract

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/gaurav-prasanna/readmate/core"
	"golang.org/x/net/html"
	"golang.org/x/text/unicode/norm"
)

// DefaultMaxChars is the ceiling on extracted body length (about 10k words).
// Longer articles are rejected rather than truncated, and no option raises it.
const DefaultMaxChars = 50_000

// candidates are tried in order; the first match is the main content.
var candidates = []cascadia.Selector{
	cascadia.MustCompile("article"),
	cascadia.MustCompile("main"),
	cascadia.MustCompile("#content"),
	cascadia.MustCompile("body"),
}

var (
	boilerplate = cascadia.MustCompile("script, style, nav, header, footer, aside")
	paragraphs  = cascadia.MustCompile("p")
	titleTag    = cascadia.MustCompile("title")
)

// HTMLExtractor pulls readable text out of HTML documents.
type HTMLExtractor struct {
	maxChars int
	logger   *slog.Logger
}

// Option configures an HTMLExtractor.
type Option func(*HTMLExtractor)

// WithMaxChars lowers the body length ceiling.
func WithMaxChars(n int) Option {
	return func(e *HTMLExtractor) {
		if n > 0 {
			e.maxChars = min(n, DefaultMaxChars)
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *HTMLExtractor) {
		e.logger = logger
	}
}

// New creates an HTMLExtractor.
func New(opts ...Option) *HTMLExtractor {
	e := &HTMLExtractor{maxChars: DefaultMaxChars}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	return e
}

// Extract decodes and parses data and returns the article it contains.
func (e *HTMLExtractor) Extract(ctx context.Context, data []byte) (*core.ExtractedContent, error) {
	if !utf8.Valid(data) {
		return nil, core.NewError(core.KindDecode, core.ReasonNone, fmt.Errorf("response is not valid UTF-8"))
	}

	if err := core.CheckCancelled(ctx); err != nil {
		return nil, err
	}

	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, core.NewError(core.KindParsing, core.ReasonNoMainContent, fmt.Errorf("parsing HTML: %w", err))
	}
	doc := goquery.NewDocumentFromNode(root)

	if err := core.CheckCancelled(ctx); err != nil {
		return nil, err
	}

	rawTitle := doc.FindMatcher(titleTag).First().Text()

	content := mainContent(doc)
	if content == nil {
		return nil, core.NewError(core.KindParsing, core.ReasonNoMainContent, nil)
	}

	content.FindMatcher(boilerplate).Remove()

	var b strings.Builder
	content.FindMatcher(paragraphs).Each(func(_ int, p *goquery.Selection) {
		b.WriteString(collapseSpace(p.Text()))
		b.WriteString("\n\n")
	})
	text := b.String()
	if strings.TrimSpace(text) == "" {
		text = collapseSpace(content.Text())
	}

	body := norm.NFC.String(strings.TrimSpace(text))
	if body == "" {
		return nil, core.NewError(core.KindParsing, core.ReasonNoReadableContent, nil)
	}
	if n := utf8.RuneCountInString(body); n > e.maxChars {
		return nil, core.NewError(core.KindParsing, core.ReasonContentTooLong,
			fmt.Errorf("%d characters exceeds the %d character limit", n, e.maxChars))
	}

	title, author := CleanTitle(collapseSpace(rawTitle))

	contentHTML, err := goquery.OuterHtml(content)
	if err != nil {
		contentHTML = ""
	}

	e.logger.Debug("extracted content",
		"title", title,
		"author", author,
		"chars", utf8.RuneCountInString(body),
	)

	return &core.ExtractedContent{
		Title:       title,
		Author:      author,
		Body:        body,
		ContentHTML: contentHTML,
	}, nil
}

// mainContent returns the first candidate element present in the document.
func mainContent(doc *goquery.Document) *goquery.Selection {
	for _, sel := range candidates {
		found := doc.FindMatcher(sel)
		if found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

// collapseSpace joins runs of whitespace into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
