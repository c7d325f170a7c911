// Package pagetext reads the text layer of stored PDF documents, page by
// page, for the reader's assistant context. Pages are extracted concurrently
// and merged back in page order.
package pagetext

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"

	"github.com/gaurav-prasanna/readmate/core"
	"github.com/ledongthuc/pdf"
	"golang.org/x/sync/errgroup"
)

// PageText is the text of one page. Number starts at 1.
type PageText struct {
	Number int
	Text   string
}

// Reader extracts page text from PDF bytes.
type Reader struct {
	concurrency int
	logger      *slog.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithConcurrency bounds the number of pages read at once.
func WithConcurrency(n int) Option {
	return func(r *Reader) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Reader) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewReader creates a Reader that uses up to GOMAXPROCS workers.
func NewReader(opts ...Option) *Reader {
	r := &Reader{
		concurrency: runtime.GOMAXPROCS(0),
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// PageCount returns the number of pages in the document.
func (r *Reader) PageCount(data []byte) (int, error) {
	doc, err := open(data)
	if err != nil {
		return 0, err
	}
	return doc.NumPage(), nil
}

// ExtractPage returns the text of page number (1-based).
func (r *Reader) ExtractPage(ctx context.Context, data []byte, number int) (string, error) {
	if err := core.CheckCancelled(ctx); err != nil {
		return "", err
	}
	doc, err := open(data)
	if err != nil {
		return "", err
	}
	if number < 1 || number > doc.NumPage() {
		return "", fmt.Errorf("page %d out of range 1..%d", number, doc.NumPage())
	}
	return pageText(doc, number)
}

// ExtractAll returns the text of every page, ordered by page number. A page
// whose text cannot be read yields an empty string rather than failing the
// document.
func (r *Reader) ExtractAll(ctx context.Context, data []byte) ([]PageText, error) {
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, err
	}
	doc, err := open(data)
	if err != nil {
		return nil, err
	}
	n := doc.NumPage()
	results := make([]PageText, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(r.concurrency, max(n, 1)))
	for i := 0; i < n; i++ {
		number := i + 1
		g.Go(func() error {
			if err := core.CheckCancelled(gctx); err != nil {
				return err
			}
			// Each worker parses its own reader; pdf.Reader makes no
			// promise about concurrent use.
			own, err := open(data)
			if err != nil {
				return err
			}
			text, err := pageText(own, number)
			if err != nil {
				r.logger.Warn("reading page text", "page", number, "error", err)
				text = ""
			}
			results[number-1] = PageText{Number: number, Text: text}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if cerr := core.CheckCancelled(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, err
	}
	return results, nil
}

// Text returns the non-empty pages joined by blank lines.
func (r *Reader) Text(ctx context.Context, data []byte) (string, error) {
	pages, err := r.ExtractAll(ctx, data)
	if err != nil {
		return "", err
	}
	var parts []string
	for _, p := range pages {
		if t := strings.TrimSpace(p.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, "\n\n"), nil
}

// Pages maps page numbers to text, skipping empty pages.
func Pages(pages []PageText) map[int]string {
	m := make(map[int]string, len(pages))
	for _, p := range pages {
		if strings.TrimSpace(p.Text) != "" {
			m[p.Number] = p.Text
		}
	}
	return m
}

// Ordered returns the entries of a page map sorted by page number.
func Ordered(m map[int]string) []PageText {
	out := make([]PageText, 0, len(m))
	for n, t := range m {
		out = append(out, PageText{Number: n, Text: t})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

func open(data []byte) (*pdf.Reader, error) {
	doc, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, core.NewError(core.KindDecode, core.ReasonNone, fmt.Errorf("opening pdf: %w", err))
	}
	return doc, nil
}

func pageText(doc *pdf.Reader, number int) (text string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("page %d: malformed content: %v", number, rec)
		}
	}()
	page := doc.Page(number)
	if page.V.IsNull() {
		return "", nil
	}
	return page.GetPlainText(nil)
}
