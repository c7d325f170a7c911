// Package core defines the import pipeline types and stage interfaces for Readmate.
// Each stage of the pipeline is a clean, testable interface; the importer
// package wires them into one cancellable unit of work.
package core

import "context"

// FetchResult holds the raw response body and metadata from a fetch.
type FetchResult struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// ExtractedContent is the readable article pulled out of an HTML page.
// Body is never empty and never longer than the extractor's ceiling.
type ExtractedContent struct {
	Title  string
	Author string // empty when no author could be parsed
	Body   string

	// ContentHTML is the cleaned main-content element, kept for previews.
	ContentHTML string
}

// Rect is an axis-aligned rectangle. For recognized text it is expressed in
// normalized coordinates (0..1) with the origin at the bottom-left corner.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// RecognizedTextRegion is one span of text found on a scanned page.
type RecognizedTextRegion struct {
	Text      string
	Box       Rect
	PageIndex int
}

// Raster is an encoded page image (PNG or JPEG).
type Raster struct {
	Data []byte
}

// ImportRequest is either a WebURL or a ScannedImage.
type ImportRequest interface {
	isImportRequest()
}

// WebURL asks for the article at URL to be imported. URL is the raw user input.
type WebURL struct {
	URL string
}

// ScannedImage asks for captured page images to be imported as a searchable document.
type ScannedImage struct {
	Pages []Raster
	Title string
}

func (WebURL) isImportRequest()       {}
func (ScannedImage) isImportRequest() {}

// ScanPage pairs one source image with the text recognized on it.
type ScanPage struct {
	Image   Raster
	Regions []RecognizedTextRegion
}

// Document is a rendered, paginated PDF held in memory.
type Document struct {
	Bytes     []byte
	PageCount int
}

// ImportResult describes a finished import. FileBytes is the rendered
// document; the library keeps its own copy under FileName.
type ImportResult struct {
	FileBytes       []byte
	SuggestedTitle  string
	SuggestedAuthor string
	PageCount       int
	FileName        string
	RecordID        string
}

// Fetcher retrieves a bounded response body from a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*FetchResult, error)
}

// Extractor pulls the readable article out of raw HTML bytes.
type Extractor interface {
	Extract(ctx context.Context, html []byte) (*ExtractedContent, error)
}

// Recognizer finds text regions in a page image.
type Recognizer interface {
	Recognize(ctx context.Context, image Raster) ([]RecognizedTextRegion, error)
}

// Renderer lays content out into a paginated PDF.
type Renderer interface {
	// RenderText flows title, author and body into fixed-size pages.
	RenderText(ctx context.Context, content *ExtractedContent) (*Document, error)
	// RenderScan emits one page per image with an invisible text overlay.
	RenderScan(ctx context.Context, pages []ScanPage) (*Document, error)
}
