// Package importer turns import requests into stored library documents.
//
// An import runs fetch, extract, render and persist (or recognize, render and
// persist for scans) as one unit of work raced against a deadline. The first
// of completion, deadline and caller cancellation decides the outcome. A
// commit gate taken just before the catalog append makes that decision
// exclusive: either the record is appended and the import succeeds, or the
// import is abandoned and leaves neither a file nor a catalog entry behind.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gaurav-prasanna/readmate/core"
	"github.com/gaurav-prasanna/readmate/library"
	"github.com/google/uuid"
)

const (
	DefaultWebTimeout  = 30 * time.Second
	DefaultScanTimeout = 60 * time.Second
	DefaultDrainGrace  = 2 * time.Second

	// ScannedAuthor is the author recorded for scans.
	ScannedAuthor = "Scanned Document"
	// DefaultScanTitle names a scan saved without a title.
	DefaultScanTitle = "Scanned Document"
	// fallbackAuthor is used for web pages with neither an author nor a host.
	fallbackAuthor = "Web"

	documentExt = ".pdf"
)

// DocumentStore holds rendered document files.
type DocumentStore interface {
	Write(title string, data []byte, ext string) (string, error)
	Remove(fileName string) error
}

// Deps are the stages and stores an import uses. Recognizer may be nil, in
// which case scans import as image-only pages.
type Deps struct {
	Fetcher    core.Fetcher
	Extractor  core.Extractor
	Recognizer core.Recognizer
	Renderer   core.Renderer
	Documents  DocumentStore
	Catalog    library.Catalog
}

// Coordinator runs imports.
type Coordinator struct {
	deps        Deps
	webTimeout  time.Duration
	scanTimeout time.Duration
	drainGrace  time.Duration
	newID       func() string
	logger      *slog.Logger
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithWebTimeout sets the deadline for web imports.
func WithWebTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.webTimeout = d
		}
	}
}

// WithScanTimeout sets the deadline for scan imports.
func WithScanTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.scanTimeout = d
		}
	}
}

// WithDrainGrace bounds how long an abandoned import is waited for before
// Import returns. Abandoned work still cleans up after itself.
func WithDrainGrace(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.drainGrace = d
		}
	}
}

// WithIDGenerator overrides how record ids are generated.
func WithIDGenerator(fn func() string) Option {
	return func(c *Coordinator) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates a Coordinator.
func New(deps Deps, opts ...Option) (*Coordinator, error) {
	switch {
	case deps.Fetcher == nil:
		return nil, errors.New("importer: fetcher is required")
	case deps.Extractor == nil:
		return nil, errors.New("importer: extractor is required")
	case deps.Renderer == nil:
		return nil, errors.New("importer: renderer is required")
	case deps.Documents == nil:
		return nil, errors.New("importer: document store is required")
	case deps.Catalog == nil:
		return nil, errors.New("importer: catalog is required")
	}

	c := &Coordinator{
		deps:        deps,
		webTimeout:  DefaultWebTimeout,
		scanTimeout: DefaultScanTimeout,
		drainGrace:  DefaultDrainGrace,
		newID:       uuid.NewString,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Import runs one import. tracker may be nil. The result is either a stored
// document with at least one page or a *core.Error.
func (c *Coordinator) Import(ctx context.Context, req core.ImportRequest, tracker *Tracker) (*core.ImportResult, error) {
	switch r := req.(type) {
	case *core.WebURL:
		if r != nil {
			return c.Import(ctx, *r, tracker)
		}
	case *core.ScannedImage:
		if r != nil {
			return c.Import(ctx, *r, tracker)
		}
	case core.WebURL:
		// Invalid input fails before any network activity.
		u, err := core.ParseWebURL(r.URL)
		if err != nil {
			return nil, c.fail(tracker, err)
		}
		c.logger.Info("importing web page", "url", u.String())
		return c.race(ctx, c.webTimeout, tracker, func(ctx context.Context, g *gate) (*core.ImportResult, error) {
			return c.importWeb(ctx, u, tracker, g)
		})
	case core.ScannedImage:
		c.logger.Info("importing scan", "pages", len(r.Pages), "title", r.Title)
		return c.race(ctx, c.scanTimeout, tracker, func(ctx context.Context, g *gate) (*core.ImportResult, error) {
			return c.importScan(ctx, r, tracker, g)
		})
	}
	return nil, c.fail(tracker, fmt.Errorf("unsupported import request %T", req))
}

type outcome struct {
	result *core.ImportResult
	err    error
}

type job func(ctx context.Context, g *gate) (*core.ImportResult, error)

// race runs work against the deadline and ctx.
func (c *Coordinator) race(ctx context.Context, timeout time.Duration, tracker *Tracker, work job) (*core.ImportResult, error) {
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, c.fail(tracker, err)
	}

	workCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	g := &gate{}
	done := make(chan outcome, 1)
	go func() {
		res, err := work(workCtx, g)
		done <- outcome{result: res, err: err}
	}()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	var abortErr error
	select {
	case out := <-done:
		return c.settle(tracker, out)
	case <-timer.C:
		abortErr = core.NewError(core.KindNetwork, core.ReasonTimeout,
			fmt.Errorf("import did not finish within %s", timeout))
	case <-ctx.Done():
		abortErr = core.CheckCancelled(ctx)
	}

	if !g.abort() {
		// The catalog entry is already being written; that result stands.
		return c.settle(tracker, <-done)
	}
	cancel(abortErr)
	c.drain(done)
	return nil, c.fail(tracker, abortErr)
}

// drain waits up to the grace period for abandoned work to unwind.
func (c *Coordinator) drain(done <-chan outcome) {
	t := time.NewTimer(c.drainGrace)
	defer t.Stop()
	select {
	case <-done:
	case <-t.C:
		c.logger.Warn("abandoned import still running", "grace", c.drainGrace)
	}
}

func (c *Coordinator) settle(tracker *Tracker, out outcome) (*core.ImportResult, error) {
	if out.err != nil {
		return nil, c.fail(tracker, out.err)
	}
	tracker.set(Done)
	c.logger.Info("import finished", "title", out.result.SuggestedTitle,
		"file", out.result.FileName, "pages", out.result.PageCount)
	return out.result, nil
}

// fail records the terminal state for err and returns err as a *core.Error.
func (c *Coordinator) fail(tracker *Tracker, err error) error {
	typed := core.AsError(err)
	state := Failed
	switch {
	case errors.Is(typed, core.ErrCancelled):
		state = Cancelled
	case errors.Is(typed, core.ErrTimeout):
		state = TimedOut
	}
	tracker.finish(state, typed)
	c.logger.Warn("import failed", "state", state.String(), "error", typed)
	return typed
}

func (c *Coordinator) importWeb(ctx context.Context, u *url.URL, tracker *Tracker, g *gate) (*core.ImportResult, error) {
	tracker.set(Fetching)
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, err
	}
	fetched, err := c.deps.Fetcher.Fetch(ctx, u.String())
	if err != nil {
		return nil, err
	}

	tracker.set(Extracting)
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, err
	}
	extracted, err := c.deps.Extractor.Extract(ctx, fetched.Body)
	if err != nil {
		return nil, err
	}

	host := u.Hostname()
	content := *extracted
	if strings.TrimSpace(content.Title) == "" {
		content.Title = host
	}
	author := content.Author
	if author == "" {
		author = host
	}
	if author == "" {
		author = fallbackAuthor
	}

	tracker.set(Rendering)
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, err
	}
	doc, err := c.deps.Renderer.RenderText(ctx, &content)
	if err != nil {
		return nil, err
	}

	return c.persist(ctx, tracker, g, doc, content.Title, author, library.FileTypePDF)
}

func (c *Coordinator) importScan(ctx context.Context, req core.ScannedImage, tracker *Tracker, g *gate) (*core.ImportResult, error) {
	tracker.set(Recognizing)
	pages := make([]core.ScanPage, 0, len(req.Pages))
	for i, raster := range req.Pages {
		if err := core.CheckCancelled(ctx); err != nil {
			return nil, err
		}
		regions, err := c.recognize(ctx, raster, i)
		if err != nil {
			return nil, err
		}
		pages = append(pages, core.ScanPage{Image: raster, Regions: regions})
	}

	tracker.set(Rendering)
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, err
	}
	doc, err := c.deps.Renderer.RenderScan(ctx, pages)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = DefaultScanTitle
	}
	return c.persist(ctx, tracker, g, doc, title, ScannedAuthor, library.FileTypeScanned)
}

// recognize returns the regions on one page. Recognition failures degrade to
// an image-only page; only cancellation is returned as an error.
func (c *Coordinator) recognize(ctx context.Context, raster core.Raster, page int) ([]core.RecognizedTextRegion, error) {
	if c.deps.Recognizer == nil {
		return nil, nil
	}
	regions, err := c.deps.Recognizer.Recognize(ctx, raster)
	if err != nil {
		if cerr := core.CheckCancelled(ctx); cerr != nil {
			return nil, cerr
		}
		c.logger.Warn("text recognition failed, page will be image-only", "page", page+1, "error", err)
		return nil, nil
	}
	for i := range regions {
		regions[i].PageIndex = page
	}
	return regions, nil
}

// persist writes the document file, then appends the catalog record. The
// file is written first so a crash in between leaves an orphaned file, never
// a record pointing at nothing.
func (c *Coordinator) persist(ctx context.Context, tracker *Tracker, g *gate, doc *core.Document,
	title, author string, fileType library.FileType) (*core.ImportResult, error) {
	tracker.set(Persisting)
	if err := core.CheckCancelled(ctx); err != nil {
		return nil, err
	}

	fileName, err := c.deps.Documents.Write(title, doc.Bytes, documentExt)
	if err != nil {
		return nil, core.NewError(core.KindSave, core.ReasonNone, err)
	}

	if !g.commit() {
		c.discard(fileName)
		return nil, core.Cancelled(errors.New("import abandoned before commit"))
	}

	record := library.NewRecord(c.newID(), title, author, fileName, fileType)
	// Past the commit point the append runs to completion.
	if err := c.deps.Catalog.Append(context.WithoutCancel(ctx), record); err != nil {
		c.discard(fileName)
		return nil, core.NewError(core.KindSave, core.ReasonNone, err)
	}

	return &core.ImportResult{
		FileBytes:       doc.Bytes,
		SuggestedTitle:  title,
		SuggestedAuthor: author,
		PageCount:       doc.PageCount,
		FileName:        fileName,
		RecordID:        record.ID,
	}, nil
}

func (c *Coordinator) discard(fileName string) {
	if err := c.deps.Documents.Remove(fileName); err != nil {
		c.logger.Error("removing abandoned document", "file", fileName, "error", err)
	}
}

// gate decides, exactly once, whether an import commits or is abandoned.
type gate struct {
	v atomic.Int32
}

const (
	gateOpen int32 = iota
	gateCommitted
	gateAborted
)

func (g *gate) commit() bool { return g.v.CompareAndSwap(gateOpen, gateCommitted) }
func (g *gate) abort() bool  { return g.v.CompareAndSwap(gateOpen, gateAborted) }
