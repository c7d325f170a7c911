package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/gaurav-prasanna/readmate/config"
	"github.com/gaurav-prasanna/readmate/core"
	"github.com/gaurav-prasanna/readmate/core/extract"
	"github.com/gaurav-prasanna/readmate/core/fetch"
	"github.com/gaurav-prasanna/readmate/core/importer"
	"github.com/gaurav-prasanna/readmate/core/render"
	"github.com/gaurav-prasanna/readmate/library"
)

// openCatalog opens the configured catalog backend. The returned close
// function is never nil.
func openCatalog(cfg *config.Config) (library.Catalog, func() error, error) {
	switch cfg.CatalogBackend {
	case config.CatalogSQLite:
		c, err := library.OpenSQLiteCatalog(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening catalog: %w", err)
		}
		return c, c.Close, nil
	default:
		c, err := library.NewFileCatalog(cfg.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening catalog: %w", err)
		}
		return c, func() error { return nil }, nil
	}
}

func newFetcher(cfg *config.Config, logger *slog.Logger) *fetch.HTTPFetcher {
	return fetch.New(
		fetch.WithRequestTimeout(cfg.RequestTimeout),
		fetch.WithResourceTimeout(cfg.ResourceTimeout),
		fetch.WithMaxBodyBytes(cfg.MaxBodyBytes),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithLogger(logger),
	)
}

func newExtractor(cfg *config.Config, logger *slog.Logger) *extract.HTMLExtractor {
	return extract.New(
		extract.WithMaxChars(cfg.MaxContentChars),
		extract.WithLogger(logger),
	)
}

// newCoordinator wires the import pipeline. recognizer may be nil.
func newCoordinator(cfg *config.Config, logger *slog.Logger, recognizer core.Recognizer) (*importer.Coordinator, func() error, error) {
	catalog, closeCatalog, err := openCatalog(cfg)
	if err != nil {
		return nil, nil, err
	}
	docs, err := library.NewDocuments(cfg.DocumentsDir)
	if err != nil {
		_ = closeCatalog()
		return nil, nil, err
	}

	c, err := importer.New(importer.Deps{
		Fetcher:    newFetcher(cfg, logger),
		Extractor:  newExtractor(cfg, logger),
		Recognizer: recognizer,
		Renderer:   render.NewPDFRenderer(render.WithLogger(logger)),
		Documents:  docs,
		Catalog:    catalog,
	},
		importer.WithWebTimeout(cfg.WebImportTimeout),
		importer.WithScanTimeout(cfg.ScanImportTimeout),
		importer.WithLogger(logger),
	)
	if err != nil {
		_ = closeCatalog()
		return nil, nil, err
	}
	return c, closeCatalog, nil
}

// progress prints import stage changes to w.
func progress(w io.Writer) *importer.Tracker {
	tr := importer.NewTracker()
	tr.OnChange(func(s importer.State) {
		if !s.Terminal() {
			fmt.Fprintf(w, "… %s\n", s)
		}
	})
	return tr
}

// userError returns the message shown for a failed import.
func userError(err error) error {
	if typed := core.AsError(err); typed != nil && typed.Kind != core.KindUnknown {
		return fmt.Errorf("%s", typed.Message())
	}
	return err
}

func printResult(w io.Writer, res *core.ImportResult, docs string) {
	fmt.Fprintf(w, "✓ Imported %q by %s\n", res.SuggestedTitle, res.SuggestedAuthor)
	fmt.Fprintf(w, "  pages: %d\n", res.PageCount)
	fmt.Fprintf(w, "  file:  %s\n", filepath.Join(docs, res.FileName))
	fmt.Fprintf(w, "  id:    %s\n", res.RecordID)
}
