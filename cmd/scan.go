package cmd

import (
	"fmt"
	"os"

	"github.com/gaurav-prasanna/readmate/core"
	"github.com/gaurav-prasanna/readmate/core/ocr"
	"github.com/spf13/cobra"
)

var (
	flagTitle string
	flagNoOCR bool
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>...",
	Short: "Import scanned page images as a searchable document",
	Long: `Scan turns one or more page images (PNG or JPEG) into a PDF with one page
per image. Text recognized by tesseract is placed over each page as an
invisible, selectable layer. If recognition fails the page is kept as a
plain image.

Examples:
  readmate scan page1.png page2.png --title "Meeting notes"
  readmate scan receipt.jpg --no-ocr`,
	Args: cobra.MinimumNArgs(1),
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringVarP(&flagTitle, "title", "t", "", "Document title (default: \"Scanned Document\")")
	scanCmd.Flags().BoolVar(&flagNoOCR, "no-ocr", false, "Skip text recognition")
}

func runScan(cmd *cobra.Command, args []string) error {
	pages := make([]core.Raster, 0, len(args))
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading image: %w", err)
		}
		pages = append(pages, core.Raster{Data: data})
	}

	var recognizer core.Recognizer
	if !flagNoOCR {
		worker := ocr.NewWorker(ocr.NewTesseract(
			ocr.WithBinary(cfg.TesseractPath),
			ocr.WithLanguage(cfg.OCRLanguage),
			ocr.WithTesseractLogger(logger),
		), logger)
		defer worker.Close()
		recognizer = worker
	}

	coordinator, closeCatalog, err := newCoordinator(cfg, logger, recognizer)
	if err != nil {
		return err
	}
	defer closeCatalog()

	req := core.ScannedImage{Pages: pages, Title: flagTitle}
	res, err := coordinator.Import(cmd.Context(), req, progress(cmd.ErrOrStderr()))
	if err != nil {
		return userError(err)
	}
	printResult(cmd.OutOrStdout(), res, cfg.DocumentsDir)
	return nil
}
