// Package ocr recognizes text in page images.
//
// Tesseract drives the tesseract command-line engine and converts its TSV
// output into line regions with normalized, bottom-left-origin boxes. Worker
// serializes recognition onto one background goroutine and turns engine
// failures into an empty result so a scan still imports as image-only pages.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gaurav-prasanna/readmate/core"
)

const (
	DefaultTesseractPath = "tesseract"
	DefaultLanguage      = "eng"
)

// Tesseract recognizes text by running the tesseract binary.
type Tesseract struct {
	path     string
	language string
	logger   *slog.Logger
}

// TesseractOption configures a Tesseract recognizer.
type TesseractOption func(*Tesseract)

// WithBinary sets the tesseract executable.
func WithBinary(path string) TesseractOption {
	return func(t *Tesseract) {
		if path != "" {
			t.path = path
		}
	}
}

// WithLanguage sets the tesseract language code, e.g. "eng" or "eng+deu".
func WithLanguage(lang string) TesseractOption {
	return func(t *Tesseract) {
		if lang != "" {
			t.language = lang
		}
	}
}

// WithTesseractLogger sets the logger.
func WithTesseractLogger(logger *slog.Logger) TesseractOption {
	return func(t *Tesseract) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// NewTesseract creates a recognizer using tesseract from PATH.
func NewTesseract(opts ...TesseractOption) *Tesseract {
	t := &Tesseract{
		path:     DefaultTesseractPath,
		language: DefaultLanguage,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Recognize runs tesseract on the raster and returns one region per text line.
func (t *Tesseract) Recognize(ctx context.Context, raster core.Raster) ([]core.RecognizedTextRegion, error) {
	if len(raster.Data) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, t.path, "stdin", "stdout", "-l", t.language, "tsv")
	cmd.Stdin = bytes.NewReader(raster.Data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if cerr := core.CheckCancelled(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("running %s: %w: %s", t.path, err, strings.TrimSpace(stderr.String()))
	}

	regions, err := ParseTSV(stdout.Bytes())
	if err != nil {
		return nil, err
	}
	t.logger.Debug("tesseract finished", "regions", len(regions), "bytes", len(raster.Data))
	return regions, nil
}

// tsv column indexes.
const (
	colLevel = iota
	colPage
	colBlock
	colPar
	colLine
	colWord
	colLeft
	colTop
	colWidth
	colHeight
	colConf
	colText
	numCols
)

// TSV row levels.
const (
	levelPage = 1
	levelWord = 5
)

type lineKey struct {
	page, block, par, line int
}

type lineAcc struct {
	words                  []string
	left, top, right, bott int
}

// ParseTSV converts tesseract TSV output into line regions. Words are grouped
// by their page, block, paragraph and line numbers; a line's box is the union
// of its word boxes, normalized by the page size with the origin moved to the
// bottom-left corner.
func ParseTSV(data []byte) ([]core.RecognizedTextRegion, error) {
	var (
		pageW, pageH int
		order        []lineKey
		lines        = map[lineKey]*lineAcc{}
	)

	for i, row := range strings.Split(string(data), "\n") {
		row = strings.TrimRight(row, "\r")
		if i == 0 || row == "" {
			continue // header
		}
		f := strings.SplitN(row, "\t", numCols)
		if len(f) < numCols-1 {
			return nil, fmt.Errorf("tsv line %d: want %d columns, got %d", i+1, numCols, len(f))
		}
		nums := make([]int, colConf)
		for c := colLevel; c < colConf; c++ {
			n, err := strconv.Atoi(f[c])
			if err != nil {
				return nil, fmt.Errorf("tsv line %d column %d: %w", i+1, c+1, err)
			}
			nums[c] = n
		}

		switch nums[colLevel] {
		case levelPage:
			pageW, pageH = nums[colWidth], nums[colHeight]
		case levelWord:
			text := ""
			if len(f) == numCols {
				text = strings.TrimSpace(f[colText])
			}
			conf, _ := strconv.ParseFloat(f[colConf], 64)
			if text == "" || conf < 0 {
				continue
			}
			key := lineKey{nums[colPage], nums[colBlock], nums[colPar], nums[colLine]}
			acc, ok := lines[key]
			if !ok {
				acc = &lineAcc{left: nums[colLeft], top: nums[colTop], right: nums[colLeft], bott: nums[colTop]}
				lines[key] = acc
				order = append(order, key)
			}
			acc.words = append(acc.words, text)
			acc.left = min(acc.left, nums[colLeft])
			acc.top = min(acc.top, nums[colTop])
			acc.right = max(acc.right, nums[colLeft]+nums[colWidth])
			acc.bott = max(acc.bott, nums[colTop]+nums[colHeight])
		}
	}

	if len(order) == 0 {
		return []core.RecognizedTextRegion{}, nil
	}
	if pageW <= 0 || pageH <= 0 {
		return nil, fmt.Errorf("tsv has words but no page dimensions")
	}

	w, h := float64(pageW), float64(pageH)
	regions := make([]core.RecognizedTextRegion, 0, len(order))
	for _, key := range order {
		acc := lines[key]
		regions = append(regions, core.RecognizedTextRegion{
			Text: strings.Join(acc.words, " "),
			Box: core.Rect{
				X:      float64(acc.left) / w,
				Y:      1 - float64(acc.bott)/h,
				Width:  float64(acc.right-acc.left) / w,
				Height: float64(acc.bott-acc.top) / h,
			},
		})
	}
	return regions, nil
}
