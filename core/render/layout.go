package render

import (
	"errors"
	"fmt"
	"unicode/utf8"
)

// Style is the typeface used for a block of text.
type Style struct {
	Family string  // registered font family, e.g. "DejaVu"
	Weight string  // gofpdf style string: "", "B", "I" or "BI"
	Size   float64 // points
	Gray   int     // text gray level, 0 is black
}

// Block is one paragraph of single-style text. Blocks are separated by an
// implicit newline that counts as one character of the flowed text.
// Offsets into Text count runes.
type Block struct {
	Text  string
	Style Style
}

// Measurer reports font metrics for layout.
type Measurer interface {
	// CharWidth returns the advance width of r.
	CharWidth(style Style, r rune) float64
	// LineHeight returns the distance between consecutive baselines.
	LineHeight(style Style) float64
}

// Line is one laid-out line of a block.
type Line struct {
	Block      int
	Start, End int // rune range rendered, within the block text
	Text       string
	Height     float64
}

// Page is the set of lines that fit one content area.
// Start and End are rune offsets into the flowed text (blocks joined by
// newlines); End is the first character not rendered on this page.
type Page struct {
	Lines      []Line
	Start, End int
}

// errNoProgress guards the pagination loop against a page that rendered nothing.
var errNoProgress = errors.New("pagination made no progress")

// Paginate flows blocks into pages of the given content width and height.
// Every page consumes at least one character, so the loop ends after at most
// as many pages as there are characters.
func Paginate(blocks []Block, m Measurer, width, height float64) ([]Page, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("content area %.2fx%.2f has no room for text", width, height)
	}

	lines, nexts := breakLines(blocks, m, width)
	if len(lines) == 0 {
		return nil, nil
	}

	var pages []Page
	cursor := 0
	for i := 0; i < len(lines); {
		page := Page{Start: cursor}
		used := 0.0
		for i < len(lines) {
			h := lines[i].Height
			// The first line of a page is always placed, even if it overflows.
			if len(page.Lines) > 0 && used+h > height {
				break
			}
			page.Lines = append(page.Lines, lines[i])
			used += h
			cursor = nexts[i]
			i++
		}
		page.End = cursor
		if page.End <= page.Start {
			return nil, errNoProgress
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// breakLines wraps every block to width. For each line it also returns the
// flowed-text offset of the first character after it (including consumed
// spaces and the block separator).
func breakLines(blocks []Block, m Measurer, width float64) ([]Line, []int) {
	offsets := blockOffsets(blocks)
	var (
		lines []Line
		nexts []int
	)

	for bi, block := range blocks {
		text := []rune(block.Text)
		lh := m.LineHeight(block.Style)
		sep := 0
		if bi < len(blocks)-1 {
			sep = 1
		}

		if len(text) == 0 {
			lines = append(lines, Line{Block: bi, Height: lh})
			nexts = append(nexts, offsets[bi]+sep)
			continue
		}

		pos := 0
		for pos < len(text) {
			end, next := wrap(text, pos, block.Style, m, width)
			rendered := trimRightSpace(text[pos:end])
			lines = append(lines, Line{
				Block:  bi,
				Start:  pos,
				End:    pos + len(rendered),
				Text:   string(rendered),
				Height: lh,
			})
			// Spaces after a soft break belong to this line.
			for next < len(text) && text[next] == ' ' {
				next++
			}
			if next >= len(text) {
				nexts = append(nexts, offsets[bi]+len(text)+sep)
			} else {
				nexts = append(nexts, offsets[bi]+next)
			}
			pos = next
		}
	}
	return lines, nexts
}

// wrap finds the end of the line starting at start. It breaks after the last
// space that fits, or inside a word that is wider than the line. At least one
// character is always taken.
func wrap(text []rune, start int, style Style, m Measurer, width float64) (end, next int) {
	w := 0.0
	lastSpace := -1
	for i := start; i < len(text); i++ {
		c := text[i]
		cw := m.CharWidth(style, c)
		if c == ' ' {
			lastSpace = i
		}
		if i > start && w+cw > width {
			switch {
			case c == ' ':
				return i, i + 1
			case lastSpace > start:
				return lastSpace, lastSpace + 1
			default:
				return i, i
			}
		}
		w += cw
	}
	return len(text), len(text)
}

func blockOffsets(blocks []Block) []int {
	offsets := make([]int, len(blocks))
	off := 0
	for i, b := range blocks {
		offsets[i] = off
		off += utf8.RuneCountInString(b.Text) + 1
	}
	return offsets
}

func trimRightSpace(s []rune) []rune {
	i := len(s)
	for i > 0 && s[i-1] == ' ' {
		i--
	}
	return s[:i]
}

// FitFontSize returns the largest whole point size in [MinFontSize, MaxFontSize]
// whose single-line box is no taller than height. lineBox maps a size to that
// box height. Sizes below the minimum are never returned.
func FitFontSize(height float64, lineBox func(size float64) float64) float64 {
	lo, hi := MinFontSize, MaxFontSize
	best := MinFontSize
	for lo <= hi {
		mid := (lo + hi) / 2
		if lineBox(float64(mid)) <= height {
			best = mid
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	return float64(best)
}

// Font size search bounds for the invisible text layer.
const (
	MinFontSize = 1
	MaxFontSize = 128
)
