package render

import (
	_ "embed"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jung-kurt/gofpdf"
)

// FontFamily is the embedded Unicode font used for every document.
const FontFamily = "DejaVu"

var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	regularFont []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	boldFont []byte
)

// lineSpacing scales the font size to the baseline-to-baseline distance.
const lineSpacing = 1.2

// registerFonts adds the embedded font faces to pdf.
func registerFonts(pdf *gofpdf.Fpdf) {
	pdf.AddUTF8FontFromBytes(FontFamily, "", regularFont)
	pdf.AddUTF8FontFromBytes(FontFamily, "B", boldFont)
}

// pdfMeasurer measures text with the widths of the fonts loaded into a
// gofpdf document. Widths are cached per style since SetFont is not free.
type pdfMeasurer struct {
	pdf    *gofpdf.Fpdf
	widths map[Style]map[rune]float64
}

func newPDFMeasurer(pdf *gofpdf.Fpdf) *pdfMeasurer {
	return &pdfMeasurer{pdf: pdf, widths: make(map[Style]map[rune]float64)}
}

func (m *pdfMeasurer) CharWidth(style Style, r rune) float64 {
	tbl, ok := m.widths[style]
	if !ok {
		tbl = make(map[rune]float64)
		m.widths[style] = tbl
	}
	if w, ok := tbl[r]; ok {
		return w
	}
	m.pdf.SetFont(style.Family, style.Weight, style.Size)
	w := m.pdf.GetStringWidth(string(r))
	tbl[r] = w
	return w
}

func (m *pdfMeasurer) LineHeight(style Style) float64 {
	return style.Size * lineSpacing
}

// ascentDescent returns the font's vertical metrics per 1000 units.
func (m *pdfMeasurer) ascentDescent(family, weight string) (int, int) {
	desc := m.pdf.GetFontDesc(family, weight)
	if desc.Ascent != 0 {
		return desc.Ascent, desc.Descent
	}
	return 800, -200
}

// lineBox returns the height of a single line of text set at size.
func (m *pdfMeasurer) lineBox(family, weight string, size float64) float64 {
	asc, desc := m.ascentDescent(family, weight)
	return size * float64(asc-desc) / 1000
}

// cleanText prepares UTF-8 text for a single line. Line breaks and tabs
// become spaces and other control characters are dropped. Characters beyond
// the Basic Multilingual Plane, which the font tables cannot address, become
// U+FFFD.
func cleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\r' || r == '\t':
			b.WriteByte(' ')
		case unicode.IsControl(r):
		case r > 0xFFFF:
			b.WriteRune(utf8.RuneError)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// paragraphs splits s on newlines and cleans each paragraph.
func paragraphs(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = cleanText(p)
	}
	return parts
}
