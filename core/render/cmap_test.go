package render

import (
	"bytes"
	"fmt"
	"strconv"
	"testing"

	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unicodeDocument(t *testing.T) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "A4", "")
	registerFonts(pdf)
	pdf.AddPage()
	pdf.SetFont(FontFamily, "", 12)
	pdf.Text(40, 60, "Привет")
	pdf.SetFont(FontFamily, "B", 12)
	pdf.Text(40, 80, "Ελληνικά")
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func TestFixToUnicodeRewritesRanges(t *testing.T) {
	doc := unicodeDocument(t)
	require.Equal(t, 2, bytes.Count(doc, cmapStream(gofpdfToUnicode)))

	fixed, err := fixToUnicode(doc)
	require.NoError(t, err)
	assert.NotContains(t, string(fixed), "<0000> <FFFF> <0000>")
	assert.Equal(t, 2, bytes.Count(fixed, cmapStream(identityToUnicode)))
	assert.Contains(t, identityToUnicode, "<0400> <04FF> <0400>")

	// Every in-use cross-reference entry still points at its object.
	xref, err := startXref(fixed)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(fixed[xref:], []byte("xref\n0 ")))
	var count int
	_, err = fmt.Sscanf(string(fixed[xref+len("xref\n"):]), "0 %d", &count)
	require.NoError(t, err)
	entries := fixed[bytes.IndexByte(fixed[xref+len("xref\n"):], '\n')+xref+len("xref\n")+1:]
	for n := 1; n < count; n++ {
		entry := entries[n*xrefEntrySize : (n+1)*xrefEntrySize]
		off, err := strconv.Atoi(string(entry[:10]))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(fixed[off:], []byte(fmt.Sprintf("%d 0 obj", n))), "object %d", n)
	}
}

func TestFixToUnicodeLeavesOtherDocuments(t *testing.T) {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Courier", "", 12)
	pdf.Text(40, 60, "plain")
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))

	fixed, err := fixToUnicode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, buf.Bytes(), fixed)
}

func TestFixToUnicodeRejectsBrokenTrailer(t *testing.T) {
	_, err := fixToUnicode(cmapStream(gofpdfToUnicode))
	assert.Error(t, err)
}
