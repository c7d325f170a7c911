package pagetext

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/readmate/core"
	"github.com/jung-kurt/gofpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// samplePDF writes one line of text per page, leaving "" pages blank.
func samplePDF(t *testing.T, pages ...string) []byte {
	t.Helper()
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetFont("Helvetica", "", 12)
	for _, text := range pages {
		pdf.AddPage()
		if text != "" {
			pdf.Text(40, 60, text)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, pdf.Output(&buf))
	return buf.Bytes()
}

func squash(s string) string {
	return strings.Join(strings.Fields(s), "")
}

func TestExtractAllOrdered(t *testing.T) {
	data := samplePDF(t, "First page", "Second page", "", "Fourth page")
	r := NewReader(WithConcurrency(3))

	n, err := r.PageCount(data)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	pages, err := r.ExtractAll(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, pages, 4)
	for i, p := range pages {
		assert.Equal(t, i+1, p.Number)
	}
	assert.Equal(t, squash("First page"), squash(pages[0].Text))
	assert.Equal(t, squash("Fourth page"), squash(pages[3].Text))
	assert.Empty(t, strings.TrimSpace(pages[2].Text))

	m := Pages(pages)
	assert.Len(t, m, 3)
	assert.NotContains(t, m, 3)
}

func TestExtractPage(t *testing.T) {
	data := samplePDF(t, "Alpha", "Beta")
	r := NewReader()

	text, err := r.ExtractPage(context.Background(), data, 2)
	require.NoError(t, err)
	assert.Equal(t, "Beta", squash(text))
}

func TestText(t *testing.T) {
	data := samplePDF(t, "Alpha", "", "Gamma")
	text, err := NewReader().Text(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, "AlphaGamma", squash(text))
}

func TestExtractAllInvalidPDF(t *testing.T) {
	_, err := NewReader().ExtractAll(context.Background(), []byte("not a pdf"))
	require.Error(t, err)
	assert.Equal(t, core.KindDecode, core.AsError(err).Kind)
}

func TestExtractAllCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewReader().ExtractAll(ctx, samplePDF(t, "Alpha"))
	require.Error(t, err)
	assert.Equal(t, core.KindCancelled, core.AsError(err).Kind)
}

func TestOrdered(t *testing.T) {
	got := Ordered(map[int]string{3: "c", 1: "a", 2: "b"})
	assert.Equal(t, []PageText{{1, "a"}, {2, "b"}, {3, "c"}}, got)
	assert.Empty(t, Ordered(nil))
}

func TestContextWindow(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		maxWords int
		want     []string
	}{
		{"empty", "   ", 3, nil},
		{"fits", "one two", 3, []string{"one two"}},
		{"exact", "a b c d e f", 3, []string{"a b c", "d e f"}},
		{"remainder", "a b c d", 3, []string{"a b c", "d"}},
		{"collapses whitespace", "a\n\nb\tc", 5, []string{"a b c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContextWindow(tt.text, tt.maxWords))
		})
	}
}

func TestContextWindowDefault(t *testing.T) {
	text := strings.Repeat("word ", DefaultWindowWords+1)
	windows := ContextWindow(text, 0)
	require.Len(t, windows, 2)
	assert.Equal(t, DefaultWindowWords, WordCount(windows[0]))
	assert.Equal(t, 1, WordCount(windows[1]))
}

func TestPageWindow(t *testing.T) {
	pages := map[int]string{1: "one", 2: " two ", 3: "three", 5: "five"}

	assert.Equal(t, "two\n\nthree", PageWindow(pages, 3, 1))
	assert.Equal(t, "three\n\nfive", PageWindow(pages, 4, 1))
	assert.Equal(t, "one", PageWindow(pages, 1, 0))
	assert.Empty(t, PageWindow(pages, 9, 1))
}
