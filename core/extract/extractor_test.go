package extract

import (
	"context"
	"strings"
	"testing"

	"github.com/gaurav-prasanna/readmate/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractScenarios(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		wantTitle  string
		wantAuthor string
		wantBody   string
	}{
		{
			name: "title with author and site",
			html: `<html><head><title>Foo Bar by Jane Doe | ExampleSite</title></head>
				<body><article><p>First paragraph.</p><p>Second paragraph.</p></article></body></html>`,
			wantTitle:  "Foo Bar",
			wantAuthor: "Jane Doe",
			wantBody:   "First paragraph.\n\nSecond paragraph.",
		},
		{
			name: "article wins over main",
			html: `<html><body><main><p>main text</p></main><article><p>article text</p></article></body></html>`,
			wantBody: "article text",
		},
		{
			name:     "main wins over content id",
			html:     `<html><body><div id="content"><p>div text</p></div><main><p>main text</p></main></body></html>`,
			wantBody: "main text",
		},
		{
			name:     "content id wins over body",
			html:     `<html><body><p>outside</p><div id="content"><p>inside</p></div></body></html>`,
			wantBody: "inside",
		},
		{
			name:     "body fallback",
			html:     `<html><body><p>only body</p></body></html>`,
			wantBody: "only body",
		},
		{
			name: "boilerplate removed",
			html: `<html><body><article>
				<header><p>Header para</p></header>
				<nav><p>Nav para</p></nav>
				<p>Real   content
				spans lines.</p>
				<aside><p>Aside para</p></aside>
				<footer><p>Footer para</p></footer>
				<script>var x = "<p>script</p>";</script>
				</article></body></html>`,
			wantBody: "Real content spans lines.",
		},
		{
			name:     "no paragraphs falls back to element text",
			html:     `<html><body><main><div>Loose <b>text</b></div> <span>here</span><style>.a{}</style></main></body></html>`,
			wantBody: "Loose text here",
		},
		{
			name:     "whitespace-only paragraphs fall back to element text",
			html:     `<html><body><article><p>   </p><div>Actual words</div></article></body></html>`,
			wantBody: "Actual words",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Extract(context.Background(), []byte(tt.html))
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.Equal(t, tt.wantAuthor, got.Author)
			assert.Equal(t, tt.wantBody, got.Body)
			assert.NotEmpty(t, got.ContentHTML)
		})
	}
}

func TestExtractOnlyScriptsAndStyles(t *testing.T) {
	page := `<html><head><title>Empty</title></head><body>
		<script>console.log("hi")</script><style>body { color: red }</style>
	</body></html>`

	_, err := New().Extract(context.Background(), []byte(page))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNoReadableContent)
}

func TestExtractContentTooLong(t *testing.T) {
	para := "<p>" + strings.Repeat("word ", 2_000) + "</p>"
	page := "<html><body><article>" + strings.Repeat(para, 6) + "</article></body></html>"

	_, err := New().Extract(context.Background(), []byte(page))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrContentTooLong)

	// The ceiling cannot be raised.
	_, err = New(WithMaxChars(100_000)).Extract(context.Background(), []byte(page))
	assert.ErrorIs(t, err, core.ErrContentTooLong)

	short := "<html><body><article>" + para + "</article></body></html>"
	got, err := New(WithMaxChars(100_000)).Extract(context.Background(), []byte(short))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.Body, "word word"))
}

func TestExtractCountsCharactersNotBytes(t *testing.T) {
	// 30 runes of 2 bytes each: over a 40-byte limit, under a 40-char limit.
	page := "<html><body><p>" + strings.Repeat("é", 30) + "</p></body></html>"

	got, err := New(WithMaxChars(40)).Extract(context.Background(), []byte(page))
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 30), got.Body)
}

func TestExtractInvalidUTF8(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte{0x3c, 0x70, 0x3e, 0xff, 0xfe, 0x3c})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrDecode)
}

func TestExtractCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, []byte("<p>text</p>"))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrCancelled)
}

func TestExtractMissingTitle(t *testing.T) {
	got, err := New().Extract(context.Background(), []byte("<p>text</p>"))
	require.NoError(t, err)
	assert.Empty(t, got.Title)
	assert.Equal(t, "text", got.Body)
}
