package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestImportListAndText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Field Notes by Ada | Blog</title></head>
<body><article><p>Observations from the field.</p><p>More notes follow here.</p></article></body></html>`))
	}))
	t.Cleanup(srv.Close)

	for _, backend := range []string{"json", "sqlite"} {
		t.Run(backend, func(t *testing.T) {
			dataDir := t.TempDir()
			common := []string{"--data-dir", dataDir, "--catalog", backend}

			out, err := run(t, append([]string{"import", srv.URL}, common...)...)
			require.NoError(t, err)
			assert.Contains(t, out, `Imported "Field Notes" by Ada`)

			id := regexp.MustCompile(`id:\s+(\S+)`).FindStringSubmatch(out)
			require.Len(t, id, 2)

			out, err = run(t, append([]string{"library", "list"}, common...)...)
			require.NoError(t, err)
			assert.Contains(t, out, "Field Notes")
			assert.Contains(t, out, id[1])

			out, err = run(t, append([]string{"library", "text", id[1]}, common...)...)
			require.NoError(t, err)
			assert.Contains(t, out, "--- page 1 ---")
			assert.Contains(t, out, "Observations")
		})
	}
}

func TestImportInvalidURLMessage(t *testing.T) {
	_, err := run(t, "import", "http://", "--data-dir", t.TempDir(), "--catalog", "json")
	require.Error(t, err)
	assert.NotEmpty(t, err.Error())
}

func TestPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>Hello</title></head><body><main><h2>Intro</h2><p>Some <b>bold</b> text.</p></main></body></html>`))
	}))
	t.Cleanup(srv.Close)

	out, err := run(t, "preview", srv.URL, "--data-dir", t.TempDir(), "--catalog", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "# Hello")
	assert.Contains(t, out, "**bold**")
}

func TestDataDirKeepsConfiguredDocumentsDir(t *testing.T) {
	docsDir := filepath.Join(t.TempDir(), "pdfs")
	t.Setenv("READMATE_DOCUMENTS_DIR", docsDir)

	dataDir := t.TempDir()
	_, err := run(t, "library", "list", "--data-dir", dataDir, "--catalog", "json")
	require.NoError(t, err)
	assert.Equal(t, dataDir, cfg.DataDir)
	assert.Equal(t, docsDir, cfg.DocumentsDir)
}

func TestDataDirMovesDefaultDocumentsDir(t *testing.T) {
	dataDir := t.TempDir()
	_, err := run(t, "library", "list", "--data-dir", dataDir, "--catalog", "json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dataDir, "documents"), cfg.DocumentsDir)
}
