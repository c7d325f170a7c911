package library

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// DefaultFileName is used when a title sanitizes to nothing.
const DefaultFileName = "Untitled"

// maxNameBytes leaves room for a collision suffix and extension within the
// usual 255-byte file name limit.
const maxNameBytes = 200

// Documents is the directory holding imported document files.
type Documents struct {
	dir string
}

// NewDocuments creates a documents area at dir.
// If dir is empty, it defaults to the current working directory.
func NewDocuments(dir string) (*Documents, error) {
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		dir = wd
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating documents directory: %w", err)
	}
	return &Documents{dir: dir}, nil
}

// Dir returns the documents directory.
func (d *Documents) Dir() string {
	return d.dir
}

// Path returns the full path of a stored file.
func (d *Documents) Path(fileName string) string {
	return filepath.Join(d.dir, fileName)
}

// Write stores data under a name derived from title and returns the file
// name. An existing file is never replaced: the name gets a " (2)", " (3)"
// ... suffix instead. The file appears under its final name only once fully
// written.
func (d *Documents) Write(title string, data []byte, ext string) (string, error) {
	tmp, err := writeTemp(d.dir, ".import-*.tmp", data)
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	base := SanitizeFileName(title)
	for n := 1; ; n++ {
		name := base + ext
		if n > 1 {
			name = fmt.Sprintf("%s (%d)%s", base, n, ext)
		}
		// Link fails if the name is taken, so two imports never claim the
		// same file.
		err := os.Link(tmp, filepath.Join(d.dir, name))
		if err == nil {
			return name, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("storing %s: %w", name, err)
		}
	}
}

// Read returns the contents of a stored file.
func (d *Documents) Read(fileName string) ([]byte, error) {
	if fileName != filepath.Base(fileName) {
		return nil, fmt.Errorf("invalid file name %q", fileName)
	}
	return os.ReadFile(d.Path(fileName))
}

// Remove deletes a stored file. Removing a missing file is not an error.
func (d *Documents) Remove(fileName string) error {
	if fileName != filepath.Base(fileName) {
		return fmt.Errorf("invalid file name %q", fileName)
	}
	if err := os.Remove(d.Path(fileName)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("removing %s: %w", fileName, err)
	}
	return nil
}

// SanitizeFileName strips the characters \ / : * ? " < > | and line breaks
// from title. Other whitespace is collapsed to single spaces and the result
// is trimmed and length-limited. An empty result becomes DefaultFileName.
func SanitizeFileName(title string) string {
	var b strings.Builder
	for _, r := range title {
		switch r {
		case '\\', '/', ':', '*', '?', '"', '<', '>', '|', '\n', '\r':
			continue
		case 0:
			continue
		}
		b.WriteRune(r)
	}
	name := strings.Join(strings.Fields(b.String()), " ")

	if len(name) > maxNameBytes {
		cut := maxNameBytes
		for cut > 0 && !utf8.RuneStart(name[cut]) {
			cut--
		}
		name = strings.TrimSpace(name[:cut])
	}
	// Leading dots would hide the file or name the directory itself.
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return DefaultFileName
	}
	return name
}
