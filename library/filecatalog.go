package library

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// CatalogFileName is the JSON catalog inside the data directory.
const CatalogFileName = "books.json"

// FileCatalog keeps the catalog as one JSON array, rewritten whole on every
// append.
type FileCatalog struct {
	path string
	mu   sync.Mutex
}

// NewFileCatalog creates a catalog stored in dir, creating dir if needed.
func NewFileCatalog(dir string) (*FileCatalog, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating catalog directory: %w", err)
	}
	return &FileCatalog{path: filepath.Join(dir, CatalogFileName)}, nil
}

// Path returns the catalog file path.
func (c *FileCatalog) Path() string {
	return c.path
}

// Load reads every record. A missing catalog is an empty library.
func (c *FileCatalog) Load(ctx context.Context) ([]Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

func (c *FileCatalog) load(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decoding catalog %s: %w", c.path, err)
	}
	for i := range records {
		records[i] = normalize(records[i])
	}
	return records, nil
}

// Append adds record and rewrites the catalog. The previous catalog stays
// in place until the new one is complete.
func (c *FileCatalog) Append(ctx context.Context, record Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	records, err := c.load(ctx)
	if err != nil {
		return err
	}
	for _, r := range records {
		if r.ID == record.ID {
			return fmt.Errorf("%w: %s", ErrDuplicateID, record.ID)
		}
	}
	records = append(records, normalize(record))

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding catalog: %w", err)
	}
	if err := writeFileAtomic(c.path, data); err != nil {
		return fmt.Errorf("writing catalog: %w", err)
	}
	return nil
}
