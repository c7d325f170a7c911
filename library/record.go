// Package library is the durable record of imported documents: a catalog of
// records and the documents area holding the files they point to.
//
// Catalogs have whole-collection semantics. Append adds exactly one record or
// nothing; Load returns every record in insertion order.
package library

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/gaurav-prasanna/readmate/core"
)

// FileType is the kind of stored document.
type FileType string

const (
	FileTypePDF     FileType = "pdf"
	FileTypeEPUB    FileType = "epub"
	FileTypeScanned FileType = "scanned"
)

// Valid reports whether t is a known file type.
func (t FileType) Valid() bool {
	switch t {
	case FileTypePDF, FileTypeEPUB, FileTypeScanned:
		return true
	}
	return false
}

// Annotation is a highlighted passage on a page.
type Annotation struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	PageNumber int         `json:"pageNumber"`
	Rects      []core.Rect `json:"rects"`
}

// Record is one catalog entry.
type Record struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Author          string       `json:"author"`
	FileName        string       `json:"fileName"`
	FileType        FileType     `json:"fileType"`
	Bookmarks       []int        `json:"bookmarks"`
	ReadingProgress float64      `json:"readingProgress"`
	TotalPages      int          `json:"totalPages"`
	FolderID        *string      `json:"folderId,omitempty"`
	Annotations     []Annotation `json:"annotations"`
}

// NewRecord returns a fresh record: no bookmarks, no annotations, no
// reading progress and no folder.
func NewRecord(id, title, author, fileName string, fileType FileType) Record {
	return Record{
		ID:          id,
		Title:       title,
		Author:      author,
		FileName:    fileName,
		FileType:    fileType,
		Bookmarks:   []int{},
		Annotations: []Annotation{},
	}
}

var (
	ErrInvalidRecord = errors.New("invalid record")
	ErrNotFound      = errors.New("record not found")
	ErrDuplicateID   = errors.New("duplicate record id")
)

// Validate checks the fields every record must carry.
func (r Record) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: missing id", ErrInvalidRecord)
	case strings.TrimSpace(r.Title) == "":
		return fmt.Errorf("%w: missing title", ErrInvalidRecord)
	case r.FileName == "":
		return fmt.Errorf("%w: missing file name", ErrInvalidRecord)
	case !r.FileType.Valid():
		return fmt.Errorf("%w: unknown file type %q", ErrInvalidRecord, r.FileType)
	case r.ReadingProgress < 0 || r.ReadingProgress > 1:
		return fmt.Errorf("%w: reading progress %v outside 0..1", ErrInvalidRecord, r.ReadingProgress)
	}
	return nil
}

// Catalog stores library records.
type Catalog interface {
	// Append adds one record. Concurrent appends are serialized.
	Append(ctx context.Context, record Record) error
	// Load returns all records in the order they were appended.
	Load(ctx context.Context) ([]Record, error)
}

// Find returns the record with the given id.
func Find(ctx context.Context, c Catalog, id string) (Record, error) {
	records, err := c.Load(ctx)
	if err != nil {
		return Record{}, err
	}
	for _, r := range records {
		if r.ID == id {
			return r, nil
		}
	}
	return Record{}, fmt.Errorf("%w: %s", ErrNotFound, id)
}

// SortByTitle orders records by title, case-insensitively, then by id.
func SortByTitle(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, tj := strings.ToLower(records[i].Title), strings.ToLower(records[j].Title)
		if ti != tj {
			return ti < tj
		}
		return records[i].ID < records[j].ID
	})
}

// normalize fills nil slices so stored records always carry empty lists.
func normalize(r Record) Record {
	if r.Bookmarks == nil {
		r.Bookmarks = []int{}
	}
	if r.Annotations == nil {
		r.Annotations = []Annotation{}
	}
	return r
}
