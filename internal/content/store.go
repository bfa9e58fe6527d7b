package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/xxxsen/webnovel/internal/filestore"
	appErr "github.com/xxxsen/webnovel/internal/pkg/errors"
)

// Store persists a chapter's ordered content as a single JSON file behind the
// file-storage collaborator. Load distinguishes a file that was never
// materialized (ErrNotFound) from one that cannot be read or decoded
// (ErrStorage); callers fall back to legacy parsing only on the former.
type Store struct {
	files filestore.Store
}

func NewStore(files filestore.Store) *Store {
	return &Store{files: files}
}

func (s *Store) Load(ctx context.Context, bookID, chapterID int64) ([]Element, error) {
	key := ContentKey(bookID, chapterID)
	r, err := s.files.Open(ctx, key)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: content file %s", appErr.ErrNotFound, key)
		}
		return nil, fmt.Errorf("%w: open %s: %v", appErr.ErrStorage, key, err)
	}
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", appErr.ErrStorage, key, err)
	}
	var elements []Element
	if err := json.Unmarshal(data, &elements); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", appErr.ErrStorage, key, err)
	}
	return elements, nil
}

// Save overwrites the whole content file. Atomicity (write-then-rename) is
// the backend's job; a failed save leaves the previously persisted file
// untouched.
func (s *Store) Save(ctx context.Context, bookID, chapterID int64, elements []Element) error {
	if elements == nil {
		elements = []Element{}
	}
	for i, el := range elements {
		if err := el.Validate(); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	data, err := json.Marshal(elements)
	if err != nil {
		return fmt.Errorf("%w: encode content: %v", appErr.ErrStorage, err)
	}
	key := ContentKey(bookID, chapterID)
	reader := newBytesReadSeekCloser(data)
	if err := s.files.Save(ctx, key, reader, int64(len(data))); err != nil {
		return fmt.Errorf("%w: save %s: %v", appErr.ErrStorage, key, err)
	}
	return nil
}

// Delete removes the content file, tolerating absence. Used when a chapter is
// deleted.
func (s *Store) Delete(ctx context.Context, bookID, chapterID int64) error {
	if err := s.files.Delete(ctx, ContentKey(bookID, chapterID)); err != nil {
		return fmt.Errorf("%w: %v", appErr.ErrStorage, err)
	}
	return nil
}

type bytesReadSeekCloser struct {
	*bytes.Reader
}

func newBytesReadSeekCloser(data []byte) filestore.ReadSeekCloser {
	return bytesReadSeekCloser{Reader: bytes.NewReader(data)}
}

func (bytesReadSeekCloser) Close() error {
	return nil
}
