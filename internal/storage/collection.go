package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// Record is implemented by every type stored in a Collection. Its
// unexported method limits it to the types defined in this package.
type Record[T any] interface {
	RecordID() int
	stamped(id int) T
}

// Collection is a list of records persisted as a single JSON array file.
// Every call re-reads the file; writes replace it whole. There is no locking,
// so concurrent writers race and the last write wins.
type Collection[T Record[T]] struct {
	path string
}

// NewCollection returns a Collection backed by the JSON file at path.
func NewCollection[T Record[T]](path string) *Collection[T] {
	return &Collection[T]{path: path}
}

// Path returns the backing file path.
func (c *Collection[T]) Path() string {
	return c.path
}

// GetAll returns every record in file order. A missing file is an empty collection.
func (c *Collection[T]) GetAll() ([]T, error) {
	return c.read()
}

// GetByID returns the first record with the given id, or ErrNotFound.
func (c *Collection[T]) GetByID(id int) (T, error) {
	var zero T
	items, err := c.read()
	if err != nil {
		return zero, err
	}
	for _, it := range items {
		if it.RecordID() == id {
			return it, nil
		}
	}
	return zero, ErrNotFound
}

// Create appends v with a freshly assigned id (max existing id + 1) and
// returns the stored record.
func (c *Collection[T]) Create(v T) (T, error) {
	var zero T
	items, err := c.read()
	if err != nil {
		return zero, err
	}
	created := v.stamped(nextID(items))
	items = append(items, created)
	if err := c.write(items); err != nil {
		return zero, err
	}
	return created, nil
}

// Update replaces the record with the given id by v and returns the stored record.
func (c *Collection[T]) Update(id int, v T) (T, error) {
	var zero T
	items, err := c.read()
	if err != nil {
		return zero, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return zero, ErrNotFound
	}
	items[idx] = v.stamped(id)
	if err := c.write(items); err != nil {
		return zero, err
	}
	return items[idx], nil
}

// Delete removes the record with the given id and returns it.
func (c *Collection[T]) Delete(id int) (T, error) {
	var zero T
	items, err := c.read()
	if err != nil {
		return zero, err
	}
	idx := indexOf(items, id)
	if idx < 0 {
		return zero, ErrNotFound
	}
	deleted := items[idx]
	items = append(items[:idx], items[idx+1:]...)
	if err := c.write(items); err != nil {
		return zero, err
	}
	return deleted, nil
}

func (c *Collection[T]) read() ([]T, error) {
	data, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", c.path, err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return []T{}, nil
	}

	// A file holding a single object is treated as a one-element list.
	if data[0] == '{' {
		var one T
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", c.path, err)
		}
		return []T{one}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", c.path, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

func (c *Collection[T]) write(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.path, err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", c.path, err)
	}
	return nil
}

func nextID[T Record[T]](items []T) int {
	maxID := 0
	for _, it := range items {
		if it.RecordID() > maxID {
			maxID = it.RecordID()
		}
	}
	return maxID + 1
}

func indexOf[T Record[T]](items []T, id int) int {
	for i, it := range items {
		if it.RecordID() == id {
			return i
		}
	}
	return -1
}
