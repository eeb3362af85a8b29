package store

import (
	"context"
	"errors"
)

// Table names one of the three logical collections.
type Table string

const (
	Courses    Table = "courses"
	Students   Table = "students"
	Attendance Table = "attendance_records"
)

// Row is a record as the backend returns it. Rows stay dynamic at this layer;
// typed decoding happens where data enters the roster cache.
type Row map[string]any

// Str returns the named field as a string, or "" when absent or non-string.
func (r Row) Str(key string) string {
	if v, ok := r[key].(string); ok {
		return v
	}
	return ""
}

// ErrNotFound reports an update or delete against an id the backend does not have.
var ErrNotFound = errors.New("store: row not found")

// Client is the four-verb boundary to the hosted store. Identifiers are
// opaque strings assigned by the backend on insert. An empty orderBy leaves
// row order up to the backend.
type Client interface {
	Select(ctx context.Context, table Table, orderBy string) ([]Row, error)
	Insert(ctx context.Context, table Table, row Row) (Row, error)
	Update(ctx context.Context, table Table, id string, patch Row) error
	Delete(ctx context.Context, table Table, id string) error
}
