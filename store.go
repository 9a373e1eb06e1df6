package scholarmail

import (
	"context"
	"fmt"
	"strings"
)

// Collection names used by the pipeline.
const (
	EmailCollection        = "emails"
	SearchResultCollection = "search_results"
)

// IDField is the reserved field holding a document's identifier.
const IDField = "_id"

// Ref is a reference to a document in another collection by its ID.
// Stores with a native identifier type (e.g. MongoDB ObjectIDs) convert
// it on write and back on read; other stores keep it as a string.
type Ref string

// Record is a single stored document. Nested documents are represented as
// map[string]any (or Record) values.
type Record map[string]any

// Filter selects documents by equality on dotted field paths.
// A nil value matches documents where the field is null or absent.
type Filter map[string]any

// ID returns the record identifier, or an empty string if it has none.
func (r Record) ID() string {
	return r.String(IDField)
}

// Lookup returns the value stored at a dotted path such as "body.text_html".
func (r Record) Lookup(path string) (any, bool) {
	var cur any = map[string]any(r)
	for _, key := range strings.Split(path, ".") {
		m, ok := asMap(cur)
		if !ok {
			return nil, false
		}
		cur, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// String returns the value at path as a string. Missing and null values
// yield an empty string.
func (r Record) String(path string) string {
	v, ok := r.Lookup(path)
	if !ok || v == nil {
		return ""
	}
	switch v := v.(type) {
	case string:
		return v
	case Ref:
		return string(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// Bool returns the value at path as a bool. Non-boolean values yield false.
func (r Record) Bool(path string) bool {
	v, _ := r.Lookup(path)
	b, _ := v.(bool)
	return b
}

// Has reports whether a value (possibly null) is stored at path.
func (r Record) Has(path string) bool {
	_, ok := r.Lookup(path)
	return ok
}

// Set stores value at a dotted path, creating intermediate documents.
func (r Record) Set(path string, value any) {
	keys := strings.Split(path, ".")
	cur := map[string]any(r)
	for _, key := range keys[:len(keys)-1] {
		next, ok := asMap(cur[key])
		if !ok {
			next = map[string]any{}
			cur[key] = next
		}
		cur = next
	}
	cur[keys[len(keys)-1]] = value
}

// Project returns a copy of r holding only the ID and the given paths.
// Paths absent from r are omitted from the result.
func (r Record) Project(paths ...string) Record {
	out := Record{}
	if id, ok := r[IDField]; ok {
		out[IDField] = id
	}
	for _, path := range paths {
		if v, ok := r.Lookup(path); ok {
			out.Set(path, v)
		}
	}
	return out
}

func asMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case Record:
		return m, true
	}
	return nil, false
}

// Store is a generic document-collection accessor.
type Store interface {
	// Select returns the documents of collection matching filter. When
	// projection paths are given, only those fields (and the ID) are returned.
	Select(ctx context.Context, collection string, filter Filter, projection ...string) ([]Record, error)

	// InsertOne stores a new document and returns its generated ID.
	// It never overwrites an existing document.
	InsertOne(ctx context.Context, collection string, rec Record) (string, error)

	// UpdateByFilter sets the given fields on every document matching filter
	// and returns the number of documents matched. Callers narrow the filter
	// when a single document is intended.
	UpdateByFilter(ctx context.Context, collection string, set Record, filter Filter) (int64, error)

	// SelectOne retrieves a document by ID.
	// Returns ENOTFOUND if the document does not exist.
	SelectOne(ctx context.Context, collection string, id string) (Record, error)
}
