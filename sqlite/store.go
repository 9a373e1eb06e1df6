package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/scholarmail"
	"github.com/google/uuid"
	"github.com/ncruces/go-sqlite3"
)

// Compile-time interface verification.
var _ scholarmail.Store = (*Store)(nil)

// Store implements scholarmail.Store using SQLite.
type Store struct {
	db *DB
}

// NewStore creates a new Store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Select returns the documents of collection matching filter in insertion order.
func (s *Store) Select(ctx context.Context, collection string, filter scholarmail.Filter, projection ...string) ([]scholarmail.Record, error) {
	if collection == "" {
		return nil, scholarmail.Errorf(scholarmail.EINVALID, "collection required")
	}
	for _, field := range projection {
		if field == scholarmail.IDField {
			continue
		}
		if _, err := jsonPath(field); err != nil {
			return nil, err
		}
	}

	var query strings.Builder
	args := []any{collection}
	query.WriteString("SELECT id, doc FROM documents WHERE collection = ?")
	if err := appendFilter(&query, &args, filter); err != nil {
		return nil, err
	}
	query.WriteString(" ORDER BY rowid ASC")

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []scholarmail.Record
	for rows.Next() {
		var id, doc string
		if err := rows.Scan(&id, &doc); err != nil {
			return nil, err
		}
		rec, err := decodeRecord(id, doc)
		if err != nil {
			return nil, err
		}
		if len(projection) > 0 {
			rec = rec.Project(projection...)
		}
		recs = append(recs, rec)
	}

	return recs, rows.Err()
}

// InsertOne stores a new document. A caller-supplied _id is kept; inserting
// an existing ID returns ECONFLICT instead of overwriting.
func (s *Store) InsertOne(ctx context.Context, collection string, rec scholarmail.Record) (string, error) {
	if collection == "" {
		return "", scholarmail.Errorf(scholarmail.EINVALID, "collection required")
	}

	id := uuid.New().String()
	if v, ok := rec[scholarmail.IDField]; ok && v != nil {
		id = idString(v)
	}

	doc, err := encodeRecord(rec)
	if err != nil {
		return "", err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, doc, created_at)
		VALUES (?, ?, ?, ?)
	`, collection, id, doc, time.Now().UTC().Format(time.RFC3339))
	if errors.Is(err, sqlite3.CONSTRAINT) {
		return "", scholarmail.Errorf(scholarmail.ECONFLICT, "document %q already exists in %s", id, collection)
	}
	if err != nil {
		return "", err
	}

	return id, nil
}

// UpdateByFilter sets fields on every matching document in one transaction.
func (s *Store) UpdateByFilter(ctx context.Context, collection string, set scholarmail.Record, filter scholarmail.Filter) (int64, error) {
	if collection == "" {
		return 0, scholarmail.Errorf(scholarmail.EINVALID, "collection required")
	}
	if _, ok := set[scholarmail.IDField]; ok {
		return 0, scholarmail.Errorf(scholarmail.EINVALID, "cannot update %s", scholarmail.IDField)
	}

	fields := make([]string, 0, len(set))
	for field := range set {
		if _, err := jsonPath(field); err != nil {
			return 0, err
		}
		fields = append(fields, field)
	}
	slices.Sort(fields)

	var query strings.Builder
	args := []any{collection}
	query.WriteString("SELECT id, doc FROM documents WHERE collection = ?")
	if err := appendFilter(&query, &args, filter); err != nil {
		return 0, err
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	type row struct{ id, doc string }
	var matched []row
	rows, err := tx.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return 0, err
	}
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.doc); err != nil {
			rows.Close()
			return 0, err
		}
		matched = append(matched, r)
	}
	if err := rows.Close(); err != nil {
		return 0, err
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}

	for _, r := range matched {
		rec, err := decodeRecord(r.id, r.doc)
		if err != nil {
			return 0, err
		}
		for _, field := range fields {
			rec.Set(field, set[field])
		}
		doc, err := encodeRecord(rec)
		if err != nil {
			return 0, err
		}
		if _, err := tx.ExecContext(ctx, "UPDATE documents SET doc = ? WHERE collection = ? AND id = ?", doc, collection, r.id); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int64(len(matched)), nil
}

// SelectOne retrieves a document by ID.
func (s *Store) SelectOne(ctx context.Context, collection string, id string) (scholarmail.Record, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `
		SELECT doc FROM documents
		WHERE collection = ? AND id = ?
	`, collection, id).Scan(&doc)

	if err == sql.ErrNoRows {
		return nil, scholarmail.Errorf(scholarmail.ENOTFOUND, "document %q not found in %s", id, collection)
	}
	if err != nil {
		return nil, err
	}

	return decodeRecord(id, doc)
}

// encodeRecord serializes a record without its ID.
func encodeRecord(rec scholarmail.Record) (string, error) {
	doc := make(map[string]any, len(rec))
	for k, v := range rec {
		if k == scholarmail.IDField {
			continue
		}
		doc[k] = v
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", scholarmail.Errorf(scholarmail.EINVALID, "failed to encode document: %v", err)
	}
	return string(b), nil
}

func decodeRecord(id, doc string) (scholarmail.Record, error) {
	rec := scholarmail.Record{}
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode document %s: %w", id, err)
	}
	rec[scholarmail.IDField] = id
	return rec, nil
}
