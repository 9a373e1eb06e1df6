package mongo

import (
	"context"
	"errors"

	"github.com/fwojciec/scholarmail"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Compile-time interface verification.
var _ scholarmail.Store = (*Store)(nil)

// Store implements scholarmail.Store using MongoDB.
type Store struct {
	db *DB
}

// NewStore creates a new Store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Select returns the documents of collection matching filter ordered by ID,
// which follows insertion order for generated ObjectIDs.
func (s *Store) Select(ctx context.Context, collection string, filter scholarmail.Filter, projection ...string) ([]scholarmail.Record, error) {
	if collection == "" {
		return nil, scholarmail.Errorf(scholarmail.EINVALID, "collection required")
	}

	opts := options.Find().SetSort(bson.D{{Key: scholarmail.IDField, Value: 1}})
	if len(projection) > 0 {
		proj := bson.D{}
		for _, field := range projection {
			proj = append(proj, bson.E{Key: field, Value: 1})
		}
		opts.SetProjection(proj)
	}

	cursor, err := s.db.Collection(collection).Find(ctx, ToFilter(filter), opts)
	if err != nil {
		return nil, scholarmail.Errorf(scholarmail.ESTORAGE, "find %s: %v", collection, err)
	}
	var docs []bson.M
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, scholarmail.Errorf(scholarmail.ESTORAGE, "read %s: %v", collection, err)
	}

	recs := make([]scholarmail.Record, 0, len(docs))
	for _, doc := range docs {
		recs = append(recs, FromDocument(doc))
	}
	return recs, nil
}

// InsertOne stores a new document. The server-side ObjectID is returned as
// a hex string unless rec carries its own ID.
func (s *Store) InsertOne(ctx context.Context, collection string, rec scholarmail.Record) (string, error) {
	if collection == "" {
		return "", scholarmail.Errorf(scholarmail.EINVALID, "collection required")
	}

	res, err := s.db.Collection(collection).InsertOne(ctx, ToDocument(rec))
	if mongo.IsDuplicateKeyError(err) {
		return "", scholarmail.Errorf(scholarmail.ECONFLICT, "document %q already exists in %s", rec.ID(), collection)
	} else if err != nil {
		return "", scholarmail.Errorf(scholarmail.ESTORAGE, "insert into %s: %v", collection, err)
	}

	switch id := res.InsertedID.(type) {
	case primitive.ObjectID:
		return id.Hex(), nil
	case string:
		return id, nil
	}
	return "", scholarmail.Errorf(scholarmail.EINTERNAL, "unexpected id type %T", res.InsertedID)
}

// UpdateByFilter sets fields on every matching document and returns the
// number matched.
func (s *Store) UpdateByFilter(ctx context.Context, collection string, set scholarmail.Record, filter scholarmail.Filter) (int64, error) {
	if collection == "" {
		return 0, scholarmail.Errorf(scholarmail.EINVALID, "collection required")
	}
	if len(set) == 0 {
		return 0, scholarmail.Errorf(scholarmail.EINVALID, "no fields to set")
	}
	if _, ok := set[scholarmail.IDField]; ok {
		return 0, scholarmail.Errorf(scholarmail.EINVALID, "document ID cannot be updated")
	}

	res, err := s.db.Collection(collection).UpdateMany(ctx, ToFilter(filter), bson.D{{Key: "$set", Value: ToDocument(set)}})
	if err != nil {
		return 0, scholarmail.Errorf(scholarmail.ESTORAGE, "update %s: %v", collection, err)
	}
	return res.MatchedCount, nil
}

// SelectOne retrieves a document by ID.
func (s *Store) SelectOne(ctx context.Context, collection string, id string) (scholarmail.Record, error) {
	if collection == "" {
		return nil, scholarmail.Errorf(scholarmail.EINVALID, "collection required")
	}

	var doc bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.D{{Key: scholarmail.IDField, Value: toID(id)}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, scholarmail.Errorf(scholarmail.ENOTFOUND, "document %q not found in %s", id, collection)
	} else if err != nil {
		return nil, scholarmail.Errorf(scholarmail.ESTORAGE, "find %s in %s: %v", id, collection, err)
	}
	return FromDocument(doc), nil
}
