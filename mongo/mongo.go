// Package mongo provides the MongoDB implementation of scholarmail.Store.
// Collections map one-to-one onto MongoDB collections; references between
// documents are stored as ObjectIDs and surfaced as scholarmail.Ref.
package mongo

import (
	"context"
	"time"

	"github.com/fwojciec/scholarmail"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// DefaultConnectTimeout bounds Open when the caller's context has no deadline.
const DefaultConnectTimeout = 10 * time.Second

// DB represents a MongoDB database connection.
type DB struct {
	client *mongo.Client
	db     *mongo.Database

	URI      string
	Database string
}

// NewDB creates a new DB for the given connection URI and database name.
func NewDB(uri, database string) *DB {
	return &DB{URI: uri, Database: database}
}

// Open connects to the server and verifies the connection.
func (db *DB) Open(ctx context.Context) error {
	if db.URI == "" {
		return scholarmail.Errorf(scholarmail.EINVALID, "mongo URI required")
	}
	if db.Database == "" {
		return scholarmail.Errorf(scholarmail.EINVALID, "mongo database name required")
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultConnectTimeout)
		defer cancel()
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(db.URI))
	if err != nil {
		return scholarmail.Errorf(scholarmail.ESTORAGE, "connect to mongo: %v", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return scholarmail.Errorf(scholarmail.ESTORAGE, "ping mongo: %v", err)
	}

	db.client = client
	db.db = client.Database(db.Database)
	return nil
}

// Close disconnects from the server.
func (db *DB) Close(ctx context.Context) error {
	if db.client == nil {
		return nil
	}
	return db.client.Disconnect(ctx)
}

// Collection returns a handle to the named collection.
func (db *DB) Collection(name string) *mongo.Collection {
	return db.db.Collection(name)
}
