package mock

import (
	"context"

	"github.com/fwojciec/scholarmail"
)

var _ scholarmail.Store = (*Store)(nil)

// Store is a mock implementation of scholarmail.Store.
type Store struct {
	SelectFn         func(ctx context.Context, collection string, filter scholarmail.Filter, projection ...string) ([]scholarmail.Record, error)
	InsertOneFn      func(ctx context.Context, collection string, rec scholarmail.Record) (string, error)
	UpdateByFilterFn func(ctx context.Context, collection string, set scholarmail.Record, filter scholarmail.Filter) (int64, error)
	SelectOneFn      func(ctx context.Context, collection string, id string) (scholarmail.Record, error)
}

func (s *Store) Select(ctx context.Context, collection string, filter scholarmail.Filter, projection ...string) ([]scholarmail.Record, error) {
	return s.SelectFn(ctx, collection, filter, projection...)
}

func (s *Store) InsertOne(ctx context.Context, collection string, rec scholarmail.Record) (string, error) {
	return s.InsertOneFn(ctx, collection, rec)
}

func (s *Store) UpdateByFilter(ctx context.Context, collection string, set scholarmail.Record, filter scholarmail.Filter) (int64, error) {
	return s.UpdateByFilterFn(ctx, collection, set, filter)
}

func (s *Store) SelectOne(ctx context.Context, collection string, id string) (scholarmail.Record, error) {
	return s.SelectOneFn(ctx, collection, id)
}
