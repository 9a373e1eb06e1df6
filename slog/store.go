package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/scholarmail"
)

var _ scholarmail.Store = (*LoggingStore)(nil)

// LoggingStore wraps a Store with debug logging.
type LoggingStore struct {
	next   scholarmail.Store
	logger *slog.Logger
}

// NewLoggingStore creates a new LoggingStore.
func NewLoggingStore(next scholarmail.Store, logger *slog.Logger) *LoggingStore {
	return &LoggingStore{next: next, logger: logger}
}

func (s *LoggingStore) Select(ctx context.Context, collection string, filter scholarmail.Filter, projection ...string) (recs []scholarmail.Record, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("store select",
			"collection", collection,
			"filter", filter,
			"count", len(recs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Select(ctx, collection, filter, projection...)
}

func (s *LoggingStore) InsertOne(ctx context.Context, collection string, rec scholarmail.Record) (id string, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("store insert",
			"collection", collection,
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.InsertOne(ctx, collection, rec)
}

func (s *LoggingStore) UpdateByFilter(ctx context.Context, collection string, set scholarmail.Record, filter scholarmail.Filter) (n int64, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("store update",
			"collection", collection,
			"filter", filter,
			"fields", len(set),
			"matched", n,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.UpdateByFilter(ctx, collection, set, filter)
}

func (s *LoggingStore) SelectOne(ctx context.Context, collection string, id string) (rec scholarmail.Record, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("store select one",
			"collection", collection,
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SelectOne(ctx, collection, id)
}
