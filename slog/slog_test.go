package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/scholarmail"
	"github.com/fwojciec/scholarmail/mock"
	smslog "github.com/fwojciec/scholarmail/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("logs extraction with count and duration", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Extractor{
			ExtractFn: func(context.Context, scholarmail.ExtractRequest) ([]scholarmail.Candidate, error) {
				return []scholarmail.Candidate{{Title: "A"}, {Title: "B"}}, nil
			},
		}

		ext := smslog.NewLoggingExtractor(inner, logger)
		candidates, err := ext.Extract(context.Background(), scholarmail.ExtractRequest{
			HTML:   "<h3>A</h3>",
			Config: scholarmail.ExtractorConfig{Model: "gemma3:27b"},
		})

		require.NoError(t, err)
		assert.Len(t, candidates, 2)
		output := buf.String()
		assert.Contains(t, output, "level=INFO")
		assert.Contains(t, output, "msg=extract")
		assert.Contains(t, output, "model=gemma3:27b")
		assert.Contains(t, output, "bytes=10")
		assert.Contains(t, output, "count=2")
		assert.Contains(t, output, "duration=")
	})

	t.Run("logs error on failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Extractor{
			ExtractFn: func(context.Context, scholarmail.ExtractRequest) ([]scholarmail.Candidate, error) {
				return nil, errors.New("connection refused")
			},
		}

		ext := smslog.NewLoggingExtractor(inner, logger)
		_, err := ext.Extract(context.Background(), scholarmail.ExtractRequest{HTML: "x"})

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "level=ERROR")
		assert.Contains(t, output, "err=\"connection refused\"")
	})
}

func TestLoggingStore(t *testing.T) {
	t.Parallel()

	t.Run("logs insert with generated id", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.Store{
			InsertOneFn: func(context.Context, string, scholarmail.Record) (string, error) {
				return "abc123", nil
			},
		}

		store := smslog.NewLoggingStore(inner, logger)
		id, err := store.InsertOne(context.Background(), scholarmail.SearchResultCollection, scholarmail.Record{})

		require.NoError(t, err)
		assert.Equal(t, "abc123", id)
		output := buf.String()
		assert.Contains(t, output, "store insert")
		assert.Contains(t, output, "collection=search_results")
		assert.Contains(t, output, "id=abc123")
	})

	t.Run("logs select count", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.Store{
			SelectFn: func(context.Context, string, scholarmail.Filter, ...string) ([]scholarmail.Record, error) {
				return []scholarmail.Record{{"_id": "1"}, {"_id": "2"}, {"_id": "3"}}, nil
			},
		}

		store := smslog.NewLoggingStore(inner, logger)
		recs, err := store.Select(context.Background(), scholarmail.EmailCollection, scholarmail.UnprocessedEmailFilter(), scholarmail.IDField)

		require.NoError(t, err)
		assert.Len(t, recs, 3)
		output := buf.String()
		assert.Contains(t, output, "store select")
		assert.Contains(t, output, "collection=emails")
		assert.Contains(t, output, "count=3")
	})

	t.Run("logs update matches and errors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.Store{
			UpdateByFilterFn: func(context.Context, string, scholarmail.Record, scholarmail.Filter) (int64, error) {
				return 0, errors.New("write conflict")
			},
		}

		store := smslog.NewLoggingStore(inner, logger)
		_, err := store.UpdateByFilter(context.Background(), scholarmail.EmailCollection, scholarmail.Record{"is_processed": true}, scholarmail.Filter{"_id": "e1"})

		require.Error(t, err)
		output := buf.String()
		assert.Contains(t, output, "store update")
		assert.Contains(t, output, "matched=0")
		assert.Contains(t, output, "err=\"write conflict\"")
	})

	t.Run("logs select one", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
		inner := &mock.Store{
			SelectOneFn: func(context.Context, string, string) (scholarmail.Record, error) {
				return nil, scholarmail.Errorf(scholarmail.ENOTFOUND, "not found")
			},
		}

		store := smslog.NewLoggingStore(inner, logger)
		_, err := store.SelectOne(context.Background(), scholarmail.SearchResultCollection, "sr1")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "store select one")
		assert.Contains(t, buf.String(), "id=sr1")
	})

	t.Run("is silent above debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.Store{
			SelectOneFn: func(context.Context, string, string) (scholarmail.Record, error) {
				return scholarmail.Record{"_id": "sr1"}, nil
			},
		}

		store := smslog.NewLoggingStore(inner, logger)
		_, err := store.SelectOne(context.Background(), scholarmail.SearchResultCollection, "sr1")

		require.NoError(t, err)
		assert.Empty(t, buf.String())
	})
}

func TestCronLogger(t *testing.T) {
	t.Parallel()

	t.Run("logs scheduler info at debug level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

		smslog.NewCronLogger(logger).Info("wake", "now", "12:00")

		assert.Contains(t, buf.String(), "level=DEBUG")
		assert.Contains(t, buf.String(), "msg=\"cron wake\"")
		assert.Contains(t, buf.String(), "now=12:00")
	})

	t.Run("logs errors with err attribute", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))

		smslog.NewCronLogger(logger).Error(errors.New("boom"), "panic", "stack", "...")

		assert.Contains(t, buf.String(), "level=ERROR")
		assert.Contains(t, buf.String(), "msg=\"cron panic\"")
		assert.Contains(t, buf.String(), "err=boom")
	})
}
