package prometheus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/scholarmail"
	"github.com/fwojciec/scholarmail/mock"
	"github.com/fwojciec/scholarmail/parse"
	smprom "github.com/fwojciec/scholarmail/prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Extractor(t *testing.T) {
	t.Parallel()

	t.Run("counts calls by outcome and candidates", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		metrics := smprom.NewMetrics(reg)
		fail := false
		inner := &mock.Extractor{
			ExtractFn: func(context.Context, scholarmail.ExtractRequest) ([]scholarmail.Candidate, error) {
				if fail {
					return nil, errors.New("timeout")
				}
				return []scholarmail.Candidate{{Title: "A"}, {Title: "B"}}, nil
			},
		}
		ext := metrics.Extractor(inner)

		_, err := ext.Extract(context.Background(), scholarmail.ExtractRequest{HTML: "x"})
		require.NoError(t, err)
		_, err = ext.Extract(context.Background(), scholarmail.ExtractRequest{HTML: "x"})
		require.NoError(t, err)
		fail = true
		_, err = ext.Extract(context.Background(), scholarmail.ExtractRequest{HTML: "x"})
		require.Error(t, err)

		families, err := reg.Gather()
		require.NoError(t, err)
		byName := map[string]bool{}
		for _, f := range families {
			byName[f.GetName()] = true
		}
		assert.True(t, byName["scholarmail_extractions_total"])
		assert.True(t, byName["scholarmail_extraction_duration_seconds"])
		assert.True(t, byName["scholarmail_candidates_total"])

		assert.Equal(t, 1, testutil.CollectAndCount(reg, "scholarmail_extraction_duration_seconds"))
		assert.Equal(t, 2, testutil.CollectAndCount(reg, "scholarmail_extractions_total"))
	})
}

func TestMetrics_ObserveRun(t *testing.T) {
	t.Parallel()

	t.Run("records run counts and timestamp", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		metrics := smprom.NewMetrics(reg)
		now := time.Date(2025, 2, 10, 8, 30, 0, 0, time.UTC)

		metrics.ObserveRun(&parse.Result{
			Emails:       5,
			Parsed:       3,
			FormatErrors: 1,
			Failed:       1,
			Stored:       7,
			StoreFailed:  2,
			MarkFailed:   1,
		}, now)

		assert.Equal(t, 3, testutil.CollectAndCount(reg, "scholarmail_emails_total"))
		assert.Equal(t, 1, testutil.CollectAndCount(reg, "scholarmail_search_results_stored_total"))

		families, err := reg.Gather()
		require.NoError(t, err)
		values := map[string]float64{}
		for _, f := range families {
			for _, m := range f.GetMetric() {
				name := f.GetName()
				for _, l := range m.GetLabel() {
					name += "/" + l.GetValue()
				}
				switch {
				case m.GetCounter() != nil:
					values[name] = m.GetCounter().GetValue()
				case m.GetGauge() != nil:
					values[name] = m.GetGauge().GetValue()
				}
			}
		}
		assert.InDelta(t, 3, values["scholarmail_emails_total/parsed"], 0)
		assert.InDelta(t, 1, values["scholarmail_emails_total/format_error"], 0)
		assert.InDelta(t, 1, values["scholarmail_emails_total/failed"], 0)
		assert.InDelta(t, 7, values["scholarmail_search_results_stored_total"], 0)
		assert.InDelta(t, 2, values["scholarmail_search_results_failed_total"], 0)
		assert.InDelta(t, 1, values["scholarmail_email_mark_failures_total"], 0)
		assert.InDelta(t, float64(now.Unix()), values["scholarmail_last_run_timestamp_seconds"], 0)
	})

	t.Run("ignores nil result", func(t *testing.T) {
		t.Parallel()

		reg := prometheus.NewRegistry()
		metrics := smprom.NewMetrics(reg)

		metrics.ObserveRun(nil, time.Now())

		assert.Equal(t, 0, testutil.CollectAndCount(reg, "scholarmail_emails_total"))
	})
}
