package metrics

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-manager/internal/domain"
)

func TestSyncMetrics_NotifySync(t *testing.T) {
	reg := prometheus.NewRegistry()

	m, err := NewSyncMetrics(reg)
	require.NoError(t, err)

	finished := time.Unix(1_700_000_000, 0)

	m.NotifySync(context.Background(), domain.SyncSummary{
		Status:     domain.SyncStatusOK,
		FinishedAt: finished,
		Duration:   150 * time.Millisecond,
		Fetched:    10,
		Added:      3,
		Updated:    1,
		Malformed:  2,
		Pushed:     14,
		Conflicts: []domain.ConflictNote{
			{Kind: domain.ConflictOverwritten},
			{Kind: domain.ConflictMalformed},
			{Kind: domain.ConflictMalformed},
		},
	})
	m.NotifySync(context.Background(), domain.SyncSummary{Status: domain.SyncStatusAlreadySyncing})

	assert.InDelta(t, 1, testutil.ToFloat64(m.runs.WithLabelValues("ok")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.runs.WithLabelValues("already_syncing")), 0)
	assert.InDelta(t, 10, testutil.ToFloat64(m.records.WithLabelValues("fetched")), 0)
	assert.InDelta(t, 3, testutil.ToFloat64(m.records.WithLabelValues("added")), 0)
	assert.InDelta(t, 2, testutil.ToFloat64(m.conflicts.WithLabelValues("malformed")), 0)
	assert.InDelta(t, float64(finished.Unix()), testutil.ToFloat64(m.lastOK), 0)
}

func TestSyncMetrics_FailedDoesNotMoveLastSuccess(t *testing.T) {
	reg := prometheus.NewRegistry()

	m, err := NewSyncMetrics(reg)
	require.NoError(t, err)

	m.NotifySync(context.Background(), domain.SyncSummary{
		Status:     domain.SyncStatusFailed,
		FinishedAt: time.Unix(1_700_000_000, 0),
	})

	assert.Zero(t, testutil.ToFloat64(m.lastOK))
	assert.InDelta(t, 1_700_000_000, testutil.ToFloat64(m.lastRun), 0)
}

func TestNewSyncMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()

	_, err := NewSyncMetrics(reg)
	require.NoError(t, err)

	_, err = NewSyncMetrics(reg)
	assert.Error(t, err)
}

func TestRegisterCollectionSize(t *testing.T) {
	reg := prometheus.NewRegistry()
	size := 3

	require.NoError(t, RegisterCollectionSize(reg, func() int { return size }))

	expected := `
# HELP quote_manager_quotes Number of quotes in the local collection.
# TYPE quote_manager_quotes gauge
quote_manager_quotes 3
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "quote_manager_quotes"))
}
