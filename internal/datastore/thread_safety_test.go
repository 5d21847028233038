package datastore

import (
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/birdwatcher/internal/observability/metrics"
)

// TestConcurrentInsertsAndDeletes checks that serialized writers never
// lose a row or hand out a duplicate ID
func TestConcurrentInsertsAndDeletes(t *testing.T) {
	t.Parallel()

	ds := createDatabase(t)

	const numGoroutines = 8
	const perGoroutine = 10

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		seen  = make(map[uint]bool)
		errCh = make(chan error, numGoroutines*perGoroutine*2)
	)

	for g := range numGoroutines {
		wg.Go(func() {
			for i := range perGoroutine {
				obs := Observation{Species: fmt.Sprintf("bird-%d-%d", g, i)}
				if err := ds.Insert(t.Context(), &obs); err != nil {
					errCh <- err
					continue
				}
				mu.Lock()
				if seen[obs.ID] {
					errCh <- fmt.Errorf("duplicate id %d", obs.ID)
				}
				seen[obs.ID] = true
				mu.Unlock()

				// Every other row is deleted again by its writer
				if i%2 == 0 {
					if err := ds.DeleteByID(t.Context(), obs.ID); err != nil {
						errCh <- err
					}
				}
			}
		})
	}

	wg.Wait()
	close(errCh)
	for err := range errCh {
		require.NoError(t, err)
	}

	rows, err := ds.SelectAll(t.Context())
	require.NoError(t, err)
	assert.Len(t, rows, numGoroutines*perGoroutine/2)
}

// TestSetMetricsThreadSafety tests that metrics field access is thread-safe
func TestSetMetricsThreadSafety(t *testing.T) {
	t.Parallel()

	ds := &DataStore{}
	m, err := metrics.NewDatastoreMetrics(prometheus.NewRegistry())
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 10 {
		wg.Go(func() {
			for range 100 {
				ds.SetMetrics(m)
				_ = ds.getMetrics()
			}
		})
	}
	wg.Wait()

	assert.Same(t, m, ds.getMetrics())

	ds.SetMetrics(nil)
	assert.Nil(t, ds.getMetrics())
}

func TestStoreRecordsMetrics(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m, err := metrics.NewDatastoreMetrics(registry)
	require.NoError(t, err)

	store := createDatabase(t).(*SQLiteStore)
	store.SetMetrics(m)

	require.NoError(t, store.Insert(t.Context(), &Observation{Species: "Wren"}))
	_, err = store.SelectAll(t.Context())
	require.NoError(t, err)

	// The row count gauge is updated on every full read
	assert.Equal(t, 1, testutil.CollectAndCount(m, "datastore_table_row_count"))
}
