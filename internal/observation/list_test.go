package observation

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tphakala/birdwatcher/internal/datastore"
)

// fakeStore is an in-memory Store with switchable failures
type fakeStore struct {
	mu        sync.Mutex
	rows      []datastore.Observation
	nextID    uint
	selectErr error
	insertErr error
	deleteErr error
}

func (f *fakeStore) SelectAll(context.Context) ([]datastore.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	out := make([]datastore.Observation, len(f.rows))
	copy(out, f.rows)
	return out, nil
}

func (f *fakeStore) Insert(_ context.Context, obs *datastore.Observation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.nextID++
	obs.ID = f.nextID
	f.rows = append(f.rows, *obs)
	return nil
}

func (f *fakeStore) DeleteByID(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, row := range f.rows {
		if row.ID == id {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			break
		}
	}
	return nil
}

func (f *fakeStore) setSelectErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectErr = err
}

func seededStore(rows ...datastore.Observation) *fakeStore {
	f := &fakeStore{}
	for i := range rows {
		_ = f.Insert(context.Background(), &rows[i])
	}
	return f
}

func species(view []datastore.Observation) []string {
	names := make([]string, len(view))
	for i, obs := range view {
		names[i] = obs.Species
	}
	return names
}

func TestSortedByRecency(t *testing.T) {
	t.Parallel()

	list := NewList(seededStore(
		datastore.Observation{Species: "A"},
		datastore.Observation{Species: "B"},
		datastore.Observation{Species: "C"},
	))
	require.NoError(t, list.Refresh(t.Context()))

	assert.Equal(t, []string{"C", "B", "A"}, species(list.SortedBy(SortByRecency)))
}

func TestSortedBySpecies(t *testing.T) {
	t.Parallel()

	list := NewList(seededStore(
		datastore.Observation{Species: "Owl"},
		datastore.Observation{Species: "Eagle"},
		datastore.Observation{Species: "eagle"},
		datastore.Observation{Species: "Owl", Notes: "second"},
	))
	require.NoError(t, list.Refresh(t.Context()))

	view := list.SortedBy(SortBySpecies)
	// Byte order puts upper case first; equal names fall back to newest first
	assert.Equal(t, []string{"Eagle", "Owl", "Owl", "eagle"}, species(view))
	assert.Equal(t, "second", view[1].Notes)
}

func TestSortedByRarity(t *testing.T) {
	t.Parallel()

	list := NewList(seededStore(
		datastore.Observation{Species: "unset"},
		datastore.Observation{Species: "extreme", Rarity: datastore.RarityExtremelyRare},
		datastore.Observation{Species: "common-old", Rarity: datastore.RarityCommon},
		datastore.Observation{Species: "rare", Rarity: datastore.RarityRare},
		datastore.Observation{Species: "common-new", Rarity: datastore.RarityCommon},
	))
	require.NoError(t, list.Refresh(t.Context()))

	assert.Equal(t,
		[]string{"common-new", "common-old", "rare", "extreme", "unset"},
		species(list.SortedBy(SortByRarity)))
}

func TestSortedByReturnsCopy(t *testing.T) {
	t.Parallel()

	list := NewList(seededStore(
		datastore.Observation{Species: "Owl"},
		datastore.Observation{Species: "Eagle"},
	))
	require.NoError(t, list.Refresh(t.Context()))

	view := list.SortedBy(SortBySpecies)
	view[0].Species = "mutated"

	assert.Equal(t, []string{"Eagle", "Owl"}, species(list.SortedBy(SortBySpecies)))
	assert.Equal(t, "Owl", list.SortedBy(SortByRecency)[1].Species)
}

func TestSortedByUnknownKeyFallsBackToRecency(t *testing.T) {
	t.Parallel()

	list := NewList(seededStore(
		datastore.Observation{Species: "Eagle"},
		datastore.Observation{Species: "Owl"},
	))
	require.NoError(t, list.Refresh(t.Context()))

	assert.Equal(t, []string{"Owl", "Eagle"}, species(list.SortedBy(SortKey("bogus"))))
}

func TestRefreshFailureKeepsSnapshot(t *testing.T) {
	t.Parallel()

	store := seededStore(datastore.Observation{Species: "Robin"})
	list := NewList(store)
	require.NoError(t, list.Refresh(t.Context()))
	require.Equal(t, 1, list.Len())

	store.setSelectErr(datastore.ErrReadFailed)
	_ = store.Insert(t.Context(), &datastore.Observation{Species: "Wren"})

	err := list.Refresh(t.Context())
	require.ErrorIs(t, err, datastore.ErrReadFailed)
	assert.Equal(t, 1, list.Len())
	assert.Equal(t, []string{"Robin"}, species(list.SortedBy(SortByRecency)))
}

func TestEmptyListView(t *testing.T) {
	t.Parallel()

	list := NewList(&fakeStore{})
	assert.Empty(t, list.SortedBy(SortByRecency))
	require.NoError(t, list.Refresh(t.Context()))
	assert.Zero(t, list.Len())
}

func TestParseSortKey(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]SortKey{
		"":         SortByRecency,
		"recency":  SortByRecency,
		"Species":  SortBySpecies,
		" rarity ": SortByRarity,
	} {
		got, err := ParseSortKey(in)
		require.NoError(t, err, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, err := ParseSortKey("date")
	require.Error(t, err)
}
