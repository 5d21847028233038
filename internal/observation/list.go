package observation

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/tphakala/birdwatcher/internal/datastore"
	"github.com/tphakala/birdwatcher/internal/errors"
)

// SortKey selects the ordering of a list view
type SortKey string

const (
	// SortByRecency orders newest first (highest ID first)
	SortByRecency SortKey = "recency"
	// SortBySpecies orders by species name, byte-wise ascending
	SortBySpecies SortKey = "species"
	// SortByRarity orders Common, Rare, Extremely rare, then unset
	SortByRarity SortKey = "rarity"
)

// SortKeys lists the accepted sort keys
var SortKeys = []SortKey{SortByRecency, SortBySpecies, SortByRarity}

// ParseSortKey maps user input to a SortKey; empty input means recency
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(strings.ToLower(strings.TrimSpace(s)))
	if key == "" {
		return SortByRecency, nil
	}
	if slices.Contains(SortKeys, key) {
		return key, nil
	}
	return "", errors.Newf("unknown sort key %q, expected recency, species or rarity", s).
		Component("observation").
		Category(errors.CategoryValidation).
		Build()
}

// Selector is the part of the store the list reads from
type Selector interface {
	SelectAll(ctx context.Context) ([]datastore.Observation, error)
}

// List caches a full snapshot of the observation table.
// The snapshot is replaced whole on Refresh and never mutated in place.
type List struct {
	mu    sync.RWMutex
	store Selector
	items []datastore.Observation
}

// NewList creates an empty list backed by store
func NewList(store Selector) *List {
	return &List{store: store}
}

// Refresh re-reads every row and replaces the cache. On error the
// previous snapshot stays in place.
func (l *List) Refresh(ctx context.Context) error {
	items, err := l.store.SelectAll(ctx)
	if err != nil {
		return err
	}

	l.mu.Lock()
	l.items = items
	l.mu.Unlock()
	return nil
}

// Len returns the number of cached observations
func (l *List) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// SortedBy returns a sorted copy of the cache. Ties are broken by ID,
// newest first. An unknown key falls back to recency.
func (l *List) SortedBy(key SortKey) []datastore.Observation {
	l.mu.RLock()
	view := slices.Clone(l.items)
	l.mu.RUnlock()

	byRecency := func(a, b datastore.Observation) int {
		return cmp.Compare(b.ID, a.ID)
	}

	switch key {
	case SortBySpecies:
		slices.SortStableFunc(view, func(a, b datastore.Observation) int {
			return cmp.Or(strings.Compare(a.Species, b.Species), byRecency(a, b))
		})
	case SortByRarity:
		slices.SortStableFunc(view, func(a, b datastore.Observation) int {
			return cmp.Or(cmp.Compare(rarityRank(a.Rarity), rarityRank(b.Rarity)), byRecency(a, b))
		})
	default:
		slices.SortStableFunc(view, byRecency)
	}

	return view
}
