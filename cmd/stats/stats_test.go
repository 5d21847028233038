package stats

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/birdwatcher/internal/datastore"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	lat, lng := 60.1699, 24.9384
	view := []datastore.Observation{
		{ID: 1, Species: "Robin", Rarity: datastore.RarityCommon},
		{ID: 2, Species: "Robin", Rarity: datastore.RarityCommon, Latitude: &lat, Longitude: &lng},
		{ID: 3, Species: "Osprey", Rarity: datastore.RarityRare},
		{ID: 4, Species: "Wren"},
	}

	s := summarize(view)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Located)
	assert.Equal(t, 2, s.ByRarity[datastore.RarityCommon])
	assert.Equal(t, 1, s.ByRarity[datastore.RarityUnset])
	assert.Equal(t, 2, s.BySpecies["Robin"])

	var buf bytes.Buffer
	writeSummary(&buf, s)
	out := buf.String()
	assert.Contains(t, out, "Observations: 4 (1 with location)")
	assert.Contains(t, out, "Unset")
	assert.NotContains(t, out, "Extremely rare")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Robin")), bytes.Index(buf.Bytes(), []byte("Osprey")), "most observed first")
	assert.Less(t, bytes.Index(buf.Bytes(), []byte("Osprey")), bytes.Index(buf.Bytes(), []byte("Wren")), "ties by name")
}

func TestSummaryEmpty(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	writeSummary(&buf, summarize(nil))
	assert.Equal(t, "Observations: 0 (0 with location)\n", buf.String())
}
