package remove

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/birdwatcher/internal/datastore"
)

func TestConfirm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yes", true},
	}

	for _, tt := range tests {
		out := &bytes.Buffer{}
		assert.Equal(t, tt.want, confirm(strings.NewReader(tt.input), out, "Delete? "), "input %q", tt.input)
		assert.True(t, strings.HasPrefix(out.String(), "Delete? "))
	}
}

func TestFindObservation(t *testing.T) {
	t.Parallel()

	view := []datastore.Observation{{ID: 3, Species: "C"}, {ID: 1, Species: "A"}}

	obs, found := findObservation(view, 1)
	assert.True(t, found)
	assert.Equal(t, "A", obs.Species)

	_, found = findObservation(view, 2)
	assert.False(t, found)
}
