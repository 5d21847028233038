package observation

import (
	"strings"

	"github.com/tphakala/birdwatcher/internal/datastore"
	"github.com/tphakala/birdwatcher/internal/errors"
)

// Rarity is the rarity label picked for an observation
type Rarity = datastore.Rarity

// Rarities lists the selectable labels in severity order
var Rarities = []Rarity{
	datastore.RarityCommon,
	datastore.RarityRare,
	datastore.RarityExtremelyRare,
}

// ParseRarity maps user input to a Rarity. Matching ignores case and
// accepts hyphens or underscores for spaces; empty input means unset.
func ParseRarity(s string) (Rarity, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer("-", " ", "_", " ").Replace(normalized)

	if normalized == "" {
		return datastore.RarityUnset, nil
	}

	for _, r := range Rarities {
		if strings.ToLower(string(r)) == normalized {
			return r, nil
		}
	}

	return datastore.RarityUnset, errors.Newf("unknown rarity %q, expected one of: common, rare, extremely rare", s).
		Component("observation").
		Category(errors.CategoryValidation).
		Context("input", s).
		Build()
}

// rarityRank orders rarities by severity; unset sorts after all others
func rarityRank(r Rarity) int {
	switch r {
	case datastore.RarityCommon:
		return 0
	case datastore.RarityRare:
		return 1
	case datastore.RarityExtremelyRare:
		return 2
	default:
		return 3
	}
}
