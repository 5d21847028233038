package datastore

// Rarity is the stored rarity label of an observation. The empty string
// means the user did not pick one.
type Rarity string

const (
	RarityUnset         Rarity = ""
	RarityCommon        Rarity = "Common"
	RarityRare          Rarity = "Rare"
	RarityExtremelyRare Rarity = "Extremely rare"
)

// Observation represents a single wildlife sighting.
//
// Timestamp is the display string captured at save time ("D.M.YYYY H:MM");
// ObservedAt holds the same instant as unix seconds for sorting by time,
// sun event lookups and exports. Coordinates are nil when no position
// fix was available.
type Observation struct {
	ID         uint     `gorm:"primaryKey;autoIncrement" json:"id" yaml:"id"`
	Species    string   `gorm:"size:255" json:"species" yaml:"species"`
	Notes      string   `gorm:"type:text" json:"notes" yaml:"notes"`
	Rarity     Rarity   `gorm:"size:32" json:"rarity" yaml:"rarity"`
	Timestamp  string   `gorm:"size:32" json:"timestamp" yaml:"timestamp"`
	ObservedAt int64    `gorm:"index" json:"observed_at" yaml:"observed_at"`
	Longitude  *float64 `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Latitude   *float64 `json:"latitude,omitempty" yaml:"latitude,omitempty"`
}

// TableName pins the table name regardless of naming strategy
func (Observation) TableName() string {
	return "observations"
}

// HasLocation reports whether both coordinates were captured
func (o *Observation) HasLocation() bool {
	return o.Longitude != nil && o.Latitude != nil
}
