// Package export writes the field log as CSV, JSON or YAML.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/tphakala/birdwatcher/internal/datastore"
	"github.com/tphakala/birdwatcher/internal/errors"
	"gopkg.in/yaml.v3"
)

// Format is an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// csvHeader is the column order of CSV exports
var csvHeader = []string{"id", "species", "rarity", "timestamp", "observed_at", "latitude", "longitude", "notes"}

// ParseFormat maps user input to a Format; "yml" is accepted for YAML
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", errors.Newf("unsupported export format %q, expected csv, json or yaml", s).
			Component("export").
			Category(errors.CategoryValidation).
			Build()
	}
}

// Document is the JSON and YAML export envelope
type Document struct {
	Generated    time.Time               `json:"generated" yaml:"generated"`
	Count        int                     `json:"count" yaml:"count"`
	Observations []datastore.Observation `json:"observations" yaml:"observations"`
}

// Write encodes observations to w in the given format
func Write(w io.Writer, format Format, observations []datastore.Observation, generated time.Time) error {
	var err error
	switch format {
	case FormatCSV:
		err = writeCSV(w, observations)
	case FormatJSON:
		err = writeJSON(w, newDocument(observations, generated))
	case FormatYAML:
		err = writeYAML(w, newDocument(observations, generated))
	default:
		_, err = ParseFormat(string(format))
		return err
	}

	if err != nil {
		return errors.New(err).
			Component("export").
			Category(errors.CategoryExport).
			Context("format", string(format)).
			Context("count", len(observations)).
			Build()
	}
	return nil
}

func newDocument(observations []datastore.Observation, generated time.Time) Document {
	if observations == nil {
		observations = []datastore.Observation{}
	}
	return Document{
		Generated:    generated.UTC().Truncate(time.Second),
		Count:        len(observations),
		Observations: observations,
	}
}

func writeCSV(w io.Writer, observations []datastore.Observation) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range observations {
		obs := &observations[i]
		row := []string{
			strconv.FormatUint(uint64(obs.ID), 10),
			sanitizeCSVField(obs.Species),
			string(obs.Rarity),
			obs.Timestamp,
			strconv.FormatInt(obs.ObservedAt, 10),
			formatCoordinate(obs.Latitude),
			formatCoordinate(obs.Longitude),
			sanitizeCSVField(obs.Notes),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return enc.Close()
}

// formatCoordinate renders a nullable coordinate; missing values are empty
func formatCoordinate(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 6, 64)
}

// sanitizeCSVField neutralizes spreadsheet formula injection in free text
func sanitizeCSVField(field string) string {
	if field == "" {
		return field
	}
	if strings.HasPrefix(field, "=") || strings.HasPrefix(field, "+") ||
		strings.HasPrefix(field, "-") || strings.HasPrefix(field, "@") {
		return "'" + field
	}
	return field
}
