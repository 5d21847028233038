package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tphakala/birdwatcher/internal/datastore"
	"gorm.io/gorm"
)

// sampleSize is the number of newest rows compared field by field
const sampleSize = 20

// Verifier performs post-copy verification.
type Verifier struct {
	sourceDB *gorm.DB
	targetDB *gorm.DB
	out      io.Writer
}

// NewVerifier creates a new Verifier.
func NewVerifier(sourceDB, targetDB *gorm.DB, out io.Writer) *Verifier {
	return &Verifier{sourceDB: sourceDB, targetDB: targetDB, out: out}
}

// Verify compares counts, then the newest observations field by field.
func (v *Verifier) Verify(ctx context.Context) error {
	if err := v.verifyCounts(ctx); err != nil {
		return fmt.Errorf("count verification failed: %w", err)
	}
	if err := v.verifySamples(ctx, sampleSize); err != nil {
		return fmt.Errorf("sample verification failed: %w", err)
	}
	return nil
}

func (v *Verifier) verifyCounts(ctx context.Context) error {
	var sourceCount, targetCount int64

	if err := v.sourceDB.WithContext(ctx).Model(&datastore.Observation{}).Count(&sourceCount).Error; err != nil {
		return fmt.Errorf("failed to count source: %w", err)
	}
	if err := v.targetDB.WithContext(ctx).Model(&datastore.Observation{}).Count(&targetCount).Error; err != nil {
		return fmt.Errorf("failed to count target: %w", err)
	}

	fmt.Fprintf(v.out, "Observations: source %d, target %d\n", sourceCount, targetCount)

	// The target may hold rows of its own, it must not hold fewer
	if targetCount < sourceCount {
		return fmt.Errorf("target is missing %d observations", sourceCount-targetCount)
	}
	return nil
}

func (v *Verifier) verifySamples(ctx context.Context, count int) error {
	var samples []datastore.Observation
	if err := v.sourceDB.WithContext(ctx).Order("id desc").Limit(count).Find(&samples).Error; err != nil {
		return fmt.Errorf("failed to fetch source samples: %w", err)
	}

	for i := range samples {
		src := &samples[i]
		var dst datastore.Observation
		if err := v.targetDB.WithContext(ctx).First(&dst, src.ID).Error; err != nil {
			return fmt.Errorf("observation ID %d not found in target: %w", src.ID, err)
		}
		if err := compareObservations(src, &dst); err != nil {
			return fmt.Errorf("observation ID %d: %w", src.ID, err)
		}
	}

	fmt.Fprintf(v.out, "  %d samples verified\n", len(samples))
	return nil
}

func compareObservations(src, dst *datastore.Observation) error {
	switch {
	case src.Species != dst.Species:
		return fmt.Errorf("species mismatch (%q vs %q)", src.Species, dst.Species)
	case src.Rarity != dst.Rarity:
		return fmt.Errorf("rarity mismatch (%q vs %q)", src.Rarity, dst.Rarity)
	case src.Timestamp != dst.Timestamp:
		return fmt.Errorf("timestamp mismatch (%q vs %q)", src.Timestamp, dst.Timestamp)
	case src.ObservedAt != dst.ObservedAt:
		return fmt.Errorf("observed_at mismatch (%d vs %d)", src.ObservedAt, dst.ObservedAt)
	case src.Notes != dst.Notes:
		return fmt.Errorf("notes mismatch")
	case !sameCoordinate(src.Latitude, dst.Latitude) || !sameCoordinate(src.Longitude, dst.Longitude):
		return fmt.Errorf("coordinates mismatch")
	}
	return nil
}

func sameCoordinate(a, b *float64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
