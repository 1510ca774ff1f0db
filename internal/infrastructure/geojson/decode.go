// Package geojson provides the sources the postcode boundary dataset is loaded from.
package geojson

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/postcode-finder/internal/domain"
)

// ErrInvalidFormat - the payload is JSON but not a feature collection
var ErrInvalidFormat = errors.New("geojson: missing features array")

// Decode reads one FeatureCollection from r. A document without a features
// array is rejected; individual malformed features are left for the normalizer.
func Decode(r io.Reader) (*domain.FeatureCollection, error) {
	var fc domain.FeatureCollection
	if err := json.NewDecoder(r).Decode(&fc); err != nil {
		return nil, fmt.Errorf("geojson: decode: %w", err)
	}
	if fc.Features == nil {
		return nil, ErrInvalidFormat
	}
	if fc.Type == "" {
		fc.Type = "FeatureCollection"
	}
	return &fc, nil
}

// Postcodes lists the distinct postcode property values of fc in feature order.
func Postcodes(fc *domain.FeatureCollection, extract func(map[string]interface{}) string) []string {
	if fc == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(fc.Features))
	out := make([]string, 0, len(fc.Features))
	for _, f := range fc.Features {
		pc := extract(f.Properties)
		if _, ok := seen[pc]; ok {
			continue
		}
		seen[pc] = struct{}{}
		out = append(out, pc)
	}
	return out
}
