// Package geometry turns raw GeoJSON postcode features into styled render shapes.
package geometry

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/eligibility"
)

// UnknownPostcode is assigned when a feature carries none of the postcode properties.
const UnknownPostcode = "Unknown"

// statePrefix keeps Victorian postcodes only.
const statePrefix = "3"

// minRingPoints - rings with fewer points are not drawable
const minRingPoints = 3

// postcodeKeys in lookup order; the first truthy value wins.
var postcodeKeys = []string{"POA_CODE", "POA_CODE21", "POA_NAME", "POA", "postcode", "poa"}

// NormalizeReport - counters for one normalization run
type NormalizeReport struct {
	Features   int `json:"features"`
	OutOfState int `json:"out_of_state"`
	Skipped    int `json:"skipped"`
	Shapes     int `json:"shapes"`
}

// Normalizer converts FeatureCollections into RenderShapes. It performs no I/O.
type Normalizer struct {
	classifier *eligibility.Classifier
	logger     *zap.Logger
}

// NewNormalizer - create normalizer
func NewNormalizer(classifier *eligibility.Classifier, logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{classifier: classifier, logger: logger}
}

// Normalize returns the render shapes for every in-state feature of fc.
func (n *Normalizer) Normalize(fc *domain.FeatureCollection) []domain.RenderShape {
	shapes, _ := n.NormalizeWithReport(fc)
	return shapes
}

// NormalizeWithReport is Normalize plus counters for skipped and filtered features.
// Malformed features are skipped one by one; they never abort the run.
func (n *Normalizer) NormalizeWithReport(fc *domain.FeatureCollection) ([]domain.RenderShape, NormalizeReport) {
	var report NormalizeReport
	shapes := make([]domain.RenderShape, 0)
	if fc == nil {
		return shapes, report
	}

	for i := range fc.Features {
		feature := &fc.Features[i]
		report.Features++

		postcode := ExtractPostcode(feature.Properties)
		if !strings.HasPrefix(postcode, statePrefix) {
			report.OutOfState++
			continue
		}

		featureShapes, err := n.featureShapes(postcode, feature.Geometry)
		if err != nil {
			report.Skipped++
			n.logger.Warn("Skipping feature",
				zap.Int("index", i),
				zap.String("postcode", postcode),
				zap.Error(err))
			continue
		}
		shapes = append(shapes, featureShapes...)
	}

	// rings are already filtered per geometry type, this keeps the output contract explicit
	drawable := shapes[:0]
	for _, s := range shapes {
		if len(s.Coordinates) >= minRingPoints {
			drawable = append(drawable, s)
		}
	}
	report.Shapes = len(drawable)

	n.logger.Debug("Normalized feature collection",
		zap.Int("features", report.Features),
		zap.Int("out_of_state", report.OutOfState),
		zap.Int("skipped", report.Skipped),
		zap.Int("shapes", report.Shapes))

	return drawable, report
}

func (n *Normalizer) featureShapes(postcode string, geometry *domain.Geometry) ([]domain.RenderShape, error) {
	if geometry == nil {
		return nil, fmt.Errorf("null geometry")
	}

	_, category := n.classifier.Categorize(postcode)
	style := eligibility.Style(category)

	switch geometry.Type {
	case domain.GeometryPolygon:
		var polygon [][][]float64
		if err := json.Unmarshal(geometry.Coordinates, &polygon); err != nil {
			return nil, fmt.Errorf("decode polygon: %w", err)
		}
		if len(polygon) == 0 {
			return nil, fmt.Errorf("polygon has no rings")
		}
		ring, err := toCoordinates(polygon[0])
		if err != nil {
			return nil, err
		}
		if len(ring) < minRingPoints {
			return nil, nil
		}
		return []domain.RenderShape{newShape(postcode, postcode, ring, category, style)}, nil

	case domain.GeometryMultiPolygon:
		var multi [][][][]float64
		if err := json.Unmarshal(geometry.Coordinates, &multi); err != nil {
			return nil, fmt.Errorf("decode multipolygon: %w", err)
		}
		var out []domain.RenderShape
		for i, polygon := range multi {
			for j, positions := range polygon {
				ring, err := toCoordinates(positions)
				if err != nil {
					return nil, err
				}
				if len(ring) < minRingPoints {
					continue
				}
				shape := newShape(fmt.Sprintf("%s-%d-%d", postcode, i, j), postcode, ring, category, style)
				shape.IsMultiPolygonPart = true
				shape.ParentID = postcode
				out = append(out, shape)
			}
		}
		return out, nil
	}

	return nil, fmt.Errorf("unsupported geometry type %q", geometry.Type)
}

func newShape(id, postcode string, ring []domain.Coordinate, category domain.VisaCategory, style domain.ShapeStyle) domain.RenderShape {
	return domain.RenderShape{
		ID:          id,
		Postcode:    postcode,
		Coordinates: ring,
		FillColor:   style.FillColor,
		StrokeColor: style.StrokeColor,
		StrokeWidth: style.StrokeWidth,
		Category:    category,
	}
}

// toCoordinates swaps GeoJSON [lon, lat] positions into map coordinates.
func toCoordinates(positions [][]float64) ([]domain.Coordinate, error) {
	ring := make([]domain.Coordinate, 0, len(positions))
	for k, p := range positions {
		if len(p) < 2 {
			return nil, fmt.Errorf("position %d has %d values", k, len(p))
		}
		ring = append(ring, domain.Coordinate{Latitude: p[1], Longitude: p[0]})
	}
	return ring, nil
}

// ExtractPostcode returns the first truthy postcode property rendered as text,
// or UnknownPostcode when none is present.
func ExtractPostcode(properties map[string]interface{}) string {
	for _, key := range postcodeKeys {
		value, ok := properties[key]
		if !ok || !truthy(value) {
			continue
		}
		return propertyString(value)
	}
	return UnknownPostcode
}

func truthy(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case float64:
		return t != 0 && !math.IsNaN(t)
	case bool:
		return t
	}
	return true
}

// propertyString renders a property value the way JavaScript's String() does:
// arrays join their elements with commas, objects become "[object Object]".
func propertyString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case []interface{}:
		parts := make([]string, len(t))
		for i, elem := range t {
			parts[i] = propertyString(elem)
		}
		return strings.Join(parts, ",")
	case map[string]interface{}:
		return "[object Object]"
	}
	return fmt.Sprint(v)
}
