package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/eligibility"
)

func testShapes() []domain.RenderShape {
	return []domain.RenderShape{
		{
			ID:       "3550",
			Postcode: "3550",
			Category: domain.CategoryBoth,
			Coordinates: []domain.Coordinate{
				{Latitude: -36.0, Longitude: 144.0},
				{Latitude: -36.0, Longitude: 145.0},
				{Latitude: -37.0, Longitude: 145.0},
			},
		},
		{
			ID:       "3000",
			Postcode: "3000",
			Category: domain.CategoryNone,
			Coordinates: []domain.Coordinate{
				{Latitude: -37.0, Longitude: 144.0},
				{Latitude: -37.0, Longitude: 146.0},
				{Latitude: -38.0, Longitude: 146.0},
				{Latitude: -38.0, Longitude: 144.0},
			},
		},
		{
			ID:       "3690-1-0",
			Postcode: "3690",
			Category: domain.CategoryBoth,
			Coordinates: []domain.Coordinate{
				{Latitude: -36.0, Longitude: 146.0},
				{Latitude: -36.0, Longitude: 147.0},
				{Latitude: -36.3, Longitude: 146.5},
			},
			IsMultiPolygonPart: true,
			ParentID:           "3690",
		},
	}
}

func newTestResolver() *Resolver {
	return NewResolver(eligibility.NewClassifier(domain.VictoriaRuleTables()))
}

func TestResolve_SampleBeatsShape(t *testing.T) {
	result := newTestResolver().Resolve("3550", testShapes(), domain.VictoriaSampleLocations())

	assert.Equal(t, domain.SearchKindSample, result.Kind)
	assert.Equal(t, "3550", result.Postcode)
	assert.Equal(t, "Bendigo", result.Name)
	assert.True(t, result.Eligible)
	require.NotNil(t, result.Center)
	assert.Equal(t, -36.7570, result.Center.Latitude)
	assert.Equal(t, 144.2794, result.Center.Longitude)
}

func TestResolve_SampleByName(t *testing.T) {
	r := newTestResolver()

	result := r.Resolve("bal", nil, domain.VictoriaSampleLocations())
	assert.Equal(t, domain.SearchKindSample, result.Kind)
	assert.Equal(t, "Ballarat", result.Name)

	// list order decides between several matches
	result = r.Resolve("o", nil, domain.VictoriaSampleLocations())
	assert.Equal(t, "Bendigo", result.Name)

	result = r.Resolve("GEELONG", nil, domain.VictoriaSampleLocations())
	assert.Equal(t, "3220", result.Postcode)
}

func TestResolve_ShapeCentroid(t *testing.T) {
	result := newTestResolver().Resolve("3000", testShapes(), domain.VictoriaSampleLocations())

	assert.Equal(t, domain.SearchKindShape, result.Kind)
	assert.Equal(t, "3000", result.Postcode)
	assert.Equal(t, domain.CategoryNone, result.Category)
	require.NotNil(t, result.Center)
	assert.InDelta(t, -37.5, result.Center.Latitude, 1e-9)
	assert.InDelta(t, 145.0, result.Center.Longitude, 1e-9)
	assert.Equal(t, "This area is not eligible for any visa extension.", result.Message)
}

func TestResolve_MultiPolygonPartID(t *testing.T) {
	result := newTestResolver().Resolve("3690-1-0", testShapes(), nil)

	assert.Equal(t, domain.SearchKindShape, result.Kind)
	assert.Equal(t, "3690-1-0", result.Postcode)
	assert.Equal(t, "Working Holiday Visa 417 and 491 visa", result.Message)
}

func TestResolve_RawPostcode(t *testing.T) {
	r := newTestResolver()

	result := r.Resolve("9999", testShapes(), domain.VictoriaSampleLocations())
	assert.Equal(t, domain.SearchKindRaw, result.Kind)
	assert.Equal(t, "9999", result.Postcode)
	assert.False(t, result.WHVRegional)
	assert.False(t, result.WHVRemote)
	assert.False(t, result.Visa491)
	assert.Nil(t, result.Center)

	result = r.Resolve("3098", nil, nil)
	assert.Equal(t, domain.SearchKindRaw, result.Kind)
	assert.True(t, result.Visa491)
	assert.False(t, result.WHVRegional)
	assert.Contains(t, result.Message, "491 visa: ✅ Eligible area")
}

func TestResolve_None(t *testing.T) {
	r := newTestResolver()

	tests := []struct {
		name   string
		query  string
		reason domain.NoneReason
	}{
		{"letters", "abc", domain.NoneReasonNoMatch},
		{"five digits", "30000", domain.NoneReasonNoMatch},
		{"padded postcode is not trimmed", " 9999", domain.NoneReasonNoMatch},
		{"empty", "", domain.NoneReasonEmptyQuery},
		{"whitespace", "   \t", domain.NoneReasonEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := r.Resolve(tt.query, testShapes(), domain.VictoriaSampleLocations())
			assert.Equal(t, domain.SearchKindNone, result.Kind)
			assert.Equal(t, tt.reason, result.Reason)
			assert.NotEmpty(t, result.Message)
		})
	}
}
