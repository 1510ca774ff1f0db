package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/postcode-finder/internal/domain"
)

func TestDistanceKm(t *testing.T) {
	melbourne := domain.Coordinate{Latitude: -37.8136, Longitude: 144.9631}
	bendigo := domain.Coordinate{Latitude: -36.7570, Longitude: 144.2794}

	assert.InDelta(t, 133.0, DistanceKm(melbourne, bendigo), 5.0)
	assert.InDelta(t, 0.0, DistanceKm(melbourne, melbourne), 1e-9)
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(-37.8, 144.9))
	assert.True(t, ValidateCoordinates(90, 180))
	assert.False(t, ValidateCoordinates(91, 0))
	assert.False(t, ValidateCoordinates(0, -181))
}

func TestNearestSample(t *testing.T) {
	samples := domain.VictoriaSampleLocations()

	nearest, dist, ok := NearestSample(domain.Coordinate{Latitude: -36.76, Longitude: 144.28}, samples)
	require.True(t, ok)
	assert.Equal(t, "Bendigo", nearest.Name)
	assert.Less(t, dist, 1.0)

	_, _, ok = NearestSample(domain.Coordinate{}, nil)
	assert.False(t, ok)
}
