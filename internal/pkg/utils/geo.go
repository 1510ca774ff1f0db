package utils

import (
	"github.com/golang/geo/s2"

	"github.com/postcode-finder/internal/domain"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates in kilometres.
func DistanceKm(a, b domain.Coordinate) float64 {
	from := s2.LatLngFromDegrees(a.Latitude, a.Longitude)
	to := s2.LatLngFromDegrees(b.Latitude, b.Longitude)
	return from.Distance(to).Radians() * earthRadiusKm
}

// ValidateCoordinates checks latitude and longitude ranges
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// NearestSample returns the sample closest to point and its distance in kilometres.
func NearestSample(point domain.Coordinate, samples []domain.SampleLocation) (domain.SampleLocation, float64, bool) {
	var (
		best     domain.SampleLocation
		bestDist float64
		found    bool
	)
	for _, s := range samples {
		d := DistanceKm(point, s.Coordinates)
		if !found || d < bestDist {
			best, bestDist, found = s, d, true
		}
	}
	return best, bestDist, found
}
