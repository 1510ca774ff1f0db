package repository

import (
	"context"

	"github.com/postcode-finder/internal/domain"
)

// ReverseGeocoder resolves a coordinate to an address.
type ReverseGeocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (*domain.Address, error)
}
