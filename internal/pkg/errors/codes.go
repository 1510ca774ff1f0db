package errors

import "net/http"

var (
	ErrEmptyQuery = New(
		"EMPTY_QUERY",
		"Please enter a postcode",
		http.StatusBadRequest,
	)

	ErrDatasetNotLoaded = New(
		"DATASET_NOT_LOADED",
		"Postcode boundaries are still loading",
		http.StatusServiceUnavailable,
	)

	ErrShapeNotFound = New(
		"SHAPE_NOT_FOUND",
		"Shape not found",
		http.StatusNotFound,
	)

	ErrInvalidPostcode = New(
		"INVALID_POSTCODE",
		"Postcode must be a number",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidFilter = New(
		"INVALID_FILTER",
		"Unknown visa filter",
		http.StatusBadRequest,
	)

	ErrGeocoderError = New(
		"GEOCODER_ERROR",
		"Could not determine postcode for this location",
		http.StatusBadGateway,
	)

	ErrDatasetSourceError = New(
		"DATASET_SOURCE_ERROR",
		"Failed to load postcode boundaries",
		http.StatusBadGateway,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
