package dto

// ShapesRequest - query for map shapes
type ShapesRequest struct {
	Filter string `query:"filter" validate:"omitempty,visafilter"`
}

// SearchRequest - free-text search; blank queries are answered with EMPTY_QUERY
type SearchRequest struct {
	Query string `query:"q"`
}

// RecentSearchesRequest - recent search history query
type RecentSearchesRequest struct {
	Limit int `query:"limit" validate:"omitempty,min=1,max=50"`
}

// LocateRequest - the user's position
type LocateRequest struct {
	Latitude  *float64 `json:"latitude" validate:"required,min=-90,max=90"`
	Longitude *float64 `json:"longitude" validate:"required,min=-180,max=180"`
}

// ReloadRequest - dataset reload options
type ReloadRequest struct {
	// Force drops cached copies before fetching.
	Force bool `json:"force"`
	// Async publishes a reload event for the workers instead of reloading in the request.
	Async bool `json:"async"`
}
