package domain

import (
	"time"

	"github.com/google/uuid"
)

// SampleLocation - curated locality used as the first search target
type SampleLocation struct {
	Postcode    string     `json:"postcode"`
	Name        string     `json:"name"`
	Coordinates Coordinate `json:"coordinates"`
	Eligible    bool       `json:"eligible"`
}

// VictoriaSampleLocations returns the curated Victorian localities shown as map markers.
func VictoriaSampleLocations() []SampleLocation {
	return []SampleLocation{
		{Postcode: "3139", Name: "Wandin", Coordinates: Coordinate{Latitude: -37.7768, Longitude: 145.4125}, Eligible: true},
		{Postcode: "3550", Name: "Bendigo", Coordinates: Coordinate{Latitude: -36.7570, Longitude: 144.2794}, Eligible: true},
		{Postcode: "3630", Name: "Shepparton", Coordinates: Coordinate{Latitude: -36.3833, Longitude: 145.4000}, Eligible: true},
		{Postcode: "3825", Name: "Moe", Coordinates: Coordinate{Latitude: -38.1723, Longitude: 146.2680}, Eligible: true},
		{Postcode: "3350", Name: "Ballarat", Coordinates: Coordinate{Latitude: -37.5622, Longitude: 143.8503}, Eligible: true},
		{Postcode: "3690", Name: "Wodonga", Coordinates: Coordinate{Latitude: -36.1214, Longitude: 146.8881}, Eligible: true},
		{Postcode: "3220", Name: "Geelong", Coordinates: Coordinate{Latitude: -38.1499, Longitude: 144.3617}, Eligible: true},
	}
}

// VictoriaCenter - default map center
var VictoriaCenter = Coordinate{Latitude: -37.0202, Longitude: 144.9994}

// SearchKind discriminates SearchResult
type SearchKind string

const (
	SearchKindSample SearchKind = "sample"
	SearchKindShape  SearchKind = "shape"
	SearchKindRaw    SearchKind = "raw"
	SearchKindNone   SearchKind = "none"
)

// NoneReason tells an input error apart from a search that found nothing
type NoneReason string

const (
	NoneReasonEmptyQuery NoneReason = "empty_query"
	NoneReasonNoMatch    NoneReason = "no_match"
)

// SearchResult - outcome of one search. Fields beyond Kind are set per kind:
// sample: Postcode, Name, Eligible, Center; shape: Postcode, Category, Center;
// raw: Postcode and the three flags; none: Reason.
type SearchResult struct {
	Kind        SearchKind   `json:"kind"`
	Postcode    string       `json:"postcode,omitempty"`
	Name        string       `json:"name,omitempty"`
	Eligible    bool         `json:"eligible,omitempty"`
	Category    VisaCategory `json:"category,omitempty"`
	WHVRegional bool         `json:"whv_regional,omitempty"`
	WHVRemote   bool         `json:"whv_remote,omitempty"`
	Visa491     bool         `json:"visa491,omitempty"`
	Center      *Coordinate  `json:"center,omitempty"`
	Reason      NoneReason   `json:"reason,omitempty"`
	Message     string       `json:"message,omitempty"`
}

// RecentSearch - search history entry
type RecentSearch struct {
	ID         uuid.UUID  `json:"id"`
	Query      string     `json:"query"`
	Kind       SearchKind `json:"kind"`
	Postcode   string     `json:"postcode,omitempty"`
	SearchedAt time.Time  `json:"searched_at"`
}

// Address - reverse geocoding result
type Address struct {
	Postcode string `json:"postcode"`
	Suburb   string `json:"suburb,omitempty"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
}

// Label picks the most specific locality name, as shown for the user's position.
func (a Address) Label() string {
	switch {
	case a.Suburb != "":
		return a.Suburb
	case a.City != "":
		return a.City
	default:
		return "Current Location"
	}
}
