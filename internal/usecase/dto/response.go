package dto

import (
	"time"

	"github.com/google/uuid"

	"github.com/postcode-finder/internal/domain"
)

// EligibilityResponse - classification of one postcode
type EligibilityResponse struct {
	Postcode      string                  `json:"postcode"`
	Eligibility   domain.EligibilityFlags `json:"eligibility"`
	Category      domain.VisaCategory     `json:"category"`
	Style         domain.ShapeStyle       `json:"style"`
	Message       string                  `json:"message"`
	EligibleVisas []string                `json:"eligible_visas"`
}

// ShapeEligibilityResponse - answer for a clicked shape
type ShapeEligibilityResponse struct {
	ShapeID  string `json:"shape_id"`
	ParentID string `json:"parent_id,omitempty"`
	EligibilityResponse
}

// RuleSetResponse - contents of one rule table
type RuleSetResponse struct {
	Key     domain.VisaFilter      `json:"key"`
	Name    string                 `json:"name"`
	Singles []int                  `json:"singles"`
	Ranges  []domain.PostcodeRange `json:"ranges"`
	Summary string                 `json:"summary"`
}

// SampleResponse - sample marker with its visa description
type SampleResponse struct {
	domain.SampleLocation
	EligibleVisas []string `json:"eligible_visas"`
	Description   string   `json:"description"`
}

// NearestSample - closest sample marker to a located point
type NearestSample struct {
	Name       string  `json:"name"`
	Postcode   string  `json:"postcode"`
	DistanceKm float64 `json:"distance_km"`
}

// LocateSource tells how the postcode of a position was found
type LocateSource string

const (
	LocateSourceShape    LocateSource = "shape"
	LocateSourceGeocoder LocateSource = "geocoder"
	LocateSourceDefault  LocateSource = "default"
)

// LocateResponse - postcode and eligibility at the user's position
type LocateResponse struct {
	Coordinates   domain.Coordinate   `json:"coordinates"`
	Postcode      string              `json:"postcode"`
	Label         string              `json:"label"`
	Source        LocateSource        `json:"source"`
	ShapeID       string              `json:"shape_id,omitempty"`
	Eligible      bool                `json:"eligible"`
	Eligibility   EligibilityResponse `json:"details"`
	NearestSample *NearestSample      `json:"nearest_sample,omitempty"`
}

// DatasetResponse - status of the active dataset
type DatasetResponse struct {
	Loaded bool `json:"loaded"`
	*domain.Dataset
}

// ReloadResponse - outcome of a reload request
type ReloadResponse struct {
	RequestID uuid.UUID       `json:"request_id"`
	Queued    bool            `json:"queued"`
	Dataset   *domain.Dataset `json:"dataset,omitempty"`
}

// HealthResponse - dependency status
type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services"`
	Time     time.Time         `json:"time"`
}
