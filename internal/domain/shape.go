package domain

import "time"

// Coordinate - point on the map
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// RenderShape - one drawable ring produced from a GeoJSON feature
type RenderShape struct {
	ID                 string       `json:"id"`
	Postcode           string       `json:"postcode"`
	Coordinates        []Coordinate `json:"coordinates"`
	FillColor          string       `json:"fill_color"`
	StrokeColor        string       `json:"stroke_color"`
	StrokeWidth        int          `json:"stroke_width"`
	Category           VisaCategory `json:"category"`
	IsMultiPolygonPart bool         `json:"is_multi_polygon_part"`
	ParentID           string       `json:"parent_id,omitempty"`
}

// Centroid returns the arithmetic mean of the ring vertices.
// An empty ring yields the zero coordinate.
func (s RenderShape) Centroid() Coordinate {
	if len(s.Coordinates) == 0 {
		return Coordinate{}
	}
	var lat, lon float64
	for _, c := range s.Coordinates {
		lat += c.Latitude
		lon += c.Longitude
	}
	n := float64(len(s.Coordinates))
	return Coordinate{Latitude: lat / n, Longitude: lon / n}
}

// Style returns the colors the shape carries.
func (s RenderShape) Style() ShapeStyle {
	return ShapeStyle{FillColor: s.FillColor, StrokeColor: s.StrokeColor, StrokeWidth: s.StrokeWidth}
}

// Dataset - the full shape list from one load; replaced as a whole on reload
type Dataset struct {
	Shapes          []RenderShape `json:"-"`
	Source          string        `json:"source"`
	LoadedAt        time.Time     `json:"loaded_at"`
	Features        int           `json:"features"`
	OutOfState      int           `json:"out_of_state"`
	SkippedFeatures int           `json:"skipped_features"`
	ShapeCount      int           `json:"shape_count"`
}

// ShapeByID returns the first shape with the given id.
func (d *Dataset) ShapeByID(id string) (RenderShape, bool) {
	if d == nil {
		return RenderShape{}, false
	}
	for _, s := range d.Shapes {
		if s.ID == id {
			return s, true
		}
	}
	return RenderShape{}, false
}
