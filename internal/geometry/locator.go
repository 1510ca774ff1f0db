package geometry

import (
	"github.com/golang/geo/s2"

	"github.com/postcode-finder/internal/domain"
)

type indexedLoop struct {
	loop  *s2.Loop
	shape int
}

// Locator answers which shape contains a point. Built once per dataset, read-only afterwards.
type Locator struct {
	shapes []domain.RenderShape
	loops  []indexedLoop
}

// NewLocator builds spherical loops for every shape. Rings that do not form
// a valid loop (fewer than three distinct vertices) are left out.
func NewLocator(shapes []domain.RenderShape) *Locator {
	l := &Locator{shapes: shapes, loops: make([]indexedLoop, 0, len(shapes))}
	for i := range shapes {
		loop := buildLoop(shapes[i].Coordinates)
		if loop == nil {
			continue
		}
		l.loops = append(l.loops, indexedLoop{loop: loop, shape: i})
	}
	return l
}

// Len returns the number of indexed rings.
func (l *Locator) Len() int {
	return len(l.loops)
}

// Locate returns the first shape (in dataset order) whose ring contains the point.
func (l *Locator) Locate(lat, lon float64) (domain.RenderShape, bool) {
	point := s2.PointFromLatLng(s2.LatLngFromDegrees(lat, lon))
	for _, il := range l.loops {
		if !il.loop.RectBound().ContainsPoint(point) {
			continue
		}
		if il.loop.ContainsPoint(point) {
			return l.shapes[il.shape], true
		}
	}
	return domain.RenderShape{}, false
}

func buildLoop(ring []domain.Coordinate) *s2.Loop {
	points := make([]s2.Point, 0, len(ring))
	for _, c := range ring {
		p := s2.PointFromLatLng(s2.LatLngFromDegrees(c.Latitude, c.Longitude))
		if n := len(points); n > 0 && points[n-1] == p {
			continue
		}
		points = append(points, p)
	}
	// GeoJSON rings repeat the first vertex at the end
	if n := len(points); n > 1 && points[0] == points[n-1] {
		points = points[:n-1]
	}
	if len(points) < 3 {
		return nil
	}

	loop := s2.LoopFromPoints(points)
	// ring orientation varies between sources; keep the smaller side as interior
	loop.Normalize()
	return loop
}
