package geometry

import (
	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/eligibility"
)

// filterStyles - colors applied to shapes while a single-visa filter is active
var filterStyles = map[domain.VisaFilter]domain.ShapeStyle{
	domain.FilterWHV417Regional: domain.StyleWHV417Regional,
	domain.FilterWHV417Remote:   domain.StyleWHV417Remote,
	domain.FilterVisa491:        domain.StyleVisa491Filter,
}

// FilterShapes keeps the shapes whose postcode belongs to the rule set behind filter
// and recolors them in that rule set's colors. FilterAll returns shapes unchanged.
// The input slice is not modified.
func FilterShapes(classifier *eligibility.Classifier, shapes []domain.RenderShape, filter domain.VisaFilter) []domain.RenderShape {
	if filter == domain.FilterAll || filter == "" {
		return shapes
	}

	style, ok := filterStyles[filter]
	if !ok {
		return []domain.RenderShape{}
	}

	out := make([]domain.RenderShape, 0, len(shapes))
	for _, s := range shapes {
		if !classifier.FilterMatches(filter, s.Postcode) {
			continue
		}
		s.FillColor = style.FillColor
		s.StrokeColor = style.StrokeColor
		s.StrokeWidth = style.StrokeWidth
		out = append(out, s)
	}
	return out
}
