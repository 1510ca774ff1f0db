// Package search resolves a free-text query to a map target.
package search

import (
	"regexp"
	"strings"

	"github.com/postcode-finder/internal/domain"
	"github.com/postcode-finder/internal/eligibility"
)

const (
	messageEmptyQuery = "Please enter a postcode"
	messageNoMatch    = "Please try searching with a different postcode."
)

var rawPostcodePattern = regexp.MustCompile(`^\d{4}$`)

// Resolver runs the staged lookup: sample locations, then shape ids, then raw postcodes.
// It holds no state besides the classifier and is safe for concurrent use.
type Resolver struct {
	classifier *eligibility.Classifier
}

// NewResolver - create resolver
func NewResolver(classifier *eligibility.Classifier) *Resolver {
	return &Resolver{classifier: classifier}
}

// Resolve returns exactly one result. The query is matched as given, without trimming;
// only the empty check looks at the trimmed text.
func (r *Resolver) Resolve(query string, shapes []domain.RenderShape, samples []domain.SampleLocation) domain.SearchResult {
	if strings.TrimSpace(query) == "" {
		return domain.SearchResult{
			Kind:    domain.SearchKindNone,
			Reason:  domain.NoneReasonEmptyQuery,
			Message: messageEmptyQuery,
		}
	}

	if sample, ok := matchSample(query, samples); ok {
		center := sample.Coordinates
		return domain.SearchResult{
			Kind:     domain.SearchKindSample,
			Postcode: sample.Postcode,
			Name:     sample.Name,
			Eligible: sample.Eligible,
			Center:   &center,
			Message:  r.classifier.EligibilityMessage(sample.Postcode),
		}
	}

	for i := range shapes {
		if shapes[i].ID != query {
			continue
		}
		center := shapes[i].Centroid()
		return domain.SearchResult{
			Kind:     domain.SearchKindShape,
			Postcode: shapes[i].ID,
			Category: shapes[i].Category,
			Center:   &center,
			Message:  eligibility.CategoryLabel(shapes[i].Category),
		}
	}

	if rawPostcodePattern.MatchString(query) {
		flags := r.classifier.Classify(query)
		return domain.SearchResult{
			Kind:        domain.SearchKindRaw,
			Postcode:    query,
			WHVRegional: flags.WHV417Regional,
			WHVRemote:   flags.WHV417Remote,
			Visa491:     flags.Visa491,
			Message:     r.classifier.RawEligibilityMessage(query),
		}
	}

	return domain.SearchResult{
		Kind:    domain.SearchKindNone,
		Reason:  domain.NoneReasonNoMatch,
		Message: messageNoMatch,
	}
}

// matchSample finds the first sample whose postcode equals query or whose name
// contains it, ignoring case.
func matchSample(query string, samples []domain.SampleLocation) (domain.SampleLocation, bool) {
	lowered := strings.ToLower(query)
	for _, s := range samples {
		if s.Postcode == query || strings.Contains(strings.ToLower(s.Name), lowered) {
			return s, true
		}
	}
	return domain.SampleLocation{}, false
}
