// Package eligibility classifies postcodes against the visa rule tables.
package eligibility

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/postcode-finder/internal/domain"
)

const (
	messageNoPostcode  = "No postcode information available."
	messageNotEligible = "This area is not eligible for any visa extension."
)

// categoryRule maps a flag predicate to the category it selects.
type categoryRule struct {
	name     string
	matches  func(domain.EligibilityFlags) bool
	category domain.VisaCategory
}

// priorityRules are evaluated top to bottom, first match wins.
var priorityRules = []categoryRule{
	{name: "remote", matches: func(f domain.EligibilityFlags) bool { return f.WHV417Remote }, category: domain.CategoryWHV417Remote},
	{name: "regional", matches: func(f domain.EligibilityFlags) bool { return f.WHV417Regional }, category: domain.CategoryWHV417Regional},
	{name: "visa491", matches: func(f domain.EligibilityFlags) bool { return f.Visa491 }, category: domain.CategoryVisa491},
}

// overrideRules run after priorityRules and replace their pick when they match.
// Only Regional+491 is combined; Remote+491 keeps the remote category.
var overrideRules = []categoryRule{
	{name: "regional+visa491", matches: func(f domain.EligibilityFlags) bool { return f.WHV417Regional && f.Visa491 }, category: domain.CategoryBoth},
}

var styles = map[domain.VisaCategory]domain.ShapeStyle{
	domain.CategoryWHV417Remote:   domain.StyleWHV417Remote,
	domain.CategoryWHV417Regional: domain.StyleWHV417Regional,
	domain.CategoryVisa491:        domain.StyleVisa491,
	domain.CategoryBoth:           domain.StyleBoth,
	domain.CategoryNone:           domain.StyleNone,
}

var categoryLabels = map[domain.VisaCategory]string{
	domain.CategoryWHV417Regional: "Working Holiday Visa 417 Regional Australia",
	domain.CategoryWHV417Remote:   "Working Holiday Visa 417 Remote Australia",
	domain.CategoryVisa491:        "491 visa",
	domain.CategoryBoth:           "Working Holiday Visa 417 and 491 visa",
}

// Classifier evaluates postcodes against one set of rule tables. Safe for concurrent use.
type Classifier struct {
	tables domain.RuleTables
}

// NewClassifier - create a classifier over the given tables
func NewClassifier(tables domain.RuleTables) *Classifier {
	return &Classifier{tables: tables}
}

// Tables returns the rule tables the classifier was built with.
func (c *Classifier) Tables() domain.RuleTables {
	return c.tables
}

// IsMember parses postcode the way JavaScript parseInt does and checks it against set.
// Text without a leading integer is never a member.
func IsMember(set domain.PostcodeRuleSet, postcode string) bool {
	n, ok := ParsePostcode(postcode)
	if !ok {
		return false
	}
	return set.Contains(n)
}

// IsMemberInt checks an already numeric postcode.
func IsMemberInt(set domain.PostcodeRuleSet, postcode int) bool {
	return set.Contains(postcode)
}

// ParsePostcode skips leading whitespace, accepts an optional sign and reads the longest
// run of decimal digits. "3550abc" parses as 3550; "abc" and "" do not parse.
func ParsePostcode(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// out of int range, far beyond any postcode
		return 0, false
	}
	if negative {
		n = -n
	}
	return n, true
}

// Classify evaluates each rule set independently.
func (c *Classifier) Classify(postcode string) domain.EligibilityFlags {
	return domain.EligibilityFlags{
		WHV417Regional: IsMember(c.tables.WHV417Regional, postcode),
		WHV417Remote:   IsMember(c.tables.WHV417Remote, postcode),
		Visa491:        IsMember(c.tables.Visa491, postcode),
	}
}

// DerivePriorityCategory picks the single category used for coloring.
func DerivePriorityCategory(flags domain.EligibilityFlags) domain.VisaCategory {
	category := domain.CategoryNone
	for _, rule := range priorityRules {
		if rule.matches(flags) {
			category = rule.category
			break
		}
	}
	for _, rule := range overrideRules {
		if rule.matches(flags) {
			category = rule.category
		}
	}
	return category
}

// Style returns the colors for a category; unknown categories render as none.
func Style(category domain.VisaCategory) domain.ShapeStyle {
	if s, ok := styles[category]; ok {
		return s
	}
	return domain.StyleNone
}

// CategoryLabel is the one-line description shown when a shape is found by search.
func CategoryLabel(category domain.VisaCategory) string {
	if label, ok := categoryLabels[category]; ok {
		return label
	}
	return messageNotEligible
}

// Categorize combines Classify and DerivePriorityCategory.
func (c *Classifier) Categorize(postcode string) (domain.EligibilityFlags, domain.VisaCategory) {
	flags := c.Classify(postcode)
	return flags, DerivePriorityCategory(flags)
}

// EligibilityMessage lists every satisfied rule set, Regional then Remote then 491.
func (c *Classifier) EligibilityMessage(postcode string) string {
	if postcode == "" {
		return messageNoPostcode
	}

	flags := c.Classify(postcode)
	if !flags.Any() {
		return messageNotEligible
	}

	var b strings.Builder
	if flags.WHV417Regional {
		b.WriteString("✅ WHV 417 Regional Australia\n")
	}
	if flags.WHV417Remote {
		b.WriteString("✅ WHV 417 Remote Australia\n")
	}
	if flags.Visa491 {
		b.WriteString("✅ 491 visa\n")
	}
	return b.String()
}

// RawEligibilityMessage reports all three rule sets, eligible or not.
func (c *Classifier) RawEligibilityMessage(postcode string) string {
	flags := c.Classify(postcode)
	return "Working Holiday Visa 417 Regional: " + mark(flags.WHV417Regional) + "\n\n" +
		"Working Holiday Visa 417 Remote: " + mark(flags.WHV417Remote) + "\n\n" +
		"491 visa: " + mark(flags.Visa491)
}

func mark(eligible bool) string {
	if eligible {
		return "✅ Eligible area"
	}
	return "❌ Ineligible area"
}

// EligibleVisas returns short names of the satisfied rule sets for marker descriptions.
func (c *Classifier) EligibleVisas(postcode string) []string {
	flags := c.Classify(postcode)
	visas := make([]string, 0, 3)
	if flags.WHV417Regional {
		visas = append(visas, "417 Regional")
	}
	if flags.WHV417Remote {
		visas = append(visas, "417 Remote")
	}
	if flags.Visa491 {
		visas = append(visas, "491")
	}
	return visas
}

// FilterMatches reports whether postcode belongs to the rule set behind filter.
// FilterAll matches everything.
func (c *Classifier) FilterMatches(filter domain.VisaFilter, postcode string) bool {
	switch filter {
	case domain.FilterAll:
		return true
	case domain.FilterWHV417Regional:
		return IsMember(c.tables.WHV417Regional, postcode)
	case domain.FilterWHV417Remote:
		return IsMember(c.tables.WHV417Remote, postcode)
	case domain.FilterVisa491:
		return IsMember(c.tables.Visa491, postcode)
	}
	return false
}
