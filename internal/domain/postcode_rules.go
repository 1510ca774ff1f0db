package domain

import (
	"sort"
	"strconv"
	"strings"
)

// PostcodeRange - inclusive postcode interval as authored in the reference table
type PostcodeRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Contains reports whether n lies within [Start, End].
func (r PostcodeRange) Contains(n int) bool {
	return n >= r.Start && n <= r.End
}

// PostcodeRuleSet is the immutable union of single postcodes and ranges for one visa category.
// Ranges keep their authored order and may overlap.
type PostcodeRuleSet struct {
	name    string
	singles map[int]struct{}
	order   []int
	ranges  []PostcodeRange
}

// NewPostcodeRuleSet copies its inputs, so later changes to the slices do not leak in.
func NewPostcodeRuleSet(name string, singles []int, ranges []PostcodeRange) PostcodeRuleSet {
	set := PostcodeRuleSet{
		name:    name,
		singles: make(map[int]struct{}, len(singles)),
		order:   make([]int, 0, len(singles)),
		ranges:  append([]PostcodeRange(nil), ranges...),
	}
	for _, p := range singles {
		if _, ok := set.singles[p]; ok {
			continue
		}
		set.singles[p] = struct{}{}
		set.order = append(set.order, p)
	}
	return set
}

func (s PostcodeRuleSet) Name() string {
	return s.name
}

// Contains is true iff n equals a single postcode or falls inside any range.
func (s PostcodeRuleSet) Contains(n int) bool {
	if _, ok := s.singles[n]; ok {
		return true
	}
	for _, r := range s.ranges {
		if r.Contains(n) {
			return true
		}
	}
	return false
}

// SinglePostcodes returns the single postcodes in authored order.
func (s PostcodeRuleSet) SinglePostcodes() []int {
	return append([]int(nil), s.order...)
}

// Ranges returns the ranges in authored order.
func (s PostcodeRuleSet) Ranges() []PostcodeRange {
	return append([]PostcodeRange(nil), s.ranges...)
}

// Describe renders the set contents as "3139, 3753, 3211-3334, ..." sorted by postcode.
func (s PostcodeRuleSet) Describe() string {
	type entry struct {
		start int
		text  string
	}
	entries := make([]entry, 0, len(s.order)+len(s.ranges))
	for _, p := range s.order {
		entries = append(entries, entry{start: p, text: strconv.Itoa(p)})
	}
	for _, r := range s.ranges {
		entries = append(entries, entry{start: r.Start, text: strconv.Itoa(r.Start) + "-" + strconv.Itoa(r.End)})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].start < entries[j].start })

	parts := make([]string, len(entries))
	for i, e := range entries {
		parts[i] = e.text
	}
	return strings.Join(parts, ", ")
}

// RuleTables - the three eligibility rule sets the classifier evaluates
type RuleTables struct {
	WHV417Regional PostcodeRuleSet
	WHV417Remote   PostcodeRuleSet
	Visa491        PostcodeRuleSet
}

// VictoriaRuleTables builds the Victorian eligibility table published for WHV 417 specified work
// and the subclass 491 regional list.
func VictoriaRuleTables() RuleTables {
	return RuleTables{
		WHV417Regional: NewPostcodeRuleSet("WHV 417 Regional Australia",
			[]int{3139, 3753, 3756, 3758, 3762, 3764, 3979},
			[]PostcodeRange{
				{Start: 3211, End: 3334},
				{Start: 3340, End: 3424},
				{Start: 3430, End: 3649},
				{Start: 3658, End: 3749},
				{Start: 3778, End: 3781},
				{Start: 3810, End: 3909},
				{Start: 3921, End: 3925},
				{Start: 3945, End: 3974},
				{Start: 3979, End: 3996},
			},
		),
		WHV417Remote: NewPostcodeRuleSet("WHV 417 Remote Australia",
			[]int{3424, 3506, 3509, 3512},
			[]PostcodeRange{
				{Start: 3889, End: 3892},
			},
		),
		Visa491: NewPostcodeRuleSet("491 visa",
			[]int{3139, 3329, 3334, 3341, 3235, 3240, 3328},
			[]PostcodeRange{
				{Start: 3097, End: 3099},
				{Start: 3233, End: 3234},
				{Start: 3236, End: 3239},
				{Start: 3241, End: 3325},
				{Start: 3345, End: 3424},
				{Start: 3430, End: 3799},
				{Start: 3809, End: 3909},
				{Start: 3912, End: 3971},
				{Start: 3978, End: 3996},
				{Start: 3211, End: 3232},
				{Start: 3330, End: 3333},
				{Start: 3340, End: 3342},
			},
		),
	}
}
