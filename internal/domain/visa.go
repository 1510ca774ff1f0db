package domain

// VisaCategory - visual classification of a postcode area
type VisaCategory string

const (
	CategoryWHV417Regional VisaCategory = "whv417regional"
	CategoryWHV417Remote   VisaCategory = "whv417remote"
	CategoryVisa491        VisaCategory = "visa491"
	// CategoryBoth is Regional and 491 at once. Remote+491 is not represented.
	CategoryBoth VisaCategory = "both"
	CategoryNone VisaCategory = "none"
)

// VisaFilter - map filter selected by the user
type VisaFilter string

const (
	FilterAll            VisaFilter = "all"
	FilterWHV417Regional VisaFilter = "whv417regional"
	FilterWHV417Remote   VisaFilter = "whv417remote"
	FilterVisa491        VisaFilter = "visa491"
)

// Valid reports whether f is one of the known filters.
func (f VisaFilter) Valid() bool {
	switch f {
	case FilterAll, FilterWHV417Regional, FilterWHV417Remote, FilterVisa491:
		return true
	}
	return false
}

// EligibilityFlags - membership of a postcode in each rule set; not mutually exclusive
type EligibilityFlags struct {
	WHV417Regional bool `json:"whv417_regional"`
	WHV417Remote   bool `json:"whv417_remote"`
	Visa491        bool `json:"visa491"`
}

// Any reports whether at least one rule set matched.
func (f EligibilityFlags) Any() bool {
	return f.WHV417Regional || f.WHV417Remote || f.Visa491
}

// ShapeStyle - polygon colors for map rendering
type ShapeStyle struct {
	FillColor   string `json:"fill_color"`
	StrokeColor string `json:"stroke_color"`
	StrokeWidth int    `json:"stroke_width"`
}

const defaultStrokeWidth = 1

var (
	StyleWHV417Remote   = ShapeStyle{FillColor: "rgba(255, 87, 34, 0.5)", StrokeColor: "rgba(255, 87, 34, 0.8)", StrokeWidth: defaultStrokeWidth}
	StyleWHV417Regional = ShapeStyle{FillColor: "rgba(76, 175, 80, 0.5)", StrokeColor: "rgba(76, 175, 80, 0.8)", StrokeWidth: defaultStrokeWidth}
	StyleVisa491        = ShapeStyle{FillColor: "rgba(156, 39, 176, 0.5)", StrokeColor: "rgba(156, 39, 176, 0.8)", StrokeWidth: defaultStrokeWidth}
	StyleBoth           = ShapeStyle{FillColor: "rgba(0, 188, 212, 0.5)", StrokeColor: "rgba(0, 188, 212, 0.8)", StrokeWidth: defaultStrokeWidth}
	StyleNone           = ShapeStyle{FillColor: "rgba(200, 200, 200, 0.2)", StrokeColor: "rgba(150, 150, 150, 0.8)", StrokeWidth: defaultStrokeWidth}

	// StyleVisa491Filter is the darker purple used when the 491 filter is active.
	StyleVisa491Filter = ShapeStyle{FillColor: "rgba(178, 29, 198, 0.5)", StrokeColor: "rgba(111, 0, 117, 0.8)", StrokeWidth: defaultStrokeWidth}
)
