// Package rating turns five athlete sub-scores into a composite score, a
// half-star rating and a tier label.
//
// Every function in this package is pure: no I/O, no shared state, safe for
// concurrent use.
package rating

import "math"

// Score bounds applied to every sub-score before weighting.
const (
	minScore = 0
	maxScore = 100
)

// Category weights. They sum to exactly 1.
const (
	WeightPerformance = 0.40
	WeightPhysical    = 0.20
	WeightAcademic    = 0.15
	WeightSocial      = 0.15
	WeightEvaluation  = 0.10
)

// Category names as they appear in the breakdown wire shape.
const (
	Performance = "performance"
	Physical    = "physical"
	Academic    = "academic"
	Social      = "social"
	Evaluation  = "evaluation"
)

// Canonical star ratings.
const (
	MinStars = 1.0
	MaxStars = 5.0
)

// DefaultTier is returned for any star value without an entry in the tier table.
const DefaultTier = "Early Stage"

// Input carries the five raw sub-scores. Values outside [0, 100] are accepted
// and clamped.
type Input struct {
	Performance float64 `json:"performance"`
	Physical    float64 `json:"physical"`
	Academic    float64 `json:"academic"`
	Social      float64 `json:"social"`
	Evaluation  float64 `json:"evaluation"`
}

// Component is one category's share of the composite score.
type Component struct {
	Score        float64 `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution float64 `json:"contribution"`
}

// Components holds the per-category breakdown.
type Components struct {
	Performance Component `json:"performance"`
	Physical    Component `json:"physical"`
	Academic    Component `json:"academic"`
	Social      Component `json:"social"`
	Evaluation  Component `json:"evaluation"`
}

// Breakdown is the full, displayable rating result.
type Breakdown struct {
	CompositeScore float64    `json:"compositeScore"`
	StarRating     float64    `json:"starRating"`
	Components     Components `json:"components"`
	Tier           string     `json:"tier"`
}

// Category pairs a category name with its weight.
type Category struct {
	Name   string
	Weight float64
}

// threshold maps the inclusive lower bound of a composite bucket to its stars.
type threshold struct {
	min   float64
	stars float64
}

// thresholds is ordered from the highest bucket down.
var thresholds = []threshold{
	{90, 5.0},
	{80, 4.5},
	{70, 4.0},
	{60, 3.5},
	{50, 3.0},
	{40, 2.5},
	{30, 2.0},
	{20, 1.5},
}

var tiers = map[float64]string{
	5.0: "Elite NIL Prospect",
	4.5: "Power 5 Ready",
	4.0: "D1 Potential",
	3.5: "High D1/Mid-Major",
	3.0: "Solid College Athlete",
	2.5: "D2/D3 Prospect",
	2.0: "Developmental",
	1.5: "Emerging Talent",
}

// Categories returns the five categories in display order.
func Categories() []Category {
	return []Category{
		{Performance, WeightPerformance},
		{Physical, WeightPhysical},
		{Academic, WeightAcademic},
		{Social, WeightSocial},
		{Evaluation, WeightEvaluation},
	}
}

// StarValues returns the nine canonical star ratings in ascending order.
func StarValues() []float64 {
	return []float64{1.0, 1.5, 2.0, 2.5, 3.0, 3.5, 4.0, 4.5, 5.0}
}

// IsCanonicalStar reports whether v is one of the nine canonical star ratings.
func IsCanonicalStar(v float64) bool {
	for _, s := range StarValues() {
		if v == s {
			return true
		}
	}
	return false
}

// Clamp constrains v to [0, 100]. NaN passes through unchanged.
func Clamp(v float64) float64 {
	return math.Max(minScore, math.Min(maxScore, v))
}

// clamped returns a copy of in with every field clamped.
func (in Input) clamped() Input {
	return Input{
		Performance: Clamp(in.Performance),
		Physical:    Clamp(in.Physical),
		Academic:    Clamp(in.Academic),
		Social:      Clamp(in.Social),
		Evaluation:  Clamp(in.Evaluation),
	}
}

// Contributions are materialised with explicit float64 conversions so the
// compiler cannot fuse multiply and add; the sum must round exactly like the
// stored ratings did.
func weightedSum(c Input) float64 {
	p := float64(c.Performance * WeightPerformance)
	ph := float64(c.Physical * WeightPhysical)
	a := float64(c.Academic * WeightAcademic)
	s := float64(c.Social * WeightSocial)
	e := float64(c.Evaluation * WeightEvaluation)
	return p + ph + a + s + e
}

// roundCents rounds to two decimals, half away from zero.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

// CompositeScore clamps every sub-score, applies the category weights and
// rounds the sum to two decimals.
func CompositeScore(in Input) float64 {
	return roundCents(weightedSum(in.clamped()))
}

// StarRating maps a composite score to a half-star bucket. The lower bound of
// each bucket is inclusive. Scores below 20, and NaN, get one star.
func StarRating(composite float64) float64 {
	for _, t := range thresholds {
		if composite >= t.min {
			return t.stars
		}
	}
	return MinStars
}

// TierLabel returns the human readable tier for a star rating. Only exact
// canonical values match; everything else is DefaultTier.
func TierLabel(stars float64) string {
	if label, ok := tiers[stars]; ok {
		return label
	}
	return DefaultTier
}

func component(score, weight float64) Component {
	return Component{
		Score:        score,
		Weight:       weight * 100,
		Contribution: float64(score * weight),
	}
}

// GetBreakdown computes the full breakdown. Each sub-score is clamped once and
// the clamped value feeds both the displayed component and the composite.
func GetBreakdown(in Input) Breakdown {
	c := in.clamped()
	composite := roundCents(weightedSum(c))
	stars := StarRating(composite)

	return Breakdown{
		CompositeScore: composite,
		StarRating:     stars,
		Components: Components{
			Performance: component(c.Performance, WeightPerformance),
			Physical:    component(c.Physical, WeightPhysical),
			Academic:    component(c.Academic, WeightAcademic),
			Social:      component(c.Social, WeightSocial),
			Evaluation:  component(c.Evaluation, WeightEvaluation),
		},
		Tier: TierLabel(stars),
	}
}

// Sum returns the total of all displayed contributions.
func (c Components) Sum() float64 {
	return c.Performance.Contribution +
		c.Physical.Contribution +
		c.Academic.Contribution +
		c.Social.Contribution +
		c.Evaluation.Contribution
}

// ByName returns the component for a category name.
func (c Components) ByName(name string) (Component, bool) {
	switch name {
	case Performance:
		return c.Performance, true
	case Physical:
		return c.Physical, true
	case Academic:
		return c.Academic, true
	case Social:
		return c.Social, true
	case Evaluation:
		return c.Evaluation, true
	}
	return Component{}, false
}
