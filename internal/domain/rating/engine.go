package rating

// Calculator is the rating surface consumed by orchestration code.
type Calculator interface {
	CompositeScore(in Input) float64
	StarRating(composite float64) float64
	TierLabel(stars float64) string
	Breakdown(in Input) Breakdown
}

// Engine is a stateless Calculator backed by the package functions. The zero
// value is ready to use.
type Engine struct{}

var _ Calculator = Engine{}

// CompositeScore implements Calculator.
func (Engine) CompositeScore(in Input) float64 { return CompositeScore(in) }

// StarRating implements Calculator.
func (Engine) StarRating(composite float64) float64 { return StarRating(composite) }

// TierLabel implements Calculator.
func (Engine) TierLabel(stars float64) string { return TierLabel(stars) }

// Breakdown implements Calculator.
func (Engine) Breakdown(in Input) Breakdown { return GetBreakdown(in) }

// Stars computes the star rating straight from raw sub-scores.
func Stars(in Input) float64 {
	return StarRating(CompositeScore(in))
}
