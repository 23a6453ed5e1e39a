package seed

import (
	"fmt"
	"math"

	"github.com/okian/prospect/internal/domain/model"
	"github.com/okian/prospect/internal/domain/rating"
	"github.com/okian/prospect/internal/domain/types"
)

// contributionTolerance allows for the single rounding step on the composite.
const contributionTolerance = 0.01

// checkAthlete compares what the service stored and served for c against the
// local engine. It returns one message per disagreement.
func checkAthlete(c created, b types.BreakdownResponse) []string {
	var problems []string
	want := rating.GetBreakdown(c.draft.Input())

	if c.athlete.StarRating != want.StarRating {
		problems = append(problems, fmt.Sprintf("stored starRating %.1f, want %.1f", c.athlete.StarRating, want.StarRating))
	}
	if c.athlete.Hometown != c.draft.Hometown || c.athlete.GraduationYear != c.draft.GraduationYear {
		problems = append(problems, fmt.Sprintf("stored details %q/%d, want %q/%d",
			c.athlete.Hometown, c.athlete.GraduationYear, c.draft.Hometown, c.draft.GraduationYear))
	}
	if b.Breakdown.StarRating != want.StarRating {
		problems = append(problems, fmt.Sprintf("breakdown starRating %.1f, want %.1f", b.Breakdown.StarRating, want.StarRating))
	}
	if b.Breakdown.CompositeScore != want.CompositeScore {
		problems = append(problems, fmt.Sprintf("compositeScore %.2f, want %.2f", b.Breakdown.CompositeScore, want.CompositeScore))
	}
	if b.Breakdown.Tier != want.Tier {
		problems = append(problems, fmt.Sprintf("tier %q, want %q", b.Breakdown.Tier, want.Tier))
	}
	if !rating.IsCanonicalStar(b.Breakdown.StarRating) {
		problems = append(problems, fmt.Sprintf("starRating %v is not a half-star value", b.Breakdown.StarRating))
	}
	for _, cat := range rating.Categories() {
		got, _ := b.Breakdown.Components.ByName(cat.Name)
		exp, _ := want.Components.ByName(cat.Name)
		if got.Weight != cat.Weight*100 {
			problems = append(problems, fmt.Sprintf("%s weight %.0f%%, want %.0f%%", cat.Name, got.Weight, cat.Weight*100))
		}
		if got.Score != exp.Score {
			problems = append(problems, fmt.Sprintf("%s score %.2f, want %.2f", cat.Name, got.Score, exp.Score))
		}
	}
	if d := math.Abs(b.Breakdown.Components.Sum() - b.Breakdown.CompositeScore); d > contributionTolerance {
		problems = append(problems, fmt.Sprintf("contributions differ from composite by %.4f", d))
	}
	return problems
}

// checkOrdering verifies a listing page is sorted by star rating descending.
func checkOrdering(athletes []model.Athlete) error {
	for i := 1; i < len(athletes); i++ {
		if athletes[i].StarRating > athletes[i-1].StarRating {
			return fmt.Errorf("position %d (%.1f) ranks above position %d (%.1f)",
				i, athletes[i].StarRating, i-1, athletes[i-1].StarRating)
		}
	}
	return nil
}
