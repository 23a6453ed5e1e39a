package seed

import (
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/prospect/internal/domain/rating"
)

var (
	firstNames = []string{"Avery", "Jordan", "Kai", "Riley", "Morgan", "Quinn", "Taylor", "Rowan", "Skyler", "Emerson"}
	lastNames  = []string{"Okafor", "Nguyen", "Silva", "Haddad", "Kowalski", "Reyes", "Fischer", "Tanaka", "Mensah", "Larsen"}
	sports     = []string{"Basketball", "Soccer", "Volleyball", "Track", "Swimming", "Football", "Tennis", "Baseball"}
	hometowns  = []string{"Austin, TX", "Columbus, OH", "Fresno, CA", "Tampa, FL", "Boise, ID", "Raleigh, NC"}
)

const firstGraduationYear = 2025

// band is a score range an archetype draws sub-scores from.
type band struct{ lo, hi float64 }

// archetypes are weighted so most generated athletes are average.
var archetypes = []struct {
	weight int
	band   band
}{
	{4, band{40, 70}},  // average
	{2, band{65, 85}},  // strong
	{2, band{10, 45}},  // developing
	{1, band{85, 100}}, // elite
	{1, band{-5, 105}}, // noisy input, exercises clamping
}

// Generator produces synthetic profiles. It is not safe for concurrent use.
type Generator struct {
	rng   *rand.Rand
	total int
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	g := &Generator{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
	for _, a := range archetypes {
		g.total += a.weight
	}
	return g
}

// Generate returns n profiles with distinct owners.
func (g *Generator) Generate(n int) []Profile {
	out := make([]Profile, n)
	for i := range out {
		out[i] = g.profile()
	}
	return out
}

func (g *Generator) profile() Profile {
	b := g.pickBand()
	return Profile{
		UserID: "seed-" + uuid.NewString(),
		Draft: Draft{
			FirstName:        firstNames[g.rng.IntN(len(firstNames))],
			LastName:         lastNames[g.rng.IntN(len(lastNames))],
			PrimarySport:     sports[g.rng.IntN(len(sports))],
			IsPublic:         g.rng.IntN(10) > 0,
			Hometown:         hometowns[g.rng.IntN(len(hometowns))],
			GraduationYear:   firstGraduationYear + g.rng.IntN(6),
			PerformanceScore: g.score(b),
			PhysicalScore:    g.score(b),
			AcademicScore:    g.score(b),
			SocialScore:      g.score(b),
			EvaluationScore:  g.score(b),
		},
	}
}

func (g *Generator) pickBand() band {
	n := g.rng.IntN(g.total)
	for _, a := range archetypes {
		if n < a.weight {
			return a.band
		}
		n -= a.weight
	}
	return archetypes[0].band
}

// score draws from b with two-decimal precision, the precision stores keep.
func (g *Generator) score(b band) float64 {
	v := b.lo + g.rng.Float64()*(b.hi-b.lo)
	return math.Round(v*100) / 100
}

// Input converts the draft's sub-scores into engine input.
func (d Draft) Input() rating.Input {
	return rating.Input{
		Performance: d.PerformanceScore,
		Physical:    d.PhysicalScore,
		Academic:    d.AcademicScore,
		Social:      d.SocialScore,
		Evaluation:  d.EvaluationScore,
	}
}

// ExpectedStars is the star rating the service must assign to d.
func (d Draft) ExpectedStars() float64 {
	return rating.Stars(d.Input())
}
