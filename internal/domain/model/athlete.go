// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"

	"github.com/okian/prospect/internal/domain/rating"
)

// SubScores holds the five raw rating inputs stored on an athlete.
type SubScores struct {
	Performance float64 `json:"performanceScore"`
	Physical    float64 `json:"physicalScore"`
	Academic    float64 `json:"academicScore"`
	Social      float64 `json:"socialScore"`
	Evaluation  float64 `json:"evaluationScore"`
}

// Input converts stored sub-scores into engine input.
func (s SubScores) Input() rating.Input {
	return rating.Input{
		Performance: s.Performance,
		Physical:    s.Physical,
		Academic:    s.Academic,
		Social:      s.Social,
		Evaluation:  s.Evaluation,
	}
}

// ScorePatch is a partial sub-score update. Nil fields are left unchanged.
type ScorePatch struct {
	Performance *float64 `json:"performanceScore,omitempty"`
	Physical    *float64 `json:"physicalScore,omitempty"`
	Academic    *float64 `json:"academicScore,omitempty"`
	Social      *float64 `json:"socialScore,omitempty"`
	Evaluation  *float64 `json:"evaluationScore,omitempty"`
}

// Empty reports whether the patch touches no sub-score.
func (p ScorePatch) Empty() bool {
	return p.Performance == nil && p.Physical == nil && p.Academic == nil &&
		p.Social == nil && p.Evaluation == nil
}

// Apply returns s with every non-nil patch field written over it.
func (p ScorePatch) Apply(s SubScores) SubScores {
	if p.Performance != nil {
		s.Performance = *p.Performance
	}
	if p.Physical != nil {
		s.Physical = *p.Physical
	}
	if p.Academic != nil {
		s.Academic = *p.Academic
	}
	if p.Social != nil {
		s.Social = *p.Social
	}
	if p.Evaluation != nil {
		s.Evaluation = *p.Evaluation
	}
	return s
}

// Athlete is the persisted athlete profile. StarRating is a cache of the
// rating engine's output and is only ever written by rating recomputation.
type Athlete struct {
	ID           string `json:"id"`
	UserID       string `json:"userId"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PrimarySport string `json:"primarySport"`
	IsPublic     bool   `json:"isPublic"`
	Details
	SubScores
	StarRating float64   `json:"starRating"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// FullName joins first and last name.
func (a Athlete) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// OwnedBy reports whether userID owns the profile.
func (a Athlete) OwnedBy(userID string) bool {
	return userID != "" && a.UserID == userID
}

// ListFilter narrows athlete listings. Zero values mean "no constraint",
// except MaxStars where zero is read as the top of the scale. Text filters
// are case-insensitive substring matches.
type ListFilter struct {
	Sport          string
	Query          string // first or last name
	Location       string // hometown, high school or college
	GraduationYear int
	MinStars       float64
	MaxStars       float64
	PublicOnly     bool
	Limit          int
	Offset         int
}

// Bounds returns the effective inclusive star range.
func (f ListFilter) Bounds() (float64, float64) {
	lo, hi := f.MinStars, f.MaxStars
	if hi <= 0 {
		hi = rating.MaxStars
	}
	return lo, hi
}

// Matches reports whether a satisfies every constraint of f except paging.
func (f ListFilter) Matches(a Athlete) bool {
	if f.PublicOnly && !a.IsPublic {
		return false
	}
	if !containsFold(a.PrimarySport, f.Sport) {
		return false
	}
	if f.Query != "" && !containsFold(a.FirstName, f.Query) && !containsFold(a.LastName, f.Query) {
		return false
	}
	if f.Location != "" && !containsFold(a.Hometown, f.Location) &&
		!containsFold(a.HighSchool, f.Location) && !containsFold(a.College, f.Location) {
		return false
	}
	if f.GraduationYear != 0 && a.GraduationYear != f.GraduationYear {
		return false
	}
	lo, hi := f.Bounds()
	return a.StarRating >= lo && a.StarRating <= hi
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
