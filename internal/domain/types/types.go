// Package types contains response shapes shared by the service and its transports.
package types

import (
	"github.com/okian/prospect/internal/domain/model"
	"github.com/okian/prospect/internal/domain/rating"
)

// BreakdownResponse is the body of GET /ratings/{athleteId}/breakdown.
type BreakdownResponse struct {
	AthleteID   string           `json:"athleteId"`
	AthleteName string           `json:"athleteName"`
	Breakdown   rating.Breakdown `json:"breakdown"`
}

// NewBreakdownResponse computes the breakdown for a's stored sub-scores.
func NewBreakdownResponse(a model.Athlete, calc rating.Calculator) BreakdownResponse {
	return BreakdownResponse{
		AthleteID:   a.ID,
		AthleteName: a.FullName(),
		Breakdown:   calc.Breakdown(a.SubScores.Input()),
	}
}

// AthleteList is one page of athletes.
type AthleteList struct {
	Athletes []model.Athlete `json:"athletes"`
	Total    int             `json:"total"`
	Limit    int             `json:"limit"`
	Offset   int             `json:"offset"`
}

// BackfillReport summarizes a bulk recompute.
type BackfillReport struct {
	Processed  int   `json:"processed"`
	Changed    int   `json:"changed"`
	Failed     int   `json:"failed"`
	Duplicates int   `json:"duplicates"`
	TookMS     int64 `json:"tookMs"`
}
