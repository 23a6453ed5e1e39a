package service

import (
	"context"
	"time"

	"github.com/okian/prospect/internal/auth"
	"github.com/okian/prospect/internal/domain/model"
	"github.com/okian/prospect/internal/domain/types"
	"github.com/okian/prospect/pkg/logger"
	"github.com/okian/prospect/pkg/metrics"
)

// UpdateAthleteRating recomputes the star rating of athleteID from its
// stored sub-scores and persists it. It is the only writer of StarRating.
func (s *Service) UpdateAthleteRating(ctx context.Context, athleteID string) (model.Athlete, error) {
	a, _, err := s.updateRating(ctx, athleteID)
	return a, err
}

func (s *Service) updateRating(ctx context.Context, athleteID string) (model.Athlete, bool, error) {
	const op = "update athlete rating"
	start := time.Now()

	a, err := s.store.FindByID(ctx, athleteID)
	if err != nil {
		return model.Athlete{}, false, storeErr(op, err)
	}
	composite, changed := s.rate(&a)
	a.UpdatedAt = s.timestamp()
	if err := s.store.Save(ctx, a); err != nil {
		metrics.RecordErrorByComponent("service", "save_failed")
		return model.Athlete{}, false, storeErr(op, err)
	}
	s.rated(ctx, a, composite, changed, start)
	return a, changed, nil
}

// rate writes the star rating derived from a's sub-scores into a. Every
// write path calls it before its single store write, so sub-scores and
// rating are never persisted apart.
func (s *Service) rate(a *model.Athlete) (composite float64, changed bool) {
	composite = s.engine.CompositeScore(a.SubScores.Input())
	stars := s.engine.StarRating(composite)
	changed = a.StarRating != stars
	a.StarRating = stars
	return composite, changed
}

// rated records a persisted rating.
func (s *Service) rated(ctx context.Context, a model.Athlete, composite float64, changed bool, start time.Time) {
	metrics.RecordRating(composite, a.StarRating, changed, float64(time.Since(start).Microseconds())/1000)
	s.log().Debug(ctx, "star rating updated",
		logger.String("athlete_id", a.ID),
		logger.Float64("composite", composite),
		logger.Float64("star_rating", a.StarRating),
		logger.Bool("changed", changed),
	)
}

// Recalculate recomputes athleteID on behalf of an administrator.
func (s *Service) Recalculate(ctx context.Context, p model.Principal, athleteID string) (model.Athlete, error) {
	if err := requireAdmin(p); err != nil {
		return model.Athlete{}, err
	}
	return s.UpdateAthleteRating(ctx, athleteID)
}

// SetSubScores applies an administrator's partial sub-score update and
// recomputes the star rating before returning.
func (s *Service) SetSubScores(ctx context.Context, p model.Principal, athleteID string, patch model.ScorePatch) (model.Athlete, error) {
	const op = "set sub-scores"
	if err := requireAdmin(p); err != nil {
		return model.Athlete{}, err
	}
	if patch.Empty() {
		return model.Athlete{}, invalid("at least one sub-score is required")
	}
	if err := checkScores(patch); err != nil {
		return model.Athlete{}, err
	}

	start := time.Now()
	a, err := s.store.FindByID(ctx, athleteID)
	if err != nil {
		return model.Athlete{}, storeErr(op, err)
	}
	a.SubScores = patch.Apply(a.SubScores)
	composite, changed := s.rate(&a)
	a.UpdatedAt = s.timestamp()
	if err := s.store.Save(ctx, a); err != nil {
		metrics.RecordErrorByComponent("service", "save_failed")
		return model.Athlete{}, storeErr(op, err)
	}
	s.rated(ctx, a, composite, changed, start)
	return a, nil
}

// Breakdown returns the rating breakdown of athleteID computed from its
// stored sub-scores. Private profiles are visible to their owner and to
// administrators only.
func (s *Service) Breakdown(ctx context.Context, p model.Principal, athleteID string) (types.BreakdownResponse, error) {
	a, err := s.store.FindByID(ctx, athleteID)
	if err != nil {
		return types.BreakdownResponse{}, storeErr("breakdown", err)
	}
	if !auth.CanView(p, a) {
		return types.BreakdownResponse{}, ErrForbidden
	}
	metrics.RecordBreakdownServed()
	return types.NewBreakdownResponse(a, s.engine), nil
}

func requireUser(p model.Principal) error {
	if p.Anonymous() {
		return ErrUnauthenticated
	}
	return nil
}

func requireAdmin(p model.Principal) error {
	if err := requireUser(p); err != nil {
		return err
	}
	if !auth.CanSetScores(p) {
		return ErrForbidden
	}
	return nil
}
