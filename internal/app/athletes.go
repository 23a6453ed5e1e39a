package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/okian/prospect/internal/adapters/repository"
	"github.com/okian/prospect/internal/auth"
	"github.com/okian/prospect/internal/domain/model"
	"github.com/okian/prospect/internal/domain/rating"
	"github.com/okian/prospect/internal/domain/types"
	"github.com/okian/prospect/pkg/logger"
)

// AthleteDraft is the input of CreateAthlete. UserID is honoured for
// administrators only; everyone else creates their own profile.
type AthleteDraft struct {
	UserID       string `json:"userId,omitempty"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	PrimarySport string `json:"primarySport"`
	IsPublic     *bool  `json:"isPublic,omitempty"`
	model.Details
	model.ScorePatch
}

// ProfilePatch is a partial profile update. Nil fields are left unchanged.
// Score fields require an administrator.
type ProfilePatch struct {
	FirstName    *string `json:"firstName,omitempty"`
	LastName     *string `json:"lastName,omitempty"`
	PrimarySport *string `json:"primarySport,omitempty"`
	IsPublic     *bool   `json:"isPublic,omitempty"`
	model.DetailsPatch
	model.ScorePatch
}

// ListQuery selects a page of athletes. A zero MaxStars means no upper bound
// and a zero GraduationYear matches every year.
type ListQuery struct {
	Sport          string
	Query          string
	Location       string
	GraduationYear int
	MinStars       float64
	MaxStars       float64
	Limit          int
	Offset         int
}

// CreateAthlete persists a new profile and computes its first star rating.
// Each owner may hold a single profile.
func (s *Service) CreateAthlete(ctx context.Context, p model.Principal, d AthleteDraft) (model.Athlete, error) {
	const op = "create athlete"
	if err := requireUser(p); err != nil {
		return model.Athlete{}, err
	}

	owner := p.UserID
	if d.UserID != "" && d.UserID != p.UserID {
		if !p.IsAdmin() {
			return model.Athlete{}, ErrForbidden
		}
		owner = d.UserID
	}

	first, last := strings.TrimSpace(d.FirstName), strings.TrimSpace(d.LastName)
	if first == "" || last == "" {
		return model.Athlete{}, invalid("firstName and lastName are required")
	}
	if err := checkScores(d.ScorePatch); err != nil {
		return model.Athlete{}, err
	}
	details := d.Details.Normalized()
	if err := details.Validate(); err != nil {
		return model.Athlete{}, invalidWith(err)
	}

	switch _, err := s.store.FindByOwner(ctx, owner); {
	case err == nil:
		return model.Athlete{}, ErrConflict
	case !errors.Is(err, repository.ErrNotFound):
		return model.Athlete{}, storeErr(op, err)
	}

	start := time.Now()
	now := s.timestamp()
	a := model.Athlete{
		ID:           s.newID(),
		UserID:       owner,
		FirstName:    first,
		LastName:     last,
		PrimarySport: strings.TrimSpace(d.PrimarySport),
		IsPublic:     d.IsPublic == nil || *d.IsPublic,
		Details:      details,
		SubScores:    d.ScorePatch.Apply(model.SubScores{}),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	composite, changed := s.rate(&a)
	if err := s.store.Create(ctx, a); err != nil {
		return model.Athlete{}, storeErr(op, err)
	}
	s.rated(ctx, a, composite, changed, start)

	s.log().Info(ctx, "athlete created",
		logger.String("athlete_id", a.ID),
		logger.String("user_id", a.UserID),
		logger.Float64("star_rating", a.StarRating),
	)
	return a, nil
}

// UpdateProfile applies a partial update on behalf of the owner or an
// administrator. Score changes trigger a synchronous recompute.
func (s *Service) UpdateProfile(ctx context.Context, p model.Principal, id string, patch ProfilePatch) (model.Athlete, error) {
	const op = "update profile"
	if err := requireUser(p); err != nil {
		return model.Athlete{}, err
	}

	a, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Athlete{}, storeErr(op, err)
	}
	if !auth.CanModify(p, a) {
		return model.Athlete{}, ErrForbidden
	}
	scored := !patch.ScorePatch.Empty()
	if scored && !auth.CanSetScores(p) {
		return model.Athlete{}, ErrForbidden
	}
	if err := checkScores(patch.ScorePatch); err != nil {
		return model.Athlete{}, err
	}

	if patch.FirstName != nil {
		if a.FirstName = strings.TrimSpace(*patch.FirstName); a.FirstName == "" {
			return model.Athlete{}, invalid("firstName must not be empty")
		}
	}
	if patch.LastName != nil {
		if a.LastName = strings.TrimSpace(*patch.LastName); a.LastName == "" {
			return model.Athlete{}, invalid("lastName must not be empty")
		}
	}
	if patch.PrimarySport != nil {
		a.PrimarySport = strings.TrimSpace(*patch.PrimarySport)
	}
	if patch.IsPublic != nil {
		a.IsPublic = *patch.IsPublic
	}
	a.Details = patch.DetailsPatch.Apply(a.Details).Normalized()
	if err := a.Details.Validate(); err != nil {
		return model.Athlete{}, invalidWith(err)
	}

	start := time.Now()
	var composite float64
	changed := false
	if scored {
		a.SubScores = patch.ScorePatch.Apply(a.SubScores)
		composite, changed = s.rate(&a)
	}
	a.UpdatedAt = s.timestamp()
	if err := s.store.Save(ctx, a); err != nil {
		return model.Athlete{}, storeErr(op, err)
	}
	if scored {
		s.rated(ctx, a, composite, changed, start)
	}
	return a, nil
}

// GetAthlete returns a profile visible to p.
func (s *Service) GetAthlete(ctx context.Context, p model.Principal, id string) (model.Athlete, error) {
	a, err := s.store.FindByID(ctx, id)
	if err != nil {
		return model.Athlete{}, storeErr("get athlete", err)
	}
	if !auth.CanView(p, a) {
		return model.Athlete{}, ErrForbidden
	}
	return a, nil
}

// MyAthlete returns the profile owned by p.
func (s *Service) MyAthlete(ctx context.Context, p model.Principal) (model.Athlete, error) {
	if err := requireUser(p); err != nil {
		return model.Athlete{}, err
	}
	a, err := s.store.FindByOwner(ctx, p.UserID)
	if err != nil {
		return model.Athlete{}, storeErr("my athlete", err)
	}
	return a, nil
}

// DeleteAthlete removes a profile on behalf of its owner or an administrator.
func (s *Service) DeleteAthlete(ctx context.Context, p model.Principal, id string) error {
	const op = "delete athlete"
	if err := requireUser(p); err != nil {
		return err
	}
	a, err := s.store.FindByID(ctx, id)
	if err != nil {
		return storeErr(op, err)
	}
	if !auth.CanModify(p, a) {
		return ErrForbidden
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return storeErr(op, err)
	}
	s.log().Info(ctx, "athlete deleted", logger.String("athlete_id", id))
	return nil
}

// ListAthletes returns one page of athletes ordered by star rating. Only
// administrators see private profiles.
func (s *Service) ListAthletes(ctx context.Context, p model.Principal, q ListQuery) (types.AthleteList, error) {
	if err := s.checkListQuery(q); err != nil {
		return types.AthleteList{}, err
	}
	limit := q.Limit
	switch {
	case limit == 0:
		limit = min(defaultPageLimit, s.maxPageLimit)
	case limit > s.maxPageLimit:
		limit = s.maxPageLimit
	}

	f := model.ListFilter{
		Sport:          strings.TrimSpace(q.Sport),
		Query:          strings.TrimSpace(q.Query),
		Location:       strings.TrimSpace(q.Location),
		GraduationYear: q.GraduationYear,
		MinStars:       q.MinStars,
		MaxStars:       q.MaxStars,
		PublicOnly:     !p.IsAdmin(),
		Limit:          limit,
		Offset:         q.Offset,
	}
	athletes, total, err := s.store.List(ctx, f)
	if err != nil {
		return types.AthleteList{}, storeErr("list athletes", err)
	}
	if athletes == nil {
		athletes = []model.Athlete{}
	}
	return types.AthleteList{
		Athletes: athletes,
		Total:    total,
		Limit:    limit,
		Offset:   q.Offset,
	}, nil
}

// SearchAthletes is ListAthletes with a mandatory name query.
func (s *Service) SearchAthletes(ctx context.Context, p model.Principal, q ListQuery) (types.AthleteList, error) {
	if strings.TrimSpace(q.Query) == "" {
		return types.AthleteList{}, invalid("q is required")
	}
	return s.ListAthletes(ctx, p, q)
}

func (s *Service) checkListQuery(q ListQuery) error {
	if q.Limit < 0 {
		return invalid("limit must not be negative")
	}
	if q.Offset < 0 {
		return invalid("offset must not be negative")
	}
	if q.GraduationYear < 0 {
		return invalid("graduationYear must not be negative")
	}
	for _, v := range []float64{q.MinStars, q.MaxStars} {
		if math.IsNaN(v) || v < 0 || v > rating.MaxStars {
			return invalid("star bounds must be within [0, %g]", rating.MaxStars)
		}
	}
	if q.MaxStars > 0 && q.MinStars > q.MaxStars {
		return invalid("minStars %g exceeds maxStars %g", q.MinStars, q.MaxStars)
	}
	return nil
}

// checkScores rejects non-finite sub-scores. Finite values out of range are
// kept as given and clamped by the engine.
func checkScores(p model.ScorePatch) error {
	for _, v := range []*float64{p.Performance, p.Physical, p.Academic, p.Social, p.Evaluation} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return invalid("sub-scores must be finite numbers")
		}
	}
	return nil
}
